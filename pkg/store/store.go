// Package store persists published catalog snapshots.
//
// A snapshot freezes one resolved catalog: the definitions, the content
// hash of the document they came from, and a creation timestamp. Publishing
// a catalog makes a benchmark run reproducible later even after the
// definition files change, since the run can pin the snapshot it used.
//
// Two backends are provided:
//   - memory: In-memory storage for development/testing
//   - mongo: MongoDB-backed storage for shared deployments
//
// # Usage
//
// Publish and retrieve snapshots:
//
//	snap := store.NewSnapshot(catalog)
//	if err := st.Publish(ctx, snap); err != nil {
//	    return err
//	}
//
//	latest, err := st.Latest(ctx)
//	if errors.Is(err, store.ErrNotFound) {
//	    // Nothing published yet
//	}
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/benchdef/pkg/framework"
)

// Sentinel errors for snapshot operations.
var (
	// ErrNotFound is returned when a snapshot does not exist.
	ErrNotFound = errors.New("snapshot not found")

	// ErrDuplicateID is returned when publishing a snapshot whose ID is
	// already taken.
	ErrDuplicateID = errors.New("duplicate snapshot id")
)

// Snapshot is an immutable published catalog.
type Snapshot struct {
	ID           string                 `json:"id" bson:"_id"`
	CreatedAt    time.Time              `json:"created_at" bson:"created_at"`
	DocumentHash string                 `json:"document_hash" bson:"document_hash"`
	Count        int                    `json:"count" bson:"count"`
	Definitions  []framework.Definition `json:"definitions" bson:"definitions"`
}

// Info is the snapshot metadata without the definitions payload, for
// listings.
type Info struct {
	ID           string    `json:"id" bson:"_id"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	DocumentHash string    `json:"document_hash" bson:"document_hash"`
	Count        int       `json:"count" bson:"count"`
}

// NewSnapshot freezes a resolved catalog into a publishable snapshot with a
// fresh ID and timestamp.
func NewSnapshot(c *framework.Catalog) *Snapshot {
	return &Snapshot{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		DocumentHash: c.DocumentHash(),
		Count:        c.Len(),
		Definitions:  c.Definitions(),
	}
}

// Info returns the snapshot's listing metadata.
func (s *Snapshot) Info() Info {
	return Info{
		ID:           s.ID,
		CreatedAt:    s.CreatedAt,
		DocumentHash: s.DocumentHash,
		Count:        s.Count,
	}
}

// Catalog reconstructs the resolved catalog frozen in this snapshot.
func (s *Snapshot) Catalog() (*framework.Catalog, error) {
	return framework.CatalogFromDefinitions(s.Definitions, s.DocumentHash)
}

// Store is the interface for snapshot storage backends.
type Store interface {
	// Publish stores a snapshot. Snapshot IDs are write-once; publishing
	// an existing ID returns ErrDuplicateID.
	Publish(ctx context.Context, snap *Snapshot) error

	// Get retrieves a snapshot by ID.
	// Returns ErrNotFound if no snapshot has that ID.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// Latest retrieves the most recently created snapshot.
	// Returns ErrNotFound if nothing has been published.
	Latest(ctx context.Context) (*Snapshot, error)

	// List returns snapshot metadata, newest first, up to limit entries.
	// A limit of 0 means no limit.
	List(ctx context.Context, limit int) ([]Info, error)

	// Delete removes a snapshot.
	// Returns ErrNotFound if no snapshot has that ID.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
