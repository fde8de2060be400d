package framework

import (
	"slices"
	"strings"

	"github.com/matzehuels/benchdef/pkg/errors"
)

// Catalog is an immutable set of resolved definitions. Lookups are
// case-insensitive and return deep copies, so a catalog is safe for
// concurrent readers and its contents cannot be mutated through results.
type Catalog struct {
	defs  map[string]Definition // keyed by folded (lowercase) name
	names []string              // original-case names, sorted
	hash  string
}

func newCatalog(defs map[string]Definition, names []string, hash string) *Catalog {
	slices.Sort(names)
	return &Catalog{defs: defs, names: names, hash: hash}
}

// CatalogFromDefinitions rebuilds a catalog from previously resolved
// definitions, such as a JSON export or a published snapshot. The
// definitions are taken as-is; no resolution or defaulting is applied.
func CatalogFromDefinitions(defs []Definition, hash string) (*Catalog, error) {
	byFold := make(map[string]Definition, len(defs))
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		if err := errors.ValidateEntryName(def.Name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedEntry, err, "definition has an invalid name")
		}
		fold := strings.ToLower(def.Name)
		if prev, ok := byFold[fold]; ok {
			return nil, errors.New(errors.ErrCodeMalformedEntry,
				"definition %q collides with %q, framework names are case-insensitive", def.Name, prev.Name)
		}
		byFold[fold] = def.Clone()
		names = append(names, def.Name)
	}
	return newCatalog(byFold, names, hash), nil
}

// Get returns a deep copy of the definition for name. The lookup folds
// case, so Get("randomforest") finds an entry authored as RandomForest.
func (c *Catalog) Get(name string) (Definition, bool) {
	def, ok := c.defs[strings.ToLower(name)]
	if !ok {
		return Definition{}, false
	}
	return def.Clone(), true
}

// Names returns the framework names in sorted order, preserving the casing
// they were authored with.
func (c *Catalog) Names() []string {
	return slices.Clone(c.names)
}

// Definitions returns deep copies of all definitions, sorted by name.
func (c *Catalog) Definitions() []Definition {
	defs := make([]Definition, len(c.names))
	for i, name := range c.names {
		defs[i] = c.defs[strings.ToLower(name)].Clone()
	}
	return defs
}

// Len returns the number of definitions in the catalog.
func (c *Catalog) Len() int {
	return len(c.defs)
}

// DocumentHash returns the content hash of the source document the catalog
// was resolved from. Identical sources hash identically, which makes the
// hash usable as a cache key or HTTP entity tag.
func (c *Catalog) DocumentHash() string {
	return c.hash
}
