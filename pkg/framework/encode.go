package framework

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/benchdef/pkg/errors"
)

type catalogExport struct {
	Hash       string       `json:"hash,omitempty"`
	Frameworks []Definition `json:"frameworks"`
}

// WriteJSON encodes a resolved catalog as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON] to serve a frozen catalog
// without re-resolving its sources.
func WriteJSON(c *Catalog, w io.Writer) error {
	out := catalogExport{
		Hash:       c.DocumentHash(),
		Frameworks: c.Definitions(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "failed to encode catalog")
	}
	return nil
}

// ExportJSON writes a catalog to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(c *Catalog, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to create %s", path)
	}
	defer f.Close()
	return WriteJSON(c, f)
}

// ReadJSON decodes a catalog previously written by [WriteJSON].
func ReadJSON(r io.Reader) (*Catalog, error) {
	var in catalogExport
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to decode catalog export")
	}
	return CatalogFromDefinitions(in.Frameworks, in.Hash)
}

// ImportJSON reads a catalog export from the file at path.
// This is a convenience wrapper around [ReadJSON] for file-based input.
func ImportJSON(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "failed to open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}
