package framework

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/benchdef/pkg/errors"
)

// Entry is the verbatim, pre-resolution form of a definition as authored in
// a document. Empty scalar fields and nil collections mean "not set" and
// inherit from the parent during resolution.
type Entry struct {
	Name        string
	Extends     string
	Version     string
	Module      string
	SetupArgs   []string
	SetupCmd    string
	Params      map[string]any
	Project     string
	Abstract    bool
	DockerImage DockerImage
}

// IsTemplate reports whether the entry is a documentation-only template.
// Templates use the reserved __name__ pattern or set abstract: true; they
// can be extended but are excluded from the resolved catalog.
func (e Entry) IsTemplate() bool {
	return e.Abstract || isTemplateName(e.Name)
}

func isTemplateName(name string) bool {
	return len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// Document holds the raw entries of one or more parsed definition files,
// keyed by entry name, together with a content hash identifying the source.
type Document struct {
	Entries map[string]Entry
	Hash    string   // SHA-256 of the raw source
	Sources []string // file paths, empty for in-memory payloads
}

// EntryNames returns the names of all raw entries in sorted order.
func (d *Document) EntryNames() []string {
	return slices.Sorted(maps.Keys(d.Entries))
}

// ParseDocument decodes a definitions payload into a Document. The payload
// must be a YAML mapping of framework names to entry mappings; an empty
// payload yields an empty document.
//
// Malformed entries are collected and reported together, so a single parse
// surfaces every offending entry rather than the first one.
func ParseDocument(data []byte) (*Document, error) {
	doc := &Document{
		Entries: map[string]Entry{},
		Hash:    hashBytes(data),
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "failed to decode definitions document")
	}
	if len(root.Content) == 0 {
		return doc, nil
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrCodeInvalidDocument,
			"definitions document must be a mapping of framework entries, got %s", kindName(top.Kind))
	}

	var errs errors.List
	for i := 0; i+1 < len(top.Content); i += 2 {
		keyNode, valNode := top.Content[i], top.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			errs.Append(errors.New(errors.ErrCodeMalformedEntry,
				"entry keys must be scalar names, got %s", kindName(keyNode.Kind)))
			continue
		}
		name := keyNode.Value

		if err := errors.ValidateEntryName(name); err != nil {
			errs.Append(errors.Wrap(errors.ErrCodeMalformedEntry, err, "entry %q has an invalid name", name))
			continue
		}
		if _, exists := doc.Entries[name]; exists {
			errs.Append(errors.New(errors.ErrCodeMalformedEntry, "duplicate entry %q", name))
			continue
		}

		entry, err := parseEntry(name, valNode)
		if err != nil {
			errs.Append(err)
			continue
		}
		doc.Entries[name] = entry
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return doc, nil
}

func parseEntry(name string, node *yaml.Node) (Entry, error) {
	// Dereference anchors so shared entry bodies parse like inline ones.
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return Entry{}, errors.New(errors.ErrCodeMalformedEntry, "entry %q is empty, expected a mapping", name)
	}
	if node.Kind != yaml.MappingNode {
		return Entry{}, errors.New(errors.ErrCodeMalformedEntry,
			"entry %q must be a mapping, got %s", name, kindName(node.Kind))
	}
	var doc entryDoc
	if err := node.Decode(&doc); err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeMalformedEntry, err, "entry %q has malformed fields", name)
	}
	return doc.toEntry(name), nil
}

// LoadFile reads and parses a single definitions file.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "failed to read definitions file %s", path)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "definitions file %s", path)
	}
	doc.Sources = []string{filepath.Clean(path)}
	return doc, nil
}

// LoadPaths reads one or more definitions files and merges them into a
// single document. A directory path means every *.yaml/*.yml file inside,
// in name order. Entries from later files replace same-named entries from
// earlier ones wholesale.
func LoadPaths(paths ...string) (*Document, error) {
	if len(paths) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no definitions paths given")
	}

	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "definitions path %s", path)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		dirEntries, err := os.ReadDir(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "definitions directory %s", path)
		}
		var names []string
		for _, de := range dirEntries {
			if !de.IsDir() && isYAMLFile(de.Name()) {
				names = append(names, de.Name())
			}
		}
		slices.Sort(names)
		for _, name := range names {
			files = append(files, filepath.Join(path, name))
		}
	}
	if len(files) == 0 {
		return nil, errors.New(errors.ErrCodeFileNotFound, "no definition files found in %s", strings.Join(paths, ", "))
	}

	docs := make([]*Document, 0, len(files))
	for _, file := range files {
		doc, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return MergeDocuments(docs...), nil
}

// MergeDocuments combines documents in order, later entries replacing
// earlier ones with the same name. The merged hash is derived from the
// per-document hashes, so it changes whenever any source changes.
func MergeDocuments(docs ...*Document) *Document {
	merged := &Document{Entries: map[string]Entry{}}
	hashes := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		maps.Copy(merged.Entries, doc.Entries)
		merged.Sources = append(merged.Sources, doc.Sources...)
		hashes = append(hashes, doc.Hash)
	}
	if len(hashes) == 1 {
		merged.Hash = hashes[0]
	} else {
		merged.Hash = hashBytes([]byte(strings.Join(hashes, "\n")))
	}
	return merged
}

func isYAMLFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// entryDoc is the YAML decoding shape of a definition entry. Unknown fields
// are tolerated and ignored.
type entryDoc struct {
	Extends     string         `yaml:"extends"`
	Version     flexScalar     `yaml:"version"`
	Module      string         `yaml:"module"`
	SetupArgs   stringList     `yaml:"setup_args"`
	SetupCmd    string         `yaml:"setup_cmd"`
	Params      map[string]any `yaml:"params"`
	Project     string         `yaml:"project"`
	Abstract    bool           `yaml:"abstract"`
	DockerImage dockerDoc      `yaml:"docker_image"`
}

type dockerDoc struct {
	Author string     `yaml:"author"`
	Image  string     `yaml:"image"`
	Tag    flexScalar `yaml:"tag"`
}

func (d entryDoc) toEntry(name string) Entry {
	return Entry{
		Name:      name,
		Extends:   d.Extends,
		Version:   string(d.Version),
		Module:    d.Module,
		SetupArgs: d.SetupArgs,
		SetupCmd:  d.SetupCmd,
		Params:    d.Params,
		Project:   d.Project,
		Abstract:  d.Abstract,
		DockerImage: DockerImage{
			Author: d.DockerImage.Author,
			Image:  d.DockerImage.Image,
			Tag:    string(d.DockerImage.Tag),
		},
	}
}

// flexScalar decodes any YAML scalar to its literal text, so version: 1.0
// stays "1.0" instead of failing as a float.
type flexScalar string

func (s *flexScalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("expected scalar, got %s", kindName(node.Kind))
	}
	if node.Tag == "!!null" {
		*s = ""
		return nil
	}
	*s = flexScalar(node.Value)
	return nil
}

// stringList decodes either a single scalar or a sequence of scalars, so
// setup_args: jdk11 and setup_args: [jdk11, maven] are both accepted.
type stringList []string

func (l *stringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = stringList{node.Value}
		return nil
	case yaml.SequenceNode:
		items := make(stringList, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("list items must be scalars, got %s", kindName(item.Kind))
			}
			items = append(items, item.Value)
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("expected scalar or sequence, got %s", kindName(node.Kind))
	}
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown node"
	}
}
