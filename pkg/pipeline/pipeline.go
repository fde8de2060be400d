// Package pipeline provides the core resolution pipeline for benchdef.
//
// This package implements the complete load → resolve → render pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read definition files and merge them into one document
//  2. Resolve: Apply inheritance and defaults to produce a catalog
//  3. Render: Generate inheritance diagrams (DOT, SVG, PNG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Paths: []string{"resources/frameworks.yaml"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	def, ok := result.Catalog.Get("RandomForest")
//
// Run individual stages:
//
//	// Load only
//	doc, err := runner.LoadDocument(ctx, opts)
//
//	// Resolve with an existing document
//	catalog, err := runner.Resolve(ctx, doc, opts)
//
//	// Render a diagram
//	svg, err := runner.Diagram(ctx, doc, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/benchdef/pkg/cache"
	"github.com/matzehuels/benchdef/pkg/framework"
)

// DefaultImageAuthor is the docker author filled into resolved definitions
// that don't set their own.
const DefaultImageAuthor = framework.DefaultImageAuthor

// Format constants for diagram output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// ValidFormats is the set of supported diagram formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
}

// Options contains all configuration for the resolution pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Paths []string `json:"paths"`

	// Resolve options
	ImageAuthor  string            `json:"image_author,omitempty"`
	ModulePrefix string            `json:"module_prefix,omitempty"`
	Dirs         map[string]string `json:"dirs,omitempty"`
	Refresh      bool              `json:"refresh,omitempty"`

	// Render options
	Format   string `json:"format,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// CacheTTL overrides the per-artifact default TTLs when positive.
	CacheTTL time.Duration `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the merged raw document the catalog was resolved from.
	Document *framework.Document

	// Catalog is the resolved definition catalog.
	Catalog *framework.Catalog

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	EntryCount      int // raw entries in the document
	DefinitionCount int // resolved definitions in the catalog
	LoadTime        time.Duration
	ResolveTime     time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	CatalogHit bool // Whether the resolved catalog came from cache
	DiagramHit bool // Whether the rendered diagram came from cache
}

// ValidateFormat checks that a diagram format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, png)", format)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading and resolution.
func (o *Options) ValidateForLoad() error {
	if len(o.Paths) == 0 {
		return fmt.Errorf("at least one definitions path is required")
	}

	if o.ImageAuthor == "" {
		o.ImageAuthor = DefaultImageAuthor
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for diagram rendering.
func (o *Options) SetRenderDefaults() {
	if o.Format == "" {
		o.Format = FormatSVG
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ResolveOptions converts pipeline options into resolver options.
func (o *Options) ResolveOptions() framework.Options {
	return framework.Options{
		ImageAuthor:  o.ImageAuthor,
		ModulePrefix: o.ModulePrefix,
		Dirs:         o.Dirs,
	}
}

// CatalogKeyOpts returns cache key options for catalog resolution.
func (o *Options) CatalogKeyOpts() cache.CatalogKeyOpts {
	return cache.CatalogKeyOpts{
		ImageAuthor:  o.ImageAuthor,
		ModulePrefix: o.ModulePrefix,
		Dirs:         o.Dirs,
	}
}

// DiagramKeyOpts returns cache key options for diagram rendering.
func (o *Options) DiagramKeyOpts() cache.DiagramKeyOpts {
	return cache.DiagramKeyOpts{
		Format:   o.Format,
		Detailed: o.Detailed,
	}
}

// cacheTTL returns the configured TTL override, or def when unset.
func (o *Options) cacheTTL(def time.Duration) time.Duration {
	if o.CacheTTL > 0 {
		return o.CacheTTL
	}
	return def
}
