package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/benchdef/pkg/cache"
	"github.com/matzehuels/benchdef/pkg/framework"
	"github.com/matzehuels/benchdef/pkg/lineage"
	"github.com/matzehuels/benchdef/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → resolve pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	doc, err := r.LoadDocument(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Document = doc
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.EntryCount = len(doc.Entries)

	r.Logger.Info("loaded definitions",
		"entries", len(doc.Entries),
		"sources", len(doc.Sources),
		"duration", result.Stats.LoadTime)

	// Stage 2: Resolve
	resolveStart := time.Now()
	catalog, catalogHit, err := r.ResolveWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	result.Catalog = catalog
	result.Stats.ResolveTime = time.Since(resolveStart)
	result.Stats.DefinitionCount = catalog.Len()
	result.CacheInfo.CatalogHit = catalogHit

	r.Logger.Info("resolved catalog",
		"definitions", catalog.Len(),
		"cached", catalogHit,
		"duration", result.Stats.ResolveTime)

	return result, nil
}

// LoadDocument parses the definition files named in opts without resolving
// them. Loading is never cached: the raw files are the source of truth and
// re-reading them is how hash changes are detected.
func (r *Runner) LoadDocument(ctx context.Context, opts Options) (*framework.Document, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Resolver().OnLoadStart(ctx, opts.Paths)
	doc, err := framework.LoadPaths(opts.Paths...)
	entries := 0
	if doc != nil {
		entries = len(doc.Entries)
	}
	observability.Resolver().OnLoadComplete(ctx, opts.Paths, entries, time.Since(start), err)
	return doc, err
}

// ResolveWithCacheInfo resolves a document into a catalog with caching and
// returns cache hit info. A hit restores the catalog from its JSON export
// keyed by the document hash and the resolution options.
func (r *Runner) ResolveWithCacheInfo(ctx context.Context, doc *framework.Document, opts Options) (*framework.Catalog, bool, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.CatalogKey(doc.Hash, opts.CatalogKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if catalog, err := framework.ReadJSON(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "catalog")
				return catalog, true, nil // Cache hit
			}
			// If deserialization fails, fall through to re-resolve
		}
	}
	observability.Cache().OnCacheMiss(ctx, "catalog")

	// Resolve
	start := time.Now()
	observability.Resolver().OnResolveStart(ctx, doc.Hash, len(doc.Entries))
	catalog, err := framework.Resolve(doc, opts.ResolveOptions())
	observability.Resolver().OnResolveComplete(ctx, doc.Hash, catalogLen(catalog), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache the result. Refresh repopulates the entry it bypassed.
	var buf bytes.Buffer
	if err := framework.WriteJSON(catalog, &buf); err == nil {
		if r.Cache.Set(ctx, cacheKey, buf.Bytes(), opts.cacheTTL(cache.TTLCatalog)) == nil {
			observability.Cache().OnCacheSet(ctx, "catalog", buf.Len())
		}
	}

	return catalog, false, nil // Cache miss
}

// Resolve is a convenience wrapper that calls ResolveWithCacheInfo and discards the cache hit info.
func (r *Runner) Resolve(ctx context.Context, doc *framework.Document, opts Options) (*framework.Catalog, error) {
	catalog, _, err := r.ResolveWithCacheInfo(ctx, doc, opts)
	return catalog, err
}

// DiagramWithCacheInfo renders the inheritance diagram for a document with
// caching and returns cache hit info. The diagram is built from the raw
// entries, so broken hierarchies (cycles, missing parents) still render.
func (r *Runner) DiagramWithCacheInfo(ctx context.Context, doc *framework.Document, opts Options) ([]byte, bool, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.DiagramKey(doc.Hash, opts.DiagramKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "diagram")
			return data, true, nil // Cache hit
		}
	}
	observability.Cache().OnCacheMiss(ctx, "diagram")

	// Render
	start := time.Now()
	observability.Resolver().OnRenderStart(ctx, opts.Format)
	data, err := renderDiagram(doc, opts)
	observability.Resolver().OnRenderComplete(ctx, opts.Format, len(data), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if r.Cache.Set(ctx, cacheKey, data, opts.cacheTTL(cache.TTLDiagram)) == nil {
		observability.Cache().OnCacheSet(ctx, "diagram", len(data))
	}

	return data, false, nil // Cache miss
}

// Diagram is a convenience wrapper that calls DiagramWithCacheInfo and discards the cache hit info.
func (r *Runner) Diagram(ctx context.Context, doc *framework.Document, opts Options) ([]byte, error) {
	data, _, err := r.DiagramWithCacheInfo(ctx, doc, opts)
	return data, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func renderDiagram(doc *framework.Document, opts Options) ([]byte, error) {
	g := lineage.Build(doc)
	dot := lineage.ToDOT(g, lineage.Options{Detailed: opts.Detailed})
	switch opts.Format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return lineage.RenderSVG(dot)
	case FormatPNG:
		return lineage.RenderPNG(dot)
	default:
		return nil, fmt.Errorf("unsupported format %q", opts.Format)
	}
}

func catalogLen(c *framework.Catalog) int {
	if c == nil {
		return 0
	}
	return c.Len()
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
