// Package pkg provides the core libraries for Benchdef framework definition resolution.
//
// # Overview
//
// Benchdef turns hierarchical YAML framework definitions, as used by AutoML
// benchmarking setups, into fully resolved, queryable catalogs. The pkg
// directory is organized into four main areas:
//
//  1. [framework] - Domain logic (document parsing, inheritance resolution, catalogs)
//  2. [lineage] - Inheritance graph analysis and Graphviz diagram rendering
//  3. [cache] / [store] - Infrastructure (cached results, published snapshots)
//  4. [pipeline] - Orchestration (load -> resolve -> render) shared by CLI and server
//
// # Architecture
//
// The typical data flow through Benchdef:
//
//	YAML definition files
//	         ↓
//	    [framework] package (parse + two-pass inheritance resolution)
//	         ↓
//	    [lineage] package (extends graph, cycle detection, DOT/SVG/PNG)
//	         ↓
//	    JSON catalogs / diagrams / published snapshots
//
// # Quick Start
//
// Resolve definition files into a catalog and look up a framework:
//
//	import "github.com/matzehuels/benchdef/pkg/framework"
//
//	catalog, err := framework.Load(framework.Options{}, "resources/frameworks.yaml")
//	if err != nil {
//	    return err
//	}
//	def, ok := catalog.Get("autogluon")
//	if ok {
//	    fmt.Println(def.Version, def.DockerImage.Ref())
//	}
//
// # Main Packages
//
// ## Core Domain Logic
//
// [framework] - YAML document loading and merging, entry-level validation,
// two-pass inheritance resolution with memoization and cycle detection, and
// the immutable [framework.Catalog] with case-insensitive lookup. Also
// provides JSON export/import for frozen catalogs.
//
// [lineage] - Directed inheritance graph built from raw documents. Supports
// ancestor chains, root/leaf queries, cycle and missing-parent diagnostics,
// and rendering to DOT, SVG, and PNG via Graphviz.
//
// [suite] - Benchmark suite parsing. Task lists reference resolved
// frameworks and carry per-task runtime constraints with configurable
// defaults.
//
// ## Infrastructure
//
// [cache] - Content-addressed result caching keyed on document hashes and
// resolve options. FileCache for the CLI (filesystem), RedisCache for
// multi-instance deployments, NullCache to disable caching.
//
// [store] - Published catalog snapshots. MemoryStore for tests and
// single-process use, MongoStore for durable shared storage.
//
// [errors] - Coded errors with user-facing messages and an aggregating
// error list, so a single resolve pass reports every invalid entry at once.
//
// [observability] - Hook interfaces for instrumenting resolver and cache
// operations without coupling the domain packages to a logger.
//
// [buildinfo] - Version metadata injected at build time.
//
// ## Orchestration
//
// [pipeline] - The complete load -> resolve -> render pipeline used by the
// CLI and the HTTP server. Wraps the domain packages with caching and
// logging so all entry points behave identically.
//
// # Common Workflows
//
// Run the cached pipeline:
//
//	c, _ := cache.NewFileCache(dir)
//	runner := pipeline.NewRunner(c, cache.NewDefaultKeyer(), logger)
//	defer runner.Close()
//	result, err := runner.Execute(ctx, pipeline.Options{Paths: paths})
//
// Render an inheritance diagram:
//
//	doc, _ := framework.LoadPaths("resources/frameworks.yaml")
//	g := lineage.Build(doc)
//	svg, err := lineage.RenderSVG(lineage.ToDOT(g, lineage.Options{Detailed: true}))
//
// Publish a snapshot:
//
//	snap := store.NewSnapshot(result.Catalog)
//	err := st.Publish(ctx, snap)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...               # All tests
//	go test ./pkg/framework/...     # Specific package
//	go test -run Example            # Examples only
//
// [framework]: https://pkg.go.dev/github.com/matzehuels/benchdef/pkg/framework
// [framework.Catalog]: https://pkg.go.dev/github.com/matzehuels/benchdef/pkg/framework#Catalog
// [lineage]: https://pkg.go.dev/github.com/matzehuels/benchdef/pkg/lineage
// [suite]: https://pkg.go.dev/github.com/matzehuels/benchdef/pkg/suite
// [cache]: https://pkg.go.dev/github.com/matzehuels/benchdef/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/benchdef/pkg/store
// [errors]: https://pkg.go.dev/github.com/matzehuels/benchdef/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/benchdef/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/benchdef/pkg/buildinfo
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/benchdef/pkg/pipeline
package pkg
