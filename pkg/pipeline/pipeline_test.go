package pipeline

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/benchdef/pkg/cache"
	"github.com/matzehuels/benchdef/pkg/errors"
)

const testDefs = `---

__base__:
  version: stable

constantpredictor:
  version: '0.1'

RandomForest:
  extends: __base__
  version: '1.4'
  params:
    n_estimators: 2000
`

func writeDefs(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frameworks.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write definitions: %v", err)
	}
	return path
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	return NewRunner(fc, nil, log.New(io.Discard))
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOptionsValidateForLoad(t *testing.T) {
	// Missing paths
	opts := Options{}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("Missing paths should fail")
	}

	// Valid with defaults filled
	opts = Options{Paths: []string{"frameworks.yaml"}}
	if err := opts.ValidateForLoad(); err != nil {
		t.Errorf("Valid options should pass: %v", err)
	}
	if opts.ImageAuthor != DefaultImageAuthor {
		t.Errorf("ImageAuthor should be %q, got %q", DefaultImageAuthor, opts.ImageAuthor)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set to a default")
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()
	if opts.Format != FormatSVG {
		t.Errorf("Format should be %s, got %s", FormatSVG, opts.Format)
	}

	opts = Options{Format: FormatDOT}
	opts.SetRenderDefaults()
	if opts.Format != FormatDOT {
		t.Errorf("Explicit format should be kept, got %s", opts.Format)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Paths: []string{"frameworks.yaml"}}

	// First call
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	originalAuthor := opts.ImageAuthor
	originalFormat := opts.Format

	// Second call should be idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if opts.ImageAuthor != originalAuthor {
		t.Error("ImageAuthor changed on second call")
	}
	if opts.Format != originalFormat {
		t.Error("Format changed on second call")
	}
}

func TestCatalogKeyVariesWithDirs(t *testing.T) {
	keyer := cache.NewDefaultKeyer()

	base := Options{Paths: []string{"frameworks.yaml"}, ImageAuthor: DefaultImageAuthor}
	withDirs := base
	withDirs.Dirs = map[string]string{"input": "/data"}

	if keyer.CatalogKey("h", base.CatalogKeyOpts()) == keyer.CatalogKey("h", withDirs.CatalogKeyOpts()) {
		t.Error("catalog keys should differ when directory expansions differ")
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil {
		t.Error("Cache should default to a null cache")
	}
	if r.Keyer == nil {
		t.Error("Keyer should default to the default keyer")
	}
	if r.Logger == nil {
		t.Error("Logger should default to the global logger")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestRunnerExecute(t *testing.T) {
	r := newTestRunner(t)
	defer r.Close()

	path := writeDefs(t, testDefs)
	opts := Options{Paths: []string{path}}

	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Stats.EntryCount != 3 {
		t.Errorf("EntryCount = %d, want 3", res.Stats.EntryCount)
	}
	if res.Stats.DefinitionCount != 2 {
		t.Errorf("DefinitionCount = %d, want 2", res.Stats.DefinitionCount)
	}
	if res.CacheInfo.CatalogHit {
		t.Error("first run should not hit the cache")
	}
	if _, ok := res.Catalog.Get("randomforest"); !ok {
		t.Error("catalog should contain RandomForest")
	}
	if _, ok := res.Catalog.Get("__base__"); ok {
		t.Error("templates should not appear in the catalog")
	}

	// Second run restores the catalog from the cache.
	res2, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !res2.CacheInfo.CatalogHit {
		t.Error("second run should hit the cache")
	}
	if res2.Catalog.DocumentHash() != res.Catalog.DocumentHash() {
		t.Errorf("cached catalog hash = %q, want %q", res2.Catalog.DocumentHash(), res.Catalog.DocumentHash())
	}

	def, ok := res2.Catalog.Get("RandomForest")
	if !ok {
		t.Fatal("cached catalog should contain RandomForest")
	}
	if def.Params["n_estimators"] != float64(2000) && def.Params["n_estimators"] != 2000 {
		t.Errorf("Params[n_estimators] = %v, want 2000", def.Params["n_estimators"])
	}
}

func TestRunnerExecuteResolveError(t *testing.T) {
	r := newTestRunner(t)
	defer r.Close()

	path := writeDefs(t, "noversion:\n  project: https://example.com\n")

	_, err := r.Execute(context.Background(), Options{Paths: []string{path}})
	if err == nil {
		t.Fatal("expected resolution error")
	}
	if code := errors.GetCode(err); code != errors.ErrCodeMissingVersion {
		t.Errorf("GetCode() = %v, want %v", code, errors.ErrCodeMissingVersion)
	}
}

func TestRunnerResolveRefresh(t *testing.T) {
	r := newTestRunner(t)
	defer r.Close()

	path := writeDefs(t, testDefs)
	opts := Options{Paths: []string{path}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}

	doc, err := r.LoadDocument(context.Background(), opts)
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}

	if _, _, err := r.ResolveWithCacheInfo(context.Background(), doc, opts); err != nil {
		t.Fatalf("ResolveWithCacheInfo() error = %v", err)
	}

	refresh := opts
	refresh.Refresh = true
	_, hit, err := r.ResolveWithCacheInfo(context.Background(), doc, refresh)
	if err != nil {
		t.Fatalf("refresh resolve error = %v", err)
	}
	if hit {
		t.Error("refresh should bypass the cache")
	}

	// Refresh repopulates the cache for subsequent calls.
	_, hit, err = r.ResolveWithCacheInfo(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("post-refresh resolve error = %v", err)
	}
	if !hit {
		t.Error("catalog should be cached after refresh")
	}
}

func TestRunnerDiagram(t *testing.T) {
	r := newTestRunner(t)
	defer r.Close()

	path := writeDefs(t, testDefs)
	opts := Options{Paths: []string{path}, Format: FormatDOT}

	doc, err := r.LoadDocument(context.Background(), opts)
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}

	data, hit, err := r.DiagramWithCacheInfo(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("DiagramWithCacheInfo() error = %v", err)
	}
	if hit {
		t.Error("first render should not hit the cache")
	}
	if !bytes.Contains(data, []byte("digraph extends")) {
		t.Error("DOT output should contain the graph header")
	}
	if !bytes.Contains(data, []byte(`"RandomForest" -> "__base__"`)) {
		t.Errorf("DOT output should contain the extends edge, got:\n%s", data)
	}

	_, hit, err = r.DiagramWithCacheInfo(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("second DiagramWithCacheInfo() error = %v", err)
	}
	if !hit {
		t.Error("second render should hit the cache")
	}

	// Detailed diagrams are cached under a separate key.
	detailed := opts
	detailed.Detailed = true
	_, hit, err = r.DiagramWithCacheInfo(context.Background(), doc, detailed)
	if err != nil {
		t.Fatalf("detailed DiagramWithCacheInfo() error = %v", err)
	}
	if hit {
		t.Error("detailed render should not reuse the plain diagram")
	}
}

func TestRunnerDiagramBadFormat(t *testing.T) {
	r := newTestRunner(t)
	defer r.Close()

	path := writeDefs(t, testDefs)
	opts := Options{Paths: []string{path}}

	doc, err := r.LoadDocument(context.Background(), opts)
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}

	opts.Format = "gif"
	if _, _, err := r.DiagramWithCacheInfo(context.Background(), doc, opts); err == nil {
		t.Error("unsupported format should fail")
	}
}
