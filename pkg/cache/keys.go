package cache

// Keyer generates cache keys for the artifact kinds benchdef caches.
// Keys embed every input that affects the cached value, so two calls with
// the same inputs always hit the same entry and any input change misses.
type Keyer interface {
	// CatalogKey identifies a resolved catalog: the definitions document
	// (by content hash) plus the resolution options applied to it.
	CatalogKey(docHash string, opts CatalogKeyOpts) string

	// DiagramKey identifies a rendered inheritance diagram.
	DiagramKey(docHash string, opts DiagramKeyOpts) string

	// SuiteKey identifies a parsed suite by name and source content hash.
	SuiteKey(name, fileHash string) string
}

// CatalogKeyOpts are the resolution inputs that change catalog output.
type CatalogKeyOpts struct {
	ImageAuthor  string            `json:"image_author"`
	ModulePrefix string            `json:"module_prefix"`
	Dirs         map[string]string `json:"dirs,omitempty"`
}

// DiagramKeyOpts are the rendering inputs that change diagram output.
type DiagramKeyOpts struct {
	Format   string `json:"format"` // dot, svg, or png
	Detailed bool   `json:"detailed"`
}

// DefaultKeyer is the standard key scheme. Catalog and diagram keys hash
// their options so option structs can grow without breaking key layout;
// suite keys are plain concatenations since both parts are already short
// and collision-safe.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// CatalogKey generates a key for a resolved catalog.
func (k *DefaultKeyer) CatalogKey(docHash string, opts CatalogKeyOpts) string {
	return hashKey("catalog", docHash, opts)
}

// DiagramKey generates a key for a rendered inheritance diagram.
func (k *DefaultKeyer) DiagramKey(docHash string, opts DiagramKeyOpts) string {
	return hashKey("diagram", docHash, opts)
}

// SuiteKey generates a key for a parsed suite definition.
func (k *DefaultKeyer) SuiteKey(name, fileHash string) string {
	return "suite:" + name + ":" + fileHash
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
