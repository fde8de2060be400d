package cache

// ScopedKeyer wraps a Keyer with a prefix so separate definition sources
// share one backend without key collisions. A server instance resolving
// several definition directories gives each its own scope.
//
// Example usage:
//
//	// Keys for the stable definitions set
//	stableKeyer := NewScopedKeyer(NewDefaultKeyer(), "stable:")
//
//	// Keys for an experimental overlay
//	experimentalKeyer := NewScopedKeyer(NewDefaultKeyer(), "exp:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// CatalogKey generates a prefixed key for a resolved catalog.
func (k *ScopedKeyer) CatalogKey(docHash string, opts CatalogKeyOpts) string {
	return k.prefix + k.inner.CatalogKey(docHash, opts)
}

// DiagramKey generates a prefixed key for a rendered diagram.
func (k *ScopedKeyer) DiagramKey(docHash string, opts DiagramKeyOpts) string {
	return k.prefix + k.inner.DiagramKey(docHash, opts)
}

// SuiteKey generates a prefixed key for a parsed suite.
func (k *ScopedKeyer) SuiteKey(name, fileHash string) string {
	return k.prefix + k.inner.SuiteKey(name, fileHash)
}
