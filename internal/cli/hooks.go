package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/benchdef/pkg/observability"
)

// wireDebugHooks registers observability hooks that trace pipeline and
// cache internals at debug level. Called once when verbose mode is on.
func (c *CLI) wireDebugHooks() {
	observability.SetResolverHooks(debugResolverHooks{logger: c.Logger})
	observability.SetCacheHooks(debugCacheHooks{logger: c.Logger})
}

// debugResolverHooks logs loader, resolver, and renderer events.
type debugResolverHooks struct {
	observability.NoopResolverHooks
	logger *log.Logger
}

func (h debugResolverHooks) OnLoadComplete(_ context.Context, paths []string, entryCount int, duration time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "paths", paths, "err", err)
		return
	}
	h.logger.Debug("loaded document", "paths", paths, "entries", entryCount, "duration", duration)
}

func (h debugResolverHooks) OnResolveComplete(_ context.Context, docHash string, definitionCount int, duration time.Duration, err error) {
	if err != nil {
		h.logger.Debug("resolution failed", "doc", shortHash(docHash), "err", err)
		return
	}
	h.logger.Debug("resolved definitions", "doc", shortHash(docHash), "definitions", definitionCount, "duration", duration)
}

func (h debugResolverHooks) OnRenderComplete(_ context.Context, format string, size int, duration time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "format", format, "err", err)
		return
	}
	h.logger.Debug("rendered diagram", "format", format, "bytes", size, "duration", duration)
}

// debugCacheHooks logs cache hits, misses, and writes.
type debugCacheHooks struct {
	observability.NoopCacheHooks
	logger *log.Logger
}

func (h debugCacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h debugCacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h debugCacheHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache write", "type", keyType, "bytes", size)
}

// shortHash trims a content hash for log output.
func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
