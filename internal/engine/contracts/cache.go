// # internal/engine/contracts/cache.go
package contracts

import (
	"context"
	"os"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"routelens/internal/core/errors"
	"routelens/internal/shared/observability"
)

// Cache keys export tables by file path. An entry stays fresh while the
// file's mtime is at or before the entry's build time; a stale entry is
// rebuilt wholesale. Concurrent rebuilds of the same path are allowed, the
// results are identical.
type Cache struct {
	mu      sync.RWMutex
	builder *Builder
	tables  map[string]*ExportTable
}

func NewCache(builder *Builder) *Cache {
	return &Cache{
		builder: builder,
		tables:  make(map[string]*ExportTable),
	}
}

// Lookup returns the export table for path, rebuilding when stale.
func (c *Cache) Lookup(ctx context.Context, path string) (*ExportTable, error) {
	_, span := observability.Tracer.Start(ctx, "exportCache.Lookup",
		trace.WithAttributes(attribute.String("contract.path", path)))
	defer span.End()

	info, err := os.Stat(path)
	if err != nil {
		wrapped := errors.Wrap(err, errors.CodeContractFileUnreadable, "stat contract file")
		return nil, errors.AddContext(wrapped, errors.CtxPath, path)
	}

	c.mu.RLock()
	cached, ok := c.tables[path]
	c.mu.RUnlock()
	if ok && !info.ModTime().After(cached.BuiltAt) {
		observability.ExportCacheHits.Inc()
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		wrapped := errors.Wrap(err, errors.CodeContractFileUnreadable, "read contract file")
		return nil, errors.AddContext(wrapped, errors.CtxPath, path)
	}

	table, err := c.builder.Build(path, content)
	if err != nil {
		return nil, err
	}
	observability.ExportTableBuilds.Inc()

	c.mu.Lock()
	c.tables[path] = table
	c.mu.Unlock()
	return table, nil
}

// Invalidate drops the cached table for path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.tables, path)
	c.mu.Unlock()
}

// Clear drops every cached table.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.tables = make(map[string]*ExportTable)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}
