package lint

import (
	"sync"

	"github.com/DeusData/netlogo-intel/internal/metrics"
	"github.com/DeusData/netlogo-intel/internal/state"
)

// Cache memoises the diagnostics of one document. Results are reused until
// the document version advances or the shared symbol context is replaced.
type Cache struct {
	mu      sync.Mutex
	linters []Linter
	valid   bool
	doc     uint64
	ctx     uint64
	diags   []Diagnostic
}

// NewCache returns a cache running linters, or All when none are given.
func NewCache(linters ...Linter) *Cache {
	if len(linters) == 0 {
		linters = All()
	}
	return &Cache{linters: linters}
}

// Lint returns the diagnostics of v as of docVersion and ctxVersion.
func (c *Cache) Lint(v *state.View, docVersion, ctxVersion uint64) []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid && c.doc == docVersion && c.ctx == ctxVersion {
		metrics.LintCache.WithLabelValues("hit").Inc()
		return c.diags
	}
	metrics.LintCache.WithLabelValues("miss").Inc()
	c.diags = Run(v, c.linters...)
	c.doc, c.ctx, c.valid = docVersion, ctxVersion, true
	return c.diags
}

// Invalidate forces the next Lint to recompute.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}
