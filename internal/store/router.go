package store

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
)

// Router keeps one open Store per database file, so every project root can
// carry its own cache.
type Router struct {
	mu     sync.Mutex
	stores map[string]*Store // absolute db path -> open Store (lazy)
}

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{stores: make(map[string]*Store)}
}

// ForPath returns the Store for dbPath, opening it lazily.
func (r *Router) ForPath(dbPath string) (*Store, error) {
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dbPath, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[abs]; ok {
		return s, nil
	}
	s, err := OpenPath(abs)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", abs, err)
	}
	r.stores[abs] = s
	slog.Debug("router.open", "db", abs)
	return s, nil
}

// All returns the open stores ordered by database path.
func (r *Router) All() []*Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	paths := make([]string, 0, len(r.stores))
	for p := range r.stores {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	out := make([]*Store, len(paths))
	for i, p := range paths {
		out[i] = r.stores[p]
	}
	return out
}

// Len reports how many stores are open.
func (r *Router) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// CloseAll closes all open Store connections.
func (r *Router) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for path, s := range r.stores {
		if err := s.Close(); err != nil {
			slog.Warn("router.close", "db", path, "err", err)
		}
	}
	r.stores = make(map[string]*Store)
}
