package resolver

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/zjrosen/xwidget/internal/log"
	"github.com/zjrosen/xwidget/internal/widget"
)

// Static is a resolver backed by an explicit path → factory table.
type Static struct {
	mu        sync.RWMutex
	factories map[string]widget.Factory
}

// NewStatic creates an empty table.
func NewStatic() *Static {
	return &Static{factories: make(map[string]widget.Factory)}
}

// Register adds a factory under path.
func (s *Static) Register(path string, factory widget.Factory) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("register widget: path is empty")
	}
	if factory == nil {
		return fmt.Errorf("register widget %s: factory is nil", path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.factories[path]; exists {
		return fmt.Errorf("register widget: duplicate factory for %s", path)
	}
	s.factories[path] = factory
	log.Debug(log.CatResolver, "widget registered", "path", path)
	return nil
}

// MustRegister panics on registration error; intended for bootstrap code paths.
func (s *Static) MustRegister(path string, factory widget.Factory) {
	if err := s.Register(path, factory); err != nil {
		panic(err)
	}
}

// Resolve looks path up in the table.
func (s *Static) Resolve(ctx context.Context, path string) (widget.Factory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	f, ok := s.factories[path]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return f, nil
}

// Paths returns the registered paths in sorted order.
func (s *Static) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.factories))
	for p := range s.factories {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}
