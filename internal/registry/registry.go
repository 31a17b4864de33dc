// Package registry holds the module table for a single application instance.
//
// The table is populated once at startup from an explicit, enumerable source
// list and treated as read-only afterwards; a RWMutex guards the rare case of
// re-triggered discovery. There is no ambient global registry: callers own a
// handle and pass it explicitly, so tests can run independent registries side
// by side.
package registry

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"github.com/vk/inventio/internal/contract"
	"github.com/vk/inventio/internal/ctxlog"
)

// Registry maps slugs to registered modules.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]contract.Module
	order   []contract.Descriptor
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		modules: make(map[string]contract.Module),
	}
}

// Register adds a module under its descriptor's slug. Returns
// DuplicateSlugError when the slug is already taken.
func (r *Registry) Register(desc contract.Descriptor, mod contract.Module) error {
	if desc.Slug == "" {
		return fmt.Errorf("descriptor has empty slug (title %q)", desc.Title)
	}
	if mod == nil {
		return fmt.Errorf("module for slug %q is nil", desc.Slug)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.modules[desc.Slug]; exists {
		return &contract.DuplicateSlugError{Slug: desc.Slug}
	}
	r.modules[desc.Slug] = mod
	r.order = append(r.order, desc)
	return nil
}

// Get returns the module registered under slug, or NotFoundError.
func (r *Registry) Get(slug string) (contract.Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mod, ok := r.modules[slug]
	if !ok {
		return nil, &contract.NotFoundError{Slug: slug}
	}
	return mod, nil
}

// All yields descriptors in registration order. The sequence is restartable;
// callers needing a different order must sort a copy themselves.
func (r *Registry) All() iter.Seq[contract.Descriptor] {
	return func(yield func(contract.Descriptor) bool) {
		r.mu.RLock()
		snapshot := make([]contract.Descriptor, len(r.order))
		copy(snapshot, r.order)
		r.mu.RUnlock()

		for _, desc := range snapshot {
			if !yield(desc) {
				return
			}
		}
	}
}

// Len reports the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modules)
}

// Discover builds a Registry by running every factory in the source list, in
// order. A factory that fails or panics is logged and skipped; discovery of
// one module never aborts its siblings. Duplicate slugs between factories are
// likewise skipped with a warning, keeping startup non-fatal.
func Discover(ctx context.Context, factories []contract.Factory) *Registry {
	logger := ctxlog.FromContext(ctx)
	reg := New()

	for i, factory := range factories {
		mod, err := runFactory(factory)
		if err != nil {
			logger.Warn("Skipping module: factory failed.", "index", i, "error", err)
			continue
		}
		desc := mod.Descriptor()
		if err := reg.Register(desc, mod); err != nil {
			logger.Warn("Skipping module: registration failed.", "slug", desc.Slug, "error", err)
			continue
		}
		logger.Debug("Registered module.", "slug", desc.Slug, "status", desc.Status)
	}

	logger.Info("Module discovery finished.", "registered", reg.Len(), "candidates", len(factories))
	return reg
}

// runFactory isolates factory panics so one broken module cannot take down
// the registry build.
func runFactory(factory contract.Factory) (mod contract.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("factory panicked: %v", r)
		}
	}()
	return factory()
}
