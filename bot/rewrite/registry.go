package rewrite

import (
	"errors"
	"sync"
)

// Registry manages registered Rewriter implementations in a thread-safe manner.
// Rewriters are applied in registration order; the first non-skip result wins.
type Registry struct {
	mu        sync.RWMutex
	rewriters map[string]Rewriter
	// Order preserving list for Apply to maintain registration order
	ordered []Rewriter
}

// NewRegistry creates a new Registry instance.
func NewRegistry() *Registry {
	return &Registry{
		rewriters: make(map[string]Rewriter),
		ordered:   make([]Rewriter, 0),
	}
}

// Register adds a rewriter to the registry.
// Returns an error if the rewriter is nil, has an empty name, or is already registered.
func (r *Registry) Register(rw Rewriter) error {
	if rw == nil {
		return errors.New("rewriter cannot be nil")
	}

	name := rw.Name()
	if name == "" {
		return errors.New("rewriter name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rewriters[name]; exists {
		return errors.New("rewriter already registered: " + name)
	}

	r.rewriters[name] = rw
	r.ordered = append(r.ordered, rw)

	return nil
}

// Get retrieves a rewriter by name.
// Returns the rewriter and true if found, or nil and false if not found.
func (r *Registry) Get(name string) (Rewriter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rw, ok := r.rewriters[name]
	return rw, ok
}

// GetAll returns all registered rewriters in registration order.
// The returned slice is a copy and safe for concurrent use.
func (r *Registry) GetAll() []Rewriter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Rewriter, 0, len(r.ordered))
	result = append(result, r.ordered...)

	return result
}

// Apply runs the rewriters in registration order and returns the first
// non-skip result together with the rewriter that produced it.
// Returns nil, nil, false when every rewriter declines.
func (r *Registry) Apply(text string) (*Result, Rewriter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rw := range r.ordered {
		if res, ok := rw.Rewrite(text); ok {
			return res, rw, true
		}
	}

	return nil, nil, false
}

// Reset clears all registered rewriters.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rewriters = make(map[string]Rewriter)
	r.ordered = r.ordered[:0]
}
