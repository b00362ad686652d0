// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// Params holds named numeric surface parameters, as read from a job file.
type Params map[string]float64

// Get returns the parameter key, or def if it is not set.
func (p Params) Get(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Factory creates a surface from parameters. Implementations should
// validate the parameters and return descriptive errors.
type Factory func(p Params) (Surface, error)

// RegistryEntry represents a registered surface type.
type RegistryEntry struct {
	// Name is the unique identifier for this surface type.
	Name string

	// Description is a one-line summary listing the parameters.
	Description string

	// Factory creates surface instances.
	Factory Factory
}

// globalRegistry is the default registry.
var globalRegistry = &Registry{}

// Registry manages named surface types.
//
// Example registration:
//
//	func init() {
//	    surface.Register("torus", "torus (r, R)", torusFactory)
//	}
//
// Example usage:
//
//	s, err := surface.New("torus", surface.Params{"r": 1, "R": 3})
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// NewRegistry creates a new empty registry.
// Most code should use the global registry via Register and New.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*RegistryEntry),
	}
}

// Register adds a surface type to the global registry.
// Registering a name that already exists replaces the previous entry.
func Register(name, description string, factory Factory) {
	globalRegistry.Register(name, description, factory)
}

// Unregister removes a surface type from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// List returns all registered names in alphabetical order.
func List() []string {
	return globalRegistry.List()
}

// Get returns information about a registered surface type.
func Get(name string) (*RegistryEntry, bool) {
	return globalRegistry.Get(name)
}

// New creates a surface of the named type from the global registry.
func New(name string, p Params) (Surface, error) {
	return globalRegistry.New(name, p)
}

// Register adds a surface type to this registry.
func (r *Registry) Register(name, description string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]*RegistryEntry)
	}
	r.entries[name] = &RegistryEntry{
		Name:        name,
		Description: description,
		Factory:     factory,
	}
}

// Unregister removes a surface type from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, name)
}

// List returns all registered names in alphabetical order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns information about a registered surface type.
func (r *Registry) Get(name string) (*RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, false
	}

	// Return a copy to prevent modification
	entryCopy := *entry
	return &entryCopy, true
}

// New creates a surface of the named type.
func (r *Registry) New(name string, p Params) (Surface, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	s, err := entry.Factory(p)
	if err != nil {
		return nil, fmt.Errorf("surface: %s: %w", name, err)
	}
	return s, nil
}

// ErrInvalidParams is returned by the built-in factories for out of range
// parameters.
var ErrInvalidParams = errors.New("surface: invalid parameters")

// NotFoundError indicates a named surface type is not registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return "surface: type not found: " + e.Name
}

func positive(p Params, keys ...string) error {
	for _, k := range keys {
		if v, ok := p[k]; ok && !(v > 0) {
			return fmt.Errorf("%w: %s = %g", ErrInvalidParams, k, v)
		}
	}
	return nil
}

// init registers the built-in analytic surfaces.
func init() {
	Register("plane", "rectangle (w, h)", func(p Params) (Surface, error) {
		if err := positive(p, "w", "h"); err != nil {
			return nil, err
		}
		return NewPlane(p.Get("w", 1), p.Get("h", 1)), nil
	})
	Register("bilinear", "unit square with the (1,1) corner raised (twist)", func(p Params) (Surface, error) {
		return NewBilinear(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1}, r3.Vec{X: 1, Y: 1, Z: p.Get("twist", 0.5)}), nil
	})
	Register("cylinder", "cylinder segment (radius, height, angle)", func(p Params) (Surface, error) {
		if err := positive(p, "radius", "height", "angle"); err != nil {
			return nil, err
		}
		return NewCylinder(p.Get("radius", 1), p.Get("height", 1), p.Get("angle", math.Pi)), nil
	})
	Register("bump", "plane with a sine bump (w, h, a)", func(p Params) (Surface, error) {
		if err := positive(p, "w", "h"); err != nil {
			return nil, err
		}
		return NewBump(p.Get("w", 1), p.Get("h", 1), p.Get("a", 0.25)), nil
	})
	Register("wing", "swept wing skin (span, root, tip, sweep, thickness)", func(p Params) (Surface, error) {
		if err := positive(p, "span", "root", "tip"); err != nil {
			return nil, err
		}
		w := NewWing()
		w.Span = p.Get("span", w.Span)
		w.RootChord = p.Get("root", w.RootChord)
		w.TipChord = p.Get("tip", w.TipChord)
		w.Sweep = p.Get("sweep", w.Sweep)
		w.Thickness = p.Get("thickness", w.Thickness)
		return w, nil
	})
	Register("strip", "degenerate strip (length)", func(p Params) (Surface, error) {
		if err := positive(p, "length"); err != nil {
			return nil, err
		}
		return NewStrip(p.Get("length", 1)), nil
	})
}
