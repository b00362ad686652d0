// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func planeFactory(p Params) (Surface, error) {
	return NewPlane(p.Get("w", 1), p.Get("h", 1)), nil
}

// TestRegistryRegister tests surface type registration.
func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	r.Register("test", "test plane", planeFactory)

	entry, ok := r.Get("test")
	if !ok {
		t.Fatal("registered surface not found")
	}
	if entry.Name != "test" {
		t.Errorf("Name = %s, want test", entry.Name)
	}
	if entry.Description != "test plane" {
		t.Errorf("Description = %q, want %q", entry.Description, "test plane")
	}
}

// TestRegistryUnregister tests surface type removal.
func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register("temp", "", planeFactory)

	if _, ok := r.Get("temp"); !ok {
		t.Fatal("surface should exist before unregister")
	}
	r.Unregister("temp")
	if _, ok := r.Get("temp"); ok {
		t.Error("surface should not exist after unregister")
	}
}

// TestRegistryList tests that names are listed alphabetically.
func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"wing", "bump", "plane"} {
		r.Register(name, "", planeFactory)
	}
	if diff := cmp.Diff([]string{"bump", "plane", "wing"}, r.List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

// TestRegistryNew tests creating surfaces with parameters.
func TestRegistryNew(t *testing.T) {
	r := NewRegistry()
	r.Register("plane", "", planeFactory)

	s, err := r.New("plane", Params{"w": 3, "h": 2})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	p := s.Eval(1, 1)
	if p.X != 3 || p.Y != 2 {
		t.Errorf("Eval(1,1) = %v, want (3,2,0)", p)
	}
}

// TestRegistryNotFound tests the error for an unknown name.
func TestRegistryNotFound(t *testing.T) {
	r := NewRegistry()

	_, err := r.New("nonexistent", nil)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %T", err)
	}
	if notFound.Name != "nonexistent" {
		t.Errorf("error name = %s, want nonexistent", notFound.Name)
	}
	if err.Error() != "surface: type not found: nonexistent" {
		t.Errorf("error message = %q, unexpected format", err.Error())
	}
}

// TestRegistryFactoryError tests that factory errors are wrapped.
func TestRegistryFactoryError(t *testing.T) {
	r := NewRegistry()
	expectedErr := errors.New("creation failed")
	r.Register("failing", "", func(Params) (Surface, error) {
		return nil, expectedErr
	})

	_, err := r.New("failing", nil)
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected factory error, got %v", err)
	}
}

// TestRegistryOverwrite tests that re-registering overwrites.
func TestRegistryOverwrite(t *testing.T) {
	r := NewRegistry()
	r.Register("test", "first", planeFactory)
	r.Register("test", "second", planeFactory)

	entry, _ := r.Get("test")
	if entry.Description != "second" {
		t.Errorf("Description = %q, want second (should be overwritten)", entry.Description)
	}
}

// TestGlobalRegistry tests the built-in surfaces.
func TestGlobalRegistry(t *testing.T) {
	want := []string{"bilinear", "bump", "cylinder", "plane", "strip", "wing"}
	if diff := cmp.Diff(want, List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
	for _, name := range want {
		s, err := New(name, nil)
		if err != nil {
			t.Errorf("New(%q) failed: %v", name, err)
			continue
		}
		_ = s.Eval(0.5, 0.5)
	}
}

// TestGlobalRegistryInvalidParams tests parameter validation.
func TestGlobalRegistryInvalidParams(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"plane", Params{"w": 0}},
		{"cylinder", Params{"radius": -1}},
		{"wing", Params{"span": 0}},
		{"strip", Params{"length": -2}},
	}
	for _, tt := range tests {
		if _, err := New(tt.name, tt.p); !errors.Is(err, ErrInvalidParams) {
			t.Errorf("New(%q, %v) error = %v, want ErrInvalidParams", tt.name, tt.p, err)
		}
	}
}
