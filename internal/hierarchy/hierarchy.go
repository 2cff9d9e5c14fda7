// internal/hierarchy/hierarchy.go
// Package: hierarchy
package hierarchy

import (
	"errors"
	"slices"
)

// ErrEmptyHierarchy is returned when the top type of a hierarchy without
// any types is requested.
var ErrEmptyHierarchy = errors.New("cannot get top type: hierarchy is empty")

// Type is one declared type of a benchmark: its name and the set of
// methods it declares itself (inherited methods live on the other types
// of the hierarchy).
type Type struct {
	Name    string
	Methods map[string]bool
}

// NewType returns a Type declaring the given methods.
func NewType(name string, methods ...string) *Type {
	t := &Type{Name: name, Methods: make(map[string]bool, len(methods))}
	for _, m := range methods {
		t.Declare(m)
	}
	return t
}

// Declare adds a method to the type's declared-method set.
func (t *Type) Declare(method string) {
	if t.Methods == nil {
		t.Methods = map[string]bool{}
	}
	t.Methods[method] = true
}

// HasMethod reports whether the type itself declares method.
func (t *Type) HasMethod(method string) bool {
	return t.Methods[method]
}

// Hierarchy is an ordered chain of types, most-derived first.
type Hierarchy struct {
	types []*Type
}

// New returns a hierarchy holding types in the given order.
func New(types ...*Type) *Hierarchy {
	h := &Hierarchy{}
	for _, t := range types {
		h.AddType(t)
	}
	return h
}

// AddType appends t. The first type ever added stays the top.
func (h *Hierarchy) AddType(t *Type) {
	h.types = append(h.types, t)
}

// HasMethod reports whether any type in the chain declares method.
func (h *Hierarchy) HasMethod(method string) bool {
	return slices.ContainsFunc(h.types, func(t *Type) bool {
		return t.HasMethod(method)
	})
}

// Top returns the most-derived type, which is the first one added.
func (h *Hierarchy) Top() (*Type, error) {
	if len(h.types) == 0 {
		return nil, ErrEmptyHierarchy
	}
	return h.types[0], nil
}

// Types returns the types in insertion order.
func (h *Hierarchy) Types() []*Type {
	return slices.Clone(h.types)
}

// Len returns the number of types in the chain.
func (h *Hierarchy) Len() int { return len(h.types) }
