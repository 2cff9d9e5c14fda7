// internal/model/parameter.go
// Package: model
package model

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidParameter is returned for parameter values that are neither
// scalars nor collections of parameter values.
var ErrInvalidParameter = errors.New("parameters must be either scalars or collections")

// Value is a parameter value: either a scalar (string, bool, integer or
// float) or an ordered collection of named values.
type Value struct {
	scalar any
	items  []Param
	list   bool
	keyed  bool
}

// Param is a named parameter value. Inside a collection built from a
// slice the name is the element index.
type Param struct {
	Name  string
	Value Value
}

// Scalar returns a scalar Value. v must be a string, bool, integer or
// float.
func Scalar(v any) (Value, error) {
	switch x := v.(type) {
	case string, bool, float64, int64:
		return Value{scalar: x}, nil
	case float32:
		return Value{scalar: float64(x)}, nil
	case int:
		return Value{scalar: int64(x)}, nil
	case int8, int16, int32, uint, uint8, uint16, uint32, uint64:
		return Value{scalar: reflect.ValueOf(x).Convert(reflect.TypeOf(int64(0))).Interface()}, nil
	}
	return Value{}, fmt.Errorf("%w, got: %s", ErrInvalidParameter, typeName(v))
}

// List returns a collection Value from params in the given order.
func List(params ...Param) Value {
	return Value{items: slices.Clone(params), list: true}
}

// ValueOf converts a decoded configuration value (as produced by YAML or
// JSON decoders) into a Value. Slices become index-named collections, maps
// become collections sorted by key. Anything else that is not a scalar is
// rejected.
func ValueOf(v any) (Value, error) {
	if v == nil {
		return Value{}, fmt.Errorf("%w, got: null", ErrInvalidParameter)
	}
	if val, err := Scalar(v); err == nil {
		return val, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]Param, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := ValueOf(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, Param{Name: strconv.Itoa(i), Value: item})
		}
		return Value{items: items, list: true}, nil
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]reflect.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := fmt.Sprint(iter.Key().Interface())
			keys = append(keys, k)
			byKey[k] = iter.Value()
		}
		slices.Sort(keys)
		items := make([]Param, 0, len(keys))
		for _, k := range keys {
			item, err := ValueOf(byKey[k].Interface())
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			items = append(items, Param{Name: k, Value: item})
		}
		return Value{items: items, list: true, keyed: true}, nil
	}
	return Value{}, fmt.Errorf("%w, got: %s", ErrInvalidParameter, typeName(v))
}

func typeName(v any) string {
	if v == nil {
		return "null"
	}
	return reflect.TypeOf(v).String()
}

// IsList reports whether v is a collection.
func (v Value) IsList() bool { return v.list }

// Items returns the collection entries; nil for scalars.
func (v Value) Items() []Param { return slices.Clone(v.items) }

// String returns the scalar in its serialized form, or a compact
// rendering of a collection.
func (v Value) String() string {
	if v.list {
		parts := make([]string, len(v.items))
		for i, p := range v.items {
			if v.keyed {
				parts[i] = p.Name + ": " + p.Value.String()
			} else {
				parts[i] = p.Value.String()
			}
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	switch x := v.scalar.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}

// Interface returns the plain Go representation used on the wire:
// scalars as themselves, keyed collections as maps and other collections
// as slices.
func (v Value) Interface() any {
	if !v.list {
		return v.scalar
	}
	if v.keyed {
		m := make(map[string]any, len(v.items))
		for _, p := range v.items {
			m[p.Name] = p.Value.Interface()
		}
		return m
	}
	s := make([]any, len(v.items))
	for i, p := range v.items {
		s[i] = p.Value.Interface()
	}
	return s
}

// ParameterSet is a named group of parameters passed to one variant.
// Parameters are kept sorted by name.
type ParameterSet struct {
	Name   string
	params []Param
}

// NewParameterSet builds a set from a decoded map, validating every value.
func NewParameterSet(name string, values map[string]any) (ParameterSet, error) {
	ps := ParameterSet{Name: name}
	for k, raw := range values {
		v, err := ValueOf(raw)
		if err != nil {
			return ParameterSet{}, fmt.Errorf("parameter %q: %w", k, err)
		}
		ps.params = append(ps.params, Param{Name: k, Value: v})
	}
	ps.sort()
	return ps, nil
}

// Set adds or replaces a parameter.
func (ps *ParameterSet) Set(name string, v Value) {
	for i := range ps.params {
		if ps.params[i].Name == name {
			ps.params[i].Value = v
			return
		}
	}
	ps.params = append(ps.params, Param{Name: name, Value: v})
	ps.sort()
}

func (ps *ParameterSet) sort() {
	slices.SortFunc(ps.params, func(a, b Param) int { return strings.Compare(a.Name, b.Name) })
}

// Params returns the parameters sorted by name.
func (ps ParameterSet) Params() []Param { return slices.Clone(ps.params) }

// Get returns the named parameter.
func (ps ParameterSet) Get(name string) (Value, bool) {
	for _, p := range ps.params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return Value{}, false
}

// Len returns the number of parameters.
func (ps ParameterSet) Len() int { return len(ps.params) }

// Map returns the parameters as a plain map for the worker payload.
func (ps ParameterSet) Map() map[string]any {
	m := make(map[string]any, len(ps.params))
	for _, p := range ps.params {
		m[p.Name] = p.Value.Interface()
	}
	return m
}

// String renders the set as "{name=value, ...}".
func (ps ParameterSet) String() string {
	parts := make([]string, len(ps.params))
	for i, p := range ps.params {
		parts[i] = p.Name + "=" + p.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
