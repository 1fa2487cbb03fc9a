package model

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Registry errors.
var (
	ErrUnknownType   = errors.New("unknown component type")
	ErrAmbiguousType = errors.New("ambiguous component type name")
	ErrDuplicateType = errors.New("type name already registered")
)

// Registry maps type names to component types. Lookups accept either the
// full or the short name; short names must be unambiguous.
// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	byFull  map[string]reflect.Type
	byShort map[string][]reflect.Type
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byFull:  make(map[string]reflect.Type),
		byShort: make(map[string][]reflect.Type),
	}
}

// Register adds the type of prototype, which must be a pointer to a struct.
// Registering the same type twice is a no-op.
func (r *Registry) Register(prototype any) error {
	t, err := TypeOf(prototype)
	if err != nil {
		return err
	}
	return r.RegisterType(t)
}

// RegisterType adds struct type t.
func (r *Registry) RegisterType(t reflect.Type) error {
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: got %v", ErrNotInstance, t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	full := FullTypeName(t)
	if existing, ok := r.byFull[full]; ok {
		if existing == t {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrDuplicateType, full)
	}
	r.byFull[full] = t
	r.byShort[t.Name()] = append(r.byShort[t.Name()], t)
	return nil
}

// Lookup resolves a full or short type name.
func (r *Registry) Lookup(name string) (reflect.Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.byFull[name]; ok {
		return t, nil
	}
	switch ts := r.byShort[name]; len(ts) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	case 1:
		return ts[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousType, name)
	}
}

// New creates a fresh instance of the named type.
func (r *Registry) New(name string) (any, error) {
	t, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return New(t), nil
}

// Names returns the full names of all registered types, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byFull))
	for n := range r.byFull {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered types.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byFull)
}
