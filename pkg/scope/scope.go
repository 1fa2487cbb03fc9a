// Package scope provides the containers that own component instances.
//
// A Scope holds at most one instance per component type, created on demand
// by GetOrCreate. Transient scopes back preset templates and are destroyed
// when the preset is released; persistent scopes back templates loaded
// from assets and outlive any single preset.
package scope

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/runtime-presets/presets-go/pkg/model"
)

// Scope errors.
var (
	ErrDestroyed          = errors.New("scope destroyed")
	ErrDuplicateComponent = errors.New("component type already present")
	ErrComponentNotFound  = errors.New("component not found")
)

// CapturePrefix is the name prefix of scopes created to hold captured templates.
const CapturePrefix = "tmp_"

// Kind tells whether a scope may be destroyed by the preset that holds it.
type Kind uint8

const (
	// Transient scopes are owned by exactly one preset.
	Transient Kind = iota

	// Persistent scopes are owned by the caller.
	Persistent
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Transient:
		return "transient"
	case Persistent:
		return "persistent"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Destroyer is implemented by components that need to release resources
// when their scope is destroyed.
type Destroyer interface {
	OnDestroy()
}

// Scope owns a set of component instances, one per type.
type Scope struct {
	mu sync.RWMutex

	id     string
	name   string
	kind   Kind
	active bool

	destroyed  bool
	components []any
	byType     map[reflect.Type]any
}

// New creates an active scope.
func New(kind Kind, name string) *Scope {
	return &Scope{
		id:     uuid.NewString(),
		name:   name,
		kind:   kind,
		active: true,
		byType: make(map[reflect.Type]any),
	}
}

// NewCapture creates an inactive transient scope named after its id.
func NewCapture() *Scope {
	s := New(Transient, "")
	s.name = CapturePrefix + s.id
	s.active = false
	return s
}

// ID returns the unique scope identifier.
func (s *Scope) ID() string {
	return s.id
}

// Name returns the scope name.
func (s *Scope) Name() string {
	return s.name
}

// Kind returns the scope kind.
func (s *Scope) Kind() Kind {
	return s.kind
}

// Active reports whether the scope is active.
func (s *Scope) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SetActive sets the active flag.
func (s *Scope) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

// Destroyed reports whether Destroy has been called.
func (s *Scope) Destroyed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.destroyed
}

// Add places an existing instance in the scope.
func (s *Scope) Add(instance any) error {
	t, err := model.TypeOf(instance)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return ErrDestroyed
	}
	if _, exists := s.byType[t]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateComponent, model.TypeName(t))
	}
	s.put(t, instance)
	return nil
}

// Get returns the instance of type t.
func (s *Scope) Get(t reflect.Type) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return nil, ErrDestroyed
	}
	c, ok := s.byType[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrComponentNotFound, model.TypeName(t))
	}
	return c, nil
}

// GetOrCreate returns the instance of struct type t, creating it first
// when the scope has none.
func (s *Scope) GetOrCreate(t reflect.Type) (any, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: got %v", model.ErrNotInstance, t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return nil, ErrDestroyed
	}
	if c, ok := s.byType[t]; ok {
		return c, nil
	}
	c := model.New(t)
	s.put(t, c)
	return c, nil
}

// Owns reports whether instance is one of the scope's components.
func (s *Scope) Owns(instance any) bool {
	t, err := model.TypeOf(instance)
	if err != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byType[t]
	return ok && c == instance
}

// Components returns the components in insertion order.
func (s *Scope) Components() []any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]any, len(s.components))
	copy(result, s.components)
	return result
}

// Destroy calls OnDestroy on every component, newest first, and empties
// the scope. Destroying twice returns ErrDestroyed.
func (s *Scope) Destroy() error {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return ErrDestroyed
	}
	s.destroyed = true
	s.active = false
	components := s.components
	s.components = nil
	s.byType = make(map[reflect.Type]any)
	s.mu.Unlock()

	for i := len(components) - 1; i >= 0; i-- {
		if d, ok := components[i].(Destroyer); ok {
			d.OnDestroy()
		}
	}
	return nil
}

// String returns a short description for logs.
func (s *Scope) String() string {
	return fmt.Sprintf("%s (%s, %s)", s.name, s.kind, s.id)
}

func (s *Scope) put(t reflect.Type, instance any) {
	s.byType[t] = instance
	s.components = append(s.components, instance)
}
