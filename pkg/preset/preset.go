// Package preset provides the Preset container: a template component
// instance whose state can be applied onto other instances of its type.
//
// A preset is Bound while it holds a template and Empty after Release.
// Templates are either captured from a live instance, in which case the
// preset owns a transient capture scope, or bound to an instance that
// lives in a scope owned by someone else.
//
//	p, err := preset.Capture(light)
//	if err != nil {
//		return err
//	}
//	defer p.Release()
//
//	if err := p.ApplyAll(lights...); err != nil {
//		slog.Warn("some lights were not updated", "error", err)
//	}
package preset

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/runtime-presets/presets-go/pkg/log"
	"github.com/runtime-presets/presets-go/pkg/model"
	"github.com/runtime-presets/presets-go/pkg/scope"
	"github.com/runtime-presets/presets-go/pkg/transfer"
)

// Preset errors.
var (
	ErrNoTemplate = errors.New("preset has no template")
	ErrNilTarget  = errors.New("target is nil")
	ErrNotOwned   = errors.New("template is not owned by scope")

	// ErrTypeMismatch is returned when a target's type differs from the template's.
	ErrTypeMismatch = model.ErrTypeMismatch
)

// State is the lifecycle state of a preset.
type State uint8

const (
	// StateEmpty means no template is bound.
	StateEmpty State = iota

	// StateBound means a template is bound.
	StateBound
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "EMPTY"
	case StateBound:
		return "BOUND"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

type options struct {
	logger   log.Logger
	transfer []transfer.Option
}

// Option configures a Preset.
type Option func(*options)

// WithLogger sets the event logger used by the preset and its transfers.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTransferOptions adds options for the transfers the preset runs.
func WithTransferOptions(opts ...transfer.Option) Option {
	return func(o *options) { o.transfer = append(o.transfer, opts...) }
}

// WithDeclaredOnly restricts transfers to members declared on the type.
func WithDeclaredOnly() Option {
	return WithTransferOptions(transfer.WithDeclaredOnly())
}

// WithDeepCopy makes transfers duplicate slices, maps and referenced structs.
func WithDeepCopy() Option {
	return WithTransferOptions(transfer.WithDeepCopy())
}

// Preset holds a template instance and its type.
// Preset is safe for concurrent use.
type Preset struct {
	mu sync.Mutex

	template any
	typ      reflect.Type
	scope    *scope.Scope

	transferer *transfer.Transferer
	logger     log.Logger
}

func newPreset(opts []Option) *Preset {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewSlogAdapter(slog.Default())
	}
	return &Preset{
		transferer: transfer.New(append([]transfer.Option{transfer.WithLogger(o.logger)}, o.transfer...)...),
		logger:     o.logger,
	}
}

// Capture creates a preset holding a copy of src. The copy lives in a new
// inactive transient scope that the preset destroys on Release.
func Capture(src any, opts ...Option) (*Preset, error) {
	t, err := model.TypeOf(src)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}

	p := newPreset(opts)
	s := scope.NewCapture()
	template, err := s.GetOrCreate(t)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}

	report, err := p.transferer.Transfer(template, src)
	if err != nil {
		_ = s.Destroy()
		p.event(log.OpCapture, log.OutcomeFailed, t, s, "", err)
		return nil, fmt.Errorf("capture: %w", err)
	}

	p.template = template
	p.typ = t
	p.scope = s
	p.event(log.OpCapture, log.OutcomeOK, t, s, report.String(), nil)
	return p, nil
}

// Bind creates a preset around an existing template. When s is non-nil it
// must own template; the preset destroys s on Release only if s is
// transient. A nil s leaves the template's lifetime to the caller.
func Bind(template any, s *scope.Scope, opts ...Option) (*Preset, error) {
	t, err := model.TypeOf(template)
	if err != nil {
		return nil, fmt.Errorf("bind: %w", err)
	}
	if s != nil && !s.Owns(template) {
		return nil, fmt.Errorf("bind: %w: %s", ErrNotOwned, s.Name())
	}

	p := newPreset(opts)
	p.template = template
	p.typ = t
	p.scope = s
	return p, nil
}

// Apply copies the template's state onto target.
func (p *Preset) Apply(target any) error {
	_, err := p.ApplyReport(target)
	return err
}

// ApplyReport is Apply returning the transfer report.
func (p *Preset) ApplyReport(target any) (*transfer.Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.compatible(target); err != nil {
		p.event(log.OpApply, log.OutcomeFailed, p.typ, p.scope, "", err)
		return nil, err
	}

	report, err := p.transferer.Transfer(target, p.template)
	if err != nil {
		p.event(log.OpApply, log.OutcomeFailed, p.typ, p.scope, "", err)
		return nil, err
	}
	p.event(log.OpApply, log.OutcomeOK, p.typ, p.scope, report.String(), nil)
	return report, nil
}

// ApplyAll applies the template to every target, in order. Every target
// is attempted; the result aggregates the failures, if any.
func (p *Preset) ApplyAll(targets ...any) error {
	var result *multierror.Error
	for i, target := range targets {
		if err := p.Apply(target); err != nil {
			result = multierror.Append(result, fmt.Errorf("target %d: %w", i, err))
		}
	}
	return result.ErrorOrNil()
}

// UpdateFrom refreshes the template from a live instance.
func (p *Preset) UpdateFrom(live any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.template == nil {
		p.event(log.OpUpdate, log.OutcomeFailed, nil, nil, "", ErrNoTemplate)
		return ErrNoTemplate
	}

	report, err := p.transferer.Transfer(p.template, live)
	if err != nil {
		p.event(log.OpUpdate, log.OutcomeFailed, p.typ, p.scope, "", err)
		return err
	}
	p.event(log.OpUpdate, log.OutcomeOK, p.typ, p.scope, report.String(), nil)
	return nil
}

// Release clears the template. It returns true only when the template
// lived in a transient scope, which is destroyed. Releasing an empty
// preset returns false.
func (p *Preset) Release() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.template == nil {
		return false
	}

	s, t := p.scope, p.typ
	p.template = nil
	p.typ = nil
	p.scope = nil

	if s == nil || s.Kind() != scope.Transient {
		p.event(log.OpRelease, log.OutcomeOK, t, s, "template kept", nil)
		return false
	}
	if err := s.Destroy(); err != nil {
		p.event(log.OpRelease, log.OutcomeFailed, t, s, "", err)
		return false
	}
	p.event(log.OpRelease, log.OutcomeOK, t, s, "scope destroyed", nil)
	return true
}

// CanApplyTo reports whether target is a non-nil instance of the
// template's type.
func (p *Preset) CanApplyTo(target any) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.compatible(target) == nil
}

// State returns the lifecycle state.
func (p *Preset) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.template == nil {
		return StateEmpty
	}
	return StateBound
}

// Bound reports whether a template is bound.
func (p *Preset) Bound() bool {
	return p.State() == StateBound
}

// Type returns the template's type, or nil when unbound.
func (p *Preset) Type() reflect.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.typ
}

// TypeName returns the short name of the template's type, or "".
func (p *Preset) TypeName() string {
	return model.TypeName(p.Type())
}

// FullTypeName returns the package-qualified name of the template's type, or "".
func (p *Preset) FullTypeName() string {
	return model.FullTypeName(p.Type())
}

// Template returns the template instance, or nil when unbound.
// Callers must not retain it past Release.
func (p *Preset) Template() any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.template
}

// Scope returns the scope holding the template, or nil.
func (p *Preset) Scope() *scope.Scope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scope
}

func (p *Preset) compatible(target any) error {
	if p.template == nil {
		return ErrNoTemplate
	}
	t, err := model.TypeOf(target)
	if err != nil {
		if errors.Is(err, model.ErrNilInstance) {
			return ErrNilTarget
		}
		return fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	if t != p.typ {
		return fmt.Errorf("%w: %s is not %s", ErrTypeMismatch, model.FullTypeName(t), model.FullTypeName(p.typ))
	}
	return nil
}

func (p *Preset) event(op log.Operation, outcome log.Outcome, t reflect.Type, s *scope.Scope, detail string, err error) {
	e := log.Event{
		Timestamp: time.Now(),
		Operation: op,
		Outcome:   outcome,
		Type:      model.FullTypeName(t),
		Detail:    detail,
		Error:     log.ErrorString(err),
	}
	if s != nil {
		e.ScopeID = s.ID()
	}
	p.logger.Log(e)
}
