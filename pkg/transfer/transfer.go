package transfer

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/jinzhu/copier"

	"github.com/runtime-presets/presets-go/pkg/log"
	"github.com/runtime-presets/presets-go/pkg/model"
)

// Transfer errors.
var (
	// ErrTypeMismatch is returned when source and destination types differ.
	ErrTypeMismatch = model.ErrTypeMismatch

	// ErrRenameTarget is recorded when a rename points at a missing attribute.
	ErrRenameTarget = errors.New("rename target not found")
)

type options struct {
	scope    model.Scope
	renames  RenameTable
	deepCopy bool
	logger   log.Logger
}

// Option configures a Transferer.
type Option func(*options)

// WithDeclaredOnly restricts the transfer to members declared directly on
// the type, excluding members promoted from embedded structs.
func WithDeclaredOnly() Option {
	return func(o *options) { o.scope = model.ScopeDeclaredOnly }
}

// WithScope selects the traversal scope explicitly.
func WithScope(s model.Scope) Option {
	return func(o *options) { o.scope = s }
}

// WithRenames replaces the rename table. Pass an empty table to disable
// renaming.
func WithRenames(r RenameTable) Option {
	return func(o *options) { o.renames = r }
}

// WithDeepCopy duplicates slices, maps and struct pointers instead of
// sharing them between source and destination.
func WithDeepCopy() Option {
	return func(o *options) { o.deepCopy = true }
}

// WithLogger sets the event logger. The default writes to slog.Default().
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Transferer copies attribute values between instances of the same type.
// A Transferer holds no per-call state.
type Transferer struct {
	opts options
}

// New creates a Transferer.
func New(opts ...Option) *Transferer {
	o := options{
		scope:   model.ScopeInherited,
		renames: DefaultRenames,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewSlogAdapter(slog.Default())
	}
	return &Transferer{opts: o}
}

// Transfer copies the values of src into dst using a Transferer built from opts.
func Transfer(dst, src any, opts ...Option) (*Report, error) {
	return New(opts...).Transfer(dst, src)
}

// Values copies src into dst and returns dst. On a type mismatch it
// returns the zero T and leaves both instances untouched.
func Values[T any](dst, src T, opts ...Option) (T, error) {
	if _, err := New(opts...).Transfer(dst, src); err != nil {
		var zero T
		return zero, err
	}
	return dst, nil
}

// Transfer copies the values of src into dst. Both must be non-nil
// pointers to the same struct type. The returned Report lists skipped
// attributes; use Report.Err to treat them as an error.
func (t *Transferer) Transfer(dst, src any) (*Report, error) {
	typ, err := t.check(dst, src)
	if err != nil {
		t.opts.logger.Log(log.Event{
			Timestamp: time.Now(),
			Operation: log.OpTransfer,
			Outcome:   log.OutcomeFailed,
			Type:      model.FullTypeName(typ),
			Error:     err.Error(),
		})
		return nil, err
	}

	desc, err := model.Describe(typ, t.opts.scope)
	if err != nil {
		return nil, err
	}
	// Rename targets are resolved against the full attribute set so that
	// a declared-only walk can still reach an inherited replacement.
	full, err := model.Describe(typ, model.ScopeInherited)
	if err != nil {
		return nil, err
	}

	report := &Report{Type: desc.FullName()}
	dv, sv := reflect.ValueOf(dst), reflect.ValueOf(src)

	for _, attr := range desc.Attributes {
		if !attr.Copyable() {
			continue
		}

		target := attr
		if to, ok := t.opts.renames.Resolve(attr.Name); ok {
			mapped, found := full.Lookup(to)
			if !found {
				t.skip(report, attr.Name, fmt.Errorf("%w: %s -> %s", ErrRenameTarget, attr.Name, to))
				continue
			}
			report.rename(attr.Name, mapped.Name)
			target = mapped
		}

		if err := t.copyOne(target, dv, sv); err != nil {
			t.skip(report, attr.Name, err)
			continue
		}
		report.Copied = append(report.Copied, target.Name)
	}

	t.opts.logger.Log(log.Event{
		Timestamp: time.Now(),
		Operation: log.OpTransfer,
		Outcome:   log.OutcomeOK,
		Type:      report.Type,
		Detail:    fmt.Sprintf("copied %d, skipped %d", len(report.Copied), len(report.Skipped)),
	})
	return report, nil
}

func (t *Transferer) check(dst, src any) (reflect.Type, error) {
	td, err := model.TypeOf(dst)
	if err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}
	ts, err := model.TypeOf(src)
	if err != nil {
		return td, fmt.Errorf("source: %w", err)
	}
	if td != ts {
		return td, fmt.Errorf("%w: cannot transfer %s into %s", ErrTypeMismatch, model.FullTypeName(ts), model.FullTypeName(td))
	}
	return td, nil
}

func (t *Transferer) copyOne(attr *model.Attribute, dst, src reflect.Value) error {
	v, err := attr.Get(src)
	if err != nil {
		return err
	}
	if t.opts.deepCopy {
		if v, err = duplicate(v); err != nil {
			return &model.AttributeError{Type: model.TypeName(src.Type().Elem()), Attribute: attr.Name, Op: "copy", Err: err}
		}
	}
	return attr.Set(dst, v)
}

func (t *Transferer) skip(r *Report, attribute string, err error) {
	r.skip(attribute, err)
	t.opts.logger.Log(log.Event{
		Timestamp: time.Now(),
		Operation: log.OpTransfer,
		Outcome:   log.OutcomeSkipped,
		Type:      r.Type,
		Attribute: attribute,
		Error:     err.Error(),
	})
}

// duplicate returns an independent copy of slice, map and struct pointer
// values. Scalars and struct values are already copied by assignment.
// Pointed-to structs are copied through their exported fields.
func duplicate(v reflect.Value) (reflect.Value, error) {
	var out reflect.Value
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		if v.IsNil() {
			return v, nil
		}
		out = reflect.New(v.Type())
	case reflect.Pointer:
		if v.IsNil() || v.Type().Elem().Kind() != reflect.Struct {
			return v, nil
		}
		out = reflect.New(v.Type().Elem())
	default:
		return v, nil
	}

	if err := copier.CopyWithOption(out.Interface(), v.Interface(), copier.Option{DeepCopy: true}); err != nil {
		return reflect.Value{}, err
	}
	if v.Kind() == reflect.Pointer {
		return out, nil
	}
	return out.Elem(), nil
}
