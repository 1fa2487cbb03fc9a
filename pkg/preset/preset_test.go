package preset

import (
	"reflect"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/runtime-presets/presets-go/pkg/components"
	"github.com/runtime-presets/presets-go/pkg/log"
	"github.com/runtime-presets/presets-go/pkg/model"
	"github.com/runtime-presets/presets-go/pkg/scope"
)

func quiet() Option {
	return WithLogger(log.NoopLogger{})
}

func newLight(intensity float32, c components.Color) *components.Light {
	l := &components.Light{}
	l.Reset()
	l.SetIntensity(intensity)
	l.SetColor(c)
	return l
}

var blue = components.Color{B: 1, A: 1}

func TestStateString(t *testing.T) {
	assert.Equal(t, "EMPTY", StateEmpty.String())
	assert.Equal(t, "BOUND", StateBound.String())
	assert.Equal(t, "State(5)", State(5).String())
}

func TestCaptureApplyLight(t *testing.T) {
	src := newLight(2, components.Red)
	target := newLight(0.5, blue)

	p, err := Capture(src, quiet())
	require.NoError(t, err)
	defer p.Release()

	require.NoError(t, p.Apply(target))
	assert.Equal(t, float32(2), target.Intensity())
	assert.Equal(t, components.Red, target.Color())
}

func TestCaptureIsolatesTemplate(t *testing.T) {
	src := newLight(2, components.Red)

	p, err := Capture(src, quiet())
	require.NoError(t, err)
	defer p.Release()

	template, ok := p.Template().(*components.Light)
	require.True(t, ok)
	assert.NotSame(t, src, template)

	src.SetIntensity(9)
	assert.Equal(t, float32(2), template.Intensity(), "template must not follow the source")

	s := p.Scope()
	require.NotNil(t, s)
	assert.Equal(t, scope.Transient, s.Kind())
	assert.False(t, s.Active())
	assert.True(t, strings.HasPrefix(s.Name(), scope.CapturePrefix))
	assert.True(t, s.Owns(template))
}

func TestCaptureRejectsInvalidSource(t *testing.T) {
	_, err := Capture(nil, quiet())
	assert.ErrorIs(t, err, model.ErrNilInstance)

	_, err = Capture(components.Light{}, quiet())
	assert.ErrorIs(t, err, model.ErrNotInstance)
}

func TestApplyErrors(t *testing.T) {
	p, err := Capture(newLight(1, components.Red), quiet())
	require.NoError(t, err)
	defer p.Release()

	var nilLight *components.Light
	assert.ErrorIs(t, p.Apply(nil), ErrNilTarget)
	assert.ErrorIs(t, p.Apply(nilLight), ErrNilTarget)

	renderer := &components.MeshRenderer{SortingOrder: 4}
	assert.ErrorIs(t, p.Apply(renderer), ErrTypeMismatch)
	assert.Equal(t, 4, renderer.SortingOrder)
}

func TestApplyAll(t *testing.T) {
	p, err := Capture(newLight(3, components.Red), quiet())
	require.NoError(t, err)
	defer p.Release()

	a, b := newLight(0, blue), newLight(0, blue)
	renderer := &components.MeshRenderer{}

	err = p.ApplyAll(a, renderer, nil, b)
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.ErrorIs(t, err, ErrNilTarget)

	assert.Equal(t, float32(3), a.Intensity())
	assert.Equal(t, float32(3), b.Intensity(), "failures must not stop later targets")

	assert.NoError(t, p.ApplyAll(a, b))
	assert.NoError(t, p.ApplyAll())
}

func TestUpdateFrom(t *testing.T) {
	p, err := Capture(newLight(1, components.Red), quiet())
	require.NoError(t, err)
	defer p.Release()

	live := newLight(6, blue)
	require.NoError(t, p.UpdateFrom(live))

	target := newLight(0, components.Black)
	require.NoError(t, p.Apply(target))
	assert.Equal(t, float32(6), target.Intensity())
	assert.Equal(t, blue, target.Color())

	assert.ErrorIs(t, p.UpdateFrom(&components.MeshFilter{}), ErrTypeMismatch)
}

func TestReleaseCaptured(t *testing.T) {
	p, err := Capture(newLight(1, components.Red), quiet())
	require.NoError(t, err)
	s := p.Scope()

	assert.True(t, p.Release())
	assert.True(t, s.Destroyed())
	assert.Equal(t, StateEmpty, p.State())
	assert.False(t, p.Bound())
	assert.Nil(t, p.Template())
	assert.Nil(t, p.Scope())

	assert.False(t, p.Release(), "second release")
}

func TestReleaseBoundToPersistentScope(t *testing.T) {
	s := scope.New(scope.Persistent, "assets")
	template := &components.Light{}
	require.NoError(t, s.Add(template))

	p, err := Bind(template, s, quiet())
	require.NoError(t, err)
	assert.Equal(t, StateBound, p.State())

	assert.False(t, p.Release())
	assert.False(t, s.Destroyed())
	assert.True(t, s.Owns(template))
	assert.Equal(t, StateEmpty, p.State())
}

func TestReleaseBoundWithoutScope(t *testing.T) {
	p, err := Bind(&components.Light{}, nil, quiet())
	require.NoError(t, err)

	assert.False(t, p.Release())
	assert.False(t, p.Bound())
}

func TestBindRequiresOwnership(t *testing.T) {
	s := scope.New(scope.Persistent, "assets")
	_, err := Bind(&components.Light{}, s, quiet())
	assert.ErrorIs(t, err, ErrNotOwned)

	_, err = Bind(nil, nil, quiet())
	assert.ErrorIs(t, err, model.ErrNilInstance)
}

func TestEmptyPreset(t *testing.T) {
	p, err := Capture(newLight(1, components.Red), quiet())
	require.NoError(t, err)
	require.True(t, p.Release())

	target := newLight(4, blue)
	assert.ErrorIs(t, p.Apply(target), ErrNoTemplate)
	assert.ErrorIs(t, p.UpdateFrom(target), ErrNoTemplate)
	assert.ErrorIs(t, p.ApplyAll(target), ErrNoTemplate)
	assert.False(t, p.CanApplyTo(target))
	assert.Equal(t, "", p.TypeName())
	assert.Equal(t, "", p.FullTypeName())
	assert.Nil(t, p.Type())
	assert.Equal(t, float32(4), target.Intensity())
}

func TestCanApplyTo(t *testing.T) {
	p, err := Capture(&components.MeshFilter{}, quiet())
	require.NoError(t, err)
	defer p.Release()

	var nilFilter *components.MeshFilter
	tests := []struct {
		name   string
		target any
		want   bool
	}{
		{"same type", &components.MeshFilter{}, true},
		{"nil", nil, false},
		{"typed nil", nilFilter, false},
		{"other type", &components.Light{}, false},
		{"value", components.MeshFilter{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.CanApplyTo(tt.target))
		})
	}
}

func TestTypeNames(t *testing.T) {
	p, err := Capture(&components.MeshRenderer{}, quiet())
	require.NoError(t, err)
	defer p.Release()

	assert.Equal(t, "MeshRenderer", p.TypeName())
	assert.Equal(t, "github.com/runtime-presets/presets-go/pkg/components.MeshRenderer", p.FullTypeName())
	assert.Equal(t, reflect.TypeOf(components.MeshRenderer{}), p.Type())
}

func TestRendererPresetUsesSharedMaterials(t *testing.T) {
	m := &components.Material{Name: "Marble"}
	src := &components.MeshRenderer{}
	src.SetMaterial(m)

	p, err := Capture(src, quiet())
	require.NoError(t, err)
	defer p.Release()

	target := &components.MeshRenderer{}
	require.NoError(t, p.Apply(target))
	assert.Same(t, m, target.SharedMaterial())
	assert.False(t, target.Instantiated())
}

func TestDeepCopyPresetDoesNotAlias(t *testing.T) {
	a := &components.Material{Name: "A"}
	src := &components.MeshRenderer{}
	src.SetSharedMaterials([]*components.Material{a, {Name: "B"}})

	p, err := Capture(src, quiet(), WithDeepCopy())
	require.NoError(t, err)
	defer p.Release()

	a.Name = "changed"

	target := &components.MeshRenderer{}
	require.NoError(t, p.Apply(target))

	got := target.SharedMaterials()
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, "B", got[1].Name)
}

func TestEvents(t *testing.T) {
	rec := &log.Recorder{}
	p, err := Capture(newLight(1, components.Red), WithLogger(rec))
	require.NoError(t, err)
	scopeID := p.Scope().ID()

	require.NoError(t, p.Apply(newLight(0, blue)))
	assert.Error(t, p.Apply(&components.MeshFilter{}))
	require.True(t, p.Release())

	var ops []string
	for _, e := range rec.Events() {
		if e.Operation == log.OpTransfer {
			continue
		}
		ops = append(ops, e.Operation.String()+"/"+e.Outcome.String())
		assert.Equal(t, "github.com/runtime-presets/presets-go/pkg/components.Light", e.Type)
		assert.Equal(t, scopeID, e.ScopeID)
	}
	assert.Equal(t, []string{"CAPTURE/OK", "APPLY/OK", "APPLY/FAILED", "RELEASE/OK"}, ops)
}

// mockLogger is a log.Logger whose calls are checked against expectations.
type mockLogger struct {
	mock.Mock
}

func (m *mockLogger) Log(event log.Event) {
	m.Called(event)
}

func isEvent(op log.Operation, outcome log.Outcome) any {
	return mock.MatchedBy(func(e log.Event) bool {
		return e.Operation == op && e.Outcome == outcome
	})
}

func TestUpdateFromEvents(t *testing.T) {
	logger := &mockLogger{}
	logger.On("Log", mock.MatchedBy(func(e log.Event) bool {
		return e.Operation == log.OpTransfer
	})).Maybe()
	logger.On("Log", isEvent(log.OpCapture, log.OutcomeOK)).Once()
	logger.On("Log", isEvent(log.OpUpdate, log.OutcomeOK)).Once()
	logger.On("Log", isEvent(log.OpUpdate, log.OutcomeFailed)).Twice()
	logger.On("Log", isEvent(log.OpRelease, log.OutcomeOK)).Once()

	p, err := Capture(newLight(1, components.Red), WithLogger(logger))
	require.NoError(t, err)

	require.NoError(t, p.UpdateFrom(newLight(3, blue)))
	assert.ErrorIs(t, p.UpdateFrom(&components.MeshFilter{}), ErrTypeMismatch)
	require.True(t, p.Release())
	assert.ErrorIs(t, p.UpdateFrom(newLight(3, blue)), ErrNoTemplate)

	logger.AssertExpectations(t)
}

func TestDeclaredOnlyPreset(t *testing.T) {
	src := newLight(2, components.Red)
	src.SetEnabled(false)

	p, err := Capture(src, quiet(), WithDeclaredOnly())
	require.NoError(t, err)
	defer p.Release()

	target := newLight(0, blue)
	require.NoError(t, p.Apply(target))
	assert.Equal(t, float32(2), target.Intensity())
	assert.True(t, target.Enabled(), "inherited enabled flag is outside the declared scope")
}
