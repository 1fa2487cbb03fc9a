package transfer_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runtime-presets/presets-go/pkg/components"
	"github.com/runtime-presets/presets-go/pkg/log"
	"github.com/runtime-presets/presets-go/pkg/model"
	"github.com/runtime-presets/presets-go/pkg/transfer"
)

var errFlaky = errors.New("flaky accessor")

type Common struct {
	Layer int
	name  string
}

func (c *Common) Name() string { return c.name }
func (c *Common) SetName(n string) { c.name = n }

type gadget struct {
	Common
	Weights []float64
	Labels  map[string]string
	Old     int `preset:"deprecated"`

	level   int
	flaky   int
	writes  int
	panicky int
}

func (g *gadget) Level() int { return g.level }
func (g *gadget) SetLevel(v int) {
	g.level = v
	g.writes++
}

func (g *gadget) Flaky() (int, error) { return g.flaky, errFlaky }
func (g *gadget) SetFlaky(v int) { g.flaky = v }
func (g *gadget) Panicky() int { return g.panicky }
func (g *gadget) SetPanicky(int) { panic("setter exploded") }

// sticker declares Name accessors over the ones from Common.
type sticker struct {
	Common
	own string
}

func (s *sticker) Name() string { return s.own }
func (s *sticker) SetName(n string) { s.own = n }

type other struct {
	Layer int
}

func quiet() transfer.Option {
	return transfer.WithLogger(log.NoopLogger{})
}

func TestTransferLightScenario(t *testing.T) {
	src := &components.Light{}
	src.Reset()
	src.SetIntensity(2)
	src.SetColor(components.Red)

	dst := &components.Light{}
	dst.Reset()
	dst.SetIntensity(0.5)
	dst.SetColor(components.Color{B: 1, A: 1})

	report, err := transfer.Transfer(dst, src, quiet())
	require.NoError(t, err)
	assert.True(t, report.OK())

	assert.Equal(t, float32(2), dst.Intensity())
	assert.Equal(t, components.Red, dst.Color())
	assert.Equal(t, float32(2), src.Intensity(), "source must not change")
}

func TestTransferCopiesEveryWritableAttribute(t *testing.T) {
	src := &components.Light{CullingMask: 3, Cookie: "stripes"}
	src.SetEnabled(true)
	src.SetType(components.LightSpot)
	src.SetIntensity(4)
	src.SetRange(25)
	require.NoError(t, src.SetSpotAngle(60))
	src.SetShadows(components.ShadowsSoft)
	src.SetShadowSoftness(9)

	dst := &components.Light{}
	_, err := transfer.Transfer(dst, src, quiet())
	require.NoError(t, err)

	d, err := model.DescribeInstance(src, model.ScopeInherited)
	require.NoError(t, err)
	for _, a := range d.Attributes {
		want, err := a.GetValue(src)
		require.NoError(t, err)
		got, err := a.GetValue(dst)
		require.NoError(t, err)

		if a.Copyable() {
			assert.Equal(t, want, got, a.Name)
		} else {
			assert.Zero(t, got, "%s is deprecated and must stay untouched", a.Name)
		}
	}
}

func TestTransferRenamedMaterial(t *testing.T) {
	m := &components.Material{Name: "Brick"}
	src := &components.MeshRenderer{}
	src.SetMaterial(m)

	dst := &components.MeshRenderer{}
	report, err := transfer.Transfer(dst, src, quiet())
	require.NoError(t, err)

	assert.Same(t, m, dst.SharedMaterial())
	assert.False(t, dst.Instantiated(), "material accessor must not be used on the destination")
	assert.Same(t, m, src.SharedMaterial(), "source keeps its material")
	assert.Equal(t, "sharedMaterial", report.Renamed["material"])
	assert.Equal(t, "sharedMaterials", report.Renamed["materials"])
}

func TestTransferRenamedMesh(t *testing.T) {
	mesh := &components.Mesh{Name: "Quad", Vertices: 4}
	src := &components.MeshFilter{}
	src.SetSharedMesh(mesh)

	dst := &components.MeshFilter{}
	_, err := transfer.Transfer(dst, src, quiet())
	require.NoError(t, err)

	assert.Same(t, mesh, dst.SharedMesh())
	assert.False(t, src.Instantiated(), "reading the source must not instantiate its mesh")
	assert.False(t, dst.Instantiated())
}

func TestTransferWithoutRenamesInstantiates(t *testing.T) {
	mesh := &components.Mesh{Name: "Quad"}
	src := &components.MeshFilter{}
	src.SetSharedMesh(mesh)

	dst := &components.MeshFilter{}
	_, err := transfer.Transfer(dst, src, quiet(), transfer.WithRenames(nil))
	require.NoError(t, err)

	assert.True(t, src.Instantiated())
	assert.NotSame(t, mesh, dst.SharedMesh())
}

func TestTransferIdempotent(t *testing.T) {
	src := &gadget{Common: Common{Layer: 2}, Weights: []float64{1, 2}, Labels: map[string]string{"a": "b"}}
	src.SetName("g")
	src.level = 7

	once := &gadget{}
	_, err := transfer.Transfer(once, src, quiet())
	require.NoError(t, err)

	twice := &gadget{}
	_, err = transfer.Transfer(twice, src, quiet())
	require.NoError(t, err)
	_, err = transfer.Transfer(twice, src, quiet())
	require.NoError(t, err)

	opts := cmp.Options{
		cmp.AllowUnexported(gadget{}, Common{}),
		cmp.FilterPath(func(p cmp.Path) bool { return p.Last().String() == ".writes" }, cmp.Ignore()),
	}
	if diff := cmp.Diff(once, twice, opts); diff != "" {
		t.Errorf("second transfer changed state (-once +twice):\n%s", diff)
	}
}

func TestTransferTypeMismatch(t *testing.T) {
	src := &gadget{Common: Common{Layer: 1}}
	dst := &other{Layer: 9}

	rec := &log.Recorder{}
	report, err := transfer.Transfer(dst, src, transfer.WithLogger(rec))

	assert.ErrorIs(t, err, transfer.ErrTypeMismatch)
	assert.Nil(t, report)
	assert.Equal(t, 9, dst.Layer)
	assert.Equal(t, 1, src.Layer)

	failed := log.OutcomeFailed
	assert.Len(t, rec.Select(log.Filter{Outcome: &failed}), 1)
}

func TestTransferNilInstances(t *testing.T) {
	var nilGadget *gadget
	_, err := transfer.Transfer(nilGadget, &gadget{}, quiet())
	assert.ErrorIs(t, err, model.ErrNilInstance)

	_, err = transfer.Transfer(&gadget{}, nil, quiet())
	assert.ErrorIs(t, err, model.ErrNilInstance)

	_, err = transfer.Transfer(gadget{}, gadget{}, quiet())
	assert.ErrorIs(t, err, model.ErrNotInstance)
}

func TestTransferIsolatesFailingAttributes(t *testing.T) {
	src := &gadget{Common: Common{Layer: 4}}
	src.level = 3
	src.flaky = 8
	dst := &gadget{}

	rec := &log.Recorder{}
	report, err := transfer.Transfer(dst, src, transfer.WithLogger(rec))
	require.NoError(t, err, "attribute failures are not fatal")

	assert.Equal(t, 3, dst.level)
	assert.Equal(t, 4, dst.Layer)
	assert.Equal(t, 0, dst.flaky)

	var skipped []string
	for _, s := range report.Skipped {
		skipped = append(skipped, s.Attribute)
	}
	assert.ElementsMatch(t, []string{"flaky", "panicky"}, skipped)
	assert.False(t, report.OK())

	agg := report.Err()
	require.Error(t, agg)
	assert.ErrorIs(t, agg, errFlaky)
	assert.ErrorIs(t, agg, model.ErrAttributePanic)
	var merr *multierror.Error
	require.ErrorAs(t, agg, &merr)
	assert.Len(t, merr.Errors, 2)

	outcome := log.OutcomeSkipped
	events := rec.Select(log.Filter{Outcome: &outcome})
	require.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, log.OpTransfer, e.Operation)
		assert.NotEmpty(t, e.Error)
	}
}

func TestTransferSkipsDeprecatedField(t *testing.T) {
	src := &gadget{Old: 5}
	dst := &gadget{Old: 1}

	_, err := transfer.Transfer(dst, src, quiet())
	require.NoError(t, err)
	assert.Equal(t, 1, dst.Old)
}

func TestTransferDeclaredOnly(t *testing.T) {
	src := &gadget{Common: Common{Layer: 5}}
	src.SetName("src")
	src.level = 2
	dst := &gadget{}

	report, err := transfer.Transfer(dst, src, quiet(), transfer.WithDeclaredOnly())
	require.NoError(t, err)

	assert.Equal(t, 2, dst.level)
	assert.Equal(t, 0, dst.Layer)
	assert.Equal(t, "", dst.Name())
	assert.NotContains(t, report.Copied, "layer")
	assert.NotContains(t, report.Copied, "name")
}

func TestTransferDeclaredOnlyKeepsShadowingProperty(t *testing.T) {
	src := &sticker{Common: Common{Layer: 3}}
	src.SetName("x")
	src.Common.SetName("base")
	dst := &sticker{}

	report, err := transfer.Transfer(dst, src, quiet(), transfer.WithDeclaredOnly())
	require.NoError(t, err)

	assert.Equal(t, "x", dst.own)
	assert.Equal(t, "", dst.Common.Name())
	assert.Equal(t, 0, dst.Layer)
	assert.Contains(t, report.Copied, "name")
}

func TestTransferSharesContainersByDefault(t *testing.T) {
	src := &gadget{Weights: []float64{1, 2}, Labels: map[string]string{"k": "v"}}
	dst := &gadget{}

	_, err := transfer.Transfer(dst, src, quiet())
	require.NoError(t, err)

	src.Weights[0] = 100
	src.Labels["k"] = "changed"
	assert.Equal(t, 100.0, dst.Weights[0])
	assert.Equal(t, "changed", dst.Labels["k"])
}

func TestTransferDeepCopy(t *testing.T) {
	src := &gadget{Weights: []float64{1, 2}, Labels: map[string]string{"k": "v"}}
	dst := &gadget{}

	_, err := transfer.Transfer(dst, src, quiet(), transfer.WithDeepCopy())
	require.NoError(t, err)

	src.Weights[0] = 100
	src.Labels["k"] = "changed"
	assert.Equal(t, []float64{1, 2}, dst.Weights)
	assert.Equal(t, map[string]string{"k": "v"}, dst.Labels)
}

func TestTransferRenameTargetMissing(t *testing.T) {
	src := &gadget{}
	src.level = 1
	dst := &gadget{}

	report, err := transfer.Transfer(dst, src, quiet(), transfer.WithRenames(transfer.RenameTable{"level": "nope"}))
	require.NoError(t, err)

	require.Len(t, report.Skipped, 3)
	assert.ErrorIs(t, report.Err(), transfer.ErrRenameTarget)
	assert.Equal(t, 0, dst.level)
}

func TestValues(t *testing.T) {
	src := &components.Light{}
	src.SetIntensity(3)

	got, err := transfer.Values(&components.Light{}, src, quiet())
	require.NoError(t, err)
	assert.Equal(t, float32(3), got.Intensity())

	var nilLight *components.Light
	got, err = transfer.Values(nilLight, src, quiet())
	assert.ErrorIs(t, err, model.ErrNilInstance)
	assert.Nil(t, got)
}

func TestRenameTable(t *testing.T) {
	to, ok := transfer.DefaultRenames.Resolve("materials")
	assert.True(t, ok)
	assert.Equal(t, "sharedMaterials", to)

	_, ok = transfer.DefaultRenames.Resolve("sharedMaterial")
	assert.False(t, ok)

	ext := transfer.DefaultRenames.With(transfer.RenameTable{"mesh": "meshAsset", "colour": "color"})
	assert.Equal(t, "meshAsset", ext["mesh"])
	assert.Equal(t, "color", ext["colour"])
	assert.Equal(t, "sharedMesh", transfer.DefaultRenames["mesh"], "With must not modify the receiver")
}

func TestReportString(t *testing.T) {
	var r *transfer.Report
	assert.Equal(t, "<nil>", r.String())
	assert.NoError(t, r.Err())
	assert.False(t, r.OK())

	r = &transfer.Report{Type: "pkg.T", Copied: []string{"a", "b"}}
	assert.Equal(t, "pkg.T: copied 2, renamed 0, skipped 0", r.String())
	assert.True(t, r.OK())
}
