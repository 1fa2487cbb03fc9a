package library

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runtime-presets/presets-go/pkg/asset"
	"github.com/runtime-presets/presets-go/pkg/components"
	"github.com/runtime-presets/presets-go/pkg/log"
	"github.com/runtime-presets/presets-go/pkg/preset"
	"github.com/runtime-presets/presets-go/pkg/scope"
)

func openTest(t *testing.T) (*Library, *log.Recorder) {
	t.Helper()
	rec := &log.Recorder{}
	lib, err := Open(context.Background(), filepath.Join(t.TempDir(), "presets.db"), components.NewRegistry(), rec)
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	return lib, rec
}

func capture(t *testing.T, src any) *preset.Preset {
	t.Helper()
	p, err := preset.Capture(src, preset.WithLogger(log.NoopLogger{}))
	require.NoError(t, err)
	t.Cleanup(func() { p.Release() })
	return p
}

func TestSaveAndLoadPreset(t *testing.T) {
	ctx := context.Background()
	lib, _ := openTest(t)

	src := &components.Light{}
	src.Reset()
	src.SetIntensity(2)
	src.SetColor(components.Red)
	require.NoError(t, lib.SavePreset(ctx, "red", capture(t, src)))

	p, report, err := lib.LoadPreset(ctx, "red", preset.WithLogger(log.NoopLogger{}))
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, scope.Persistent, p.Scope().Kind())
	assert.Equal(t, "red", p.Scope().Name())

	target := &components.Light{}
	target.Reset()
	require.NoError(t, p.Apply(target))
	assert.Equal(t, float32(2), target.Intensity())
	assert.Equal(t, components.Red, target.Color())
	assert.False(t, p.Release())
}

func TestSaveReplaces(t *testing.T) {
	ctx := context.Background()
	lib, _ := openTest(t)

	first := &components.Light{}
	first.SetIntensity(1)
	require.NoError(t, lib.SavePreset(ctx, "main", capture(t, first)))

	entries, err := lib.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	created := entries[0].CreatedAt

	second := &components.Light{}
	second.SetIntensity(5)
	require.NoError(t, lib.SavePreset(ctx, "main", capture(t, second)))

	a, err := lib.Load(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, float32(5), a.Attributes["intensity"])

	entries, err = lib.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, created.Equal(entries[0].CreatedAt), "created_at is kept on replace")
	assert.False(t, entries[0].UpdatedAt.Before(entries[0].CreatedAt))
}

func TestListAndFilter(t *testing.T) {
	ctx := context.Background()
	lib, _ := openTest(t)

	require.NoError(t, lib.SavePreset(ctx, "b-light", capture(t, &components.Light{})))
	require.NoError(t, lib.SavePreset(ctx, "a-renderer", capture(t, &components.MeshRenderer{})))
	require.NoError(t, lib.SavePreset(ctx, "c-light", capture(t, &components.Light{})))

	entries, err := lib.List(ctx)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
		assert.NotEmpty(t, e.AssetID)
		assert.Positive(t, e.Attributes)
	}
	assert.Equal(t, []string{"a-renderer", "b-light", "c-light"}, names)

	lights, err := lib.ListByType(ctx, "github.com/runtime-presets/presets-go/pkg/components.Light")
	require.NoError(t, err)
	assert.Len(t, lights, 2)

	none, err := lib.ListByType(ctx, "example.Nothing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	lib, _ := openTest(t)

	require.NoError(t, lib.SavePreset(ctx, "gone", capture(t, &components.MeshFilter{})))
	require.NoError(t, lib.Delete(ctx, "gone"))

	_, err := lib.Load(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, lib.Delete(ctx, "gone"), ErrNotFound)
}

func TestSaveErrors(t *testing.T) {
	ctx := context.Background()
	lib, _ := openTest(t)

	assert.ErrorIs(t, lib.Save(ctx, "", &asset.Asset{}), ErrEmptyName)

	p := capture(t, &components.Light{})
	require.True(t, p.Release())
	assert.ErrorIs(t, lib.SavePreset(ctx, "empty", p), asset.ErrEmptyPreset)

	_, _, err := lib.LoadPreset(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEvents(t *testing.T) {
	ctx := context.Background()
	lib, rec := openTest(t)

	require.NoError(t, lib.SavePreset(ctx, "x", capture(t, &components.Light{})))
	_, err := lib.Load(ctx, "x")
	require.NoError(t, err)

	save, load := log.OpSave, log.OpLoad
	saved := rec.Select(log.Filter{Operation: &save})
	loaded := rec.Select(log.Filter{Operation: &load})
	require.Len(t, saved, 1)
	require.Len(t, loaded, 1)
	assert.Equal(t, "x", saved[0].Detail)
	assert.Equal(t, log.OutcomeOK, loaded[0].Outcome)
}

func TestInMemory(t *testing.T) {
	ctx := context.Background()
	lib, err := Open(ctx, ":memory:", components.NewRegistry(), nil)
	require.NoError(t, err)
	defer lib.Close()

	require.NoError(t, lib.SavePreset(ctx, "mem", capture(t, &components.Light{})))
	entries, err := lib.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
