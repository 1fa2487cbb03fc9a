package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runtime-presets/presets-go/pkg/components"
	"github.com/runtime-presets/presets-go/pkg/log"
	"github.com/runtime-presets/presets-go/pkg/preset"
	"github.com/runtime-presets/presets-go/pkg/scene"
)

const testScene = `
name: street
objects:
  - name: Lamp
    components:
      - type: Light
        attributes:
          intensity: 2
          range: 25
          color: {r: 1, g: 0, b: 0, a: 1}
  - name: Street Lamp
    components:
      - type: Light
        attributes:
          intensity: 4
  - name: Crate
    components:
      - type: MeshRenderer
`

type cli struct {
	t       *testing.T
	dir     string
	library string
}

func newCLI(t *testing.T) *cli {
	dir := isolateConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.yaml"), []byte(testScene), 0644))
	return &cli{t: t, dir: dir, library: filepath.Join(dir, "presets.db")}
}

func (c *cli) path(name string) string {
	return filepath.Join(c.dir, name)
}

// run executes presetctl with args and returns stdout.
func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	var out, stderr bytes.Buffer
	root := newRootCmd(&stderr)
	root.SetOut(&out)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--library", c.library}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "presetctl %s", strings.Join(args, " "))
	return out
}

func lightOf(t *testing.T, path, object string) *components.Light {
	t.Helper()
	reg := components.NewRegistry()
	s, err := scene.Load(path, reg, nil)
	require.NoError(t, err)
	o, err := s.Object(object)
	require.NoError(t, err)
	c, err := o.Component(reg, "Light")
	require.NoError(t, err)
	return c.(*components.Light)
}

func TestTypesAndDescribe(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("types")
	assert.Contains(t, out, "Light")
	assert.Contains(t, out, "MeshRenderer")

	out = c.mustRun("describe", "light")
	assert.Contains(t, out, "intensity")
	assert.Contains(t, out, "spotAngle")

	_, err := c.run("describe", "Camera")
	assert.Error(t, err)
}

func TestCaptureShowApply(t *testing.T) {
	c := newCLI(t)
	sceneFile := c.path("scene.yaml")
	warm := c.path("warm.preset.yaml")

	out := c.mustRun("capture", sceneFile, "Lamp/Light", "-o", warm)
	assert.Contains(t, out, "Captured Light")
	assert.FileExists(t, warm)

	out = c.mustRun("show", warm)
	assert.Contains(t, out, "Name:    warm")
	assert.Contains(t, out, "components.Light")
	assert.Contains(t, out, "intensity:")

	out = c.mustRun("diff", warm, sceneFile, "Street Lamp/Light")
	assert.Contains(t, out, "/intensity")
	assert.Contains(t, out, "/color")

	result := c.path("result.yaml")
	out = c.mustRun("apply", warm, sceneFile, "--all", "-o", result)
	assert.Contains(t, out, "Applied Light to 2 of 2 components")

	light := lightOf(t, result, "Street Lamp")
	assert.Equal(t, float32(2), light.Intensity())
	assert.Equal(t, components.Red, light.Color())

	// The source scene is untouched without --write.
	assert.Equal(t, float32(4), lightOf(t, sceneFile, "Street Lamp").Intensity())
}

func TestCaptureDefaultFormat(t *testing.T) {
	c := newCLI(t)

	c.mustRun("capture", c.path("scene.yaml"), "Lamp/Light", "-o", c.path("cbor"))
	assert.FileExists(t, c.path("cbor.preset"))

	c.mustRun("--format", "yaml", "capture", c.path("scene.yaml"), "Lamp/Light", "-o", c.path("text"))
	assert.FileExists(t, c.path("text.preset.yaml"))
}

func TestApplyErrors(t *testing.T) {
	c := newCLI(t)
	sceneFile := c.path("scene.yaml")
	warm := c.path("warm.preset")
	c.mustRun("capture", sceneFile, "Lamp/Light", "-o", warm)

	t.Run("type mismatch", func(t *testing.T) {
		_, err := c.run("apply", warm, sceneFile, "Crate/MeshRenderer")
		assert.True(t, errors.Is(err, preset.ErrTypeMismatch), "err = %v", err)
	})

	t.Run("targets and all", func(t *testing.T) {
		_, err := c.run("apply", warm, sceneFile, "Lamp/Light", "--all")
		assert.Error(t, err)
	})

	t.Run("no targets", func(t *testing.T) {
		_, err := c.run("apply", warm, sceneFile)
		assert.Error(t, err)
	})

	t.Run("missing preset", func(t *testing.T) {
		_, err := c.run("apply", "nothing", sceneFile, "--all")
		assert.True(t, errors.Is(err, ErrPresetNotFound), "err = %v", err)
	})

	t.Run("missing component", func(t *testing.T) {
		_, err := c.run("apply", warm, sceneFile, "Crate/Light")
		assert.Error(t, err)
	})
}

func TestApplyWrite(t *testing.T) {
	c := newCLI(t)
	sceneFile := c.path("scene.yaml")
	warm := c.path("warm.preset")
	c.mustRun("capture", sceneFile, "Lamp/Light", "-o", warm)

	out := c.mustRun("apply", warm, sceneFile, "Street Lamp/Light", "--write")
	assert.Contains(t, out, "Wrote "+sceneFile)
	assert.Equal(t, float32(2), lightOf(t, sceneFile, "Street Lamp").Intensity())
}

func TestLibrary(t *testing.T) {
	c := newCLI(t)
	sceneFile := c.path("scene.yaml")

	out := c.mustRun("capture", sceneFile, "Lamp/Light", "--save", "warm")
	assert.Contains(t, out, `as "warm"`)

	c.mustRun("capture", sceneFile, "Crate/MeshRenderer", "-o", c.path("stone.preset"))
	c.mustRun("library", "save", "stone", c.path("stone.preset"))

	out = c.mustRun("library", "list")
	assert.Contains(t, out, "warm")
	assert.Contains(t, out, "stone")

	out = c.mustRun("library", "list", "--type", "Light")
	assert.Contains(t, out, "warm")
	assert.NotContains(t, out, "stone")

	out = c.mustRun("show", "warm")
	assert.Contains(t, out, "intensity:")

	exported := c.path("exported.preset.yaml")
	c.mustRun("library", "load", "warm", exported)
	assert.FileExists(t, exported)

	out = c.mustRun("apply", "warm", sceneFile, "Street Lamp/Light", "--write")
	assert.Contains(t, out, "Applied Light to 1 of 1 components")

	c.mustRun("library", "rm", "warm")
	_, err := c.run("show", "warm")
	assert.True(t, errors.Is(err, ErrPresetNotFound), "err = %v", err)

	out = c.mustRun("library", "list")
	assert.NotContains(t, out, "warm")
}

func TestEvents(t *testing.T) {
	c := newCLI(t)
	sceneFile := c.path("scene.yaml")
	events := c.path("events" + log.Extension)

	c.mustRun("--event-log", events, "capture", sceneFile, "Lamp/Light", "-o", c.path("warm.preset"))
	c.mustRun("--event-log", events, "apply", c.path("warm.preset"), sceneFile, "--all")

	out := c.mustRun("events", events)
	assert.Contains(t, out, "CAPTURE")
	assert.Contains(t, out, "APPLY")

	out = c.mustRun("events", events, "--op", "capture")
	assert.Contains(t, out, "CAPTURE")
	assert.NotContains(t, out, "APPLY")

	out = c.mustRun("events", events, "--type", "MeshRenderer")
	assert.Contains(t, out, "(no events)")

	_, err := c.run("events", events, "--op", "explode")
	assert.Error(t, err)

	_, err = c.run("events")
	assert.Error(t, err)
}

func TestShell(t *testing.T) {
	c := newCLI(t)
	sceneFile := c.path("scene.yaml")

	var stderr bytes.Buffer
	cfg, err := loadConfig("", nil)
	require.NoError(t, err)
	cfg.Library = c.library
	app, err := newApp(cfg, &stderr)
	require.NoError(t, err)
	defer app.Close()

	s, err := app.LoadScene(sceneFile)
	require.NoError(t, err)
	defer s.Destroy()

	var out bytes.Buffer
	sh := newShell(app, s, sceneFile, &out)
	defer sh.Close()

	ctx := context.Background()
	exec := func(line string) string {
		out.Reset()
		require.True(t, sh.Exec(ctx, line), "%s exited the shell", line)
		return out.String()
	}

	assert.Contains(t, exec("inspect"), "Street Lamp")
	assert.Contains(t, exec("inspect Lamp"), "Light")
	assert.Contains(t, exec("inspect Lamp/Light"), "intensity")
	assert.Contains(t, exec("read Lamp/Light/intensity"), "intensity = 2")
	assert.Contains(t, exec("read Lamp/Light/nothing"), "Error:")

	assert.Contains(t, exec("write Lamp/Light/intensity 3.5"), "intensity = 3.5")
	assert.Contains(t, exec("write Lamp/Light/color {r: 0, g: 1, b: 0, a: 1}"), "color =")

	assert.Contains(t, exec("capture Lamp/Light bright"), `Captured Light as "bright"`)
	assert.Contains(t, exec("presets"), "bright")
	assert.Contains(t, exec("diff bright Street Lamp/Light"), "Error:")
	assert.Contains(t, exec("apply bright --all"), `Applied "bright" to 2 of 2 components`)
	assert.Contains(t, exec("diff bright Lamp/Light"), "(no differences)")
	assert.Contains(t, exec("apply bright Crate/MeshRenderer"), "Error:")
	assert.Contains(t, exec("apply missing Lamp/Light"), "Unknown preset")

	assert.Contains(t, exec("store bright"), `Stored "bright"`)
	assert.Contains(t, exec("release bright"), `Released "bright"`)
	assert.Contains(t, exec("presets"), "No presets captured")
	assert.Contains(t, exec("load bright"), `Loaded Light as "bright"`)

	saved := c.path("saved.yaml")
	assert.Contains(t, exec("save "+saved), "Wrote "+saved)
	assert.Equal(t, float32(3.5), lightOf(t, saved, "Street Lamp").Intensity())

	assert.Contains(t, exec("frobnicate"), "Unknown command")
	assert.False(t, sh.Exec(ctx, "quit"))
}

func TestAssetName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"warm.preset.yaml", "warm"},
		{"dir/warm.preset.yml", "warm"},
		{"warm.preset", "warm"},
		{"warm.txt", "warm"},
		{"warm", "warm"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := assetName(tt.path); got != tt.want {
				t.Errorf("assetName(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
