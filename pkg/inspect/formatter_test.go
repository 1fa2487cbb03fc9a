package inspect

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/runtime-presets/presets-go/pkg/components"
	"github.com/runtime-presets/presets-go/pkg/library"
	"github.com/runtime-presets/presets-go/pkg/log"
	"github.com/runtime-presets/presets-go/pkg/model"
	"github.com/runtime-presets/presets-go/pkg/transfer"
)

func plain() *Formatter {
	f := NewFormatter()
	f.NoColor = true
	return f
}

func TestFormatValue(t *testing.T) {
	f := plain()

	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"nil", nil, "null"},
		{"bool", true, "true"},
		{"string", "lamp", `"lamp"`},
		{"float32", float32(0.5), "0.5"},
		{"float64", 2.25, "2.25"},
		{"int", -1, "-1"},
		{"bytes", []byte{0xab}, "0xab"},
		{"color", components.Red, components.Red.String()},
		{"light type", components.LightSpot, components.LightSpot.String()},
		{"material", &components.Material{Name: "Stone"}, `Material("Stone")`},
		{"nil material", (*components.Material)(nil), "null"},
		{"materials", []*components.Material{{Name: "A"}, nil}, `[Material("A"), null]`},
		{"mesh", &components.Mesh{Name: "Cube", Vertices: 3}, `Mesh("Cube", 3 vertices)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.FormatValue(tt.value); got != tt.expected {
				t.Errorf("FormatValue(%v) = %q, want %q", tt.value, got, tt.expected)
			}
		})
	}
}

func TestFormatAccess(t *testing.T) {
	tests := map[model.Access]string{
		model.AccessRead:      "read-only",
		model.AccessWrite:     "write-only",
		model.AccessReadWrite: "read-write",
		0:                     "none",
	}
	for access, want := range tests {
		if got := FormatAccess(access); got != want {
			t.Errorf("FormatAccess(%d) = %q, want %q", access, got, want)
		}
	}
}

func TestFormatDescriptor(t *testing.T) {
	d, err := model.DescribeInstance(&components.MeshRenderer{}, model.ScopeInherited)
	if err != nil {
		t.Fatalf("DescribeInstance failed: %v", err)
	}
	out := plain().FormatDescriptor(d)

	for _, want := range []string{"components.MeshRenderer", "sharedMaterial", "copied as sharedMaterial", "deprecated", "inherited"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatComponent(t *testing.T) {
	l := newLight()
	l.SetIntensity(4)
	info, err := InspectInstance(l)
	if err != nil {
		t.Fatalf("InspectInstance failed: %v", err)
	}

	out := plain().FormatComponent(info)
	if !strings.HasPrefix(out, "Light\n") {
		t.Errorf("output should start with type name:\n%s", out)
	}
	if !strings.Contains(out, "intensity:") || !strings.Contains(out, "4") {
		t.Errorf("output missing intensity:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("output contains color codes with NoColor set")
	}
}

func TestFormatDiff(t *testing.T) {
	f := plain()
	if got := f.FormatDiff(nil); !strings.Contains(got, "no differences") {
		t.Errorf("FormatDiff(nil) = %q", got)
	}

	out := f.FormatDiff([]Change{
		{Op: ChangeReplace, Path: "/intensity", Old: 1.0, New: 2.0},
		{Op: ChangeAdd, Path: "/cookie", New: "x"},
		{Op: ChangeRemove, Path: "/range", Old: 10.0},
	})
	for _, want := range []string{"~ /intensity", "-> 2", "+ /cookie", "- /range"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatReport(t *testing.T) {
	r := &transfer.Report{
		Type:    "components.Light",
		Copied:  []string{"intensity"},
		Renamed: map[string]string{"material": "sharedMaterial"},
		Skipped: []transfer.Skip{{Attribute: "spotAngle", Err: errors.New("out of range")}},
	}
	out := plain().FormatReport(r)
	for _, want := range []string{"copied 1, renamed 1, skipped 1", "material -> sharedMaterial", "skipped spotAngle: out of range"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatEntries(t *testing.T) {
	f := plain()
	if got := f.FormatEntries(nil); got != "(no presets)\n" {
		t.Errorf("FormatEntries(nil) = %q", got)
	}

	out := f.FormatEntries([]library.Entry{{
		Name:       "red",
		Type:       "github.com/runtime-presets/presets-go/pkg/components.Light",
		Attributes: 9,
		UpdatedAt:  time.Now(),
	}})
	if !strings.Contains(out, "red") || !strings.Contains(out, "Light") || strings.Contains(out, "github.com") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestFormatEvents(t *testing.T) {
	out := plain().FormatEvents([]log.Event{{
		Timestamp: time.Now(),
		Operation: log.OpApply,
		Outcome:   log.OutcomeSkipped,
		Type:      "pkg.Light",
		Attribute: "spotAngle",
		Error:     "out of range",
	}})
	for _, want := range []string{"APPLY", "SKIPPED", "Light", "spotAngle", "out of range"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
