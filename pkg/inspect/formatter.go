package inspect

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/runtime-presets/presets-go/pkg/components"
	"github.com/runtime-presets/presets-go/pkg/library"
	"github.com/runtime-presets/presets-go/pkg/log"
	"github.com/runtime-presets/presets-go/pkg/model"
	"github.com/runtime-presets/presets-go/pkg/transfer"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowMetadata includes kind, access and type information
	ShowMetadata bool

	// NoColor disables ANSI colors
	NoColor bool

	// MaxColWidth truncates wide columns (0 means no limit)
	MaxColWidth uint
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowMetadata: true,
		NoColor:      color.NoColor,
		MaxColWidth:  60,
	}
}

func (f *Formatter) table() *uitable.Table {
	t := uitable.New()
	t.MaxColWidth = f.MaxColWidth
	t.Separator = "  "
	return t
}

func (f *Formatter) paint(attr color.Attribute, s string) string {
	c := color.New(attr)
	if f.NoColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c.Sprint(s)
}

// FormatValue formats a value for display.
func (f *Formatter) FormatValue(value any) string {
	if value == nil {
		return "null"
	}

	switch v := value.(type) {
	case bool:
		return strconv.FormatBool(v)
	case string:
		return strconv.Quote(v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []byte:
		return fmt.Sprintf("0x%x", v)
	case *components.Material:
		if v == nil {
			return "null"
		}
		return fmt.Sprintf("Material(%q)", v.Name)
	case *components.Mesh:
		if v == nil {
			return "null"
		}
		return fmt.Sprintf("Mesh(%q, %d vertices)", v.Name, v.Vertices)
	case []*components.Material:
		parts := make([]string, len(v))
		for i, m := range v {
			parts[i] = f.FormatValue(m)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case fmt.Stringer:
		return v.String()
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "null"
	}
	return fmt.Sprintf("%v", value)
}

// FormatAccess formats access flags for display.
func FormatAccess(access model.Access) string {
	switch access {
	case model.AccessRead:
		return "read-only"
	case model.AccessWrite:
		return "write-only"
	case model.AccessReadWrite:
		return "read-write"
	default:
		return "none"
	}
}

func notes(deprecated, inherited bool, name string) string {
	var n []string
	if deprecated {
		n = append(n, "deprecated")
	}
	if inherited {
		n = append(n, "inherited")
	}
	if to, ok := transfer.DefaultRenames.Resolve(name); ok {
		n = append(n, "copied as "+to)
	}
	return strings.Join(n, ", ")
}

// FormatDescriptor lists the attributes of a type.
func (f *Formatter) FormatDescriptor(d *model.TypeDescriptor) string {
	var sb strings.Builder
	sb.WriteString(f.paint(color.Bold, d.FullName()))
	sb.WriteString("\n")
	if len(d.Attributes) == 0 {
		sb.WriteString("  (no attributes)\n")
		return sb.String()
	}

	t := f.table()
	t.AddRow("  NAME", "KIND", "TYPE", "ACCESS", "NOTES")
	for _, a := range d.Attributes {
		t.AddRow("  "+a.Name, a.Kind, a.Type, FormatAccess(a.Access), notes(a.Deprecated, a.Inherited, a.Name))
	}
	sb.WriteString(t.String())
	sb.WriteString("\n")
	return sb.String()
}

// FormatComponent formats a component and its attribute values.
func (f *Formatter) FormatComponent(info *ComponentInfo) string {
	var sb strings.Builder
	sb.WriteString(f.paint(color.FgCyan, info.Type))
	sb.WriteString("\n")
	if len(info.Attributes) == 0 {
		sb.WriteString("  (no attributes)\n")
		return sb.String()
	}

	t := f.table()
	for _, a := range info.Attributes {
		value := f.FormatValue(a.Value)
		switch {
		case a.Err != nil:
			value = f.paint(color.FgRed, "error: "+a.Err.Error())
		case a.Skipped, !a.Access.CanRead():
			value = "-"
		}
		if f.ShowMetadata {
			t.AddRow("  "+a.Name+":", value, fmt.Sprintf("(%s, %s)", a.Type, a.Access), notes(a.Deprecated, a.Inherited, a.Name))
		} else {
			t.AddRow("  "+a.Name+":", value)
		}
	}
	sb.WriteString(t.String())
	sb.WriteString("\n")
	return sb.String()
}

// FormatObject formats an object with all of its components.
func (f *Formatter) FormatObject(info *ObjectInfo) string {
	var sb strings.Builder
	sb.WriteString(f.paint(color.Bold, info.Name))
	sb.WriteString("\n")
	if len(info.Components) == 0 {
		sb.WriteString("  (no components)\n")
		return sb.String()
	}
	for i := range info.Components {
		sb.WriteString(f.FormatComponent(&info.Components[i]))
	}
	return sb.String()
}

// FormatSnapshot lists snapshot values in name order.
func (f *Formatter) FormatSnapshot(s Snapshot) string {
	if len(s) == 0 {
		return "  (no attributes)\n"
	}
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	slices.Sort(names)

	t := f.table()
	for _, n := range names {
		t.AddRow("  "+n+":", f.FormatValue(s[n]))
	}
	return t.String() + "\n"
}

// FormatDiff formats changes as +, - and ~ lines.
func (f *Formatter) FormatDiff(changes []Change) string {
	if len(changes) == 0 {
		return "  (no differences)\n"
	}

	t := f.table()
	for _, c := range changes {
		switch c.Op {
		case ChangeAdd:
			t.AddRow(f.paint(color.FgGreen, "  + "+c.Path), "", f.FormatValue(c.New))
		case ChangeRemove:
			t.AddRow(f.paint(color.FgRed, "  - "+c.Path), f.FormatValue(c.Old), "")
		default:
			t.AddRow(f.paint(color.FgYellow, "  ~ "+c.Path), f.FormatValue(c.Old), "-> "+f.FormatValue(c.New))
		}
	}
	return t.String() + "\n"
}

// FormatReport summarizes a transfer report.
func (f *Formatter) FormatReport(r *transfer.Report) string {
	var sb strings.Builder
	sb.WriteString(r.String())
	sb.WriteString("\n")
	renamed := make([]string, 0, len(r.Renamed))
	for from := range r.Renamed {
		renamed = append(renamed, from)
	}
	slices.Sort(renamed)
	for _, from := range renamed {
		sb.WriteString(fmt.Sprintf("  %s -> %s\n", from, r.Renamed[from]))
	}
	for _, s := range r.Skipped {
		sb.WriteString(f.paint(color.FgYellow, fmt.Sprintf("  skipped %s: %v", s.Attribute, s.Err)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatEntries formats library entries as a table.
func (f *Formatter) FormatEntries(entries []library.Entry) string {
	if len(entries) == 0 {
		return "(no presets)\n"
	}

	t := f.table()
	t.AddRow("NAME", "TYPE", "ATTRIBUTES", "UPDATED")
	for _, e := range entries {
		t.AddRow(e.Name, shortType(e.Type), e.Attributes, e.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return t.String() + "\n"
}

// FormatEvents formats operation events as a table.
func (f *Formatter) FormatEvents(events []log.Event) string {
	if len(events) == 0 {
		return "(no events)\n"
	}

	t := f.table()
	t.AddRow("TIME", "OPERATION", "OUTCOME", "TYPE", "ATTRIBUTE", "DETAIL")
	for _, e := range events {
		outcome := e.Outcome.String()
		switch e.Outcome {
		case log.OutcomeFailed:
			outcome = f.paint(color.FgRed, outcome)
		case log.OutcomeSkipped:
			outcome = f.paint(color.FgYellow, outcome)
		}
		detail := e.Detail
		if e.Error != "" {
			detail = strings.TrimSpace(detail + " " + e.Error)
		}
		t.AddRow(e.Timestamp.Local().Format("15:04:05.000"), e.Operation, outcome, shortType(e.Type), e.Attribute, detail)
	}
	return t.String() + "\n"
}

func shortType(full string) string {
	return full[strings.LastIndex(full, ".")+1:]
}
