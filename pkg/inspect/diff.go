package inspect

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/wI2L/jsondiff"

	"github.com/runtime-presets/presets-go/pkg/asset"
	"github.com/runtime-presets/presets-go/pkg/model"
)

// Snapshot holds the stored attribute values of an instance, keyed by
// attribute name. It contains exactly what an asset would save.
type Snapshot map[string]any

// TakeSnapshot reads the storable attributes of instance.
func TakeSnapshot(instance any) (Snapshot, error) {
	a, err := asset.FromInstance(instance, "")
	if err != nil {
		return nil, err
	}
	return Snapshot(a.Attributes), nil
}

// Change operations.
const (
	ChangeAdd     = jsondiff.OperationAdd
	ChangeRemove  = jsondiff.OperationRemove
	ChangeReplace = jsondiff.OperationReplace
)

// Change is one difference between two snapshots.
type Change struct {
	// Op is add, remove or replace.
	Op string

	// Path is a JSON pointer below the attribute map, e.g. "/color/R".
	Path string

	// Attribute is the top-level attribute the change belongs to.
	Attribute string

	Old any
	New any
}

// Diff lists what applying template onto target would change. Old values
// come from target, new values from template. Changes are sorted by path.
func Diff(template, target any) ([]Change, error) {
	if !model.SameType(template, target) {
		return nil, fmt.Errorf("%w: %s and %s", model.ErrTypeMismatch,
			typeName(template), typeName(target))
	}
	current, err := TakeSnapshot(target)
	if err != nil {
		return nil, err
	}
	wanted, err := TakeSnapshot(template)
	if err != nil {
		return nil, err
	}
	return DiffSnapshots(current, wanted)
}

// DiffSnapshots compares two snapshots. Values are compared by their JSON
// form, so a float32 and a float64 holding the same number are equal.
func DiffSnapshots(from, to Snapshot) ([]Change, error) {
	src, err := normalize(from)
	if err != nil {
		return nil, err
	}
	dst, err := normalize(to)
	if err != nil {
		return nil, err
	}

	patch, err := jsondiff.Compare(src, dst)
	if err != nil {
		return nil, fmt.Errorf("failed to compare snapshots: %w", err)
	}

	changes := make([]Change, 0, len(patch))
	for _, op := range patch {
		path := fmt.Sprint(op.Path)
		c := Change{
			Op:        op.Type,
			Path:      path,
			Attribute: topLevel(path),
		}
		if op.Type != ChangeAdd {
			c.Old = lookup(src, path)
		}
		if op.Type != ChangeRemove {
			c.New = op.Value
		}
		changes = append(changes, c)
	}
	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].Path < changes[j].Path
	})
	return changes, nil
}

func normalize(s Snapshot) (any, error) {
	if s == nil {
		s = Snapshot{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func tokens(path string) []string {
	if path == "" || path == "/" {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, p := range parts {
		parts[i] = strings.NewReplacer("~1", "/", "~0", "~").Replace(p)
	}
	return parts
}

func topLevel(path string) string {
	if t := tokens(path); len(t) > 0 {
		return t[0]
	}
	return ""
}

// lookup resolves a JSON pointer against a decoded JSON document.
func lookup(doc any, path string) any {
	cur := doc
	for _, tok := range tokens(path) {
		switch v := cur.(type) {
		case map[string]any:
			cur = v[tok]
		case []any:
			var idx int
			if _, err := fmt.Sscanf(tok, "%d", &idx); err != nil || idx < 0 || idx >= len(v) {
				return nil
			}
			cur = v[idx]
		default:
			return nil
		}
	}
	return cur
}

func typeName(instance any) string {
	t, err := model.TypeOf(instance)
	if err != nil {
		return fmt.Sprintf("%T", instance)
	}
	return t.Name()
}
