// Package inspect provides component inspection and attribute manipulation utilities.
//
// The inspect package offers a unified interface for:
//   - Parsing path expressions (e.g., "Lamp/Light/intensity")
//   - Resolving type and attribute names
//   - Reading and writing attributes
//   - Comparing a preset template with a live component
//   - Formatting output for display
package inspect

import (
	"errors"
	"strings"
)

// Path errors.
var (
	ErrEmptyPath   = errors.New("empty path")
	ErrInvalidPath = errors.New("invalid path format")
)

// Path represents a parsed inspection path.
// Format: object[/type[/attribute]]
type Path struct {
	// Object is the scene object name.
	Object string

	// Type is the component type name (short or full).
	Type string

	// Attribute is the attribute name within the component.
	Attribute string

	// Raw stores the original input string.
	Raw string
}

// ParsePath parses a path string into a Path struct.
//
// Supported formats:
//   - "object/type/attribute" - one attribute
//   - "object/type" - partial (for listing attributes)
//   - "object" - partial (for listing components)
//
// Full type names contain slashes, so the type segment is everything
// between the first and the last segment when more than three are given.
func ParsePath(input string) (*Path, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyPath
	}

	if strings.HasPrefix(input, "/") || strings.HasSuffix(input, "/") || strings.Contains(input, "//") {
		return nil, ErrInvalidPath
	}

	parts := strings.Split(input, "/")
	p := &Path{Raw: input, Object: parts[0]}

	switch len(parts) {
	case 1:
	case 2:
		p.Type = parts[1]
	default:
		p.Type = strings.Join(parts[1:len(parts)-1], "/")
		p.Attribute = parts[len(parts)-1]
	}
	return p, nil
}

// IsPartial reports whether the path stops before an attribute.
func (p *Path) IsPartial() bool {
	return p.Attribute == ""
}

// String returns the path as a string.
func (p *Path) String() string {
	var sb strings.Builder
	sb.WriteString(p.Object)
	if p.Type == "" {
		return sb.String()
	}
	sb.WriteString("/")
	sb.WriteString(p.Type)
	if p.Attribute != "" {
		sb.WriteString("/")
		sb.WriteString(p.Attribute)
	}
	return sb.String()
}
