// Package commands implements the preset-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/runtime-presets/presets-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Operation *log.Operation
	Outcome   *log.Outcome

	// Type matches the full type name, or the short name case-insensitively.
	Type string

	Attribute string
}

// Matches reports whether the event passes the filter.
func (f ViewFilter) Matches(e log.Event) bool {
	if f.Operation != nil && e.Operation != *f.Operation {
		return false
	}
	if f.Outcome != nil && e.Outcome != *f.Outcome {
		return false
	}
	if f.Type != "" && !typeMatches(e.Type, f.Type) {
		return false
	}
	if f.Attribute != "" && e.Attribute != f.Attribute {
		return false
	}
	return true
}

// typeMatches reports whether the full type name matches name.
func typeMatches(full, name string) bool {
	return full == name || strings.EqualFold(shortType(full), name)
}

// shortType strips the package path from a full type name.
func shortType(full string) string {
	return full[strings.LastIndex(full, ".")+1:]
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp OPERATION OUTCOME Type[.attribute]
	ts := event.Timestamp.UTC().Format(timeFormat)
	subject := shortType(event.Type)
	if subject == "" {
		subject = "-"
	}
	if event.Attribute != "" {
		subject += "." + event.Attribute
	}

	fmt.Fprintf(w, "%s %-8s %-7s %s\n", ts, event.Operation, event.Outcome, subject)

	if event.Type != shortType(event.Type) {
		fmt.Fprintf(w, "  Type: %s\n", event.Type)
	}
	if event.ScopeID != "" {
		fmt.Fprintf(w, "  Scope: %s\n", shortenScopeID(event.ScopeID))
	}
	if event.Detail != "" {
		fmt.Fprintf(w, "  Detail: %s\n", event.Detail)
	}
	if event.Error != "" {
		fmt.Fprintf(w, "  Error: %s\n", event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenScopeID returns the first 8 characters of the scope ID.
func shortenScopeID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// filterEvents returns events matching the filter criteria.
func filterEvents(events []log.Event, filter ViewFilter) []log.Event {
	var result []log.Event
	for _, e := range events {
		if filter.Matches(e) {
			result = append(result, e)
		}
	}
	return result
}

// ParseOperationFlag parses an operation string from command-line flag (case-insensitive).
func ParseOperationFlag(s string) (log.Operation, error) {
	op, ok := log.ParseOperation(strings.ToUpper(s))
	if !ok {
		return 0, fmt.Errorf("invalid operation: %s (must be transfer, capture, apply, update, release, load, or save)", s)
	}
	return op, nil
}

// ParseOutcomeFlag parses an outcome string from command-line flag (case-insensitive).
func ParseOutcomeFlag(s string) (log.Outcome, error) {
	o, ok := log.ParseOutcome(strings.ToUpper(s))
	if !ok {
		return 0, fmt.Errorf("invalid outcome: %s (must be ok, skipped, or failed)", s)
	}
	return o, nil
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		if !filter.Matches(event) {
			continue
		}

		formatEvent(output, event)
	}

	return nil
}
