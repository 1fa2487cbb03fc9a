package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/runtime-presets/presets-go/pkg/log"
)

const timeFormat = "2006-01-02T15:04:05.000000Z"

// record is the exported form of an event, with names instead of codes.
type record struct {
	Timestamp time.Time `json:"timestamp"`
	Operation string    `json:"operation"`
	Outcome   string    `json:"outcome"`
	Type      string    `json:"type,omitempty"`
	Attribute string    `json:"attribute,omitempty"`
	ScopeID   string    `json:"scopeId,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func toRecord(e log.Event) record {
	return record{
		Timestamp: e.Timestamp.UTC(),
		Operation: e.Operation.String(),
		Outcome:   e.Outcome.String(),
		Type:      e.Type,
		Attribute: e.Attribute,
		ScopeID:   e.ScopeID,
		Detail:    e.Detail,
		Error:     e.Error,
	}
}

// RunExport exports the log file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	// Determine output writer
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(toRecord(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "operation", "outcome", "type", "attribute", "scope_id", "detail", "error"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		row := []string{
			event.Timestamp.UTC().Format(timeFormat),
			event.Operation.String(),
			event.Outcome.String(),
			event.Type,
			event.Attribute,
			event.ScopeID,
			event.Detail,
			event.Error,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}
