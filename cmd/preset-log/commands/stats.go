package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/runtime-presets/presets-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByOperation map[log.Operation]int
	EventsByOutcome   map[log.Outcome]int
	Types             map[string]*TypeStats
	Scopes            map[string]struct{}
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// TypeStats holds statistics for a single component type.
type TypeStats struct {
	Events   int
	Captures int
	Applies  int
	Skipped  int
	Failed   int

	// SkippedAttributes counts skips per attribute name.
	SkippedAttributes map[string]int
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByOperation: make(map[log.Operation]int),
		EventsByOutcome:   make(map[log.Outcome]int),
		Types:             make(map[string]*TypeStats),
		Scopes:            make(map[string]struct{}),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByOperation[event.Operation]++
	s.EventsByOutcome[event.Outcome]++

	// Track time range
	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	if event.ScopeID != "" {
		s.Scopes[event.ScopeID] = struct{}{}
	}

	if event.Type == "" {
		return
	}
	ts, ok := s.Types[event.Type]
	if !ok {
		ts = &TypeStats{SkippedAttributes: make(map[string]int)}
		s.Types[event.Type] = ts
	}
	ts.Events++

	// Count whole operations only; attribute-level events carry an attribute name.
	if event.Attribute == "" && event.Outcome == log.OutcomeOK {
		switch event.Operation {
		case log.OpCapture:
			ts.Captures++
		case log.OpApply:
			ts.Applies++
		}
	}
	switch event.Outcome {
	case log.OutcomeSkipped:
		ts.Skipped++
		if event.Attribute != "" {
			ts.SkippedAttributes[event.Attribute]++
		}
	case log.OutcomeFailed:
		ts.Failed++
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Preset Event Log Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	// Total events
	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	// Events by operation
	fmt.Fprintln(w, "Events by Operation:")
	for op := log.OpTransfer; op <= log.OpSave; op++ {
		if count := stats.EventsByOperation[op]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", op.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Events by outcome
	fmt.Fprintln(w, "Events by Outcome:")
	for o := log.OutcomeOK; o <= log.OutcomeFailed; o++ {
		if count := stats.EventsByOutcome[o]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", o.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Scopes: %d\n", len(stats.Scopes))
	fmt.Fprintln(w)

	// Types
	fmt.Fprintf(w, "Types: %d\n", len(stats.Types))
	if len(stats.Types) == 0 {
		return
	}

	names := make([]string, 0, len(stats.Types))
	for name := range stats.Types {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w)
	for _, name := range names {
		ts := stats.Types[name]
		fmt.Fprintf(w, "  [%s] %d events, %d captures, %d applies\n", shortType(name), ts.Events, ts.Captures, ts.Applies)
		if ts.Failed > 0 {
			fmt.Fprintf(w, "           Failed: %d\n", ts.Failed)
		}
		if ts.Skipped > 0 {
			fmt.Fprintf(w, "           Skipped: %d", ts.Skipped)
			attrs := make([]string, 0, len(ts.SkippedAttributes))
			for a := range ts.SkippedAttributes {
				attrs = append(attrs, a)
			}
			sort.Strings(attrs)
			for i, a := range attrs {
				sep := " ("
				if i > 0 {
					sep = ", "
				}
				fmt.Fprintf(w, "%s%s=%d", sep, a, ts.SkippedAttributes[a])
			}
			if len(attrs) > 0 {
				fmt.Fprint(w, ")")
			}
			fmt.Fprintln(w)
		}
	}
}
