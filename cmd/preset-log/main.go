// Command preset-log is a tool for viewing and analyzing preset event logs.
//
// Event logs are written by presetctl when run with --event-log, or by any
// program that hands a log.FileLogger to its presets.
//
// Usage:
//
//	preset-log <command> [flags] <file.plog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSON or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	preset-log view events.plog
//
//	# View only attributes that were skipped
//	preset-log view -outcome skipped events.plog
//
//	# Export to JSONL
//	preset-log export -format jsonl events.plog
//
//	# Keep only Light events and save to a new file
//	preset-log filter -type Light -o light.plog events.plog
//
//	# Show statistics
//	preset-log stats events.plog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/runtime-presets/presets-go/cmd/preset-log/commands"
)

const usage = `preset-log - Preset Event Log Analyzer

Usage:
  preset-log <command> [flags] <file.plog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSON or CSV format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "preset-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// requirePath returns the log file argument or exits with usage.
func requirePath(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `preset-log view - View log file in human-readable format

Usage:
  preset-log view [flags] <file.plog>

Flags:
`)
		fs.PrintDefaults()
	}

	op := fs.String("op", "", "Filter by operation (transfer, capture, apply, update, release, load, save)")
	outcome := fs.String("outcome", "", "Filter by outcome (ok, skipped, failed)")
	typeName := fs.String("type", "", "Filter by component type (short or full name)")
	attribute := fs.String("attribute", "", "Filter by attribute name")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	filter := commands.ViewFilter{Type: *typeName, Attribute: *attribute}

	if *op != "" {
		o, err := commands.ParseOperationFlag(*op)
		if err != nil {
			fail(err)
		}
		filter.Operation = &o
	}

	if *outcome != "" {
		o, err := commands.ParseOutcomeFlag(*outcome)
		if err != nil {
			fail(err)
		}
		filter.Outcome = &o
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `preset-log export - Export log file to JSON or CSV format

Usage:
  preset-log export [flags] <file.plog>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `preset-log filter - Filter log file and write to new file

Usage:
  preset-log filter [flags] <file.plog>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (required)")
	op := fs.String("op", "", "Filter by operation")
	outcome := fs.String("outcome", "", "Filter by outcome (ok, skipped, failed)")
	typeName := fs.String("type", "", "Filter by component type (short or full name)")
	attribute := fs.String("attribute", "", "Filter by attribute name")
	scopeID := fs.String("scope", "", "Filter by scope ID")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	opts := commands.FilterOptions{
		Output:    *output,
		Operation: *op,
		Outcome:   *outcome,
		Type:      *typeName,
		Attribute: *attribute,
		ScopeID:   *scopeID,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
	}

	if err := commands.RunFilter(path, opts, os.Stdout); err != nil {
		fail(err)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `preset-log stats - Show statistics about the log file

Usage:
  preset-log stats <file.plog>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
