package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runtime-presets/presets-go/pkg/inspect"
	"github.com/runtime-presets/presets-go/pkg/log"
	"github.com/runtime-presets/presets-go/pkg/model"
)

func newEventsCmd(getApp func() *App) *cobra.Command {
	var (
		op        string
		outcome   string
		typeName  string
		attribute string
		scopeID   string
	)

	cmd := &cobra.Command{
		Use:   "events [file.plog]",
		Short: "Show recorded preset events",
		Long: `Show events from an event log written with --event-log.

Without a file argument the configured event log is read.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp()

			path := app.cfg.EventLog
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no event log given and none configured")
			}

			var filter log.Filter
			if op != "" {
				o, ok := log.ParseOperation(strings.ToUpper(op))
				if !ok {
					return fmt.Errorf("invalid operation %q", op)
				}
				filter.Operation = &o
			}
			if outcome != "" {
				o, ok := log.ParseOutcome(strings.ToUpper(outcome))
				if !ok {
					return fmt.Errorf("invalid outcome %q", outcome)
				}
				filter.Outcome = &o
			}
			if typeName != "" {
				typ, ok := inspect.ResolveTypeName(app.registry, typeName)
				if !ok {
					return fmt.Errorf("%w: %s", model.ErrUnknownType, typeName)
				}
				filter.Type = model.FullTypeName(typ)
			}
			filter.Attribute = attribute
			filter.ScopeID = scopeID

			r, err := log.NewFilteredReader(path, filter)
			if err != nil {
				return err
			}
			defer r.Close()

			events, err := r.All()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), app.formatter.FormatEvents(events))
			return nil
		},
	}

	cmd.Flags().StringVar(&op, "op", "", "filter by operation (capture, apply, transfer, ...)")
	cmd.Flags().StringVar(&outcome, "outcome", "", "filter by outcome (ok, skipped, failed)")
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "filter by component type")
	cmd.Flags().StringVar(&attribute, "attribute", "", "filter by attribute name")
	cmd.Flags().StringVar(&scopeID, "scope", "", "filter by scope ID")
	return cmd
}
