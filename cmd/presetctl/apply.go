package main

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/runtime-presets/presets-go/pkg/scene"
)

func newApplyCmd(getApp func() *App) *cobra.Command {
	var (
		all    bool
		write  bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "apply <preset> <scene.yaml> [object/Type...]",
		Short: "Apply a preset to scene components",
		Long: `Apply copies the preset's attributes onto the named components, or onto
every component of the preset's type with --all.

<preset> is an asset file (.preset, .preset.yaml) or a library name.
Attributes that cannot be written are reported and skipped; a component of
another type fails without being modified. The scene file is only updated
with --write (or written to -o).`,
		Example: `  presetctl apply warm.preset.yaml scene.yaml Lamp/Light
  presetctl apply warm scene.yaml --all --write`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp()
			ctx := cmd.Context()

			if all == (len(args) > 2) {
				return errors.New("name target components or use --all, not both")
			}

			p, err := app.LoadPreset(ctx, args[0])
			if err != nil {
				return err
			}
			defer p.Release()

			s, err := app.LoadScene(args[1])
			if err != nil {
				return err
			}
			defer s.Destroy()

			var targets []any
			if all {
				targets = s.Instances(p.Type())
			} else {
				targets, err = app.Components(s, args[2:])
				if err != nil {
					return err
				}
			}
			if len(targets) == 0 {
				return fmt.Errorf("no %s components in %s", p.TypeName(), args[1])
			}

			out := cmd.OutOrStdout()
			var result *multierror.Error
			applied := 0
			for i, target := range targets {
				report, err := p.ApplyReport(target)
				if err != nil {
					result = multierror.Append(result, fmt.Errorf("target %d: %w", i, err))
					continue
				}
				applied++
				fmt.Fprint(out, app.formatter.FormatReport(report))
			}
			fmt.Fprintf(out, "Applied %s to %d of %d components\n", p.TypeName(), applied, len(targets))

			if write || output != "" {
				path := output
				if path == "" {
					path = args[1]
				}
				if err := scene.Save(path, s); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %s\n", path)
			}
			return result.ErrorOrNil()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "apply to every component of the preset's type")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the updated scene back to its file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the updated scene to this file")
	return cmd
}
