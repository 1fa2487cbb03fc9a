package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runtime-presets/presets-go/pkg/inspect"
)

func newShowCmd(getApp func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <preset>",
		Short: "Show the attributes stored in a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp()

			a, err := app.LoadAsset(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:    %s\n", a.Name)
			fmt.Fprintf(out, "Type:    %s\n", a.Type)
			fmt.Fprintf(out, "ID:      %s\n", a.ID)
			fmt.Fprintf(out, "Created: %s\n", a.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Version: %d\n", a.Version)
			fmt.Fprint(out, app.formatter.FormatSnapshot(inspect.Snapshot(a.Attributes)))
			return nil
		},
	}
}

func newDiffCmd(getApp func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <preset> <scene.yaml> <object/Type>",
		Short: "Show what applying a preset would change",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp()

			p, err := app.LoadPreset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer p.Release()

			s, err := app.LoadScene(args[1])
			if err != nil {
				return err
			}
			defer s.Destroy()

			targets, err := app.Components(s, args[2:])
			if err != nil {
				return err
			}
			changes, err := inspect.Diff(p.Template(), targets[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), app.formatter.FormatDiff(changes))
			return nil
		},
	}
}
