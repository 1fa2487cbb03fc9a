package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runtime-presets/presets-go/pkg/inspect"
	"github.com/runtime-presets/presets-go/pkg/library"
	"github.com/runtime-presets/presets-go/pkg/model"
)

func newLibraryCmd(getApp func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "library",
		Aliases: []string{"lib"},
		Short:   "Manage the preset library",
	}
	cmd.AddCommand(
		newLibraryListCmd(getApp),
		newLibrarySaveCmd(getApp),
		newLibraryLoadCmd(getApp),
		newLibraryRmCmd(getApp),
	)
	return cmd
}

func newLibraryListCmd(getApp func() *App) *cobra.Command {
	var typeName string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored presets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp()
			ctx := cmd.Context()

			lib, err := app.Library(ctx)
			if err != nil {
				return err
			}

			var entries []library.Entry
			if typeName != "" {
				typ, ok := inspect.ResolveTypeName(app.registry, typeName)
				if !ok {
					return fmt.Errorf("%w: %s", model.ErrUnknownType, typeName)
				}
				entries, err = lib.ListByType(ctx, model.FullTypeName(typ))
			} else {
				entries, err = lib.List(ctx)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), app.formatter.FormatEntries(entries))
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeName, "type", "t", "", "only list presets of this component type")
	return cmd
}

func newLibrarySaveCmd(getApp func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "save <name> <file>",
		Short: "Import an asset file into the library",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp()
			ctx := cmd.Context()

			if !isAssetPath(args[1]) {
				return fmt.Errorf("%s: not an asset file", args[1])
			}
			a, err := app.LoadAsset(ctx, args[1])
			if err != nil {
				return err
			}
			if err := app.SaveAsset(ctx, args[0], a); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s as %q\n", args[1], args[0])
			return nil
		},
	}
}

func newLibraryLoadCmd(getApp func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "load <name> <file>",
		Short: "Export a library preset to an asset file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp()
			ctx := cmd.Context()

			if !isAssetPath(args[1]) {
				return fmt.Errorf("%s: not an asset file", args[1])
			}
			a, err := app.LoadAsset(ctx, args[0])
			if err != nil {
				return err
			}
			if err := app.SaveAsset(ctx, args[1], a); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %q to %s\n", args[0], args[1])
			return nil
		},
	}
}

func newLibraryRmCmd(getApp func() *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>...",
		Aliases: []string{"delete"},
		Short:   "Delete presets from the library",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp()
			ctx := cmd.Context()

			lib, err := app.Library(ctx)
			if err != nil {
				return err
			}
			for _, name := range args {
				if err := lib.Delete(ctx, name); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", name)
			}
			return nil
		},
	}
}
