package main

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/runtime-presets/presets-go/pkg/inspect"
	"github.com/runtime-presets/presets-go/pkg/model"
)

func newTypesCmd(getApp func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the registered component types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp()

			t := uitable.New()
			t.Separator = "  "
			t.AddRow("TYPE", "ATTRIBUTES", "COPYABLE", "PACKAGE")
			for _, name := range app.registry.Names() {
				typ, err := app.registry.Lookup(name)
				if err != nil {
					return err
				}
				d, err := model.Describe(typ, model.ScopeInherited)
				if err != nil {
					return err
				}
				copyable := 0
				for _, a := range d.Attributes {
					if a.Copyable() {
						copyable++
					}
				}
				t.AddRow(d.Name(), len(d.Attributes), copyable, typ.PkgPath())
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}
}

func newDescribeCmd(getApp func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <type>",
		Short: "Show the attributes of a component type",
		Long: `Show the attributes of a component type in transfer order.

With --declared-only, attributes promoted from embedded structs are left out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp()

			typ, ok := inspect.ResolveTypeName(app.registry, args[0])
			if !ok {
				return fmt.Errorf("%w: %s", model.ErrUnknownType, args[0])
			}
			scope := model.ScopeInherited
			if app.cfg.DeclaredOnly {
				scope = model.ScopeDeclaredOnly
			}
			d, err := model.Describe(typ, scope)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), app.formatter.FormatDescriptor(d))
			return nil
		},
	}
}
