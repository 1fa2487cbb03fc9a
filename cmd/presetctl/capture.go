package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runtime-presets/presets-go/pkg/asset"
	"github.com/runtime-presets/presets-go/pkg/preset"
)

func newCaptureCmd(getApp func() *App) *cobra.Command {
	var (
		output string
		save   string
		name   string
	)

	cmd := &cobra.Command{
		Use:   "capture <scene.yaml> <object/Type>",
		Short: "Capture a component's attributes as a preset",
		Long: `Capture copies every copyable attribute of a scene component into a
preset template and stores it as an asset file (-o) or in the library (--save).

An output file without an asset extension gets the extension of --format.`,
		Example: `  presetctl capture scene.yaml Lamp/Light -o warm.preset.yaml
  presetctl capture scene.yaml Crate/MeshRenderer --save stone`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp()
			ctx := cmd.Context()

			if output == "" && save == "" {
				return errors.New("one of -o or --save is required")
			}

			s, err := app.LoadScene(args[0])
			if err != nil {
				return err
			}
			defer s.Destroy()

			targets, err := app.Components(s, args[1:])
			if err != nil {
				return err
			}

			p, err := preset.Capture(targets[0], app.PresetOptions()...)
			if err != nil {
				return err
			}
			defer p.Release()

			if name == "" {
				name = save
			}
			if name == "" {
				name = assetName(output)
			}
			a, err := asset.FromPreset(p, name)
			if err != nil {
				return err
			}
			app.warnSkipped(a.Report())

			out := cmd.OutOrStdout()
			if output != "" {
				if !isAssetPath(output) {
					output += app.cfg.Format.Ext()
				}
				if err := app.SaveAsset(ctx, output, a); err != nil {
					return err
				}
				fmt.Fprintf(out, "Captured %s (%d attributes) to %s\n", p.TypeName(), len(a.Attributes), output)
			}
			if save != "" {
				if err := app.SaveAsset(ctx, save, a); err != nil {
					return err
				}
				fmt.Fprintf(out, "Captured %s (%d attributes) as %q\n", p.TypeName(), len(a.Attributes), save)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "asset file to write")
	cmd.Flags().StringVar(&save, "save", "", "library name to store the preset under")
	cmd.Flags().StringVar(&name, "name", "", "preset display name (default: library name or file name)")
	return cmd
}
