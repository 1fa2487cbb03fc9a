// Command presetctl captures component state as presets and applies it to
// other components.
//
// Components live in YAML scene files; presets are stored as asset files
// (.preset for CBOR, .preset.yaml for YAML) or by name in a SQLite library.
//
// Usage:
//
//	presetctl <command> [flags]
//
// Examples:
//
//	# Show the attributes of a component type
//	presetctl describe Light
//
//	# Capture the light of object "Lamp" into an asset file
//	presetctl capture scene.yaml Lamp/Light -o warm.preset.yaml
//
//	# Store it in the library and apply it to every light in a scene
//	presetctl library save warm warm.preset.yaml
//	presetctl apply warm scene.yaml --all --write
//
//	# Explore a scene interactively
//	presetctl shell scene.yaml
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd(os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. The App is created once flags are
// parsed and is shared by every subcommand through the returned closure.
func newRootCmd(stderr io.Writer) *cobra.Command {
	var (
		configFile string
		app        *App
	)
	getApp := func() *App { return app }

	root := &cobra.Command{
		Use:           "presetctl",
		Short:         "Capture and apply component presets",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile, cmd)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			app, err = newApp(cfg, stderr)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app == nil {
				return nil
			}
			return app.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default: ./presetctl.yaml or <user config dir>/presetctl/presetctl.yaml)")
	pf.String("log-level", defaultLogLevel, "log level: debug, info, warn, error")
	pf.String("format", defaultFormat, "asset format for new files without extension: cbor, yaml")
	pf.String("library", defaultLibrary, "preset library database path")
	pf.String("event-log", "", "append preset events to this CBOR trace file")
	pf.Bool("declared-only", false, "copy only attributes declared by the component type itself")
	pf.Bool("deep-copy", false, "duplicate slices, maps and referenced structs instead of sharing them")

	root.AddCommand(
		newTypesCmd(getApp),
		newDescribeCmd(getApp),
		newCaptureCmd(getApp),
		newApplyCmd(getApp),
		newShowCmd(getApp),
		newDiffCmd(getApp),
		newLibraryCmd(getApp),
		newEventsCmd(getApp),
		newShellCmd(getApp),
	)
	return root
}
