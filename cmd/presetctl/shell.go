package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/runtime-presets/presets-go/pkg/asset"
	"github.com/runtime-presets/presets-go/pkg/inspect"
	"github.com/runtime-presets/presets-go/pkg/preset"
	"github.com/runtime-presets/presets-go/pkg/scene"
)

func newShellCmd(getApp func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shell <scene.yaml>",
		Short: "Inspect a scene and try presets interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp()

			s, err := app.LoadScene(args[0])
			if err != nil {
				return err
			}
			defer s.Destroy()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          s.Name + "> ",
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return fmt.Errorf("failed to create readline: %w", err)
			}
			defer rl.Close()

			sh := newShell(app, s, args[0], rl.Stdout())
			defer sh.Close()

			sh.printHelp()
			for {
				line, err := rl.Readline()
				if err != nil {
					// EOF or interrupt
					if err == readline.ErrInterrupt {
						continue
					}
					fmt.Fprintln(sh.out, "Exiting...")
					return nil
				}
				if !sh.Exec(cmd.Context(), line) {
					return nil
				}
			}
		},
	}
}

// Shell handles interactive commands against one scene.
type Shell struct {
	app       *App
	scene     *scene.Scene
	path      string
	inspector *inspect.Inspector
	presets   map[string]*preset.Preset
	out       io.Writer
}

func newShell(app *App, s *scene.Scene, path string, out io.Writer) *Shell {
	return &Shell{
		app:       app,
		scene:     s,
		path:      path,
		inspector: inspect.NewInspector(s, app.registry),
		presets:   make(map[string]*preset.Preset),
		out:       out,
	}
}

// Close releases every preset captured in the session.
func (sh *Shell) Close() {
	for name, p := range sh.presets {
		p.Release()
		delete(sh.presets, name)
	}
}

// Exec runs one command line. It returns false when the shell should exit.
func (sh *Shell) Exec(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		sh.printHelp()

	case "inspect", "i":
		sh.cmdInspect(args)

	case "read", "r":
		sh.cmdRead(args)

	case "write", "w":
		sh.cmdWrite(args)

	case "capture", "c":
		sh.cmdCapture(args)

	case "presets", "p":
		sh.cmdPresets()

	case "apply", "a":
		sh.cmdApply(args)

	case "diff", "d":
		sh.cmdDiff(args)

	case "release":
		sh.cmdRelease(args)

	case "store":
		sh.cmdStore(ctx, args)

	case "load":
		sh.cmdLoad(ctx, args)

	case "save":
		sh.cmdSave(args)

	case "quit", "exit", "q":
		return false

	default:
		fmt.Fprintf(sh.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (sh *Shell) printHelp() {
	fmt.Fprintln(sh.out, `
Scene Commands:
  Inspection:
    inspect [path]          - Inspect the scene (or an object/component)
    read <path>             - Read an attribute value
    write <path> <value>    - Write an attribute value (YAML syntax)

  Presets:
    capture <path> <name>   - Capture a component as a session preset
    presets                 - List session presets
    apply <name> <path>     - Apply a preset (or --all for every match)
    diff <name> <path>      - Show what applying a preset would change
    release <name>          - Release a session preset
    store <name>            - Store a session preset in the library
    load <name>             - Load a library preset into the session

  General:
    save [file]             - Write the scene (default: the loaded file)
    help                    - Show this help
    quit                    - Exit

  Path Format:
    object/type/attribute - e.g., Lamp/Light/intensity
    Type names are short or full: Light or github.com/.../components.Light`)
}

func (sh *Shell) parsePath(raw string) (*inspect.Path, bool) {
	path, err := inspect.ParsePath(raw)
	if err != nil {
		fmt.Fprintf(sh.out, "Invalid path: %v\n", err)
		return nil, false
	}
	return path, true
}

// cmdInspect handles the inspect command.
func (sh *Shell) cmdInspect(args []string) {
	f := sh.app.formatter
	if len(args) == 0 {
		for _, o := range sh.inspector.InspectScene() {
			fmt.Fprint(sh.out, f.FormatObject(&o))
		}
		return
	}

	path, ok := sh.parsePath(args[0])
	if !ok {
		return
	}

	switch {
	case path.Type == "":
		info, err := sh.inspector.InspectObject(path.Object)
		if err != nil {
			fmt.Fprintf(sh.out, "Error: %v\n", err)
			return
		}
		fmt.Fprint(sh.out, f.FormatObject(info))
	case path.IsPartial():
		info, err := sh.inspector.InspectComponent(path)
		if err != nil {
			fmt.Fprintf(sh.out, "Error: %v\n", err)
			return
		}
		fmt.Fprint(sh.out, f.FormatComponent(info))
	default:
		sh.cmdRead(args)
	}
}

// cmdRead handles the read command.
func (sh *Shell) cmdRead(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(sh.out, "Usage: read <path>")
		fmt.Fprintln(sh.out, "  Example: read Lamp/Light/intensity")
		return
	}
	path, ok := sh.parsePath(args[0])
	if !ok {
		return
	}
	value, attr, err := sh.inspector.ReadAttribute(path)
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(sh.out, "%s = %s\n", attr.Name, sh.app.formatter.FormatValue(value))
}

// cmdWrite handles the write command.
func (sh *Shell) cmdWrite(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(sh.out, "Usage: write <path> <value>")
		fmt.Fprintln(sh.out, "  Example: write Lamp/Light/intensity 2.5")
		return
	}
	path, ok := sh.parsePath(args[0])
	if !ok {
		return
	}
	if err := sh.inspector.WriteAttributeText(path, strings.Join(args[1:], " ")); err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	sh.cmdRead(args[:1])
}

// cmdCapture handles the capture command.
func (sh *Shell) cmdCapture(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(sh.out, "Usage: capture <object/type> <name>")
		return
	}
	path, ok := sh.parsePath(args[0])
	if !ok {
		return
	}
	c, err := sh.inspector.Component(path)
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	p, err := preset.Capture(c, sh.app.PresetOptions()...)
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	sh.put(args[1], p)
	fmt.Fprintf(sh.out, "Captured %s as %q\n", p.TypeName(), args[1])
}

func (sh *Shell) put(name string, p *preset.Preset) {
	if old, ok := sh.presets[name]; ok {
		old.Release()
	}
	sh.presets[name] = p
}

func (sh *Shell) preset(name string) (*preset.Preset, bool) {
	p, ok := sh.presets[name]
	if !ok {
		fmt.Fprintf(sh.out, "Unknown preset: %s (see 'presets')\n", name)
	}
	return p, ok
}

// cmdPresets lists the session presets.
func (sh *Shell) cmdPresets() {
	if len(sh.presets) == 0 {
		fmt.Fprintln(sh.out, "No presets captured")
		return
	}
	names := make([]string, 0, len(sh.presets))
	for n := range sh.presets {
		names = append(names, n)
	}
	slices.Sort(names)
	for _, n := range names {
		p := sh.presets[n]
		fmt.Fprintf(sh.out, "  %-16s %-14s %s\n", n, p.TypeName(), p.State())
	}
}

// cmdApply handles the apply command.
func (sh *Shell) cmdApply(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(sh.out, "Usage: apply <name> <object/type>|--all")
		return
	}
	p, ok := sh.preset(args[0])
	if !ok {
		return
	}

	var targets []any
	if args[1] == "--all" {
		targets = sh.scene.Instances(p.Type())
	} else {
		path, ok := sh.parsePath(args[1])
		if !ok {
			return
		}
		c, err := sh.inspector.Component(path)
		if err != nil {
			fmt.Fprintf(sh.out, "Error: %v\n", err)
			return
		}
		targets = append(targets, c)
	}

	applied := 0
	for _, target := range targets {
		report, err := p.ApplyReport(target)
		if err != nil {
			fmt.Fprintf(sh.out, "Error: %v\n", err)
			continue
		}
		applied++
		fmt.Fprint(sh.out, sh.app.formatter.FormatReport(report))
	}
	fmt.Fprintf(sh.out, "Applied %q to %d of %d components\n", args[0], applied, len(targets))
}

// cmdDiff handles the diff command.
func (sh *Shell) cmdDiff(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(sh.out, "Usage: diff <name> <object/type>")
		return
	}
	p, ok := sh.preset(args[0])
	if !ok {
		return
	}
	path, ok := sh.parsePath(args[1])
	if !ok {
		return
	}
	c, err := sh.inspector.Component(path)
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	changes, err := inspect.Diff(p.Template(), c)
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	fmt.Fprint(sh.out, sh.app.formatter.FormatDiff(changes))
}

// cmdRelease handles the release command.
func (sh *Shell) cmdRelease(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(sh.out, "Usage: release <name>")
		return
	}
	p, ok := sh.preset(args[0])
	if !ok {
		return
	}
	if p.Release() {
		fmt.Fprintf(sh.out, "Released %q\n", args[0])
	} else {
		fmt.Fprintf(sh.out, "%q was already released\n", args[0])
	}
	delete(sh.presets, args[0])
}

// cmdStore stores a session preset in the library.
func (sh *Shell) cmdStore(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(sh.out, "Usage: store <name>")
		return
	}
	p, ok := sh.preset(args[0])
	if !ok {
		return
	}
	a, err := asset.FromPreset(p, args[0])
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	sh.app.warnSkipped(a.Report())
	if err := sh.app.SaveAsset(ctx, args[0], a); err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(sh.out, "Stored %q in %s\n", args[0], sh.app.cfg.Library)
}

// cmdLoad loads a library preset or asset file into the session.
func (sh *Shell) cmdLoad(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(sh.out, "Usage: load <name|file>")
		return
	}
	p, err := sh.app.LoadPreset(ctx, args[0])
	if err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	name := args[0]
	if isAssetPath(name) {
		name = assetName(name)
	}
	sh.put(name, p)
	fmt.Fprintf(sh.out, "Loaded %s as %q\n", p.TypeName(), name)
}

// cmdSave writes the scene.
func (sh *Shell) cmdSave(args []string) {
	path := sh.path
	if len(args) > 0 {
		path = args[0]
	}
	if err := scene.Save(path, sh.scene); err != nil {
		fmt.Fprintf(sh.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(sh.out, "Wrote %s\n", path)
}
