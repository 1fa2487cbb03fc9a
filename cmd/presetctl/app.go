package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/runtime-presets/presets-go/pkg/asset"
	"github.com/runtime-presets/presets-go/pkg/components"
	"github.com/runtime-presets/presets-go/pkg/inspect"
	"github.com/runtime-presets/presets-go/pkg/library"
	"github.com/runtime-presets/presets-go/pkg/log"
	"github.com/runtime-presets/presets-go/pkg/model"
	"github.com/runtime-presets/presets-go/pkg/preset"
	"github.com/runtime-presets/presets-go/pkg/scene"
	"github.com/runtime-presets/presets-go/pkg/transfer"
)

// ErrPresetNotFound is returned when a preset reference names neither an
// existing asset file nor a library entry.
var ErrPresetNotFound = errors.New("preset not found")

// App carries the state shared by all commands.
type App struct {
	cfg       *Config
	registry  *model.Registry
	logger    log.Logger
	eventLog  *log.FileLogger
	formatter *inspect.Formatter
	lib       *library.Library
	stderr    io.Writer
}

func newApp(cfg *Config, stderr io.Writer) (*App, error) {
	slogger := setupLogging(cfg.LogLevel, stderr)

	a := &App{
		cfg:       cfg,
		registry:  components.NewRegistry(),
		formatter: inspect.NewFormatter(),
		stderr:    stderr,
	}

	loggers := []log.Logger{log.NewSlogAdapter(slogger)}
	if cfg.EventLog != "" {
		fl, err := log.NewFileLogger(cfg.EventLog)
		if err != nil {
			return nil, fmt.Errorf("open event log: %w", err)
		}
		a.eventLog = fl
		loggers = append(loggers, fl)
	}
	a.logger = log.NewMultiLogger(loggers...)
	return a, nil
}

// Close releases the library and the event log.
func (a *App) Close() error {
	var errs []error
	if a.lib != nil {
		errs = append(errs, a.lib.Close())
		a.lib = nil
	}
	if a.eventLog != nil {
		errs = append(errs, a.eventLog.Close())
		a.eventLog = nil
	}
	return errors.Join(errs...)
}

// Library opens the preset library on first use.
func (a *App) Library(ctx context.Context) (*library.Library, error) {
	if a.lib != nil {
		return a.lib, nil
	}
	lib, err := library.Open(ctx, a.cfg.Library, a.registry, a.logger)
	if err != nil {
		return nil, err
	}
	a.lib = lib
	return lib, nil
}

// PresetOptions returns the preset options implied by the configuration.
func (a *App) PresetOptions() []preset.Option {
	opts := []preset.Option{preset.WithLogger(a.logger)}
	if a.cfg.DeclaredOnly {
		opts = append(opts, preset.WithDeclaredOnly())
	}
	if a.cfg.DeepCopy {
		opts = append(opts, preset.WithDeepCopy())
	}
	return opts
}

// isAssetPath reports whether ref looks like an asset file name.
func isAssetPath(ref string) bool {
	_, err := asset.FormatForPath(ref)
	return err == nil
}

// LoadAsset resolves ref as an asset file when it has an asset extension,
// and as a library entry otherwise.
func (a *App) LoadAsset(ctx context.Context, ref string) (*asset.Asset, error) {
	if isAssetPath(ref) {
		store, err := asset.NewStore(ref, a.registry, a.logger)
		if err != nil {
			return nil, err
		}
		as, err := store.Load()
		if err != nil {
			return nil, err
		}
		if as == nil {
			return nil, fmt.Errorf("%w: %s", ErrPresetNotFound, ref)
		}
		return as, nil
	}

	lib, err := a.Library(ctx)
	if err != nil {
		return nil, err
	}
	as, err := lib.Load(ctx, ref)
	if errors.Is(err, library.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPresetNotFound, ref)
	}
	return as, err
}

// LoadPreset resolves ref and binds a preset to the recreated template.
func (a *App) LoadPreset(ctx context.Context, ref string) (*preset.Preset, error) {
	as, err := a.LoadAsset(ctx, ref)
	if err != nil {
		return nil, err
	}
	if as.Name == "" {
		as.Name = ref
	}
	p, report, err := as.ToPreset(a.registry, a.PresetOptions()...)
	if err != nil {
		return nil, err
	}
	a.warnSkipped(report)
	return p, nil
}

// SaveAsset writes as to an asset file or, for a plain name, to the library.
func (a *App) SaveAsset(ctx context.Context, ref string, as *asset.Asset) error {
	if isAssetPath(ref) {
		store, err := asset.NewStore(ref, a.registry, a.logger)
		if err != nil {
			return err
		}
		return store.Save(as)
	}
	lib, err := a.Library(ctx)
	if err != nil {
		return err
	}
	return lib.Save(ctx, ref, as)
}

// LoadScene reads a scene file.
func (a *App) LoadScene(path string) (*scene.Scene, error) {
	return scene.Load(path, a.registry, a.logger)
}

// Components resolves "object/Type" paths against a scene.
func (a *App) Components(s *scene.Scene, paths []string) ([]any, error) {
	insp := inspect.NewInspector(s, a.registry)
	out := make([]any, 0, len(paths))
	for _, raw := range paths {
		p, err := inspect.ParsePath(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", raw, err)
		}
		c, err := insp.Component(p)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (a *App) warnSkipped(r *transfer.Report) {
	if r == nil || r.OK() {
		return
	}
	for _, s := range r.Skipped {
		fmt.Fprintf(a.stderr, "warning: %s: skipped %s: %v\n", shortName(r.Type), s.Attribute, s.Err)
	}
}

func shortName(full string) string {
	return full[strings.LastIndex(full, ".")+1:]
}

// assetName derives a preset name from an asset file name.
func assetName(path string) string {
	base := filepath.Base(path)
	for _, ext := range []string{asset.ExtYAML, ".preset.yml", asset.ExtCBOR} {
		if strings.HasSuffix(base, ext) {
			return strings.TrimSuffix(base, ext)
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
