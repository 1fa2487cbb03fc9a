package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/runtime-presets/presets-go/pkg/asset"
)

const (
	configFileName = "presetctl"
	configFileType = "yaml"
	envPrefix      = "PRESETCTL"

	cfgKeyLogLevel     = "log_level"
	cfgKeyFormat       = "format"
	cfgKeyLibrary      = "library"
	cfgKeyEventLog     = "event_log"
	cfgKeyDeclaredOnly = "declared_only"
	cfgKeyDeepCopy     = "deep_copy"

	defaultLogLevel = "warn"
	defaultFormat   = "cbor"
	defaultLibrary  = "presets.db"
)

// flagKeys binds persistent flags to config keys.
var flagKeys = map[string]string{
	"log-level":     cfgKeyLogLevel,
	"format":        cfgKeyFormat,
	"library":       cfgKeyLibrary,
	"event-log":     cfgKeyEventLog,
	"declared-only": cfgKeyDeclaredOnly,
	"deep-copy":     cfgKeyDeepCopy,
}

// Config holds the resolved presetctl settings.
type Config struct {
	LogLevel     slog.Level
	Format       asset.Format
	Library      string
	EventLog     string
	DeclaredOnly bool
	DeepCopy     bool

	// File is the config file that was read, if any.
	File string
}

// loadConfig reads presetctl.yaml from path, or from the working directory
// and the user config directory when path is empty. A missing config file
// is not an error unless path names it explicitly. Flags set on cmd take
// precedence over environment variables, which take precedence over the file.
func loadConfig(path string, cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyFormat, defaultFormat)
	v.SetDefault(cfgKeyLibrary, defaultLibrary)
	v.SetDefault(cfgKeyEventLog, "")
	v.SetDefault(cfgKeyDeclaredOnly, false)
	v.SetDefault(cfgKeyDeepCopy, false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, configFileName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if cmd != nil {
		for name, key := range flagKeys {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		Library:      v.GetString(cfgKeyLibrary),
		EventLog:     v.GetString(cfgKeyEventLog),
		DeclaredOnly: v.GetBool(cfgKeyDeclaredOnly),
		DeepCopy:     v.GetBool(cfgKeyDeepCopy),
		File:         v.ConfigFileUsed(),
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString(cfgKeyLogLevel))); err != nil {
		return nil, fmt.Errorf("%s: %w", cfgKeyLogLevel, err)
	}
	f, err := asset.ParseFormat(v.GetString(cfgKeyFormat))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfgKeyFormat, err)
	}
	cfg.Format = f
	return cfg, nil
}

// setupLogging installs a text slog handler at the configured level as
// the default logger.
func setupLogging(level slog.Level, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
