// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/symtab/internal/highlight"
	"github.com/xonecas/symtab/internal/output"
	"github.com/xonecas/symtab/internal/symtab"
	"github.com/xonecas/symtab/internal/treesitter"
)

// Config is the root configuration structure.
type Config struct {
	Compiler CompilerConfig `toml:"compiler"`
	Input    InputConfig    `toml:"input"`
	Output   OutputConfig   `toml:"output"`
	Log      LogConfig      `toml:"log"`
}

// CompilerConfig mirrors treesitter.Options.
type CompilerConfig struct {
	Target  string `toml:"target"`
	Module  string `toml:"module"`
	AllowJS bool   `toml:"allow_js"`
	JSX     bool   `toml:"jsx"`
}

// InputConfig holds the globs applied when a directory is given as input.
type InputConfig struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// OutputConfig holds serialization settings.
type OutputConfig struct {
	Path   string `toml:"path"`
	Format string `toml:"format"`
	Layout string `toml:"layout"`
	// Theme is the Chroma theme for the text outline.
	Theme string `toml:"theme"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	opts := treesitter.DefaultOptions()
	return &Config{
		Compiler: CompilerConfig{
			Target: string(opts.Target),
			Module: string(opts.Module),
		},
		Input: InputConfig{
			Include: append([]string(nil), treesitter.DefaultInclude...),
			Exclude: append([]string(nil), treesitter.DefaultExclude...),
		},
		Output: OutputConfig{
			Path:   output.DefaultPath,
			Format: string(output.FormatJSON),
			Layout: string(symtab.LayoutTree),
			Theme:  highlight.DefaultTheme,
		},
		Log: LogConfig{Level: zerolog.LevelInfoValue},
	}
}

// Load reads configuration from a TOML file and applies environment variable
// overrides. An empty path yields the defaults; a named file must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		for _, key := range md.Undecoded() {
			log.Warn().Str("key", key.String()).Str("file", path).Msg("unknown config key")
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if _, err := treesitter.ParseTarget(c.Compiler.Target); err != nil {
		errs = append(errs, fmt.Errorf("compiler.target: %w", err))
	}
	if _, err := treesitter.ParseModule(c.Compiler.Module); err != nil {
		errs = append(errs, fmt.Errorf("compiler.module: %w", err))
	}
	if _, err := output.ParseFormat(c.Output.Format); err != nil {
		errs = append(errs, fmt.Errorf("output.format: %w", err))
	}
	if _, err := symtab.ParseLayout(c.Output.Layout); err != nil {
		errs = append(errs, fmt.Errorf("output.layout: %w", err))
	}
	if c.Output.Path == "" {
		errs = append(errs, errors.New("output.path is required"))
	}
	if c.Output.Format == string(output.FormatSQLite) && c.Output.Path == output.Stdout {
		errs = append(errs, errors.New("output.path: sqlite output needs a file"))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}

// CompilerOptions returns the compiler settings in canonical form.
// Call after Validate.
func (c *Config) CompilerOptions() treesitter.Options {
	target, _ := treesitter.ParseTarget(c.Compiler.Target)
	module, _ := treesitter.ParseModule(c.Compiler.Module)
	return treesitter.Options{
		Target:  target,
		Module:  module,
		AllowJS: c.Compiler.AllowJS,
		JSX:     c.Compiler.JSX,
	}
}

// LogLevel returns the configured zerolog level. Call after Validate.
func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		field *string
	}{
		{"SYMTAB_OUTPUT", &cfg.Output.Path},
		{"SYMTAB_FORMAT", &cfg.Output.Format},
		{"SYMTAB_LAYOUT", &cfg.Output.Layout},
		{"SYMTAB_LOG_LEVEL", &cfg.Log.Level},
	} {
		if v := os.Getenv(setter.env); v != "" {
			*setter.field = v
		}
	}
}

// DataDir returns the path to the symtab config directory (~/.config/symtab).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "symtab"), nil
}

// DefaultPath returns the user config file if one exists, or "".
func DefaultPath() string {
	dir, err := DataDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
