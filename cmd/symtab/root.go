package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/xonecas/symtab/internal/config"
	"github.com/xonecas/symtab/internal/extract"
	"github.com/xonecas/symtab/internal/output"
	"github.com/xonecas/symtab/internal/symtab"
)

type buildFlags struct {
	config   string
	output   string
	format   string
	layout   string
	theme    string
	target   string
	module   string
	logLevel string
	allowJS  bool
	jsx      bool
	color    bool
	include  []string
	exclude  []string
}

func newRootCmd() *cobra.Command {
	var f buildFlags

	cmd := &cobra.Command{
		Use:   "symtab [files or directories...]",
		Short: "Build a symbol table for TypeScript sources",
		Long: `symtab parses the given TypeScript files, walks every declaration and
writes a symbol table of functions, classes, variables and parameters
with their inferred types.

Examples:
  symtab src/index.ts                   # write results/symbol_table.json
  symtab src -o - --format text         # print an outline of a directory
  symtab a.ts b.ts --layout flat        # scope-keyed mapping
  symtab src --format sqlite -o st.db   # append a build to a SQLite store`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("log-level") {
				return nil
			}
			level, err := zerolog.ParseLevel(f.logLevel)
			if err != nil {
				return err
			}
			zerolog.SetGlobalLevel(level)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &f)
			if err != nil {
				return err
			}
			return runBuild(cmd.Context(), cfg, args, f.color)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.config, "config", "", "TOML config file (default ~/.config/symtab/config.toml when present)")
	fl.StringVarP(&f.output, "output", "o", "", "output path, - for stdout")
	fl.StringVar(&f.format, "format", "", "output format: json, yaml, text or sqlite")
	fl.StringVar(&f.layout, "layout", "", "document layout: tree or flat")
	fl.StringVar(&f.theme, "theme", "", "Chroma theme for the text outline")
	fl.StringVar(&f.target, "target", "", "compiler target (ES3..ESNext)")
	fl.StringVar(&f.module, "module", "", "module system (CommonJS, ESNext, NodeNext, ...)")
	fl.BoolVar(&f.allowJS, "allow-js", false, "accept JavaScript inputs")
	fl.BoolVar(&f.jsx, "jsx", false, "accept .tsx and .jsx inputs")
	fl.BoolVar(&f.color, "color", false, "style the text outline")
	fl.StringSliceVar(&f.include, "include", nil, "globs selecting files inside directory inputs")
	fl.StringSliceVar(&f.exclude, "exclude", nil, "globs excluded inside directory inputs")
	cmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(newDiffCmd())
	return cmd
}

// loadConfig reads the config file and applies flags set on the command line.
func loadConfig(cmd *cobra.Command, f *buildFlags) (*config.Config, error) {
	path := f.config
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	fl := cmd.Flags()
	for _, o := range []struct {
		flag string
		dst  *string
		val  string
	}{
		{"output", &cfg.Output.Path, f.output},
		{"format", &cfg.Output.Format, f.format},
		{"layout", &cfg.Output.Layout, f.layout},
		{"theme", &cfg.Output.Theme, f.theme},
		{"target", &cfg.Compiler.Target, f.target},
		{"module", &cfg.Compiler.Module, f.module},
		{"log-level", &cfg.Log.Level, f.logLevel},
	} {
		if fl.Changed(o.flag) {
			*o.dst = o.val
		}
	}
	if fl.Changed("allow-js") {
		cfg.Compiler.AllowJS = f.allowJS
	}
	if fl.Changed("jsx") {
		cfg.Compiler.JSX = f.jsx
	}
	if fl.Changed("include") {
		cfg.Input.Include = f.include
	}
	if fl.Changed("exclude") {
		cfg.Input.Exclude = f.exclude
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(cfg.LogLevel())
	return cfg, nil
}

func runBuild(ctx context.Context, cfg *config.Config, inputs []string, color bool) error {
	layout, err := symtab.ParseLayout(cfg.Output.Layout)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	res, err := extract.Run(ctx, extract.Request{
		Inputs:   inputs,
		Include:  cfg.Input.Include,
		Exclude:  cfg.Input.Exclude,
		Compiler: cfg.CompilerOptions(),
		Layout:   layout,
	})
	if err != nil {
		return err
	}

	return output.Write(ctx, cfg.Output.Path, res.Document, output.Options{
		Format: format,
		Theme:  cfg.Output.Theme,
		Color:  color,
	})
}
