package treesitter

import (
	"errors"
	"fmt"
	"strings"
)

// Target is the language level the program is compiled for.
type Target string

// Module is the module system the program is compiled for.
type Module string

var targets = []Target{
	"ES3", "ES5", "ES2015", "ES2016", "ES2017", "ES2018",
	"ES2019", "ES2020", "ES2021", "ES2022", "ESNext",
}

var modules = []Module{
	"None", "CommonJS", "AMD", "UMD", "System",
	"ES2015", "ES2020", "ES2022", "ESNext", "Node16", "NodeNext",
}

// Options is the compilation configuration handed to Load.
type Options struct {
	Target  Target
	Module  Module
	AllowJS bool // accept .js/.mjs/.cjs inputs
	JSX     bool // accept .tsx/.jsx inputs
}

// DefaultOptions returns ES5 + CommonJS.
func DefaultOptions() Options {
	return Options{Target: "ES5", Module: "CommonJS"}
}

// ParseTarget matches s case-insensitively against the known targets.
func ParseTarget(s string) (Target, error) {
	for _, t := range targets {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown target %q", s)
}

// ParseModule matches s case-insensitively against the known module kinds.
func ParseModule(s string) (Module, error) {
	for _, m := range modules {
		if strings.EqualFold(string(m), s) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown module %q", s)
}

// Validate returns an error if the options name an unknown target or module.
func (o Options) Validate() error {
	var errs []error
	if _, err := ParseTarget(string(o.Target)); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseModule(string(o.Module)); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
