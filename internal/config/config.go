// Package config loads external-tool descriptors. A descriptor names an
// opaque executable and the argument template used to invoke it; the
// harness never needs to understand the tool beyond that.
//
// Descriptor files map tool names to their settings and may be written in
// CUE (JSON is valid CUE) or YAML, chosen by file extension:
//
//	d4: {
//		path:  "/opt/counters/d4.sh"
//		args:  "{INSTANCE} --maxmem {STAREXEC_MAX_MEM}"
//		exact: true
//	}
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Tool describes one external executable: a counter, generator,
// preprocessor, or verifier. Immutable once loaded.
type Tool struct {
	// Name identifies the tool in reports and log-artifact names.
	Name string

	// Path is the executable (often a wrapper script).
	Path string

	// Args is the argument template. Supported placeholders are
	// {INSTANCE}, {STAREXEC_MAX_MEM}, {STAREXEC_WALLCLOCK_LIMIT} and
	// {TMP}; generators additionally use {out_file} and {seed}.
	Args string

	// Exact marks a counter as exact rather than approximate. Only
	// meaningful for counters.
	Exact bool
}

// ConfigError reports a fatal problem with a descriptor file. Tool
// configuration errors abort at startup; there is nothing sensible a
// campaign can do without a valid tool set.
type ConfigError struct {
	Path string
	Msg  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// toolSpec is the on-disk shape of one descriptor.
type toolSpec struct {
	Path  string `json:"path" yaml:"path"`
	Args  string `json:"args" yaml:"args"`
	Exact bool   `json:"exact" yaml:"exact"`
}

// LoadTools reads every descriptor in a file, sorted by name so that tool
// order is stable across runs. An empty tool set is a ConfigError.
func LoadTools(path string) ([]Tool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tool config: %w", err)
	}

	var specs map[string]toolSpec
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &specs); err != nil {
			return nil, &ConfigError{Path: path, Msg: err.Error()}
		}
	default:
		// CUE handles .cue and .json alike.
		if err := decodeCUE(data, path, &specs); err != nil {
			return nil, &ConfigError{Path: path, Msg: err.Error()}
		}
	}

	if len(specs) == 0 {
		return nil, &ConfigError{Path: path, Msg: "no tools defined"}
	}

	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	tools := make([]Tool, 0, len(specs))
	for _, name := range names {
		spec := specs[name]
		if spec.Path == "" {
			return nil, &ConfigError{Path: path, Msg: fmt.Sprintf("tool %q has no executable path", name)}
		}
		tools = append(tools, Tool{
			Name:  name,
			Path:  spec.Path,
			Args:  spec.Args,
			Exact: spec.Exact,
		})
	}
	return tools, nil
}

// LoadTool reads a descriptor file expected to define exactly one tool
// (the verifier pipeline).
func LoadTool(path string) (Tool, error) {
	tools, err := LoadTools(path)
	if err != nil {
		return Tool{}, err
	}
	if len(tools) != 1 {
		return Tool{}, &ConfigError{Path: path, Msg: fmt.Sprintf("expected exactly one tool, found %d", len(tools))}
	}
	return tools[0], nil
}

func decodeCUE(data []byte, path string, out *map[string]toolSpec) error {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return err
	}
	return v.Decode(out)
}
