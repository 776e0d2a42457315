// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file ($XDG_CONFIG_HOME/tada/tada.toml, ~/.config/tada/tada.toml or ~/.tada/tada.toml)
// 3. Project config file (tada.toml or .tada.toml in the working directory)
// 4. An explicit file given with -config
// 5. Environment variables (TADA_*, NO_COLOR)
// 6. CLI flags
//
// Each level overrides the previous one.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Makepad-fr/tada/internal/validation"
)

// Source records where a configuration value came from.
type Source string

const (
	SourceDefault  Source = "default"
	SourceUserFile Source = "user file"
	SourceProjFile Source = "project file"
	SourceFile     Source = "config file"
	SourceEnv      Source = "environment"
	SourceFlag     Source = "flag"
)

// Default values.
const (
	DefaultBaseURL   = "http://127.0.0.1:8000/"
	DefaultTimeout   = "30s"
	DefaultTheme     = "classic"
	DefaultOutput    = "table"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
	DefaultColor     = "auto"
)

// Config holds the full configuration for tada.
type Config struct {
	// Remote store
	BaseURL string `toml:"base_url" validate:"required,url"`
	Timeout string `toml:"timeout" validate:"required"`

	// Rendering
	Theme  string `toml:"theme" validate:"oneof=classic neon mono"`
	Output string `toml:"output" validate:"oneof=table json yaml"`
	Group  bool   `toml:"group"`
	Color  string `toml:"color" validate:"oneof=auto always never"`

	// Logging
	LogLevel  string `toml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat string `toml:"log_format" validate:"oneof=text json logfmt"`
	LogFile   string `toml:"log_file"`

	// Tracing; empty disables export.
	OTLPEndpoint string `toml:"otlp_endpoint"`

	timeout time.Duration
	sources map[string]Source
}

// Keys lists the configurable keys in display order.
func Keys() []string {
	return []string{
		"base_url", "timeout", "theme", "output", "group", "color",
		"log_level", "log_format", "log_file", "otlp_endpoint",
	}
}

// Default returns a config holding only built-in defaults.
func Default() *Config {
	cfg := &Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		Theme:     DefaultTheme,
		Output:    DefaultOutput,
		Color:     DefaultColor,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		sources:   map[string]Source{},
	}
	for _, k := range Keys() {
		cfg.sources[k] = SourceDefault
	}
	return cfg
}

// HTTPTimeout is the parsed timeout; zero means none.
func (c *Config) HTTPTimeout() time.Duration { return c.timeout }

// Source reports where key was last set.
func (c *Config) Source(key string) Source {
	if s, ok := c.sources[key]; ok {
		return s
	}
	return SourceDefault
}

// Load builds the effective configuration. fs receives the root flags and
// is parsed with args; remaining positional args stay in fs.Args().
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := Default()

	if fs == nil {
		fs = flag.NewFlagSet("tada", flag.ContinueOnError)
	}
	flags := bindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if p := findUserConfigFile(); p != "" {
		if err := cfg.loadFile(p, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", p, err)
		}
	}
	if p := findProjectConfigFile(); p != "" {
		if err := cfg.loadFile(p, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", p, err)
		}
	}
	if *flags.configFile != "" {
		if err := cfg.loadFile(expandPath(*flags.configFile), SourceFile); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", *flags.configFile, err)
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	flags.apply(cfg, fs)

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile decodes path over cfg and marks every key the file defines.
func (c *Config) loadFile(path string, src Source) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return err
	}
	for _, k := range Keys() {
		if md.IsDefined(k) {
			c.sources[k] = src
		}
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return fmt.Errorf("unknown key %q", undec[0].String())
	}
	return nil
}

func (c *Config) loadEnv() error {
	set := func(key, env string, dst *string) {
		if v, ok := os.LookupEnv(env); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
			c.sources[key] = SourceEnv
		}
	}
	set("base_url", "TADA_BASE_URL", &c.BaseURL)
	set("timeout", "TADA_TIMEOUT", &c.Timeout)
	set("theme", "TADA_THEME", &c.Theme)
	set("output", "TADA_OUTPUT", &c.Output)
	set("log_level", "TADA_LOG_LEVEL", &c.LogLevel)
	set("log_format", "TADA_LOG_FORMAT", &c.LogFormat)
	set("log_file", "TADA_LOG_FILE", &c.LogFile)
	set("otlp_endpoint", "TADA_OTLP_ENDPOINT", &c.OTLPEndpoint)

	if v, ok := os.LookupEnv("TADA_GROUP"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TADA_GROUP: %w", err)
		}
		c.Group = b
		c.sources["group"] = SourceEnv
	}

	// https://no-color.org: any non-empty value disables color
	if v := os.Getenv("NO_COLOR"); v != "" {
		c.Color = "never"
		c.sources["color"] = SourceEnv
	} else if v := os.Getenv("TADA_FORCE_COLOR"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Color = "always"
			c.sources["color"] = SourceEnv
		}
	}
	return nil
}

// finalize normalizes values and validates the result.
func (c *Config) finalize() error {
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	c.Output = strings.ToLower(strings.TrimSpace(c.Output))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.LogFile = expandPath(c.LogFile)

	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid config: timeout: %w", err)
	}
	if d < 0 {
		return errors.New("invalid config: timeout must not be negative")
	}
	c.timeout = d
	return nil
}

// WriteTOML prints the effective configuration followed by the source of
// each key.
func (c *Config) WriteTOML(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "\n# sources"); err != nil {
		return err
	}
	for _, k := range Keys() {
		if _, err := fmt.Fprintf(w, "# %-14s %s\n", k, c.Source(k)); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------
// Flags
// ---------------------------------------------------

type rootFlags struct {
	configFile   *string
	baseURL      *string
	timeout      *string
	theme        *string
	output       *string
	group        *bool
	color        *string
	logLevel     *string
	logFormat    *string
	logFile      *string
	otlpEndpoint *string
}

func bindFlags(fs *flag.FlagSet) *rootFlags {
	return &rootFlags{
		configFile:   fs.String("config", "", "path to an extra tada.toml"),
		baseURL:      fs.String("base-url", "", "todo store base URL (default "+DefaultBaseURL+")"),
		timeout:      fs.String("timeout", "", "HTTP timeout, 0 for none (default "+DefaultTimeout+")"),
		theme:        fs.String("theme", "", "color theme: classic, neon, mono"),
		output:       fs.String("output", "", "list output: table, json, yaml"),
		group:        fs.Bool("group", false, "group output by status"),
		color:        fs.String("color", "", "color: auto, always, never"),
		logLevel:     fs.String("log-level", "", "log level: debug, info, warn, error"),
		logFormat:    fs.String("log-format", "", "log format: text, json, logfmt"),
		logFile:      fs.String("log-file", "", "write logs to this file"),
		otlpEndpoint: fs.String("otlp-endpoint", "", "OTLP/gRPC endpoint for traces"),
	}
}

// apply copies only the flags the user actually passed.
func (f *rootFlags) apply(c *Config, fs *flag.FlagSet) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "base-url":
			c.BaseURL, c.sources["base_url"] = *f.baseURL, SourceFlag
		case "timeout":
			c.Timeout, c.sources["timeout"] = *f.timeout, SourceFlag
		case "theme":
			c.Theme, c.sources["theme"] = *f.theme, SourceFlag
		case "output":
			c.Output, c.sources["output"] = *f.output, SourceFlag
		case "group":
			c.Group, c.sources["group"] = *f.group, SourceFlag
		case "color":
			c.Color, c.sources["color"] = *f.color, SourceFlag
		case "log-level":
			c.LogLevel, c.sources["log_level"] = *f.logLevel, SourceFlag
		case "log-format":
			c.LogFormat, c.sources["log_format"] = *f.logFormat, SourceFlag
		case "log-file":
			c.LogFile, c.sources["log_file"] = *f.logFile, SourceFlag
		case "otlp-endpoint":
			c.OTLPEndpoint, c.sources["otlp_endpoint"] = *f.otlpEndpoint, SourceFlag
		}
	})
}

// ---------------------------------------------------
// Paths
// ---------------------------------------------------

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	for _, name := range []string{"tada.toml", ".tada.toml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// findUserConfigFile prefers the XDG location and falls back to ~/.tada,
// where credentials also live.
func findUserConfigFile() string {
	var candidates []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, "tada", "tada.toml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".config", "tada", "tada.toml"),
			filepath.Join(home, ".tada", "tada.toml"),
		)
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// expandPath expands ~ and environment variables.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	expanded := os.ExpandEnv(p)
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return expanded
		}
		return filepath.Join(home, strings.TrimPrefix(expanded[1:], "/"))
	}
	return expanded
}
