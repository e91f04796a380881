// Package config loads the settings of the loader registry from a TOML
// file, with environment variable overrides.
//
// A settings file looks like:
//
//	[output]
//	panel = "aaa_package_dev"
//
//	[log]
//	level = "info"
//
//	[formats.json]
//	appendix_pattern = '(?i)\.json(?:-([^\.]+))?$'
//	scope = "source.json"
//
//	[formats.plist]
//	disabled = true
//
// Format tables are keyed by canonical extension.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/fileconv/internal/fsys"
	"github.com/dshills/fileconv/internal/logging"
	"github.com/dshills/fileconv/internal/output"
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel    = "FILECONV_LOG_LEVEL"
	EnvOutputPanel = "FILECONV_OUTPUT_PANEL"
	// EnvDisable is a comma separated list of extensions to disable.
	EnvDisable = "FILECONV_DISABLE"
)

// Config holds all settings.
type Config struct {
	Output  OutputConfig            `toml:"output"`
	Log     LogConfig               `toml:"log"`
	Formats map[string]FormatConfig `toml:"formats"`
}

// OutputConfig configures the diagnostics panel.
type OutputConfig struct {
	// Panel is the name of the panel loaders acquire.
	Panel string `toml:"panel"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// FormatConfig overrides parts of a built-in format.
type FormatConfig struct {
	AppendixPattern string `toml:"appendix_pattern"`
	Scope           string `toml:"scope"`
	Disabled        bool   `toml:"disabled"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Output:  OutputConfig{Panel: output.DefaultPanelName},
		Log:     LogConfig{Level: "info"},
		Formats: make(map[string]FormatConfig),
	}
}

// Load reads settings from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	return LoadFS(fsys.Default(), path)
}

// LoadFS reads settings from path through files.
func LoadFS(files fsys.FileSystem, path string) (*Config, error) {
	data, err := files.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes settings from data. Keys not known to Config are rejected.
// The source is used in error messages.
func Parse(source string, data []byte) (*Config, error) {
	cfg := Default()

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			perr.Line, perr.Column = decodeErr.Position()
		}
		return nil, perr
	}

	if cfg.Formats == nil {
		cfg.Formats = make(map[string]FormatConfig)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables. lookup is
// usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvOutputPanel); ok && v != "" {
		c.Output.Panel = v
	}
	if v, ok := lookup(EnvDisable); ok {
		if c.Formats == nil {
			c.Formats = make(map[string]FormatConfig)
		}
		for _, ext := range strings.Split(v, ",") {
			ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
			if ext == "" {
				continue
			}
			fc := c.Formats[ext]
			fc.Disabled = true
			c.Formats[ext] = fc
		}
	}
}

// Validate checks that the log level is known and that every pattern
// compiles. All problems are reported together.
func (c *Config) Validate() error {
	var problems []string

	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		problems = append(problems, fmt.Sprintf("log.level: unknown level %q", c.Log.Level))
	}

	exts := make([]string, 0, len(c.Formats))
	for ext := range c.Formats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	for _, ext := range exts {
		fc := c.Formats[ext]
		if fc.AppendixPattern == "" {
			continue
		}
		re, err := regexp.Compile(fc.AppendixPattern)
		if err != nil {
			problems = append(problems, fmt.Sprintf("formats.%s.appendix_pattern: %v", ext, err))
			continue
		}
		if re.NumSubexp() < 1 {
			problems = append(problems, fmt.Sprintf("formats.%s.appendix_pattern: no capture group", ext))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// LogLevel returns the configured level, LevelInfo when unknown.
func (c *Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Log.Level)
	return level
}

// NewLogger returns a logger at the configured level writing to w, or to
// stderr when w is nil.
func (c *Config) NewLogger(w io.Writer) *logging.Logger {
	lc := logging.DefaultConfig()
	lc.Level = c.LogLevel()
	if w != nil {
		lc.Output = w
	}
	return logging.New(lc)
}
