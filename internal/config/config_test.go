package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/fileconv/internal/fsys"
	"github.com/dshills/fileconv/internal/logging"
	"github.com/dshills/fileconv/internal/output"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, output.DefaultPanelName, cfg.Output.Panel)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NotNil(t, cfg.Formats)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFS(t *testing.T) {
	memfs := fsys.NewMemFS()
	memfs.AddFile("/fileconv.toml", `
[output]
panel = "problems"

[log]
level = "debug"

[formats.json]
appendix_pattern = '(?i)\.json(?:_([^\.]+))?$'
scope = "source.json.comments"

[formats.plist]
disabled = true
`)

	cfg, err := LoadFS(memfs, "/fileconv.toml")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "problems", cfg.Output.Panel)
	assert.Equal(t, logging.LevelDebug, cfg.LogLevel())
	assert.Equal(t, FormatConfig{
		AppendixPattern: `(?i)\.json(?:_([^\.]+))?$`,
		Scope:           "source.json.comments",
	}, cfg.Formats["json"])
	assert.True(t, cfg.Formats["plist"].Disabled)
}

func TestLoadFS_MissingFile(t *testing.T) {
	cfg, err := LoadFS(fsys.NewMemFS(), "/nope.toml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OSFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fileconv.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"warn\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, logging.LevelWarn, cfg.LogLevel())
	assert.Equal(t, output.DefaultPanelName, cfg.Output.Panel)
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse("settings.toml", []byte("[log]\nlevel = \n"))
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "settings.toml", perr.Path)
	assert.Equal(t, 2, perr.Line)
	assert.Contains(t, perr.Error(), "parse error in settings.toml at line 2")
}

func TestParse_UnknownKey(t *testing.T) {
	_, err := Parse("settings.toml", []byte("[log]\nverbosity = 3\n"))
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.NotNil(t, perr.Unwrap())
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvLogLevel:    "error",
		EnvOutputPanel: "mine",
		EnvDisable:     " .toml, yaml ,,",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	cfg.Formats["yaml"] = FormatConfig{Scope: "source.yml"}
	cfg.ApplyEnv(lookup)

	assert.Equal(t, logging.LevelError, cfg.LogLevel())
	assert.Equal(t, "mine", cfg.Output.Panel)
	assert.True(t, cfg.Formats["toml"].Disabled)
	assert.Equal(t, FormatConfig{Scope: "source.yml", Disabled: true}, cfg.Formats["yaml"])
	assert.Len(t, cfg.Formats, 2)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "chatty"
	cfg.Formats["json"] = FormatConfig{AppendixPattern: "("}
	cfg.Formats["yaml"] = FormatConfig{AppendixPattern: `\.yaml$`}

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), `log.level: unknown level "chatty"`)
	assert.Contains(t, err.Error(), "formats.json.appendix_pattern")
	assert.Contains(t, err.Error(), "formats.yaml.appendix_pattern: no capture group")
	assert.Equal(t, logging.LevelInfo, cfg.LogLevel())
}

func TestParseError_Format(t *testing.T) {
	assert.Equal(t, "parse error in a: m", (&ParseError{Path: "a", Message: "m"}).Error())
	assert.Equal(t, "parse error in a at line 2: m", (&ParseError{Path: "a", Line: 2, Message: "m"}).Error())
	assert.Equal(t, "parse error in a at line 2, column 3: m",
		(&ParseError{Path: "a", Line: 2, Column: 3, Message: "m"}).Error())
}
