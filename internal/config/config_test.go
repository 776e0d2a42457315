package config

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every config location at empty temp dirs.
func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home = t.TempDir()
	work = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	for _, k := range []string{"TADA_BASE_URL", "TADA_TIMEOUT", "TADA_THEME", "TADA_OUTPUT", "TADA_GROUP",
		"TADA_LOG_LEVEL", "TADA_LOG_FORMAT", "TADA_LOG_FILE", "TADA_OTLP_ENDPOINT", "NO_COLOR", "TADA_FORCE_COLOR"} {
		t.Setenv(k, "")
	}
	t.Chdir(work)
	return home, work
}

func load(t *testing.T, args ...string) (*Config, *flag.FlagSet, error) {
	t.Helper()
	fs := flag.NewFlagSet("tada", flag.ContinueOnError)
	cfg, err := Load(fs, args)
	return cfg, fs, err
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, fs, err := load(t, "ls")
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, "classic", cfg.Theme)
	assert.Equal(t, "table", cfg.Output)
	assert.Equal(t, SourceDefault, cfg.Source("base_url"))
	assert.Equal(t, []string{"ls"}, fs.Args())
}

func TestLoad_Precedence(t *testing.T) {
	home, work := isolate(t)

	userDir := filepath.Join(home, ".tada")
	require.NoError(t, os.MkdirAll(userDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "tada.toml"),
		[]byte("base_url = \"http://user:1/\"\ntheme = \"neon\"\ngroup = true\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(work, "tada.toml"),
		[]byte("base_url = \"http://project:2/\"\n"), 0o644))
	t.Setenv("TADA_THEME", "mono")

	cfg, _, err := load(t, "-output", "json", "ls")
	require.NoError(t, err)

	assert.Equal(t, "http://project:2/", cfg.BaseURL)
	assert.Equal(t, SourceProjFile, cfg.Source("base_url"))
	assert.Equal(t, "mono", cfg.Theme)
	assert.Equal(t, SourceEnv, cfg.Source("theme"))
	assert.True(t, cfg.Group)
	assert.Equal(t, SourceUserFile, cfg.Source("group"))
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, SourceFlag, cfg.Source("output"))
}

func TestLoad_FlagBeatsEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TADA_BASE_URL", "http://env:3/")

	cfg, _, err := load(t, "-base-url", "http://flag:4/")
	require.NoError(t, err)

	assert.Equal(t, "http://flag:4/", cfg.BaseURL)
	assert.Equal(t, SourceFlag, cfg.Source("base_url"))
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	_, work := isolate(t)
	p := filepath.Join(work, "other.toml")
	require.NoError(t, os.WriteFile(p, []byte("timeout = \"0s\"\n"), 0o644))

	cfg, _, err := load(t, "-config", p)
	require.NoError(t, err)

	assert.Zero(t, cfg.HTTPTimeout())
	assert.Equal(t, SourceFile, cfg.Source("timeout"))
}

func TestLoad_NoColor(t *testing.T) {
	isolate(t)
	t.Setenv("NO_COLOR", "1")

	cfg, _, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, "never", cfg.Color)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad url", []string{"-base-url", "nope"}, "base_url"},
		{"bad theme", []string{"-theme", "pink"}, "theme"},
		{"bad output", []string{"-output", "xml"}, "output"},
		{"bad timeout", []string{"-timeout", "soon"}, "timeout"},
		{"negative timeout", []string{"-timeout", "-1s"}, "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, _, err := load(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	_, work := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(work, ".tada.toml"), []byte("colour = \"never\"\n"), 0o644))

	_, _, err := load(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestWriteTOML(t *testing.T) {
	isolate(t)
	cfg, _, err := load(t, "-theme", "neon")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, cfg.WriteTOML(&buf))

	out := buf.String()
	assert.Contains(t, out, `base_url = "http://127.0.0.1:8000/"`)
	assert.Contains(t, out, `theme = "neon"`)
	assert.Contains(t, out, "# theme          flag")
	assert.NotContains(t, out, "sources =")
}
