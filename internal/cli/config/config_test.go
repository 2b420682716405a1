package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.BoolP("verbose", "v", false, "")
	flags.StringP("output", "o", "", "")
	flags.String("recipe", "", "")
	flags.String("named", "", "")
	flags.Bool("trim-rest", true, "")
	flags.Bool("keep-going", false, "")
	return flags
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	defer ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultNamed, cfg.Named)
	assert.Equal(t, DefaultHistoryFile, cfg.HistoryFile)
	assert.True(t, cfg.TrimRest)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	defer ResetConfig()
	path := writeConfig(t, `
output: json
named: pair
trim_rest: false
recipes:
  pair: "a=word ws b=word"
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, "pair", cfg.Named)
	assert.False(t, cfg.TrimRest)
	assert.Equal(t, map[string]string{"pair": "a=word ws b=word"}, cfg.Recipes)
	assert.Equal(t, path, GetConfigFileUsed())

	rc, err := cfg.ActiveRecipe()
	require.NoError(t, err)
	assert.Equal(t, "a=word ws b=word", rc.String())
	assert.False(t, rc.TrimRest)
}

func TestLoadConfig_DiscoversFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "strscan.yml"), []byte("output: yaml\n"), 0o600))
	t.Chdir(dir)
	defer ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Output)
	assert.Equal(t, "strscan.yml", GetConfigFileUsed())
}

func TestLoadConfig_Precedence(t *testing.T) {
	defer ResetConfig()
	path := writeConfig(t, "output: json\nverbose: false\nrecipe: word\n")

	t.Setenv("STRSCAN_OUTPUT", "yaml")
	t.Setenv("STRSCAN_VERBOSE", "true")

	t.Run("env overrides file", func(t *testing.T) {
		cfg, err := LoadConfig(path, newFlags())
		require.NoError(t, err)
		assert.Equal(t, "yaml", cfg.Output)
		assert.True(t, cfg.Verbose)
		assert.Equal(t, "word", cfg.Recipe)
	})

	t.Run("flags override env", func(t *testing.T) {
		flags := newFlags()
		require.NoError(t, flags.Parse([]string{"-o", "table", "--recipe", "n=int", "--keep-going"}))

		cfg, err := LoadConfig(path, flags)
		require.NoError(t, err)
		assert.Equal(t, "table", cfg.Output)
		assert.Equal(t, "n=int", cfg.Recipe)
		assert.True(t, cfg.KeepGoing)
		assert.True(t, cfg.TrimRest, "unset flags do not override defaults")
	})
}

func TestLoadConfig_Errors(t *testing.T) {
	defer ResetConfig()

	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"unknown output", "output: xml\n", `unknown output format "xml"`},
		{"bad inline recipe", "recipe: \"lit\"\n", "needs an argument"},
		{"bad named recipe", "recipes:\n  broken: \"nope\"\n", `recipe "broken"`},
		{"unknown named recipe", "named: missing\n", `unknown recipe "missing"`},
		{"invalid yaml", "output: [\n", "error reading config file"},
		{"misspelled key", "outptu: json\n", "invalid keys: outptu"},
		{"unknown color", "color: rainbow\n", `unknown color mode "rainbow"`},
		{"wrong type", "keep_going:\n  a: 1\n", "unable to decode config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
		require.Error(t, err)
	})
}

func TestLoadConfig_IgnoresUnrelatedEnvAndFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	defer ResetConfig()
	t.Setenv("STRSCAN_NOT_A_KEY", "1")
	t.Setenv("STRSCAN_DB", "runs.db")
	t.Setenv("STRSCAN_KEEP_GOING", "true")

	flags := newFlags()
	flags.String("config", "", "")
	flags.Bool("follow", false, "")
	require.NoError(t, flags.Parse([]string{"--config", "x.yaml", "--follow"}))

	// --config and --follow are not config keys and must not trip ErrorUnused.
	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "runs.db", cfg.DB)
	assert.True(t, cfg.KeepGoing, "env strings are decoded into bools")
	assert.Equal(t, DefaultColor, cfg.Color)
}

func TestActiveRecipe(t *testing.T) {
	cfg := DefaultConfig()

	rc, err := cfg.ActiveRecipe()
	require.NoError(t, err)
	assert.Equal(t, "lit:HTTP/ version=word code=u16 reason=rest", rc.String())
	assert.True(t, rc.TrimRest)

	cfg.Recipe = "x=word"
	rc, err = cfg.ActiveRecipe()
	require.NoError(t, err)
	assert.Equal(t, "x=word", rc.String(), "inline recipe wins over named")
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer

	quiet := NewLogger(&buf, false)
	quiet.Debug("hidden")
	quiet.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	ctx := WithLogger(context.Background(), NewLogger(&buf, true))
	GetLogger(ctx).Debug("scanning", "line", 1)
	assert.Contains(t, buf.String(), "msg=scanning line=1")

	assert.NotNil(t, GetLogger(context.Background()))
}

func TestKeys(t *testing.T) {
	ks := Keys()
	assert.True(t, slices.IsSorted(ks))
	assert.Contains(t, ks, "keep_going")
	for _, k := range ks {
		assert.NotEmpty(t, KeyDoc(k), "key %s needs a description", k)
	}
	assert.Empty(t, KeyDoc("follow"))

	key, ok := FlagKey("trim-rest")
	assert.True(t, ok)
	assert.Equal(t, "trim_rest", key)

	_, ok = FlagKey("config")
	assert.False(t, ok)
}
