package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useTempConfigDir points the CLI config at a fresh directory.
func useTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	configDirOverride = dir
	t.Cleanup(func() { configDirOverride = "" })
	t.Setenv("MEDALLION_HOST", "")
	t.Setenv("MEDALLION_OUTPUT", "")
	return dir
}

func TestLoadUserConfig_Missing(t *testing.T) {
	useTempConfigDir(t)
	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.CurrentProfile)
	assert.Empty(t, cfg.Profiles)
	assert.Equal(t, Profile{}, cfg.ActiveProfile())
}

func TestSaveAndLoadUserConfig(t *testing.T) {
	dir := useTempConfigDir(t)
	cfg := &UserConfig{
		CurrentProfile: "prod",
		Profiles:       map[string]Profile{"prod": {Host: "https://lake.example", Output: "json"}},
	}
	require.NoError(t, SaveUserConfig(cfg))

	info, err := os.Stat(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadUserConfig_Invalid(t *testing.T) {
	dir := useTempConfigDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("profiles: [nope"), 0o600))
	_, err := LoadUserConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestConfigCommands(t *testing.T) {
	useTempConfigDir(t)

	_, err := runCLI(t, "config", "set-profile", "local", "--server", "http://127.0.0.1:9000", "--format", "json")
	require.NoError(t, err)
	_, err = runCLI(t, "config", "use-profile", "local")
	require.NoError(t, err)

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.CurrentProfile)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.ActiveProfile().Host)

	out, err := runCLI(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"current-profile"`, "profile output json applies to show")

	_, err = runCLI(t, "config", "use-profile", "missing")
	assert.Error(t, err)
	_, err = runCLI(t, "config", "set-profile", "bad", "--format", "xml")
	assert.Error(t, err)
}

func TestResolvePrecedence(t *testing.T) {
	useTempConfigDir(t)
	require.NoError(t, SaveUserConfig(&UserConfig{
		CurrentProfile: "default",
		Profiles:       map[string]Profile{"default": {Host: "http://profile:1", Output: "csv"}},
	}))

	tests := []struct {
		name       string
		env        map[string]string
		args       []string
		wantHost   string
		wantOutput string
	}{
		{"profile", nil, nil, "http://profile:1", "csv"},
		{"env over profile", map[string]string{"MEDALLION_HOST": "http://env:2", "MEDALLION_OUTPUT": "json"}, nil, "http://env:2", "json"},
		{"flag over env", map[string]string{"MEDALLION_HOST": "http://env:2"}, []string{"--host", "http://flag:3", "-o", "TABLE"}, "http://flag:3", "table"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			root := newRootCmd()
			root.SetArgs(append(tt.args, "version"))
			root.SetOut(&discard{})
			require.NoError(t, root.Execute())
			host, _ := root.PersistentFlags().GetString("host")
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantOutput, getOutputFormat(root))
		})
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
