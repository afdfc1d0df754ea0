package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("CFG_TEST_SET", "from-env")
	os.Unsetenv("CFG_TEST_UNSET")

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"env wins over default", "port: ${CFG_TEST_SET:fallback}", "port: from-env"},
		{"default used when unset", "port: ${CFG_TEST_UNSET:8000}", "port: 8000"},
		{"empty default", "key: ${CFG_TEST_UNSET:}", "key: "},
		{"no default keeps placeholder", "key: ${CFG_TEST_UNSET}", "key: ${CFG_TEST_UNSET}"},
		{"plain text untouched", "name: aidanna", "name: aidanna"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, expandEnv(tc.in))
		})
	}
}

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LLM_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "aidanna-learn-api", cfg.App.Name)
	assert.Equal(t, 8000, cfg.Server.HTTP.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.False(t, cfg.LLM.Configured())
	assert.True(t, cfg.Generation.IncludeClosingNote)
	assert.Equal(t, []string{"*"}, cfg.Security.CORS.AllowedOrigins)
	assert.Equal(t, "/metrics", cfg.Observability.Metrics.Path)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9001")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.HTTP.Port)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.True(t, cfg.LLM.Configured())
}

func TestLoadConfigFileWithPlaceholders(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))

	content := `
app:
  name: placeholder-test
llm:
  model: ${CFG_TEST_MODEL:gpt-4o}
generation:
  include_closing_note: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "config.yaml"), []byte(content), 0o644))

	t.Chdir(dir)
	os.Unsetenv("CFG_TEST_MODEL")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "placeholder-test", cfg.App.Name)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.False(t, cfg.Generation.IncludeClosingNote)
	// 文件未覆盖的键仍来自默认值
	assert.Equal(t, 8000, cfg.Server.HTTP.Port)
}
