package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/benchrunner/internal/env"
	"github.com/mwiater/benchrunner/internal/harness"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	v, err := Load("")
	require.NoError(t, err)
	s, err := Decode(v)
	require.NoError(t, err)

	assert.Equal(t, ".", s.Path)
	assert.Equal(t, "plain", s.Progress)
	assert.Equal(t, 1, s.Parallel)
	assert.Equal(t, harness.DefaultTimeout, s.Timeout)
	assert.Equal(t, harness.DefaultRetryLimit, s.RetryLimit)
	assert.Equal(t, env.DefaultProviders, s.Env)
	assert.Empty(t, s.Reports)
	assert.Empty(t, s.ConfigFile)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "benchrunner.yaml", `
path: bench
progress: dots
parallel: 2
timeout: 5s
retry_limit: 3
reports: [aggregate]
env: [host, golang]
`)
	t.Setenv("BENCHRUNNER_PARALLEL", "4")
	t.Setenv("BENCHRUNNER_STOP_ON_ERROR", "true")

	v, err := Load("")
	require.NoError(t, err)
	s, err := Decode(v)
	require.NoError(t, err)

	assert.Equal(t, "bench", s.Path)
	assert.Equal(t, "dots", s.Progress)
	assert.Equal(t, 4, s.Parallel)
	assert.True(t, s.StopOnError)
	assert.Equal(t, 5*time.Second, s.Timeout)
	assert.Equal(t, 3, s.RetryLimit)
	assert.Equal(t, []string{"aggregate"}, s.Reports)
	assert.Equal(t, []string{"host", "golang"}, s.Env)
	assert.Contains(t, s.ConfigFile, "benchrunner.yaml")
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(t.TempDir())
	path := writeFile(t, dir, "custom.yaml", "context: nightly\n")

	v, err := Load(path)
	require.NoError(t, err)
	s, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, "nightly", s.Context)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, ".env", "BENCHRUNNER_CONTEXT=from-dotenv\n")
	t.Cleanup(func() { os.Unsetenv("BENCHRUNNER_CONTEXT") })

	v, err := Load("")
	require.NoError(t, err)
	s, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", s.Context)
}

func TestDecode_Invalid(t *testing.T) {
	cases := map[string]string{
		"progress": "progress: fancy\n",
		"parallel": "parallel: 0\n",
		"timeout":  "timeout: 0s\n",
		"report":   "reports: [pie]\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(t.TempDir())
			v, err := Load(writeFile(t, dir, "c.yaml", content))
			require.NoError(t, err)
			_, err = Decode(v)
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, false).Info("hidden")
	NewLogger(&buf, false).Warn("shown")
	NewLogger(&buf, true).Debug("debug shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, `msg="debug shown"`)
}
