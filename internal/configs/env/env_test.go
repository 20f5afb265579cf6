package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("CODESIM_TEST_STR", "value")

	assert.Equal(t, "value", GetEnv("CODESIM_TEST_STR", "default"))
	assert.Equal(t, "default", GetEnv("CODESIM_TEST_MISSING", "default"))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("CODESIM_TEST_INT", "42")
	t.Setenv("CODESIM_TEST_BAD_INT", "forty-two")

	assert.Equal(t, 42, GetEnvInt("CODESIM_TEST_INT", 1))
	assert.Equal(t, 1, GetEnvInt("CODESIM_TEST_BAD_INT", 1))
	assert.Equal(t, 7, GetEnvInt("CODESIM_TEST_MISSING", 7))
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("CODESIM_TEST_FLOAT", "2.5")

	assert.InDelta(t, 2.5, GetEnvFloat("CODESIM_TEST_FLOAT", 0), 1e-9)
	assert.InDelta(t, 1.5, GetEnvFloat("CODESIM_TEST_MISSING", 1.5), 1e-9)
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("CODESIM_TEST_BOOL", "true")
	t.Setenv("CODESIM_TEST_BAD_BOOL", "maybe")

	assert.True(t, GetEnvBool("CODESIM_TEST_BOOL", false))
	assert.False(t, GetEnvBool("CODESIM_TEST_BAD_BOOL", false))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("CODESIM_TEST_DURATION", "90s")

	assert.Equal(t, 90*time.Second, GetEnvDuration("CODESIM_TEST_DURATION", time.Minute))
	assert.Equal(t, time.Minute, GetEnvDuration("CODESIM_TEST_MISSING", time.Minute))
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CODESIM_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CODESIM_TEST_DOTENV") })

	require.NoError(t, LoadEnv(path))
	assert.Equal(t, "loaded", os.Getenv("CODESIM_TEST_DOTENV"))

	assert.Error(t, LoadEnv(filepath.Join(dir, "missing.env")))
}
