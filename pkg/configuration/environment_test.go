package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_OnlyExistingFiles(t *testing.T) {
	tmp := t.TempDir()
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "SERVICEINFO_TEST_ENV_LOAD=ok\n")

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	t.Setenv("SERVICEINFO_TEST_ENV_LOAD", "")
	_ = os.Unsetenv("SERVICEINFO_TEST_ENV_LOAD")

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("SERVICEINFO_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded from .env.local, got %q", got)
	}
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)
	t.Cleanup(c.Unload)

	assert.Equal(t, DefaultServiceURL, c.Service.URL)
	assert.Equal(t, 30*time.Second, c.Service.Timeout)
	assert.Equal(t, "X-Request-ID", c.Service.RequestIDHeader)
	assert.Equal(t, 8, c.Aggregator.MaxConcurrency)
	assert.Equal(t, logrus.ErrorLevel, c.LogrusLogLevel())
	require.NotNil(t, c.Logger())
}

func TestNew_FromEnvironment(t *testing.T) {
	t.Setenv("SERVICE_INFO_URL", "http://localhost:8080/index.php")
	t.Setenv("SERVICE_INFO_TIMEOUT", "5s")
	t.Setenv("AGGREGATOR_MAX_CONCURRENCY", "2")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PATH", filepath.Join(t.TempDir(), "logs", "serviceinfo.log"))

	c, err := New(nil)
	require.NoError(t, err)
	t.Cleanup(c.Unload)

	assert.Equal(t, "http://localhost:8080/index.php", c.Service.URL)
	assert.Equal(t, 5*time.Second, c.Service.Timeout)
	assert.Equal(t, 2, c.Aggregator.MaxConcurrency)
	assert.Equal(t, logrus.DebugLevel, c.Logger().GetLevel())
}

func TestNew_RejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"relative url":     {"SERVICE_INFO_URL": "index.php"},
		"zero timeout":     {"SERVICE_INFO_TIMEOUT": "0s"},
		"zero concurrency": {"AGGREGATOR_MAX_CONCURRENCY": "0"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := New(nil)
			require.Error(t, err)
		})
	}
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
