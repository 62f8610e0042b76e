package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLogger_WritesToRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "serviceinfo.log")
	closer, log, err := FileLogger(logrus.InfoLevel, path)
	require.NoError(t, err)

	log.WithField("item_id", "A1").Info("item loaded")
	log.Debug("dropped below level")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "item loaded")
	assert.Contains(t, string(b), "item_id=A1")
	assert.NotContains(t, string(b), "dropped below level")
}

func TestNop(t *testing.T) {
	entry := Nop()
	assert.Equal(t, logrus.PanicLevel, entry.Logger.GetLevel())
	assert.NotPanics(t, func() { entry.Error("discarded") })
}
