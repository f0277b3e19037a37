package logging_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"assetfeed/internal/config"
	"assetfeed/internal/logging"
)

func TestNew_JSONFieldNames(t *testing.T) {
	t.Parallel()

	// Arrange
	logger, err := logging.New(config.Log{Level: "debug", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	var buf bytes.Buffer
	logger.SetOutput(&buf)

	// Act
	logging.WithComponent(logger, "refresh").Debug("cycle done")

	// Assert
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "cycle done", line["message"])
	require.Equal(t, "debug", line["level"])
	require.Equal(t, "refresh", line["component"])
	require.Contains(t, line, "timestamp")
	require.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestNew_FileOutput(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "assetfeed.log")
	logger, err := logging.New(config.Log{Level: "info", Format: "text", Output: path})
	require.NoError(t, err)

	logger.Info("hello")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "hello")
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	_, err := logging.New(config.Log{Level: "loud"})
	require.ErrorContains(t, err, "invalid log level")
}
