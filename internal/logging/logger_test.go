package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-processing-engine/internal/config"
	"image-processing-engine/internal/core"
)

func TestNew_JSONByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(config.LogConfig{}, false, &buf)
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	logger.WithField("step", "sobel").Info("Step completed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "sobel", entry["step"])
	assert.Equal(t, "Step completed", entry["msg"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, entry["time"])
}

func TestNew_DebugUsesText(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(config.LogConfig{Level: "warn"}, true, &buf)
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}

func TestNew_RotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.log")
	var buf bytes.Buffer
	logger, closer, err := New(config.LogConfig{File: path, Format: "text"}, false, &buf)
	require.NoError(t, err)

	logger.Info("written twice")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written twice")
	assert.Contains(t, buf.String(), "written twice")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New(config.LogConfig{Level: "chatty"}, false, nil)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}
