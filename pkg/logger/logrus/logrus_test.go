package logrus

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/raykavin/vitaltrend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_JSON(t *testing.T) {
	buffer := bytes.NewBuffer(nil)
	log, err := New(logger.Config{Level: "info", JSON: true, Output: buffer})
	require.NoError(t, err)

	log.Debug("hidden")
	log.WithField("chart", "weight").WithError(errors.New("boom")).Warnf("skipped %s", "chart")

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	require.Len(t, lines, 1)

	entry := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "skipped chart", entry["msg"])
	assert.Equal(t, "weight", entry["chart"])
	assert.Equal(t, "boom", entry["error"])
}

func TestAdapter_Level(t *testing.T) {
	buffer := bytes.NewBuffer(nil)
	log, err := New(logger.Config{Level: "debug", Output: buffer})
	require.NoError(t, err)
	assert.Equal(t, logger.DebugLevel, log.GetLevel())

	log.SetLevel(logger.ErrorLevel)
	assert.Equal(t, logger.ErrorLevel, log.GetLevel())

	log.WithFields(map[string]any{"points": 3}).Info("hidden")
	assert.Empty(t, buffer.String())

	log.Error("shown")
	assert.Contains(t, buffer.String(), "shown")

	log.SetLevel(logger.Disabled)
	buffer.Reset()
	log.Error("discarded")
	assert.Empty(t, buffer.String())
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(logger.Config{Level: "loud"})
	require.Error(t, err)
}
