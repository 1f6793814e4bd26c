package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/formwork/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(slog.LevelInfo, logging.WithOutput(&buf))
	logger.Info("saved", "error", errors.New("boom"))
	assert.Contains(t, buf.String(), "err=boom")
	assert.NotContains(t, buf.String(), "error=")
}

func TestNew_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(slog.LevelWarn, logging.WithOutput(&buf), logging.WithJSON())
	logger.Info("dropped")
	logger.Warn("kept", "form_id", "f")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "f", line["form_id"])
}

func TestNewNop(t *testing.T) {
	assert.NotPanics(t, func() { logging.NewNop().Error("ignored") })
}
