package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azybler/bike_router/pkg/errs"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn", FormatJSON)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", "nodes", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, 3.0, entry["nodes"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "DEBUG", FormatText)
	require.NoError(t, err)

	logger.Debug("loaded", "edges", 12)
	assert.Contains(t, buf.String(), "msg=loaded")
	assert.Contains(t, buf.String(), "edges=12")
}

func TestNewRejectsInvalid(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud", FormatText)
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))

	_, err = New(&bytes.Buffer{}, "info", "xml")
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))
}
