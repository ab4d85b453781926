package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_AddsOfferAndTask(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&Config{Level: "debug", Format: "json"}, &buf)

	ctx := WithTaskID(WithOfferNo(context.Background(), "03EX0417"), "task-1")
	Info(ctx, "offer advanced", "status", "FEE_REQUESTED")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "offer advanced", line["msg"])
	assert.Equal(t, "03EX0417", line["offer_no"])
	assert.Equal(t, "task-1", line["task_id"])
	assert.Equal(t, "FEE_REQUESTED", line["status"])
}

func TestInit_LevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&Config{Level: "warn", Format: "text"}, &buf)

	Debug(context.Background(), "hidden")
	Info(context.Background(), "hidden too")
	assert.Empty(t, buf.String())

	Warn(context.Background(), "shown")
	assert.Contains(t, buf.String(), "shown")
}
