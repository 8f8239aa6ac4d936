package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDefaultLogger_LevelFiltering verifies that messages below the configured
// minimum level are suppressed and the rest land on the right stream.
func TestDefaultLogger_LevelFiltering(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&stdout, &stderr)
	logger.SetLevel(WarnLevel)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("visible warning")

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "[WARN] visible warning")
}

// TestDefaultLogger_WithFields verifies preset and call-site fields are merged
// into the formatted message.
func TestDefaultLogger_WithFields(t *testing.T) {
	var stdout, stderr bytes.Buffer
	base := NewDefaultLoggerWithWriters(&stdout, &stderr)

	logger := base.WithFields(Fields{"component": "fitter"})
	logger.Info("fit complete", Fields{"lambda": 0.5})

	out := stdout.String()
	assert.Contains(t, out, "[INFO] fit complete")
	assert.Contains(t, out, "component:fitter")
	assert.Contains(t, out, "lambda:0.5")
}

// TestDefaultLogger_ErrorIncludesCause verifies the wrapped error text appears
// in the message.
func TestDefaultLogger_ErrorIncludesCause(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&stdout, &stderr)

	logger.Error(assert.AnError, "operation failed")

	assert.Contains(t, stderr.String(), "operation failed")
	assert.Contains(t, stderr.String(), assert.AnError.Error())
}

// TestDefaultLogger_WithContext verifies fields stored under FieldsContextKey
// are picked up.
func TestDefaultLogger_WithContext(t *testing.T) {
	var stdout, stderr bytes.Buffer
	base := NewDefaultLoggerWithWriters(&stdout, &stderr)

	ctx := context.WithValue(context.Background(), FieldsContextKey, Fields{"run": 7})
	base.WithContext(ctx).Info("resample")

	assert.Contains(t, stdout.String(), "run:7")
}

// TestNoOpLogger_Silent verifies the no-op logger neither writes nor allocates
// new loggers.
func TestNoOpLogger_Silent(t *testing.T) {
	noop := &NoOpLogger{}
	noop.Info("nothing")
	noop.Error(assert.AnError, "still nothing")

	assert.Equal(t, noop, noop.WithFields(Fields{"a": 1}))
	assert.Equal(t, noop, noop.WithContext(context.Background()))
}

// TestSetGlobalLogger_NilInstallsNoOp verifies nil resets the global logger to
// the no-op implementation.
func TestSetGlobalLogger_NilInstallsNoOp(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(nil)
	_, ok := GetGlobalLogger().(*NoOpLogger)
	assert.True(t, ok)
}

// TestLevel_String verifies the level names used in formatted output.
func TestLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", DebugLevel.String())
	assert.Equal(t, "INFO", InfoLevel.String())
	assert.Equal(t, "WARN", WarnLevel.String())
	assert.Equal(t, "ERROR", ErrorLevel.String())
	assert.Equal(t, "FATAL", FatalLevel.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}
