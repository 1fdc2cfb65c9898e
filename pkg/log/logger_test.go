package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/shapeml/pkg/errors"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), "line: %s", line)
		out = append(out, m)
	}
	return out
}

func TestZerologLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo).With(ModelNameKey, "KNN")

	logger.Info("Instances learned",
		OperationKey, OperationLearn,
		SamplesKey, 3,
		DistanceKey, 0.5,
		ClassesKey, []string{"circle", "square"},
	)
	logger.Debug("dropped")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)

	entry := lines[0]
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Instances learned", entry["message"])
	assert.Equal(t, "KNN", entry[ModelNameKey])
	assert.Equal(t, OperationLearn, entry[OperationKey])
	assert.Equal(t, 3.0, entry[SamplesKey])
	assert.Equal(t, 0.5, entry[DistanceKey])
	assert.Equal(t, []any{"circle", "square"}, entry[ClassesKey])
}

func TestZerologLoggerErrorFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug)

	err := errors.NewDegenerateGeometryError("shape.NewFeatures", "bounding box height is zero")
	logger.Error("Extraction failed", ErrorKey, err)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)

	entry := lines[0]
	assert.Equal(t, err.Error(), entry[ErrorKey])
	assert.Equal(t, "DegenerateGeometryError", entry["type"])
	assert.Equal(t, "bounding box height is zero", entry["reason"])
	assert.NotEmpty(t, entry[StacktraceKey])
}

func TestZerologLoggerEnabled(t *testing.T) {
	logger := NewZerologLogger(&bytes.Buffer{}, LevelWarn)

	assert.False(t, logger.Enabled(context.Background(), LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), LevelWarn))
	assert.True(t, logger.Enabled(context.Background(), LevelError))
}

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ToLogLevel(tt.in)
			if tt.wantErr {
				var vErr *errors.ValidationError
				require.True(t, errors.As(err, &vErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupLoggerWithWriterRoutesWarnings(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, LevelInfo)
	defer func() {
		errors.SetZerologWarnFunc(nil)
		SetupLoggerWithWriter(&bytes.Buffer{}, LevelWarn)
		errors.SetZerologWarnFunc(nil)
	}()

	errors.Warn(errors.NewConvergenceWarning("LogisticRegression", 20, ""))
	GetLoggerWithName("neighbors").Info("Prediction made", LabelKey, "circle")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "ConvergenceWarning", lines[0]["type"])
	assert.Equal(t, 20.0, lines[0]["iterations"])

	assert.Equal(t, "neighbors", lines[1][ComponentKey])
	assert.Equal(t, "circle", lines[1][LabelKey])
}

func TestSetupLoggerRejectsUnknownLevel(t *testing.T) {
	require.Error(t, SetupLogger("loud"))
}
