package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math"
	"strings"
	"testing"
)

// TestFiniteHandler_RewritesNonFiniteValues tests that ±Inf and NaN are logged as strings.
func TestFiniteHandler_RewritesNonFiniteValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{name: "positive infinity", value: math.Inf(1), want: `"value":"+Inf"`},
		{name: "negative infinity", value: math.Inf(-1), want: `"value":"-Inf"`},
		{name: "not a number", value: math.NaN(), want: `"value":"NaN"`},
		{name: "finite value is kept as number", value: 5.25, want: `"value":5.25`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewJSONLogger(&buf, true)

			logger.Warn("test message", "value", tt.value)

			output := buf.String()
			if !strings.Contains(output, tt.want) {
				t.Errorf("expected %s in output, got: %s", tt.want, output)
			}
			if !json.Valid(bytes.TrimSpace(buf.Bytes())) {
				t.Errorf("expected valid JSON, got: %s", output)
			}
		})
	}
}

// TestFiniteHandler_LogLevels tests the verbose switch.
func TestFiniteHandler_LogLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		verbose    bool
		logLevel   slog.Level
		shouldShow bool
	}{
		{
			name:       "debug message shown in verbose mode",
			verbose:    true,
			logLevel:   slog.LevelDebug,
			shouldShow: true,
		},
		{
			name:       "debug message hidden in non-verbose mode",
			verbose:    false,
			logLevel:   slog.LevelDebug,
			shouldShow: false,
		},
		{
			name:       "info message hidden in non-verbose mode",
			verbose:    false,
			logLevel:   slog.LevelInfo,
			shouldShow: false,
		},
		{
			name:       "warn message shown in non-verbose mode",
			verbose:    false,
			logLevel:   slog.LevelWarn,
			shouldShow: true,
		},
		{
			name:       "error message shown in non-verbose mode",
			verbose:    false,
			logLevel:   slog.LevelError,
			shouldShow: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewLogger(&buf, tt.verbose)

			testMsg := "test_unique_message_12345"
			logger.Log(t.Context(), tt.logLevel, testMsg)

			hasMessage := strings.Contains(buf.String(), testMsg)
			if tt.shouldShow && !hasMessage {
				t.Errorf("expected message to be shown, but not found in output: %s", buf.String())
			}
			if !tt.shouldShow && hasMessage {
				t.Errorf("expected message to be hidden, but found in output: %s", buf.String())
			}
		})
	}
}

// TestFiniteHandler_WithAttrs tests that WithAttrs rewrites attributes.
func TestFiniteHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	logger.With("factor", math.Inf(1)).Info("test message")

	if !strings.Contains(buf.String(), "factor=+Inf") {
		t.Errorf("expected factor=+Inf in output, got: %s", buf.String())
	}
}

// TestFiniteHandler_Groups tests that grouped attributes are rewritten.
func TestFiniteHandler_Groups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, true)

	logger.WithGroup("row").Info("test message",
		slog.Group("values", slog.Float64("per_node", math.NaN()), slog.Int("nodes", 0)),
	)

	output := buf.String()
	if !strings.Contains(output, `"per_node":"NaN"`) {
		t.Errorf("expected NaN string in group, got: %s", output)
	}
	if !strings.Contains(output, `"nodes":0`) {
		t.Errorf("expected nodes attribute to be kept, got: %s", output)
	}
}

// TestNewFiniteHandler_NilHandler tests fallback to the default handler.
func TestNewFiniteHandler_NilHandler(t *testing.T) {
	t.Parallel()

	h := NewFiniteHandler(nil)
	if h.handler == nil {
		t.Error("expected default handler to be used")
	}
}
