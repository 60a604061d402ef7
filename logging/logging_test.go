// ABOUTME: Tests for logger construction and the debugf adapter
// ABOUTME: Checks level filtering, output formats and file logging

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer

	logger := New(Config{Level: "info", Format: "json", Output: &buf})
	logger.Debug().Msg("hidden")
	logger.Info().Str("run", "abc").Msg("visible")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("debug message should be filtered at info level: %s", output)
	}

	if !strings.Contains(output, `"run":"abc"`) || !strings.Contains(output, `"message":"visible"`) {
		t.Errorf("expected structured JSON output, got: %s", output)
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer

	logger := New(Config{Level: "debug", Format: "console", Output: &buf})
	logger.Debug().Int("batch", 2).Msg("batch done")

	output := buf.String()
	if !strings.Contains(output, "batch done") || !strings.Contains(output, "batch=2") {
		t.Errorf("expected console output, got: %s", output)
	}
}

func TestNewNilOutputDiscards(t *testing.T) {
	logger := New(Config{Level: "debug"})
	if logger.GetLevel() != zerolog.Disabled {
		t.Errorf("expected disabled logger, got level %v", logger.GetLevel())
	}
}

func TestDebugf(t *testing.T) {
	var buf bytes.Buffer

	debugf := Debugf(New(Config{Level: "debug", Format: "json", Output: &buf}))
	debugf("pinned %d tracks", 3)

	if !strings.Contains(buf.String(), "pinned 3 tracks") {
		t.Errorf("expected formatted message, got: %s", buf.String())
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	logger, closer, err := OpenFile(path, Config{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}

	logger.Info().Msg("to file")

	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file missing message: %s", data)
	}
}

func TestOpenFileInvalidPath(t *testing.T) {
	if _, _, err := OpenFile("/nonexistent/dir/debug.log", Config{}); err == nil {
		t.Error("expected error for invalid path")
	}
}
