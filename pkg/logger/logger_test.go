package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"jiraminer/pkg/config"
)

func newBufferLogger(buf *bytes.Buffer) *zerologLogger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zlog := zerolog.New(buf).With().Timestamp().Logger()
	return &zerologLogger{
		logger: &zlog,
		fields: make(map[string]interface{}),
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{
			name:    "info level",
			cfg:     &config.LoggingConfig{Level: "info"},
			wantErr: false,
		},
		{
			name:    "debug level",
			cfg:     &config.LoggingConfig{Level: "debug"},
			wantErr: false,
		},
		{
			name:    "invalid level",
			cfg:     &config.LoggingConfig{Level: "invalid"},
			wantErr: true,
		},
		{
			name:    "file output",
			cfg:     &config.LoggingConfig{Level: "info", File: filepath.Join(os.TempDir(), "jiraminer_test.log")},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && log == nil {
				t.Error("New() returned nil logger")
			}

			if tt.cfg.File != "" {
				os.Remove(tt.cfg.File)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"invalid", zerolog.InfoLevel, true},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if level != tt.expected {
				t.Errorf("parseLogLevel() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	for _, tt := range []struct {
		name string
		fn   func(string)
	}{
		{"Debug", log.Debug},
		{"Info", log.Info},
		{"Warn", log.Warn},
		{"Error", log.Error},
	} {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn(tt.name + " message")
			if !strings.Contains(buf.String(), tt.name+" message") {
				t.Errorf("%s message not found in output", tt.name)
			}
		})
	}
}

func TestWithField(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.WithField("project", "KAFKA").Info("test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Error("Message not found in output")
	}
	if !strings.Contains(output, `"project":"KAFKA"`) {
		t.Error("Field not found in output")
	}
}

func TestWithFieldsChaining(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.
		WithField("project", "KAFKA").
		WithFields(map[string]interface{}{
			"offset": 200,
			"pages":  true,
		}).
		Info("chained fields")

	output := buf.String()
	for _, want := range []string{`"project":"KAFKA"`, `"offset":200`, `"pages":true`} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %s in output, got %s", want, output)
		}
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	if log.WithError(nil) != Logger(log) {
		t.Error("WithError(nil) should return the same logger")
	}

	log.WithError(errors.New("boom")).Error("operation failed")

	output := buf.String()
	if !strings.Contains(output, "operation failed") {
		t.Error("Message not found in output")
	}
	if !strings.Contains(output, "boom") {
		t.Error("Error message not found in output")
	}
}

func TestInfoWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.InfoWithFields("page persisted", map[string]interface{}{
		"project": "KAFKA",
		"batch":   3,
		"elapsed": 2 * time.Second,
	})

	output := buf.String()
	if !strings.Contains(output, "page persisted") {
		t.Error("Message not found in output")
	}
	if !strings.Contains(output, `"project":"KAFKA"`) {
		t.Error("Project field not found in output")
	}
	if !strings.Contains(output, `"batch":3`) {
		t.Error("Batch field not found in output")
	}
}

func TestGlobalLogger(t *testing.T) {
	if err := Initialize(&config.LoggingConfig{Level: "debug"}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	if GetLogger() == nil {
		t.Error("GetLogger() returned nil")
	}

	replacement := NewTestLogger()
	SetLogger(replacement)
	if GetLogger() != Logger(replacement) {
		t.Error("SetLogger did not replace the global logger")
	}
}
