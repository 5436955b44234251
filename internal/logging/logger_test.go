package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/symptom-insight-server/internal/domain"
)

func TestNewLogger_LevelAndFormat(t *testing.T) {
	tests := []struct {
		name          string
		config        domain.LoggingConfig
		expectedLevel logrus.Level
		expectJSON    bool
	}{
		{
			name:          "JSON debug",
			config:        domain.LoggingConfig{Level: "debug", Format: "json"},
			expectedLevel: logrus.DebugLevel,
			expectJSON:    true,
		},
		{
			name:          "Text warn",
			config:        domain.LoggingConfig{Level: "warn", Format: "text"},
			expectedLevel: logrus.WarnLevel,
		},
		{
			name:          "Invalid level falls back to info",
			config:        domain.LoggingConfig{Level: "chatty"},
			expectedLevel: logrus.InfoLevel,
			expectJSON:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.config)

			assert.Equal(t, tt.expectedLevel, logger.GetLevel())
			_, isJSON := logger.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.expectJSON, isJSON)
		})
	}
}

func TestNewLogger_Outputs(t *testing.T) {
	t.Run("Stderr", func(t *testing.T) {
		logger := NewLogger(domain.LoggingConfig{Output: OutputStderr})
		assert.Equal(t, os.Stderr, logger.Out)
	})

	t.Run("Default stdout", func(t *testing.T) {
		logger := NewLogger(domain.LoggingConfig{Output: "somewhere"})
		assert.Equal(t, os.Stdout, logger.Out)
	})

	t.Run("Rotating file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		logger := NewLogger(domain.LoggingConfig{
			Level:      "info",
			Output:     OutputFile,
			Filename:   path,
			MaxSize:    1,
			MaxBackups: 2,
		})

		rotator, ok := logger.Out.(*lumberjack.Logger)
		require.True(t, ok, "file output should use lumberjack")
		defer rotator.Close()

		logger.WithField("symptom", "cough").Info("cache miss")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "cache miss")
		assert.Contains(t, string(data), `"symptom":"cough"`)
	})
}

func TestNewStdioSafeLogger(t *testing.T) {
	logger := NewStdioSafeLogger(domain.LoggingConfig{Output: OutputStdout})
	assert.Equal(t, os.Stderr, logger.Out)
}
