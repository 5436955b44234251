// Package logging builds the process logger from configuration.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/symptom-insight-server/internal/domain"
)

// Output targets
const (
	OutputStdout = "stdout"
	OutputStderr = "stderr"
	OutputFile   = "file"
)

// NewLogger creates a logrus logger configured for level, format and output.
// Unknown levels fall back to info; unknown outputs fall back to stdout.
func NewLogger(config domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(config.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	logger.SetOutput(newWriter(config))
	return logger
}

// NewStdioSafeLogger is NewLogger for processes whose stdout carries a
// protocol stream; stdout output is redirected to stderr.
func NewStdioSafeLogger(config domain.LoggingConfig) *logrus.Logger {
	if config.Output != OutputFile {
		config.Output = OutputStderr
	}
	return NewLogger(config)
}

func newWriter(config domain.LoggingConfig) io.Writer {
	switch strings.ToLower(config.Output) {
	case OutputStderr:
		return os.Stderr
	case OutputFile:
		return &lumberjack.Logger{
			Filename:   config.Filename,
			MaxSize:    config.MaxSize, // megabytes
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge, // days
			Compress:   config.Compress,
		}
	default:
		return os.Stdout
	}
}
