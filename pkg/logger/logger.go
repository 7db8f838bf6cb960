// Package logger provides structured logging for the osintscan application
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Fields represents structured log fields
type Fields map[string]interface{}

// Logger wraps logrus.Logger with additional functionality
type Logger struct {
	*logrus.Logger
	closer io.Closer
}

// Options controls formatter and output of a Logger built with New.
type Options struct {
	Level      string
	Format     string    // "text" or "json"
	File       string    // optional rotating log file, written in addition to the console
	Console    io.Writer // defaults to stdout
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// NewLogger creates a new structured logger
func NewLogger(level logrus.Level) *Logger {
	logger := logrus.New()
	logger.SetLevel(level)

	// Use JSON formatter for structured logging in production
	if os.Getenv("ENV") == "production" {
		logger.SetFormatter(jsonFormatter())
	} else {
		logger.SetFormatter(textFormatter())
	}

	return &Logger{Logger: logger}
}

// New builds a logger from Options. Unknown levels fall back to info.
func New(opts Options) *Logger {
	l := NewLogger(ParseLevel(opts.Level))

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	l.SetOutput(console)

	if strings.EqualFold(opts.Format, "json") {
		l.SetFormatter(jsonFormatter())
	}

	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		l.SetOutput(io.MultiWriter(console, rotating))
		l.closer = rotating
	}

	return l
}

// NewNop returns a logger that discards everything. Used by tests and
// callers that do not care about output.
func NewNop() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{Logger: l}
}

// ParseLevel converts a textual level, defaulting to info.
func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func jsonFormatter() logrus.Formatter {
	return &logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	}
}

func textFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	}
}

// Close releases the rotating file, if any.
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// WithTool adds tool-specific fields to the logger
func (l *Logger) WithTool(toolName string) *logrus.Entry {
	return l.Logger.WithField("tool", toolName)
}

// WithScan adds scan-specific fields to the logger
func (l *Logger) WithScan(scanID, domain string) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields{
		"scan_id": scanID,
		"domain":  domain,
	})
}

// WithError adds error context to the logger
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.Logger.WithError(err)
}

// WithFields adds multiple fields to the logger
func (l *Logger) WithFields(fields Fields) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields(fields))
}

// LogToolExecution logs the start and end of tool execution
func (l *Logger) LogToolExecution(toolName string, fields Fields, fn func() error) error {
	start := time.Now()

	startFields := Fields{"tool": toolName, "action": "start"}
	for k, v := range fields {
		startFields[k] = v
	}
	l.WithFields(startFields).Info("Tool execution started")

	err := fn()

	endFields := Fields{
		"tool":     toolName,
		"action":   "complete",
		"duration": time.Since(start).String(),
	}
	for k, v := range fields {
		endFields[k] = v
	}

	if err != nil {
		endFields["error"] = err.Error()
		l.WithFields(endFields).Warn("Tool execution failed")
	} else {
		l.WithFields(endFields).Info("Tool execution completed successfully")
	}

	return err
}
