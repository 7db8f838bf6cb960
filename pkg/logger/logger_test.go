package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("nonsense"))
}

func TestNewJSONFormat(t *testing.T) {
	l := New(Options{Level: "info", Format: "json"})
	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.WithFields(Fields{"scan_id": "abc"}).Info("hello")

	assert.Contains(t, buf.String(), `"scan_id":"abc"`)
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestNewWithRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osintscan.log")
	l := New(Options{Level: "info", File: path, MaxSizeMB: 1})
	l.Info("written to file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestLogToolExecutionReturnsError(t *testing.T) {
	l := NewNop()
	want := errors.New("boom")

	err := l.LogToolExecution("whois", Fields{"domain": "example.com"}, func() error { return want })
	assert.Equal(t, want, err)
}

func TestScanLoggerWritesFiles(t *testing.T) {
	dir := t.TempDir()
	sl, err := NewScanLogger("scan-1", dir, NewNop())
	require.NoError(t, err)

	sl.LogToolOutcome("amass", time.Second, errors.New("binary not found"))
	sl.LogScanCompleted(map[string]int{"subdomains": 2}, []string{"amass: binary not found"})
	require.NoError(t, sl.Close())

	scanLog, err := os.ReadFile(sl.LogFilePath())
	require.NoError(t, err)
	assert.Contains(t, string(scanLog), "SCAN COMPLETED WITH WARNINGS")
	assert.Contains(t, string(scanLog), "amass: binary not found")

	errLog, err := os.ReadFile(sl.ErrorLogFilePath())
	require.NoError(t, err)
	assert.Contains(t, string(errLog), "amass: binary not found")
	assert.Equal(t, filepath.Join(dir, "scan-1", "error.log"), sl.ErrorLogFilePath())
}
