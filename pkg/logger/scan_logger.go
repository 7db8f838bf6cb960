package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ScanLogger mirrors a scan's lifecycle into <logDir>/<scanID>/scan.log and
// error.log while still forwarding entries to the parent logger's output.
type ScanLogger struct {
	*Logger
	scanID    string
	scanDir   string
	logFile   *os.File
	errorFile *os.File
	mu        sync.Mutex
}

func NewScanLogger(scanID, logDir string, parent *Logger) (*ScanLogger, error) {
	scanDir := filepath.Join(logDir, scanID)
	if err := os.MkdirAll(scanDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scan log directory: %w", err)
	}

	logFile, err := os.OpenFile(filepath.Join(scanDir, "scan.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan log file: %w", err)
	}

	errorFile, err := os.OpenFile(filepath.Join(scanDir, "error.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("failed to create error log file: %w", err)
	}

	base := logrus.New()
	var out io.Writer = logFile
	if parent != nil {
		base.SetLevel(parent.GetLevel())
		base.SetFormatter(parent.Formatter)
		out = io.MultiWriter(parent.Out, logFile)
	}
	base.SetOutput(out)

	fmt.Fprintf(logFile, "\n=== Scan Log Started: %s ===\nScan ID: %s\n\n", time.Now().Format(time.RFC3339), scanID)

	return &ScanLogger{
		Logger:    &Logger{Logger: base},
		scanID:    scanID,
		scanDir:   scanDir,
		logFile:   logFile,
		errorFile: errorFile,
	}, nil
}

// LogToolOutcome records the result of a single tool run.
func (sl *ScanLogger) LogToolOutcome(toolName string, duration time.Duration, err error) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	fields := Fields{
		"scan_id":  sl.scanID,
		"tool":     toolName,
		"duration": duration.String(),
	}
	if err != nil {
		sl.WithFields(fields).WithError(err).Warn("Tool failed")
		fmt.Fprintf(sl.errorFile, "[%s] [%s] %s: %v\n", time.Now().Format(time.RFC3339), sl.scanID, toolName, err)
		return
	}
	sl.WithFields(fields).Info("Tool finished")
}

func (sl *ScanLogger) LogScanFailure(reason string, err error) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	msg := fmt.Sprintf("\n=== SCAN FAILED: %s ===\nScan ID: %s\nReason: %s\n", time.Now().Format(time.RFC3339), sl.scanID, reason)
	if err != nil {
		msg += fmt.Sprintf("Error: %v\n", err)
	}
	sl.logFile.WriteString(msg)
	sl.errorFile.WriteString(msg)

	entry := sl.WithFields(Fields{"scan_id": sl.scanID, "reason": reason})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error("Scan failed")
}

// LogScanCompleted writes the completion banner. Tool errors, if any, are
// also copied to error.log.
func (sl *ScanLogger) LogScanCompleted(summary map[string]int, toolErrors []string) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	ts := time.Now().Format(time.RFC3339)
	if len(toolErrors) == 0 {
		fmt.Fprintf(sl.logFile, "\n=== SCAN COMPLETED SUCCESSFULLY: %s ===\nScan ID: %s\nSummary: %v\n", ts, sl.scanID, summary)
		sl.WithFields(Fields{"scan_id": sl.scanID, "summary": summary}).Info("Scan completed successfully")
		return
	}

	msg := fmt.Sprintf("\n=== SCAN COMPLETED WITH WARNINGS: %s ===\nScan ID: %s\nFailed Tools (%d):\n", ts, sl.scanID, len(toolErrors))
	for _, e := range toolErrors {
		msg += fmt.Sprintf("  - %s\n", e)
	}
	sl.logFile.WriteString(msg)
	sl.errorFile.WriteString(msg)

	sl.WithFields(Fields{
		"scan_id":      sl.scanID,
		"summary":      summary,
		"failed_count": len(toolErrors),
	}).Warn("Scan completed with some tool failures")
}

func (sl *ScanLogger) Close() error {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	var errs []error
	if sl.logFile != nil {
		fmt.Fprintf(sl.logFile, "\n=== Scan Log Ended: %s ===\n", time.Now().Format(time.RFC3339))
		if err := sl.logFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close log file: %w", err))
		}
	}
	if sl.errorFile != nil {
		if err := sl.errorFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close error file: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing scan logger: %v", errs)
	}
	return nil
}

func (sl *ScanLogger) LogFilePath() string {
	return filepath.Join(sl.scanDir, "scan.log")
}

func (sl *ScanLogger) ErrorLogFilePath() string {
	return filepath.Join(sl.scanDir, "error.log")
}
