package services

import (
	"context"
	"fmt"
	"time"

	"osintscan/internal/dao"
	"osintscan/internal/metrics"
	"osintscan/internal/models"
	"osintscan/internal/notification"
	apperrors "osintscan/pkg/errors"
	"osintscan/pkg/engine"
	"osintscan/pkg/findings"
	"osintscan/pkg/logger"
	"osintscan/pkg/tools"
)

// ScanExecutor runs one scan from queue admission to a terminal record.
type ScanExecutor struct {
	scanDao       dao.ScanDAO
	statusManager *ScanStatusManager
	factory       ToolFactory
	queue         *engine.Queue
	metrics       *metrics.PrometheusMetrics
	notifier      notification.Notifier
	logDir        string
	logger        *logger.Logger
}

// recorderFunc adapts a function to engine.Recorder.
type recorderFunc func(tool string, d time.Duration, err error)

func (f recorderFunc) ObserveTool(tool string, d time.Duration, err error) {
	f(tool, d, err)
}

// Execute never returns an error and never panics: whatever goes wrong ends
// up in the stored record, or in the log when the store itself is down.
func (e *ScanExecutor) Execute(ctx context.Context, scanID, domain string, sel *tools.Selection) {
	log := e.logger.WithScan(scanID, domain)

	defer func() {
		if r := recover(); r != nil {
			panicMsg := fmt.Sprintf("panic in background scan: %v", r)
			log.WithField("panic", r).Error(panicMsg)
			e.statusManager.MarkFailedWithReason(scanID, panicMsg)
		}
	}()

	err := e.queue.ExecuteWithQueue(func() error {
		return e.run(ctx, scanID, domain, sel)
	})
	if err != nil {
		log.WithError(err).Error("Scan execution failed")
		e.statusManager.MarkFailedWithReason(scanID, err.Error())
	}

	e.notify(scanID)
}

func (e *ScanExecutor) run(ctx context.Context, scanID, domain string, sel *tools.Selection) (err error) {
	started := time.Now()
	e.metrics.ScanStarted()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in background scan: %v", r)
		}
		status := models.StatusCompleted
		if err != nil {
			status = models.StatusFailed
		}
		e.metrics.ScanFinished(status, time.Since(started))
	}()

	scanLogger := e.openScanLogger(scanID, domain)
	if scanLogger != nil {
		defer scanLogger.Close()
		defer func() {
			if err != nil {
				scanLogger.LogScanFailure("scan execution error", err)
			}
		}()
	}

	toolset := e.factory.CreateTools(domain, sel)
	if len(toolset) == 0 {
		return apperrors.ErrNoToolsSelected
	}

	if err := e.statusManager.MarkRunning(scanID); err != nil {
		return err
	}

	e.logger.WithFields(logger.Fields{
		"event":   "scan_running",
		"scan_id": scanID,
		"domain":  domain,
		"tools":   len(toolset),
	}).Info("Starting scan execution")

	eng := engine.New(
		engine.WithLogger(e.logger),
		engine.WithRecorder(recorderFunc(func(tool string, d time.Duration, toolErr error) {
			e.metrics.ObserveTool(tool, d, toolErr)
			if scanLogger != nil {
				scanLogger.LogToolOutcome(tool, d, toolErr)
			}
		})),
	)

	outcomes := eng.RunAll(ctx, toolset, domain)
	result, toolErrors := findings.Merge(outcomes)

	if err := e.statusManager.MarkCompleted(scanID, result, toolErrors); err != nil {
		return err
	}

	summary := result.Counts()
	if scanLogger != nil {
		scanLogger.LogScanCompleted(summary, toolErrors)
	}
	e.logger.WithFields(logger.Fields{
		"event":            "scan_completed",
		"scan_id":          scanID,
		"domain":           domain,
		"duration_seconds": time.Since(started).Seconds(),
		"results_summary":  summary,
		"tool_errors":      len(toolErrors),
	}).Info("Scan completed")
	return nil
}

func (e *ScanExecutor) openScanLogger(scanID, domain string) *logger.ScanLogger {
	if e.logDir == "" {
		return nil
	}
	scanLogger, err := logger.NewScanLogger(scanID, e.logDir, e.logger)
	if err != nil {
		e.logger.WithFields(logger.Fields{"error": err, "scan_id": scanID}).Error("Failed to create scan logger")
		return nil
	}
	scanLogger.WithFields(logger.Fields{
		"scan_id": scanID,
		"domain":  domain,
	}).Info("Scan logger initialized")
	return scanLogger
}

func (e *ScanExecutor) notify(scanID string) {
	if e.notifier == nil {
		return
	}
	scan, err := e.scanDao.GetScanByUUID(scanID)
	if err != nil || !scan.IsTerminal() {
		return
	}
	if err := e.notifier.NotifyScan(scan); err != nil {
		e.logger.WithFields(logger.Fields{"error": err, "scan_id": scanID}).Warn("Failed to send scan notification")
	}
}
