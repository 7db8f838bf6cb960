package services

import (
	"fmt"
	"time"

	"osintscan/internal/dao"
	"osintscan/internal/models"
	"osintscan/pkg/findings"
	"osintscan/pkg/logger"
)

// ScanStatusManager owns the status transitions of stored scan records.
// Every transition loads the record, mutates it and saves it back. Records
// that are already completed or failed are left untouched.
type ScanStatusManager struct {
	scanDao dao.ScanDAO
	logger  *logger.Logger
	now     func() time.Time
}

func newScanStatusManager(scanDao dao.ScanDAO, log *logger.Logger) *ScanStatusManager {
	return &ScanStatusManager{
		scanDao: scanDao,
		logger:  log,
		now:     time.Now,
	}
}

func (m *ScanStatusManager) load(scanID string) (*models.ScanRecord, error) {
	scan, err := m.scanDao.GetScanByUUID(scanID)
	if err != nil {
		return nil, fmt.Errorf("load scan: %w", err)
	}
	if scan.IsTerminal() {
		return nil, fmt.Errorf("scan %s already %s", scanID, scan.Status)
	}
	return scan, nil
}

func (m *ScanStatusManager) MarkRunning(scanID string) error {
	scan, err := m.load(scanID)
	if err != nil {
		return err
	}

	scan.Status = models.StatusRunning
	if err := m.scanDao.SaveScan(scan); err != nil {
		return fmt.Errorf("persist running status: %w", err)
	}
	return nil
}

func (m *ScanStatusManager) MarkCompleted(scanID string, result findings.Findings, toolErrors []string) error {
	scan, err := m.load(scanID)
	if err != nil {
		return err
	}

	end := m.now()
	if toolErrors == nil {
		toolErrors = []string{}
	}
	scan.Status = models.StatusCompleted
	scan.EndTime = &end
	scan.Findings = &result
	scan.ToolErrors = toolErrors
	scan.ErrorMessage = ""

	if err := m.scanDao.SaveScan(scan); err != nil {
		return fmt.Errorf("persist scan completion: %w", err)
	}
	return nil
}

// MarkFailedWithReason is best effort: failures to load or save are logged
// and swallowed.
func (m *ScanStatusManager) MarkFailedWithReason(scanID string, reason string) {
	scan, err := m.load(scanID)
	if err != nil {
		m.logger.WithFields(logger.Fields{"error": err, "scan_id": scanID}).Error("Failed to load scan for failure update")
		return
	}

	end := m.now()
	scan.Status = models.StatusFailed
	scan.EndTime = &end
	scan.ErrorMessage = reason
	if scan.ToolErrors == nil {
		scan.ToolErrors = []string{}
	}

	if err := m.scanDao.SaveScan(scan); err != nil {
		m.logger.WithFields(logger.Fields{"error": err, "scan_id": scanID}).Error("Failed to persist failed scan status")
		return
	}

	m.logger.WithFields(logger.Fields{
		"scan_id": scanID,
		"reason":  reason,
	}).Error("Scan marked as failed")
}
