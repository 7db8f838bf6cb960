package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"osintscan/internal/dao"
	"osintscan/internal/metrics"
	"osintscan/internal/models"
	"osintscan/internal/notification"
	apperrors "osintscan/pkg/errors"
	"osintscan/pkg/engine"
	"osintscan/pkg/logger"
	"osintscan/pkg/tools"
)

const maxDomainLength = 253

// forbiddenDomainChars are rejected outright: domains end up as arguments of
// external commands.
const forbiddenDomainChars = " ;&|<>`$()\n\r\t"

type ScanServiceMethods interface {
	StartScan(domain string, sel *tools.Selection) (string, error)
	GetScanByUUID(id string) (*models.ScanRecord, error)
	ListScans() ([]models.ScanRecord, error)
	DeleteScan(id string) error
}

// ToolFactory turns a selection into the tools of one scan.
type ToolFactory interface {
	CreateTools(domain string, sel *tools.Selection) []tools.Tool
}

type ServiceOpts struct {
	logger   *logger.Logger
	queue    *engine.Queue
	metrics  *metrics.PrometheusMetrics
	notifier notification.Notifier
	logDir   string
}

type OptFunc func(*ServiceOpts)

func WithLogger(l *logger.Logger) OptFunc {
	return func(o *ServiceOpts) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithQueue(q *engine.Queue) OptFunc {
	return func(o *ServiceOpts) {
		if q != nil {
			o.queue = q
		}
	}
}

func WithMetrics(m *metrics.PrometheusMetrics) OptFunc {
	return func(o *ServiceOpts) {
		o.metrics = m
	}
}

func WithNotifier(n notification.Notifier) OptFunc {
	return func(o *ServiceOpts) {
		o.notifier = n
	}
}

// WithLogDir enables per-scan scan.log/error.log files under dir.
func WithLogDir(dir string) OptFunc {
	return func(o *ServiceOpts) {
		o.logDir = dir
	}
}

// ScanService accepts scan requests and runs them in the background.
type ScanService struct {
	scanDao       dao.ScanDAO
	statusManager *ScanStatusManager
	executor      *ScanExecutor
	logger        *logger.Logger
	wg            sync.WaitGroup
	now           func() time.Time
}

func NewScanService(scanDao dao.ScanDAO, factory ToolFactory, opts ...OptFunc) *ScanService {
	o := ServiceOpts{
		logger: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.queue == nil {
		o.queue = engine.NewQueue(4, o.logger)
	}

	statusManager := newScanStatusManager(scanDao, o.logger)
	return &ScanService{
		scanDao:       scanDao,
		statusManager: statusManager,
		executor: &ScanExecutor{
			scanDao:       scanDao,
			statusManager: statusManager,
			factory:       factory,
			queue:         o.queue,
			metrics:       o.metrics,
			notifier:      o.notifier,
			logDir:        o.logDir,
			logger:        o.logger,
		},
		logger: o.logger,
		now:    time.Now,
	}
}

// ValidateDomain checks a scan target and returns it lower-cased without a
// trailing dot.
func ValidateDomain(domain string) (string, error) {
	if domain == "" {
		return "", apperrors.NewValidationError("domain", domain, "domain is required")
	}
	if strings.ContainsAny(domain, forbiddenDomainChars) {
		return "", apperrors.NewValidationError("domain", domain, "domain contains forbidden characters")
	}

	d := strings.ToLower(strings.TrimSuffix(domain, "."))
	if len(d) > maxDomainLength {
		return "", apperrors.NewValidationError("domain", domain, fmt.Sprintf("domain exceeds %d characters", maxDomainLength))
	}
	if !strings.Contains(d, ".") {
		return "", apperrors.NewValidationError("domain", domain, "domain must contain a dot")
	}
	for _, label := range strings.Split(d, ".") {
		if label == "" {
			return "", apperrors.NewValidationError("domain", domain, "domain contains an empty label")
		}
	}
	if suffix, _ := publicsuffix.PublicSuffix(d); suffix == d {
		return "", apperrors.NewValidationError("domain", domain, "domain is a public suffix")
	}
	return d, nil
}

func (s *ScanService) createScan(domain string, sel *tools.Selection) (*models.ScanRecord, error) {
	normalized, err := ValidateDomain(domain)
	if err != nil {
		s.logger.WithFields(logger.Fields{"domain": domain, "error": err}).Warn("Rejected scan request")
		return nil, err
	}

	if sel != nil {
		c := *sel
		sel = &c
	}

	scan := &models.ScanRecord{
		ScanID:     uuid.New().String(),
		Domain:     normalized,
		Status:     models.StatusPending,
		StartTime:  s.now(),
		ToolErrors: []string{},
		Options:    sel,
	}
	if err := s.scanDao.SaveScan(scan); err != nil {
		s.logger.WithFields(logger.Fields{"error": err, "domain": normalized}).Error("SaveScan failed")
		return nil, err
	}

	s.logger.WithFields(logger.Fields{
		"event":   "scan_initiated",
		"scan_id": scan.ScanID,
		"domain":  normalized,
		"tools":   sel.EnabledNames(),
	}).Info("Scan initiated")
	return scan, nil
}

// StartScan stores a pending record and returns its id without waiting for
// any tool to run.
func (s *ScanService) StartScan(domain string, sel *tools.Selection) (string, error) {
	scan, err := s.createScan(domain, sel)
	if err != nil {
		return "", err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.executor.Execute(context.Background(), scan.ScanID, scan.Domain, scan.Options)
	}()

	return scan.ScanID, nil
}

// RunOnce runs a scan in the calling goroutine and returns its final record.
func (s *ScanService) RunOnce(ctx context.Context, domain string, sel *tools.Selection) (*models.ScanRecord, error) {
	scan, err := s.createScan(domain, sel)
	if err != nil {
		return nil, err
	}
	s.executor.Execute(ctx, scan.ScanID, scan.Domain, scan.Options)
	return s.GetScanByUUID(scan.ScanID)
}

// Wait blocks until every background scan started by StartScan has reached
// a terminal state.
func (s *ScanService) Wait() {
	s.wg.Wait()
}

func (s *ScanService) GetScanByUUID(id string) (*models.ScanRecord, error) {
	scan, err := s.scanDao.GetScanByUUID(id)
	if err != nil {
		return nil, err
	}
	withSummary := scan.WithSummary()
	return &withSummary, nil
}

func (s *ScanService) ListScans() ([]models.ScanRecord, error) {
	scans, err := s.scanDao.ListScans()
	if err != nil {
		return nil, err
	}
	for i := range scans {
		scans[i] = scans[i].WithSummary()
	}
	return scans, nil
}

// DeleteScan removes a finished scan. Pending and running scans are refused
// with ErrScanInProgress.
func (s *ScanService) DeleteScan(id string) error {
	scan, err := s.scanDao.GetScanByUUID(id)
	if err != nil {
		return err
	}
	if !scan.IsTerminal() {
		return apperrors.ErrScanInProgress
	}
	if err := s.scanDao.DeleteScan(id); err != nil {
		if errors.Is(err, apperrors.ErrScanNotFound) {
			return err
		}
		return fmt.Errorf("delete scan: %w", err)
	}
	s.logger.WithFields(logger.Fields{"scan_id": id}).Info("Scan deleted")
	return nil
}
