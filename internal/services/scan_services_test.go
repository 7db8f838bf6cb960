package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"osintscan/internal/dao"
	"osintscan/internal/metrics"
	"osintscan/internal/models"
	apperrors "osintscan/pkg/errors"
	"osintscan/pkg/findings"
	"osintscan/pkg/logger"
	"osintscan/pkg/tools"
)

type stubTool struct {
	name    string
	out     findings.Findings
	err     error
	release <-chan struct{}
	ran     atomic.Bool
}

func (s *stubTool) Name() string { return s.name }

func (s *stubTool) Execute(ctx context.Context, _ string) findings.Outcome {
	s.ran.Store(true)
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return findings.Failed(s.name, ctx.Err())
		}
	}
	if s.err != nil {
		return findings.Failed(s.name, s.err)
	}
	return findings.Succeeded(s.name, s.out)
}

type stubFactory struct {
	tools []tools.Tool
	panic bool
}

func (f *stubFactory) CreateTools(string, *tools.Selection) []tools.Tool {
	if f.panic {
		panic("factory exploded")
	}
	return f.tools
}

type nopResolver struct{}

func (nopResolver) LookupHost(context.Context, string) ([]string, error) { return nil, nil }
func (nopResolver) LookupMX(context.Context, string) ([]string, error)   { return nil, nil }
func (nopResolver) LookupNS(context.Context, string) ([]string, error)   { return nil, nil }

type nopRunner struct{}

func (nopRunner) Run(context.Context, string, []string) ([]byte, error) { return nil, nil }

type failingDAO struct {
	dao.ScanDAO
	saveErr error
}

func (d *failingDAO) SaveScan(*models.ScanRecord) error {
	return d.saveErr
}

type recordingNotifier struct {
	mu    sync.Mutex
	scans []*models.ScanRecord
}

func (n *recordingNotifier) NotifyScan(scan *models.ScanRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scans = append(n.scans, scan)
	return nil
}

func TestValidateDomain(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "example.com", want: "example.com"},
		{name: "lower-cased", input: "Sub.Example.COM", want: "sub.example.com"},
		{name: "trailing dot", input: "example.com.", want: "example.com"},
		{name: "empty", input: "", wantErr: true},
		{name: "space", input: "bad domain", wantErr: true},
		{name: "no dot", input: "localhost", wantErr: true},
		{name: "semicolon", input: "example.com;rm", wantErr: true},
		{name: "pipe", input: "example.com|id", wantErr: true},
		{name: "subshell", input: "$(id).example.com", wantErr: true},
		{name: "newline", input: "example.com\nfoo", wantErr: true},
		{name: "empty label", input: "a..example.com", wantErr: true},
		{name: "public suffix", input: "co.uk", wantErr: true},
		{name: "too long", input: strings.Repeat("a", 250) + ".com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateDomain(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStartScan_PartialFailureCompletes(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := dao.NewMemoryScanDAO()
	factory := &stubFactory{tools: []tools.Tool{
		&stubTool{name: "whois", err: errors.New("exit status 1")},
		&stubTool{name: "dns_probe", out: findings.Findings{Subdomains: []string{"www.example.com"}}},
	}}
	svc := NewScanService(store, factory)

	id, err := svc.StartScan("example.com", nil)
	require.NoError(t, err)
	svc.Wait()

	scan, err := svc.GetScanByUUID(id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, scan.Status)
	assert.Equal(t, []string{"whois: exit status 1"}, scan.ToolErrors)
	require.NotNil(t, scan.Findings)
	assert.Equal(t, []string{"www.example.com"}, scan.Findings.Subdomains)
	require.NotNil(t, scan.EndTime)
	require.NotNil(t, scan.Summary)
	assert.Equal(t, 1, scan.Summary.Errors)
}

func TestStartScan_NoToolsFails(t *testing.T) {
	store := dao.NewMemoryScanDAO()
	factory := tools.NewFactory(tools.Config{}, nopResolver{}, nopRunner{}, nil)
	svc := NewScanService(store, factory)

	id, err := svc.StartScan("example.com", tools.NoneSelected())
	require.NoError(t, err)
	svc.Wait()

	scan, err := svc.GetScanByUUID(id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, scan.Status)
	assert.Equal(t, apperrors.ErrNoToolsSelected.Error(), scan.ErrorMessage)
	assert.Nil(t, scan.Findings)
	assert.NotNil(t, scan.EndTime)
}

func TestStartScan_ReturnsBeforeToolsFinish(t *testing.T) {
	release := make(chan struct{})
	slow := &stubTool{name: "dns_probe", release: release}
	svc := NewScanService(dao.NewMemoryScanDAO(), &stubFactory{tools: []tools.Tool{slow}})

	id, err := svc.StartScan("example.com", nil)
	require.NoError(t, err)

	scan, err := svc.GetScanByUUID(id)
	require.NoError(t, err)
	assert.Contains(t, []string{models.StatusPending, models.StatusRunning}, scan.Status)
	assert.Nil(t, scan.EndTime)

	close(release)
	svc.Wait()

	scan, err = svc.GetScanByUUID(id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, scan.Status)
	assert.True(t, slow.ran.Load())
}

func TestStartScan_MergesAcrossTools(t *testing.T) {
	factory := &stubFactory{tools: []tools.Tool{
		&stubTool{name: "dns_probe", out: findings.Findings{
			Subdomains:  []string{"www.example.com", "mail.example.com"},
			IPAddresses: []string{"1.1.1.1"},
		}},
		&stubTool{name: "amass", out: findings.Findings{
			Subdomains: []string{"WWW.example.com.", "api.example.com"},
		}},
		&stubTool{name: "ip_resolve", out: findings.Findings{
			IPAddresses: []string{"1.1.1.1"},
		}},
	}}
	svc := NewScanService(dao.NewMemoryScanDAO(), factory)

	id, err := svc.StartScan("example.com", nil)
	require.NoError(t, err)
	svc.Wait()

	scan, err := svc.GetScanByUUID(id)
	require.NoError(t, err)
	require.NotNil(t, scan.Findings)
	assert.Equal(t, []string{"api.example.com", "mail.example.com", "www.example.com"}, scan.Findings.Subdomains)
	assert.Equal(t, []string{"1.1.1.1"}, scan.Findings.IPAddresses)
	assert.Empty(t, scan.ToolErrors)
}

func TestStartScan_InvalidDomainCreatesNothing(t *testing.T) {
	store := dao.NewMemoryScanDAO()
	svc := NewScanService(store, &stubFactory{})

	id, err := svc.StartScan("bad domain", nil)
	require.Error(t, err)
	assert.Empty(t, id)

	var vErr *apperrors.ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "domain", vErr.Field)

	scans, err := svc.ListScans()
	require.NoError(t, err)
	assert.Empty(t, scans)
}

func TestStartScan_StoreFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	tool := &stubTool{name: "dns_probe"}
	svc := NewScanService(&failingDAO{ScanDAO: dao.NewMemoryScanDAO(), saveErr: storeErr}, &stubFactory{tools: []tools.Tool{tool}})

	id, err := svc.StartScan("example.com", nil)
	assert.ErrorIs(t, err, storeErr)
	assert.Empty(t, id)

	svc.Wait()
	assert.False(t, tool.ran.Load())
}

func TestExecute_PanicMarksFailed(t *testing.T) {
	pm := metrics.NewPrometheusMetrics()
	svc := NewScanService(dao.NewMemoryScanDAO(), &stubFactory{panic: true}, WithMetrics(pm))

	id, err := svc.StartScan("example.com", nil)
	require.NoError(t, err)
	svc.Wait()

	scan, err := svc.GetScanByUUID(id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, scan.Status)
	assert.Contains(t, scan.ErrorMessage, "panic in background scan: factory exploded")

	expected := `
# HELP osintscan_scan_total Scans that reached a terminal status
# TYPE osintscan_scan_total counter
osintscan_scan_total{status="failed"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(pm.Registry(), strings.NewReader(expected), "osintscan_scan_total"))
	assert.Equal(t, 0.0, gaugeValue(t, pm, "osintscan_scan_active"))
}

func gaugeValue(t *testing.T, pm *metrics.PrometheusMetrics, name string) float64 {
	t.Helper()
	families, err := pm.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}

func TestDeleteScan(t *testing.T) {
	release := make(chan struct{})
	svc := NewScanService(dao.NewMemoryScanDAO(), &stubFactory{tools: []tools.Tool{
		&stubTool{name: "dns_probe", release: release},
	}})

	id, err := svc.StartScan("example.com", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteScan(id), apperrors.ErrScanInProgress)

	close(release)
	svc.Wait()

	require.NoError(t, svc.DeleteScan(id))
	_, err = svc.GetScanByUUID(id)
	assert.ErrorIs(t, err, apperrors.ErrScanNotFound)
	assert.ErrorIs(t, svc.DeleteScan(id), apperrors.ErrScanNotFound)
}

func TestRunOnceWritesScanLogAndNotifies(t *testing.T) {
	logDir := t.TempDir()
	notifier := &recordingNotifier{}
	svc := NewScanService(dao.NewMemoryScanDAO(), &stubFactory{tools: []tools.Tool{
		&stubTool{name: "whois", out: findings.Findings{Emails: []string{"admin@example.com"}}},
	}}, WithLogDir(logDir), WithNotifier(notifier))

	scan, err := svc.RunOnce(context.Background(), "Example.com", nil)
	require.NoError(t, err)

	assert.Equal(t, "example.com", scan.Domain)
	assert.Equal(t, models.StatusCompleted, scan.Status)
	assert.Equal(t, 1, scan.Summary.Emails)

	_, statErr := os.Stat(filepath.Join(logDir, scan.ScanID, "scan.log"))
	assert.NoError(t, statErr)

	require.Len(t, notifier.scans, 1)
	assert.Equal(t, scan.ScanID, notifier.scans[0].ScanID)
}

func TestStatusManagerLeavesTerminalRecords(t *testing.T) {
	store := dao.NewMemoryScanDAO()
	require.NoError(t, store.SaveScan(&models.ScanRecord{ScanID: "done", Status: models.StatusCompleted}))
	m := newScanStatusManager(store, logger.NewNop())

	assert.Error(t, m.MarkRunning("done"))
	m.MarkFailedWithReason("done", "late failure")

	scan, err := store.GetScanByUUID("done")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, scan.Status)
	assert.Empty(t, scan.ErrorMessage)
}
