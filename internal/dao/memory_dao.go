package dao

import (
	"sort"
	"sync"

	"osintscan/internal/models"
	apperrors "osintscan/pkg/errors"
)

// memoryScanDAO keeps records in process memory. Records are copied on the
// way in and out so callers never share state with the store.
type memoryScanDAO struct {
	mu    sync.RWMutex
	scans map[string]*models.ScanRecord
}

func NewMemoryScanDAO() ScanDAO {
	return &memoryScanDAO{scans: make(map[string]*models.ScanRecord)}
}

func (dao *memoryScanDAO) SaveScan(scan *models.ScanRecord) error {
	dao.mu.Lock()
	defer dao.mu.Unlock()
	dao.scans[scan.ScanID] = scan.Clone()
	return nil
}

func (dao *memoryScanDAO) GetScanByUUID(id string) (*models.ScanRecord, error) {
	dao.mu.RLock()
	defer dao.mu.RUnlock()

	scan, ok := dao.scans[id]
	if !ok {
		return nil, apperrors.ErrScanNotFound
	}
	return scan.Clone(), nil
}

func (dao *memoryScanDAO) ListScans() ([]models.ScanRecord, error) {
	dao.mu.RLock()
	scans := make([]models.ScanRecord, 0, len(dao.scans))
	for _, s := range dao.scans {
		scans = append(scans, *s.Clone())
	}
	dao.mu.RUnlock()

	sort.SliceStable(scans, func(i, j int) bool {
		if scans[i].StartTime.Equal(scans[j].StartTime) {
			return scans[i].ScanID < scans[j].ScanID
		}
		return scans[i].StartTime.After(scans[j].StartTime)
	})
	return scans, nil
}

func (dao *memoryScanDAO) DeleteScan(id string) error {
	dao.mu.Lock()
	defer dao.mu.Unlock()

	if _, ok := dao.scans[id]; !ok {
		return apperrors.ErrScanNotFound
	}
	delete(dao.scans, id)
	return nil
}
