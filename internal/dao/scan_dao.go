package dao

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"osintscan/internal/models"
	apperrors "osintscan/pkg/errors"
)

// ScanDAO persists scan records. Implementations must be safe for
// concurrent use on distinct scan ids.
type ScanDAO interface {
	// SaveScan inserts the record or replaces the stored one with the same id.
	SaveScan(scan *models.ScanRecord) error
	GetScanByUUID(id string) (*models.ScanRecord, error)
	// ListScans returns all records, newest first.
	ListScans() ([]models.ScanRecord, error)
	DeleteScan(id string) error
}

type scanDAO struct {
	db *gorm.DB
}

func NewScanDAO(db *gorm.DB) ScanDAO {
	return &scanDAO{db: db}
}

func (dao *scanDAO) SaveScan(scan *models.ScanRecord) error {
	err := dao.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scan_id"}},
		UpdateAll: true,
	}).Create(scan).Error
	if err != nil {
		return fmt.Errorf("save scan %s: %w", scan.ScanID, err)
	}
	return nil
}

func (dao *scanDAO) GetScanByUUID(id string) (*models.ScanRecord, error) {
	var scan models.ScanRecord
	if err := dao.db.Where("scan_id = ?", id).First(&scan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrScanNotFound
		}
		return nil, fmt.Errorf("get scan %s: %w", id, err)
	}
	return &scan, nil
}

func (dao *scanDAO) ListScans() ([]models.ScanRecord, error) {
	scans := []models.ScanRecord{}
	if err := dao.db.Order("start_time desc").Find(&scans).Error; err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	return scans, nil
}

func (dao *scanDAO) DeleteScan(id string) error {
	result := dao.db.Where("scan_id = ?", id).Delete(&models.ScanRecord{})
	if result.Error != nil {
		return fmt.Errorf("delete scan %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrScanNotFound
	}
	return nil
}
