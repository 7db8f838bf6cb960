package handlers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"osintscan/internal/models"
	"osintscan/internal/services"
	apperrors "osintscan/pkg/errors"
	"osintscan/pkg/logger"
)

var registerOnce sync.Once

// RegisterValidators installs the scandomain tag on gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("scandomain", func(fl validator.FieldLevel) bool {
				_, err := services.ValidateDomain(fl.Field().String())
				return err == nil
			})
		}
	})
}

type ScanHandler struct {
	scanService services.ScanServiceMethods
	logger      *logger.Logger
}

func NewScanHandler(scanService services.ScanServiceMethods, log *logger.Logger) *ScanHandler {
	RegisterValidators()
	if log == nil {
		log = logger.NewNop()
	}
	return &ScanHandler{scanService: scanService, logger: log}
}

func (h *ScanHandler) StartScan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithFields(logger.Fields{"error": err}).Warn("Failed to bind scan request")
		if isDomainFormatError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid domain format"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	id, err := h.scanService.StartScan(req.Domain, req.Options)
	if err != nil {
		if apperrors.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid domain format"})
			return
		}
		h.logger.WithFields(logger.Fields{"error": err, "domain": req.Domain}).Error("Failed to start scan")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start scan"})
		return
	}

	c.JSON(http.StatusAccepted, ScanResponse{ScanID: id, Status: models.StatusPending})
}

func (h *ScanHandler) ListScans(c *gin.Context) {
	scans, err := h.scanService.ListScans()
	if err != nil {
		h.logger.WithFields(logger.Fields{"error": err}).Error("Failed to list scans")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list scans"})
		return
	}
	c.JSON(http.StatusOK, scans)
}

func (h *ScanHandler) GetScanByUUID(c *gin.Context) {
	scanID := c.Param("id")
	scan, err := h.scanService.GetScanByUUID(scanID)
	if errors.Is(err, apperrors.ErrScanNotFound) || (err == nil && scan == nil) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
		return
	}
	if err != nil {
		h.logger.WithFields(logger.Fields{"error": err, "scan_id": scanID}).Error("Failed to get scan")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get scan"})
		return
	}
	c.JSON(http.StatusOK, scan)
}

func (h *ScanHandler) DeleteScan(c *gin.Context) {
	scanID := c.Param("id")
	err := h.scanService.DeleteScan(scanID)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, apperrors.ErrScanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
	case errors.Is(err, apperrors.ErrScanInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "Scan is still in progress"})
	default:
		h.logger.WithFields(logger.Fields{"error": err, "scan_id": scanID}).Error("Failed to delete scan")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete scan"})
	}
}

// Health reports liveness along with the registered routes.
func Health(version string, endpoints func() []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "online",
			Version:   version,
			Endpoints: endpoints(),
		})
	}
}

func isDomainFormatError(err error) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Field() == "Domain" && fe.Tag() == "scandomain" {
			return true
		}
	}
	return false
}
