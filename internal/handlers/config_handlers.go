package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"osintscan/internal/services"
	"osintscan/pkg/logger"
)

type ConfigHandler struct {
	configService services.ConfigServiceMethods
	logger        *logger.Logger
}

func NewConfigHandler(configService services.ConfigServiceMethods, log *logger.Logger) *ConfigHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &ConfigHandler{
		configService: configService,
		logger:        log,
	}
}

// GetTools lists the tool families a scan request can toggle.
func (h *ConfigHandler) GetTools(c *gin.Context) {
	c.JSON(http.StatusOK, h.configService.GetToolCatalog())
}
