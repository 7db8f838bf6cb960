package routes

import (
	"github.com/gin-gonic/gin"

	"osintscan/internal/handlers"
)

func InitScanRoutes(router *gin.RouterGroup, h *handlers.ScanHandler) {
	scanRoutes := router.Group("/scans")
	{
		scanRoutes.POST("", h.StartScan)
		scanRoutes.GET("", h.ListScans)
		scanRoutes.GET("/:id", h.GetScanByUUID)
		scanRoutes.DELETE("/:id", h.DeleteScan)
	}
}
