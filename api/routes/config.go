package routes

import (
	"github.com/gin-gonic/gin"

	"osintscan/internal/handlers"
)

func InitConfigRoutes(router *gin.RouterGroup, h *handlers.ConfigHandler) {
	router.GET("/tools", h.GetTools)
}
