package services

import (
	"osintscan/pkg/logger"
	"osintscan/pkg/tools"
)

type ConfigServiceMethods interface {
	GetToolCatalog() []tools.ToolInfo
}

// Cataloger is implemented by *tools.Factory.
type Cataloger interface {
	Catalog() []tools.ToolInfo
}

type configService struct {
	catalog Cataloger
	log     *logger.Logger
}

func NewConfigService(catalog Cataloger, log *logger.Logger) ConfigServiceMethods {
	if log == nil {
		log = logger.NewNop()
	}
	return &configService{catalog: catalog, log: log}
}

func (c *configService) GetToolCatalog() []tools.ToolInfo {
	infos := c.catalog.Catalog()
	c.log.WithFields(logger.Fields{"tool_count": len(infos)}).Debug("Serving tool catalog")
	return infos
}
