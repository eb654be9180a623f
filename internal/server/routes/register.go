package routes

import (
	"github.com/gofiber/fiber/v3"

	"github.com/modkit/modkit/internal/registry"
)

// Register 挂载全部诊断接口。
func Register(app *fiber.App, reg *registry.Registry) {
	RegisterModuleRoutes(app, reg)
	RegisterCacheRoutes(app, reg)
	if reg != nil {
		RegisterTemplateRoutes(app, reg.Generator().Engine())
	}
}
