package routes

import (
	"github.com/gofiber/fiber/v3"

	"github.com/modkit/modkit/internal/stub"
)

// RegisterTemplateRoutes 暴露 /-/templates，列出可用的模板集。
func RegisterTemplateRoutes(app *fiber.App, engine *stub.Engine) {
	if app == nil || engine == nil {
		return
	}

	app.Get("/-/templates", func(c fiber.Ctx) error {
		sets := engine.Templates()
		payload := make([]fiber.Map, 0, len(sets))
		for _, set := range sets {
			payload = append(payload, fiber.Map{
				"name":           set,
				"includes_model": !engine.Excludes(set, "model"),
			})
		}
		return c.JSON(fiber.Map{
			"templates": payload,
			"strict":    engine.Strict(),
		})
	})
}
