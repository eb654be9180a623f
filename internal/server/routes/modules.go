package routes

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/modkit/modkit/internal/moderr"
	"github.com/modkit/modkit/internal/registry"
)

// RegisterModuleRoutes 暴露 /-/modules 诊断接口，只读，不会修改模块状态。
func RegisterModuleRoutes(app *fiber.App, reg *registry.Registry) {
	if app == nil || reg == nil {
		return
	}

	app.Get("/-/modules", func(c fiber.Ctx) error {
		var (
			modules []registry.Descriptor
			err     error
		)
		switch strings.ToLower(strings.TrimSpace(c.Query("status"))) {
		case "":
			modules, err = reg.All(c.Context())
		case "enabled":
			modules, err = reg.Enabled(c.Context())
		case "disabled":
			modules, err = reg.Disabled(c.Context())
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_status_filter"})
		}
		if err != nil {
			return renderError(c, err)
		}
		return c.JSON(fiber.Map{
			"root":    reg.Root(),
			"count":   len(modules),
			"modules": encodeModules(modules),
		})
	})

	app.Get("/-/modules/:name", func(c fiber.Ctx) error {
		name := strings.TrimSpace(c.Params("name"))
		if name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "module_name_required"})
		}
		desc, err := reg.Get(c.Context(), name)
		if err != nil {
			return renderError(c, err)
		}
		return c.JSON(encodeModule(desc))
	})
}

type modulePayload struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Enabled  bool    `json:"enabled"`
	Provider *string `json:"provider"`
}

func encodeModules(mods []registry.Descriptor) []modulePayload {
	result := make([]modulePayload, 0, len(mods))
	for _, d := range mods {
		result = append(result, encodeModule(d))
	}
	return result
}

func encodeModule(d registry.Descriptor) modulePayload {
	return modulePayload{
		Name:     d.Name,
		Path:     d.Path,
		Enabled:  d.Enabled,
		Provider: d.Provider,
	}
}

// renderError 把领域错误映射为 HTTP 状态码。
func renderError(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, moderr.ErrNotFound) {
		status = fiber.StatusNotFound
	}
	kind := string(moderr.KindOf(err))
	if kind == "" {
		kind = "internal_error"
	}
	return c.Status(status).JSON(fiber.Map{
		"error":   kind,
		"message": err.Error(),
	})
}
