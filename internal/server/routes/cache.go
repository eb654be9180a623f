package routes

import (
	"github.com/gofiber/fiber/v3"

	"github.com/modkit/modkit/internal/perf"
	"github.com/modkit/modkit/internal/registry"
)

// RegisterCacheRoutes 暴露 /-/cache，返回发现缓存配置、当前是否命中以及性能汇总。
func RegisterCacheRoutes(app *fiber.App, reg *registry.Registry) {
	if app == nil || reg == nil {
		return
	}

	app.Get("/-/cache", func(c fiber.Ctx) error {
		mc := reg.Cache()
		return c.JSON(fiber.Map{
			"enabled":          mc.Enabled(),
			"key":              mc.Key(),
			"lifetime_seconds": int64(mc.Lifetime().Seconds()),
			"cached":           mc.Cached(c.Context()),
			"performance":      encodeSummary(reg.Tracker().Summary()),
		})
	})
}

type summaryPayload struct {
	TotalOperations int      `json:"total_operations"`
	TotalMillis     int64    `json:"total_execution_ms"`
	AverageMillis   int64    `json:"average_execution_ms"`
	Operations      []string `json:"operations"`
}

func encodeSummary(s perf.Summary) summaryPayload {
	return summaryPayload{
		TotalOperations: s.TotalOperations,
		TotalMillis:     s.TotalDuration.Milliseconds(),
		AverageMillis:   s.AverageDuration.Milliseconds(),
		Operations:      s.Operations,
	}
}
