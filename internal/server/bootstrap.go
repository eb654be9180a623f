package server

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// Listen 启动监听并在 ctx 结束时关闭服务。正常关闭返回 nil。
func Listen(ctx context.Context, app *fiber.App, port int, logger *logrus.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(fmt.Sprintf(":%d", port))
	}()

	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.WithField("action", "shutdown").Info("Fiber 服务关闭")
		if err := app.Shutdown(); err != nil {
			return err
		}
		return <-errCh
	}
}
