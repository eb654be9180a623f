package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/modkit/modkit/internal/config"
	"github.com/modkit/modkit/internal/logging"
	"github.com/modkit/modkit/internal/registry"
	"github.com/modkit/modkit/internal/server"
	"github.com/modkit/modkit/internal/server/routes"
)

func newServeCommand(app *cliApp) *cobra.Command {
	var (
		port    int
		refresh time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动只读诊断 HTTP 服务",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := app.loadConfig()
			if err != nil {
				return err
			}
			ttl := snapshotTTL(cfg, refresh)
			reg, err := app.setup(registry.WithSnapshotTTL(ttl))
			if err != nil {
				return err
			}
			if port <= 0 {
				port = cfg.Global.ListenPort
			}

			fiberApp, err := server.NewApp(server.AppOptions{
				Logger:     logger,
				Registry:   reg,
				ListenPort: port,
			})
			if err != nil {
				return err
			}
			routes.Register(fiberApp, reg)

			logger.WithFields(logging.BaseFields("startup", app.displayConfigPath())).
				WithFields(logrus.Fields{
					"modules_path": reg.Root(),
					"listen_port":  port,
					"snapshot_ttl": ttl.String(),
				}).Info("诊断服务启动")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Listen(ctx, fiberApp, port, logger)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "监听端口（默认取配置 ListenPort）")
	cmd.Flags().DurationVar(&refresh, "refresh", 0, "模块快照的刷新间隔（默认取配置 Cache.Lifetime）")
	return cmd
}

// snapshotTTL 决定长期运行的服务多久重新发现一次模块。
func snapshotTTL(cfg *config.Config, refresh time.Duration) time.Duration {
	if refresh > 0 {
		return refresh
	}
	return cfg.Cache.Lifetime.DurationValue()
}
