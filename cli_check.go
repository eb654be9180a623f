package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/modkit/modkit/internal/logging"
)

func newCheckConfigCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "校验配置文件后退出",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, logger, err := app.loadConfig()
			if err != nil {
				return err
			}
			logger.WithFields(logging.BaseFields("check_config", app.displayConfigPath())).
				WithFields(logrus.Fields{
					"modules_path":  cfg.Global.ModulesPath,
					"cache_driver":  cfg.Cache.Driver,
					"cache_enabled": cfg.Cache.Enabled,
					"stubs_found":   cfg.StubsDirExists(),
					"disabled":      len(cfg.Global.Disabled),
				}).Info("配置校验通过")
			return nil
		},
	}
}
