package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/modkit/modkit/internal/cache"
	"github.com/modkit/modkit/internal/config"
	"github.com/modkit/modkit/internal/logging"
	"github.com/modkit/modkit/internal/modcache"
	"github.com/modkit/modkit/internal/perf"
	"github.com/modkit/modkit/internal/registry"
	"github.com/modkit/modkit/internal/scaffold"
	"github.com/modkit/modkit/internal/status"
	"github.com/modkit/modkit/internal/stub"
	"github.com/modkit/modkit/internal/version"
)

// configEnv 可覆盖默认配置路径，--config 优先级更高。
const configEnv = "MODKIT_CONFIG"

// usageError 标记命令行用法错误，run 据此返回退出码 2。
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// cliApp 在一次命令执行内缓存配置、logger 与注册表。
type cliApp struct {
	configFlag string

	cfg      *config.Config
	logger   *logrus.Logger
	registry *registry.Registry
}

func newRootCommand(app *cliApp) *cobra.Command {
	root := &cobra.Command{
		Use:           "modkit",
		Short:         "模块注册表与脚手架工具",
		Long:          "modkit 发现模块根目录下的模块、维护启用状态，并基于 stub 模板生成新模块与组件。",
		Version:       version.Full(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&app.configFlag, "config", "", "配置文件路径（默认 ./modkit.toml，可被 MODKIT_CONFIG 覆盖）")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	root.AddCommand(
		newListCommand(app),
		newStatusCommand(app),
		newEnableCommand(app),
		newDisableCommand(app),
		newMakeCommand(app),
		newRemoveCommand(app),
		newCacheCommand(app),
		newOptimizeCommand(app),
		newTemplatesCommand(app),
		newMigrateCommand(app),
		newTestCommand(app),
		newServeCommand(app),
		newCheckConfigCommand(app),
		newVersionCommand(),
	)
	for _, kind := range scaffold.Kinds {
		root.AddCommand(newMakeComponentCommand(app, kind))
	}
	return root
}

// configPath 计算最终的配置路径：--config > MODKIT_CONFIG > 默认路径（空串）。
func (a *cliApp) configPath() string {
	if a.configFlag != "" {
		return a.configFlag
	}
	return os.Getenv(configEnv)
}

// displayConfigPath 用于日志字段。
func (a *cliApp) displayConfigPath() string {
	if p := a.configPath(); p != "" {
		return p
	}
	return config.DefaultPath
}

func (a *cliApp) loadConfig() (*config.Config, *logrus.Logger, error) {
	if a.cfg != nil {
		return a.cfg, a.logger, nil
	}
	cfg, err := config.Load(a.configPath())
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.InitLogger(cfg.Global, stdErr)
	if err != nil {
		return nil, nil, err
	}
	a.cfg = cfg
	a.logger = logger
	return cfg, logger, nil
}

// setup 按“配置 → 日志 → 缓存存储 → 注册表”的顺序构建依赖。
// extra 只在首次构建时生效。
func (a *cliApp) setup(extra ...registry.Option) (*registry.Registry, error) {
	if a.registry != nil {
		return a.registry, nil
	}
	cfg, logger, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	reg, err := buildRegistry(cfg, logger, extra...)
	if err != nil {
		return nil, err
	}
	a.registry = reg
	return reg, nil
}

func buildRegistry(cfg *config.Config, logger *logrus.Logger, extra ...registry.Option) (*registry.Registry, error) {
	g := cfg.Global
	root := g.ModulesPath

	var store cache.Store
	if cfg.Cache.Enabled {
		s, err := cache.Open(cfg.Cache.Driver, cfg.Cache.StoragePath)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"action": "cache_open",
				"driver": cfg.Cache.Driver,
				"path":   cfg.Cache.StoragePath,
			}).WithError(err).Warn("缓存存储不可用，已禁用发现缓存")
		} else {
			store = s
		}
	}
	discoveryCache := modcache.New[registry.Descriptor](store, modcache.Options{
		Enabled:  cfg.Cache.Enabled,
		Key:      cfg.Cache.Key,
		Lifetime: cfg.Cache.Lifetime.DurationValue(),
		Strict:   g.Strict,
	}, logger)

	engine := stub.NewEngine(
		stub.WithLogger(logger),
		stub.WithStubsDir(g.StubsPath),
		stub.WithStrict(g.StrictStubs),
	)

	opts := []registry.Option{
		registry.WithLogger(logger),
		registry.WithStatusStore(status.New(status.PathFor(root), status.WithLogger(logger), status.WithStrict(g.Strict))),
		registry.WithCache(discoveryCache),
		registry.WithGenerator(scaffold.New(engine, scaffold.WithLogger(logger))),
		registry.WithTracker(perf.NewTracker(logger)),
		registry.WithDisabled(g.Disabled),
		registry.WithStrict(g.Strict),
	}
	return registry.New(root, append(opts, extra...)...)
}
