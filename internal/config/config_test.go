package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfgPath := testConfigPath(t, "valid.toml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Cache.Lifetime.DurationValue() != 12*time.Hour {
		t.Fatalf("Lifetime 应解析为 12h，得到 %s", cfg.Cache.Lifetime.DurationValue())
	}
	if !filepath.IsAbs(cfg.Global.ModulesPath) {
		t.Fatalf("ModulesPath 应转换为绝对路径: %s", cfg.Global.ModulesPath)
	}
	if !filepath.IsAbs(cfg.Cache.StoragePath) {
		t.Fatalf("Cache.StoragePath 应转换为绝对路径: %s", cfg.Cache.StoragePath)
	}
	if !cfg.IsDisabled("Legacy") {
		t.Fatalf("Legacy 应在禁用列表中")
	}
	if cfg.Global.LogMaxBackups != 10 {
		t.Fatalf("LogMaxBackups 应使用默认值，得到 %d", cfg.Global.LogMaxBackups)
	}
}

func TestLoadMissingDefaultFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("默认路径缺失时不应报错: %v", err)
	}
	if !cfg.Cache.Enabled {
		t.Fatalf("缓存默认应开启")
	}
	if cfg.Cache.Lifetime.DurationValue() != 24*time.Hour {
		t.Fatalf("默认 Lifetime 应为 24h，得到 %s", cfg.Cache.Lifetime.DurationValue())
	}
	if cfg.Cache.Key != "modkit_discovery" {
		t.Fatalf("默认缓存键不匹配: %s", cfg.Cache.Key)
	}
	if len(cfg.Migrate.Command) == 0 {
		t.Fatalf("应提供默认迁移命令")
	}
	if len(cfg.Test.Command) != 1 || cfg.Test.Command[0] != "vendor/bin/phpunit" {
		t.Fatalf("默认测试命令不匹配: %v", cfg.Test.Command)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("显式指定的配置缺失应报错")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	if _, err := Load(testConfigPath(t, "invalid_driver.toml")); err == nil {
		t.Fatalf("未知缓存驱动应返回错误")
	}
}

func TestLoadRejectsDuplicateDisabled(t *testing.T) {
	_, err := Load(testConfigPath(t, "duplicate_disabled.toml"))
	if err == nil {
		t.Fatalf("重复的禁用项应返回错误")
	}
	fieldErr, ok := err.(FieldError)
	if !ok {
		t.Fatalf("期望 FieldError，得到 %T", err)
	}
	if fieldErr.Field != "Global.Disabled[1]" {
		t.Fatalf("字段路径不匹配: %s", fieldErr.Field)
	}
}

func TestCacheEnabledEnvOverride(t *testing.T) {
	t.Setenv("MODKIT_CACHE_ENABLED", "false")

	cfg, err := Load(testConfigPath(t, "valid.toml"))
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Cache.Enabled {
		t.Fatalf("环境变量应关闭缓存")
	}
}

func TestDebugRaisesLogLevel(t *testing.T) {
	path := writeTempConfig(t, `
ModulesPath = "./modules"
Debug = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Global.LogLevel != "debug" {
		t.Fatalf("Debug 模式应提升日志级别，得到 %s", cfg.Global.LogLevel)
	}
}

func TestValidateEnforcesListenPortRange(t *testing.T) {
	cfg := validConfig()
	cfg.Global.ListenPort = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatalf("ListenPort 超出范围应当报错")
	}
}

func TestValidateCacheSettings(t *testing.T) {
	testCases := []struct {
		name      string
		mutate    func(*Config)
		shouldErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"memory driver", func(c *Config) { c.Cache.Driver = CacheDriverMemory; c.Cache.StoragePath = "" }, false},
		{"zero lifetime", func(c *Config) { c.Cache.Lifetime = 0 }, true},
		{"empty key", func(c *Config) { c.Cache.Key = " " }, true},
		{"file without storage", func(c *Config) { c.Cache.StoragePath = "" }, true},
		{"bad log level", func(c *Config) { c.Global.LogLevel = "loud" }, true},
		{"blank migrate arg", func(c *Config) { c.Migrate.Command = []string{"php", ""} }, true},
		{"blank test arg", func(c *Config) { c.Test.Command = []string{""} }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.shouldErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.shouldErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDisabledSetTrimsNames(t *testing.T) {
	cfg := validConfig()
	cfg.Global.Disabled = []string{" Blog ", "Shop"}
	set := cfg.DisabledSet()
	if _, ok := set["Blog"]; !ok {
		t.Fatalf("Blog 应在集合中")
	}
	if len(set) != 2 {
		t.Fatalf("集合大小不匹配: %d", len(set))
	}
}

func validConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			ModulesPath: "./modules",
			LogLevel:    "info",
			ListenPort:  5080,
		},
		Cache: CacheConfig{
			Enabled:     true,
			Key:         "modkit_discovery",
			Lifetime:    Duration(time.Hour),
			Driver:      CacheDriverFile,
			StoragePath: "./storage/cache",
		},
		Migrate: MigrateConfig{Command: []string{"php", "artisan", "migrate"}},
		Test:    TestConfig{Command: []string{"vendor/bin/phpunit"}},
	}
}
