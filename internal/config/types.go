package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"24h" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// 缓存驱动取值。
const (
	CacheDriverFile   = "file"
	CacheDriverMemory = "memory"
)

// GlobalConfig 描述模块根目录、日志与诊断服务等全局行为。
type GlobalConfig struct {
	ModulesPath   string   `mapstructure:"ModulesPath"`
	Disabled      []string `mapstructure:"Disabled"`
	Debug         bool     `mapstructure:"Debug"`
	Strict        bool     `mapstructure:"Strict"`
	StrictStubs   bool     `mapstructure:"StrictStubs"`
	StubsPath     string   `mapstructure:"StubsPath"`
	LogLevel      string   `mapstructure:"LogLevel"`
	LogFilePath   string   `mapstructure:"LogFilePath"`
	LogMaxSize    int      `mapstructure:"LogMaxSize"`
	LogMaxBackups int      `mapstructure:"LogMaxBackups"`
	LogCompress   bool     `mapstructure:"LogCompress"`
	ListenPort    int      `mapstructure:"ListenPort"`
}

// CacheConfig 控制发现结果缓存；Driver 决定底层 KV 存储。
type CacheConfig struct {
	Enabled     bool     `mapstructure:"Enabled"`
	Key         string   `mapstructure:"Key"`
	Lifetime    Duration `mapstructure:"Lifetime"`
	Driver      string   `mapstructure:"Driver"`
	StoragePath string   `mapstructure:"StoragePath"`
}

// MigrateConfig 描述外部迁移命令，模块迁移路径会追加在参数末尾。
type MigrateConfig struct {
	Command []string `mapstructure:"Command"`
}

// TestConfig 描述外部测试命令，模块 tests 目录会追加在参数末尾。
type TestConfig struct {
	Command []string `mapstructure:"Command"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global  GlobalConfig  `mapstructure:",squash"`
	Cache   CacheConfig   `mapstructure:"Cache"`
	Migrate MigrateConfig `mapstructure:"Migrate"`
	Test    TestConfig    `mapstructure:"Test"`
}

// IsDisabled 判断模块名是否在全局禁用列表中。
func (c *Config) IsDisabled(name string) bool {
	for _, disabled := range c.Global.Disabled {
		if disabled == name {
			return true
		}
	}
	return false
}

// DisabledSet 返回禁用列表的集合形式，供注册表按名称快速判定。
func (c *Config) DisabledSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Global.Disabled))
	for _, name := range c.Global.Disabled {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	return set
}
