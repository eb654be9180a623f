package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// DefaultPath 是未显式指定配置文件时使用的路径。
const DefaultPath = "modkit.toml"

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
// 默认路径下的文件缺失时直接使用默认值，显式指定的文件缺失则报错。
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	setDefaults(v)
	if err := v.BindEnv("Cache.Enabled", "MODKIT_CACHE_ENABLED"); err != nil {
		return nil, fmt.Errorf("绑定环境变量失败: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("读取配置失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.absolutize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default 返回不依赖配置文件的默认配置，供测试与嵌入方使用。
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook()))
	applyDefaults(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ModulesPath", "./modules")
	v.SetDefault("Disabled", []string{})
	v.SetDefault("Debug", false)
	v.SetDefault("Strict", false)
	v.SetDefault("StrictStubs", false)
	v.SetDefault("StubsPath", "")
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("ListenPort", 5080)
	v.SetDefault("Cache.Enabled", true)
	v.SetDefault("Cache.Key", "modkit_discovery")
	v.SetDefault("Cache.Lifetime", 86400)
	v.SetDefault("Cache.Driver", CacheDriverFile)
	v.SetDefault("Cache.StoragePath", "./storage/cache")
	v.SetDefault("Migrate.Command", []string{"php", "artisan", "migrate"})
	v.SetDefault("Test.Command", []string{"vendor/bin/phpunit"})
}

func applyDefaults(cfg *Config) {
	g := &cfg.Global
	if strings.TrimSpace(g.LogLevel) == "" {
		g.LogLevel = "info"
	}
	if g.Debug && strings.EqualFold(g.LogLevel, "info") {
		g.LogLevel = "debug"
	}
	if g.ListenPort == 0 {
		g.ListenPort = 5080
	}

	c := &cfg.Cache
	if c.Lifetime.DurationValue() == 0 {
		c.Lifetime = Duration(24 * time.Hour)
	}
	if strings.TrimSpace(c.Key) == "" {
		c.Key = "modkit_discovery"
	}
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	if c.Driver == "" {
		c.Driver = CacheDriverFile
	}
}

func (c *Config) absolutize() error {
	absModules, err := filepath.Abs(c.Global.ModulesPath)
	if err != nil {
		return fmt.Errorf("无法解析模块目录: %w", err)
	}
	c.Global.ModulesPath = absModules

	if c.Global.StubsPath != "" {
		absStubs, err := filepath.Abs(c.Global.StubsPath)
		if err != nil {
			return fmt.Errorf("无法解析 stub 目录: %w", err)
		}
		c.Global.StubsPath = absStubs
	}

	if c.Cache.Driver == CacheDriverFile {
		absStorage, err := filepath.Abs(c.Cache.StoragePath)
		if err != nil {
			return fmt.Errorf("无法解析缓存目录: %w", err)
		}
		c.Cache.StoragePath = absStorage
	}
	return nil
}

// StubsDirExists 判断自定义 stub 目录是否存在，不存在时引擎只使用内置模板。
func (c *Config) StubsDirExists() bool {
	if c.Global.StubsPath == "" {
		return false
	}
	info, err := os.Stat(c.Global.StubsPath)
	return err == nil && info.IsDir()
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
