package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

const supportedCacheDriverList = "file|memory"

// Validate 针对语义级别做进一步校验，防止非法配置进入注册表。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if strings.TrimSpace(g.ModulesPath) == "" {
		return newFieldError("Global.ModulesPath", "不能为空")
	}
	if _, err := logrus.ParseLevel(g.LogLevel); err != nil {
		return newFieldError("Global.LogLevel", fmt.Sprintf("无法识别: %s", g.LogLevel))
	}
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if g.LogMaxSize < 0 {
		return newFieldError("Global.LogMaxSize", "不能为负数")
	}
	if g.LogMaxBackups < 0 {
		return newFieldError("Global.LogMaxBackups", "不能为负数")
	}

	seen := map[string]struct{}{}
	for i, name := range g.Disabled {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return newFieldError(listField("Global.Disabled", i), "不能为空")
		}
		if _, exists := seen[trimmed]; exists {
			return newFieldError(listField("Global.Disabled", i), "重复: "+trimmed)
		}
		seen[trimmed] = struct{}{}
	}

	cache := c.Cache
	if cache.Lifetime.DurationValue() <= 0 {
		return newFieldError("Cache.Lifetime", "必须大于 0")
	}
	if strings.TrimSpace(cache.Key) == "" {
		return newFieldError("Cache.Key", "不能为空")
	}
	switch cache.Driver {
	case CacheDriverFile:
		if strings.TrimSpace(cache.StoragePath) == "" {
			return newFieldError("Cache.StoragePath", "file 驱动需要缓存目录")
		}
	case CacheDriverMemory:
	default:
		return newFieldError("Cache.Driver", "仅支持 "+supportedCacheDriverList)
	}

	for i, arg := range c.Migrate.Command {
		if strings.TrimSpace(arg) == "" {
			return newFieldError(listField("Migrate.Command", i), "不能为空")
		}
	}
	for i, arg := range c.Test.Command {
		if strings.TrimSpace(arg) == "" {
			return newFieldError(listField("Test.Command", i), "不能为空")
		}
	}

	return nil
}
