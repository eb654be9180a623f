// Package modcache stores the full result of a module discovery scan as one
// JSON document in a cache.Store. The entry is always either absent or a
// complete snapshot; store faults degrade to a cache miss unless the cache is
// running in strict mode.
package modcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/modkit/modkit/internal/cache"
	"github.com/modkit/modkit/internal/logging"
	"github.com/modkit/modkit/internal/moderr"
)

// 默认缓存键与有效期。
const (
	DefaultKey      = "modkit_discovery"
	DefaultLifetime = 24 * time.Hour
)

// Options 描述缓存开关、键名与有效期，通常来自配置文件的 [Cache] 段。
type Options struct {
	Enabled  bool
	Key      string
	Lifetime time.Duration
	Strict   bool
}

// Cache 以 name → T 的映射作为一条完整的缓存记录。
type Cache[T any] struct {
	store  cache.Store
	opts   Options
	logger logrus.FieldLogger
}

// New 构建发现缓存；store 为 nil 时缓存视为关闭。
func New[T any](store cache.Store, opts Options, logger logrus.FieldLogger) *Cache[T] {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Lifetime <= 0 {
		opts.Lifetime = DefaultLifetime
	}
	if store == nil {
		opts.Enabled = false
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Cache[T]{store: store, opts: opts, logger: logger}
}

// Enabled 返回缓存是否启用。
func (c *Cache[T]) Enabled() bool { return c.opts.Enabled }

// Key 返回缓存键。
func (c *Cache[T]) Key() string { return c.opts.Key }

// Lifetime 返回缓存有效期。
func (c *Cache[T]) Lifetime() time.Duration { return c.opts.Lifetime }

// Get 读取缓存快照。未启用、未命中、载荷无法解析时都返回 nil；
// 存储故障仅在严格模式下以 CacheFailed 返回。
func (c *Cache[T]) Get(ctx context.Context) (map[string]T, error) {
	if !c.opts.Enabled {
		return nil, nil
	}

	data, err := c.store.Get(ctx, c.opts.Key)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			c.logger.WithField("key", c.opts.Key).Debug("module_cache_miss")
			return nil, nil
		}
		return nil, c.fault("get", err)
	}

	var entries map[string]T
	if err := json.Unmarshal(data, &entries); err != nil || entries == nil {
		c.logger.WithField("key", c.opts.Key).WithError(err).Warn("module_cache_corrupt")
		return nil, nil
	}
	c.logger.WithFields(logrus.Fields{"key": c.opts.Key, "modules": len(entries)}).Debug("module_cache_hit")
	return entries, nil
}

// Put 以完整快照覆盖缓存，返回是否写入成功。
func (c *Cache[T]) Put(ctx context.Context, entries map[string]T) (bool, error) {
	if !c.opts.Enabled {
		return false, nil
	}
	if entries == nil {
		entries = map[string]T{}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return false, c.fault("encode", err)
	}
	if err := c.store.Put(ctx, c.opts.Key, data, c.opts.Lifetime); err != nil {
		return false, c.fault("put", err)
	}
	c.logger.WithFields(logrus.Fields{"key": c.opts.Key, "modules": len(entries)}).Debug("module_cache_stored")
	return true, nil
}

// Clear 删除缓存记录。即使缓存未启用也会尝试删除，避免残留旧快照。
func (c *Cache[T]) Clear(ctx context.Context) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	if err := c.store.Forget(ctx, c.opts.Key); err != nil {
		return false, c.fault("clear", err)
	}
	c.logger.WithField("key", c.opts.Key).Debug("module_cache_cleared")
	return true, nil
}

// Cached 报告当前是否存在有效的缓存快照。
func (c *Cache[T]) Cached(ctx context.Context) bool {
	entries, err := c.Get(ctx)
	return err == nil && entries != nil
}

func (c *Cache[T]) fault(op string, err error) error {
	c.logger.WithFields(logrus.Fields{"key": c.opts.Key, "op": op}).WithError(err).Error("module_cache_failed")
	if c.opts.Strict {
		return moderr.CacheFailed(op, err)
	}
	return nil
}
