package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Store 负责管理 KV 缓存条目的读写。磁盘布局遵循：
//
//	<StoragePath>/<key>.cache    # 序列化后的值，ModTime 记录过期时间
//
// 过期条目在读取时视为不存在并被清理。
type Store interface {
	// Get 返回 key 对应的值。若不存在或已过期则返回 ErrNotFound。
	Get(ctx context.Context, key string) ([]byte, error)

	// Put 写入完整的值并覆盖旧条目，ttl<=0 表示不过期。实现需保证读者
	// 要么看到旧值要么看到新值，不能读到写了一半的内容。
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Forget 删除条目，条目不存在不视为错误。
	Forget(ctx context.Context, key string) error
}

// 驱动名称，与配置中的 Cache.Driver 对应。
const (
	DriverFile   = "file"
	DriverMemory = "memory"
)

// ErrNotFound 表示缓存不存在或已过期。
var ErrNotFound = errors.New("cache entry not found")

// Open 按驱动名称构建 Store，file 驱动需要 storagePath。
func Open(driver, storagePath string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverFile, "":
		return NewStore(storagePath)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported cache driver %q", driver)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("cache key required")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid cache key %q", key)
	}
	return nil
}

// expiry 将 ttl 换算为过期时间，ttl<=0 时返回零值表示永不过期。
func expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}
