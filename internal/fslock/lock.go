// Package fslock serializes mutations of a modules root. Within a process a
// per-path mutex orders callers; across processes an advisory flock on
// <root>/.modkit.lock does the same on platforms that support it.
package fslock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileName 是模块根目录下的锁文件名。
const FileName = ".modkit.lock"

// errFlockUnavailable 表示当前平台没有 flock，仅依赖进程内互斥。
var errFlockUnavailable = errors.New("flock not available on this platform")

var (
	processMu    sync.Mutex
	processLocks = make(map[string]*sync.Mutex)
)

// Lock 代表一次已获取的根目录锁。
type Lock struct {
	path  string
	mu    *sync.Mutex
	flock *fileLock
}

// Acquire 阻塞直到获得 root 的进程内锁与跨进程 flock。root 不存在时会被创建。
func Acquire(root string) (*Lock, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve lock root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create lock root: %w", err)
	}

	mu := pathMutex(abs)
	mu.Lock()

	path := filepath.Join(abs, FileName)
	fl, err := acquireFileLock(path)
	if err != nil && !errors.Is(err, errFlockUnavailable) {
		mu.Unlock()
		return nil, err
	}
	return &Lock{path: path, mu: mu, flock: fl}, nil
}

// Path 返回锁文件路径。
func (l *Lock) Path() string {
	return l.path
}

// Release 释放锁，重复调用是安全的。
func (l *Lock) Release() {
	if l == nil || l.mu == nil {
		return
	}
	l.flock.release()
	l.flock = nil
	l.mu.Unlock()
	l.mu = nil
}

func pathMutex(path string) *sync.Mutex {
	processMu.Lock()
	defer processMu.Unlock()
	mu, ok := processLocks[path]
	if !ok {
		mu = &sync.Mutex{}
		processLocks[path] = mu
	}
	return mu
}
