// Package registry discovers modules under a root directory and manages their
// lifecycle. A module is an immediate subdirectory of the root that contains a
// composer.json manifest; hidden directories are ignored.
//
// Discovery resolves in three tiers: the in-process snapshot, then the
// discovery cache, then a filesystem scan whose result repopulates both.
// Mutations (enable, disable, create, delete) run under an advisory lock on
// the root and invalidate the snapshot and the cache.
package registry

import (
	"context"
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/modkit/modkit/internal/logging"
	"github.com/modkit/modkit/internal/modcache"
	"github.com/modkit/modkit/internal/moderr"
	"github.com/modkit/modkit/internal/perf"
	"github.com/modkit/modkit/internal/scaffold"
	"github.com/modkit/modkit/internal/status"
	"github.com/modkit/modkit/internal/stub"
)

// MinFreeSpace 是创建模块前要求的最小可用空间。
const MinFreeSpace uint64 = 10 * 1024 * 1024

// Descriptor 描述一次扫描得到的模块，每次扫描重新计算，不做原地修改。
type Descriptor struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Enabled  bool    `json:"enabled"`
	Provider *string `json:"provider"`
}

// Registry 管理单个模块根目录。方法可并发调用。
type Registry struct {
	root     string
	disabled map[string]struct{}
	strict   bool

	status    *status.Store
	cache     *modcache.Cache[Descriptor]
	generator *scaffold.Generator
	tracker   *perf.Tracker
	logger    logrus.FieldLogger

	checkWritable func(dir string) error
	freeSpace     func(dir string) (uint64, bool, error)

	snapshotTTL time.Duration
	now         func() time.Time

	mu       sync.Mutex
	snapshot map[string]Descriptor
	fresh    bool
	loadedAt time.Time
}

// Option 调整 Registry 的协作者。
type Option func(*Registry)

// WithStatusStore 替换状态存储，默认使用 <root>/modules.json。
func WithStatusStore(store *status.Store) Option {
	return func(r *Registry) {
		if store != nil {
			r.status = store
		}
	}
}

// WithCache 注入发现缓存，默认不启用缓存。
func WithCache(c *modcache.Cache[Descriptor]) Option {
	return func(r *Registry) {
		if c != nil {
			r.cache = c
		}
	}
}

// WithGenerator 替换脚手架生成器，默认使用内置 stub。
func WithGenerator(g *scaffold.Generator) Option {
	return func(r *Registry) {
		if g != nil {
			r.generator = g
		}
	}
}

// WithTracker 注入性能记录器。
func WithTracker(t *perf.Tracker) Option {
	return func(r *Registry) {
		r.tracker = t
	}
}

// WithLogger 注入 logger。
func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDisabled 设置全局禁用列表，列表中的模块即使被显式启用也视为禁用。
func WithDisabled(names []string) Option {
	return func(r *Registry) {
		for _, name := range names {
			if name = strings.TrimSpace(name); name != "" {
				r.disabled[name] = struct{}{}
			}
		}
	}
}

// WithStrict 开启后，缓存写入失败会作为错误返回。
func WithStrict(strict bool) Option {
	return func(r *Registry) {
		r.strict = strict
	}
}

// WithSnapshotTTL 让进程内快照在 ttl 之后过期，供长期运行的进程感知其他进程的修改。
// ttl<=0 表示快照只在 Invalidate 时失效。
func WithSnapshotTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		r.snapshotTTL = ttl
	}
}

// WithClock 替换时钟，便于测试快照过期。
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// New 创建 root 对应的 Registry。root 会被转换为绝对路径。
func New(root string, opts ...Option) (*Registry, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	r := &Registry{
		root:          abs,
		disabled:      make(map[string]struct{}),
		logger:        logging.Discard(),
		checkWritable: checkWritable,
		freeSpace:     freeSpace,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.status == nil {
		r.status = status.New(status.PathFor(abs), status.WithLogger(r.logger), status.WithStrict(r.strict))
	}
	if r.cache == nil {
		r.cache = modcache.New[Descriptor](nil, modcache.Options{}, r.logger)
	}
	if r.generator == nil {
		r.generator = scaffold.New(stub.NewEngine(stub.WithLogger(r.logger)), scaffold.WithLogger(r.logger))
	}
	return r, nil
}

// Root 返回模块根目录。
func (r *Registry) Root() string {
	return r.root
}

// Status 返回状态存储。
func (r *Registry) Status() *status.Store {
	return r.status
}

// Cache 返回发现缓存。
func (r *Registry) Cache() *modcache.Cache[Descriptor] {
	return r.cache
}

// Generator 返回脚手架生成器。
func (r *Registry) Generator() *scaffold.Generator {
	return r.generator
}

// Tracker 返回性能记录器，可能为 nil。
func (r *Registry) Tracker() *perf.Tracker {
	return r.tracker
}

// Discover 返回 name → Descriptor 的完整映射（调用方持有副本）。
func (r *Registry) Discover(ctx context.Context) (map[string]Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.discoverLocked(ctx)
}

func (r *Registry) discoverLocked(ctx context.Context) (map[string]Descriptor, error) {
	stop := r.tracker.Track("module_discovery")

	if r.snapshotValid() {
		stop(map[string]any{"source": "memory"})
		return maps.Clone(r.snapshot), nil
	}

	cached, err := r.cache.Get(ctx)
	if err != nil {
		stop(map[string]any{"source": "cache", "error": err.Error()})
		return nil, err
	}
	if cached != nil {
		r.remember(cached)
		stop(map[string]any{"source": "cache", "modules_found": len(cached)})
		return maps.Clone(cached), nil
	}

	scanned, err := r.scan()
	if err != nil {
		stop(map[string]any{"source": "filesystem", "error": err.Error()})
		return nil, err
	}
	r.remember(scanned)
	if _, err := r.cache.Put(ctx, scanned); err != nil {
		stop(map[string]any{"source": "filesystem", "error": err.Error()})
		return nil, err
	}

	enabled := 0
	for _, d := range scanned {
		if d.Enabled {
			enabled++
		}
	}
	r.logger.WithFields(logrus.Fields{
		"action":          "module_discovery",
		"path":            r.root,
		"modules_found":   len(scanned),
		"enabled_modules": enabled,
	}).Debug("module_discovery_completed")
	stop(map[string]any{"source": "filesystem", "modules_found": len(scanned)})
	return maps.Clone(scanned), nil
}

// snapshotValid 判断进程内快照是否可直接使用，调用方需持有 r.mu。
func (r *Registry) snapshotValid() bool {
	if !r.fresh {
		return false
	}
	if r.snapshotTTL > 0 && r.now().Sub(r.loadedAt) >= r.snapshotTTL {
		r.fresh = false
		return false
	}
	return true
}

// remember 记录新的快照，调用方需持有 r.mu。
func (r *Registry) remember(modules map[string]Descriptor) {
	r.snapshot = modules
	r.fresh = true
	r.loadedAt = r.now()
}

// scan 遍历根目录的直接子目录。单个模块的错误只记录日志，不影响其他模块。
func (r *Registry) scan() (map[string]Descriptor, error) {
	modules := make(map[string]Descriptor)

	entries, err := os.ReadDir(r.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.WithField("path", r.root).Debug("module_root_missing")
			return modules, nil
		}
		r.logger.WithField("path", r.root).WithError(err).Error("module_discovery_failed")
		return nil, moderr.DiscoveryFailed(r.root, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		dir := filepath.Join(r.root, name)
		if !isDir(entry, dir) {
			continue
		}

		desc, ok, err := r.describe(name, dir)
		if err != nil {
			r.logger.WithFields(logging.ModuleFields("module_scan", name, dir)).
				WithError(err).Error("module_scan_failed")
			continue
		}
		if ok {
			modules[name] = desc
		}
	}
	return modules, nil
}

// describe 读取单个目录；没有清单时 ok=false。
func (r *Registry) describe(name, dir string) (Descriptor, bool, error) {
	manifestPath := filepath.Join(dir, ManifestFile)
	info, err := os.Stat(manifestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Descriptor{}, false, nil
		}
		return Descriptor{}, false, err
	}
	if info.IsDir() {
		return Descriptor{}, false, nil
	}

	manifest, err := readManifest(manifestPath)
	if err != nil {
		return Descriptor{}, false, err
	}

	provider, err := providerFromManifest(name, manifest)
	if err != nil {
		r.logger.WithFields(logging.ModuleFields("module_provider", name, manifestPath)).
			WithError(err).Error("module_provider_invalid")
	}

	return Descriptor{
		Name:     name,
		Path:     dir,
		Enabled:  r.isEnabled(name),
		Provider: provider,
	}, true, nil
}

// isEnabled 采用显式启用规则：没有状态记录的模块视为禁用；
// 记录为 true 时仍受全局禁用列表约束。
func (r *Registry) isEnabled(name string) bool {
	enabled, ok := r.status.Has(name)
	if !ok || !enabled {
		return false
	}
	_, disabled := r.disabled[name]
	return !disabled
}

func isDir(entry fs.DirEntry, path string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
