package registry

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/modkit/modkit/internal/fslock"
	"github.com/modkit/modkit/internal/logging"
	"github.com/modkit/modkit/internal/moderr"
	"github.com/modkit/modkit/internal/scaffold"
	"github.com/modkit/modkit/internal/stub"
)

// Enable 写入启用记录并使快照与缓存失效。不校验模块是否存在。
func (r *Registry) Enable(ctx context.Context, name string) error {
	return r.setStatus(ctx, name, true)
}

// Disable 写入禁用记录并使快照与缓存失效。不校验模块是否存在。
func (r *Registry) Disable(ctx context.Context, name string) error {
	return r.setStatus(ctx, name, false)
}

func (r *Registry) setStatus(ctx context.Context, name string, enabled bool) error {
	lock, err := fslock.Acquire(r.root)
	if err != nil {
		return err
	}
	defer lock.Release()

	action := "module_disable"
	if enabled {
		action = "module_enable"
	}
	setErr := r.status.Set(name, enabled)
	invalidateErr := r.Invalidate(ctx)
	if setErr != nil {
		return setErr
	}
	r.logger.WithFields(logging.ModuleFields(action, name, r.Path(name))).Info("module_status_changed")
	return invalidateErr
}

// Invalidate 丢弃进程内快照并清除发现缓存，下一次查询会重新扫描。
func (r *Registry) Invalidate(ctx context.Context) error {
	r.mu.Lock()
	r.snapshot = nil
	r.fresh = false
	r.mu.Unlock()

	_, err := r.cache.Clear(ctx)
	return err
}

// ClearCache 只清除外部发现缓存。
func (r *Registry) ClearCache(ctx context.Context) error {
	_, err := r.cache.Clear(ctx)
	return err
}

// Optimize 清除缓存后立即重新发现并写回缓存，返回发现的模块数。
func (r *Registry) Optimize(ctx context.Context) (int, error) {
	if err := r.Invalidate(ctx); err != nil {
		return 0, err
	}
	modules, err := r.Discover(ctx)
	if err != nil {
		return 0, err
	}
	return len(modules), nil
}

// Create 校验名称与环境后生成新模块。新模块没有状态记录，因此默认处于禁用状态。
// 任何生成阶段的失败都会清理已写入的内容并返回 ModuleCreationFailed。
func (r *Registry) Create(ctx context.Context, name, template string) (_ Descriptor, err error) {
	if err := ValidateName(name); err != nil {
		return Descriptor{}, err
	}
	if template == "" {
		template = stub.DefaultSet
	}

	lock, err := fslock.Acquire(r.root)
	if err != nil {
		return Descriptor{}, moderr.InsufficientPermissions(r.root, err)
	}
	defer lock.Release()

	stop := r.tracker.Track("module_creation")
	defer func() {
		metric := map[string]any{"module_name": name, "template": template}
		if err != nil {
			metric["error"] = err.Error()
		}
		stop(metric)
	}()

	dest := r.Path(name)
	logger := r.logger.WithFields(logging.ModuleFields("module_create", name, dest))

	if _, err := os.Lstat(dest); err == nil {
		return Descriptor{}, moderr.AlreadyExists(name, dest)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Descriptor{}, moderr.InsufficientPermissions(dest, err)
	}

	if err := r.checkWritable(r.root); err != nil {
		logger.WithError(err).Warn("module_root_not_writable")
		return Descriptor{}, moderr.InsufficientPermissions(r.root, err)
	}
	if free, ok, err := r.freeSpace(r.root); err != nil {
		logger.WithError(err).Warn("module_free_space_unknown")
	} else if ok && free < MinFreeSpace {
		return Descriptor{}, moderr.InsufficientDiskSpace(name, r.root, free)
	}

	path, err := r.generator.Generate(ctx, scaffold.Plan{Name: name, Root: r.root, Template: template})
	if err != nil {
		return Descriptor{}, err
	}

	desc := Descriptor{
		Name:     name,
		Path:     path,
		Enabled:  r.isEnabled(name),
		Provider: defaultProvider(name),
	}
	invalidateErr := r.Invalidate(ctx)
	logger.WithField("template", template).Info("module_created")
	return desc, invalidateErr
}

// Delete 删除模块目录、清理快照与缓存，并移除其状态记录。
func (r *Registry) Delete(ctx context.Context, name string) error {
	lock, err := fslock.Acquire(r.root)
	if err != nil {
		return err
	}
	defer lock.Release()

	desc, err := r.Get(ctx, name)
	if err != nil {
		return err
	}
	logger := r.logger.WithFields(logging.ModuleFields("module_delete", name, desc.Path))

	if err := os.RemoveAll(desc.Path); err != nil {
		logger.WithError(err).Error("module_delete_failed")
		return moderr.WriteFailed(desc.Path, err)
	}

	r.mu.Lock()
	delete(r.snapshot, name)
	r.fresh = false
	r.mu.Unlock()

	cacheErr := r.ClearCache(ctx)
	statusErr := r.status.Forget(name)
	logger.Info("module_deleted")
	return errors.Join(cacheErr, statusErr)
}

// MakeComponent 在已存在的模块中生成组件。
func (r *Registry) MakeComponent(ctx context.Context, c scaffold.Component) (string, error) {
	desc, err := r.Get(ctx, c.Module)
	if err != nil {
		return "", err
	}
	c.ModulePath = desc.Path
	return r.generator.MakeComponent(c)
}
