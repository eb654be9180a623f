package registry

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/modkit/modkit/internal/moderr"
)

// All 返回全部模块，按名称排序。
func (r *Registry) All(ctx context.Context) ([]Descriptor, error) {
	return r.filter(ctx, func(Descriptor) bool { return true })
}

// Enabled 返回已启用模块，按名称排序。
func (r *Registry) Enabled(ctx context.Context) ([]Descriptor, error) {
	return r.filter(ctx, func(d Descriptor) bool { return d.Enabled })
}

// Disabled 返回未启用模块，按名称排序。
func (r *Registry) Disabled(ctx context.Context) ([]Descriptor, error) {
	return r.filter(ctx, func(d Descriptor) bool { return !d.Enabled })
}

// Exists 判断模块是否存在；发现失败时返回 false。
func (r *Registry) Exists(ctx context.Context, name string) bool {
	_, err := r.Get(ctx, name)
	return err == nil
}

// Get 返回单个模块，不存在时返回 NotFound。
func (r *Registry) Get(ctx context.Context, name string) (Descriptor, error) {
	modules, err := r.Discover(ctx)
	if err != nil {
		return Descriptor{}, err
	}
	desc, ok := modules[name]
	if !ok {
		return Descriptor{}, moderr.NotFound(name)
	}
	return desc, nil
}

// Path 返回模块目录；name 为空时返回根目录。
// 与 Get 不同，Path 不要求模块已经存在。
func (r *Registry) Path(name string) string {
	if name == "" {
		return r.root
	}
	return filepath.Join(r.root, name)
}

func (r *Registry) filter(ctx context.Context, keep func(Descriptor) bool) ([]Descriptor, error) {
	modules, err := r.Discover(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Descriptor, 0, len(modules))
	for _, d := range modules {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
