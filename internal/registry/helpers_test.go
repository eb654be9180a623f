package registry

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/modkit/modkit/internal/cache"
	"github.com/modkit/modkit/internal/modcache"
)

// newTestRegistry 构建 Registry；store 为 nil 时禁用发现缓存。
func newTestRegistry(t *testing.T, root string, store cache.Store, opts ...Option) *Registry {
	t.Helper()
	if store != nil {
		opts = append([]Option{WithCache(modcache.New[Descriptor](store, modcache.Options{Enabled: true}, nil))}, opts...)
	}
	reg, err := New(root, opts...)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return reg
}

func writeModule(t *testing.T, root, name, manifest string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
}

func strPtr(s string) *string {
	return &s
}

func sortedKeys(m map[string]Descriptor) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func descriptorNames(list []Descriptor) []string {
	names := make([]string, 0, len(list))
	for _, d := range list {
		names = append(names, d.Name)
	}
	return names
}
