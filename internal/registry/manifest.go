package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/modkit/modkit/internal/moderr"
	"github.com/modkit/modkit/internal/stub"
)

// ManifestFile 是标识模块目录的清单文件。
const ManifestFile = "composer.json"

// readManifest 读取并解析清单；非 JSON 对象视为 InvalidManifest。
func readManifest(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var manifest map[string]any
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, moderr.InvalidManifest(path, err)
	}
	if manifest == nil {
		return nil, moderr.InvalidManifest(path, fmt.Errorf("manifest is null"))
	}
	return manifest, nil
}

// providerFromManifest 依次读取 extra.laravel.providers[0] 与 extra.providers[0]。
// 字段缺失时按模块名推断；字段类型不符时返回 nil 与错误。
func providerFromManifest(name string, manifest map[string]any) (*string, error) {
	raw, ok := manifest["extra"]
	if !ok || raw == nil {
		return defaultProvider(name), nil
	}
	extra, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("extra must be an object, got %T", raw)
	}

	var candidates []any
	if rawLaravel, ok := extra["laravel"]; ok && rawLaravel != nil {
		laravel, ok := rawLaravel.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("extra.laravel must be an object, got %T", rawLaravel)
		}
		if providers, ok := laravel["providers"]; ok {
			candidates = append(candidates, providers)
		}
	}
	if providers, ok := extra["providers"]; ok {
		candidates = append(candidates, providers)
	}

	for _, candidate := range candidates {
		list, ok := candidate.([]any)
		if !ok {
			return nil, fmt.Errorf("providers must be an array, got %T", candidate)
		}
		if len(list) == 0 {
			continue
		}
		provider, ok := list[0].(string)
		if !ok {
			return nil, fmt.Errorf("provider must be a string, got %T", list[0])
		}
		return &provider, nil
	}
	return defaultProvider(name), nil
}

func defaultProvider(name string) *string {
	provider := stub.DefaultProvider(name)
	return &provider
}
