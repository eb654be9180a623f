// Package moderr defines the error kinds shared by the registry, the status
// store, the discovery cache and the stub engine. Every failure that reaches a
// caller carries a Kind plus the module name or path it concerns, so CLI and
// diagnostics layers can report it without string matching.
package moderr

import (
	"errors"
	"fmt"
)

// Kind 标识错误类别，errors.Is 依据 Kind 匹配。
type Kind string

const (
	KindInvalidModuleName       Kind = "invalid_module_name"
	KindAlreadyExists           Kind = "already_exists"
	KindNotFound                Kind = "not_found"
	KindInsufficientPermissions Kind = "insufficient_permissions"
	KindInsufficientDiskSpace   Kind = "insufficient_disk_space"
	KindInvalidManifest         Kind = "invalid_manifest"
	KindTemplateNotFound        Kind = "template_not_found"
	KindUnresolvedPlaceholder   Kind = "unresolved_placeholder"
	KindWriteError              Kind = "write_error"
	KindDiscoveryFailed         Kind = "discovery_failed"
	KindModuleCreationFailed    Kind = "module_creation_failed"
	KindCacheFailed             Kind = "cache_failed"
	KindStatusFailed            Kind = "status_failed"
)

// 哨兵错误，仅用于 errors.Is 比较。
var (
	ErrInvalidModuleName       = &Error{Kind: KindInvalidModuleName}
	ErrAlreadyExists           = &Error{Kind: KindAlreadyExists}
	ErrNotFound                = &Error{Kind: KindNotFound}
	ErrInsufficientPermissions = &Error{Kind: KindInsufficientPermissions}
	ErrInsufficientDiskSpace   = &Error{Kind: KindInsufficientDiskSpace}
	ErrInvalidManifest         = &Error{Kind: KindInvalidManifest}
	ErrTemplateNotFound        = &Error{Kind: KindTemplateNotFound}
	ErrUnresolvedPlaceholder   = &Error{Kind: KindUnresolvedPlaceholder}
	ErrWriteError              = &Error{Kind: KindWriteError}
	ErrDiscoveryFailed         = &Error{Kind: KindDiscoveryFailed}
	ErrModuleCreationFailed    = &Error{Kind: KindModuleCreationFailed}
	ErrCacheFailed             = &Error{Kind: KindCacheFailed}
	ErrStatusFailed            = &Error{Kind: KindStatusFailed}
)

// Error 记录错误类别、涉及的模块/路径以及底层原因。
type Error struct {
	Kind   Kind
	Name   string
	Path   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	msg := e.message()
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) message() string {
	switch e.Kind {
	case KindInvalidModuleName:
		if e.Reason != "" {
			return fmt.Sprintf("invalid module name %q: %s", e.Name, e.Reason)
		}
		return fmt.Sprintf("invalid module name %q", e.Name)
	case KindAlreadyExists:
		if e.Name == "" {
			return fmt.Sprintf("%s already exists", e.Path)
		}
		return fmt.Sprintf("module %q already exists", e.Name)
	case KindNotFound:
		return fmt.Sprintf("module %q not found", e.Name)
	case KindInsufficientPermissions:
		return fmt.Sprintf("insufficient permissions to write to %s", e.Path)
	case KindInsufficientDiskSpace:
		return fmt.Sprintf("insufficient disk space to create module %q in %s", e.Name, e.Path)
	case KindInvalidManifest:
		return fmt.Sprintf("invalid manifest %s", e.Path)
	case KindTemplateNotFound:
		return fmt.Sprintf("stub %q not found", e.Name)
	case KindUnresolvedPlaceholder:
		return fmt.Sprintf("stub %q has unresolved placeholders: %s", e.Name, e.Reason)
	case KindWriteError:
		return fmt.Sprintf("write %s failed", e.Path)
	case KindDiscoveryFailed:
		return fmt.Sprintf("failed to discover modules in %s", e.Path)
	case KindModuleCreationFailed:
		return fmt.Sprintf("failed to create module %q", e.Name)
	case KindCacheFailed:
		return fmt.Sprintf("module cache %s failed", e.Reason)
	case KindStatusFailed:
		return fmt.Sprintf("module status %s failed for %s", e.Reason, e.Path)
	default:
		return string(e.Kind)
	}
}

// Unwrap 暴露底层原因，便于 errors.Is/As 继续向下匹配。
func (e *Error) Unwrap() error {
	return e.Err
}

// Is 按 Kind 比较，target 只需 Kind 相同即视为匹配。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf 返回错误链上第一个 *Error 的 Kind，非领域错误返回空串。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func InvalidName(name, reason string) error {
	return &Error{Kind: KindInvalidModuleName, Name: name, Reason: reason}
}

func AlreadyExists(name, path string) error {
	return &Error{Kind: KindAlreadyExists, Name: name, Path: path}
}

// FileExists 用于组件生成时目标文件已存在的情况。
func FileExists(path string) error {
	return &Error{Kind: KindAlreadyExists, Path: path}
}

func NotFound(name string) error {
	return &Error{Kind: KindNotFound, Name: name}
}

func InsufficientPermissions(path string, cause error) error {
	return &Error{Kind: KindInsufficientPermissions, Path: path, Err: cause}
}

func InsufficientDiskSpace(name, path string, free uint64) error {
	return &Error{Kind: KindInsufficientDiskSpace, Name: name, Path: path, Reason: fmt.Sprintf("%d bytes free", free)}
}

func InvalidManifest(path string, cause error) error {
	return &Error{Kind: KindInvalidManifest, Path: path, Err: cause}
}

func TemplateNotFound(stubType, set string) error {
	return &Error{Kind: KindTemplateNotFound, Name: stubType, Reason: set}
}

func UnresolvedPlaceholder(stubType, names string) error {
	return &Error{Kind: KindUnresolvedPlaceholder, Name: stubType, Reason: names}
}

func WriteFailed(path string, cause error) error {
	return &Error{Kind: KindWriteError, Path: path, Err: cause}
}

func DiscoveryFailed(root string, cause error) error {
	return &Error{Kind: KindDiscoveryFailed, Path: root, Err: cause}
}

func CreationFailed(name, path string, cause error) error {
	return &Error{Kind: KindModuleCreationFailed, Name: name, Path: path, Err: cause}
}

func CacheFailed(op string, cause error) error {
	return &Error{Kind: KindCacheFailed, Reason: op, Err: cause}
}

func StatusFailed(op, path string, cause error) error {
	return &Error{Kind: KindStatusFailed, Reason: op, Path: path, Err: cause}
}
