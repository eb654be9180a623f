// Package status persists per-module enable/disable overrides in a single
// JSON document, <root>/modules.json. The document maps module names to
// booleans; a missing entry means the module has no explicit override.
package status

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/modkit/modkit/internal/logging"
	"github.com/modkit/modkit/internal/moderr"
)

// FileName 是状态文件在模块根目录下的文件名。
const FileName = "modules.json"

// PathFor 返回模块根目录对应的状态文件路径。
func PathFor(root string) string {
	return filepath.Join(root, FileName)
}

// Store 在首次访问时加载状态文件，之后的读取都基于内存副本。
// Set/Forget 会先重新读盘再修改并整体写回，调用方需持有模块根目录的锁，
// 这样其他进程在此期间写入的记录不会被覆盖。
type Store struct {
	path   string
	strict bool
	logger logrus.FieldLogger

	mu      sync.Mutex
	loaded  bool
	loadErr error
	records map[string]bool
}

// Option 调整 Store 行为。
type Option func(*Store)

// WithStrict 开启后，写盘失败会以 StatusFailed 返回给调用方。
func WithStrict(strict bool) Option {
	return func(s *Store) {
		s.strict = strict
	}
}

// WithLogger 注入 logger。
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New 创建指向 path 的状态存储，不会立即读盘。
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path 返回状态文件路径。
func (s *Store) Path() string {
	return s.path
}

// Load 触发懒加载并返回加载阶段遇到的解析错误。文件不存在不算错误。
// 无论是否出错，Store 都可继续使用（视为没有任何记录）。
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()
	return s.loadErr
}

// Get 返回模块的显式状态，没有记录时返回 def。
func (s *Store) Get(name string, def bool) bool {
	if enabled, ok := s.Has(name); ok {
		return enabled
	}
	return def
}

// Has 返回模块的显式状态以及记录是否存在。
func (s *Store) Has(name string) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()
	enabled, ok := s.records[name]
	return enabled, ok
}

// All 返回所有记录的副本。
func (s *Store) All() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded()
	out := make(map[string]bool, len(s.records))
	for name, enabled := range s.records {
		out[name] = enabled
	}
	return out
}

// Names 返回有显式记录的模块名，按字母序排列。
func (s *Store) Names() []string {
	records := s.All()
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set 重新读盘后记录模块状态并立即写盘。内存状态总会更新；写盘失败只记录日志，
// 严格模式下额外返回 StatusFailed。
func (s *Store) Set(name string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reload()
	s.records[name] = enabled
	return s.persist("set", name)
}

// Forget 重新读盘后删除模块的显式记录；没有记录时不写盘。
func (s *Store) Forget(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reload()
	if _, ok := s.records[name]; !ok {
		return nil
	}
	delete(s.records, name)
	return s.persist("forget", name)
}

// reload 丢弃内存副本并重新读取状态文件。
func (s *Store) reload() {
	s.loaded = false
	s.loadErr = nil
	s.ensureLoaded()
}

func (s *Store) ensureLoaded() {
	if s.loaded {
		return
	}
	s.loaded = true
	s.records = make(map[string]bool)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.WithField("path", s.path).Debug("status_file_missing")
			return
		}
		s.loadErr = moderr.StatusFailed("read", s.path, err)
		s.logger.WithField("path", s.path).WithError(err).Warn("status_read_failed")
		return
	}

	var records map[string]bool
	if err := json.Unmarshal(data, &records); err != nil {
		s.loadErr = moderr.StatusFailed("parse", s.path, err)
		s.logger.WithField("path", s.path).WithError(err).Warn("status_parse_failed")
		return
	}
	for name, enabled := range records {
		s.records[name] = enabled
	}
}

func (s *Store) persist(op, name string) error {
	if err := writeJSON(s.path, s.records); err != nil {
		s.logger.WithFields(logging.ModuleFields("status_"+op, name, s.path)).
			WithError(err).Error("status_write_failed")
		if s.strict {
			return moderr.StatusFailed(op, s.path, err)
		}
		return nil
	}
	s.logger.WithFields(logging.ModuleFields("status_"+op, name, s.path)).Debug("status_saved")
	return nil
}

// writeJSON 以临时文件 + rename 的方式写出格式化 JSON，读者不会看到半写入的文件。
func writeJSON(path string, records map[string]bool) error {
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".modules-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	_, err = tmp.Write(data)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
