package stub

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/modkit/modkit/internal/logging"
	"github.com/modkit/modkit/internal/moderr"
)

// DefaultSet 表示不使用任何模板集覆盖。
const DefaultSet = "default"

const (
	stubExt      = ".stub"
	templatesDir = "templates"
)

var placeholderPattern = regexp.MustCompile(`\{\{([A-Z][A-Z0-9_]*)\}\}`)

// 内置模板集的排除规则：api 模板不生成 model。
var defaultExclusions = map[string][]string{
	"api": {"model"},
}

type source struct {
	name string
	fsys fs.FS
}

// Engine 负责定位、渲染并写出 stub。零值不可用，请通过 NewEngine 构建。
type Engine struct {
	sources    []source
	strict     bool
	exclusions map[string]map[string]struct{}
	logger     logrus.FieldLogger
}

// Option 调整 Engine 行为。
type Option func(*Engine)

// WithStubsDir 把用户自定义 stub 目录放在内置默认值之前；目录不存在时忽略。
func WithStubsDir(dir string) Option {
	return func(e *Engine) {
		if strings.TrimSpace(dir) == "" {
			return
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			e.logger.WithField("path", dir).Debug("stub_dir_missing")
			return
		}
		e.sources = append(e.sources, source{name: dir, fsys: os.DirFS(dir)})
	}
}

// WithFS 追加一个模板来源，优先级高于之后追加的来源与内置默认值。
func WithFS(name string, fsys fs.FS) Option {
	return func(e *Engine) {
		e.sources = append(e.sources, source{name: name, fsys: fsys})
	}
}

// WithStrict 开启后，渲染结果中残留的占位符会返回 UnresolvedPlaceholder。
func WithStrict(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// WithExclusion 声明某个模板集不生成指定类型的 stub。
func WithExclusion(set string, stubTypes ...string) Option {
	return func(e *Engine) {
		e.addExclusion(set, stubTypes...)
	}
}

// WithLogger 注入 logger，需放在其他选项之前才能记录它们的日志。
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine 按选项顺序叠加模板来源，最后追加内置默认 stub。
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		exclusions: make(map[string]map[string]struct{}),
		logger:     logging.Discard(),
	}
	for set, types := range defaultExclusions {
		e.addExclusion(set, types...)
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sources = append(e.sources, source{name: "embedded", fsys: Defaults()})
	return e
}

func (e *Engine) addExclusion(set string, stubTypes ...string) {
	set = normalizeSet(set)
	if e.exclusions[set] == nil {
		e.exclusions[set] = make(map[string]struct{})
	}
	for _, t := range stubTypes {
		e.exclusions[set][t] = struct{}{}
	}
}

// Strict 返回是否启用严格占位符检查。
func (e *Engine) Strict() bool {
	return e.strict
}

// Excludes 判断模板集是否跳过某个 stub 类型。
func (e *Engine) Excludes(set, stubType string) bool {
	_, ok := e.exclusions[normalizeSet(set)][stubType]
	return ok
}

// Resolve 返回 stub 原文以及命中的来源路径，便于诊断。
func (e *Engine) Resolve(stubType, set string) ([]byte, string, error) {
	set = normalizeSet(set)
	if !validSegment(stubType) || !validSegment(set) {
		return nil, "", moderr.TemplateNotFound(stubType, set)
	}

	var candidates []string
	if set != DefaultSet {
		candidates = append(candidates, path.Join(templatesDir, set, stubType+stubExt))
	}
	candidates = append(candidates, stubType+stubExt)

	for _, name := range candidates {
		for _, src := range e.sources {
			data, err := fs.ReadFile(src.fsys, name)
			if err == nil {
				return data, src.name + ":" + name, nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				e.logger.WithFields(logrus.Fields{
					"stub":   name,
					"source": src.name,
				}).WithError(err).Warn("stub_read_failed")
			}
		}
	}
	return nil, "", moderr.TemplateNotFound(stubType, set)
}

// Render 加载 stub 并完成占位符替换。
func (e *Engine) Render(stubType, set string, repl Replacements) (string, error) {
	raw, origin, err := e.Resolve(stubType, set)
	if err != nil {
		return "", err
	}

	out := Process(string(raw), repl)
	if missing := Unresolved(out); len(missing) > 0 {
		if e.strict {
			return "", moderr.UnresolvedPlaceholder(stubType, strings.Join(missing, ", "))
		}
		e.logger.WithFields(logrus.Fields{
			"stub":         origin,
			"placeholders": missing,
		}).Debug("stub_unresolved_placeholders")
	}
	return out, nil
}

// Write 渲染 stub 并写到 outputPath，缺失的父目录会被创建。
func (e *Engine) Write(stubType, set string, repl Replacements, outputPath string) error {
	content, err := e.Render(stubType, set, repl)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return moderr.WriteFailed(outputPath, err)
	}
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return moderr.WriteFailed(outputPath, err)
	}
	return nil
}

// Templates 列出 default 以及所有来源中 templates/ 下的模板集，default 之后按名称排序。
func (e *Engine) Templates() []string {
	seen := map[string]struct{}{DefaultSet: {}}
	var sets []string
	for _, src := range e.sources {
		entries, err := fs.ReadDir(src.fsys, templatesDir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			name := normalizeSet(entry.Name())
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			sets = append(sets, name)
		}
	}
	sort.Strings(sets)
	return append([]string{DefaultSet}, sets...)
}

// HasTemplate 判断模板集是否可用。
func (e *Engine) HasTemplate(set string) bool {
	set = normalizeSet(set)
	for _, name := range e.Templates() {
		if name == set {
			return true
		}
	}
	return false
}

// Process 把每个已映射的 {{KEY}} 替换为对应值，未知占位符原样保留。
// 替换单次完成，值中出现的占位符不会被二次展开。
func Process(content string, repl Replacements) string {
	if len(repl) == 0 {
		return content
	}
	pairs := make([]string, 0, len(repl)*2)
	for _, key := range repl.Keys() {
		pairs = append(pairs, "{{"+key+"}}", repl[key])
	}
	return strings.NewReplacer(pairs...).Replace(content)
}

// Unresolved 返回内容中残留的占位符名称（去重、排序）。
func Unresolved(content string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var names []string
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	sort.Strings(names)
	return names
}

func normalizeSet(set string) string {
	set = strings.ToLower(strings.TrimSpace(set))
	if set == "" {
		return DefaultSet
	}
	return set
}

func validSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}
