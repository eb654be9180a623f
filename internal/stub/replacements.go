package stub

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// 占位符名称，模板中以 {{NAME}} 形式出现。
const (
	KeyModuleName              = "MODULE_NAME"
	KeyModuleStudly            = "MODULE_STUDLY"
	KeyModuleLower             = "MODULE_LOWER"
	KeyModuleKebab             = "MODULE_KEBAB"
	KeyModuleSnake             = "MODULE_SNAKE"
	KeyModuleNamespace         = "MODULE_NAMESPACE"
	KeyComposerModuleNamespace = "COMPOSER_MODULE_NAMESPACE"
	KeyModuleProvider          = "MODULE_PROVIDER"
	KeyCurrentYear             = "CURRENT_YEAR"
	KeyCurrentDate             = "CURRENT_DATE"
	KeyCurrentDatetime         = "CURRENT_DATETIME"
	KeyClassName               = "CLASS_NAME"
	KeyTableName               = "TABLE_NAME"
	KeyTestKind                = "TEST_KIND"
)

// Replacements 是占位符到字面值的映射。构建后不应原地修改，需要追加时使用 With。
type Replacements map[string]string

// NewReplacements 基于模块名与给定时间生成标准替换集合，同样的输入总是得到同样的结果。
func NewReplacements(name string, now time.Time) Replacements {
	studly := Studly(name)
	return Replacements{
		KeyModuleName:              name,
		KeyModuleStudly:            studly,
		KeyModuleLower:             strings.ToLower(name),
		KeyModuleKebab:             Kebab(name),
		KeyModuleSnake:             Snake(name),
		KeyModuleNamespace:         Namespace(name),
		KeyComposerModuleNamespace: `Modules\\` + studly,
		KeyModuleProvider:          ProviderClass(name),
		KeyCurrentYear:             now.Format("2006"),
		KeyCurrentDate:             now.Format("2006-01-02"),
		KeyCurrentDatetime:         now.Format("2006-01-02 15:04:05"),
	}
}

// With 返回追加（或覆盖）一个键后的副本，原集合保持不变。
func (r Replacements) With(key, value string) Replacements {
	out := make(Replacements, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	out[key] = value
	return out
}

// Keys 返回排序后的占位符名称。
func (r Replacements) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Studly 把模块名转换为 StudlyCase：按 - _ 空格切词，只把每个词的首字母大写，
// 其余字符原样保留。例如 blog-post => BlogPost，CRM => CRM，blog_v2 => BlogV2。
func Studly(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	var b strings.Builder
	for _, w := range words {
		b.WriteString(upperFirst(w))
	}
	return b.String()
}

// Snake 在每个大写字母前插入下划线后整体转小写；全小写输入原样返回。
// 例如 BlogPost => blog_post，HTTPLogs => h_t_t_p_logs，blog_v2 => blog_v2。
func Snake(name string) string {
	return delimit(name, '_')
}

// Kebab 与 Snake 规则相同，分隔符为 -。
func Kebab(name string) string {
	return delimit(name, '-')
}

func delimit(name string, sep rune) string {
	if isAllLower(name) {
		return name
	}
	var b strings.Builder
	first := true
	startOfWord := true
	for _, r := range name {
		if unicode.IsSpace(r) {
			startOfWord = true
			continue
		}
		if startOfWord {
			r = unicode.ToUpper(r)
			startOfWord = false
		}
		if !first && r >= 'A' && r <= 'Z' {
			b.WriteRune(sep)
		}
		b.WriteRune(unicode.ToLower(r))
		first = false
	}
	return b.String()
}

func isAllLower(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func upperFirst(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + w[size:]
}

// Namespace 返回模块的 PHP 命名空间 Modules\<Studly>。
func Namespace(name string) string {
	return `Modules\` + Studly(name)
}

// ProviderClass 返回模块 service provider 的短类名。
func ProviderClass(name string) string {
	return Studly(name) + "ServiceProvider"
}

// DefaultProvider 返回缺少 manifest 声明时推断出的 provider 全限定名。
func DefaultProvider(name string) string {
	return Namespace(name) + `\Providers\` + ProviderClass(name)
}
