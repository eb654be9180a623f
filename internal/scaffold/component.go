package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/modkit/modkit/internal/logging"
	"github.com/modkit/modkit/internal/moderr"
	"github.com/modkit/modkit/internal/stub"
)

// Kind 是组件类型，对应 make:<kind> 命令。
type Kind string

const (
	KindController Kind = "controller"
	KindModel      Kind = "model"
	KindMigration  Kind = "migration"
	KindSeeder     Kind = "seeder"
	KindFactory    Kind = "factory"
	KindRequest    Kind = "request"
	KindResource   Kind = "resource"
	KindTest       Kind = "test"
)

// Kinds 列出所有支持的组件类型。
var Kinds = []Kind{
	KindController, KindModel, KindMigration, KindSeeder,
	KindFactory, KindRequest, KindResource, KindTest,
}

var componentNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Component 描述一次组件生成。
type Component struct {
	Kind       Kind
	Module     string
	ModulePath string
	Name       string
	Template   string

	// controller
	API      bool
	Resource bool
	// migration：Create 与 Table 互斥，Create 优先。
	Create string
	Table  string
	// test
	Unit bool
}

// Stub 返回组件使用的 stub 类型。
func (c Component) Stub() string {
	switch c.Kind {
	case KindController:
		switch {
		case c.API && c.Resource:
			return "api-resource-controller"
		case c.API:
			return "api-controller"
		case c.Resource:
			return "resource-controller"
		}
		return "controller"
	case KindMigration:
		switch {
		case c.Create != "":
			return "create-migration"
		case c.Table != "":
			return "table-migration"
		}
		return "migration"
	default:
		return string(c.Kind)
	}
}

// RelPath 返回组件文件相对模块目录的路径；timestamp 仅用于迁移文件名。
func (c Component) RelPath(timestamp string) (string, error) {
	file := c.Name + ".php"
	switch c.Kind {
	case KindController:
		if c.API {
			return filepath.Join("app", "Http", "Controllers", "Api", file), nil
		}
		return filepath.Join("app", "Http", "Controllers", file), nil
	case KindModel:
		return filepath.Join("app", "Models", file), nil
	case KindMigration:
		return filepath.Join("database", "migrations", timestamp+"_"+c.Name+".php"), nil
	case KindSeeder:
		return filepath.Join("database", "seeders", file), nil
	case KindFactory:
		return filepath.Join("database", "factories", file), nil
	case KindRequest:
		return filepath.Join("app", "Http", "Requests", file), nil
	case KindResource:
		return filepath.Join("app", "Http", "Resources", file), nil
	case KindTest:
		return filepath.Join("tests", c.testKind(), file), nil
	default:
		return "", fmt.Errorf("unknown component kind %q", c.Kind)
	}
}

func (c Component) testKind() string {
	if c.Unit {
		return "Unit"
	}
	return "Feature"
}

func (c Component) tableName() string {
	switch {
	case c.Create != "":
		return c.Create
	case c.Table != "":
		return c.Table
	default:
		return strings.ToLower(c.Module) + "s"
	}
}

// ParseKind 把命令行输入解析为组件类型。
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown component kind %q", raw)
}

// MigrationNameForModel 返回模型对应的建表迁移名，例如 Post => create_posts_table。
func MigrationNameForModel(model string) string {
	return "create_" + Plural(strcase.ToSnake(model)) + "_table"
}

// Plural 对英文单词做简单的复数变换，覆盖常见的 y/s/x/ch/sh 结尾。
func Plural(word string) string {
	lower := strings.ToLower(word)
	switch {
	case word == "":
		return word
	case strings.HasSuffix(lower, "y") && len(word) > 1 && !strings.ContainsRune("aeiou", rune(lower[len(lower)-2])):
		return word[:len(word)-1] + "ies"
	case strings.HasSuffix(lower, "s"), strings.HasSuffix(lower, "x"),
		strings.HasSuffix(lower, "ch"), strings.HasSuffix(lower, "sh"):
		return word + "es"
	default:
		return word + "s"
	}
}

// MakeComponent 在已有模块中生成单个组件并返回写出的文件路径。
// 模块目录必须存在，目标文件必须不存在。
func (g *Generator) MakeComponent(c Component) (string, error) {
	if _, err := ParseKind(string(c.Kind)); err != nil {
		return "", err
	}
	if !componentNamePattern.MatchString(c.Name) {
		return "", moderr.InvalidName(c.Name, "component names must be valid class identifiers")
	}
	info, err := os.Stat(c.ModulePath)
	if err != nil || !info.IsDir() {
		return "", moderr.NotFound(c.Module)
	}

	rel, err := c.RelPath(g.now().Format("2006_01_02_150405"))
	if err != nil {
		return "", err
	}
	target := filepath.Join(c.ModulePath, rel)
	if _, err := os.Stat(target); err == nil {
		return "", moderr.FileExists(target)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", moderr.WriteFailed(target, err)
	}

	repl := stub.NewReplacements(c.Module, g.now()).
		With(stub.KeyClassName, c.Name).
		With(stub.KeyTableName, c.tableName()).
		With(stub.KeyTestKind, c.testKind())

	if err := g.engine.Write(c.Stub(), c.Template, repl, target); err != nil {
		return "", err
	}
	g.logger.WithFields(logging.ModuleFields("component_generate", c.Module, target)).
		WithField("kind", c.Kind).Info("component_generated")
	return target, nil
}
