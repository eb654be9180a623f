package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/spf13/cobra"

	"github.com/modkit/modkit/internal/scaffold"
	"github.com/modkit/modkit/internal/stub"
)

// componentFlags 汇总 make:<kind> 命令可能用到的全部开关，按类型注册。
type componentFlags struct {
	template string
	api      bool
	resource bool
	create   string
	table    string
	unit     bool

	withMigration bool
	withFactory   bool
	withSeeder    bool
}

func newMakeComponentCommand(app *cliApp, kind scaffold.Kind) *cobra.Command {
	var flags componentFlags
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("make:%s <module> <name>", kind),
		Short: fmt.Sprintf("在模块中生成 %s", kind),
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := app.setup()
			if err != nil {
				return err
			}
			base := scaffold.Component{
				Kind:     kind,
				Module:   args[0],
				Name:     args[1],
				Template: flags.template,
				API:      flags.api,
				Resource: flags.resource,
				Create:   flags.create,
				Table:    flags.table,
				Unit:     flags.unit,
			}
			for _, c := range flags.expand(base) {
				path, err := reg.MakeComponent(cmd.Context(), c)
				if err != nil {
					return err
				}
				fmt.Fprintf(stdOut, "%s %s %s\n", successIcon, c.Kind, pathStyle.Render(relToModule(reg.Path(c.Module), path)))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.template, "template", "t", stub.DefaultSet, "模板集名称")
	switch kind {
	case scaffold.KindController:
		f.BoolVar(&flags.api, "api", false, "生成 API 控制器")
		f.BoolVarP(&flags.resource, "resource", "r", false, "生成资源控制器")
	case scaffold.KindModel:
		f.BoolVarP(&flags.withMigration, "migration", "m", false, "同时生成建表迁移")
		f.BoolVarP(&flags.withFactory, "factory", "f", false, "同时生成工厂")
		f.BoolVarP(&flags.withSeeder, "seed", "s", false, "同时生成 seeder")
	case scaffold.KindMigration:
		f.StringVar(&flags.create, "create", "", "要创建的表名")
		f.StringVar(&flags.table, "table", "", "要修改的表名")
	case scaffold.KindTest:
		f.BoolVar(&flags.unit, "unit", false, "生成单元测试而不是功能测试")
	}
	return cmd
}

// expand 在模型之外追加 --migration/--factory/--seed 指定的配套组件。
func (f componentFlags) expand(base scaffold.Component) []scaffold.Component {
	out := []scaffold.Component{base}
	if base.Kind != scaffold.KindModel {
		return out
	}
	companion := func(kind scaffold.Kind, name string) scaffold.Component {
		return scaffold.Component{Kind: kind, Module: base.Module, Name: name, Template: base.Template}
	}
	if f.withMigration {
		m := companion(scaffold.KindMigration, scaffold.MigrationNameForModel(base.Name))
		m.Create = scaffold.Plural(strcase.ToSnake(base.Name))
		out = append(out, m)
	}
	if f.withFactory {
		out = append(out, companion(scaffold.KindFactory, base.Name+"Factory"))
	}
	if f.withSeeder {
		out = append(out, companion(scaffold.KindSeeder, base.Name+"Seeder"))
	}
	return out
}

func relToModule(modulePath, path string) string {
	if rel, err := filepath.Rel(modulePath, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}

func newTemplatesCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "列出可用的模板集",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, _, err := app.loadConfig()
			if err != nil {
				return err
			}
			reg, err := app.setup()
			if err != nil {
				return err
			}
			engine := reg.Generator().Engine()
			fmt.Fprintln(stdOut, titleStyle.Render("模板集"))
			for _, set := range engine.Templates() {
				note := ""
				if engine.Excludes(set, "model") {
					note = disabledStyle.Render(" (no model)")
				}
				fmt.Fprintf(stdOut, "  %s %s%s\n", infoIcon, set, note)
			}
			if cfg.Global.StubsPath != "" {
				state := "missing"
				if info, err := os.Stat(cfg.Global.StubsPath); err == nil && info.IsDir() {
					state = "found"
				}
				fmt.Fprintf(stdOut, "stubs path: %s (%s)\n", pathStyle.Render(cfg.Global.StubsPath), state)
			}
			if engine.Strict() {
				fmt.Fprintln(stdOut, warnStyle.Render("strict stubs: on"))
			}
			return nil
		},
	}
}
