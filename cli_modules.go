package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modkit/modkit/internal/moderr"
	"github.com/modkit/modkit/internal/registry"
	"github.com/modkit/modkit/internal/stub"
)

func newListCommand(app *cliApp) *cobra.Command {
	var (
		onlyEnabled  bool
		onlyDisabled bool
		asJSON       bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "列出模块根目录下的全部模块",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if onlyEnabled && onlyDisabled {
				return usageError{err: errors.New("--enabled 与 --disabled 不能同时使用")}
			}
			reg, err := app.setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			var modules []registry.Descriptor
			switch {
			case onlyEnabled:
				modules, err = reg.Enabled(ctx)
			case onlyDisabled:
				modules, err = reg.Disabled(ctx)
			default:
				modules, err = reg.All(ctx)
			}
			if err != nil {
				return err
			}

			if asJSON {
				if modules == nil {
					modules = []registry.Descriptor{}
				}
				return writeJSON(stdOut, modules)
			}
			if len(modules) == 0 {
				fmt.Fprintf(stdOut, "%s 未发现模块: %s\n", infoIcon, pathStyle.Render(reg.Root()))
				return nil
			}
			renderModuleTable(stdOut, modules)
			return nil
		},
	}
	cmd.Flags().BoolVar(&onlyEnabled, "enabled", false, "只列出已启用的模块")
	cmd.Flags().BoolVar(&onlyDisabled, "disabled", false, "只列出已禁用的模块")
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出")
	return cmd
}

func newStatusCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "汇总模块启用状态与缓存情况",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := app.setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			all, err := reg.All(ctx)
			if err != nil {
				return err
			}
			enabled := 0
			for _, m := range all {
				if m.Enabled {
					enabled++
				}
			}
			cacheState := "disabled"
			if reg.Cache().Enabled() {
				cacheState = "enabled"
				if reg.Cache().Cached(ctx) {
					cacheState = "enabled (warm)"
				}
			}
			renderKeyValues(stdOut, "模块状态", [][2]string{
				{"modules path", reg.Root()},
				{"status file", reg.Status().Path()},
				{"total", fmt.Sprint(len(all))},
				{"enabled", fmt.Sprint(enabled)},
				{"disabled", fmt.Sprint(len(all) - enabled)},
				{"cache", cacheState},
			})
			if len(all) > 0 {
				renderModuleTable(stdOut, all)
			}
			return nil
		},
	}
}

func newEnableCommand(app *cliApp) *cobra.Command {
	return newToggleCommand(app, "enable", "启用模块", true)
}

func newDisableCommand(app *cliApp) *cobra.Command {
	return newToggleCommand(app, "disable", "禁用模块", false)
}

func newToggleCommand(app *cliApp, use, short string, enable bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <module>",
		Short: short,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := app.setup()
			if err != nil {
				return err
			}
			name := args[0]
			ctx := cmd.Context()
			if !reg.Exists(ctx, name) {
				fmt.Fprintf(stdErr, "%s 模块 %s 尚不存在，仍会记录其状态\n", warnStyle.Render("!"), name)
			}
			if enable {
				err = reg.Enable(ctx, name)
			} else {
				err = reg.Disable(ctx, name)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(stdOut, "%s %s: %s\n", successIcon, name, statusLabel(enable))
			return nil
		},
	}
}

func newMakeCommand(app *cliApp) *cobra.Command {
	var template string
	cmd := &cobra.Command{
		Use:   "make <module>",
		Short: "基于模板生成新模块",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := app.setup()
			if err != nil {
				return err
			}
			engine := reg.Generator().Engine()
			if !engine.HasTemplate(template) {
				return fmt.Errorf("模板 %q 不存在，可用模板: %s: %w",
					template, strings.Join(engine.Templates(), ", "), moderr.ErrTemplateNotFound)
			}

			desc, err := reg.Create(cmd.Context(), args[0], template)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdOut, "%s 已创建模块 %s\n", successIcon, titleStyle.Render(desc.Name))
			fmt.Fprintf(stdOut, "  %s\n", pathStyle.Render(desc.Path))
			fmt.Fprintf(stdOut, "  新模块默认禁用，执行 modkit enable %s 启用\n", desc.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&template, "template", "t", stub.DefaultSet, "模板集名称")
	return cmd
}

func newRemoveCommand(app *cliApp) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "remove <module>",
		Aliases: []string{"delete"},
		Short:   "删除模块目录及其状态记录",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := app.setup()
			if err != nil {
				return err
			}
			name := args[0]
			ctx := cmd.Context()
			desc, err := reg.Get(ctx, name)
			if err != nil {
				return err
			}
			if !force {
				ok, err := confirm(fmt.Sprintf("确认删除模块 %s (%s)?", name, desc.Path))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(stdOut, "已取消")
					return nil
				}
			}
			if err := reg.Delete(ctx, name); err != nil {
				return err
			}
			fmt.Fprintf(stdOut, "%s 已删除模块 %s\n", successIcon, name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "跳过确认")
	return cmd
}

// exactArgs 包装 cobra.ExactArgs，使参数个数错误按用法错误处理。
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError{err: err}
		}
		return nil
	}
}
