package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modkit/modkit/internal/moduletest"
	"github.com/modkit/modkit/internal/registry"
)

func newTestCommand(app *cliApp) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "test [module]",
		Short: "运行单个模块或全部已启用模块的测试",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return usageError{err: err}
			}
			if all == (len(args) == 1) {
				return usageError{err: errors.New("请指定模块名或使用 --all（二者只能选其一）")}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := app.setup()
			if err != nil {
				return err
			}
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			runner := &moduletest.Runner{
				Command: app.cfg.Test.Command,
				WorkDir: wd,
				Stdout:  stdOut,
				Stderr:  stdErr,
				Logger:  app.logger,
			}

			ctx := cmd.Context()
			if !all {
				desc, err := reg.Get(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(stdOut, "%s 运行模块测试: %s\n", infoIcon, desc.Name)
				ran, err := runner.Run(ctx, desc.Path)
				if err != nil {
					return err
				}
				if !ran {
					fmt.Fprintf(stdOut, "%s 模块 %s 没有测试\n", warnStyle.Render("!"), desc.Name)
				}
				return nil
			}

			modules, err := reg.Enabled(ctx)
			if err != nil {
				return err
			}
			return runAllModuleTests(cmd, runner, modules)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "运行全部已启用模块的测试")
	return cmd
}

// runAllModuleTests 依次运行每个已启用模块的测试，汇总失败的模块。
func runAllModuleTests(cmd *cobra.Command, runner *moduletest.Runner, modules []registry.Descriptor) error {
	fmt.Fprintf(stdOut, "%s 共 %d 个已启用模块\n", infoIcon, len(modules))
	tested := 0
	var failed []string
	for _, m := range modules {
		if !moduletest.HasTests(m.Path) {
			continue
		}
		tested++
		fmt.Fprintf(stdOut, "%s 测试模块: %s\n", infoIcon, m.Name)
		if _, err := runner.Run(cmd.Context(), m.Path); err != nil {
			failed = append(failed, m.Name)
		}
	}

	renderKeyValues(stdOut, "测试汇总", [][2]string{
		{"total modules", fmt.Sprint(len(modules))},
		{"with tests", fmt.Sprint(tested)},
		{"failed", fmt.Sprint(len(failed))},
	})
	if len(failed) > 0 {
		return fmt.Errorf("模块测试失败: %s", strings.Join(failed, ", "))
	}
	fmt.Fprintf(stdOut, "%s 全部模块测试通过\n", successIcon)
	return nil
}
