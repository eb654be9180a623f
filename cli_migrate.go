package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modkit/modkit/internal/migration"
)

func newMigrateCommand(app *cliApp) *cobra.Command {
	var (
		pending bool
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:   "migrate <module>",
		Short: "执行模块的数据库迁移",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := app.setup()
			if err != nil {
				return err
			}
			desc, err := reg.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if pending {
				files, err := migration.Pending(desc.Path)
				if err != nil {
					return err
				}
				if len(files) == 0 {
					fmt.Fprintf(stdOut, "%s %s 没有迁移文件\n", infoIcon, desc.Name)
					return nil
				}
				for _, f := range files {
					fmt.Fprintf(stdOut, "  %s %s\n", infoIcon, f)
				}
				return nil
			}

			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			runner := &migration.Runner{
				Command: app.cfg.Migrate.Command,
				WorkDir: wd,
				Stdout:  stdOut,
				Stderr:  stdErr,
				Logger:  app.logger,
			}
			if dryRun {
				argv, err := runner.Args(desc.Path)
				if err != nil {
					return err
				}
				fmt.Fprintln(stdOut, strings.Join(argv, " "))
				return nil
			}
			if err := runner.Run(cmd.Context(), desc.Path); err != nil {
				return err
			}
			fmt.Fprintf(stdOut, "%s %s 迁移完成\n", successIcon, desc.Name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&pending, "pending", false, "只列出迁移文件")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "打印将要执行的命令")
	return cmd
}
