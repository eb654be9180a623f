package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/modkit/modkit/internal/perf"
)

func newCacheCommand(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "管理模块发现缓存",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "清除发现缓存",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				reg, err := app.setup()
				if err != nil {
					return err
				}
				if err := reg.Invalidate(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(stdOut, "%s 已清除缓存 %s\n", successIcon, reg.Cache().Key())
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "查看缓存配置与本次进程的性能指标",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				reg, err := app.setup()
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				c := reg.Cache()
				cached := c.Cached(ctx)
				// 执行一次发现，使性能指标里包含 module_discovery。
				if _, err := reg.Discover(ctx); err != nil {
					return err
				}
				renderKeyValues(stdOut, "发现缓存", [][2]string{
					{"enabled", fmt.Sprint(c.Enabled())},
					{"key", c.Key()},
					{"lifetime", c.Lifetime().String()},
					{"cached", fmt.Sprint(cached)},
				})
				renderSummary(reg.Tracker().Summary())
				return nil
			},
		},
	)
	return cmd
}

func newOptimizeCommand(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "optimize",
		Short: "重建发现缓存",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := app.setup()
			if err != nil {
				return err
			}
			count, err := reg.Optimize(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(stdOut, "%s 已缓存 %d 个模块\n", successIcon, count)
			return nil
		},
	}
}

func renderSummary(s perf.Summary) {
	if s.TotalOperations == 0 {
		return
	}
	rows := [][2]string{
		{"operations", fmt.Sprint(s.TotalOperations)},
		{"total", s.TotalDuration.Round(time.Microsecond).String()},
		{"average", s.AverageDuration.Round(time.Microsecond).String()},
		{"memory", fmt.Sprintf("%d B", s.TotalMemory)},
	}
	for _, op := range s.Operations {
		rows = append(rows, [2]string{"op", op})
	}
	renderKeyValues(stdOut, "性能", rows)
}
