package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modkit/modkit/internal/version"
)

// printVersion 输出注入的版本 + 提交信息。
func printVersion() {
	fmt.Fprintln(stdOut, version.Full())
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			printVersion()
		},
	}
}
