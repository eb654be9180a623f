package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
	stdIn  io.Reader = os.Stdin
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run 构建命令树并执行，返回退出码，方便测试。参数错误返回 2，其余失败返回 1。
func run(args []string) int {
	root := newRootCommand(&cliApp{})
	root.SetArgs(args)
	root.SetOut(stdOut)
	root.SetErr(stdErr)
	root.SetIn(stdIn)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stdErr, "错误: %v\n", err)
		var usage usageError
		if errors.As(err, &usage) {
			return 2
		}
		return 1
	}
	return 0
}
