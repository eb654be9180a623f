// Package moduletest runs a module's test suite through the host
// application's test runner, passing the module's tests directory as the
// final argument.
package moduletest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/modkit/modkit/internal/logging"
)

// Dir 是测试目录相对模块目录的位置。
const Dir = "tests"

// HasTests 判断模块是否带有测试目录。
func HasTests(modulePath string) bool {
	info, err := os.Stat(filepath.Join(modulePath, Dir))
	return err == nil && info.IsDir()
}

// Runner 调用外部测试命令，例如 vendor/bin/phpunit。
type Runner struct {
	// Command 是完整 argv，模块测试目录会追加在末尾。
	Command []string
	// WorkDir 是宿主应用根目录，测试目录相对它计算。
	WorkDir string
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  logrus.FieldLogger

	commandContext func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// Args 返回针对 modulePath 将要执行的 argv。
func (r *Runner) Args(modulePath string) ([]string, error) {
	if len(r.Command) == 0 || strings.TrimSpace(r.Command[0]) == "" {
		return nil, errors.New("test command not configured")
	}
	testsPath := filepath.Join(modulePath, Dir)
	target := testsPath
	if r.WorkDir != "" {
		if p, err := filepath.Rel(r.WorkDir, testsPath); err == nil && !strings.HasPrefix(p, "..") {
			target = p
		}
	}
	args := append([]string{}, r.Command...)
	return append(args, filepath.ToSlash(target)), nil
}

// Run 执行模块测试。模块没有测试目录时不执行任何命令，返回 (false, nil)。
func (r *Runner) Run(ctx context.Context, modulePath string) (bool, error) {
	logger := r.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	testsPath := filepath.Join(modulePath, Dir)
	if !HasTests(modulePath) {
		logger.WithField("path", testsPath).Debug("tests_absent")
		return false, nil
	}

	args, err := r.Args(modulePath)
	if err != nil {
		return false, err
	}

	newCmd := r.commandContext
	if newCmd == nil {
		newCmd = exec.CommandContext
	}
	cmd := newCmd(ctx, args[0], args[1:]...)
	cmd.Dir = r.WorkDir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		logger.WithFields(logrus.Fields{
			"path":    testsPath,
			"command": strings.Join(args, " "),
		}).WithError(err).Warn("module_tests_failed")
		return true, fmt.Errorf("run tests for %s: %w", modulePath, err)
	}
	logger.WithField("path", testsPath).Info("module_tests_passed")
	return true, nil
}
