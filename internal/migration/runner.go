// Package migration lists and runs a module's database migrations by invoking
// the host application's migration command with the module's migrations path.
package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/modkit/modkit/internal/logging"
)

// Dir 是迁移文件相对模块目录的位置。
const Dir = "database/migrations"

// Pending 返回模块迁移目录下的 .php 文件名（排序后）。目录不存在时返回空列表。
func Pending(modulePath string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(modulePath, Dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".php") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

// Runner 调用外部迁移命令，例如 php artisan migrate。
type Runner struct {
	// Command 是完整 argv，--path 与 --force 会追加在末尾。
	Command []string
	// WorkDir 是宿主应用根目录，--path 相对它计算。
	WorkDir string
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  logrus.FieldLogger

	commandContext func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// Args 返回针对 modulePath 将要执行的 argv。
func (r *Runner) Args(modulePath string) ([]string, error) {
	if len(r.Command) == 0 || strings.TrimSpace(r.Command[0]) == "" {
		return nil, errors.New("migration command not configured")
	}
	migrationsPath := filepath.Join(modulePath, Dir)
	rel := migrationsPath
	if r.WorkDir != "" {
		if p, err := filepath.Rel(r.WorkDir, migrationsPath); err == nil && !strings.HasPrefix(p, "..") {
			rel = p
		}
	}
	args := append([]string{}, r.Command...)
	args = append(args, "--path="+filepath.ToSlash(rel), "--force")
	return args, nil
}

// Run 执行模块迁移。模块没有迁移目录时直接返回 nil。
func (r *Runner) Run(ctx context.Context, modulePath string) error {
	logger := r.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	migrationsPath := filepath.Join(modulePath, Dir)
	if info, err := os.Stat(migrationsPath); err != nil || !info.IsDir() {
		logger.WithField("path", migrationsPath).Debug("migrations_absent")
		return nil
	}

	args, err := r.Args(modulePath)
	if err != nil {
		return err
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
			"path":    migrationsPath,
			"command": strings.Join(args, " "),
		}).WithError(err).Error("migration_failed")
		return fmt.Errorf("run migrations for %s: %w", modulePath, err)
	}
	logger.WithField("path", migrationsPath).Info("migration_completed")
	return nil
}
