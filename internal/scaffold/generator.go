// Package scaffold generates module skeletons and individual module
// components from stub templates. A new module is assembled in a hidden
// staging directory next to its destination and renamed into place only after
// every file has been written, so a failed generation never leaves a partial
// module behind.
package scaffold

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/modkit/modkit/internal/logging"
	"github.com/modkit/modkit/internal/moderr"
	"github.com/modkit/modkit/internal/stub"
)

// Plan 描述一次模块生成。
type Plan struct {
	Name     string
	Root     string
	Template string
}

// Destination 返回模块最终目录。
func (p Plan) Destination() string {
	return filepath.Join(p.Root, p.Name)
}

// Generator 基于 stub.Engine 生成模块与组件。
type Generator struct {
	engine *stub.Engine
	logger logrus.FieldLogger
	now    func() time.Time
	newID  func() string
}

// Option 调整 Generator 行为。
type Option func(*Generator)

// WithClock 替换时间来源，影响 CURRENT_* 占位符与迁移文件时间戳。
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithLogger 注入 logger。
func WithLogger(logger logrus.FieldLogger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New 创建 Generator。
func New(engine *stub.Engine, opts ...Option) *Generator {
	g := &Generator{
		engine: engine,
		logger: logging.Discard(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Engine 返回底层模板引擎。
func (g *Generator) Engine() *stub.Engine {
	return g.engine
}

// StagingPath 返回本次生成使用的临时目录，位于模块根目录下且以点开头，
// 因此不会被模块发现扫描到。
func (g *Generator) StagingPath(plan Plan) string {
	return filepath.Join(plan.Root, fmt.Sprintf(".%s.staging-%s", plan.Name, g.newID()))
}

// Generate 生成完整模块并返回最终目录。任何失败都会删除临时目录，
// 返回的错误为 ModuleCreationFailed 并包裹原因。
func (g *Generator) Generate(ctx context.Context, plan Plan) (string, error) {
	dest := plan.Destination()
	staging := g.StagingPath(plan)
	logger := g.logger.WithFields(logging.ModuleFields("module_generate", plan.Name, dest))

	if err := g.populate(ctx, plan, staging); err != nil {
		g.discard(staging, logger)
		logger.WithError(err).Error("module_generate_failed")
		return "", moderr.CreationFailed(plan.Name, dest, err)
	}
	if err := os.Rename(staging, dest); err != nil {
		g.discard(staging, logger)
		logger.WithError(err).Error("module_generate_failed")
		return "", moderr.CreationFailed(plan.Name, dest, err)
	}

	logger.WithField("template", plan.Template).Info("module_generated")
	return dest, nil
}

func (g *Generator) populate(ctx context.Context, plan Plan, staging string) error {
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return moderr.WriteFailed(staging, err)
	}
	for _, dir := range Directories {
		path := filepath.Join(staging, dir)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return moderr.WriteFailed(path, err)
		}
	}

	repl := stub.NewReplacements(plan.Name, g.now())
	for _, file := range Files(plan.Name) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if g.engine.Excludes(plan.Template, file.Stub) {
			continue
		}
		fileRepl := repl
		if file.Class != "" {
			fileRepl = repl.With(stub.KeyClassName, file.Class)
		}
		if err := g.engine.Write(file.Stub, plan.Template, fileRepl, filepath.Join(staging, file.Path)); err != nil {
			return err
		}
	}

	for _, keep := range KeepFiles {
		path := filepath.Join(staging, keep)
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return moderr.WriteFailed(path, err)
		}
	}
	return nil
}

func (g *Generator) discard(staging string, logger logrus.FieldLogger) {
	if err := os.RemoveAll(staging); err != nil {
		logger.WithField("staging", staging).WithError(err).Warn("module_staging_cleanup_failed")
	}
}
