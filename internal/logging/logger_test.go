package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modkit/modkit/internal/config"
)

func TestInitLoggerDefaultsToConsole(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := InitLogger(config.GlobalConfig{LogLevel: "info"}, buf)
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	if logger.Out != buf {
		t.Fatalf("未指定文件时应输出到 console writer")
	}

	logger.WithFields(ModuleFields("discover", "Blog", "/tmp/modules/Blog")).Info("hello")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("日志应为 JSON: %v (%s)", err, buf.String())
	}
	if entry["module"] != "Blog" || entry["action"] != "discover" {
		t.Fatalf("字段缺失: %v", entry)
	}
}

func TestInitLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := InitLogger(config.GlobalConfig{LogLevel: "loud"}, nil); err == nil {
		t.Fatalf("未知日志级别应返回错误")
	}
}

func TestInitLoggerFallbackOnPermissionDenied(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	if err := os.Mkdir(blocked, 0o755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	if err := os.Chmod(blocked, 0o000); err != nil {
		t.Fatalf("设置目录权限失败: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(blocked, 0o755) })
	if os.Geteuid() == 0 {
		t.Skip("root 用户不受目录权限限制")
	}

	buf := &bytes.Buffer{}
	cfg := config.GlobalConfig{
		LogLevel:    "info",
		LogFilePath: filepath.Join(blocked, "sub", "modkit.log"),
	}
	logger, err := InitLogger(cfg, buf)
	if err != nil {
		t.Fatalf("初始化不应失败: %v", err)
	}
	if logger.Out != buf {
		t.Fatalf("fallback 时应退回 console writer")
	}
	if !bytes.Contains(buf.Bytes(), []byte("logger_fallback")) {
		t.Fatalf("应记录 logger_fallback: %s", buf.String())
	}
}

func TestInitLoggerCreatesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "modkit.log")
	cfg := config.GlobalConfig{LogLevel: "debug", LogFilePath: path}
	logger, err := InitLogger(cfg, nil)
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	logger.Info("test")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("预期创建日志文件: %v", err)
	}
}
