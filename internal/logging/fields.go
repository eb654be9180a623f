package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// ModuleFields 提供模块名/目录字段，供注册表与脚手架日志复用。
func ModuleFields(action, name, path string) logrus.Fields {
	fields := logrus.Fields{
		"action": action,
		"module": name,
	}
	if path != "" {
		fields["path"] = path
	}
	return fields
}

// Discard 返回丢弃所有输出的 logger，适用于未注入 logger 的组件与测试。
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
