package global

import (
	"go.uber.org/zap"
)

// Logger 主日志器，服务启动时由 cmd 装配
var Logger *zap.Logger = zap.NewNop()

func Log() *zap.Logger {
	return Logger
}
