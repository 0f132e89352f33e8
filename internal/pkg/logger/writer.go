package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// LogWriter 把 gorm 日志写入与 zap 相同的输出
type LogWriter struct {
	zapcore.WriteSyncer
}

func (l *LogWriter) Printf(format string, args ...interface{}) {
	line := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	_, _ = l.WriteSyncer.Write([]byte("[SQL] " + line + "\n"))
	_ = l.WriteSyncer.Sync()
}

// GetWriter gorm logger 使用的 writer, Init 之后切换到配置的输出
func GetWriter() *LogWriter {
	return logWriter
}
