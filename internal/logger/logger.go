package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Fields 结构化日志字段
type Fields map[string]interface{}

var current atomic.Pointer[zerolog.Logger]

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	l := newLogger(zerolog.InfoLevel, os.Stdout, true)
	current.Store(&l)
}

// Configure 按配置重建全局 logger，console 为 true 时输出人类可读格式。
func Configure(level string, console bool) {
	l := newLogger(parseLevel(level), os.Stdout, console)
	current.Store(&l)
}

// SetOutput 将日志重定向到指定 writer（JSON 格式），返回恢复函数，主要用于测试。
func SetOutput(w io.Writer) func() {
	prev := current.Load()
	l := newLogger(prev.GetLevel(), w, false)
	current.Store(&l)
	return func() { current.Store(prev) }
}

func newLogger(level zerolog.Level, out io.Writer, console bool) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	if console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// L 返回当前全局 logger，供需要直接使用 zerolog API 的调用方。
func L() *zerolog.Logger {
	return current.Load()
}

func emit(event *zerolog.Event, msg string, fields Fields) {
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(msg)
}

func Debug(msg string, fields Fields) { emit(L().Debug(), msg, fields) }

func Info(msg string, fields Fields) { emit(L().Info(), msg, fields) }

func Warn(msg string, fields Fields) { emit(L().Warn(), msg, fields) }

func Error(msg string, fields Fields) { emit(L().Error(), msg, fields) }

// Fatal 记录日志后以状态码 1 退出进程
func Fatal(msg string, fields Fields) { emit(L().Fatal(), msg, fields) }
