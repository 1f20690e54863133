// Package log 提供基于 zerolog 的全局日志，stderr 输出 console 或 json，文件输出经 lumberjack 轮转.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yeisme/reportvault/pkg/configs"
)

var (
	logger   zerolog.Logger
	initOnce sync.Once
)

// Init 初始化全局 logger，应在配置加载完成后调用；之前取得的 logger 使用默认配置.
func Init() {
	initOnce.Do(func() { logger = build(configs.GetConfig()) })
}

// Logger 返回全局 logger.
func Logger() *zerolog.Logger {
	Init()

	return &logger
}

// Component 返回带 component 字段的子 logger，如 folders、reports、bulk、events.
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

func parseLevel(s string) zerolog.Level {
	if s == "" {
		return zerolog.InfoLevel
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q, defaulting to info\n", s)

		return zerolog.InfoLevel
	}

	return lvl
}

func build(cfg *configs.AppConfig) zerolog.Logger {
	lc := cfg.Log
	zerolog.SetGlobalLevel(parseLevel(lc.Level))

	var stderr io.Writer = os.Stderr
	if lc.Format != "json" {
		stderr = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stderr
			w.TimeFormat = time.Kitchen
		})
	}

	out := stderr
	if lc.EnableFile && lc.FilePath != "" {
		out = zerolog.MultiLevelWriter(stderr, &lumberjack.Logger{
			Filename:   lc.FilePath,
			MaxSize:    lc.MaxSize,
			MaxBackups: lc.MaxBackups,
			MaxAge:     lc.MaxAge,
			Compress:   lc.Compress,
		})
	}

	zc := zerolog.New(out).With().Timestamp().Str("app", configs.AppName)

	if cfg.Server.Debug {
		zc = zc.Caller()

		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	l := zc.Logger()
	log.Logger = l

	return l
}

// GinWriter 把 gin 自身输出的文本行（路由表、panic 信息）转为日志事件.
type GinWriter struct {
	logger *zerolog.Logger
	level  zerolog.Level
}

func NewGinWriter(logger *zerolog.Logger, level zerolog.Level) *GinWriter {
	return &GinWriter{logger: logger, level: level}
}

func (w *GinWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimSpace(string(p)), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			w.logger.WithLevel(w.level).Str("source", "gin").Msg(line)
		}
	}

	return len(p), nil
}
