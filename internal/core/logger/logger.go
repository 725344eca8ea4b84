package logger

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// File 文件输出，按大小切割
type File struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Options struct {
	Level string // debug / info / warn / error，无法解析时为 info
	JSON  bool   // JSON 行；否则为带颜色的控制台格式
	File  *File  // nil 表示只写 stdout
	// 同一秒内同一条消息超过 Burst 条后只保留每 Thereafter 条
	Burst, Thereafter int
}

// Build 构建 logger；cleanup 会 Sync 并关闭日志文件
func Build(opt Options) (*zap.Logger, func()) {
	lvl := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	_ = lvl.UnmarshalText([]byte(opt.Level))

	enc := encoder(opt.JSON)
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.Lock(os.Stdout), lvl)}

	var rot *lumberjack.Logger
	if opt.File != nil {
		rot = &lumberjack.Logger{
			Filename:   opt.File.Path,
			MaxSize:    max(1, opt.File.MaxSizeMB),
			MaxBackups: max(0, opt.File.MaxBackups),
			MaxAge:     max(0, opt.File.MaxAgeDays),
			Compress:   opt.File.Compress,
		}
		// 文件始终写 JSON，便于采集
		cores = append(cores, zapcore.NewCore(encoder(true), zapcore.AddSync(rot), lvl))
	}

	burst, then := opt.Burst, opt.Thereafter
	if burst <= 0 {
		burst = 100
	}
	if then <= 0 {
		then = 100
	}
	core := zapcore.NewSamplerWithOptions(zapcore.NewTee(cores...), time.Second, burst, then)

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if !opt.JSON {
		opts = append(opts, zap.Development())
	}
	l := zap.New(core, opts...)
	return l, func() {
		_ = l.Sync()
		if rot != nil {
			_ = rot.Close()
		}
	}
}

func encoder(json bool) zapcore.Encoder {
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

type lineWriter struct {
	l     *zap.Logger
	level zapcore.Level
}

func (w lineWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\r\n"), "\n") {
		if ce := w.l.Check(w.level, line); ce != nil {
			ce.Write()
		}
	}
	return len(p), nil
}

// ToWriter 按行写入 zap（gin.DefaultWriter 等）
func ToWriter(l *zap.Logger, level zapcore.Level) io.Writer {
	return lineWriter{l: l.WithOptions(zap.WithCaller(false)), level: level}
}

// ToStdLogger http.Server.ErrorLog 等需要 *log.Logger 的场景
func ToStdLogger(l *zap.Logger, level zapcore.Level) (*log.Logger, error) {
	return zap.NewStdLogAt(l, level)
}

// RedirectStdLog 标准库 log 输出重定向到 zap，返回恢复函数
func RedirectStdLog(l *zap.Logger, level zapcore.Level) func() {
	undo, err := zap.RedirectStdLogAt(l, level)
	if err != nil {
		return func() {}
	}
	return undo
}
