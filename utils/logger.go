package utils

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/cppla/postboard/config"
)

var (
	// Logger is the global structured logger
	Logger = zap.NewNop()
	// Sugar is a sugared logger for convenience
	Sugar = Logger.Sugar()
)

// InitLogger initializes a zap logger with console + rolling file outputs based on configuration.
func InitLogger(cfg config.AppConfig) error {
	level := parseLevel(cfg.LogLevel)
	enabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= level })
	encoder := zapcore.NewJSONEncoder(encoderConfig())

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), enabler),
	}
	if cfg.LogPath != "" {
		cores = append(cores, zapcore.NewCore(encoder, rollingWriter(cfg.LogPath, cfg), enabler))
	}

	opts := []zap.Option{zap.AddCaller()}
	if cfg.LogLevel == "debug" {
		opts = append(opts, zap.Development())
	}
	Logger = zap.New(zapcore.NewTee(cores...), opts...)
	Sugar = Logger.Sugar()
	return nil
}

// NewRollingFileLogger builds a file-only logger, used for the HTTP access log.
// An empty path yields a no-op logger.
func NewRollingFileLogger(path string, cfg config.AppConfig) *zap.Logger {
	if path == "" {
		return zap.NewNop()
	}
	level := parseLevel(cfg.LogLevel)
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		rollingWriter(path, cfg),
		zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= level }),
	)
	return zap.New(core)
}

func rollingWriter(path string, cfg config.AppConfig) zapcore.WriteSyncer {
	if dir := filepath.Dir(path); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    nz(cfg.LogMaxSizeMB, 100), // megabytes
		MaxBackups: nz(cfg.LogMaxBackups, 3),
		MaxAge:     nz(cfg.LogMaxAgeDays, 7), // days
		Compress:   cfg.LogCompress,
	})
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     timeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
}

func parseLevel(s string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func nz(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
