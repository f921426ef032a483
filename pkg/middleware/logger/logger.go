package logger

import (
	"context"
	"os"
	"sync/atomic"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ServiceEnv struct {
	Platform string
	Service  string
	Env      string
}

type LogConfig struct {
	Path       string
	LogLevel   string
	MaxSizeMB  int
	MaxBackups int
	ServiceEnv ServiceEnv
}

var (
	sugar  atomic.Pointer[otelzap.SugaredLogger]
	writer *lumberjack.Logger
)

func init() {
	sugar.Store(otelzap.New(zap.NewNop()).Sugar())
}

// Init replaces the no-op logger with a zap core writing to stderr and a rotating file.
func Init(conf *LogConfig) {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(conf.LogLevel)); err != nil {
		level = zapcore.InfoLevel
	}

	encConf := zap.NewProductionEncoderConfig()
	encConf.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encConf)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level),
	}
	if conf.Path != "" {
		writer = &lumberjack.Logger{
			Filename:   conf.Path,
			MaxSize:    orDefault(conf.MaxSizeMB, 100),
			MaxBackups: orDefault(conf.MaxBackups, 7),
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(writer), level))
	}

	base := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.Fields(
			zap.String("platform", conf.ServiceEnv.Platform),
			zap.String("service", conf.ServiceEnv.Service),
			zap.String("env", conf.ServiceEnv.Env),
		))

	sugar.Store(otelzap.New(base,
		otelzap.WithMinLevel(level),
		otelzap.WithTraceIDField(true),
	).Sugar())
}

// Replace swaps in l and returns a func restoring the previous logger.
func Replace(l *zap.Logger) func() {
	prev := sugar.Swap(otelzap.New(l).Sugar())
	return func() { sugar.Store(prev) }
}

func Close() {
	_ = sugar.Load().Sync()
	if writer != nil {
		_ = writer.Close()
	}
}

func orDefault(v, d int) int {
	if v <= 0 {
		return d
	}
	return v
}

func Debugf(ctx context.Context, format string, args ...any) {
	sugar.Load().Ctx(ctx).Debugf(format, args...)
}

func Infof(ctx context.Context, format string, args ...any) {
	sugar.Load().Ctx(ctx).Infof(format, args...)
}

func Warnf(ctx context.Context, format string, args ...any) {
	sugar.Load().Ctx(ctx).Warnf(format, args...)
}

func Errorf(ctx context.Context, format string, args ...any) {
	sugar.Load().Ctx(ctx).Errorf(format, args...)
}

func Fatalf(ctx context.Context, format string, args ...any) {
	sugar.Load().Ctx(ctx).Fatalf(format, args...)
}
