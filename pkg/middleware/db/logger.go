package db

import (
	"context"
	"errors"
	"time"

	"github.com/nexussign/supply/pkg/middleware/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type gormLogger struct {
	level gormlogger.LogLevel
	slow  time.Duration
}

func newGormLogger(conf LogConf) gormlogger.Interface {
	level := gormlogger.Warn
	switch conf.Level {
	case "debug":
		level = gormlogger.Info
	case "error":
		level = gormlogger.Error
	case "silent":
		level = gormlogger.Silent
	}
	slow := conf.SlowThreshold
	if slow <= 0 {
		slow = 200 * time.Millisecond
	}
	return &gormLogger{level: level, slow: slow}
}

func (g *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *g
	c.level = level
	return &c
}

func (g *gormLogger) Info(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Info {
		logger.Infof(ctx, msg, args...)
	}
}

func (g *gormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Warn {
		logger.Warnf(ctx, msg, args...)
	}
}

func (g *gormLogger) Error(ctx context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Error {
		logger.Errorf(ctx, msg, args...)
	}
}

func (g *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && g.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		logger.Errorf(ctx, "sql err: %v [%s] rows: %d sql: %s", err, elapsed, rows, sql)
	case elapsed > g.slow && g.level >= gormlogger.Warn:
		sql, rows := fc()
		logger.Warnf(ctx, "slow sql [%s] rows: %d sql: %s", elapsed, rows, sql)
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		logger.Infof(ctx, "[%s] rows: %d sql: %s", elapsed, rows, sql)
	}
}
