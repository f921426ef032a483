package db

import (
	"context"
	"fmt"
	"time"

	"github.com/nexussign/supply/pkg/middleware/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"
)

type LogConf struct {
	Level         string
	SlowThreshold time.Duration
}

type Config struct {
	Host    string
	Port    int
	User    string
	PW      string
	DBName  string
	SSLMode string
	MaxIdle int
	MaxOpen int
	LogConf LogConf
}

func (c *Config) DSN() string {
	ssl := c.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.PW, c.DBName, ssl)
}

type txKey struct{}

// Datastore wraps the gorm handle. Transactions started by ExecTx travel in the context
// so repositories called inside fn join them without knowing.
type Datastore struct {
	db *gorm.DB
}

var store *Datastore

func InitPostgres(ctx context.Context, conf *Config) {
	ds, err := Open(ctx, conf)
	if err != nil {
		logger.Fatalf(ctx, "init postgres fail err: %+v", err)
	}
	store = ds
}

// Open connects without touching the package singleton; integration tests use it directly.
func Open(ctx context.Context, conf *Config) (*Datastore, error) {
	gdb, err := gorm.Open(postgres.Open(conf.DSN()), &gorm.Config{
		Logger:         newGormLogger(conf.LogConf),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if err := gdb.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		logger.Warnf(ctx, "register gorm tracing plugin err: %+v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if conf.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(conf.MaxIdle)
	}
	if conf.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(conf.MaxOpen)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Datastore{db: gdb}, nil
}

func ClosePostgres(ctx context.Context) {
	if store == nil {
		return
	}
	if sqlDB, err := store.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Errorf(ctx, "close postgres err: %+v", err)
		}
	}
}

func DB() *Datastore {
	return store
}

func (d *Datastore) DBIns() *gorm.DB {
	return d.db
}

// DBWithContext returns the transaction carried by ctx, or the root handle.
func (d *Datastore) DBWithContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return d.db.WithContext(ctx)
}

// ExecTx runs fn in a transaction. Called inside another ExecTx it opens a savepoint,
// so a failing fn rolls back only its own writes.
func (d *Datastore) ExecTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return d.DBWithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
