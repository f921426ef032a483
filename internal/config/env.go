package config

import "time"

type Database struct {
	Host     string `mapstructure:"DATABASE_HOST" default:"localhost"`
	Port     int    `mapstructure:"DATABASE_PORT" default:"5432"`
	Name     string `mapstructure:"DATABASE_NAME" default:"supply"`
	User     string `mapstructure:"DATABASE_USER" default:"postgres"`
	Password string `mapstructure:"DATABASE_PASSWORD" default:"supply"`
	SSLMode  string `mapstructure:"DATABASE_SSLMODE" default:"disable"`
	MaxIdle  int    `mapstructure:"DATABASE_MAX_IDLE" default:"10"`
	MaxOpen  int    `mapstructure:"DATABASE_MAX_OPEN" default:"50"`
}

type Redis struct {
	Host     string `mapstructure:"REDIS_HOST" default:"127.0.0.1"`
	Port     int    `mapstructure:"REDIS_PORT" default:"6379"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB" default:"0"`
}

type Server struct {
	Platform string `mapstructure:"PLATFORM" default:"nexussign"`
	Service  string `mapstructure:"SERVICE" default:"supply"`
	Port     int    `mapstructure:"WEB_PORT" default:"8080"`
	Env      string `mapstructure:"ENV" default:"dev"`
}

type Log struct {
	LogPath    string `mapstructure:"LOG_PATH" default:"./info.log"`
	LogLevel   string `mapstructure:"LOG_LEVEL" default:"info"`
	MaxSizeMB  int    `mapstructure:"LOG_MAX_SIZE_MB" default:"100"`
	MaxBackups int    `mapstructure:"LOG_MAX_BACKUPS" default:"7"`
}

type Trace struct {
	Version        string `mapstructure:"TRACE_VERSION" default:"0.0.1"`
	TraceEndpoint  string `mapstructure:"TRACE_TRACEENDPOINT" default:""`
	MetricEndpoint string `mapstructure:"TRACE_METRICENDPOINT" default:""`
	Insecure       bool   `mapstructure:"TRACE_INSECURE" default:"true"`
	Stdout         bool   `mapstructure:"TRACE_STDOUT" default:"false"`
}

type Mail struct {
	RelayAddr   string        `mapstructure:"MAIL_RELAY_ADDR" default:"http://127.0.0.1:8025"`
	APIKey      string        `mapstructure:"MAIL_API_KEY"`
	FromAddress string        `mapstructure:"MAIL_FROM_ADDRESS" default:"purchasing@nexussign.local"`
	FromName    string        `mapstructure:"MAIL_FROM_NAME" default:"NexusSign Purchasing"`
	Timeout     time.Duration `mapstructure:"MAIL_TIMEOUT" default:"30s"`
}

type Job struct {
	EmailPoolSize  int           `mapstructure:"JOB_EMAIL_POOL_SIZE" default:"8"`
	ReceiptLockTTL time.Duration `mapstructure:"JOB_RECEIPT_LOCK_TTL" default:"30s"`
}

type Client struct {
	APIAddr string        `mapstructure:"SUPPLY_API_ADDR" default:"http://127.0.0.1:8080"`
	Timeout time.Duration `mapstructure:"SUPPLY_API_TIMEOUT" default:"15s"`
}
