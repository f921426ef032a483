package trace

import (
	"context"
	"errors"
	"time"

	"github.com/nexussign/supply/pkg/middleware/logger"
	"go.opentelemetry.io/contrib/instrumentation/host"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type InitConfig struct {
	ServiceName    string
	Version        string
	Env            string
	TraceEndpoint  string
	MetricEndpoint string
	Insecure       bool
	// Stdout exports to stdout when no endpoint is configured.
	Stdout         bool
	MetricInterval time.Duration
}

var shutdowns []func(context.Context) error

// InitTrace installs global tracer and meter providers. Without endpoints and without
// Stdout the providers still run so spans carry ids into the logs.
func InitTrace(ctx context.Context, conf *InitConfig) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", conf.ServiceName),
			attribute.String("service.version", conf.Version),
			attribute.String("deployment.environment", conf.Env),
		),
		resource.WithHost(),
		resource.WithProcessRuntimeName(),
	)
	if err != nil {
		logger.Warnf(ctx, "build trace resource err: %+v", err)
		res = resource.Default()
	}

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if exp, err := traceExporter(ctx, conf); err != nil {
		logger.Errorf(ctx, "init trace exporter err: %+v", err)
	} else if exp != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))
	shutdowns = append(shutdowns, tp.Shutdown)

	mpOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if exp, err := metricExporter(ctx, conf); err != nil {
		logger.Errorf(ctx, "init metric exporter err: %+v", err)
	} else if exp != nil {
		interval := conf.MetricInterval
		if interval <= 0 {
			interval = 30 * time.Second
		}
		mpOpts = append(mpOpts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))))
	}
	mp := sdkmetric.NewMeterProvider(mpOpts...)
	otel.SetMeterProvider(mp)
	shutdowns = append(shutdowns, mp.Shutdown)

	if err := runtime.Start(runtime.WithMeterProvider(mp)); err != nil {
		logger.Warnf(ctx, "start runtime metrics err: %+v", err)
	}
	if err := host.Start(host.WithMeterProvider(mp)); err != nil {
		logger.Warnf(ctx, "start host metrics err: %+v", err)
	}
}

func traceExporter(ctx context.Context, conf *InitConfig) (sdktrace.SpanExporter, error) {
	switch {
	case conf.TraceEndpoint != "":
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(conf.TraceEndpoint)}
		if conf.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, opts...)
	case conf.Stdout:
		return stdouttrace.New()
	default:
		return nil, nil
	}
}

func metricExporter(ctx context.Context, conf *InitConfig) (sdkmetric.Exporter, error) {
	switch {
	case conf.MetricEndpoint != "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(conf.MetricEndpoint)}
		if conf.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		return otlpmetricgrpc.New(ctx, opts...)
	case conf.Stdout:
		return stdoutmetric.New()
	default:
		return nil, nil
	}
}

func CloseTrace() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var errs []error
	for i := len(shutdowns) - 1; i >= 0; i-- {
		errs = append(errs, shutdowns[i](ctx))
	}
	shutdowns = nil
	if err := errors.Join(errs...); err != nil {
		logger.Errorf(ctx, "close trace err: %+v", err)
	}
}
