package observability

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var redisInstrumentationOnce sync.Once

// InstrumentRedisClient installs command metrics on client. Instrumentation is
// installed once per process.
func InstrumentRedisClient(client redis.UniversalClient, logger *slog.Logger) {
	if client == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	redisInstrumentationOnce.Do(func() {
		hook, err := newRedisMetricsHook(otel.Meter(meterName), client.PoolStats)
		if err != nil {
			logger.Warn("redis observability instrumentation disabled", "error", err)
			return
		}
		client.AddHook(hook)
		logger.Info("redis observability instrumentation enabled")
	})
}

type redisMetricsHook struct {
	cmdTotal       metric.Int64Counter
	cmdErrors      metric.Int64Counter
	cmdLatency     metric.Float64Histogram
	keyspaceHits   metric.Int64Counter
	keyspaceMisses metric.Int64Counter
}

func newRedisMetricsHook(meter metric.Meter, poolStats func() *redis.PoolStats) (*redisMetricsHook, error) {
	h := &redisMetricsHook{}
	var err error
	if h.cmdTotal, err = meter.Int64Counter("redis.command.total",
		metric.WithDescription("Total number of Redis commands executed")); err != nil {
		return nil, err
	}
	if h.cmdErrors, err = meter.Int64Counter("redis.command.errors",
		metric.WithDescription("Total number of Redis command errors")); err != nil {
		return nil, err
	}
	if h.cmdLatency, err = meter.Float64Histogram("redis.command.duration",
		metric.WithUnit("s"), metric.WithDescription("Redis command latency in seconds")); err != nil {
		return nil, err
	}
	if h.keyspaceHits, err = meter.Int64Counter("redis.keyspace.hits"); err != nil {
		return nil, err
	}
	if h.keyspaceMisses, err = meter.Int64Counter("redis.keyspace.misses"); err != nil {
		return nil, err
	}

	if poolStats != nil {
		saturation, err := meter.Float64ObservableGauge("redis.pool.saturation",
			metric.WithUnit("1"), metric.WithDescription("Redis pool saturation ratio (used_conns / total_conns)"))
		if err != nil {
			return nil, err
		}
		_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
			stats := poolStats()
			if stats != nil && stats.TotalConns > 0 {
				used := stats.TotalConns - stats.IdleConns
				o.ObserveFloat64(saturation, clampRatio(float64(used)/float64(stats.TotalConns)))
			}
			return nil
		}, saturation)
		if err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *redisMetricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *redisMetricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.observe(ctx, cmd, err)
		h.cmdLatency.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			attribute.String("command", strings.ToLower(cmd.Name())),
			attribute.String("status", redisCommandStatus(err)),
		))
		return err
	}
}

func (h *redisMetricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		h.cmdLatency.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			attribute.String("command", "pipeline"),
			attribute.String("status", redisCommandStatus(err)),
		))
		for _, cmd := range cmds {
			h.observe(ctx, cmd, cmd.Err())
		}
		return err
	}
}

func (h *redisMetricsHook) observe(ctx context.Context, cmd redis.Cmder, err error) {
	command := strings.ToLower(cmd.Name())
	h.cmdTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("status", redisCommandStatus(err)),
	))
	if err != nil && !errors.Is(err, redis.Nil) {
		h.cmdErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("command", command),
			attribute.String("error_type", classifyRedisError(err)),
		))
	}
	if command != "get" {
		return
	}
	switch {
	case errors.Is(err, redis.Nil):
		h.keyspaceMisses.Add(ctx, 1)
	case err == nil:
		h.keyspaceHits.Add(ctx, 1)
	}
}

func redisCommandStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, redis.Nil):
		return "miss"
	default:
		return "error"
	}
}

func classifyRedisError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "connection"), strings.Contains(msg, "refused"):
		return "connection"
	default:
		return "other"
	}
}

func clampRatio(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
