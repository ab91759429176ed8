package observability

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRedisMetricsHookCountsCommandsAndKeyspace(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(ctx) }()

	hook, err := newRedisMetricsHook(provider.Meter("redis-test"), client.PoolStats)
	if err != nil {
		t.Fatalf("create hook: %v", err)
	}
	client.AddHook(hook)

	if err := client.Set(ctx, "k", "v", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := client.Get(ctx, "k").Err(); err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := client.Get(ctx, "missing").Err(); err != redis.Nil {
		t.Fatalf("expected redis.Nil, got %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	if sums["redis.keyspace.hits"] != 1 || sums["redis.keyspace.misses"] != 1 {
		t.Fatalf("unexpected keyspace counts: %v", sums)
	}
	if sums["redis.command.total"] < 3 {
		t.Fatalf("expected at least 3 commands counted, got %d", sums["redis.command.total"])
	}
}

func TestClassifyRedisError(t *testing.T) {
	cases := map[string]string{
		"i/o timeout":        "timeout",
		"connection refused": "connection",
		"WRONGTYPE":          "other",
	}
	for msg, want := range cases {
		if got := classifyRedisError(errString(msg)); got != want {
			t.Fatalf("classify %q: got %s want %s", msg, got, want)
		}
	}
}

type errString string

func (e errString) Error() string { return string(e) }
