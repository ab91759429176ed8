package health

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sandeepkv93/inventory-crud-api/internal/config"
	"github.com/sandeepkv93/inventory-crud-api/internal/database"
)

type mockChecker struct {
	result CheckResult
}

func (m mockChecker) Check(context.Context) CheckResult {
	return m.result
}

type deadlineChecker struct{}

func (deadlineChecker) Check(ctx context.Context) CheckResult {
	<-ctx.Done()
	return CheckResult{Name: "slow", Healthy: false, Error: ctx.Err().Error()}
}

func TestProbeRunnerReady(t *testing.T) {
	runner := NewProbeRunner(200*time.Millisecond,
		mockChecker{result: CheckResult{Name: "db", Healthy: true}},
		mockChecker{result: CheckResult{Name: "redis", Healthy: true}},
	)
	ready, results := runner.Ready(context.Background())
	if !ready {
		t.Fatal("expected ready")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}

func TestProbeRunnerUnready(t *testing.T) {
	runner := NewProbeRunner(200*time.Millisecond,
		mockChecker{result: CheckResult{Name: "db", Healthy: true}},
		mockChecker{result: CheckResult{Name: "redis", Healthy: false, Error: errors.New("down").Error()}},
	)
	ready, results := runner.Ready(context.Background())
	if ready {
		t.Fatal("expected unready")
	}
	if len(results) != 2 || results[1].Error != "down" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestProbeRunnerSkipsNilCheckers(t *testing.T) {
	runner := NewProbeRunner(0, NewRedisChecker(nil), NewDBChecker(nil))
	ready, results := runner.Ready(context.Background())
	if !ready || len(results) != 0 {
		t.Fatalf("expected ready with no checks, got ready=%v results=%+v", ready, results)
	}
}

func TestProbeRunnerAppliesTimeout(t *testing.T) {
	runner := NewProbeRunner(20*time.Millisecond, deadlineChecker{})
	start := time.Now()
	ready, results := runner.Ready(context.Background())
	if ready {
		t.Fatal("expected unready on timeout")
	}
	if time.Since(start) > time.Second {
		t.Fatal("expected check to be bounded by probe timeout")
	}
	if results[0].LatencyMS <= 0 {
		t.Fatalf("expected latency to be recorded, got %+v", results[0])
	}
}

func TestNilProbeRunnerIsReady(t *testing.T) {
	var runner *ProbeRunner
	ready, results := runner.Ready(context.Background())
	if !ready || results == nil {
		t.Fatalf("expected ready with empty results, got %v %v", ready, results)
	}
}

func TestDBChecker(t *testing.T) {
	cfg := &config.Config{DBDriver: config.DriverSQLite, DBName: filepath.Join(t.TempDir(), "health.db")}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	checker := NewDBChecker(db)
	if res := checker.Check(context.Background()); !res.Healthy || res.Name != "db" {
		t.Fatalf("expected healthy db, got %+v", res)
	}

	if err := database.Close(db); err != nil {
		t.Fatalf("close db: %v", err)
	}
	if res := checker.Check(context.Background()); res.Healthy {
		t.Fatal("expected unhealthy after close")
	}
}

func TestRedisChecker(t *testing.T) {
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	checker := NewRedisChecker(client)
	if res := checker.Check(context.Background()); !res.Healthy {
		t.Fatalf("expected healthy redis, got %+v", res)
	}

	m.Close()
	if res := checker.Check(context.Background()); res.Healthy || res.Error == "" {
		t.Fatalf("expected unhealthy redis after shutdown, got %+v", res)
	}
}
