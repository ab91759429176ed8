package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env      string
	HTTPPort string

	DBDriver    string
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	LogLevel string

	CORSAllowedOrigins []string
	APIRateLimitPerMin int

	RateLimitRedisEnabled bool
	RateLimitRedisPrefix  string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int

	ListCacheTTL          time.Duration
	ListCacheRedisEnabled bool
	ListCacheRedisPrefix  string

	ReadinessProbeTimeout        time.Duration
	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
}

// LoadDotEnv reads KEY=VALUE pairs from path into the process environment.
// Variables already set are left untouched and a missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")
	// HOST, USER, PASSWORD and DATABASE collide with common shell variables,
	// so they are read only when DB_LEGACY_ENV opts in.
	legacy := getEnvBool("DB_LEGACY_ENV", false)

	cfg := &Config{
		Env:      env,
		HTTPPort: getEnvFirst([]string{"HTTP_PORT", "PORT"}, "3003"),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnvFirst(dbEnvKeys("DB_HOST", "HOST", legacy), "localhost"),
		DBPort:      os.Getenv("DB_PORT"),
		DBUser:      getEnvFirst(dbEnvKeys("DB_USER", "USER", legacy), ""),
		DBPassword:  getEnvFirst(dbEnvKeys("DB_PASSWORD", "PASSWORD", legacy), ""),
		DBName:      getEnvFirst(dbEnvKeys("DB_NAME", "DATABASE", legacy), ""),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		APIRateLimitPerMin: getEnvInt("API_RATE_LIMIT_PER_MIN", 600),

		RateLimitRedisEnabled: getEnvBool("RATE_LIMIT_REDIS_ENABLED", false),
		RateLimitRedisPrefix:  getEnv("RATE_LIMIT_REDIS_PREFIX", "rl"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               getEnvInt("REDIS_DB", 0),

		ListCacheRedisEnabled: getEnvBool("LIST_CACHE_REDIS_ENABLED", false),
		ListCacheRedisPrefix:  getEnv("LIST_CACHE_REDIS_PREFIX", "list_cache"),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "inventory-crud-api"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", false),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", false),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", false),
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"LIST_CACHE_TTL", "0s", &cfg.ListCacheTTL},
		{"READINESS_PROBE_TIMEOUT", "1s", &cfg.ReadinessProbeTimeout},
		{"SHUTDOWN_TIMEOUT", "20s", &cfg.ShutdownTimeout},
		{"SHUTDOWN_HTTP_DRAIN_TIMEOUT", "10s", &cfg.ShutdownHTTPDrainTimeout},
		{"SHUTDOWN_OBSERVABILITY_TIMEOUT", "8s", &cfg.ShutdownObservabilityTimeout},
		{"OTEL_METRICS_EXPORT_INTERVAL", "10s", &cfg.OTELMetricsExportInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.HTTPPort == "" {
		errs = append(errs, "HTTP_PORT is required")
	} else if n, err := strconv.Atoi(c.HTTPPort); err != nil || n <= 0 || n > 65535 {
		errs = append(errs, "HTTP_PORT must be a valid TCP port")
	}
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres:
		if c.DBDriver == DriverMySQL && c.DatabaseURL != "" {
			if _, err := mysql.ParseDSN(c.DatabaseURL); err != nil {
				errs = append(errs, "DATABASE_URL is not a valid mysql DSN")
			}
		}
		if c.DatabaseURL == "" {
			if c.DBUser == "" {
				errs = append(errs, "DB_USER is required when DATABASE_URL is not set")
			}
			if c.DBName == "" {
				errs = append(errs, "DB_NAME is required when DATABASE_URL is not set")
			}
		}
	case DriverSQLite:
		if c.DatabaseURL == "" && c.DBName == "" {
			errs = append(errs, "DATABASE_URL or DB_NAME is required for sqlite")
		}
	default:
		errs = append(errs, "DB_DRIVER must be one of mysql, postgres, sqlite")
	}
	if !isValidLogLevel(c.LogLevel) {
		errs = append(errs, "LOG_LEVEL must be one of debug, info, warn, error")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if (c.RateLimitRedisEnabled || c.ListCacheRedisEnabled) && c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required when a redis feature is enabled")
	}
	if c.ListCacheTTL < 0 {
		errs = append(errs, "LIST_CACHE_TTL must be >= 0")
	}
	if c.ReadinessProbeTimeout <= 0 {
		errs = append(errs, "READINESS_PROBE_TIMEOUT must be > 0")
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT must be > 0")
	}
	if c.ShutdownHTTPDrainTimeout > c.ShutdownTimeout {
		errs = append(errs, "SHUTDOWN_HTTP_DRAIN_TIMEOUT must be <= SHUTDOWN_TIMEOUT")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsEnabled && c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// DSN returns the driver-specific connection string. DATABASE_URL wins when
// set; mysql DSNs always carry clientFoundRows so an UPDATE that matches a row
// without changing it still reports one affected row.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		if c.DBDriver == DriverMySQL {
			return withClientFoundRows(c.DatabaseURL)
		}
		return c.DatabaseURL
	}
	switch c.DBDriver {
	case DriverPostgres:
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.DBUser, c.DBPassword),
			Host:     net.JoinHostPort(c.DBHost, port),
			Path:     "/" + c.DBName,
			RawQuery: "sslmode=disable",
		}
		return u.String()
	case DriverSQLite:
		return c.DBName
	default:
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&clientFoundRows=true",
			c.DBUser, c.DBPassword, net.JoinHostPort(c.DBHost, port), c.DBName)
	}
}

func withClientFoundRows(dsn string) string {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil || mc.ClientFoundRows {
		return dsn
	}
	mc.ClientFoundRows = true
	return mc.FormatDSN()
}

func dbEnvKeys(primary, legacyName string, legacy bool) []string {
	if legacy {
		return []string{primary, legacyName}
	}
	return []string{primary}
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvFirst(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
