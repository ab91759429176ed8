package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/inventory-crud-api/internal/config"
	"github.com/sandeepkv93/inventory-crud-api/internal/database"
	"github.com/sandeepkv93/inventory-crud-api/internal/health"
	"github.com/sandeepkv93/inventory-crud-api/internal/http/handler"
	"github.com/sandeepkv93/inventory-crud-api/internal/http/router"
	"github.com/sandeepkv93/inventory-crud-api/internal/repository"
	"github.com/sandeepkv93/inventory-crud-api/internal/security"
	"github.com/sandeepkv93/inventory-crud-api/internal/service"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.Config{DBDriver: config.DriverSQLite, DBName: "file::memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if err := database.EnsureSchema(db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return db
}

// newUnindexedSQLiteDB creates the tables the way an externally managed
// schema may: no unique index on products.product_code.
func newUnindexedSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.Config{DBDriver: config.DriverSQLite, DBName: "file::memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	for _, stmt := range []string{
		`CREATE TABLE products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			product_code TEXT NOT NULL,
			name TEXT NOT NULL,
			price REAL NOT NULL,
			product_quantity INTEGER NOT NULL
		)`,
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			email TEXT NOT NULL,
			password TEXT NOT NULL
		)`,
	} {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return db
}

// newTestServer serves the full router over db with a live list cache so
// invalidation is exercised end to end.
func newTestServer(t *testing.T, db *gorm.DB) (string, *http.Client) {
	t.Helper()

	cache := service.NewListCache(service.NewInMemoryListCacheStore(), time.Minute)
	hasher := security.NewPasswordHasher(security.Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 16, SaltLen: 8})
	productSvc := service.NewProductService(repository.NewProductRepository(db), cache)
	userSvc := service.NewUserService(repository.NewUserRepository(db), hasher, cache)

	r := router.NewRouter(router.Dependencies{
		ProductHandler:  handler.NewProductHandler(productSvc),
		UserHandler:     handler.NewUserHandler(userSvc),
		CORSOrigins:     []string{"http://localhost"},
		APIRateLimitRPM: 10000,
		Readiness:       health.NewProbeRunner(time.Second, health.NewDBChecker(db)),
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL, srv.Client()
}

func doRawText(t *testing.T, client *http.Client, method, url string, body any) (*http.Response, string) {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	return resp, buf.String()
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, out any) *http.Response {
	t.Helper()
	resp, raw := doRawText(t, client, method, url, body)
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal([]byte(raw), out); err != nil {
			t.Fatalf("decode %s %s response %q: %v", method, url, raw, err)
		}
	}
	return resp
}
