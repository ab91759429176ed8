package loadgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeAPI struct {
	mu      sync.Mutex
	methods map[string]int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.methods[r.Method+" "+strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)[0]]++
	f.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/products":
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "Product created successfully", "product": map[string]any{"id": 1}})
	case r.Method == http.MethodPost && r.URL.Path == "/users":
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "User created successfully", "user": map[string]any{"id": 2}})
	case r.Method == http.MethodGet && (r.URL.Path == "/products" || r.URL.Path == "/users"):
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	case strings.HasSuffix(r.URL.Path, "/not-a-number"):
		http.Error(w, "Product not found", http.StatusNotFound)
	default:
		_, _ = w.Write([]byte("ok"))
	}
}

func TestRunMixedProfileExercisesCRUD(t *testing.T) {
	api := &fakeAPI{methods: map[string]int{}}
	srv := httptest.NewServer(api)
	defer srv.Close()

	res, err := Run(context.Background(), Config{
		BaseURL:     srv.URL,
		Profile:     "mixed",
		Duration:    600 * time.Millisecond,
		RPS:         50,
		Concurrency: 2,
		Seed:        1,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.TotalRequests == 0 {
		t.Fatal("expected requests to be sent")
	}
	if res.Status5xx != 0 {
		t.Fatalf("unexpected 5xx count: %d", res.Status5xx)
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	for _, key := range []string{"GET products", "POST products", "GET users"} {
		if api.methods[key] == 0 {
			t.Fatalf("expected %s to be exercised, got %#v", key, api.methods)
		}
	}
}

func TestRunErrorHeavyProfileCounts4xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
	}))
	defer srv.Close()

	res, err := Run(context.Background(), Config{
		BaseURL:     srv.URL,
		Profile:     "error-heavy",
		Duration:    400 * time.Millisecond,
		RPS:         40,
		Concurrency: 2,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Status4xx == 0 || res.Status4xx != res.TotalRequests {
		t.Fatalf("expected only 4xx responses, got %+v", res)
	}
}

func TestRunRejectsUnknownProfile(t *testing.T) {
	if _, err := Run(context.Background(), Config{Profile: "chaos"}); err == nil {
		t.Fatal("expected unknown profile error")
	}
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{200: "2xx", 201: "2xx", 304: "3xx", 404: "4xx", 429: "4xx", 500: "5xx", 100: "other"}
	for code, want := range cases {
		if got := statusClass(code); got != want {
			t.Fatalf("statusClass(%d) = %s, want %s", code, got, want)
		}
	}
}

func TestSummarize(t *testing.T) {
	lines := summarize(Result{TotalRequests: 5, Status2xx: 4, Status4xx: 1})
	if len(lines) != 5 || lines[0] != "total_requests=5" || lines[3] != "status_4xx=1" {
		t.Fatalf("unexpected summary: %v", lines)
	}
}
