package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/inventory-crud-api/internal/observability"
)

type Config struct {
	BaseURL     string
	Profile     string
	Duration    time.Duration
	RPS         int
	Concurrency int
	Seed        int64
}

type Result struct {
	TotalRequests int64
	Failures      int64
	Status2xx     int64
	Status4xx     int64
	Status5xx     int64
}

type scenario func(ctx context.Context, c *client, rng *rand.Rand)

// Run drives profile scenarios at roughly cfg.RPS until cfg.Duration elapses.
func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:3003"
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 15
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	profile := strings.ToLower(cfg.Profile)
	if profile == "" {
		profile = "mixed"
	}
	scenarios := scenariosForProfile(profile)
	if len(scenarios) == 0 {
		return Result{}, fmt.Errorf("unknown profile: %s", cfg.Profile)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	c := &client{
		http:    &http.Client{Timeout: 5 * time.Second},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		profile: profile,
	}
	jobs := make(chan scenario, cfg.Concurrency*2)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(cfg.Seed + int64(worker)))
			for s := range jobs {
				s(ctx, c, rng)
			}
		}(i)
	}

	ticker := time.NewTicker(time.Second / time.Duration(cfg.RPS))
	defer ticker.Stop()
	i := 0
	for {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return c.result(), nil
		case <-ticker.C:
			select {
			case jobs <- scenarios[i%len(scenarios)]:
				i++
			default:
			}
		}
	}
}

func scenariosForProfile(profile string) []scenario {
	switch profile {
	case "read":
		return []scenario{listProducts, listUsers}
	case "mixed":
		return []scenario{listProducts, productLifecycle, listUsers, userLifecycle, listProducts}
	case "error-heavy":
		return []scenario{missingFields, unknownIDs, duplicateCode}
	default:
		return nil
	}
}

type client struct {
	http    *http.Client
	baseURL string
	profile string

	total, failures, s2xx, s4xx, s5xx atomic.Int64
}

func (c *client) result() Result {
	return Result{
		TotalRequests: c.total.Load(),
		Failures:      c.failures.Load(),
		Status2xx:     c.s2xx.Load(),
		Status4xx:     c.s4xx.Load(),
		Status5xx:     c.s5xx.Load(),
	}
}

// do sends one request and decodes a JSON response into out when non-nil.
// It returns the status code, or 0 on transport failure.
func (c *client) do(ctx context.Context, method, path string, body any, out any) int {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.failures.Add(1)
			return 0
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		c.failures.Add(1)
		return 0
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			c.failures.Add(1)
			observability.RecordLoadgenRequest(ctx, "transport_error", c.profile)
		}
		return 0
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		_ = json.NewDecoder(resp.Body).Decode(out)
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	c.total.Add(1)
	class := statusClass(resp.StatusCode)
	switch class {
	case "2xx":
		c.s2xx.Add(1)
	case "4xx":
		c.s4xx.Add(1)
	case "5xx":
		c.s5xx.Add(1)
	}
	observability.RecordLoadgenRequest(ctx, class, c.profile)
	return resp.StatusCode
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "other"
	}
}

type productBody struct {
	ProductCode     string  `json:"product_code"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	ProductQuantity int     `json:"product_quantity"`
}

type createdEnvelope struct {
	Product *struct {
		ID uint `json:"id"`
	} `json:"product"`
	User *struct {
		ID uint `json:"id"`
	} `json:"user"`
}

func newProductBody(rng *rand.Rand) productBody {
	return productBody{
		ProductCode:     "LG-" + uuid.NewString(),
		Name:            "loadgen item",
		Price:           float64(rng.Intn(10000)) / 100,
		ProductQuantity: rng.Intn(500),
	}
}

func listProducts(ctx context.Context, c *client, _ *rand.Rand) {
	c.do(ctx, http.MethodGet, "/products", nil, nil)
}

func listUsers(ctx context.Context, c *client, _ *rand.Rand) {
	c.do(ctx, http.MethodGet, "/users", nil, nil)
}

func productLifecycle(ctx context.Context, c *client, rng *rand.Rand) {
	body := newProductBody(rng)
	var created createdEnvelope
	if c.do(ctx, http.MethodPost, "/products", body, &created) != http.StatusCreated || created.Product == nil {
		return
	}
	path := fmt.Sprintf("/products/%d", created.Product.ID)
	body.ProductQuantity++
	c.do(ctx, http.MethodPut, path, body, nil)
	c.do(ctx, http.MethodDelete, path, nil, nil)
}

func userLifecycle(ctx context.Context, c *client, _ *rand.Rand) {
	id := uuid.NewString()
	var created createdEnvelope
	status := c.do(ctx, http.MethodPost, "/users", map[string]string{
		"username": "lg-" + id[:8],
		"email":    "lg-" + id[:8] + "@example.com",
		"password": id,
	}, &created)
	if status != http.StatusCreated || created.User == nil {
		return
	}
	path := fmt.Sprintf("/users/%d", created.User.ID)
	c.do(ctx, http.MethodGet, path, nil, nil)
	c.do(ctx, http.MethodDelete, path, nil, nil)
}

func missingFields(ctx context.Context, c *client, _ *rand.Rand) {
	c.do(ctx, http.MethodPost, "/products", map[string]string{"name": "incomplete"}, nil)
	c.do(ctx, http.MethodPost, "/users", map[string]string{"username": "incomplete"}, nil)
}

func unknownIDs(ctx context.Context, c *client, rng *rand.Rand) {
	id := 1_000_000_000 + rng.Intn(1_000_000)
	c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, nil)
	c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil)
	c.do(ctx, http.MethodPut, "/products/not-a-number", newProductBody(rng), nil)
}

func duplicateCode(ctx context.Context, c *client, rng *rand.Rand) {
	body := newProductBody(rng)
	var created createdEnvelope
	if c.do(ctx, http.MethodPost, "/products", body, &created) != http.StatusCreated || created.Product == nil {
		return
	}
	c.do(ctx, http.MethodPost, "/products", body, nil)
	c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", created.Product.ID), nil, nil)
}
