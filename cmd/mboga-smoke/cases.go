// README: Smoke checks: environment probes plus the full order lifecycle over HTTP.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"mboga/internal/infra"
)

const (
	customerEmail = "smoke-customer@mboga.app"
	operatorEmail = "smoke-operator@mboga.app"
	riderEmail    = "smoke-rider@mboga.app"
	riderID       = "smoke-rider-1"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client

	customerToken string
	operatorToken string
	riderToken    string

	orderID int64
}

type Result struct {
	Status  string
	Latency time.Duration
	Note    string
}

type Check struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	verifier := infra.NewJWTVerifier(r.cfg.JWTSecret)
	r.customerToken, _ = verifier.Sign(customerEmail, "", time.Hour)
	r.operatorToken, _ = verifier.Sign(operatorEmail, "operator", time.Hour)
	r.riderToken, _ = verifier.Sign(riderEmail, "rider", time.Hour)

	checks := r.checks()
	results := make([]Result, 0, len(checks))

	for _, c := range checks {
		start := time.Now()
		res := c.Run(ctx, r)
		if res.Latency == 0 {
			res.Latency = time.Since(start)
		}
		results = append(results, res)
		fmt.Printf("%-7s %s (%s)", res.Status, c.Name, res.Latency.Round(time.Millisecond))
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

// doJSON issues one API request and decodes the response body into out when
// out is non-nil. The returned status is 0 on transport failure.
func (r *Runner) doJSON(ctx context.Context, method, path, token string, body, out any) (int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func (r *Runner) orderPath(suffix string) string {
	return fmt.Sprintf("/api/orders/%d%s", r.orderID, suffix)
}

func (r *Runner) checks() []Check {
	return []Check{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "no DSN"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "no address"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "API: health",
			Run: func(ctx context.Context, r *Runner) Result {
				status, err := r.doJSON(ctx, http.MethodGet, "/health", "", nil, nil)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusOK {
					return Result{Status: "FAIL", Note: fmt.Sprintf("status %d", status)}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "API: hub catalog",
			Run: func(ctx context.Context, r *Runner) Result {
				var resp struct {
					Hubs []struct {
						ID string `json:"id"`
					} `json:"hubs"`
				}
				status, err := r.doJSON(ctx, http.MethodGet, "/api/hubs", "", nil, &resp)
				if err != nil || status != http.StatusOK {
					return Result{Status: "FAIL", Note: fmt.Sprintf("status %d err %v", status, err)}
				}
				if len(resp.Hubs) == 0 {
					return Result{Status: "FAIL", Note: "empty catalog"}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("%d hubs", len(resp.Hubs))}
			},
		},
		{
			Name: "Auth: missing token rejected",
			Run: func(ctx context.Context, r *Runner) Result {
				status, err := r.doJSON(ctx, http.MethodGet, "/api/orders", "", nil, nil)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusUnauthorized {
					return Result{Status: "FAIL", Note: fmt.Sprintf("status %d, want 401", status)}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Order: create",
			Run: func(ctx context.Context, r *Runner) Result {
				var resp struct {
					OrderID int64  `json:"orderId"`
					Status  string `json:"status"`
				}
				status, err := r.doJSON(ctx, http.MethodPost, "/api/orders", r.customerToken, map[string]any{
					"items":           []map[string]any{{"productId": "sukuma", "qty": 2}, {"productId": "eggs", "qty": 1}},
					"deliveryMethod":  "delivery",
					"paymentMethod":   "mpesa",
					"totals":          map[string]any{"subtotal": 500, "deliveryFee": 50, "total": 550},
					"hubId":           "trm",
					"deliveryAddress": "Kasarani, Nairobi",
				}, &resp)
				if err != nil || status != http.StatusCreated {
					return Result{Status: "FAIL", Note: fmt.Sprintf("status %d err %v", status, err)}
				}
				if resp.Status != "confirmed" {
					return Result{Status: "FAIL", Note: "created as " + resp.Status}
				}
				r.orderID = resp.OrderID
				return Result{Status: "PASS", Note: fmt.Sprintf("order %d", resp.OrderID)}
			},
		},
		{
			Name: "Order: list for owner",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.orderID == 0 {
					return Result{Status: "SKIP", Note: "no order"}
				}
				var resp struct {
					Orders []struct {
						ID int64 `json:"id"`
					} `json:"orders"`
				}
				status, err := r.doJSON(ctx, http.MethodGet, "/api/orders", r.customerToken, nil, &resp)
				if err != nil || status != http.StatusOK {
					return Result{Status: "FAIL", Note: fmt.Sprintf("status %d err %v", status, err)}
				}
				for _, o := range resp.Orders {
					if o.ID == r.orderID {
						return Result{Status: "PASS"}
					}
				}
				return Result{Status: "FAIL", Note: "created order missing from list"}
			},
		},
		{
			Name: "Order: foreign caller sees 404",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.orderID == 0 {
					return Result{Status: "SKIP", Note: "no order"}
				}
				status, err := r.doJSON(ctx, http.MethodGet, r.orderPath("/status"), r.riderToken, nil, nil)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusNotFound {
					return Result{Status: "FAIL", Note: fmt.Sprintf("status %d, want 404", status)}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Order: operator advances status",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.orderID == 0 {
					return Result{Status: "SKIP", Note: "no order"}
				}
				status, err := r.doJSON(ctx, http.MethodPut, r.orderPath("/status"), r.operatorToken,
					map[string]any{"status": "dispatched"}, nil)
				if err != nil || status != http.StatusOK {
					return Result{Status: "FAIL", Note: fmt.Sprintf("status %d err %v", status, err)}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Rider: customer forbidden, rider accepted",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.orderID == 0 {
					return Result{Status: "SKIP", Note: "no order"}
				}
				body := map[string]any{"riderId": riderID, "lat": -1.2301, "lng": 36.8801}
				status, err := r.doJSON(ctx, http.MethodPut, r.orderPath("/rider-location"), r.customerToken, body, nil)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusForbidden {
					return Result{Status: "FAIL", Note: fmt.Sprintf("customer got %d, want 403", status)}
				}
				status, err = r.doJSON(ctx, http.MethodPut, r.orderPath("/rider-location"), r.riderToken, body, nil)
				if err != nil || status != http.StatusOK {
					return Result{Status: "FAIL", Note: fmt.Sprintf("rider got %d err %v", status, err)}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Track: view renders",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.orderID == 0 {
					return Result{Status: "SKIP", Note: "no order"}
				}
				var view struct {
					Freshness string `json:"freshness"`
					Status    string `json:"status"`
					Label     string `json:"label"`
				}
				status, err := r.doJSON(ctx, http.MethodGet, r.orderPath("/track"), r.customerToken, nil, &view)
				if err != nil || status != http.StatusOK {
					return Result{Status: "FAIL", Note: fmt.Sprintf("status %d err %v", status, err)}
				}
				if view.Freshness == "" || view.Label == "" {
					return Result{Status: "FAIL", Note: "incomplete view"}
				}
				return Result{Status: "PASS", Note: view.Freshness + "/" + view.Status}
			},
		},
		{
			Name: "Events: stream delivers snapshot and update",
			Run:  runEventStreamCheck,
		},
		{
			Name: "Loyalty: delivery accrues points",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.orderID == 0 {
					return Result{Status: "SKIP", Note: "no order"}
				}
				status, err := r.doJSON(ctx, http.MethodPut, r.orderPath("/status"), r.operatorToken,
					map[string]any{"status": "delivered"}, nil)
				if err != nil || status != http.StatusOK {
					return Result{Status: "FAIL", Note: fmt.Sprintf("deliver got %d err %v", status, err)}
				}
				var sum struct {
					Points int64 `json:"points"`
					Streak int   `json:"streak"`
				}
				status, err = r.doJSON(ctx, http.MethodGet, "/api/loyalty", r.customerToken, nil, &sum)
				if err != nil || status != http.StatusOK {
					return Result{Status: "FAIL", Note: fmt.Sprintf("summary got %d err %v", status, err)}
				}
				if sum.Points <= 0 || sum.Streak <= 0 {
					return Result{Status: "FAIL", Note: fmt.Sprintf("points=%d streak=%d", sum.Points, sum.Streak)}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("points=%d streak=%d", sum.Points, sum.Streak)}
			},
		},
		{
			Name: "Redis: rider geo recorded",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "no address"}
				}
				pos, err := r.redis.GeoPos(ctx, "mboga:riders:geo", riderID).Result()
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if len(pos) == 0 || pos[0] == nil {
					return Result{Status: "FAIL", Note: "rider missing from geo set"}
				}
				return Result{Status: "PASS"}
			},
		},
	}
}

// runEventStreamCheck holds the NDJSON stream open, watches the synthetic
// snapshot arrive, pushes a status change and waits for it on the stream.
func runEventStreamCheck(ctx context.Context, r *Runner) Result {
	if r.orderID == 0 {
		return Result{Status: "SKIP", Note: "no order"}
	}

	streamCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, r.cfg.BaseURL+r.orderPath("/events"), nil)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+r.customerToken)

	// Streaming: no client timeout, lifetime bounded by streamCtx.
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{Status: "FAIL", Note: fmt.Sprintf("status %d", resp.StatusCode)}
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				select {
				case lines <- line:
				case <-streamCtx.Done():
					return
				}
			}
		}
	}()

	// First line is the synthetic snapshot event.
	select {
	case line, ok := <-lines:
		if !ok {
			return Result{Status: "FAIL", Note: "stream closed before snapshot"}
		}
		if !strings.Contains(line, `"type":"status"`) {
			return Result{Status: "FAIL", Note: "unexpected first line: " + line}
		}
	case <-streamCtx.Done():
		return Result{Status: "FAIL", Note: "no snapshot before timeout"}
	}

	status, err := r.doJSON(streamCtx, http.MethodPut, r.orderPath("/status"), r.operatorToken,
		map[string]any{"status": "on_the_way"}, nil)
	if err != nil || status != http.StatusOK {
		return Result{Status: "FAIL", Note: fmt.Sprintf("push got %d err %v", status, err)}
	}

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return Result{Status: "FAIL", Note: "stream closed before update"}
			}
			if strings.Contains(line, `"on_the_way"`) {
				return Result{Status: "PASS"}
			}
		case <-streamCtx.Done():
			return Result{Status: "FAIL", Note: "update never arrived"}
		}
	}
}
