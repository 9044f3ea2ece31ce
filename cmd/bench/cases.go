// README: Smoke test cases for the quote API: endpoints, validation, dedup, and load.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
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
	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	return results
}

func quotePayload() map[string]any {
	return map[string]any{
		"pickup_lat":  41.75,
		"pickup_lng":  12.25,
		"dropoff_lat": 41.95,
		"dropoff_lng": 12.45,
		"pickup_time": time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339),
		"trip_type":   "1",
	}
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL

	singleCategory := quotePayload()
	singleCategory["vehicle_category"] = "standard_sedan"

	badLatitude := quotePayload()
	badLatitude["pickup_lat"] = 95.0

	badTripType := quotePayload()
	badTripType["trip_type"] = "3"

	return []TestCase{
		httpCaseMethod("Health", http.MethodGet, base+"/health", nil, []int{200}),
		httpCaseMethod("Config summary", http.MethodGet, base+"/config", nil, []int{200}),
		httpCase("Quote: all categories", base+"/check-price", quotePayload(), []int{200}),
		httpCase("Quote: single category", base+"/check-price", singleCategory, []int{200}),
		httpCase("Quote: rejects bad latitude", base+"/check-price", badLatitude, []int{400}),
		httpCase("Quote: rejects bad trip type", base+"/check-price", badTripType, []int{400}),
		httpCaseMethod("Refresh config", http.MethodPost, base+"/refresh-config", nil, []int{200}),
		{
			Name: "Dedup: concurrent identical quotes",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentQuotes(ctx, r, base+"/check-price")
			},
		},
		{
			Name: "Perf: cached quote load",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/check-price", quotePayload())
			},
		},
	}
}

func httpCase(name, url string, body any, okStatuses []int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, okStatuses)
}

func httpCaseMethod(name, method, url string, body any, okStatuses []int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			var reader io.Reader
			if body != nil {
				b, _ := json.Marshal(body)
				reader = strings.NewReader(string(b))
			}
			req, _ := http.NewRequestWithContext(ctx, method, url, reader)
			req.Header.Set("Content-Type", "application/json")
			start := time.Now()
			resp, err := r.httpc.Do(req)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			latency := time.Since(start)

			if contains(okStatuses, resp.StatusCode) {
				return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			}
			return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
		},
	}
}

// concurrentQuotes fires identical requests at once; the cache layer must
// collapse them onto one computation, observable through a shared request id.
func concurrentQuotes(ctx context.Context, r *Runner, url string) Result {
	payload := quotePayload()
	// A pickup time no other case uses, so this run starts cold.
	payload["pickup_time"] = time.Now().Add(30 * time.Hour).UTC().Format(time.RFC3339)
	b, _ := json.Marshal(payload)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ids      = map[string]int{}
		errCount int
	)
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
			req.Header.Set("Content-Type", "application/json")
			resp, err := r.httpc.Do(req)
			if err != nil {
				mu.Lock()
				errCount++
				mu.Unlock()
				return
			}
			var body struct {
				Details struct {
					RequestID string `json:"request_id"`
				} `json:"details"`
			}
			decodeErr := json.NewDecoder(resp.Body).Decode(&body)
			resp.Body.Close()
			mu.Lock()
			if decodeErr != nil || resp.StatusCode != http.StatusOK {
				errCount++
			} else {
				ids[body.Details.RequestID]++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if errCount > 0 {
		return Result{Status: "FAIL", Note: fmt.Sprintf("errors=%d", errCount)}
	}
	if len(ids) == 1 {
		return Result{Status: "PASS", Note: fmt.Sprintf("one computation across %d requests", r.cfg.Concurrency)}
	}
	return Result{Status: "FAIL", Note: fmt.Sprintf("distinct request ids=%d", len(ids))}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
				req.Header.Set("Content-Type", "application/json")
				resp, err := r.httpc.Do(req)
				if err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				mu.Lock()
				count++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
