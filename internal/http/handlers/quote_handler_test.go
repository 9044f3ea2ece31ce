// README: Handler tests for the quote and operational endpoints.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"tratta/internal/geo"
	"tratta/internal/http/handlers"
	"tratta/internal/modules/pricing"
	"tratta/internal/modules/quotecache"
	"tratta/internal/routing"
	"tratta/internal/types"
)

// lineResolver routes every pair as the straight line between them.
type lineResolver struct{}

func (lineResolver) Resolve(_ context.Context, pickup, dropoff types.Point, _ time.Time) routing.Route {
	return routing.Route{
		DistanceKm: geo.HaversineKm(pickup, dropoff),
		Points:     []types.Point{pickup, dropoff},
		Source:     routing.SourceInterpolated,
	}
}

func buildTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	loader := pricing.NewLoader(nil, "", "")
	attributor := pricing.NewAttributor(geo.EmergencyIndex())
	pricingSvc := pricing.NewService(context.Background(), lineResolver{}, attributor, loader)
	cacheSvc := quotecache.NewService(quotecache.NewMemoryStore(), quotecache.DefaultTTL)

	r := gin.New()
	quoteHandler := handlers.NewQuoteHandler(pricingSvc, cacheSvc)
	r.POST("/check-price", quoteHandler.CheckPrice)
	adminHandler := handlers.NewAdminHandler(pricingSvc)
	r.GET("/health", adminHandler.Health)
	r.GET("/config", adminHandler.Config)
	r.POST("/refresh-config", adminHandler.Refresh)
	return r
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func validBody() map[string]any {
	return map[string]any{
		"pickup_lat":  45.0,
		"pickup_lng":  7.0,
		"dropoff_lat": 45.5,
		"dropoff_lng": 7.5,
		"pickup_time": "2026-03-10T11:00:00Z",
		"trip_type":   "1",
	}
}

func TestCheckPrice_AllCategories(t *testing.T) {
	r := buildTestRouter(t)
	rec := doRequest(r, http.MethodPost, "/check-price", validBody())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var res pricing.QuoteResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(res.Prices) != 10 {
		t.Errorf("got %d prices, want 10", len(res.Prices))
	}
	for _, p := range res.Prices {
		if p.Price <= 0 || p.Currency != "EUR" {
			t.Errorf("%s: price=%v currency=%q", p.Category, p.Price, p.Currency)
		}
	}
	if res.Details.RequestID == "" {
		t.Errorf("missing request id")
	}
	if res.Details.PickupLocation.Lat != 45.0 {
		t.Errorf("pickup echo = %+v", res.Details.PickupLocation)
	}
}

func TestCheckPrice_IntegerTripTypeAccepted(t *testing.T) {
	r := buildTestRouter(t)
	body := validBody()
	body["trip_type"] = 2
	rec := doRequest(r, http.MethodPost, "/check-price", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestCheckPrice_RepeatedRequestServedFromCache(t *testing.T) {
	r := buildTestRouter(t)

	var first, second pricing.QuoteResult
	rec := doRequest(r, http.MethodPost, "/check-price", validBody())
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatal(err)
	}
	rec = doRequest(r, http.MethodPost, "/check-price", validBody())
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatal(err)
	}

	// A cached response carries the original request id verbatim.
	if first.Details.RequestID != second.Details.RequestID {
		t.Errorf("request ids differ across an identical repeat: %s vs %s",
			first.Details.RequestID, second.Details.RequestID)
	}
}

func TestCheckPrice_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]any)
		wantMsg string
	}{
		{"missing pickup_lat", func(b map[string]any) { delete(b, "pickup_lat") }, "pickup_lat"},
		{"latitude out of range", func(b map[string]any) { b["dropoff_lat"] = 95.0 }, "dropoff_lat"},
		{"longitude out of range", func(b map[string]any) { b["pickup_lng"] = -200.0 }, "pickup_lng"},
		{"missing pickup_time", func(b map[string]any) { delete(b, "pickup_time") }, "pickup_time"},
		{"bad trip type", func(b map[string]any) { b["trip_type"] = "3" }, "trip_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := buildTestRouter(t)
			body := validBody()
			tt.mutate(body)
			rec := doRequest(r, http.MethodPost, "/check-price", body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
			if !bytes.Contains(rec.Body.Bytes(), []byte(tt.wantMsg)) {
				t.Errorf("error %s does not name %q", rec.Body.String(), tt.wantMsg)
			}
		})
	}
}

func TestHealthAndConfig(t *testing.T) {
	r := buildTestRouter(t)

	rec := doRequest(r, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte("healthy")) {
		t.Errorf("health: %d %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(r, http.MethodGet, "/config", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("config: %d", rec.Code)
	}
	var conf struct {
		Categories []string `json:"vehicle_categories"`
		Currency   string   `json:"currency"`
		Zones      []string `json:"zones"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &conf); err != nil {
		t.Fatal(err)
	}
	if len(conf.Categories) != 10 || conf.Currency != "EUR" || len(conf.Zones) == 0 {
		t.Errorf("config summary = %+v", conf)
	}

	rec = doRequest(r, http.MethodPost, "/refresh-config", nil)
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte("success")) {
		t.Errorf("refresh: %d %s", rec.Code, rec.Body.String())
	}
}
