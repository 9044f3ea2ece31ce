// README: Config loader with env defaults for HTTP, DB, Redis, routing and pricing settings.
package config

import (
	"os"
	"strconv"
	"time"
)

type RoutingConfig struct {
	GoogleAPIKey   string
	OSRMBaseURL    string
	TimeoutSeconds int
	Segments       int
}

type PricingConfig struct {
	FilePath string
	Currency string
	GeoJSON  string
}

type CacheConfig struct {
	TTL time.Duration
}

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		// Empty disables the Postgres pricing-tables overlay.
		DSN string
	}
	Redis struct {
		// Empty selects the in-memory quote cache store.
		Addr string
	}
	Routing RoutingConfig
	Pricing PricingConfig
	Cache   CacheConfig
}

func Load() (Config, error) {
	var cfg Config
	cfg.HTTP.Addr = envOrDefault("TRATTA_HTTP_ADDR", ":8080")
	cfg.DB.DSN = envOrDefault("TRATTA_DB_DSN", "")
	cfg.Redis.Addr = envOrDefault("TRATTA_REDIS_ADDR", "")
	cfg.Routing.GoogleAPIKey = envOrDefault("GOOGLE_MAPS_API_KEY", "")
	cfg.Routing.OSRMBaseURL = envOrDefault("TRATTA_OSRM_URL", "")
	cfg.Routing.TimeoutSeconds = envOrDefaultInt("TRATTA_ROUTING_TIMEOUT", 5)
	cfg.Routing.Segments = envOrDefaultInt("TRATTA_ROUTE_SEGMENTS", 20)
	cfg.Pricing.FilePath = envOrDefault("TRATTA_PRICING_FILE", "")
	cfg.Pricing.Currency = envOrDefault("TRATTA_CURRENCY", "EUR")
	cfg.Pricing.GeoJSON = envOrDefault("TRATTA_ZONES_GEOJSON", "data/zones.geojson")
	cfg.Cache.TTL = time.Duration(envOrDefaultInt("TRATTA_CACHE_TTL_SECONDS", 60)) * time.Second
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
