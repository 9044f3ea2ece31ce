// README: Entry point; loads config, wires services, starts HTTP server and background sweeper.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tratta/internal/config"
	"tratta/internal/geo"
	httptransport "tratta/internal/http"
	"tratta/internal/infra"
	"tratta/internal/modules/pricing"
	"tratta/internal/modules/quotecache"
	"tratta/internal/routing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pricingStore *pricing.Store
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		pricingStore = pricing.NewStore(dbPool)
	} else {
		log.Printf("no database configured, pricing tables come from file and defaults")
	}

	geoIndex := geo.Load(cfg.Pricing.GeoJSON)
	log.Printf("zone index ready: %d zones", geoIndex.Len())

	var providers []routing.Provider
	if cfg.Routing.GoogleAPIKey != "" {
		google, err := routing.NewGoogleProvider(cfg.Routing.GoogleAPIKey)
		if err != nil {
			log.Fatalf("google maps init: %v", err)
		}
		providers = append(providers, google)
	}
	if cfg.Routing.OSRMBaseURL != "" {
		providers = append(providers, routing.NewOSRMProvider(cfg.Routing.OSRMBaseURL))
	}
	resolver := routing.NewResolver(providers...).
		WithSegments(cfg.Routing.Segments).
		WithProviderTimeout(time.Duration(cfg.Routing.TimeoutSeconds) * time.Second)

	loader := pricing.NewLoader(pricingStore, cfg.Pricing.FilePath, cfg.Pricing.Currency)
	attributor := pricing.NewAttributor(geoIndex)
	pricingSvc := pricing.NewService(ctx, resolver, attributor, loader)

	var cacheStore quotecache.Store
	if cfg.Redis.Addr != "" {
		cacheStore = quotecache.NewRedisStore(infra.NewRedis(cfg.Redis.Addr))
	} else {
		cacheStore = quotecache.NewMemoryStore()
	}
	cacheSvc := quotecache.NewService(cacheStore, cfg.Cache.TTL)

	router := httptransport.NewRouter(httptransport.ServerDeps{
		Pricing: pricingSvc,
		Cache:   cacheSvc,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go cacheSvc.RunSweeper(ctx)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
