// README: Entry point; loads config, wires services, starts HTTP server and background jobs.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"rotacusto/internal/config"
	httptransport "rotacusto/internal/http"
	"rotacusto/internal/infra"
	"rotacusto/internal/modules/history"
	"rotacusto/internal/modules/pricing"
	"rotacusto/internal/modules/quote"
	"rotacusto/internal/modules/routecache"
	"rotacusto/internal/routing"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	if err := infra.InitSchema(ctx, dbPool); err != nil {
		log.Fatal(err)
	}

	var cacheStore routecache.Store
	if cfg.Cache.Backend == "redis" {
		cacheStore = routecache.NewRedisStore(infra.NewRedis(cfg.Redis.Addr))
	} else {
		cacheStore = routecache.NewPostgresStore(dbPool)
	}
	cacheSvc := routecache.NewService(cacheStore, cfg.Cache.WriteQueueLen)

	var provider routing.Provider
	if cfg.Provider.Name == "qualp" {
		if cfg.Provider.QualPAPIKey == "" {
			log.Fatal("QUALP_API_KEY is required")
		}
		provider = routing.NewQualPProvider(cfg.Provider.QualPBaseURL, cfg.Provider.QualPAPIKey)
	} else {
		if cfg.Provider.GoogleAPIKey == "" {
			log.Fatal("GOOGLE_MAPS_API_KEY is required")
		}
		provider, err = routing.NewGoogleProvider(cfg.Provider.GoogleAPIKey, cfg.Provider.Region)
		if err != nil {
			log.Fatal(err)
		}
	}
	resilient := routing.NewResilient(provider, cfg.Provider.Timeout)

	pricingSvc := pricing.NewService(pricing.NewStore(dbPool), cfg.Pricing.OperationalRatePerK)
	historySvc := history.NewService(history.NewPostgresStore(dbPool))

	quoteSvc := quote.NewService(cacheSvc, resilient, pricingSvc, historySvc, quote.Defaults{
		FuelPricePerLiter: cfg.Pricing.FuelPricePerLiter,
	})

	go cacheSvc.Run(ctx)
	go cacheSvc.RunCleanup(ctx, cfg.Cache.CleanupEvery, cfg.Cache.MaxAgeDays)

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: httptransport.NewRouter(quoteSvc)}

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	log.Printf("listening addr=%s cache=%s provider=%s", cfg.HTTP.Addr, cfg.Cache.Backend, cfg.Provider.Name)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
