// README: Cache maintenance binary; cleanup, stats, and manual stale marking.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"rotacusto/internal/config"
	"rotacusto/internal/infra"
	"rotacusto/internal/modules/routecache"
)

func main() {
	cleanupDays := flag.Int("cleanup", 0, "delete entries not seen in N days")
	stats := flag.Bool("stats", false, "print cache statistics")
	staleKey := flag.String("stale", "", "mark the given cache key stale")
	flag.Parse()

	if *cleanupDays == 0 && !*stats && *staleKey == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	var store routecache.Store
	if cfg.Cache.Backend == "redis" {
		store = routecache.NewRedisStore(infra.NewRedis(cfg.Redis.Addr))
	} else {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer dbPool.Close()
		store = routecache.NewPostgresStore(dbPool)
	}
	svc := routecache.NewService(store, 1)

	if *staleKey != "" {
		if err := svc.MarkStale(ctx, *staleKey); err != nil {
			log.Fatalf("mark stale: %v", err)
		}
		fmt.Printf("marked stale key=%s\n", *staleKey)
	}

	if *cleanupDays > 0 {
		removed, err := svc.Cleanup(ctx, *cleanupDays)
		if err != nil {
			log.Fatalf("cleanup: %v", err)
		}
		fmt.Printf("removed %d entries older than %d days\n", removed, *cleanupDays)
	}

	if *stats {
		st, err := svc.Stats(ctx)
		if err != nil {
			log.Fatalf("stats: %v", err)
		}
		fmt.Printf("entries=%d hits=%d\n", st.TotalEntries, st.TotalHits)
		if st.OldestFirstSeen != nil {
			fmt.Printf("oldest_first_seen=%s newest_first_seen=%s\n",
				st.OldestFirstSeen.Format("2006-01-02"), st.NewestFirstSeen.Format("2006-01-02"))
		}
	}
}
