// Command reconcile recomputes wallet balances from the transaction ledger.
//
//	reconcile            check every user
//	reconcile -user 42   check one user
//	reconcile -repair    overwrite drifted balances
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"pazar/internal/config"
	"pazar/internal/repositories"
	"pazar/internal/repositories/cache"
	"pazar/internal/services/ledger"
)

func main() {
	userID := flag.Uint("user", 0, "check a single user id")
	repair := flag.Bool("repair", false, "overwrite balances that differ from the ledger")
	flag.Parse()

	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("component=reconcile msg=\"invalid configuration\" err=%v", err)
	}

	ctx := context.Background()
	db, err := repositories.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("component=reconcile msg=\"database unavailable\" err=%v", err)
	}
	defer db.Close()

	var balances cache.BalanceCache = cache.NoopBalanceCache{}
	if addr := cfg.RedisAddr(); addr != "" {
		client := cache.NewRedisClient(cache.RedisConfig{Addr: addr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer client.Close()
		balances = cache.NewBalanceCache(cache.NewCacheService(client, cfg.BalanceCacheTTL))
	}

	svc := ledger.NewService(repositories.NewStore(db.DB), balances)

	if *userID != 0 {
		check, err := svc.Recompute(ctx, *userID, *repair)
		if err != nil {
			log.Fatalf("component=reconcile msg=\"recompute failed\" user_id=%d err=%v", *userID, err)
		}
		log.Printf("component=reconcile user_id=%d cached=%s computed=%s matched=%t repaired=%t",
			check.UserID, check.Cached, check.Computed, check.Matched, check.Repaired)
		if !check.Matched && !check.Repaired {
			os.Exit(1)
		}
		return
	}

	report, err := svc.ReconcileAll(ctx, *repair)
	if err != nil {
		log.Fatalf("component=reconcile msg=\"sweep failed\" err=%v", err)
	}
	log.Printf("component=reconcile checked=%d mismatched=%d repaired=%d failed=%v",
		report.Checked, report.Mismatched, report.Repaired, report.Failed)
	if report.Mismatched > report.Repaired || len(report.Failed) > 0 {
		os.Exit(1)
	}
}
