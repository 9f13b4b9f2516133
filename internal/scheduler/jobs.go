package scheduler

import (
	"context"
	"log"
	"time"

	"pazar/internal/services/ledger"
	"pazar/internal/services/promotion"
)

const jobTimeout = 5 * time.Minute

// Jobs holds the periodic maintenance work.
type Jobs struct {
	ledger     ledger.Service
	promotions promotion.Service
	repair     bool
}

func NewJobs(ledgerService ledger.Service, promotionService promotion.Service, repair bool) *Jobs {
	return &Jobs{
		ledger:     ledgerService,
		promotions: promotionService,
		repair:     repair,
	}
}

// ReconcileBalances recomputes every user's balance from the ledger.
func (j *Jobs) ReconcileBalances() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	report, err := j.ledger.ReconcileAll(ctx, j.repair)
	if err != nil {
		log.Printf("component=scheduler job=reconcile msg=\"run failed\" err=%v", err)
		return
	}
	log.Printf("component=scheduler job=reconcile checked=%d mismatched=%d repaired=%d failed=%d duration=%s",
		report.Checked, report.Mismatched, report.Repaired, len(report.Failed), time.Since(start))
}

// ExpirePromotions expires unpaid promotions and ends elapsed featured periods.
func (j *Jobs) ExpirePromotions() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := j.promotions.ExpireStale(ctx); err != nil {
		log.Printf("component=scheduler job=promotion_expiry msg=\"run failed\" err=%v", err)
	}
}
