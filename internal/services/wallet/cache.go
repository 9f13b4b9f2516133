package wallet

import (
	"context"
	"log"

	"github.com/shopspring/decimal"
)

// cachedBalance returns the cached balance for userID, recording hit or miss.
func (s *service) cachedBalance(ctx context.Context, userID uint) (decimal.Decimal, bool) {
	balance, found, err := s.balances.GetBalance(ctx, userID)
	if err != nil {
		log.Printf("component=wallet msg=\"balance cache read failed\" user_id=%d err=%v", userID, err)
		s.metrics.RecordError("cache_get", err.Error())
		return decimal.Zero, false
	}
	if !found {
		s.metrics.RecordCacheMiss("balance")
		return decimal.Zero, false
	}
	s.metrics.RecordCacheHit("balance")
	return balance, true
}

func (s *service) storeBalance(ctx context.Context, userID uint, balance decimal.Decimal) {
	if err := s.balances.SetBalance(ctx, userID, balance); err != nil {
		log.Printf("component=wallet msg=\"balance cache write failed\" user_id=%d err=%v", userID, err)
	}
}

// invalidate drops cached balances after a committed mutation.
func (s *service) invalidate(ctx context.Context, userIDs ...uint) {
	if err := s.balances.Invalidate(ctx, userIDs...); err != nil {
		log.Printf("component=wallet msg=\"balance cache invalidation failed\" user_ids=%v err=%v", userIDs, err)
	}
}
