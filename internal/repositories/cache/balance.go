package cache

import (
	"context"

	"github.com/shopspring/decimal"
)

// BalanceCache holds recently read wallet balances. It is never authoritative:
// the users.balance column is, and every committed mutation invalidates the entry.
type BalanceCache interface {
	GetBalance(ctx context.Context, userID uint) (decimal.Decimal, bool, error)
	SetBalance(ctx context.Context, userID uint, balance decimal.Decimal) error
	Invalidate(ctx context.Context, userIDs ...uint) error
}

type redisBalanceCache struct {
	svc *CacheService
}

// NewBalanceCache stores balances under wallet:user:<id>.
func NewBalanceCache(svc *CacheService) BalanceCache {
	return &redisBalanceCache{svc: svc}
}

func (c *redisBalanceCache) key(userID uint) string {
	return c.svc.GenerateKey("wallet", "user", userID)
}

func (c *redisBalanceCache) GetBalance(ctx context.Context, userID uint) (decimal.Decimal, bool, error) {
	var balance decimal.Decimal
	found, err := c.svc.Get(ctx, c.key(userID), &balance)
	if err != nil || !found {
		return decimal.Zero, false, err
	}
	return balance, true, nil
}

func (c *redisBalanceCache) SetBalance(ctx context.Context, userID uint, balance decimal.Decimal) error {
	return c.svc.Set(ctx, c.key(userID), balance)
}

func (c *redisBalanceCache) Invalidate(ctx context.Context, userIDs ...uint) error {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, c.key(id))
	}
	return c.svc.Delete(ctx, keys...)
}

// NoopBalanceCache is used when Redis is not configured.
type NoopBalanceCache struct{}

func (NoopBalanceCache) GetBalance(context.Context, uint) (decimal.Decimal, bool, error) {
	return decimal.Zero, false, nil
}

func (NoopBalanceCache) SetBalance(context.Context, uint, decimal.Decimal) error { return nil }

func (NoopBalanceCache) Invalidate(context.Context, ...uint) error { return nil }
