package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"

	domainerrors "pazar/internal/errors"
	"pazar/internal/models"
	"pazar/internal/repositories"
	"pazar/internal/repositories/cache"
)

// Report summarizes a reconciliation sweep.
type Report struct {
	Checked    int    `json:"checked"`
	Mismatched int    `json:"mismatched"`
	Repaired   int    `json:"repaired"`
	Failed     []uint `json:"failed,omitempty"`
}

type Service interface {
	// Recompute derives the balance from the ledger and compares it with the cached
	// column. With repair set, a drifted column is overwritten with the derived value.
	Recompute(ctx context.Context, userID uint, repair bool) (*models.BalanceCheck, error)
	ReconcileAll(ctx context.Context, repair bool) (Report, error)
}

type service struct {
	store repositories.Store
	cache cache.BalanceCache
}

func NewService(store repositories.Store, balances cache.BalanceCache) Service {
	if store == nil {
		panic("store is required")
	}
	if balances == nil {
		balances = cache.NoopBalanceCache{}
	}
	return &service{store: store, cache: balances}
}

func (s *service) Recompute(ctx context.Context, userID uint, repair bool) (*models.BalanceCheck, error) {
	var check models.BalanceCheck
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		// Every balance-relevant write also touches the user row, so holding its
		// lock gives a consistent view of the history.
		user, err := tx.LockUser(ctx, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return domainerrors.ErrUserNotFound
			}
			return err
		}
		history, err := tx.ListTransactionsByUser(ctx, userID, repositories.TransactionFilter{})
		if err != nil {
			return err
		}

		computed := Derive(userID, history)
		check = models.BalanceCheck{
			UserID:   userID,
			Computed: computed,
			Cached:   user.Balance,
			Matched:  computed.Equal(user.Balance),
		}
		if check.Matched || !repair {
			return nil
		}
		if err := tx.SetBalance(ctx, userID, computed); err != nil {
			return fmt.Errorf("repair balance: %w", err)
		}
		check.Repaired = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !check.Matched {
		log.Printf("component=ledger msg=\"balance drift\" user_id=%d computed=%s cached=%s repaired=%t",
			userID, check.Computed, check.Cached, check.Repaired)
	}
	if check.Repaired {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			log.Printf("component=ledger msg=\"cache invalidation failed\" user_id=%d err=%v", userID, err)
		}
	}
	return &check, nil
}

func (s *service) ReconcileAll(ctx context.Context, repair bool) (Report, error) {
	var report Report
	ids, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return report, err
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		check, err := s.Recompute(ctx, id, repair)
		if err != nil {
			log.Printf("component=ledger msg=\"recompute failed\" user_id=%d err=%v", id, err)
			report.Failed = append(report.Failed, id)
			continue
		}
		report.Checked++
		if !check.Matched {
			report.Mismatched++
		}
		if check.Repaired {
			report.Repaired++
		}
	}
	return report, nil
}
