package memory

import (
	"context"
	"time"

	"pazar/internal/models"
	"pazar/internal/repositories"

	"github.com/google/uuid"
)

func isActiveEscrow(t models.Transaction) bool {
	if t.Type != models.TransactionTypeEscrowPurchase {
		return false
	}
	for _, st := range models.ActiveEscrowStatuses {
		if t.Status == st {
			return true
		}
	}
	return false
}

func sameParty(a, b *uint) bool {
	return a != nil && b != nil && *a == *b
}

func (s *Store) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	defer s.lock()()
	if isActiveEscrow(*tx) {
		for _, t := range s.st.transactions {
			if isActiveEscrow(t) && sameParty(t.ListingID, tx.ListingID) && sameParty(t.BuyerID, tx.BuyerID) {
				return repositories.ErrDuplicateEscrow
			}
		}
	}
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	now := s.now()
	tx.CreatedAt, tx.UpdatedAt = now, now
	s.st.transactions = append(s.st.transactions, *tx)
	return nil
}

func (s *Store) find(id uuid.UUID) int {
	for i := range s.st.transactions {
		if s.st.transactions[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) GetTransactionByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	defer s.lock()()
	i := s.find(id)
	if i < 0 {
		return nil, repositories.ErrNotFound
	}
	t := s.st.transactions[i]
	return &t, nil
}

func (s *Store) LockTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return s.GetTransactionByID(ctx, id)
}

func (s *Store) TransitionTransaction(ctx context.Context, id uuid.UUID, from models.TransactionStatus, change models.StatusChange) error {
	defer s.lock()()
	i := s.find(id)
	if i < 0 {
		return repositories.ErrNotFound
	}
	t := &s.st.transactions[i]
	if t.Status != from {
		return repositories.ErrStatusChanged
	}
	change.Apply(t)
	t.UpdatedAt = s.now()
	return nil
}

func (s *Store) FindActiveEscrow(ctx context.Context, listingID, buyerID uint) (*models.Transaction, error) {
	defer s.lock()()
	for i := len(s.st.transactions) - 1; i >= 0; i-- {
		t := s.st.transactions[i]
		if isActiveEscrow(t) && sameParty(t.ListingID, &listingID) && sameParty(t.BuyerID, &buyerID) {
			return &t, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) ListTransactionsByUser(ctx context.Context, userID uint, filter repositories.TransactionFilter) ([]models.Transaction, error) {
	defer s.lock()()
	var out []models.Transaction
	for i := len(s.st.transactions) - 1; i >= 0; i-- {
		t := s.st.transactions[i]
		if !t.IsBuyer(userID) && !t.IsSeller(userID) {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		out = append(out, t)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// Messages

func (s *Store) CreateMessage(ctx context.Context, msg *models.Message) error {
	defer s.lock()()
	s.st.nextMsgID++
	now := s.now()
	msg.ID = s.st.nextMsgID
	msg.CreatedAt, msg.UpdatedAt = now, now
	s.st.messages = append(s.st.messages, *msg)
	return nil
}

func (s *Store) ListMessagesByReceiver(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	defer s.lock()()
	var out []models.Message
	for i := len(s.st.messages) - 1; i >= 0; i-- {
		if s.st.messages[i].ReceiverID != userID {
			continue
		}
		out = append(out, s.st.messages[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Promotions

func (s *Store) CreatePromotion(ctx context.Context, p *models.Promotion) error {
	defer s.lock()()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.st.promotions[p.ID] = *p
	return nil
}

func (s *Store) GetPromotionByID(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	defer s.lock()()
	p, ok := s.st.promotions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (s *Store) LockPromotion(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	return s.GetPromotionByID(ctx, id)
}

func (s *Store) TransitionPromotion(ctx context.Context, id uuid.UUID, from, to models.PromotionStatus, transactionID *uuid.UUID) error {
	defer s.lock()()
	p, ok := s.st.promotions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if p.Status != from {
		return repositories.ErrStatusChanged
	}
	p.Status = to
	if transactionID != nil {
		txID := *transactionID
		p.TransactionID = &txID
	}
	p.UpdatedAt = s.now()
	s.st.promotions[id] = p
	return nil
}

func (s *Store) ExpirePromotions(ctx context.Context, now time.Time) (int64, error) {
	defer s.lock()()
	var n int64
	for id, p := range s.st.promotions {
		if p.Status == models.PromotionPending && p.ExpiresAt.Before(now) {
			p.Status = models.PromotionExpired
			p.UpdatedAt = now
			s.st.promotions[id] = p
			n++
		}
	}
	return n, nil
}
