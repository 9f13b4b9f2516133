package payment

import (
	"context"
	"time"

	domainerrors "pazar/internal/errors"
	"pazar/internal/models"

	"github.com/shopspring/decimal"
)

// Service validates, tokenizes and charges cards for escrow and promotion payments.
type Service interface {
	// Tokenize validates the card and returns its token and display data.
	Tokenize(ctx context.Context, card CardInput) (*TokenizedCard, error)
	// ChargeCard validates and tokenizes a raw card, then charges it.
	ChargeCard(ctx context.Context, card CardInput, amount decimal.Decimal, description string) (*ChargeResult, error)
	// ChargeToken charges a previously tokenized card.
	ChargeToken(ctx context.Context, token string, amount decimal.Decimal, description string) (*ChargeResult, error)
	// Charge settles a card or savedCard request; saved holds the payer's cards.
	Charge(ctx context.Context, req Request, saved models.SavedCards, amount decimal.Decimal, description string) (*ChargeResult, error)
}

type service struct {
	tokenizer Tokenizer
	charger   Charger
	currency  string
	now       func() time.Time
}

func NewService(tokenizer Tokenizer, charger Charger, currency string) Service {
	if tokenizer == nil {
		tokenizer = NewTokenizer()
	}
	if charger == nil {
		charger = NewSimulatedCharger()
	}
	return &service{
		tokenizer: tokenizer,
		charger:   charger,
		currency:  currency,
		now:       time.Now,
	}
}

func (s *service) Tokenize(ctx context.Context, card CardInput) (*TokenizedCard, error) {
	card = card.Normalized()
	if err := card.Validate(s.now()); err != nil {
		return nil, err
	}
	return s.tokenizer.Tokenize(ctx, card)
}

func (s *service) ChargeCard(ctx context.Context, card CardInput, amount decimal.Decimal, description string) (*ChargeResult, error) {
	tok, err := s.Tokenize(ctx, card)
	if err != nil {
		return nil, err
	}
	return s.ChargeToken(ctx, tok.Token, amount, description)
}

func (s *service) ChargeToken(ctx context.Context, token string, amount decimal.Decimal, description string) (*ChargeResult, error) {
	return s.charger.Charge(ctx, ChargeRequest{
		Amount:      amount,
		Currency:    s.currency,
		Source:      token,
		Description: description,
	})
}

func (s *service) Charge(ctx context.Context, req Request, saved models.SavedCards, amount decimal.Decimal, description string) (*ChargeResult, error) {
	switch req.Method {
	case models.PaymentMethodCard:
		if req.Card == nil {
			return nil, domainerrors.ErrInvalidCard.WithMessage("card details are required")
		}
		return s.ChargeCard(ctx, *req.Card, amount, description)
	case models.PaymentMethodSavedCard:
		card, ok := saved.Find(req.SavedCardID)
		if !ok {
			return nil, domainerrors.ErrCardNotFound
		}
		return s.ChargeToken(ctx, card.Token, amount, description)
	default:
		return nil, domainerrors.ErrInvalidPaymentMethod
	}
}
