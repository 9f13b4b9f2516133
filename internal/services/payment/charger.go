package payment

import (
	"context"
	"log"
	"strings"

	domainerrors "pazar/internal/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/charge"
)

// declinedToken always fails in the simulated charger, mirroring Stripe's test card.
const declinedToken = "tok_chargeDeclined"

// ChargeRequest is an external card charge.
type ChargeRequest struct {
	Amount      decimal.Decimal
	Currency    string
	Source      string
	Description string
}

// ChargeResult identifies a successful charge.
type ChargeResult struct {
	ID string
}

// Charger debits a card outside the wallet. Charges are never retried automatically.
type Charger interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// SimulatedCharger accepts every tokenized card except the declined test token.
type SimulatedCharger struct{}

func NewSimulatedCharger() Charger {
	return &SimulatedCharger{}
}

func (c *SimulatedCharger) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if req.Source == "" {
		return nil, domainerrors.ErrInvalidCard
	}
	if req.Source == declinedToken {
		return nil, domainerrors.ErrPaymentDeclined
	}
	id := "sim_" + uuid.NewString()
	log.Printf("component=payment msg=\"simulated charge\" charge_id=%s amount=%s currency=%s",
		id, req.Amount.StringFixed(2), req.Currency)
	return &ChargeResult{ID: id}, nil
}

type StripeCharger struct{}

func NewStripeCharger(secretKey string) Charger {
	stripe.Key = secretKey
	return &StripeCharger{}
}

func (c *StripeCharger) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(req.Amount.Shift(2).Round(0).IntPart()),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Description: stripe.String(req.Description),
	}
	params.Context = ctx
	if err := params.SetSource(req.Source); err != nil {
		return nil, domainerrors.ErrInvalidCard
	}

	ch, err := charge.New(params)
	if err != nil {
		log.Printf("component=payment msg=\"stripe charge failed\" err=%v", err)
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.Type == stripe.ErrorTypeCard {
			return nil, domainerrors.ErrPaymentDeclined.WithMessage("%s", stripeErr.Msg)
		}
		return nil, err
	}
	return &ChargeResult{ID: ch.ID}, nil
}
