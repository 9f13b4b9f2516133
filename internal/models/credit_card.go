package models

import "time"

// SavedCard is a masked, tokenized card kept for reuse. It never holds a PAN or CVV.
type SavedCard struct {
	ID          string    `json:"id"`
	Token       string    `json:"token"`
	Brand       string    `json:"brand"`
	LastFour    string    `json:"last_four"`
	Masked      string    `json:"card_number_masked"`
	HolderName  string    `json:"holder_name"`
	ExpiryMonth string    `json:"expiry_month"`
	ExpiryYear  string    `json:"expiry_year"`
	AddedAt     time.Time `json:"added_at"`
}

// SavedCards is stored as a JSONB column on users.
type SavedCards []SavedCard

// Find returns the card with the given id.
func (c SavedCards) Find(id string) (SavedCard, bool) {
	for _, card := range c {
		if card.ID == id {
			return card, true
		}
	}
	return SavedCard{}, false
}

// Without returns a copy of c with the card id removed.
func (c SavedCards) Without(id string) (SavedCards, bool) {
	out := make(SavedCards, 0, len(c))
	removed := false
	for _, card := range c {
		if card.ID == id {
			removed = true
			continue
		}
		out = append(out, card)
	}
	return out, removed
}
