package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

// Event types double as AMQP routing keys.
const (
	EventEscrowPaid      EventType = "escrow.paid"
	EventEscrowShipped   EventType = "escrow.shipped"
	EventEscrowCompleted EventType = "escrow.completed"
	EventListingApproved EventType = "listing.approved"
	EventListingRejected EventType = "listing.rejected"
	EventListingFeatured EventType = "listing.featured"
)

// AllEventTypes lists every event a consumer should bind.
var AllEventTypes = []EventType{
	EventEscrowPaid,
	EventEscrowShipped,
	EventEscrowCompleted,
	EventListingApproved,
	EventListingRejected,
	EventListingFeatured,
}

// Event is emitted after a state change commits. Exactly one message is
// delivered to RecipientID for each event.
type Event struct {
	ID             uuid.UUID       `json:"id"`
	Type           EventType       `json:"type"`
	SenderID       *uint           `json:"sender_id,omitempty"`
	RecipientID    uint            `json:"recipient_id"`
	ListingID      *uint           `json:"listing_id,omitempty"`
	TransactionID  *uuid.UUID      `json:"transaction_id,omitempty"`
	Title          string          `json:"title"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency,omitempty"`
	TrackingNumber string          `json:"tracking_number,omitempty"`
	Reason         string          `json:"reason,omitempty"`
	Days           int             `json:"days,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// NewEvent stamps an event with an id and the current time.
func NewEvent(typ EventType, recipientID uint) Event {
	return Event{
		ID:          uuid.New(),
		Type:        typ,
		RecipientID: recipientID,
		OccurredAt:  time.Now(),
	}
}

const defaultRejectReason = "The listing does not comply with the marketplace rules."

// Content renders the inbox text for an event.
func (e Event) Content() string {
	amount := e.Amount.StringFixed(2)
	if e.Currency != "" {
		amount += " " + e.Currency
	}
	switch e.Type {
	case EventEscrowPaid:
		return fmt.Sprintf("Payment received! %s was paid for %q. Please ship the item.", amount, e.Title)
	case EventEscrowShipped:
		if e.TrackingNumber == "" {
			return fmt.Sprintf("Your item %q has been shipped.", e.Title)
		}
		return fmt.Sprintf("Your item %q has been shipped. Tracking number: %s", e.Title, e.TrackingNumber)
	case EventEscrowCompleted:
		return fmt.Sprintf("The buyer confirmed delivery of %q. %s has been added to your balance.", e.Title, amount)
	case EventListingApproved:
		return fmt.Sprintf("Congratulations! Your listing is now live.\n\nListing: %s\nListing No: %d", e.Title, derefUint(e.ListingID))
	case EventListingRejected:
		reason := e.Reason
		if reason == "" {
			reason = defaultRejectReason
		}
		return fmt.Sprintf("Your listing was rejected.\n\nListing: %s\nListing No: %d\n\nReason: %s\n\nYou can correct it and submit again.",
			e.Title, derefUint(e.ListingID), reason)
	case EventListingFeatured:
		return fmt.Sprintf("Your listing is featured for %d days!\n\nListing: %s\nPaid: %s", e.Days, e.Title, amount)
	default:
		return e.Title
	}
}

func derefUint(v *uint) uint {
	if v == nil {
		return 0
	}
	return *v
}
