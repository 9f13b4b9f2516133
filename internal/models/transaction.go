package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

// Transaction types
const (
	TransactionTypeDeposit        TransactionType = "deposit"
	TransactionTypeWithdraw       TransactionType = "withdraw"
	TransactionTypeEscrowPurchase TransactionType = "escrow_purchase"
	TransactionTypePromotion      TransactionType = "promotion"
)

type TransactionStatus string

// Escrow statuses
const (
	StatusPendingPayment TransactionStatus = "pending_payment"
	StatusPaid           TransactionStatus = "paid"
	StatusShipped        TransactionStatus = "shipped"
	StatusCompleted      TransactionStatus = "completed"
	StatusCancelled      TransactionStatus = "cancelled"
)

// StatusPending is used by withdrawals awaiting settlement.
const StatusPending TransactionStatus = "pending"

// ActiveEscrowStatuses are the non-terminal escrow states.
var ActiveEscrowStatuses = []TransactionStatus{StatusPendingPayment, StatusPaid, StatusShipped}

// IsTerminal reports whether no further transition is possible.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type PaymentMethod string

const (
	PaymentMethodCard      PaymentMethod = "card"
	PaymentMethodWallet    PaymentMethod = "wallet"
	PaymentMethodSavedCard PaymentMethod = "savedCard"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodWallet, PaymentMethodSavedCard:
		return true
	}
	return false
}

// Transaction is the append-only escrow/ledger record. Rows are never deleted.
type Transaction struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	BuyerID        *uint             `gorm:"index" json:"buyer_id,omitempty"`
	SellerID       *uint             `gorm:"index" json:"seller_id,omitempty"`
	ListingID      *uint             `gorm:"index" json:"listing_id,omitempty"`
	Amount         decimal.Decimal   `gorm:"type:numeric(20,2);not null" json:"amount"`
	ServiceFee     decimal.Decimal   `gorm:"type:numeric(20,2);not null;default:0" json:"service_fee"`
	TotalAmount    decimal.Decimal   `gorm:"type:numeric(20,2);not null" json:"total_amount"`
	Type           TransactionType   `gorm:"not null;index" json:"type"`
	Status         TransactionStatus `gorm:"not null;index" json:"status"`
	PaymentMethod  PaymentMethod     `gorm:"default:null" json:"payment_method,omitempty"`
	TrackingNumber string            `json:"tracking_number,omitempty"`
	Destination    string            `json:"destination,omitempty"`
	Description    string            `json:"description"`
	CreatedAt      time.Time         `json:"date"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// IsBuyer reports whether userID is the buyer of record.
func (t *Transaction) IsBuyer(userID uint) bool {
	return t.BuyerID != nil && *t.BuyerID == userID
}

// IsSeller reports whether userID is the seller of record.
func (t *Transaction) IsSeller(userID uint) bool {
	return t.SellerID != nil && *t.SellerID == userID
}

// StatusChange describes a conditional status transition. Empty fields are left untouched.
type StatusChange struct {
	To             TransactionStatus
	PaymentMethod  PaymentMethod
	TrackingNumber string
}

// Apply copies the change onto t.
func (c StatusChange) Apply(t *Transaction) {
	t.Status = c.To
	if c.PaymentMethod != "" {
		t.PaymentMethod = c.PaymentMethod
	}
	if c.TrackingNumber != "" {
		t.TrackingNumber = c.TrackingNumber
	}
}
