package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PromotionStatus string

const (
	PromotionPending   PromotionStatus = "pending"
	PromotionCompleted PromotionStatus = "completed"
	PromotionExpired   PromotionStatus = "expired"
)

// Promotion is a durable pending payment for featuring a listing.
type Promotion struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"payment_id"`
	ListingID     uint            `gorm:"not null;index" json:"listing_id"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	Days          int             `gorm:"not null" json:"days"`
	Price         decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Status        PromotionStatus `gorm:"not null;index" json:"status"`
	ExpiresAt     time.Time       `gorm:"not null;index" json:"expires_at"`
	TransactionID *uuid.UUID      `gorm:"type:uuid" json:"transaction_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (p *Promotion) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
