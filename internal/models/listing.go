package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Listing review statuses
const (
	ListingStatusPending  = "pending"
	ListingStatusApproved = "approved"
	ListingStatusRejected = "rejected"
)

type Listing struct {
	gorm.Model
	Title         string          `gorm:"not null" json:"title"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"price"`
	Category      string          `gorm:"index" json:"category"`
	SubCategory   string          `json:"sub_category"`
	City          string          `gorm:"index" json:"city"`
	District      string          `json:"district"`
	SellerID      uint            `gorm:"not null;index" json:"seller_id"`
	Status        string          `gorm:"default:'pending'" json:"status"`
	Views         int             `gorm:"default:0" json:"views"`
	IsSold        bool            `gorm:"default:false" json:"is_sold"`
	IsFeatured    bool            `gorm:"default:false" json:"is_featured"`
	FeaturedUntil *time.Time      `json:"featured_until,omitempty"`
}
