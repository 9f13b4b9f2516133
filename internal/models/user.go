package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	Email        string          `gorm:"uniqueIndex;not null" json:"email"`
	Password     string          `gorm:"not null" json:"-"`
	Name         string          `gorm:"not null" json:"name"`
	Phone        string          `json:"phone,omitempty"`
	Role         string          `gorm:"default:'user'" json:"role"`
	Balance      decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"balance"`
	SavedCards   SavedCards      `gorm:"type:jsonb" json:"saved_cards"`
	IsBanned     bool            `gorm:"default:false" json:"is_banned"`
	TokenVersion int             `gorm:"default:1" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	// Balance only moves through ledger operations.
	u.Balance = decimal.Zero
	return nil
}
