package models

import "gorm.io/gorm"

// Message is a user-to-user inbox entry. Escrow and review notifications land here.
type Message struct {
	gorm.Model
	SenderID   *uint  `gorm:"index" json:"sender_id,omitempty"`
	ReceiverID uint   `gorm:"not null;index" json:"receiver_id"`
	ListingID  *uint  `json:"listing_id,omitempty"`
	Content    string `gorm:"type:text;not null" json:"content"`
	Read       bool   `gorm:"default:false" json:"read"`
}
