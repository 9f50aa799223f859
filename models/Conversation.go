package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation is a two-party chat between a guest and a property owner,
// optionally scoped to a property or a booking.
type Conversation struct {
	gorm.Model
	GuestID       uint      `json:"guestID" gorm:"not null;index"`
	OwnerID       uint      `json:"ownerID" gorm:"not null;index"`
	PropertyID    *uint     `json:"propertyID" gorm:"index"`
	BookingID     *uint     `json:"bookingID" gorm:"index"`
	LastMessageAt time.Time `json:"lastMessageAt" gorm:"index"`

	Guest    *User     `json:"guest,omitempty" gorm:"foreignKey:GuestID"`
	Owner    *User     `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Messages []Message `json:"messages,omitempty"`
}
