package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking statuses. Only confirmed bookings occupy calendar dates; a pending
// request does not reserve anything until the owner confirms it.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// Booking models a stay request for a listing. Occupancy is the half-open
// range [CheckInDate, CheckOutDate): the checkout day itself stays bookable.
type Booking struct {
	gorm.Model
	PropertyID   uint      `json:"propertyID" gorm:"not null;index"`
	UserID       uint      `json:"userID" gorm:"not null;index"`
	CheckInDate  time.Time `json:"checkInDate" gorm:"type:date;not null"`
	CheckOutDate time.Time `json:"checkOutDate" gorm:"type:date;not null"`
	GuestCount   int       `json:"guestCount"`
	TotalNights  int       `json:"totalNights"`
	TotalPrice   float64   `json:"totalPrice"`
	Status       string    `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Guest    *User     `json:"guest,omitempty" gorm:"foreignKey:UserID"`
}
