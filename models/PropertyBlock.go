package models

import (
	"time"

	"gorm.io/gorm"
)

// PropertyBlock is a single-day manual exclusion created by the owner,
// independent of bookings. One row per (property, day).
type PropertyBlock struct {
	gorm.Model
	PropertyID  uint      `json:"propertyID" gorm:"not null;uniqueIndex:idx_property_blocked_date"`
	BlockedDate time.Time `json:"blockedDate" gorm:"type:date;not null;uniqueIndex:idx_property_blocked_date"`
	Reason      string    `json:"reason"`
	CreatedBy   uint      `json:"createdBy" gorm:"index"`

	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
}
