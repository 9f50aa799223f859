package models

import "gorm.io/gorm"

type Notification struct {
	gorm.Model
	UserID  uint   `json:"userID" gorm:"not null;index"`
	Title   string `json:"title"`
	Message string `json:"message" gorm:"type:text"`
	Type    string `json:"type" gorm:"size:32;index"` // booking_request, booking_status, new_message, property_status
	RefID   uint   `json:"refID"`
	RefType string `json:"refType" gorm:"size:32"` // booking, property, conversation
	IsRead  bool   `json:"isRead" gorm:"default:false;index"`
}
