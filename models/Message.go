package models

import "time"

// Message is a chat message. Rows are append-only: once persisted a message
// is never edited, ordering within a conversation is created_at ascending.
type Message struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ConversationID uint      `json:"conversationID" gorm:"not null;index"`
	SenderID       uint      `json:"senderID" gorm:"not null;index"`
	Body           string    `json:"body" gorm:"type:text"`
	CreatedAt      time.Time `json:"createdAt" gorm:"index"`

	Sender *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}
