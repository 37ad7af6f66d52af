package model

import "time"

// Message channels.
const (
	MessageTypeSMS      = "sms"
	MessageTypeWhatsApp = "whatsapp"
	MessageTypeEmail    = "email"
)

// Message delivery states.
const (
	MessageStatusPending   = "pending"
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusFailed    = "failed"
)

// MessageLog maps message_logs. One row per send attempt, updated in place.
type MessageLog struct {
	BaseModel
	EventID        string     `gorm:"type:uuid;not null;index"                  json:"event_id"`
	GuestID        *string    `gorm:"type:uuid"                                 json:"guest_id"`
	MessageType    string     `gorm:"type:varchar(20);not null"                 json:"message_type"`
	Recipient      string     `gorm:"type:varchar(255)"                         json:"recipient"`
	MessageContent string     `gorm:"type:text"                                 json:"message_content"`
	Status         string     `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	ErrorMessage   *string    `gorm:"type:text"                                 json:"error_message"`
	SentAt         *time.Time `json:"sent_at"`
}

func (MessageLog) TableName() string { return "message_logs" }

// MessageLogView adds the guest's contact details for listings.
type MessageLogView struct {
	MessageLog
	GuestName  string `json:"guest_name,omitempty"`
	GuestEmail string `json:"guest_email,omitempty"`
	GuestPhone string `json:"guest_phone,omitempty"`
}
