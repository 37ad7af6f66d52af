package model

import (
	"time"

	"gorm.io/datatypes"
)

// Guest status values, mirrored from the guest's RSVP response.
const (
	GuestStatusPending   = "pending"
	GuestStatusConfirmed = "confirmed"
	GuestStatusDeclined  = "declined"
)

// Guest maps guests. CheckedIn is the only source of truth for presence; the
// check-in log is history.
type Guest struct {
	BaseModel
	EventID          string         `gorm:"type:uuid;not null;index"                  json:"event_id"`
	Name             string         `gorm:"type:varchar(255);not null"                json:"name"`
	Email            string         `gorm:"type:varchar(255)"                         json:"email,omitempty"`
	Phone            string         `gorm:"type:varchar(20)"                          json:"phone,omitempty"`
	TableNumber      string         `gorm:"type:varchar(50)"                          json:"table_number,omitempty"`
	Status           string         `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	CheckedIn        bool           `gorm:"not null;default:false"                    json:"checked_in"`
	CheckInTime      *time.Time     `json:"check_in_time"`
	RsvpDate         *time.Time     `json:"rsvp_date"`
	GuestCount       int            `gorm:"not null;default:1"                        json:"guest_count"`
	SpecialRequests  string         `gorm:"type:text"                                 json:"special_requests,omitempty"`
	AdditionalFields datatypes.JSON `gorm:"type:jsonb"                                json:"additional_fields,omitempty"`
	RsvpToken        string         `gorm:"type:varchar(255);not null;unique"         json:"rsvp_token"`
	RsvpAlias        *string        `gorm:"type:varchar(255);unique"                  json:"rsvp_alias,omitempty"`
	QRCodeData       string         `gorm:"column:qr_code_data;type:text"             json:"qr_code_data,omitempty"`
}

func (Guest) TableName() string { return "guests" }

// RSVP response values.
const (
	RsvpConfirmed = "confirmed"
	RsvpDeclined  = "declined"
)

// RsvpResponse maps rsvp_responses. Append-only, one row per guest.
type RsvpResponse struct {
	ID               string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	GuestID          string         `gorm:"type:uuid;not null;unique"                      json:"guest_id"`
	EventID          string         `gorm:"type:uuid;not null;index"                       json:"event_id"`
	Response         string         `gorm:"type:varchar(20);not null"                      json:"response"`
	GuestCount       int            `gorm:"not null;default:1"                             json:"guest_count"`
	SpecialRequests  string         `gorm:"type:text"                                      json:"special_requests,omitempty"`
	AdditionalFields datatypes.JSON `gorm:"type:jsonb"                                     json:"additional_fields,omitempty"`
	IPAddress        string         `gorm:"type:varchar(45)"                               json:"ip_address,omitempty"`
	UserAgent        string         `gorm:"type:text"                                      json:"user_agent,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (RsvpResponse) TableName() string { return "rsvp_responses" }
