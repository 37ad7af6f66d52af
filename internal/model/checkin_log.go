package model

import "time"

// CheckinLog maps checkin_logs. Never updated or deleted; an undo is a new row.
type CheckinLog struct {
	ID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	GuestID     string    `gorm:"type:uuid;not null;index"                       json:"guest_id"`
	EventID     string    `gorm:"type:uuid;not null;index"                       json:"event_id"`
	CheckedInBy *string   `gorm:"type:uuid"                                      json:"checked_in_by"`
	CheckInTime time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"check_in_time"`
	Notes       string    `gorm:"type:text"                                      json:"notes,omitempty"`
}

func (CheckinLog) TableName() string { return "checkin_logs" }

// CheckinLogView is a log row joined with guest and staff names.
type CheckinLogView struct {
	CheckinLog
	GuestName       string `json:"guest_name"`
	GuestEmail      string `json:"guest_email,omitempty"`
	CheckedInByName string `json:"checked_in_by_name,omitempty"`
}
