package dto

import (
	"time"

	"github.com/JoeSaf/Allika-sub000/internal/model"
)

// ── Check-in ──

// CheckinByTokenRequest checks a guest in by RSVP token.
type CheckinByTokenRequest struct {
	Token string `json:"token" binding:"required,min=32,max=255"`
	Notes string `json:"notes" binding:"omitempty,max=500"`
}

// QRScanRequest carries the raw text decoded from a scanned QR code.
type QRScanRequest struct {
	QRData string `json:"qrData"`
}

// ManualCheckinRequest checks a guest in from the guest list.
type ManualCheckinRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=500"`
}

// UndoCheckinRequest reverts a check-in.
type UndoCheckinRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// CheckinResult is the guest after a transition plus the audit row written.
type CheckinResult struct {
	Guest       *model.Guest      `json:"guest"`
	Log         *model.CheckinLog `json:"checkinLog"`
	CheckedInBy string            `json:"checkedInBy,omitempty"`
}

// CheckedInGuest identifies a guest that is already checked in.
type CheckedInGuest struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	CheckInTime *time.Time `json:"checkInTime"`
}

// CheckinLogListRequest pages through the audit trail.
type CheckinLogListRequest struct {
	PaginationRequest
}

// CheckinSummary is the door dashboard for one event.
type CheckinSummary struct {
	Statistics     *model.GuestStats      `json:"statistics"`
	RecentCheckins []model.CheckinLogView `json:"recentCheckins"`
	CheckInRate    int                    `json:"checkInRate"`
}
