package dto

import "github.com/JoeSaf/Allika-sub000/internal/model"

// ── Guests ──

// AddGuestRequest adds one guest to an event.
type AddGuestRequest struct {
	Name             string                 `json:"name"             binding:"required,min=1,max=255"`
	Email            string                 `json:"email"            binding:"omitempty,email,max=255"`
	Phone            string                 `json:"phone"            binding:"omitempty,max=20"`
	TableNumber      string                 `json:"tableNumber"      binding:"omitempty,max=50"`
	GuestCount       int                    `json:"guestCount"       binding:"omitempty,min=1,max=20"`
	SpecialRequests  string                 `json:"specialRequests"  binding:"omitempty,max=1000"`
	AdditionalFields map[string]interface{} `json:"additionalFields"`
}

// BulkAddGuestsRequest adds up to 1000 guests at once.
type BulkAddGuestsRequest struct {
	Guests []AddGuestRequest `json:"guests" binding:"required,min=1,max=1000,dive"`
}

// UpdateGuestRequest patches a guest.
type UpdateGuestRequest struct {
	Name            *string `json:"name"            binding:"omitempty,min=1,max=255"`
	Email           *string `json:"email"           binding:"omitempty,email,max=255"`
	Phone           *string `json:"phone"           binding:"omitempty,max=20"`
	TableNumber     *string `json:"tableNumber"     binding:"omitempty,max=50"`
	Status          *string `json:"status"          binding:"omitempty,oneof=pending confirmed declined"`
	GuestCount      *int    `json:"guestCount"      binding:"omitempty,min=1,max=20"`
	SpecialRequests *string `json:"specialRequests" binding:"omitempty,max=1000"`
	RsvpAlias       *string `json:"rsvpAlias"       binding:"omitempty,min=3,max=255,alphanumunicode"`
}

// GuestListRequest filters an event's guests.
type GuestListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending confirmed declined"`
	Search string `form:"search" binding:"omitempty,max=255"`
}

// CheckDuplicatesRequest asks which phones already received an invitation.
type CheckDuplicatesRequest struct {
	Phones []string `json:"phones" binding:"required,min=1,max=1000,dive,required,max=20"`
}

// DuplicatePhone is a phone already invited for this event.
type DuplicatePhone struct {
	Phone     string `json:"phone"`
	GuestID   string `json:"guestId"`
	GuestName string `json:"guestName"`
}

// CheckDuplicatesResponse lists the already-invited phones.
type CheckDuplicatesResponse struct {
	Duplicates []DuplicatePhone `json:"duplicates"`
	Count      int              `json:"count"`
}

// BulkAddResponse reports a bulk add or file import.
type BulkAddResponse struct {
	Total  int           `json:"total"`
	Added  int           `json:"added"`
	Failed int           `json:"failed"`
	Guests []model.Guest `json:"guests"`
	Errors []RowError    `json:"errors,omitempty"`
}
