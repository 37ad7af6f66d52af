package dto

import "github.com/JoeSaf/Allika-sub000/internal/model"

// ── Events ──

// CreateEventRequest creates an event. Date is YYYY-MM-DD, times are HH:MM.
type CreateEventRequest struct {
	Title                string `json:"title"                binding:"required,min=1,max=255"`
	Type                 string `json:"type"                 binding:"required,oneof=wedding birthday anniversary graduation corporate conference awards festival meeting seminar other"`
	Date                 string `json:"date"                 binding:"omitempty,datetime=2006-01-02"`
	Time                 string `json:"time"                 binding:"omitempty,datetime=15:04"`
	Venue                string `json:"venue"                binding:"omitempty,max=500"`
	Reception            string `json:"reception"            binding:"omitempty,max=500"`
	ReceptionTime        string `json:"receptionTime"        binding:"omitempty,datetime=15:04"`
	Theme                string `json:"theme"                binding:"omitempty,max=255"`
	RsvpContact          string `json:"rsvpContact"          binding:"omitempty,max=20"`
	RsvpContactSecondary string `json:"rsvpContactSecondary" binding:"omitempty,max=20"`
	AdditionalInfo       string `json:"additionalInfo"       binding:"omitempty,max=5000"`
	InvitingFamily       string `json:"invitingFamily"       binding:"omitempty,max=255"`
	DateLang             string `json:"dateLang"             binding:"omitempty,oneof=en sw"`
	Status               string `json:"status"               binding:"omitempty,oneof=draft active completed"`
}

// UpdateEventRequest patches an event; nil fields are left untouched.
type UpdateEventRequest struct {
	Title                *string `json:"title"                binding:"omitempty,min=1,max=255"`
	Type                 *string `json:"type"                 binding:"omitempty,oneof=wedding birthday anniversary graduation corporate conference awards festival meeting seminar other"`
	Date                 *string `json:"date"                 binding:"omitempty,datetime=2006-01-02"`
	Time                 *string `json:"time"                 binding:"omitempty,datetime=15:04"`
	Venue                *string `json:"venue"                binding:"omitempty,max=500"`
	Reception            *string `json:"reception"            binding:"omitempty,max=500"`
	ReceptionTime        *string `json:"receptionTime"        binding:"omitempty,datetime=15:04"`
	Theme                *string `json:"theme"                binding:"omitempty,max=255"`
	RsvpContact          *string `json:"rsvpContact"          binding:"omitempty,max=20"`
	RsvpContactSecondary *string `json:"rsvpContactSecondary" binding:"omitempty,max=20"`
	AdditionalInfo       *string `json:"additionalInfo"       binding:"omitempty,max=5000"`
	InvitingFamily       *string `json:"invitingFamily"       binding:"omitempty,max=255"`
	DateLang             *string `json:"dateLang"             binding:"omitempty,oneof=en sw"`
	Status               *string `json:"status"               binding:"omitempty,oneof=draft active completed"`
}

// EventListRequest filters the organizer's events.
type EventListRequest struct {
	PaginationRequest
	Search string `form:"search" binding:"omitempty,max=255"`
	Status string `form:"status" binding:"omitempty,oneof=draft active completed"`
}

// RsvpSettingsRequest patches the public RSVP page settings.
type RsvpSettingsRequest struct {
	Title                      *string                  `json:"title"                      binding:"omitempty,max=255"`
	Subtitle                   *string                  `json:"subtitle"                   binding:"omitempty,max=255"`
	Location                   *string                  `json:"location"                   binding:"omitempty,max=500"`
	WelcomeMessage             *string                  `json:"welcomeMessage"`
	ConfirmText                *string                  `json:"confirmText"                binding:"omitempty,max=255"`
	DeclineText                *string                  `json:"declineText"                binding:"omitempty,max=255"`
	GuestCountEnabled          *bool                    `json:"guestCountEnabled"`
	GuestCountLabel            *string                  `json:"guestCountLabel"            binding:"omitempty,max=255"`
	GuestCountOptions          []string                 `json:"guestCountOptions"          binding:"omitempty,max=20"`
	SpecialRequestsEnabled     *bool                    `json:"specialRequestsEnabled"`
	SpecialRequestsLabel       *string                  `json:"specialRequestsLabel"       binding:"omitempty,max=255"`
	SpecialRequestsPlaceholder *string                  `json:"specialRequestsPlaceholder"`
	AdditionalFields           []map[string]interface{} `json:"additionalFields"`
	SubmitButtonText           *string                  `json:"submitButtonText"           binding:"omitempty,max=255"`
	ThankYouMessage            *string                  `json:"thankYouMessage"`
	BackgroundColor            *string                  `json:"backgroundColor"            binding:"omitempty,hexcolor"`
	TextColor                  *string                  `json:"textColor"                  binding:"omitempty,hexcolor"`
	ButtonColor                *string                  `json:"buttonColor"                binding:"omitempty,hexcolor"`
	AccentColor                *string                  `json:"accentColor"                binding:"omitempty,hexcolor"`
	RsvpContact                *string                  `json:"rsvpContact"                binding:"omitempty,max=20"`
	RsvpContactSecondary       *string                  `json:"rsvpContactSecondary"       binding:"omitempty,max=20"`
}

// InvitationDataRequest replaces the invitation card content.
type InvitationDataRequest struct {
	CoupleName       string `json:"coupleName"       binding:"omitempty,max=255"`
	EventDate        string `json:"eventDate"        binding:"omitempty,max=255"`
	EventDateWords   string `json:"eventDateWords"   binding:"omitempty,max=255"`
	EventTime        string `json:"eventTime"        binding:"omitempty,max=50"`
	Venue            string `json:"venue"            binding:"omitempty,max=500"`
	Reception        string `json:"reception"        binding:"omitempty,max=500"`
	ReceptionTime    string `json:"receptionTime"    binding:"omitempty,max=5"`
	Theme            string `json:"theme"            binding:"omitempty,max=255"`
	RsvpContact      string `json:"rsvpContact"      binding:"omitempty,max=20"`
	AdditionalInfo   string `json:"additionalInfo"`
	InvitingFamily   string `json:"invitingFamily"   binding:"omitempty,max=255"`
	SelectedTemplate string `json:"selectedTemplate" binding:"omitempty,max=50"`
}

// EventDetailResponse is an event with its page settings and card content.
type EventDetailResponse struct {
	*model.Event
	GuestStats *model.GuestStats `json:"guest_stats"`
}
