package dto

import (
	"time"

	"github.com/JoeSaf/Allika-sub000/internal/model"
)

// ── RSVP ──

// SubmitRsvpRequest is a guest's one-time answer.
type SubmitRsvpRequest struct {
	Response         string                 `json:"response"         binding:"required,oneof=confirmed declined"`
	GuestCount       *int                   `json:"guestCount"       binding:"omitempty,min=1,max=10"`
	SpecialRequests  string                 `json:"specialRequests"  binding:"omitempty,max=1000"`
	AdditionalFields map[string]interface{} `json:"additionalFields"`
}

// RsvpGuest is the guest subset exposed on the public page.
type RsvpGuest struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Email            string      `json:"email,omitempty"`
	Phone            string      `json:"phone,omitempty"`
	Status           string      `json:"status"`
	GuestCount       int         `json:"guestCount"`
	SpecialRequests  string      `json:"specialRequests,omitempty"`
	AdditionalFields interface{} `json:"additionalFields,omitempty"`
	RsvpDate         *time.Time  `json:"rsvpDate"`
}

// RsvpEvent is the event subset exposed on the public page.
type RsvpEvent struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Type           string     `json:"type"`
	Date           *time.Time `json:"date"`
	Time           string     `json:"time,omitempty"`
	Venue          string     `json:"venue,omitempty"`
	Reception      string     `json:"reception,omitempty"`
	ReceptionTime  string     `json:"receptionTime,omitempty"`
	Theme          string     `json:"theme,omitempty"`
	AdditionalInfo string     `json:"additionalInfo,omitempty"`
	InvitingFamily string     `json:"invitingFamily,omitempty"`
	DateLang       string     `json:"dateLang"`
}

// RsvpViewResponse is everything the public RSVP page renders.
type RsvpViewResponse struct {
	Guest          RsvpGuest           `json:"guest"`
	Event          RsvpEvent           `json:"event"`
	RsvpSettings   *model.RsvpSettings `json:"rsvpSettings"`
	InvitationData interface{}         `json:"invitationData"`
	HasResponded   bool                `json:"hasResponded"`
	LastResponse   *model.RsvpResponse `json:"lastResponse"`
}

// RsvpSubmitResponse returns the updated guest and the stored response.
type RsvpSubmitResponse struct {
	Guest    *model.Guest        `json:"guest"`
	Response *model.RsvpResponse `json:"response"`
}

// RsvpStatusResponse is the read-only status lookup.
type RsvpStatusResponse struct {
	Guest struct {
		Name            string     `json:"name"`
		Status          string     `json:"status"`
		RsvpDate        *time.Time `json:"rsvpDate"`
		GuestCount      int        `json:"guestCount"`
		SpecialRequests string     `json:"specialRequests,omitempty"`
	} `json:"guest"`
	Event struct {
		Title string     `json:"title"`
		Date  *time.Time `json:"date"`
		Venue string     `json:"venue,omitempty"`
	} `json:"event"`
	Response *model.RsvpResponse `json:"response"`
}

// QRCodeResponse carries a guest's QR image as a PNG data URL.
type QRCodeResponse struct {
	QRCode string `json:"qrCode"`
}

// RequestMeta is client information recorded with a response.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
