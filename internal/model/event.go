package model

import (
	"time"

	"gorm.io/datatypes"
)

// Event status values.
const (
	EventStatusDraft     = "draft"
	EventStatusActive    = "active"
	EventStatusCompleted = "completed"
)

// EventTypes lists the accepted event categories.
var EventTypes = []string{
	"wedding", "birthday", "anniversary", "graduation", "corporate",
	"conference", "awards", "festival", "meeting", "seminar", "other",
}

// Event maps events. Deleting an event cascades to guests, responses and logs.
type Event struct {
	BaseModel
	UserID               string     `gorm:"type:uuid;not null;index"             json:"user_id"`
	Title                string     `gorm:"type:varchar(255);not null"           json:"title"`
	Type                 string     `gorm:"type:varchar(50);not null"            json:"type"`
	Date                 *time.Time `gorm:"type:date"                            json:"date,omitempty"`
	Time                 string     `gorm:"type:varchar(5)"                      json:"time,omitempty"`
	Venue                string     `gorm:"type:varchar(500)"                    json:"venue,omitempty"`
	Reception            string     `gorm:"type:varchar(500)"                    json:"reception,omitempty"`
	ReceptionTime        string     `gorm:"type:varchar(5)"                      json:"reception_time,omitempty"`
	Theme                string     `gorm:"type:varchar(255)"                    json:"theme,omitempty"`
	RsvpContact          string     `gorm:"type:varchar(20)"                     json:"rsvp_contact,omitempty"`
	RsvpContactSecondary string     `gorm:"type:varchar(20)"                     json:"rsvp_contact_secondary,omitempty"`
	AdditionalInfo       string     `gorm:"type:text"                            json:"additional_info,omitempty"`
	InvitingFamily       string     `gorm:"type:varchar(255)"                    json:"inviting_family,omitempty"`
	DateLang             string     `gorm:"type:varchar(10);not null;default:en" json:"date_lang"`
	Status               string     `gorm:"type:varchar(20);not null;default:draft" json:"status"`
	MessagesSent         int        `gorm:"not null;default:0"                   json:"messages_sent"`

	RsvpSettings   *RsvpSettings   `gorm:"foreignKey:EventID" json:"rsvp_settings,omitempty"`
	InvitationData *InvitationData `gorm:"foreignKey:EventID" json:"invitation_data,omitempty"`
}

func (Event) TableName() string { return "events" }

// IsActive reports whether guests may respond and be checked in.
func (e *Event) IsActive() bool { return e.Status == EventStatusActive }

// RsvpSettings customizes the public RSVP page (rsvp_settings).
type RsvpSettings struct {
	BaseModel
	EventID                    string         `gorm:"type:uuid;not null;unique" json:"event_id"`
	Title                      string         `gorm:"type:varchar(255)"         json:"title"`
	Subtitle                   string         `gorm:"type:varchar(255)"         json:"subtitle"`
	Location                   string         `gorm:"type:varchar(500)"         json:"location"`
	WelcomeMessage             string         `gorm:"type:text"                 json:"welcome_message"`
	ConfirmText                string         `gorm:"type:varchar(255)"         json:"confirm_text"`
	DeclineText                string         `gorm:"type:varchar(255)"         json:"decline_text"`
	GuestCountEnabled          bool           `gorm:"not null;default:true"     json:"guest_count_enabled"`
	GuestCountLabel            string         `gorm:"type:varchar(255)"         json:"guest_count_label"`
	GuestCountOptions          datatypes.JSON `gorm:"type:jsonb"                json:"guest_count_options"`
	SpecialRequestsEnabled     bool           `gorm:"not null;default:true"     json:"special_requests_enabled"`
	SpecialRequestsLabel       string         `gorm:"type:varchar(255)"         json:"special_requests_label"`
	SpecialRequestsPlaceholder string         `gorm:"type:text"                 json:"special_requests_placeholder"`
	AdditionalFields           datatypes.JSON `gorm:"type:jsonb"                json:"additional_fields"`
	SubmitButtonText           string         `gorm:"type:varchar(255)"         json:"submit_button_text"`
	ThankYouMessage            string         `gorm:"type:text"                 json:"thank_you_message"`
	BackgroundColor            string         `gorm:"type:varchar(7)"           json:"background_color"`
	TextColor                  string         `gorm:"type:varchar(7)"           json:"text_color"`
	ButtonColor                string         `gorm:"type:varchar(7)"           json:"button_color"`
	AccentColor                string         `gorm:"type:varchar(7)"           json:"accent_color"`
	RsvpContact                string         `gorm:"type:varchar(20)"          json:"rsvp_contact"`
	RsvpContactSecondary       string         `gorm:"type:varchar(20)"          json:"rsvp_contact_secondary"`
}

func (RsvpSettings) TableName() string { return "rsvp_settings" }

// InvitationData is the card content shown alongside the RSVP form (event_invitation_data).
type InvitationData struct {
	BaseModel
	EventID          string `gorm:"type:uuid;not null;unique"         json:"event_id"`
	CoupleName       string `gorm:"type:varchar(255)"                 json:"couple_name"`
	EventDate        string `gorm:"type:varchar(255)"                 json:"event_date"`
	EventDateWords   string `gorm:"type:varchar(255)"                 json:"event_date_words"`
	EventTime        string `gorm:"type:varchar(50)"                  json:"event_time"`
	Venue            string `gorm:"type:varchar(500)"                 json:"venue"`
	Reception        string `gorm:"type:varchar(500)"                 json:"reception"`
	ReceptionTime    string `gorm:"type:varchar(5)"                   json:"reception_time"`
	Theme            string `gorm:"type:varchar(255)"                 json:"theme"`
	RsvpContact      string `gorm:"type:varchar(20)"                  json:"rsvp_contact"`
	AdditionalInfo   string `gorm:"type:text"                         json:"additional_info"`
	InvitingFamily   string `gorm:"type:varchar(255)"                 json:"inviting_family"`
	SelectedTemplate string `gorm:"type:varchar(50);default:template1" json:"selected_template"`
}

func (InvitationData) TableName() string { return "event_invitation_data" }
