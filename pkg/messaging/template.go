package messaging

import (
	"fmt"
	"strings"
)

// TemplateData carries the values substituted into invitation text.
type TemplateData struct {
	GuestName  string
	EventTitle string
	EventDate  string
	EventTime  string
	Venue      string
	RsvpLink   string
}

// Render replaces {guestName}, {eventTitle}, {eventDate}, {eventTime},
// {venue} and {rsvpLink} in a custom message.
func Render(tmpl string, d TemplateData) string {
	r := strings.NewReplacer(
		"{guestName}", d.GuestName,
		"{eventTitle}", d.EventTitle,
		"{eventDate}", d.EventDate,
		"{eventTime}", d.EventTime,
		"{venue}", d.Venue,
		"{rsvpLink}", d.RsvpLink,
	)
	return r.Replace(tmpl)
}

// DefaultBody is the invitation text used when the organizer supplies none.
func DefaultBody(channel string, d TemplateData) string {
	if channel == ChannelEmail {
		return fmt.Sprintf("Dear %s,\n\nYou are cordially invited to %s on %s at %s.\n\n"+
			"Please click the link below to RSVP:\n%s\n\n"+
			"We look forward to celebrating with you!\n\nBest regards,\nThe Event Organizers",
			d.GuestName, d.EventTitle, d.EventDate, d.Venue, d.RsvpLink)
	}
	return fmt.Sprintf("Habari %s!\n\nTafadhali pokea mwaliko wa %s, Itakayofanyika %s, %s.\n\n"+
		"Karibu Sana!\n\nRSVP: %s\n\nUjumbe huu, umetumwa kwa kupitia Alika",
		d.GuestName, d.EventTitle, d.EventDate, d.Venue, d.RsvpLink)
}

// DefaultSubject is the email subject line for an invitation.
func DefaultSubject(eventTitle string) string {
	return "Invitation: " + eventTitle
}
