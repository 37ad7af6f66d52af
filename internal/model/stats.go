package model

import "time"

// EventListItem is an event row with guest counters.
type EventListItem struct {
	Event
	GuestCount     int64 `json:"guest_count"`
	CheckedInCount int64 `json:"checked_in_count"`
}

// GuestStats aggregates guests of one event.
type GuestStats struct {
	TotalGuests       int64 `json:"total_guests"`
	CheckedInCount    int64 `json:"checked_in_count"`
	NotCheckedInCount int64 `json:"not_checked_in_count"`
	ConfirmedCount    int64 `json:"confirmed_count"`
	DeclinedCount     int64 `json:"declined_count"`
	PendingCount      int64 `json:"pending_count"`
	TotalGuestCount   int64 `json:"total_guest_count"`
}

// MessageStats aggregates message_logs of one event.
type MessageStats struct {
	TotalMessages  int64 `json:"total_messages"`
	PendingCount   int64 `json:"pending_count"`
	SentCount      int64 `json:"sent_count"`
	DeliveredCount int64 `json:"delivered_count"`
	FailedCount    int64 `json:"failed_count"`
	SMSCount       int64 `json:"sms_count"`
	WhatsAppCount  int64 `json:"whatsapp_count"`
	EmailCount     int64 `json:"email_count"`
}

// DailyCount is one point of a per-day timeline.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ActivityItem is an RSVP or check-in in the recent activity feed.
type ActivityItem struct {
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	GuestName  string    `json:"guest_name"`
	Action     string    `json:"action"`
	GuestCount *int      `json:"guest_count,omitempty"`
}

// DashboardStats sums across all events of an organizer.
type DashboardStats struct {
	TotalEvents     int64 `json:"total_events"`
	ActiveEvents    int64 `json:"active_events"`
	TotalGuests     int64 `json:"total_guests"`
	ConfirmedGuests int64 `json:"confirmed_guests"`
	CheckedInGuests int64 `json:"checked_in_guests"`
	MessagesSent    int64 `json:"messages_sent"`
}

// GuestDetail is a guest with its RSVP answer and who checked it in.
type GuestDetail struct {
	Guest
	LastResponse    *string    `json:"last_response"`
	ResponseDate    *time.Time `json:"response_date"`
	CheckedInByName *string    `json:"checked_in_by"`
}

// EventDump holds every row that belongs to one event, oldest first.
type EventDump struct {
	Guests        []Guest
	RsvpResponses []RsvpResponse
	CheckinLogs   []CheckinLog
	MessageLogs   []MessageLog
}
