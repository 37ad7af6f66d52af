package dto

import (
	"time"

	"github.com/JoeSaf/Allika-sub000/internal/model"
)

// ── Analytics ──

// GuestAnalytics adds the response rate to the guest counters.
type GuestAnalytics struct {
	*model.GuestStats
	ResponseRate int `json:"response_rate"`
}

// Timelines holds per-day series.
type Timelines struct {
	Rsvp    []model.DailyCount `json:"rsvp"`
	Checkin []model.DailyCount `json:"checkin"`
}

// EventAnalyticsResponse is the analytics page for one event.
type EventAnalyticsResponse struct {
	EventID        string               `json:"event_id"`
	EventTitle     string               `json:"event_title"`
	Guests         GuestAnalytics       `json:"guests"`
	Messages       MessageSummary       `json:"messages"`
	Timelines      Timelines            `json:"timelines"`
	RecentActivity []model.ActivityItem `json:"recent_activity"`
}

// AnalyticsGuestsRequest pages through guest details.
type AnalyticsGuestsRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending confirmed declined"`
}

// AnalyticsExportRequest selects the export format. Only JSON is produced
// here; guest spreadsheets come from the guest export.
type AnalyticsExportRequest struct {
	Format string `form:"format" binding:"omitempty,oneof=json"`
}

// AnalyticsExport is a full dump of one event.
type AnalyticsExport struct {
	Event         *model.Event         `json:"event"`
	Guests        []model.Guest        `json:"guests"`
	RsvpResponses []model.RsvpResponse `json:"rsvpResponses"`
	CheckinLogs   []model.CheckinLog   `json:"checkinLogs"`
	MessageLogs   []model.MessageLog   `json:"messageLogs"`
	ExportedAt    time.Time            `json:"exportedAt"`
}
