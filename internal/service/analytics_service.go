package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/JoeSaf/Allika-sub000/internal/dto"
	"github.com/JoeSaf/Allika-sub000/internal/model"
	"github.com/JoeSaf/Allika-sub000/internal/repository"
)

const (
	recentActivityLimit       = 20
	defaultAnalyticsPageLimit = 50
)

// AnalyticsService aggregates guest, message and timeline statistics.
type AnalyticsService interface {
	Event(ctx context.Context, userID, eventID string) (*dto.EventAnalyticsResponse, error)
	Dashboard(ctx context.Context, userID string) (*model.DashboardStats, error)
	Guests(ctx context.Context, userID, eventID string, req *dto.AnalyticsGuestsRequest) ([]model.GuestDetail, int64, error)
	Messages(ctx context.Context, userID, eventID string, req *dto.MessageLogListRequest) ([]model.MessageLogView, int64, error)
	Export(ctx context.Context, userID, eventID string) (*dto.AnalyticsExport, error)
}

type analyticsService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewAnalyticsService(repo *repository.Repository, logger *zap.Logger) AnalyticsService {
	return &analyticsService{repo: repo, logger: logger, now: time.Now}
}

func (s *analyticsService) Event(ctx context.Context, userID, eventID string) (*dto.EventAnalyticsResponse, error) {
	event, err := loadOwnedEvent(ctx, s.repo, eventID, userID)
	if err != nil {
		return nil, err
	}

	guests, err := s.repo.Guest.Stats(ctx, eventID)
	if err != nil {
		return nil, err
	}
	messages, err := s.repo.MessageLog.Stats(ctx, eventID)
	if err != nil {
		return nil, err
	}
	rsvpTimeline, err := s.repo.RsvpResponse.DailyCounts(ctx, eventID)
	if err != nil {
		return nil, err
	}
	checkinTimeline, err := s.repo.CheckinLog.DailyCounts(ctx, eventID)
	if err != nil {
		return nil, err
	}
	activity, err := s.repo.Analytics.RecentActivity(ctx, eventID, recentActivityLimit)
	if err != nil {
		s.logger.Error("load recent activity failed", zap.String("event_id", eventID), zap.Error(err))
		return nil, err
	}

	return &dto.EventAnalyticsResponse{
		EventID:    event.ID,
		EventTitle: event.Title,
		Guests: dto.GuestAnalytics{
			GuestStats:   guests,
			ResponseRate: percent(guests.ConfirmedCount+guests.DeclinedCount, guests.TotalGuests),
		},
		Messages: dto.MessageSummary{
			MessageStats: messages,
			DeliveryRate: percent(messages.DeliveredCount, messages.TotalMessages),
		},
		Timelines: dto.Timelines{
			Rsvp:    nonNilCounts(rsvpTimeline),
			Checkin: nonNilCounts(checkinTimeline),
		},
		RecentActivity: nonNilActivity(activity),
	}, nil
}

func (s *analyticsService) Dashboard(ctx context.Context, userID string) (*model.DashboardStats, error) {
	return s.repo.Analytics.Dashboard(ctx, userID)
}

func (s *analyticsService) Guests(ctx context.Context, userID, eventID string, req *dto.AnalyticsGuestsRequest) ([]model.GuestDetail, int64, error) {
	if _, err := loadOwnedEvent(ctx, s.repo, eventID, userID); err != nil {
		return nil, 0, err
	}
	return s.repo.Analytics.GuestDetails(ctx, eventID, req.Status,
		req.GetOffset(defaultAnalyticsPageLimit), req.GetLimit(defaultAnalyticsPageLimit))
}

func (s *analyticsService) Messages(ctx context.Context, userID, eventID string, req *dto.MessageLogListRequest) ([]model.MessageLogView, int64, error) {
	if _, err := loadOwnedEvent(ctx, s.repo, eventID, userID); err != nil {
		return nil, 0, err
	}
	filter := repository.MessageLogFilter{Status: req.Status, MessageType: req.MessageType}
	return s.repo.MessageLog.List(ctx, eventID, filter,
		req.GetOffset(defaultAnalyticsPageLimit), req.GetLimit(defaultAnalyticsPageLimit))
}

// Export dumps the event with all of its rows. Empty tables come back as
// empty lists.
func (s *analyticsService) Export(ctx context.Context, userID, eventID string) (*dto.AnalyticsExport, error) {
	event, err := loadOwnedEvent(ctx, s.repo, eventID, userID)
	if err != nil {
		return nil, err
	}
	dump, err := s.repo.Analytics.EventDump(ctx, eventID)
	if err != nil {
		s.logger.Error("dump event failed", zap.String("event_id", eventID), zap.Error(err))
		return nil, err
	}

	out := &dto.AnalyticsExport{
		Event:         event,
		Guests:        dump.Guests,
		RsvpResponses: dump.RsvpResponses,
		CheckinLogs:   dump.CheckinLogs,
		MessageLogs:   dump.MessageLogs,
		ExportedAt:    s.now().UTC(),
	}
	if out.Guests == nil {
		out.Guests = []model.Guest{}
	}
	if out.RsvpResponses == nil {
		out.RsvpResponses = []model.RsvpResponse{}
	}
	if out.CheckinLogs == nil {
		out.CheckinLogs = []model.CheckinLog{}
	}
	if out.MessageLogs == nil {
		out.MessageLogs = []model.MessageLog{}
	}
	return out, nil
}

func nonNilCounts(v []model.DailyCount) []model.DailyCount {
	if v == nil {
		return []model.DailyCount{}
	}
	return v
}

func nonNilActivity(v []model.ActivityItem) []model.ActivityItem {
	if v == nil {
		return []model.ActivityItem{}
	}
	return v
}
