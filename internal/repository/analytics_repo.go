package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/JoeSaf/Allika-sub000/internal/model"
)

// AnalyticsRepository runs cross-table aggregate reads.
type AnalyticsRepository interface {
	RecentActivity(ctx context.Context, eventID string, limit int) ([]model.ActivityItem, error)
	Dashboard(ctx context.Context, userID string) (*model.DashboardStats, error)
	GuestDetails(ctx context.Context, eventID, status string, offset, limit int) ([]model.GuestDetail, int64, error)
	EventDump(ctx context.Context, eventID string) (*model.EventDump, error)
}

type analyticsRepo struct {
	db *gorm.DB
}

func NewAnalyticsRepo(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepo{db: db}
}

func (r *analyticsRepo) RecentActivity(ctx context.Context, eventID string, limit int) ([]model.ActivityItem, error) {
	var items []model.ActivityItem
	err := r.db.WithContext(ctx).Raw(`
		SELECT 'rsvp' AS type, rr.created_at AS timestamp, g.name AS guest_name,
		       rr.response AS action, rr.guest_count AS guest_count
		FROM rsvp_responses rr
		JOIN guests g ON g.id = rr.guest_id
		WHERE rr.event_id = ?
		UNION ALL
		SELECT 'checkin' AS type, cl.check_in_time AS timestamp, g.name AS guest_name,
		       COALESCE(NULLIF(cl.notes, ''), 'checked in') AS action, NULL AS guest_count
		FROM checkin_logs cl
		JOIN guests g ON g.id = cl.guest_id
		WHERE cl.event_id = ?
		ORDER BY timestamp DESC
		LIMIT ?`, eventID, eventID, limit).
		Scan(&items).Error
	return items, err
}

func (r *analyticsRepo) Dashboard(ctx context.Context, userID string) (*model.DashboardStats, error) {
	var stats model.DashboardStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT
		  (SELECT COUNT(*) FROM events WHERE user_id = ?) AS total_events,
		  (SELECT COUNT(*) FROM events WHERE user_id = ? AND status = 'active') AS active_events,
		  COUNT(g.id) AS total_guests,
		  COUNT(g.id) FILTER (WHERE g.status = 'confirmed') AS confirmed_guests,
		  COUNT(g.id) FILTER (WHERE g.checked_in) AS checked_in_guests,
		  (SELECT COALESCE(SUM(messages_sent), 0) FROM events WHERE user_id = ?) AS messages_sent
		FROM guests g
		JOIN events e ON e.id = g.event_id
		WHERE e.user_id = ?`, userID, userID, userID, userID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// GuestDetails lists guests newest first. The staff name comes from the most
// recent log row and is only reported while the guest is checked in.
func (r *analyticsRepo) GuestDetails(ctx context.Context, eventID, status string, offset, limit int) ([]model.GuestDetail, int64, error) {
	db := r.db.WithContext(ctx).Table("guests g").Where("g.event_id = ?", eventID)
	if status != "" {
		db = db.Where("g.status = ?", status)
	}
	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var guests []model.GuestDetail
	err := db.
		Select(`g.*, rr.response AS last_response, rr.created_at AS response_date,
			CASE WHEN g.checked_in THEN u.name END AS checked_in_by_name`).
		Joins("LEFT JOIN rsvp_responses rr ON rr.guest_id = g.id").
		Joins(`LEFT JOIN LATERAL (
			SELECT checked_in_by FROM checkin_logs
			WHERE guest_id = g.id
			ORDER BY check_in_time DESC
			LIMIT 1) cl ON TRUE`).
		Joins("LEFT JOIN users u ON u.id = cl.checked_in_by").
		Order("g.created_at DESC").
		Offset(offset).Limit(limit).
		Scan(&guests).Error
	if err != nil {
		return nil, 0, err
	}
	return guests, total, nil
}

func (r *analyticsRepo) EventDump(ctx context.Context, eventID string) (*model.EventDump, error) {
	var dump model.EventDump
	db := r.db.WithContext(ctx)

	if err := db.Where("event_id = ?", eventID).Order("created_at").Find(&dump.Guests).Error; err != nil {
		return nil, err
	}
	if err := db.Where("event_id = ?", eventID).Order("created_at").Find(&dump.RsvpResponses).Error; err != nil {
		return nil, err
	}
	if err := db.Where("event_id = ?", eventID).Order("check_in_time").Find(&dump.CheckinLogs).Error; err != nil {
		return nil, err
	}
	if err := db.Where("event_id = ?", eventID).Order("created_at").Find(&dump.MessageLogs).Error; err != nil {
		return nil, err
	}
	return &dump, nil
}
