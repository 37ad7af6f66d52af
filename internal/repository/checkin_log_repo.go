package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/JoeSaf/Allika-sub000/internal/model"
)

// CheckinLogRepository is the append-only check-in audit trail.
type CheckinLogRepository interface {
	Create(ctx context.Context, log *model.CheckinLog) error
	ListByEvent(ctx context.Context, eventID string, offset, limit int) ([]model.CheckinLogView, int64, error)
	DailyCounts(ctx context.Context, eventID string) ([]model.DailyCount, error)
}

type checkinLogRepo struct {
	db *gorm.DB
}

func NewCheckinLogRepo(db *gorm.DB) CheckinLogRepository {
	return &checkinLogRepo{db: db}
}

func (r *checkinLogRepo) Create(ctx context.Context, log *model.CheckinLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *checkinLogRepo) ListByEvent(ctx context.Context, eventID string, offset, limit int) ([]model.CheckinLogView, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.CheckinLog{}).
		Where("event_id = ?", eventID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.CheckinLogView
	err := r.db.WithContext(ctx).
		Table("checkin_logs cl").
		Select("cl.*, g.name AS guest_name, g.email AS guest_email, u.name AS checked_in_by_name").
		Joins("JOIN guests g ON g.id = cl.guest_id").
		Joins("LEFT JOIN users u ON u.id = cl.checked_in_by").
		Where("cl.event_id = ?", eventID).
		Order("cl.check_in_time DESC").
		Offset(offset).Limit(limit).
		Scan(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *checkinLogRepo) DailyCounts(ctx context.Context, eventID string) ([]model.DailyCount, error) {
	var rows []model.DailyCount
	err := r.db.WithContext(ctx).
		Model(&model.CheckinLog{}).
		Select("TO_CHAR(DATE(check_in_time), 'YYYY-MM-DD') AS date, COUNT(*) AS count").
		Where("event_id = ?", eventID).
		Group("DATE(check_in_time)").
		Order("DATE(check_in_time)").
		Scan(&rows).Error
	return rows, err
}
