package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/JoeSaf/Allika-sub000/internal/model"
)

// MessageLogFilter narrows a message log listing.
type MessageLogFilter struct {
	Status      string
	MessageType string
}

// MessageLogRepository tracks one row per send attempt.
type MessageLogRepository interface {
	Create(ctx context.Context, log *model.MessageLog) error
	GetByID(ctx context.Context, id string) (*model.MessageLog, error)
	UpdateStatus(ctx context.Context, id, status string, errMsg *string, sentAt *time.Time) error
	List(ctx context.Context, eventID string, filter MessageLogFilter, offset, limit int) ([]model.MessageLogView, int64, error)
	ListFailed(ctx context.Context, eventID string) ([]model.MessageLog, error)
	HasDelivered(ctx context.Context, eventID, guestID, recipient string) (bool, error)
	Stats(ctx context.Context, eventID string) (*model.MessageStats, error)
}

type messageLogRepo struct {
	db *gorm.DB
}

func NewMessageLogRepo(db *gorm.DB) MessageLogRepository {
	return &messageLogRepo{db: db}
}

func (r *messageLogRepo) Create(ctx context.Context, log *model.MessageLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *messageLogRepo) GetByID(ctx context.Context, id string) (*model.MessageLog, error) {
	var log model.MessageLog
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&log).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *messageLogRepo) UpdateStatus(ctx context.Context, id, status string, errMsg *string, sentAt *time.Time) error {
	fields := map[string]interface{}{
		"status":        status,
		"error_message": errMsg,
	}
	if sentAt != nil {
		fields["sent_at"] = *sentAt
	}
	return r.db.WithContext(ctx).Model(&model.MessageLog{}).Where("id = ?", id).Updates(fields).Error
}

func (r *messageLogRepo) List(ctx context.Context, eventID string, filter MessageLogFilter, offset, limit int) ([]model.MessageLogView, int64, error) {
	db := r.db.WithContext(ctx).Table("message_logs ml").Where("ml.event_id = ?", eventID)
	if filter.Status != "" {
		db = db.Where("ml.status = ?", filter.Status)
	}
	if filter.MessageType != "" {
		db = db.Where("ml.message_type = ?", filter.MessageType)
	}
	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.MessageLogView
	err := db.
		Select("ml.*, g.name AS guest_name, g.email AS guest_email, g.phone AS guest_phone").
		Joins("LEFT JOIN guests g ON g.id = ml.guest_id").
		Order("ml.created_at DESC").
		Offset(offset).Limit(limit).
		Scan(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *messageLogRepo) ListFailed(ctx context.Context, eventID string) ([]model.MessageLog, error) {
	var logs []model.MessageLog
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND status = ?", eventID, model.MessageStatusFailed).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}

func (r *messageLogRepo) HasDelivered(ctx context.Context, eventID, guestID, recipient string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.MessageLog{}).
		Where("event_id = ? AND guest_id = ? AND recipient = ? AND status IN ?",
			eventID, guestID, recipient, []string{model.MessageStatusSent, model.MessageStatusDelivered}).
		Count(&n).Error
	return n > 0, err
}

func (r *messageLogRepo) Stats(ctx context.Context, eventID string) (*model.MessageStats, error) {
	var stats model.MessageStats
	err := r.db.WithContext(ctx).
		Model(&model.MessageLog{}).
		Select(`COUNT(*) AS total_messages,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending_count,
			COUNT(*) FILTER (WHERE status = 'sent') AS sent_count,
			COUNT(*) FILTER (WHERE status = 'delivered') AS delivered_count,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed_count,
			COUNT(*) FILTER (WHERE message_type = 'sms') AS sms_count,
			COUNT(*) FILTER (WHERE message_type = 'whatsapp') AS whats_app_count,
			COUNT(*) FILTER (WHERE message_type = 'email') AS email_count`).
		Where("event_id = ?", eventID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
