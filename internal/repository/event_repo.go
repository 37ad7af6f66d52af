package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeSaf/Allika-sub000/internal/model"
)

// EventFilter narrows an organizer's event list.
type EventFilter struct {
	Status string
	Search string
}

// EventRepository is data access for events and their per-event settings.
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	GetDetail(ctx context.Context, id string) (*model.Event, error)
	ListByUser(ctx context.Context, userID string, filter EventFilter, offset, limit int) ([]model.EventListItem, int64, error)
	ListAllByUser(ctx context.Context, userID string) ([]model.Event, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	IncrementMessagesSent(ctx context.Context, id string, n int) error

	GetSettings(ctx context.Context, eventID string) (*model.RsvpSettings, error)
	UpsertSettings(ctx context.Context, settings *model.RsvpSettings) error
	GetInvitationData(ctx context.Context, eventID string) (*model.InvitationData, error)
	UpsertInvitationData(ctx context.Context, data *model.InvitationData) error
}

type eventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(event).Error
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepo) GetDetail(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	err := r.db.WithContext(ctx).
		Preload("RsvpSettings").
		Preload("InvitationData").
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepo) ListByUser(ctx context.Context, userID string, filter EventFilter, offset, limit int) ([]model.EventListItem, int64, error) {
	var total int64

	base := r.db.WithContext(ctx).Model(&model.Event{}).Where("events.user_id = ?", userID)
	if filter.Status != "" {
		base = base.Where("events.status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		base = base.Where("(events.title ILIKE ? OR events.venue ILIKE ?)", like, like)
	}

	base = base.Session(&gorm.Session{})

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.EventListItem
	err := base.
		Select(`events.*,
			COUNT(g.id) AS guest_count,
			COUNT(g.id) FILTER (WHERE g.checked_in) AS checked_in_count`).
		Joins("LEFT JOIN guests g ON g.event_id = events.id").
		Group("events.id").
		Order("events.created_at DESC").
		Offset(offset).Limit(limit).
		Scan(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *eventRepo) ListAllByUser(ctx context.Context, userID string) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&events).Error
	return events, err
}

func (r *eventRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&model.Event{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *eventRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Event{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *eventRepo) IncrementMessagesSent(ctx context.Context, id string, n int) error {
	if n <= 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("id = ?", id).
		UpdateColumn("messages_sent", gorm.Expr("messages_sent + ?", n)).Error
}

// ── Settings ──

func (r *eventRepo) GetSettings(ctx context.Context, eventID string) (*model.RsvpSettings, error) {
	var s model.RsvpSettings
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *eventRepo) UpsertSettings(ctx context.Context, settings *model.RsvpSettings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoUpdates: clause.AssignmentColumns(rsvpSettingsColumns),
		}).
		Create(settings).Error
}

var rsvpSettingsColumns = []string{
	"title", "subtitle", "location", "welcome_message", "confirm_text", "decline_text",
	"guest_count_enabled", "guest_count_label", "guest_count_options",
	"special_requests_enabled", "special_requests_label", "special_requests_placeholder",
	"additional_fields", "submit_button_text", "thank_you_message",
	"background_color", "text_color", "button_color", "accent_color",
	"rsvp_contact", "rsvp_contact_secondary", "updated_at",
}

func (r *eventRepo) GetInvitationData(ctx context.Context, eventID string) (*model.InvitationData, error) {
	var d model.InvitationData
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *eventRepo) UpsertInvitationData(ctx context.Context, data *model.InvitationData) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "event_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"couple_name", "event_date", "event_date_words", "event_time", "venue",
				"reception", "reception_time", "theme", "rsvp_contact", "additional_info",
				"inviting_family", "selected_template", "updated_at",
			}),
		}).
		Create(data).Error
}
