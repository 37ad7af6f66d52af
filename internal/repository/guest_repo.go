package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/JoeSaf/Allika-sub000/internal/model"
	pkgerrors "github.com/JoeSaf/Allika-sub000/pkg/errors"
)

// GuestFilter narrows a guest list.
type GuestFilter struct {
	Status string
	Search string
}

// RsvpUpdate is what an RSVP response mirrors onto the guest row.
type RsvpUpdate struct {
	Status           string
	GuestCount       int
	SpecialRequests  string
	AdditionalFields datatypes.JSON
	RespondedAt      time.Time
}

// GuestRepository is data access for guests.
type GuestRepository interface {
	Create(ctx context.Context, guest *model.Guest) error
	GetByID(ctx context.Context, id string) (*model.Guest, error)
	GetByEventAndID(ctx context.Context, eventID, guestID string) (*model.Guest, error)
	GetByToken(ctx context.Context, token string) (*model.Guest, error)
	GetByAlias(ctx context.Context, alias string) (*model.Guest, error)
	GetByQR(ctx context.Context, guestID, eventID, token string) (*model.Guest, error)
	FindByEventAndPhone(ctx context.Context, eventID, phone string) (*model.Guest, error)
	List(ctx context.Context, eventID string, filter GuestFilter, offset, limit int) ([]model.Guest, int64, error)
	ListForMessaging(ctx context.Context, eventID string, ids []string) ([]model.Guest, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, eventID, guestID string) error

	// ApplyRsvp mirrors a response onto the guest row.
	ApplyRsvp(ctx context.Context, guestID string, upd RsvpUpdate) error
	// MarkCheckedIn sets checked_in only if it is currently false. Returns
	// pkgerrors.ErrNoRowsAffected when the guest is already checked in.
	MarkCheckedIn(ctx context.Context, guestID string, at time.Time) error
	// ClearCheckedIn unsets checked_in only if it is currently true. Returns
	// pkgerrors.ErrNoRowsAffected when the guest is not checked in.
	ClearCheckedIn(ctx context.Context, guestID string) error

	Stats(ctx context.Context, eventID string) (*model.GuestStats, error)
}

type guestRepo struct {
	db *gorm.DB
}

func NewGuestRepo(db *gorm.DB) GuestRepository {
	return &guestRepo{db: db}
}

func (r *guestRepo) Create(ctx context.Context, guest *model.Guest) error {
	return r.db.WithContext(ctx).Create(guest).Error
}

func (r *guestRepo) first(ctx context.Context, query string, args ...interface{}) (*model.Guest, error) {
	var g model.Guest
	if err := r.db.WithContext(ctx).Where(query, args...).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *guestRepo) GetByID(ctx context.Context, id string) (*model.Guest, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *guestRepo) GetByEventAndID(ctx context.Context, eventID, guestID string) (*model.Guest, error) {
	return r.first(ctx, "id = ? AND event_id = ?", guestID, eventID)
}

func (r *guestRepo) GetByToken(ctx context.Context, token string) (*model.Guest, error) {
	return r.first(ctx, "rsvp_token = ?", token)
}

func (r *guestRepo) GetByAlias(ctx context.Context, alias string) (*model.Guest, error) {
	return r.first(ctx, "rsvp_alias = ?", alias)
}

func (r *guestRepo) GetByQR(ctx context.Context, guestID, eventID, token string) (*model.Guest, error) {
	return r.first(ctx, "id = ? AND event_id = ? AND rsvp_token = ?", guestID, eventID, token)
}

func (r *guestRepo) FindByEventAndPhone(ctx context.Context, eventID, phone string) (*model.Guest, error) {
	return r.first(ctx, "event_id = ? AND phone = ?", eventID, phone)
}

func (r *guestRepo) List(ctx context.Context, eventID string, filter GuestFilter, offset, limit int) ([]model.Guest, int64, error) {
	var guests []model.Guest
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Guest{}).Where("event_id = ?", eventID)
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("(name ILIKE ? OR email ILIKE ? OR phone ILIKE ?)", like, like, like)
	}
	db = db.Session(&gorm.Session{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Order("created_at DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&guests).Error; err != nil {
		return nil, 0, err
	}

	return guests, total, nil
}

func (r *guestRepo) ListForMessaging(ctx context.Context, eventID string, ids []string) ([]model.Guest, error) {
	var guests []model.Guest
	db := r.db.WithContext(ctx).Where("event_id = ?", eventID)
	if len(ids) > 0 {
		db = db.Where("id IN ?", ids)
	}
	err := db.Order("created_at ASC").Find(&guests).Error
	return guests, err
}

func (r *guestRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&model.Guest{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *guestRepo) Delete(ctx context.Context, eventID, guestID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND event_id = ?", guestID, eventID).
		Delete(&model.Guest{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *guestRepo) ApplyRsvp(ctx context.Context, guestID string, upd RsvpUpdate) error {
	return r.Update(ctx, guestID, map[string]interface{}{
		"status":            upd.Status,
		"guest_count":       upd.GuestCount,
		"special_requests":  upd.SpecialRequests,
		"additional_fields": upd.AdditionalFields,
		"rsvp_date":         upd.RespondedAt,
	})
}

func (r *guestRepo) MarkCheckedIn(ctx context.Context, guestID string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Guest{}).
		Where("id = ? AND checked_in = ?", guestID, false).
		Updates(map[string]interface{}{
			"checked_in":    true,
			"check_in_time": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrNoRowsAffected
	}
	return nil
}

func (r *guestRepo) ClearCheckedIn(ctx context.Context, guestID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Guest{}).
		Where("id = ? AND checked_in = ?", guestID, true).
		Updates(map[string]interface{}{
			"checked_in":    false,
			"check_in_time": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrNoRowsAffected
	}
	return nil
}

func (r *guestRepo) Stats(ctx context.Context, eventID string) (*model.GuestStats, error) {
	var stats model.GuestStats
	err := r.db.WithContext(ctx).
		Model(&model.Guest{}).
		Select(`COUNT(*) AS total_guests,
			COUNT(*) FILTER (WHERE checked_in) AS checked_in_count,
			COUNT(*) FILTER (WHERE NOT checked_in) AS not_checked_in_count,
			COUNT(*) FILTER (WHERE status = 'confirmed') AS confirmed_count,
			COUNT(*) FILTER (WHERE status = 'declined') AS declined_count,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending_count,
			COALESCE(SUM(guest_count), 0) AS total_guest_count`).
		Where("event_id = ?", eventID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
