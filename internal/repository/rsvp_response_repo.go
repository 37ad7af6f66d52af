package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/JoeSaf/Allika-sub000/internal/model"
)

// RsvpResponseRepository is data access for submitted RSVPs.
type RsvpResponseRepository interface {
	// Create fails with gorm.ErrDuplicatedKey when the guest already responded.
	Create(ctx context.Context, resp *model.RsvpResponse) error
	ExistsForGuest(ctx context.Context, guestID string) (bool, error)
	LatestForGuest(ctx context.Context, guestID string) (*model.RsvpResponse, error)
	DailyCounts(ctx context.Context, eventID string) ([]model.DailyCount, error)
}

type rsvpResponseRepo struct {
	db *gorm.DB
}

func NewRsvpResponseRepo(db *gorm.DB) RsvpResponseRepository {
	return &rsvpResponseRepo{db: db}
}

func (r *rsvpResponseRepo) Create(ctx context.Context, resp *model.RsvpResponse) error {
	return r.db.WithContext(ctx).Create(resp).Error
}

func (r *rsvpResponseRepo) ExistsForGuest(ctx context.Context, guestID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.RsvpResponse{}).
		Where("guest_id = ?", guestID).
		Count(&n).Error
	return n > 0, err
}

func (r *rsvpResponseRepo) LatestForGuest(ctx context.Context, guestID string) (*model.RsvpResponse, error) {
	var resp model.RsvpResponse
	err := r.db.WithContext(ctx).
		Where("guest_id = ?", guestID).
		Order("created_at DESC").
		First(&resp).Error
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *rsvpResponseRepo) DailyCounts(ctx context.Context, eventID string) ([]model.DailyCount, error) {
	var rows []model.DailyCount
	err := r.db.WithContext(ctx).
		Model(&model.RsvpResponse{}).
		Select("TO_CHAR(DATE(created_at), 'YYYY-MM-DD') AS date, COUNT(*) AS count").
		Where("event_id = ?", eventID).
		Group("DATE(created_at)").
		Order("DATE(created_at)").
		Scan(&rows).Error
	return rows, err
}
