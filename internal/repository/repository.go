package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates every table-level repository over one *gorm.DB.
type Repository struct {
	db *gorm.DB

	User         UserRepository
	Event        EventRepository
	Guest        GuestRepository
	RsvpResponse RsvpResponseRepository
	CheckinLog   CheckinLogRepository
	MessageLog   MessageLogRepository
	Analytics    AnalyticsRepository
}

// NewRepository wires all repositories to the injected handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		User:         NewUserRepo(db),
		Event:        NewEventRepo(db),
		Guest:        NewGuestRepo(db),
		RsvpResponse: NewRsvpResponseRepo(db),
		CheckinLog:   NewCheckinLogRepo(db),
		MessageLog:   NewMessageLogRepo(db),
		Analytics:    NewAnalyticsRepo(db),
	}
}

// BeginTx starts a transaction. A Repository assembled from mocks has no
// handle and yields a nil tx; callers treat nil as "no transaction".
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx returns a Repository bound to tx. A nil tx returns r unchanged.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
