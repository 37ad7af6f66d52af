package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JoeSaf/Allika-sub000/internal/dto"
	"github.com/JoeSaf/Allika-sub000/internal/model"
	"github.com/JoeSaf/Allika-sub000/internal/repository"
	pkgerrors "github.com/JoeSaf/Allika-sub000/pkg/errors"
	"github.com/JoeSaf/Allika-sub000/pkg/qrcode"
)

const (
	defaultCheckinLogLimit = 50
	summaryRecentLimit     = 10
)

var (
	ErrCheckinForbidden  = errors.New("You do not have permission to check in guests for this event")
	ErrAlreadyCheckedIn  = errors.New("Guest has already been checked in")
	ErrGuestNotCheckedIn = errors.New("Guest is not checked in")
	ErrQRGuestNotFound   = errors.New("Guest not found or QR code is invalid")
)

// AlreadyCheckedInError carries the existing check-in so callers can show it.
// It matches ErrAlreadyCheckedIn under errors.Is.
type AlreadyCheckedInError struct {
	GuestID     string
	GuestName   string
	CheckInTime *time.Time
}

func (e *AlreadyCheckedInError) Error() string { return ErrAlreadyCheckedIn.Error() }
func (e *AlreadyCheckedInError) Unwrap() error { return ErrAlreadyCheckedIn }

// CheckinService flips guests' checked_in flag at the door. Every
// transition is a conditional update plus an audit row in one transaction.
type CheckinService interface {
	CheckInByToken(ctx context.Context, userID string, req *dto.CheckinByTokenRequest) (*dto.CheckinResult, error)
	CheckInByQR(ctx context.Context, userID, qrData string) (*dto.CheckinResult, error)
	CheckInManual(ctx context.Context, userID, eventID, guestID, notes string) (*dto.CheckinResult, error)
	Undo(ctx context.Context, userID, eventID, guestID, reason string) (*dto.CheckinResult, error)
	Logs(ctx context.Context, userID, eventID string, req *dto.CheckinLogListRequest) ([]model.CheckinLogView, int64, error)
	Summary(ctx context.Context, userID, eventID string) (*dto.CheckinSummary, error)
}

type checkinService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewCheckinService(repo *repository.Repository, logger *zap.Logger) CheckinService {
	return &checkinService{repo: repo, logger: logger, now: time.Now}
}

func (s *checkinService) CheckInByToken(ctx context.Context, userID string, req *dto.CheckinByTokenRequest) (*dto.CheckinResult, error) {
	guest, err := s.repo.Guest.GetByToken(ctx, strings.TrimSpace(req.Token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, err
	}
	if err := s.authorizeEvent(ctx, guest.EventID, userID); err != nil {
		return nil, err
	}
	return s.checkIn(ctx, guest, userID, req.Notes)
}

// CheckInByQR validates the scanned payload before touching the database.
func (s *checkinService) CheckInByQR(ctx context.Context, userID, qrData string) (*dto.CheckinResult, error) {
	payload, err := qrcode.Parse(qrData)
	if err != nil {
		return nil, err
	}

	guest, err := s.repo.Guest.GetByQR(ctx, payload.GuestID, payload.EventID, payload.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQRGuestNotFound
		}
		return nil, err
	}
	if err := s.authorizeEvent(ctx, guest.EventID, userID); err != nil {
		return nil, err
	}
	return s.checkIn(ctx, guest, userID, "Checked in via QR code")
}

func (s *checkinService) CheckInManual(ctx context.Context, userID, eventID, guestID, notes string) (*dto.CheckinResult, error) {
	if err := s.authorizeEvent(ctx, eventID, userID); err != nil {
		return nil, err
	}
	guest, err := s.guestOfEvent(ctx, eventID, guestID)
	if err != nil {
		return nil, err
	}
	return s.checkIn(ctx, guest, userID, notes)
}

func (s *checkinService) Undo(ctx context.Context, userID, eventID, guestID, reason string) (*dto.CheckinResult, error) {
	if err := s.authorizeEvent(ctx, eventID, userID); err != nil {
		return nil, err
	}
	guest, err := s.guestOfEvent(ctx, eventID, guestID)
	if err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "No reason provided"
	}
	now := s.now().UTC()

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Guest.ClearCheckedIn(ctx, guest.ID); err != nil {
		rollbackTx(tx)
		if errors.Is(err, pkgerrors.ErrNoRowsAffected) {
			return nil, ErrGuestNotCheckedIn
		}
		s.logger.Error("clear check-in failed", zap.String("guest_id", guest.ID), zap.Error(err))
		return nil, err
	}

	entry := &model.CheckinLog{
		GuestID:     guest.ID,
		EventID:     guest.EventID,
		CheckedInBy: &userID,
		CheckInTime: now,
		Notes:       "Check-in undone: " + reason,
	}
	if err := txRepo.CheckinLog.Create(ctx, entry); err != nil {
		rollbackTx(tx)
		s.logger.Error("write undo log failed", zap.String("guest_id", guest.ID), zap.Error(err))
		return nil, err
	}
	if err := commitTx(tx); err != nil {
		return nil, err
	}

	guest.CheckedIn = false
	guest.CheckInTime = nil
	s.logger.Info("check-in undone",
		zap.String("event_id", guest.EventID),
		zap.String("guest_id", guest.ID),
		zap.String("by", userID),
	)
	return &dto.CheckinResult{Guest: guest, Log: entry}, nil
}

func (s *checkinService) Logs(ctx context.Context, userID, eventID string, req *dto.CheckinLogListRequest) ([]model.CheckinLogView, int64, error) {
	if err := s.authorizeEvent(ctx, eventID, userID); err != nil {
		return nil, 0, err
	}
	return s.repo.CheckinLog.ListByEvent(ctx, eventID, req.GetOffset(defaultCheckinLogLimit), req.GetLimit(defaultCheckinLogLimit))
}

func (s *checkinService) Summary(ctx context.Context, userID, eventID string) (*dto.CheckinSummary, error) {
	if err := s.authorizeEvent(ctx, eventID, userID); err != nil {
		return nil, err
	}

	stats, err := s.repo.Guest.Stats(ctx, eventID)
	if err != nil {
		return nil, err
	}
	recent, _, err := s.repo.CheckinLog.ListByEvent(ctx, eventID, 0, summaryRecentLimit)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []model.CheckinLogView{}
	}

	return &dto.CheckinSummary{
		Statistics:     stats,
		RecentCheckins: recent,
		CheckInRate:    percent(stats.CheckedInCount, stats.TotalGuests),
	}, nil
}

// ────────── transition ──────────

// checkIn performs the false→true transition. Losing a race to another
// scanner surfaces as *AlreadyCheckedInError and writes no log row.
func (s *checkinService) checkIn(ctx context.Context, guest *model.Guest, userID, notes string) (*dto.CheckinResult, error) {
	now := s.now().UTC()

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Guest.MarkCheckedIn(ctx, guest.ID, now); err != nil {
		rollbackTx(tx)
		if errors.Is(err, pkgerrors.ErrNoRowsAffected) {
			return nil, s.alreadyCheckedIn(ctx, guest)
		}
		s.logger.Error("mark checked in failed", zap.String("guest_id", guest.ID), zap.Error(err))
		return nil, err
	}

	entry := &model.CheckinLog{
		GuestID:     guest.ID,
		EventID:     guest.EventID,
		CheckedInBy: &userID,
		CheckInTime: now,
		Notes:       strings.TrimSpace(notes),
	}
	if err := txRepo.CheckinLog.Create(ctx, entry); err != nil {
		rollbackTx(tx)
		s.logger.Error("write check-in log failed", zap.String("guest_id", guest.ID), zap.Error(err))
		return nil, err
	}
	if err := commitTx(tx); err != nil {
		return nil, err
	}

	guest.CheckedIn = true
	guest.CheckInTime = &now
	s.logger.Info("guest checked in",
		zap.String("event_id", guest.EventID),
		zap.String("guest_id", guest.ID),
		zap.String("by", userID),
	)
	return &dto.CheckinResult{Guest: guest, Log: entry}, nil
}

// alreadyCheckedIn rereads the guest so the conflict reports the winning
// check-in time rather than the stale copy.
func (s *checkinService) alreadyCheckedIn(ctx context.Context, guest *model.Guest) error {
	current := guest
	if fresh, err := s.repo.Guest.GetByID(ctx, guest.ID); err == nil {
		current = fresh
	}
	return &AlreadyCheckedInError{
		GuestID:     current.ID,
		GuestName:   current.Name,
		CheckInTime: current.CheckInTime,
	}
}

func (s *checkinService) authorizeEvent(ctx context.Context, eventID, userID string) error {
	event, err := s.repo.Event.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	if event.UserID != userID {
		return ErrCheckinForbidden
	}
	return nil
}

func (s *checkinService) guestOfEvent(ctx context.Context, eventID, guestID string) (*model.Guest, error) {
	guest, err := s.repo.Guest.GetByEventAndID(ctx, eventID, guestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, err
	}
	return guest, nil
}
