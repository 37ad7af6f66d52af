package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JoeSaf/Allika-sub000/internal/dto"
	"github.com/JoeSaf/Allika-sub000/internal/model"
	"github.com/JoeSaf/Allika-sub000/internal/repository"
)

var (
	ErrRsvpLinkNotFound    = errors.New("RSVP link not found or event is not active")
	ErrRsvpAlreadyAnswered = errors.New("RSVP response already submitted")
	ErrQRCodeNotFound      = errors.New("QR code not found for this guest")
)

// RsvpService serves the public, unauthenticated RSVP page.
type RsvpService interface {
	View(ctx context.Context, tokenOrAlias string) (*dto.RsvpViewResponse, error)
	Submit(ctx context.Context, tokenOrAlias string, req *dto.SubmitRsvpRequest, meta dto.RequestMeta) (*dto.RsvpSubmitResponse, error)
	Status(ctx context.Context, token string) (*dto.RsvpStatusResponse, error)
	QRCode(ctx context.Context, token string) (*dto.QRCodeResponse, error)
}

type rsvpService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewRsvpService(repo *repository.Repository, logger *zap.Logger) RsvpService {
	return &rsvpService{repo: repo, logger: logger, now: time.Now}
}

// findGuest resolves an alias first, then a token. Either match counts only
// when its event is active, so an alias on a closed event does not shadow a
// live token.
func (s *rsvpService) findGuest(ctx context.Context, tokenOrAlias string) (*model.Guest, *model.Event, error) {
	guest, event, err := s.activeGuest(ctx, s.repo.Guest.GetByAlias, tokenOrAlias)
	if errors.Is(err, ErrRsvpLinkNotFound) {
		guest, event, err = s.activeGuest(ctx, s.repo.Guest.GetByToken, tokenOrAlias)
	}
	return guest, event, err
}

func (s *rsvpService) activeGuest(
	ctx context.Context,
	lookup func(context.Context, string) (*model.Guest, error),
	key string,
) (*model.Guest, *model.Event, error) {
	guest, err := lookup(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRsvpLinkNotFound
		}
		return nil, nil, err
	}

	event, err := s.repo.Event.GetByID(ctx, guest.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRsvpLinkNotFound
		}
		return nil, nil, err
	}
	if !event.IsActive() {
		return nil, nil, ErrRsvpLinkNotFound
	}
	return guest, event, nil
}

func (s *rsvpService) View(ctx context.Context, tokenOrAlias string) (*dto.RsvpViewResponse, error) {
	guest, event, err := s.findGuest(ctx, tokenOrAlias)
	if err != nil {
		return nil, err
	}

	settings, err := s.repo.Event.GetSettings(ctx, event.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		settings = DefaultRsvpSettings(event)
	}

	var invitation interface{} = map[string]interface{}{}
	data, err := s.repo.Event.GetInvitationData(ctx, event.ID)
	switch {
	case err == nil:
		invitation = data
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	last, err := s.latestResponse(ctx, guest.ID)
	if err != nil {
		return nil, err
	}

	return &dto.RsvpViewResponse{
		Guest: dto.RsvpGuest{
			ID:               guest.ID,
			Name:             guest.Name,
			Email:            guest.Email,
			Phone:            guest.Phone,
			Status:           guest.Status,
			GuestCount:       guest.GuestCount,
			SpecialRequests:  guest.SpecialRequests,
			AdditionalFields: guest.AdditionalFields,
			RsvpDate:         guest.RsvpDate,
		},
		Event: dto.RsvpEvent{
			ID:             event.ID,
			Title:          event.Title,
			Type:           event.Type,
			Date:           event.Date,
			Time:           event.Time,
			Venue:          event.Venue,
			Reception:      event.Reception,
			ReceptionTime:  event.ReceptionTime,
			Theme:          event.Theme,
			AdditionalInfo: event.AdditionalInfo,
			InvitingFamily: event.InvitingFamily,
			DateLang:       event.DateLang,
		},
		RsvpSettings:   settings,
		InvitationData: invitation,
		HasResponded:   last != nil,
		LastResponse:   last,
	}, nil
}

// Submit records a guest's one and only response and mirrors it onto the
// guest row. A second submission is rejected with ErrRsvpAlreadyAnswered.
func (s *rsvpService) Submit(ctx context.Context, tokenOrAlias string, req *dto.SubmitRsvpRequest, meta dto.RequestMeta) (*dto.RsvpSubmitResponse, error) {
	guest, event, err := s.findGuest(ctx, tokenOrAlias)
	if err != nil {
		return nil, err
	}

	responded, err := s.repo.RsvpResponse.ExistsForGuest(ctx, guest.ID)
	if err != nil {
		return nil, err
	}
	if responded {
		return nil, ErrRsvpAlreadyAnswered
	}

	guestCount := 1
	if req.GuestCount != nil {
		guestCount = *req.GuestCount
	}
	fields, err := toJSON(req.AdditionalFields)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()

	resp := &model.RsvpResponse{
		GuestID:          guest.ID,
		EventID:          event.ID,
		Response:         req.Response,
		GuestCount:       guestCount,
		SpecialRequests:  req.SpecialRequests,
		AdditionalFields: fields,
		IPAddress:        meta.IPAddress,
		UserAgent:        meta.UserAgent,
		CreatedAt:        now,
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.RsvpResponse.Create(ctx, resp); err != nil {
		rollbackTx(tx)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRsvpAlreadyAnswered
		}
		s.logger.Error("insert rsvp response failed", zap.String("guest_id", guest.ID), zap.Error(err))
		return nil, err
	}

	err = txRepo.Guest.ApplyRsvp(ctx, guest.ID, repository.RsvpUpdate{
		Status:           req.Response,
		GuestCount:       guestCount,
		SpecialRequests:  req.SpecialRequests,
		AdditionalFields: fields,
		RespondedAt:      now,
	})
	if err != nil {
		rollbackTx(tx)
		s.logger.Error("apply rsvp to guest failed", zap.String("guest_id", guest.ID), zap.Error(err))
		return nil, err
	}

	if err := commitTx(tx); err != nil {
		return nil, err
	}

	updated, err := s.repo.Guest.GetByID(ctx, guest.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("rsvp submitted",
		zap.String("event_id", event.ID),
		zap.String("guest_id", guest.ID),
		zap.String("response", req.Response),
	)
	return &dto.RsvpSubmitResponse{Guest: updated, Response: resp}, nil
}

// Status is a read-only lookup by token and works for inactive events too.
func (s *rsvpService) Status(ctx context.Context, token string) (*dto.RsvpStatusResponse, error) {
	guest, err := s.repo.Guest.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, err
	}
	event, err := s.repo.Event.GetByID(ctx, guest.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, err
	}
	last, err := s.latestResponse(ctx, guest.ID)
	if err != nil {
		return nil, err
	}

	out := &dto.RsvpStatusResponse{Response: last}
	out.Guest.Name = guest.Name
	out.Guest.Status = guest.Status
	out.Guest.RsvpDate = guest.RsvpDate
	out.Guest.GuestCount = guest.GuestCount
	out.Guest.SpecialRequests = guest.SpecialRequests
	out.Event.Title = event.Title
	out.Event.Date = event.Date
	out.Event.Venue = event.Venue
	return out, nil
}

func (s *rsvpService) QRCode(ctx context.Context, token string) (*dto.QRCodeResponse, error) {
	guest, err := s.repo.Guest.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, err
	}
	if guest.QRCodeData == "" {
		return nil, ErrQRCodeNotFound
	}
	return &dto.QRCodeResponse{QRCode: guest.QRCodeData}, nil
}

func (s *rsvpService) latestResponse(ctx context.Context, guestID string) (*model.RsvpResponse, error) {
	last, err := s.repo.RsvpResponse.LatestForGuest(ctx, guestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return last, nil
}
