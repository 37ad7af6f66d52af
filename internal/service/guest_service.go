package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JoeSaf/Allika-sub000/config"
	"github.com/JoeSaf/Allika-sub000/internal/dto"
	"github.com/JoeSaf/Allika-sub000/internal/model"
	"github.com/JoeSaf/Allika-sub000/internal/repository"
	"github.com/JoeSaf/Allika-sub000/pkg/qrcode"
)

var (
	ErrGuestNotFound  = errors.New("Guest not found")
	ErrAliasTaken     = errors.New("RSVP alias is already in use")
	ErrNoFileUploaded = errors.New("No file uploaded")
	ErrTooManyGuests  = errors.New("A maximum of 1000 guests can be added at once")
)

const maxGuestsPerBatch = 1000

// DuplicatePhoneError rejects a guest whose phone is already on the event's list.
type DuplicatePhoneError struct {
	Phone     string
	GuestName string
}

func (e *DuplicatePhoneError) Error() string {
	return fmt.Sprintf("Phone number %s is already registered for guest: %s", e.Phone, e.GuestName)
}

// GuestExport is a rendered guest list file.
type GuestExport struct {
	Data        *bytes.Buffer
	Filename    string
	ContentType string
}

// GuestService manages the guest list of an event.
type GuestService interface {
	Add(ctx context.Context, userID, eventID string, req *dto.AddGuestRequest) (*model.Guest, error)
	BulkAdd(ctx context.Context, userID, eventID string, req *dto.BulkAddGuestsRequest) (*dto.BulkAddResponse, error)
	Import(ctx context.Context, userID, eventID, filename string, r io.Reader) (*dto.BulkAddResponse, error)
	CheckDuplicates(ctx context.Context, userID, eventID string, req *dto.CheckDuplicatesRequest) (*dto.CheckDuplicatesResponse, error)
	List(ctx context.Context, userID, eventID string, req *dto.GuestListRequest) ([]model.Guest, int64, error)
	Get(ctx context.Context, userID, eventID, guestID string) (*model.Guest, error)
	Update(ctx context.Context, userID, eventID, guestID string, req *dto.UpdateGuestRequest) (*model.Guest, error)
	Delete(ctx context.Context, userID, eventID, guestID string) error
	Export(ctx context.Context, userID, eventID, format string) (*GuestExport, error)
}

type guestService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewGuestService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) GuestService {
	return &guestService{cfg: cfg, repo: repo, logger: logger, now: time.Now}
}

func (s *guestService) Add(ctx context.Context, userID, eventID string, req *dto.AddGuestRequest) (*model.Guest, error) {
	if _, err := loadOwnedEvent(ctx, s.repo, eventID, userID); err != nil {
		return nil, err
	}

	phone := FormatPhone(req.Phone)
	if phone != "" {
		existing, err := s.repo.Guest.FindByEventAndPhone(ctx, eventID, phone)
		if err == nil {
			return nil, &DuplicatePhoneError{Phone: phone, GuestName: existing.Name}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	guest, err := s.createGuest(ctx, eventID, req, phone)
	if err != nil {
		return nil, err
	}
	s.logger.Info("guest added", zap.String("event_id", eventID), zap.String("guest_id", guest.ID))
	return guest, nil
}

func (s *guestService) BulkAdd(ctx context.Context, userID, eventID string, req *dto.BulkAddGuestsRequest) (*dto.BulkAddResponse, error) {
	if _, err := loadOwnedEvent(ctx, s.repo, eventID, userID); err != nil {
		return nil, err
	}
	if len(req.Guests) > maxGuestsPerBatch {
		return nil, ErrTooManyGuests
	}

	rows := make([]importedRow, len(req.Guests))
	for i, g := range req.Guests {
		rows[i] = importedRow{Line: i + 1, Guest: g}
	}
	return s.addRows(ctx, eventID, rows, nil), nil
}

func (s *guestService) Import(ctx context.Context, userID, eventID, filename string, r io.Reader) (*dto.BulkAddResponse, error) {
	if _, err := loadOwnedEvent(ctx, s.repo, eventID, userID); err != nil {
		return nil, err
	}
	if r == nil || filename == "" {
		return nil, ErrNoFileUploaded
	}

	format, err := detectFormat(filename)
	if err != nil {
		return nil, err
	}
	rows, rowErrs, err := parseGuestFile(format, r)
	if err != nil {
		return nil, err
	}
	if len(rows) > maxGuestsPerBatch {
		return nil, ErrTooManyGuests
	}

	result := s.addRows(ctx, eventID, rows, rowErrs)
	s.logger.Info("guest file imported",
		zap.String("event_id", eventID),
		zap.String("format", format),
		zap.Int("added", result.Added),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// addRows inserts each row independently; failures are collected per row.
func (s *guestService) addRows(ctx context.Context, eventID string, rows []importedRow, rowErrs []dto.RowError) *dto.BulkAddResponse {
	result := &dto.BulkAddResponse{
		Total:  len(rows) + len(rowErrs),
		Guests: make([]model.Guest, 0, len(rows)),
		Errors: rowErrs,
	}
	seen := make(map[string]string)

	for _, row := range rows {
		req := row.Guest
		fail := func(reason string) {
			result.Errors = append(result.Errors, dto.RowError{Row: row.Line, Name: req.Name, Reason: reason})
		}

		if strings.TrimSpace(req.Name) == "" {
			fail("Name is required")
			continue
		}

		phone := FormatPhone(req.Phone)
		if phone != "" {
			if name, dup := seen[phone]; dup {
				fail((&DuplicatePhoneError{Phone: phone, GuestName: name}).Error())
				continue
			}
			existing, err := s.repo.Guest.FindByEventAndPhone(ctx, eventID, phone)
			if err == nil {
				fail((&DuplicatePhoneError{Phone: phone, GuestName: existing.Name}).Error())
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				fail("Failed to check phone number")
				continue
			}
		}

		guest, err := s.createGuest(ctx, eventID, &req, phone)
		if err != nil {
			s.logger.Warn("bulk guest insert failed", zap.String("event_id", eventID), zap.Int("row", row.Line), zap.Error(err))
			fail("Failed to add guest")
			continue
		}
		if phone != "" {
			seen[phone] = guest.Name
		}
		result.Guests = append(result.Guests, *guest)
	}

	result.Added = len(result.Guests)
	result.Failed = len(result.Errors)
	return result
}

// createGuest assigns id, RSVP token and QR image, then inserts.
func (s *guestService) createGuest(ctx context.Context, eventID string, req *dto.AddGuestRequest, phone string) (*model.Guest, error) {
	token, err := newRsvpToken()
	if err != nil {
		return nil, err
	}
	fields, err := toJSON(req.AdditionalFields)
	if err != nil {
		return nil, err
	}

	guest := &model.Guest{
		EventID:          eventID,
		Name:             strings.TrimSpace(req.Name),
		Email:            strings.TrimSpace(req.Email),
		Phone:            phone,
		TableNumber:      req.TableNumber,
		Status:           model.GuestStatusPending,
		GuestCount:       req.GuestCount,
		SpecialRequests:  req.SpecialRequests,
		AdditionalFields: fields,
		RsvpToken:        token,
	}
	guest.ID = uuid.NewString()
	if guest.GuestCount < 1 {
		guest.GuestCount = 1
	}

	qr, err := qrcode.Encode(qrcode.NewPayload(guest.ID, eventID, token, s.now()))
	if err != nil {
		return nil, err
	}
	guest.QRCodeData = qr

	if err := s.repo.Guest.Create(ctx, guest); err != nil {
		return nil, err
	}
	return guest, nil
}

// CheckDuplicates reports phones that already have a sent or delivered
// invitation for this event.
func (s *guestService) CheckDuplicates(ctx context.Context, userID, eventID string, req *dto.CheckDuplicatesRequest) (*dto.CheckDuplicatesResponse, error) {
	if _, err := loadOwnedEvent(ctx, s.repo, eventID, userID); err != nil {
		return nil, err
	}

	resp := &dto.CheckDuplicatesResponse{Duplicates: []dto.DuplicatePhone{}}
	checked := make(map[string]bool)
	for _, raw := range req.Phones {
		phone := FormatPhone(raw)
		if phone == "" || checked[phone] {
			continue
		}
		checked[phone] = true

		guest, err := s.repo.Guest.FindByEventAndPhone(ctx, eventID, phone)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		delivered, err := s.repo.MessageLog.HasDelivered(ctx, eventID, guest.ID, phone)
		if err != nil {
			return nil, err
		}
		if delivered {
			resp.Duplicates = append(resp.Duplicates, dto.DuplicatePhone{Phone: phone, GuestID: guest.ID, GuestName: guest.Name})
		}
	}
	resp.Count = len(resp.Duplicates)
	return resp, nil
}

func (s *guestService) List(ctx context.Context, userID, eventID string, req *dto.GuestListRequest) ([]model.Guest, int64, error) {
	if _, err := loadOwnedEvent(ctx, s.repo, eventID, userID); err != nil {
		return nil, 0, err
	}
	filter := repository.GuestFilter{Status: req.Status, Search: strings.TrimSpace(req.Search)}
	return s.repo.Guest.List(ctx, eventID, filter, req.GetOffset(50), req.GetLimit(50))
}

func (s *guestService) Get(ctx context.Context, userID, eventID, guestID string) (*model.Guest, error) {
	if _, err := loadOwnedEvent(ctx, s.repo, eventID, userID); err != nil {
		return nil, err
	}
	return s.getGuest(ctx, eventID, guestID)
}

func (s *guestService) getGuest(ctx context.Context, eventID, guestID string) (*model.Guest, error) {
	guest, err := s.repo.Guest.GetByEventAndID(ctx, eventID, guestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, err
	}
	return guest, nil
}

func (s *guestService) Update(ctx context.Context, userID, eventID, guestID string, req *dto.UpdateGuestRequest) (*model.Guest, error) {
	if _, err := loadOwnedEvent(ctx, s.repo, eventID, userID); err != nil {
		return nil, err
	}
	guest, err := s.getGuest(ctx, eventID, guestID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		fields["email"] = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		phone := FormatPhone(*req.Phone)
		if phone != "" && phone != guest.Phone {
			existing, err := s.repo.Guest.FindByEventAndPhone(ctx, eventID, phone)
			if err == nil && existing.ID != guestID {
				return nil, &DuplicatePhoneError{Phone: phone, GuestName: existing.Name}
			}
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}
		fields["phone"] = phone
	}
	if req.TableNumber != nil {
		fields["table_number"] = *req.TableNumber
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.GuestCount != nil {
		fields["guest_count"] = *req.GuestCount
	}
	if req.SpecialRequests != nil {
		fields["special_requests"] = *req.SpecialRequests
	}
	if req.RsvpAlias != nil {
		if alias := strings.TrimSpace(*req.RsvpAlias); alias == "" {
			fields["rsvp_alias"] = nil
		} else {
			fields["rsvp_alias"] = alias
		}
	}

	if len(fields) > 0 {
		if err := s.repo.Guest.Update(ctx, guestID, fields); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrAliasTaken
			}
			s.logger.Error("update guest failed", zap.String("guest_id", guestID), zap.Error(err))
			return nil, err
		}
	}
	return s.getGuest(ctx, eventID, guestID)
}

func (s *guestService) Delete(ctx context.Context, userID, eventID, guestID string) error {
	if _, err := loadOwnedEvent(ctx, s.repo, eventID, userID); err != nil {
		return err
	}
	if err := s.repo.Guest.Delete(ctx, eventID, guestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGuestNotFound
		}
		return err
	}
	s.logger.Info("guest deleted", zap.String("event_id", eventID), zap.String("guest_id", guestID))
	return nil
}

func (s *guestService) Export(ctx context.Context, userID, eventID, format string) (*GuestExport, error) {
	event, err := loadOwnedEvent(ctx, s.repo, eventID, userID)
	if err != nil {
		return nil, err
	}

	guests, _, err := s.repo.Guest.List(ctx, eventID, repository.GuestFilter{}, 0, 0)
	if err != nil {
		return nil, err
	}

	rsvpBase := strings.TrimRight(s.cfg.Server.FrontendURL, "/") + "/rsvp/"
	base := fmt.Sprintf("guests_%s", slug(event.Title))

	switch strings.ToLower(format) {
	case "", FormatCSV:
		buf, err := writeGuestsCSV(guests, rsvpBase)
		if err != nil {
			return nil, err
		}
		return &GuestExport{Data: buf, Filename: base + ".csv", ContentType: "text/csv; charset=utf-8"}, nil
	case FormatXLSX:
		buf, err := writeGuestsXLSX(guests, rsvpBase)
		if err != nil {
			s.logger.Error("write guest workbook failed", zap.String("event_id", eventID), zap.Error(err))
			return nil, err
		}
		return &GuestExport{
			Data:        buf,
			Filename:    base + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		}, nil
	}
	return nil, ErrExportFormat
}

// slug keeps ASCII letters and digits, joining runs of anything else with "_".
func slug(s string) string {
	var b strings.Builder
	lastSep := true
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastSep = false
		} else if !lastSep {
			b.WriteByte('_')
			lastSep = true
		}
	}
	out := strings.TrimSuffix(b.String(), "_")
	if out == "" {
		return "event"
	}
	return out
}
