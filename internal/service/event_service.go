package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/JoeSaf/Allika-sub000/internal/dto"
	"github.com/JoeSaf/Allika-sub000/internal/model"
	"github.com/JoeSaf/Allika-sub000/internal/repository"
)

const (
	eventDateLayout = "2006-01-02"
	eventTimeLayout = "15:04"
	defaultEventLen = 4 * time.Hour
)

var ErrEventDateRequired = errors.New("Event date is required for calendar export")

// EventService manages an organizer's events and their RSVP page content.
type EventService interface {
	Create(ctx context.Context, userID string, req *dto.CreateEventRequest) (*model.Event, error)
	List(ctx context.Context, userID string, req *dto.EventListRequest) ([]model.EventListItem, int64, error)
	Get(ctx context.Context, userID, eventID string) (*dto.EventDetailResponse, error)
	Update(ctx context.Context, userID, eventID string, req *dto.UpdateEventRequest) (*model.Event, error)
	Delete(ctx context.Context, userID, eventID string) error
	UpsertSettings(ctx context.Context, userID, eventID string, req *dto.RsvpSettingsRequest) (*model.RsvpSettings, error)
	UpsertInvitationData(ctx context.Context, userID, eventID string, req *dto.InvitationDataRequest) (*model.InvitationData, error)
	ExportCalendar(ctx context.Context, userID, eventID string) ([]byte, error)
}

type eventService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewEventService(repo *repository.Repository, logger *zap.Logger) EventService {
	return &eventService{repo: repo, logger: logger}
}

func (s *eventService) Create(ctx context.Context, userID string, req *dto.CreateEventRequest) (*model.Event, error) {
	date, err := parseEventDate(req.Date)
	if err != nil {
		return nil, err
	}

	event := &model.Event{
		UserID:               userID,
		Title:                req.Title,
		Type:                 req.Type,
		Date:                 date,
		Time:                 req.Time,
		Venue:                req.Venue,
		Reception:            req.Reception,
		ReceptionTime:        req.ReceptionTime,
		Theme:                req.Theme,
		RsvpContact:          FormatPhone(req.RsvpContact),
		RsvpContactSecondary: FormatPhone(req.RsvpContactSecondary),
		AdditionalInfo:       req.AdditionalInfo,
		InvitingFamily:       req.InvitingFamily,
		DateLang:             req.DateLang,
		Status:               req.Status,
	}
	if event.DateLang == "" {
		event.DateLang = "en"
	}
	if event.Status == "" {
		event.Status = model.EventStatusDraft
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Event.Create(ctx, event); err != nil {
		rollbackTx(tx)
		s.logger.Error("create event failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	settings := DefaultRsvpSettings(event)
	if err := txRepo.Event.UpsertSettings(ctx, settings); err != nil {
		rollbackTx(tx)
		s.logger.Error("create default rsvp settings failed", zap.String("event_id", event.ID), zap.Error(err))
		return nil, err
	}

	if err := commitTx(tx); err != nil {
		return nil, err
	}

	event.RsvpSettings = settings
	s.logger.Info("event created", zap.String("event_id", event.ID), zap.String("type", event.Type))
	return event, nil
}

func (s *eventService) List(ctx context.Context, userID string, req *dto.EventListRequest) ([]model.EventListItem, int64, error) {
	filter := repository.EventFilter{Status: req.Status, Search: strings.TrimSpace(req.Search)}
	return s.repo.Event.ListByUser(ctx, userID, filter, req.GetOffset(10), req.GetLimit(10))
}

func (s *eventService) Get(ctx context.Context, userID, eventID string) (*dto.EventDetailResponse, error) {
	if _, err := loadOwnedEvent(ctx, s.repo, eventID, userID); err != nil {
		return nil, err
	}

	event, err := s.repo.Event.GetDetail(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	stats, err := s.repo.Guest.Stats(ctx, eventID)
	if err != nil {
		return nil, err
	}

	return &dto.EventDetailResponse{Event: event, GuestStats: stats}, nil
}

func (s *eventService) Update(ctx context.Context, userID, eventID string, req *dto.UpdateEventRequest) (*model.Event, error) {
	if _, err := loadOwnedEvent(ctx, s.repo, eventID, userID); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	setString := func(col string, v *string) {
		if v != nil {
			fields[col] = *v
		}
	}
	setString("title", req.Title)
	setString("type", req.Type)
	setString("time", req.Time)
	setString("venue", req.Venue)
	setString("reception", req.Reception)
	setString("reception_time", req.ReceptionTime)
	setString("theme", req.Theme)
	setString("additional_info", req.AdditionalInfo)
	setString("inviting_family", req.InvitingFamily)
	setString("date_lang", req.DateLang)
	setString("status", req.Status)
	if req.RsvpContact != nil {
		fields["rsvp_contact"] = FormatPhone(*req.RsvpContact)
	}
	if req.RsvpContactSecondary != nil {
		fields["rsvp_contact_secondary"] = FormatPhone(*req.RsvpContactSecondary)
	}
	if req.Date != nil {
		date, err := parseEventDate(*req.Date)
		if err != nil {
			return nil, err
		}
		fields["date"] = date
	}

	if len(fields) > 0 {
		if err := s.repo.Event.Update(ctx, eventID, fields); err != nil {
			s.logger.Error("update event failed", zap.String("event_id", eventID), zap.Error(err))
			return nil, err
		}
	}

	return s.repo.Event.GetByID(ctx, eventID)
}

func (s *eventService) Delete(ctx context.Context, userID, eventID string) error {
	if _, err := loadOwnedEvent(ctx, s.repo, eventID, userID); err != nil {
		return err
	}
	if err := s.repo.Event.Delete(ctx, eventID); err != nil {
		s.logger.Error("delete event failed", zap.String("event_id", eventID), zap.Error(err))
		return err
	}
	s.logger.Info("event deleted", zap.String("event_id", eventID))
	return nil
}

func (s *eventService) UpsertSettings(ctx context.Context, userID, eventID string, req *dto.RsvpSettingsRequest) (*model.RsvpSettings, error) {
	event, err := loadOwnedEvent(ctx, s.repo, eventID, userID)
	if err != nil {
		return nil, err
	}

	settings, err := s.repo.Event.GetSettings(ctx, eventID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		settings = DefaultRsvpSettings(event)
	}

	applySettingsPatch(settings, req)
	if req.GuestCountOptions != nil {
		if settings.GuestCountOptions, err = toJSON(req.GuestCountOptions); err != nil {
			return nil, err
		}
	}
	if req.AdditionalFields != nil {
		if settings.AdditionalFields, err = toJSON(req.AdditionalFields); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Event.UpsertSettings(ctx, settings); err != nil {
		s.logger.Error("upsert rsvp settings failed", zap.String("event_id", eventID), zap.Error(err))
		return nil, err
	}
	return settings, nil
}

func (s *eventService) UpsertInvitationData(ctx context.Context, userID, eventID string, req *dto.InvitationDataRequest) (*model.InvitationData, error) {
	if _, err := loadOwnedEvent(ctx, s.repo, eventID, userID); err != nil {
		return nil, err
	}

	data := &model.InvitationData{
		EventID:          eventID,
		CoupleName:       req.CoupleName,
		EventDate:        req.EventDate,
		EventDateWords:   req.EventDateWords,
		EventTime:        req.EventTime,
		Venue:            req.Venue,
		Reception:        req.Reception,
		ReceptionTime:    req.ReceptionTime,
		Theme:            req.Theme,
		RsvpContact:      FormatPhone(req.RsvpContact),
		AdditionalInfo:   req.AdditionalInfo,
		InvitingFamily:   req.InvitingFamily,
		SelectedTemplate: req.SelectedTemplate,
	}
	if data.SelectedTemplate == "" {
		data.SelectedTemplate = "template1"
	}

	if err := s.repo.Event.UpsertInvitationData(ctx, data); err != nil {
		s.logger.Error("upsert invitation data failed", zap.String("event_id", eventID), zap.Error(err))
		return nil, err
	}
	return data, nil
}

// ExportCalendar renders the event as a single-VEVENT iCalendar document.
func (s *eventService) ExportCalendar(ctx context.Context, userID, eventID string) ([]byte, error) {
	event, err := loadOwnedEvent(ctx, s.repo, eventID, userID)
	if err != nil {
		return nil, err
	}
	if event.Date == nil {
		return nil, ErrEventDateRequired
	}
	return buildCalendar(event, time.Now().UTC())
}

// ────────── helpers ──────────

func parseEventDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(eventDateLayout, v)
	if err != nil {
		return nil, fmt.Errorf("invalid event date %q: %w", v, err)
	}
	return &t, nil
}

func buildCalendar(event *model.Event, now time.Time) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Alika//Event Invitations//EN")

	vevent := cal.AddEvent(event.ID + "@alika")
	vevent.SetDtStampTime(now)
	vevent.SetCreatedTime(event.CreatedAt)
	vevent.SetModifiedAt(event.UpdatedAt)
	vevent.SetSummary(event.Title)
	if event.Venue != "" {
		vevent.SetLocation(event.Venue)
	}
	if desc := calendarDescription(event); desc != "" {
		vevent.SetDescription(desc)
	}

	day := *event.Date
	if event.Time == "" {
		vevent.SetAllDayStartAt(day)
		vevent.SetAllDayEndAt(day.AddDate(0, 0, 1))
	} else {
		clock, err := time.Parse(eventTimeLayout, event.Time)
		if err != nil {
			return nil, fmt.Errorf("invalid event time %q: %w", event.Time, err)
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC)
		vevent.SetStartAt(start)
		vevent.SetEndAt(start.Add(defaultEventLen))
	}

	return []byte(cal.Serialize()), nil
}

func calendarDescription(event *model.Event) string {
	var parts []string
	if event.InvitingFamily != "" {
		parts = append(parts, "Hosted by "+event.InvitingFamily)
	}
	if event.Reception != "" {
		r := "Reception: " + event.Reception
		if event.ReceptionTime != "" {
			r += " at " + event.ReceptionTime
		}
		parts = append(parts, r)
	}
	if event.Theme != "" {
		parts = append(parts, "Theme: "+event.Theme)
	}
	if event.AdditionalInfo != "" {
		parts = append(parts, event.AdditionalInfo)
	}
	return strings.Join(parts, "\n")
}

// DefaultRsvpSettings builds the RSVP page settings an event starts with.
// Wording and enabled inputs depend on the event type.
func DefaultRsvpSettings(event *model.Event) *model.RsvpSettings {
	s := &model.RsvpSettings{
		EventID:                    event.ID,
		Title:                      event.Title,
		Subtitle:                   "Join us for this special event",
		Location:                   event.Venue,
		WelcomeMessage:             "We would be delighted to have you join us",
		ConfirmText:                "Yes, I'll be there",
		DeclineText:                "Sorry, can't make it",
		GuestCountEnabled:          true,
		GuestCountLabel:            "Number of guests",
		GuestCountOptions:          datatypes.JSON(`["1 person","2 people","3 people","4+ people"]`),
		SpecialRequestsEnabled:     true,
		SpecialRequestsLabel:       "Special requests or dietary restrictions",
		SpecialRequestsPlaceholder: "Let us know if you have any special requirements...",
		AdditionalFields:           datatypes.JSON(`[]`),
		SubmitButtonText:           "Submit RSVP",
		ThankYouMessage:            "Thank you for your response! We look forward to celebrating with you.",
		BackgroundColor:            "#334155",
		TextColor:                  "#ffffff",
		ButtonColor:                "#0d9488",
		AccentColor:                "#14b8a6",
		RsvpContact:                event.RsvpContact,
		RsvpContactSecondary:       event.RsvpContactSecondary,
	}

	switch event.Type {
	case "wedding":
		s.Title = event.Title + " - Wedding Invitation"
		s.Subtitle = "Join us in celebration of our special day"
		s.WelcomeMessage = "We would be honored by your presence at our wedding"
	case "birthday":
		s.Title = event.Title + " - Birthday Party"
		s.Subtitle = "Come celebrate with us!"
		s.WelcomeMessage = "Join us for an amazing birthday celebration"
	case "anniversary":
		s.Title = event.Title + " - Anniversary Celebration"
		s.Subtitle = "Celebrating years of love and happiness"
		s.WelcomeMessage = "Join us as we celebrate this special milestone"
	case "graduation":
		s.Title = event.Title + " - Graduation Ceremony"
		s.Subtitle = "Celebrating academic achievement"
		s.WelcomeMessage = "Join us in celebrating this academic milestone"
	case "corporate", "conference", "meeting", "seminar":
		s.Subtitle = "Professional gathering"
		s.WelcomeMessage = "You are invited to " + event.Title
		s.GuestCountEnabled = false
	case "awards":
		s.Title = event.Title + " - Awards Ceremony"
		s.Subtitle = "An evening of recognition and celebration"
		s.WelcomeMessage = "You are cordially invited to our awards ceremony"
		s.GuestCountEnabled = false
		s.SpecialRequestsEnabled = false
	case "festival":
		s.Title = event.Title + " - Festival"
		s.Subtitle = "Join us for a celebration"
		s.WelcomeMessage = "Come and enjoy the festivities with us"
	}
	return s
}

func applySettingsPatch(s *model.RsvpSettings, req *dto.RsvpSettingsRequest) {
	str := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	flag := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	str(&s.Title, req.Title)
	str(&s.Subtitle, req.Subtitle)
	str(&s.Location, req.Location)
	str(&s.WelcomeMessage, req.WelcomeMessage)
	str(&s.ConfirmText, req.ConfirmText)
	str(&s.DeclineText, req.DeclineText)
	flag(&s.GuestCountEnabled, req.GuestCountEnabled)
	str(&s.GuestCountLabel, req.GuestCountLabel)
	flag(&s.SpecialRequestsEnabled, req.SpecialRequestsEnabled)
	str(&s.SpecialRequestsLabel, req.SpecialRequestsLabel)
	str(&s.SpecialRequestsPlaceholder, req.SpecialRequestsPlaceholder)
	str(&s.SubmitButtonText, req.SubmitButtonText)
	str(&s.ThankYouMessage, req.ThankYouMessage)
	str(&s.BackgroundColor, req.BackgroundColor)
	str(&s.TextColor, req.TextColor)
	str(&s.ButtonColor, req.ButtonColor)
	str(&s.AccentColor, req.AccentColor)
	if req.RsvpContact != nil {
		s.RsvpContact = FormatPhone(*req.RsvpContact)
	}
	if req.RsvpContactSecondary != nil {
		s.RsvpContactSecondary = FormatPhone(*req.RsvpContactSecondary)
	}
}
