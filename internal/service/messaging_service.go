package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/JoeSaf/Allika-sub000/config"
	"github.com/JoeSaf/Allika-sub000/internal/dto"
	"github.com/JoeSaf/Allika-sub000/internal/model"
	"github.com/JoeSaf/Allika-sub000/internal/repository"
	"github.com/JoeSaf/Allika-sub000/pkg/messaging"
)

var (
	ErrNoGuestsToMessage = errors.New("No guests found to send invitations to")
	ErrNoFailedMessages  = errors.New("No failed messages to retry")
)

var swahiliMonths = [...]string{
	"Januari", "Februari", "Machi", "Aprili", "Mei", "Juni",
	"Julai", "Agosti", "Septemba", "Oktoba", "Novemba", "Desemba",
}

// MessagingService sends invitations and tracks each attempt in message_logs.
type MessagingService interface {
	SendInvites(ctx context.Context, userID, eventID string, req *dto.SendInvitesRequest) (*dto.SendInvitesResponse, error)
	Logs(ctx context.Context, userID, eventID string, req *dto.MessageLogListRequest) ([]model.MessageLogView, int64, error)
	Summary(ctx context.Context, userID, eventID string) (*dto.MessageSummary, error)
	Retry(ctx context.Context, userID, eventID string) (*dto.SendInvitesResponse, error)
}

type messagingService struct {
	cfg     *config.Config
	repo    *repository.Repository
	senders *messaging.Registry
	logger  *zap.Logger
	now     func() time.Time
}

func NewMessagingService(cfg *config.Config, repo *repository.Repository, senders *messaging.Registry, logger *zap.Logger) MessagingService {
	if senders == nil {
		senders = messaging.NewRegistry()
	}
	return &messagingService{cfg: cfg, repo: repo, senders: senders, logger: logger, now: time.Now}
}

func (s *messagingService) SendInvites(ctx context.Context, userID, eventID string, req *dto.SendInvitesRequest) (*dto.SendInvitesResponse, error) {
	event, err := loadOwnedEvent(ctx, s.repo, eventID, userID)
	if err != nil {
		return nil, err
	}

	guests, err := s.repo.Guest.ListForMessaging(ctx, eventID, req.GuestIDs)
	if err != nil {
		return nil, err
	}
	if len(guests) == 0 {
		return nil, ErrNoGuestsToMessage
	}

	title := event.Title
	if inv, err := s.repo.Event.GetInvitationData(ctx, eventID); err == nil && inv.CoupleName != "" {
		title = inv.CoupleName
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	sender, senderErr := s.senders.Get(req.MessageType)
	result := &dto.SendInvitesResponse{Results: make([]dto.SendOutcome, 0, len(guests))}

	for i := range guests {
		if ctx.Err() != nil {
			break
		}
		g := &guests[i]
		data := messaging.TemplateData{
			GuestName:  g.Name,
			EventTitle: title,
			EventDate:  formatEventDate(event),
			EventTime:  event.Time,
			Venue:      event.Venue,
			RsvpLink:   s.rsvpLink(g.RsvpToken),
		}
		body := messaging.DefaultBody(req.MessageType, data)
		if req.CustomMessage != "" {
			body = messaging.Render(req.CustomMessage, data)
		}

		guestID := g.ID
		entry := &model.MessageLog{
			EventID:        eventID,
			GuestID:        &guestID,
			MessageType:    req.MessageType,
			Recipient:      recipientFor(req.MessageType, g),
			MessageContent: body,
			Status:         model.MessageStatusPending,
		}
		if err := s.repo.MessageLog.Create(ctx, entry); err != nil {
			s.logger.Error("create message log failed", zap.String("guest_id", g.ID), zap.Error(err))
			return nil, err
		}

		outcome := s.deliver(ctx, entry, sender, senderErr, messaging.DefaultSubject(title))
		outcome.GuestID = g.ID
		outcome.GuestName = g.Name
		result.Add(outcome)
	}

	s.finish(ctx, eventID, result)
	s.logger.Info("invitations sent",
		zap.String("event_id", eventID),
		zap.String("channel", req.MessageType),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// Retry resets failed attempts to pending and sends the stored content again.
func (s *messagingService) Retry(ctx context.Context, userID, eventID string) (*dto.SendInvitesResponse, error) {
	event, err := loadOwnedEvent(ctx, s.repo, eventID, userID)
	if err != nil {
		return nil, err
	}

	failed, err := s.repo.MessageLog.ListFailed(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(failed) == 0 {
		return nil, ErrNoFailedMessages
	}

	result := &dto.SendInvitesResponse{Results: make([]dto.SendOutcome, 0, len(failed))}
	for i := range failed {
		if ctx.Err() != nil {
			break
		}
		entry := &failed[i]
		if err := s.repo.MessageLog.UpdateStatus(ctx, entry.ID, model.MessageStatusPending, nil, nil); err != nil {
			return nil, err
		}
		entry.Status = model.MessageStatusPending

		sender, senderErr := s.senders.Get(entry.MessageType)
		outcome := s.deliver(ctx, entry, sender, senderErr, messaging.DefaultSubject(event.Title))
		if entry.GuestID != nil {
			outcome.GuestID = *entry.GuestID
		}
		result.Add(outcome)
	}

	s.finish(ctx, eventID, result)
	return result, nil
}

func (s *messagingService) Logs(ctx context.Context, userID, eventID string, req *dto.MessageLogListRequest) ([]model.MessageLogView, int64, error) {
	if _, err := loadOwnedEvent(ctx, s.repo, eventID, userID); err != nil {
		return nil, 0, err
	}
	filter := repository.MessageLogFilter{Status: req.Status, MessageType: req.MessageType}
	return s.repo.MessageLog.List(ctx, eventID, filter, req.GetOffset(50), req.GetLimit(50))
}

func (s *messagingService) Summary(ctx context.Context, userID, eventID string) (*dto.MessageSummary, error) {
	if _, err := loadOwnedEvent(ctx, s.repo, eventID, userID); err != nil {
		return nil, err
	}
	stats, err := s.repo.MessageLog.Stats(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &dto.MessageSummary{MessageStats: stats, DeliveryRate: percent(stats.DeliveredCount, stats.TotalMessages)}, nil
}

// ────────── helpers ──────────

// deliver dispatches one pending log entry and records sent or failed.
func (s *messagingService) deliver(ctx context.Context, entry *model.MessageLog, sender messaging.Sender, senderErr error, subject string) dto.SendOutcome {
	outcome := dto.SendOutcome{Recipient: entry.Recipient, LogID: entry.ID}

	sendErr := senderErr
	if sendErr == nil {
		sendErr = sender.Send(ctx, messaging.Message{To: entry.Recipient, Subject: subject, Body: entry.MessageContent})
	}

	if sendErr != nil {
		msg := sendErr.Error()
		if err := s.repo.MessageLog.UpdateStatus(ctx, entry.ID, model.MessageStatusFailed, &msg, nil); err != nil {
			s.logger.Error("mark message failed", zap.String("log_id", entry.ID), zap.Error(err))
		}
		s.logger.Warn("message delivery failed",
			zap.String("log_id", entry.ID),
			zap.String("channel", entry.MessageType),
			zap.Error(sendErr),
		)
		entry.Status = model.MessageStatusFailed
		entry.ErrorMessage = &msg
		outcome.Status = model.MessageStatusFailed
		outcome.Error = msg
		return outcome
	}

	sentAt := s.now().UTC()
	if err := s.repo.MessageLog.UpdateStatus(ctx, entry.ID, model.MessageStatusSent, nil, &sentAt); err != nil {
		s.logger.Error("mark message sent", zap.String("log_id", entry.ID), zap.Error(err))
	}
	entry.Status = model.MessageStatusSent
	entry.SentAt = &sentAt
	outcome.Status = model.MessageStatusSent
	return outcome
}

func (s *messagingService) finish(ctx context.Context, eventID string, result *dto.SendInvitesResponse) {
	if result.Sent == 0 {
		return
	}
	if err := s.repo.Event.IncrementMessagesSent(ctx, eventID, result.Sent); err != nil {
		s.logger.Error("increment messages_sent failed", zap.String("event_id", eventID), zap.Error(err))
	}
}

func (s *messagingService) rsvpLink(token string) string {
	return strings.TrimRight(s.cfg.Server.FrontendURL, "/") + "/rsvp/" + token
}

func recipientFor(channel string, g *model.Guest) string {
	if channel == messaging.ChannelEmail {
		return g.Email
	}
	return g.Phone
}

// formatEventDate renders the date in the event's invitation language.
func formatEventDate(e *model.Event) string {
	if e.Date == nil {
		return ""
	}
	d := *e.Date
	if e.DateLang == "sw" {
		return fmt.Sprintf("%d %s %d", d.Day(), swahiliMonths[d.Month()-1], d.Year())
	}
	return d.Format("Monday, 2 January 2006")
}

// SendMessageSummary is the human-readable result line of a send run.
func SendMessageSummary(r *dto.SendInvitesResponse) string {
	return fmt.Sprintf("Invitations sent: %d successful, %d failed", r.Sent, r.Failed)
}
