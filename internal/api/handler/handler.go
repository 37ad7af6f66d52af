package handler

import (
	"go.uber.org/zap"

	"github.com/JoeSaf/Allika-sub000/config"
	"github.com/JoeSaf/Allika-sub000/internal/service"
)

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth      *AuthHandler
	Event     *EventHandler
	Guest     *GuestHandler
	Rsvp      *RsvpHandler
	Checkin   *CheckinHandler
	Messaging *MessagingHandler
	Analytics *AnalyticsHandler
}

// NewHandler builds all handlers from the service aggregate.
func NewHandler(cfg *config.Config, svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth),
		Event:     NewEventHandler(svc.Event),
		Guest:     NewGuestHandler(svc.Guest, cfg.Server.UploadLimit),
		Rsvp:      NewRsvpHandler(svc.Rsvp),
		Checkin:   NewCheckinHandler(svc.Checkin),
		Messaging: NewMessagingHandler(svc.Messaging, logger),
		Analytics: NewAnalyticsHandler(svc.Analytics),
	}
}
