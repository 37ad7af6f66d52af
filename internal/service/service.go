package service

import (
	"go.uber.org/zap"

	"github.com/JoeSaf/Allika-sub000/config"
	"github.com/JoeSaf/Allika-sub000/internal/repository"
	"github.com/JoeSaf/Allika-sub000/pkg/jwt"
	"github.com/JoeSaf/Allika-sub000/pkg/messaging"
	"github.com/JoeSaf/Allika-sub000/pkg/redis"
)

// Service is the aggregate of every business service.
type Service struct {
	Auth      AuthService
	Event     EventService
	Guest     GuestService
	Rsvp      RsvpService
	Checkin   CheckinService
	Messaging MessagingService
	Analytics AnalyticsService
}

// NewService wires all services. rdb may be nil when Redis is unavailable;
// logout then cannot revoke refresh tokens.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	senders *messaging.Registry,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:      NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Event:     NewEventService(repo, logger),
		Guest:     NewGuestService(cfg, repo, logger),
		Rsvp:      NewRsvpService(repo, logger),
		Checkin:   NewCheckinService(repo, logger),
		Messaging: NewMessagingService(cfg, repo, senders, logger),
		Analytics: NewAnalyticsService(repo, logger),
	}
}
