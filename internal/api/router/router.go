package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JoeSaf/Allika-sub000/config"
	"github.com/JoeSaf/Allika-sub000/internal/api/handler"
	"github.com/JoeSaf/Allika-sub000/internal/api/middleware"
	"github.com/JoeSaf/Allika-sub000/pkg/jwt"
	"github.com/JoeSaf/Allika-sub000/pkg/redis"
)

// Setup builds the gin engine with every route under /api.
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	limiter *middleware.RateLimiter,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	_ = r.SetTrustedProxies(nil)

	// ── global middleware ──
	r.Use(middleware.RequestID())
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit, cfg.Server.UploadLimit))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	authRequired := middleware.JWTAuth(jwtMgr, rdb, logger)

	// ── auth ──
	auth := api.Group("/auth")
	{
		auth.POST("/register", limiter.Handler("auth"), h.Auth.Register)
		auth.POST("/login", limiter.Handler("auth"), h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", authRequired, h.Auth.Logout)
		auth.GET("/me", authRequired, h.Auth.Me)
		auth.POST("/change-password", authRequired, h.Auth.ChangePassword)
	}

	// ── public RSVP ──
	rsvp := api.Group("/rsvp", limiter.Handler("rsvp"))
	{
		rsvp.GET("/:token", h.Rsvp.View)
		rsvp.POST("/:token", h.Rsvp.Submit)
		rsvp.GET("/:token/status", h.Rsvp.Status)
		rsvp.GET("/:token/qr-code", h.Rsvp.QRCode)
	}

	authorized := api.Group("", authRequired)

	events := authorized.Group("/events")
	{
		events.GET("", h.Event.List)
		events.POST("", h.Event.Create)
		events.GET("/:id", h.Event.Get)
		events.PUT("/:id", h.Event.Update)
		events.DELETE("/:id", h.Event.Delete)
		events.POST("/:id/rsvp-settings", h.Event.UpsertSettings)
		events.POST("/:id/invitation-data", h.Event.UpsertInvitationData)
		events.GET("/:id/calendar.ics", h.Event.ExportCalendar)
	}

	guests := authorized.Group("/guests/:eventId")
	{
		guests.GET("", h.Guest.List)
		guests.POST("", h.Guest.Add)
		guests.POST("/bulk", h.Guest.BulkAdd)
		guests.POST("/upload-csv", h.Guest.Upload)
		guests.POST("/check-duplicates", h.Guest.CheckDuplicates)
		guests.GET("/export-csv", h.Guest.Export)
		guests.GET("/:guestId", h.Guest.Get)
		guests.PUT("/:guestId", h.Guest.Update)
		guests.DELETE("/:guestId", h.Guest.Delete)
	}

	checkin := authorized.Group("/checkin")
	{
		checkin.POST("", h.Checkin.CheckIn)
		checkin.POST("/qr-scan", h.Checkin.ScanQR)
		checkin.GET("/:eventId/logs", h.Checkin.Logs)
		checkin.GET("/:eventId/summary", h.Checkin.Summary)
		checkin.POST("/:eventId/:guestId", h.Checkin.Manual)
		checkin.POST("/:eventId/:guestId/undo", h.Checkin.Undo)
	}

	messaging := authorized.Group("/messaging/:eventId")
	{
		messaging.POST("/send-invites", h.Messaging.Send)
		messaging.POST("/retry", h.Messaging.Retry)
		messaging.GET("/logs", h.Messaging.Logs)
		messaging.GET("/summary", h.Messaging.Summary)
	}

	analytics := authorized.Group("/analytics")
	{
		analytics.GET("/dashboard/overview", h.Analytics.Dashboard)
		analytics.GET("/:eventId", h.Analytics.Event)
		analytics.GET("/:eventId/guests", h.Analytics.Guests)
		analytics.GET("/:eventId/messages", h.Analytics.Messages)
		analytics.GET("/:eventId/export", h.Analytics.Export)
	}

	return r
}
