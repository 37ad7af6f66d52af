package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/JoeSaf/Allika-sub000/internal/dto"
	"github.com/JoeSaf/Allika-sub000/internal/service"
	"github.com/JoeSaf/Allika-sub000/pkg/response"
)

// AnalyticsHandler serves event and dashboard statistics.
type AnalyticsHandler struct {
	svc service.AnalyticsService
}

func NewAnalyticsHandler(svc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// Event
// GET /api/analytics/:eventId
func (h *AnalyticsHandler) Event(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "eventId")
	if !ok {
		return
	}

	result, err := h.svc.Event(c.Request.Context(), userID, eventID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, result)
}

// Dashboard
// GET /api/analytics/dashboard/overview
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.svc.Dashboard(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, "")
		return
	}
	response.OK(c, result)
}

// Guests lists guests with their RSVP answer and check-in details.
// GET /api/analytics/:eventId/guests?page=&limit=&status=
func (h *AnalyticsHandler) Guests(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "eventId")
	if !ok {
		return
	}
	var req dto.AnalyticsGuestsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	guests, total, err := h.svc.Guests(c.Request.Context(), userID, eventID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OKPage(c, guests, total, req.GetPage(), req.GetLimit(50))
}

// Messages
// GET /api/analytics/:eventId/messages?page=&limit=&status=&messageType=
func (h *AnalyticsHandler) Messages(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "eventId")
	if !ok {
		return
	}
	var req dto.MessageLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	messages, total, err := h.svc.Messages(c.Request.Context(), userID, eventID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OKPage(c, messages, total, req.GetPage(), req.GetLimit(50))
}

// Export
// GET /api/analytics/:eventId/export?format=json
func (h *AnalyticsHandler) Export(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "eventId")
	if !ok {
		return
	}
	var req dto.AnalyticsExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.svc.Export(c.Request.Context(), userID, eventID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *AnalyticsHandler) handleError(c *gin.Context, err error) {
	if !handleEventAccess(c, err) {
		response.InternalError(c, "")
	}
}
