package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JoeSaf/Allika-sub000/internal/dto"
	"github.com/JoeSaf/Allika-sub000/internal/service"
	"github.com/JoeSaf/Allika-sub000/pkg/response"
)

// MessagingHandler sends invitations and reports on them.
type MessagingHandler struct {
	svc    service.MessagingService
	logger *zap.Logger
}

func NewMessagingHandler(svc service.MessagingService, logger *zap.Logger) *MessagingHandler {
	return &MessagingHandler{svc: svc, logger: logger}
}

// Send
// POST /api/messaging/:eventId/send-invites
func (h *MessagingHandler) Send(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "eventId")
	if !ok {
		return
	}
	var req dto.SendInvitesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.svc.SendInvites(c.Request.Context(), userID, eventID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OKWithMessage(c, service.SendMessageSummary(result), result)
}

// Retry re-sends every failed message of the event.
// POST /api/messaging/:eventId/retry
func (h *MessagingHandler) Retry(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "eventId")
	if !ok {
		return
	}

	result, err := h.svc.Retry(c.Request.Context(), userID, eventID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OKWithMessage(c, service.SendMessageSummary(result), result)
}

// Logs
// GET /api/messaging/:eventId/logs?page=&limit=&status=&messageType=
func (h *MessagingHandler) Logs(c *gin.Context) {
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

	logs, total, err := h.svc.Logs(c.Request.Context(), userID, eventID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OKPage(c, logs, total, req.GetPage(), req.GetLimit(50))
}

// Summary
// GET /api/messaging/:eventId/summary
func (h *MessagingHandler) Summary(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "eventId")
	if !ok {
		return
	}

	summary, err := h.svc.Summary(c.Request.Context(), userID, eventID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, summary)
}

func (h *MessagingHandler) handleError(c *gin.Context, err error) {
	if handleEventAccess(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrNoGuestsToMessage):
		response.BadRequest(c, 16001, err.Error())
	case errors.Is(err, service.ErrNoFailedMessages):
		response.BadRequest(c, 16002, err.Error())
	default:
		h.logger.Error("messaging request failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.InternalError(c, "")
	}
}
