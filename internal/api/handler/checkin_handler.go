package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JoeSaf/Allika-sub000/internal/api/middleware"
	"github.com/JoeSaf/Allika-sub000/internal/dto"
	"github.com/JoeSaf/Allika-sub000/internal/service"
	"github.com/JoeSaf/Allika-sub000/pkg/qrcode"
	"github.com/JoeSaf/Allika-sub000/pkg/response"
)

// CheckinHandler serves door check-in.
type CheckinHandler struct {
	svc service.CheckinService
}

func NewCheckinHandler(svc service.CheckinService) *CheckinHandler {
	return &CheckinHandler{svc: svc}
}

// CheckIn by RSVP token.
// POST /api/checkin
func (h *CheckinHandler) CheckIn(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CheckinByTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.svc.CheckInByToken(c.Request.Context(), userID, &req)
	if err != nil {
		handleCheckinError(c, err)
		return
	}
	result.CheckedInBy = c.GetString(middleware.ContextUserName)
	response.OKWithMessage(c, result.Guest.Name+" has been successfully checked in", result)
}

// ScanQR checks in from the text of a scanned QR code.
// POST /api/checkin/qr-scan
func (h *CheckinHandler) ScanQR(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.QRScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.svc.CheckInByQR(c.Request.Context(), userID, req.QRData)
	if err != nil {
		handleCheckinError(c, err)
		return
	}
	result.CheckedInBy = c.GetString(middleware.ContextUserName)
	response.OKWithMessage(c, result.Guest.Name+" has been successfully checked in via QR code", result)
}

// Manual checks in a guest picked from the list.
// POST /api/checkin/:eventId/:guestId
func (h *CheckinHandler) Manual(c *gin.Context) {
	userID, eventID, guestID, ok := guestScope(c)
	if !ok {
		return
	}
	var req dto.ManualCheckinRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.svc.CheckInManual(c.Request.Context(), userID, eventID, guestID, req.Notes)
	if err != nil {
		handleCheckinError(c, err)
		return
	}
	result.CheckedInBy = c.GetString(middleware.ContextUserName)
	response.OKWithMessage(c, result.Guest.Name+" has been successfully checked in", result)
}

// Undo
// POST /api/checkin/:eventId/:guestId/undo
func (h *CheckinHandler) Undo(c *gin.Context) {
	userID, eventID, guestID, ok := guestScope(c)
	if !ok {
		return
	}
	var req dto.UndoCheckinRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.svc.Undo(c.Request.Context(), userID, eventID, guestID, req.Reason)
	if err != nil {
		handleCheckinError(c, err)
		return
	}
	response.OKWithMessage(c, "Check-in for "+result.Guest.Name+" has been undone", result)
}

// Logs
// GET /api/checkin/:eventId/logs?page=&limit=
func (h *CheckinHandler) Logs(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	eventID, ok := uuidParam(c, "eventId")
	if !ok {
		return
	}
	var req dto.CheckinLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	logs, total, err := h.svc.Logs(c.Request.Context(), userID, eventID, &req)
	if err != nil {
		handleCheckinError(c, err)
		return
	}
	response.OKPage(c, logs, total, req.GetPage(), req.GetLimit(50))
}

// Summary
// GET /api/checkin/:eventId/summary
func (h *CheckinHandler) Summary(c *gin.Context) {
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
		handleCheckinError(c, err)
		return
	}
	response.OK(c, summary)
}

func guestScope(c *gin.Context) (userID, eventID, guestID string, ok bool) {
	if userID, ok = MustGetUserID(c); !ok {
		return
	}
	if eventID, ok = uuidParam(c, "eventId"); !ok {
		return
	}
	guestID, ok = uuidParam(c, "guestId")
	return
}

func handleCheckinError(c *gin.Context, err error) {
	var already *service.AlreadyCheckedInError
	switch {
	case errors.As(err, &already):
		response.ErrorWithData(c, http.StatusConflict, 15003, already.Error(), gin.H{
			"guest": dto.CheckedInGuest{ID: already.GuestID, Name: already.GuestName, CheckInTime: already.CheckInTime},
		})
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		response.Conflict(c, 15003, err.Error())
	case errors.Is(err, service.ErrGuestNotCheckedIn):
		response.Conflict(c, 15004, err.Error())
	case errors.Is(err, service.ErrGuestNotFound):
		response.NotFound(c, 15001, err.Error())
	case errors.Is(err, service.ErrQRGuestNotFound):
		response.NotFound(c, 15006, err.Error())
	case errors.Is(err, service.ErrEventNotFound):
		response.NotFound(c, codeEventNotFound, err.Error())
	case errors.Is(err, service.ErrCheckinForbidden), errors.Is(err, service.ErrEventForbidden):
		response.Forbidden(c, 15002, service.ErrCheckinForbidden.Error())
	case errors.Is(err, qrcode.ErrEmpty),
		errors.Is(err, qrcode.ErrMalformed),
		errors.Is(err, qrcode.ErrWrongType),
		errors.Is(err, qrcode.ErrInvalidData):
		response.BadRequest(c, 15005, err.Error())
	default:
		response.InternalError(c, "")
	}
}
