package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JoeSaf/Allika-sub000/internal/dto"
	"github.com/JoeSaf/Allika-sub000/internal/service"
	"github.com/JoeSaf/Allika-sub000/pkg/qrcode"
	"github.com/JoeSaf/Allika-sub000/pkg/response"
)

// RsvpHandler serves the public RSVP link. No authentication.
type RsvpHandler struct {
	svc service.RsvpService
}

func NewRsvpHandler(svc service.RsvpService) *RsvpHandler {
	return &RsvpHandler{svc: svc}
}

// View
// GET /api/rsvp/:token
func (h *RsvpHandler) View(c *gin.Context) {
	result, err := h.svc.View(c.Request.Context(), c.Param("token"))
	if err != nil {
		handleRsvpError(c, err)
		return
	}
	response.OK(c, result)
}

// Submit records the guest's one and only response.
// POST /api/rsvp/:token
func (h *RsvpHandler) Submit(c *gin.Context) {
	var req dto.SubmitRsvpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	meta := dto.RequestMeta{IPAddress: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	result, err := h.svc.Submit(c.Request.Context(), c.Param("token"), &req, meta)
	if err != nil {
		handleRsvpError(c, err)
		return
	}
	response.OKWithMessage(c, "RSVP response submitted successfully", result)
}

// Status
// GET /api/rsvp/:token/status
func (h *RsvpHandler) Status(c *gin.Context) {
	result, err := h.svc.Status(c.Request.Context(), c.Param("token"))
	if err != nil {
		handleRsvpError(c, err)
		return
	}
	response.OK(c, result)
}

// QRCode returns the check-in QR as a data URL, or as the image itself with
// format=png.
// GET /api/rsvp/:token/qr-code?format=png
func (h *RsvpHandler) QRCode(c *gin.Context) {
	result, err := h.svc.QRCode(c.Request.Context(), c.Param("token"))
	if err != nil {
		handleRsvpError(c, err)
		return
	}
	if c.Query("format") != "png" {
		response.OK(c, result)
		return
	}

	png, err := qrcode.DecodeDataURL(result.QRCode)
	if err != nil {
		response.InternalError(c, "")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func handleRsvpError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRsvpLinkNotFound):
		response.NotFound(c, 14001, err.Error())
	case errors.Is(err, service.ErrRsvpAlreadyAnswered):
		response.Conflict(c, 14002, err.Error())
	case errors.Is(err, service.ErrQRCodeNotFound):
		response.NotFound(c, 14003, err.Error())
	case errors.Is(err, service.ErrGuestNotFound):
		response.NotFound(c, 14004, err.Error())
	default:
		response.InternalError(c, "")
	}
}
