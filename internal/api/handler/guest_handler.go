package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/JoeSaf/Allika-sub000/internal/dto"
	"github.com/JoeSaf/Allika-sub000/internal/service"
	"github.com/JoeSaf/Allika-sub000/pkg/response"
)

// GuestHandler serves an event's guest list.
type GuestHandler struct {
	svc         service.GuestService
	uploadLimit int64
}

func NewGuestHandler(svc service.GuestService, uploadLimit int64) *GuestHandler {
	return &GuestHandler{svc: svc, uploadLimit: uploadLimit}
}

// Add
// POST /api/guests/:eventId
func (h *GuestHandler) Add(c *gin.Context) {
	userID, eventID, ok := h.scope(c)
	if !ok {
		return
	}
	var req dto.AddGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	guest, err := h.svc.Add(c.Request.Context(), userID, eventID, &req)
	if err != nil {
		handleGuestError(c, err)
		return
	}
	response.Created(c, "Guest added successfully", guest)
}

// BulkAdd
// POST /api/guests/:eventId/bulk
func (h *GuestHandler) BulkAdd(c *gin.Context) {
	userID, eventID, ok := h.scope(c)
	if !ok {
		return
	}
	var req dto.BulkAddGuestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.svc.BulkAdd(c.Request.Context(), userID, eventID, &req)
	if err != nil {
		handleGuestError(c, err)
		return
	}
	response.Created(c, bulkMessage(result), result)
}

// Upload imports a CSV or XLSX file from the multipart field "file".
// POST /api/guests/:eventId/upload-csv
func (h *GuestHandler) Upload(c *gin.Context) {
	userID, eventID, ok := h.scope(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			bindError(c, err)
			return
		}
		response.BadRequest(c, 13004, service.ErrNoFileUploaded.Error())
		return
	}
	defer file.Close()

	if h.uploadLimit > 0 && header.Size > h.uploadLimit {
		response.Error(c, http.StatusRequestEntityTooLarge, codeBodyTooLarge, "File too large")
		return
	}

	result, err := h.svc.Import(c.Request.Context(), userID, eventID, header.Filename, file)
	if err != nil {
		handleGuestError(c, err)
		return
	}
	response.Created(c, bulkMessage(result), result)
}

// CheckDuplicates reports phones that were already sent an invitation.
// POST /api/guests/:eventId/check-duplicates
func (h *GuestHandler) CheckDuplicates(c *gin.Context) {
	userID, eventID, ok := h.scope(c)
	if !ok {
		return
	}
	var req dto.CheckDuplicatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.svc.CheckDuplicates(c.Request.Context(), userID, eventID, &req)
	if err != nil {
		handleGuestError(c, err)
		return
	}
	response.OK(c, result)
}

// List
// GET /api/guests/:eventId?page=&limit=&status=&search=
func (h *GuestHandler) List(c *gin.Context) {
	userID, eventID, ok := h.scope(c)
	if !ok {
		return
	}
	var req dto.GuestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	guests, total, err := h.svc.List(c.Request.Context(), userID, eventID, &req)
	if err != nil {
		handleGuestError(c, err)
		return
	}
	response.OKPage(c, guests, total, req.GetPage(), req.GetLimit(50))
}

// Get
// GET /api/guests/:eventId/:guestId
func (h *GuestHandler) Get(c *gin.Context) {
	userID, eventID, ok := h.scope(c)
	if !ok {
		return
	}
	guestID, ok := uuidParam(c, "guestId")
	if !ok {
		return
	}

	guest, err := h.svc.Get(c.Request.Context(), userID, eventID, guestID)
	if err != nil {
		handleGuestError(c, err)
		return
	}
	response.OK(c, guest)
}

// Update
// PUT /api/guests/:eventId/:guestId
func (h *GuestHandler) Update(c *gin.Context) {
	userID, eventID, ok := h.scope(c)
	if !ok {
		return
	}
	guestID, ok := uuidParam(c, "guestId")
	if !ok {
		return
	}
	var req dto.UpdateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	guest, err := h.svc.Update(c.Request.Context(), userID, eventID, guestID, &req)
	if err != nil {
		handleGuestError(c, err)
		return
	}
	response.OKWithMessage(c, "Guest updated successfully", guest)
}

// Delete
// DELETE /api/guests/:eventId/:guestId
func (h *GuestHandler) Delete(c *gin.Context) {
	userID, eventID, ok := h.scope(c)
	if !ok {
		return
	}
	guestID, ok := uuidParam(c, "guestId")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, eventID, guestID); err != nil {
		handleGuestError(c, err)
		return
	}
	response.OKWithMessage(c, "Guest deleted successfully", nil)
}

// Export downloads the guest list.
// GET /api/guests/:eventId/export-csv?format=csv|xlsx
func (h *GuestHandler) Export(c *gin.Context) {
	userID, eventID, ok := h.scope(c)
	if !ok {
		return
	}

	out, err := h.svc.Export(c.Request.Context(), userID, eventID, c.DefaultQuery("format", "csv"))
	if err != nil {
		handleGuestError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(out.Filename))
	c.Data(http.StatusOK, out.ContentType, out.Data.Bytes())
}

func (h *GuestHandler) scope(c *gin.Context) (string, string, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return "", "", false
	}
	eventID, ok := uuidParam(c, "eventId")
	if !ok {
		return "", "", false
	}
	return userID, eventID, true
}

func bulkMessage(r *dto.BulkAddResponse) string {
	if r.Failed == 0 {
		return "Guests added successfully"
	}
	return "Guests added with some errors"
}

func handleGuestError(c *gin.Context, err error) {
	if handleEventAccess(c, err) {
		return
	}
	var dup *service.DuplicatePhoneError
	switch {
	case errors.As(err, &dup):
		response.ErrorWithData(c, http.StatusBadRequest, 13002, dup.Error(), gin.H{"existingGuest": dup.GuestName})
	case errors.Is(err, service.ErrGuestNotFound):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrAliasTaken):
		response.Conflict(c, 13003, err.Error())
	case errors.Is(err, service.ErrNoFileUploaded):
		response.BadRequest(c, 13004, err.Error())
	case errors.Is(err, service.ErrUnsupportedFile):
		response.BadRequest(c, 13005, err.Error())
	case errors.Is(err, service.ErrNoGuestData):
		response.BadRequest(c, 13006, err.Error())
	case errors.Is(err, service.ErrTooManyGuests):
		response.BadRequest(c, 13007, err.Error())
	case errors.Is(err, service.ErrExportFormat):
		response.BadRequest(c, 13008, err.Error())
	default:
		response.InternalError(c, "")
	}
}
