package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JoeSaf/Allika-sub000/internal/dto"
	"github.com/JoeSaf/Allika-sub000/internal/service"
	"github.com/JoeSaf/Allika-sub000/pkg/response"
)

// EventHandler serves the organizer's events.
type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// Create
// POST /api/events
func (h *EventHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	event, err := h.svc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		handleEventError(c, err)
		return
	}
	response.Created(c, "Event created successfully", event)
}

// List
// GET /api/events?page=&limit=&search=&status=
func (h *EventHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.EventListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	items, total, err := h.svc.List(c.Request.Context(), userID, &req)
	if err != nil {
		handleEventError(c, err)
		return
	}
	response.OKPage(c, items, total, req.GetPage(), req.GetLimit(10))
}

// Get returns the event with settings, invitation data and guest stats.
// GET /api/events/:id
func (h *EventHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		handleEventError(c, err)
		return
	}
	response.OK(c, detail)
}

// Update
// PUT /api/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	event, err := h.svc.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		handleEventError(c, err)
		return
	}
	response.OKWithMessage(c, "Event updated successfully", event)
}

// Delete
// DELETE /api/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, id); err != nil {
		handleEventError(c, err)
		return
	}
	response.OKWithMessage(c, "Event deleted successfully", nil)
}

// UpsertSettings
// POST /api/events/:id/rsvp-settings
func (h *EventHandler) UpsertSettings(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.RsvpSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	settings, err := h.svc.UpsertSettings(c.Request.Context(), userID, id, &req)
	if err != nil {
		handleEventError(c, err)
		return
	}
	response.OKWithMessage(c, "RSVP settings saved successfully", settings)
}

// UpsertInvitationData
// POST /api/events/:id/invitation-data
func (h *EventHandler) UpsertInvitationData(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.InvitationDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	data, err := h.svc.UpsertInvitationData(c.Request.Context(), userID, id, &req)
	if err != nil {
		handleEventError(c, err)
		return
	}
	response.OKWithMessage(c, "Invitation data saved successfully", data)
}

// ExportCalendar downloads the event as an .ics file.
// GET /api/events/:id/calendar.ics
func (h *EventHandler) ExportCalendar(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	data, err := h.svc.ExportCalendar(c.Request.Context(), userID, id)
	if err != nil {
		handleEventError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="event-`+id+`.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

func handleEventError(c *gin.Context, err error) {
	if handleEventAccess(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrEventDateRequired):
		response.BadRequest(c, 12003, err.Error())
	default:
		response.InternalError(c, "")
	}
}
