package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"inventory-backend/internal/events"
	"inventory-backend/internal/model"
)

// eventResponse adds the derived attendee list to an event.
type eventResponse struct {
	model.Event
	AttendeeIDs []string `json:"attendeeIds"`
}

func newEventResponse(e model.Event) eventResponse {
	return eventResponse{Event: e, AttendeeIDs: e.AttendeeIDs()}
}

// ListEvents handles GET /api/events.
func (h *Handler) ListEvents(c *gin.Context) {
	list, err := h.events.ListEvents(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]eventResponse, len(list))
	for i, e := range list {
		out[i] = newEventResponse(e)
	}
	c.JSON(http.StatusOK, out)
}

// GetEvent handles GET /api/events/:id.
func (h *Handler) GetEvent(c *gin.Context) {
	e, err := h.events.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newEventResponse(*e))
}

// CreateEvent handles POST /api/events.
func (h *Handler) CreateEvent(c *gin.Context) {
	var e model.Event
	if !h.bind(c, &e) {
		return
	}
	e.ID = ""
	e.Registrations = nil
	if err := h.events.CreateEvent(c.Request.Context(), &e); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newEventResponse(e))
}

// DeleteEvent handles DELETE /api/events/:id.
func (h *Handler) DeleteEvent(c *gin.Context) {
	if err := h.events.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterAttendee handles POST /api/events/:id/registrations.
func (h *Handler) RegisterAttendee(c *gin.Context) {
	var r model.Registration
	if !h.bind(c, &r) {
		return
	}
	if err := h.events.Register(c.Request.Context(), c.Param("id"), &r); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// GetRegistrationQR handles GET /api/events/:id/registrations/:rid/qr[?size=N] and returns a PNG.
func (h *Handler) GetRegistrationQR(c *gin.Context) {
	size := events.DefaultQRSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > 2048 {
			h.fail(c, &fieldError{Field: "size", Message: "size must be between 64 and 2048"})
			return
		}
		size = n
	}
	png, err := h.events.QRCode(c.Request.Context(), c.Param("id"), c.Param("rid"), size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

type checkInRequest struct {
	Code string `json:"code" binding:"required"`
}

// CheckIn handles POST /api/events/:id/checkin with the scanned QR content.
func (h *Handler) CheckIn(c *gin.Context) {
	var req checkInRequest
	if !h.bind(c, &req) {
		return
	}
	reg, err := h.events.CheckIn(c.Request.Context(), c.Param("id"), req.Code)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.CheckedIn()
	c.JSON(http.StatusOK, reg)
}
