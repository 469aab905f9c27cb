// Package server is the development REST backend for slots and appointments.
package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/javiermolinar/hourly/internal/api"
	"github.com/javiermolinar/hourly/internal/calendar"
	"github.com/javiermolinar/hourly/internal/dateutil"
	"github.com/javiermolinar/hourly/internal/export"
	"github.com/javiermolinar/hourly/internal/slot"
)

// Repository is the persistence the server needs.
type Repository interface {
	ListSlots(ctx context.Context, consultantID string) ([]slot.Slot, error)
	CreateSlots(ctx context.Context, consultantID string, drafts []slot.Draft) (int, error)
	DeleteSlot(ctx context.Context, id slot.ID) error
	ListAppointments(ctx context.Context, consultantID string) ([]slot.Appointment, error)
	BookSlot(ctx context.Context, id slot.ID, customerID, serviceID string) (slot.Appointment, error)
	CancelAppointment(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// Handler serves the slot and appointment endpoints.
type Handler struct {
	repo   Repository
	logger *zap.Logger
}

// NewHandler creates a Handler.
func NewHandler(repo Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// ListSlots handles GET /slot-time?consultant_id=...
func (h *Handler) ListSlots(c *gin.Context) {
	consultantID, ok := requireConsultant(c)
	if !ok {
		return
	}

	slots, err := h.repo.ListSlots(c.Request.Context(), consultantID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]api.Slot, 0, len(slots))
	for _, s := range slots {
		out = append(out, api.FromSlot(s))
	}
	c.JSON(http.StatusOK, out)
}

// CreateSlots handles POST /slot-time. The batch is all or nothing.
func (h *Handler) CreateSlots(c *gin.Context) {
	var req api.CreateSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	drafts := req.Drafts()
	n, err := h.repo.CreateSlots(ctx, req.ConsultantID, drafts)
	if err != nil {
		h.respondError(c, err)
		return
	}

	slots, err := h.repo.ListSlots(ctx, req.ConsultantID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	wanted := make(map[int64]struct{}, len(drafts))
	for _, d := range drafts {
		wanted[d.Start.Unix()] = struct{}{}
	}
	resp := api.CreateSlotsResponse{Created: n, Slots: make([]api.Slot, 0, n)}
	for _, s := range slots {
		if _, ok := wanted[s.Start.Unix()]; ok {
			resp.Slots = append(resp.Slots, api.FromSlot(s))
		}
	}

	h.logger.Info("slots created",
		zap.String("consultant_id", req.ConsultantID),
		zap.Int("count", n),
	)
	c.JSON(http.StatusCreated, resp)
}

// DeleteSlot handles DELETE /slot-time/:id.
func (h *Handler) DeleteSlot(c *gin.Context) {
	id := slot.ID(c.Param("id"))
	if err := h.repo.DeleteSlot(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListAppointments handles GET /appointments?consultant_id=...
func (h *Handler) ListAppointments(c *gin.Context) {
	consultantID, ok := requireConsultant(c)
	if !ok {
		return
	}

	appts, err := h.repo.ListAppointments(c.Request.Context(), consultantID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]api.Appointment, 0, len(appts))
	for _, a := range appts {
		out = append(out, api.FromAppointment(a))
	}
	c.JSON(http.StatusOK, out)
}

// BookSlot handles POST /appointments.
func (h *Handler) BookSlot(c *gin.Context) {
	var req api.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	a, err := h.repo.BookSlot(c.Request.Context(), slot.ID(req.SlotID), req.CustomerID, req.ServiceID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.FromAppointment(a))
}

// CancelAppointment handles POST /appointments/:id/cancel.
func (h *Handler) CancelAppointment(c *gin.Context) {
	if err := h.repo.CancelAppointment(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// exportQuery selects the week and hours of an export.
type exportQuery struct {
	ConsultantID string `form:"consultant_id" binding:"required"`
	Date         string `form:"date"`
	From         string `form:"from"`
	To           string `form:"to"`
}

// ExportWeek handles GET /export/week?consultant_id=...&date=YYYY-MM-DD.
// The week containing date (today when omitted) is returned as xlsx.
func (h *Handler) ExportWeek(c *gin.Context) {
	var q exportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	ref, err := dateutil.ParseDate(q.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if q.From == "" {
		q.From = "08:00"
	}
	if q.To == "" {
		q.To = "18:00"
	}
	hours, err := slot.Range(q.From, q.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	snap := slot.Snapshot{ConsultantID: q.ConsultantID}
	if snap.Slots, err = h.repo.ListSlots(ctx, q.ConsultantID); err != nil {
		h.respondError(c, err)
		return
	}
	if snap.Appointments, err = h.repo.ListAppointments(ctx, q.ConsultantID); err != nil {
		h.respondError(c, err)
		return
	}

	week := calendar.Project(ref, 0)
	buf, err := export.Buffer(week, hours, snap)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(export.Filename(week)))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	if err := h.repo.Ping(c.Request.Context()); err != nil {
		h.logger.Error("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requireConsultant(c *gin.Context) (string, bool) {
	id := c.Query("consultant_id")
	if id == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: slot.ErrEmptyConsultant.Error()})
		return "", false
	}
	return id, true
}

// respondError maps domain errors to status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, slot.ErrSlotNotFound), errors.Is(err, slot.ErrAppointmentNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, slot.ErrSlotBooked), errors.Is(err, slot.ErrDuplicateSlot):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, slot.ErrEmptyConsultant),
		errors.Is(err, slot.ErrNotOnHour),
		errors.Is(err, slot.ErrInvalidEndOfSlot):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	default:
		_ = c.Error(err)
		h.logger.Error("request error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
	}
}
