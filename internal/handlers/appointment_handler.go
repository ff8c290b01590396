package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	domain "github.com/BruksfildServices01/therapy-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/therapy-scheduler/internal/dto"
	"github.com/BruksfildServices01/therapy-scheduler/internal/httperr"
	"github.com/BruksfildServices01/therapy-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/therapy-scheduler/internal/middleware"
	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
	ucAppointment "github.com/BruksfildServices01/therapy-scheduler/internal/usecase/appointment"
)

// ======================================================
// USE CASES
// ======================================================

type Booker interface {
	Execute(ctx context.Context, in ucAppointment.BookInput) (*ucAppointment.BookResult, error)
}

type Transitioner interface {
	Execute(ctx context.Context, in ucAppointment.TransitionInput) (*models.Appointment, error)
}

type Rescheduler interface {
	Execute(ctx context.Context, in ucAppointment.RescheduleInput) (*models.Appointment, error)
}

type DayLister interface {
	Execute(ctx context.Context, therapistID string, date string) ([]dto.AppointmentListDTO, error)
}

type MonthLister interface {
	Execute(ctx context.Context, therapistID string, year int, month int) ([]dto.AppointmentListDTO, error)
}

type SlotLister interface {
	Execute(ctx context.Context, in domain.AvailabilityInput) ([]domain.TimeSlot, error)
}

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	book        Booker
	transition  Transitioner
	reschedule  Rescheduler
	listByDate  DayLister
	listByMonth MonthLister
	slots       SlotLister
	log         zerolog.Logger
}

func NewAppointmentHandler(
	book Booker,
	transition Transitioner,
	reschedule Rescheduler,
	listByDate DayLister,
	listByMonth MonthLister,
	slots SlotLister,
	log zerolog.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		book:        book,
		transition:  transition,
		reschedule:  reschedule,
		listByDate:  listByDate,
		listByMonth: listByMonth,
		slots:       slots,
		log:         log,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	TherapistID     string    `json:"therapist_id" binding:"required"`
	ClientID        string    `json:"client_id"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	Notes           string    `json:"notes" binding:"max=255"`
	IdempotencyKey  string    `json:"idempotency_key" binding:"max=128"`
	AdminOverride   bool      `json:"admin_override"`
}

type RescheduleRequest struct {
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	AdminOverride   bool      `json:"admin_override"`
}

// ======================================================
// SLOTS
// ======================================================

func (h *AppointmentHandler) Slots(c *gin.Context) {
	therapistID := c.Param("therapistID")

	date, err := parseDay(c.Query("date"))
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	slots, err := h.slots.Execute(c.Request.Context(), domain.AvailabilityInput{
		TherapistID: therapistID,
		Date:        date,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.List(c, slots)
}

// ======================================================
// CREATE (BOOKING GATE)
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	callerID := middleware.UserID(c)

	switch middleware.UserRole(c) {
	case middleware.RoleClient:
		// cliente só agenda para si mesmo
		req.ClientID = callerID
		req.AdminOverride = false
	case middleware.RoleTherapist:
		if req.TherapistID != callerID {
			httperr.Forbidden(c, "forbidden", "Acesso negado.")
			return
		}
		req.AdminOverride = false
	}

	key := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if key == "" {
		key = req.IdempotencyKey
	}

	res, err := h.book.Execute(c.Request.Context(), ucAppointment.BookInput{
		ClientID:        req.ClientID,
		TherapistID:     req.TherapistID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		IdempotencyKey:  key,
		Notes:           req.Notes,
		ActorID:         callerID,
		AdminOverride:   req.AdminOverride,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	if res.Replayed {
		c.JSON(http.StatusOK, res.Appointment)
		return
	}
	httpresp.Created(c, res.Appointment)
}

// ======================================================
// STATUS
// ======================================================

// Transition gera o handler de uma ação (confirm, start, complete, cancel, no-show).
func (h *AppointmentHandler) Transition(action domain.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		ap, err := h.transition.Execute(c.Request.Context(), ucAppointment.TransitionInput{
			AppointmentID: c.Param("id"),
			Action:        action,
			ActorID:       middleware.UserID(c),
			ActorRole:     middleware.UserRole(c),
		})
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, ap)
	}
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.reschedule.Execute(c.Request.Context(), ucAppointment.RescheduleInput{
		AppointmentID:   c.Param("id"),
		NewStart:        req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		ActorID:         middleware.UserID(c),
		ActorRole:       middleware.UserRole(c),
		AdminOverride:   req.AdminOverride && middleware.IsAdmin(c),
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Created(c, ap)
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	therapistID, ok := ownTherapist(c)
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	list, err := h.listByDate.Execute(c.Request.Context(), therapistID, date)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.List(c, list)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	therapistID, ok := ownTherapist(c)
	if !ok {
		return
	}

	year, errY := queryInt(c, "year", 0)
	month, errM := queryInt(c, "month", 0)
	if errY != nil || errM != nil {
		httperr.BadRequest(c, "invalid_period", "Período inválido.")
		return
	}

	list, err := h.listByMonth.Execute(c.Request.Context(), therapistID, year, month)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.List(c, list)
}

// ownTherapist: terapeuta só acessa a própria agenda; admin acessa qualquer uma.
func ownTherapist(c *gin.Context) (string, bool) {
	therapistID := c.Param("therapistID")
	if middleware.IsAdmin(c) {
		return therapistID, true
	}
	if middleware.UserRole(c) == middleware.RoleTherapist && middleware.UserID(c) == therapistID {
		return therapistID, true
	}
	httperr.Forbidden(c, "forbidden", "Acesso negado.")
	return "", false
}
