package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/therapy-scheduler/internal/httperr"
	"github.com/BruksfildServices01/therapy-scheduler/internal/middleware"
	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
	ucAvailability "github.com/BruksfildServices01/therapy-scheduler/internal/usecase/availability"
)

type ScheduleReplacer interface {
	Execute(ctx context.Context, in ucAvailability.ReplaceScheduleInput) ([]models.AvailabilityWindow, error)
}

type ScheduleGetter interface {
	Execute(ctx context.Context, therapistID string) (*ucAvailability.ScheduleView, error)
}

type AvailabilityHandler struct {
	replace ScheduleReplacer
	get     ScheduleGetter
	log     zerolog.Logger
}

func NewAvailabilityHandler(
	replace ScheduleReplacer,
	get ScheduleGetter,
	log zerolog.Logger,
) *AvailabilityHandler {
	return &AvailabilityHandler{
		replace: replace,
		get:     get,
		log:     log,
	}
}

type WindowRequest struct {
	DayOfWeek int    `json:"day_of_week" binding:"min=0,max=6"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type ScheduleUpdateRequest struct {
	Timezone   string          `json:"timezone"`
	CalendarID *string         `json:"calendar_id"`
	Windows    []WindowRequest `json:"windows" binding:"dive"`
}

func (h *AvailabilityHandler) Get(c *gin.Context) {
	therapistID, ok := ownTherapist(c)
	if !ok {
		return
	}

	view, err := h.get.Execute(c.Request.Context(), therapistID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *AvailabilityHandler) Update(c *gin.Context) {
	therapistID, ok := ownTherapist(c)
	if !ok {
		return
	}

	var req ScheduleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	windows := make([]ucAvailability.WindowInput, 0, len(req.Windows))
	for _, w := range req.Windows {
		windows = append(windows, ucAvailability.WindowInput{
			DayOfWeek: w.DayOfWeek,
			StartTime: w.StartTime,
			EndTime:   w.EndTime,
		})
	}

	saved, err := h.replace.Execute(c.Request.Context(), ucAvailability.ReplaceScheduleInput{
		TherapistID: therapistID,
		Timezone:    req.Timezone,
		Windows:     windows,
		CalendarID:  req.CalendarID,
		ActorID:     middleware.UserID(c),
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"windows": saved,
	})
}
