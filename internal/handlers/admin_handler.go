package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/therapy-scheduler/internal/calendar"
	domainAvailability "github.com/BruksfildServices01/therapy-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/therapy-scheduler/internal/domain/conflict"
	"github.com/BruksfildServices01/therapy-scheduler/internal/httperr"
	"github.com/BruksfildServices01/therapy-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/therapy-scheduler/internal/middleware"
	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
	ucAvailability "github.com/BruksfildServices01/therapy-scheduler/internal/usecase/availability"
)

// ======================================================
// DEPENDENCIES
// ======================================================

type BlockManager interface {
	Create(ctx context.Context, in ucAvailability.CreateBlockInput) (*models.AdminBlock, error)
	List(ctx context.Context, filter domainAvailability.BlockFilter) ([]models.AdminBlock, error)
	Deactivate(ctx context.Context, id uint, actorID string) error
}

type CalendarAdmin interface {
	Invalidate(ctx context.Context) error
	InvalidateDay(ctx context.Context, calendarID string, day time.Time) error
	Stats(ctx context.Context) (calendar.Stats, error)
}

// ConfigValidator devolve os problemas da configuração de agendamento.
type ConfigValidator func() []conflict.Problem

// ======================================================
// HANDLER
// ======================================================

type AdminHandler struct {
	blocks   BlockManager
	calendar CalendarAdmin
	validate ConfigValidator
	log      zerolog.Logger
}

func NewAdminHandler(
	blocks BlockManager,
	calendar CalendarAdmin,
	validate ConfigValidator,
	log zerolog.Logger,
) *AdminHandler {
	return &AdminHandler{
		blocks:   blocks,
		calendar: calendar,
		validate: validate,
		log:      log,
	}
}

type CreateBlockRequest struct {
	TherapistID string    `json:"therapist_id"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	BlockType   string    `json:"block_type"`
	IsRecurring bool      `json:"is_recurring"`
	Reason      string    `json:"reason" binding:"max=255"`
}

// ------------------------------------------------------
// Bloqueios
// ------------------------------------------------------

func (h *AdminHandler) CreateBlock(c *gin.Context) {
	var req CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	b, err := h.blocks.Create(c.Request.Context(), ucAvailability.CreateBlockInput{
		TherapistID: req.TherapistID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		BlockType:   req.BlockType,
		IsRecurring: req.IsRecurring,
		Reason:      req.Reason,
		ActorID:     middleware.UserID(c),
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Created(c, b)
}

func (h *AdminHandler) ListBlocks(c *gin.Context) {
	filter := domainAvailability.BlockFilter{
		TherapistID: c.Query("therapist_id"),
		ActiveOnly:  c.DefaultQuery("active", "true") == "true",
	}

	if from := c.Query("from"); from != "" {
		t, err := parseDay(from)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Data inválida.")
			return
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := parseDay(to)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Data inválida.")
			return
		}
		filter.To = t.AddDate(0, 0, 1)
	}

	blocks, err := h.blocks.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.List(c, blocks)
}

func (h *AdminHandler) DeactivateBlock(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
		return
	}

	if err := h.blocks.Deactivate(c.Request.Context(), uint(id), middleware.UserID(c)); err != nil {
		writeError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ------------------------------------------------------
// Espelho da agenda externa
// ------------------------------------------------------

// InvalidateCalendar limpa tudo ou, com calendar_id + date, um único dia.
func (h *AdminHandler) InvalidateCalendar(c *gin.Context) {
	calendarID := c.Query("calendar_id")
	dateStr := c.Query("date")

	if calendarID == "" && dateStr == "" {
		if err := h.calendar.Invalidate(c.Request.Context()); err != nil {
			writeError(c, h.log, err)
			return
		}
		h.log.Info().Str("actor_id", middleware.UserID(c)).Msg("calendar mirror cleared")
		c.JSON(http.StatusOK, gin.H{"status": "ok", "scope": "all"})
		return
	}

	if calendarID == "" || dateStr == "" {
		httperr.BadRequest(c, "invalid_request", "Informe calendar_id e date.")
		return
	}

	day, err := parseDay(dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	if err := h.calendar.InvalidateDay(c.Request.Context(), calendarID, day); err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "scope": "day"})
}

func (h *AdminHandler) CalendarStats(c *gin.Context) {
	stats, err := h.calendar.Stats(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ------------------------------------------------------
// Configuração
// ------------------------------------------------------

func (h *AdminHandler) ValidateConfig(c *gin.Context) {
	problems := h.validate()
	if problems == nil {
		problems = []conflict.Problem{}
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":    !conflict.HasErrors(problems),
		"problems": problems,
	})
}
