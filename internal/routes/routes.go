package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/therapy-scheduler/internal/audit"
	"github.com/BruksfildServices01/therapy-scheduler/internal/calendar"
	"github.com/BruksfildServices01/therapy-scheduler/internal/config"
	domain "github.com/BruksfildServices01/therapy-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/therapy-scheduler/internal/domain/conflict"
	"github.com/BruksfildServices01/therapy-scheduler/internal/handlers"
	infraRepo "github.com/BruksfildServices01/therapy-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/therapy-scheduler/internal/middleware"
	"github.com/BruksfildServices01/therapy-scheduler/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/therapy-scheduler/internal/usecase/appointment"
	ucAvailability "github.com/BruksfildServices01/therapy-scheduler/internal/usecase/availability"
)

// Deps são os singletons montados pelo comando serve.
type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Log    zerolog.Logger
	Mirror *calendar.Mirror
	Audit  *audit.Dispatcher
	Clock  timezone.Clock
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(d.DB)
	availabilityRepo := infraRepo.NewAvailabilityGormRepository(d.DB)
	blockRepo := infraRepo.NewAdminBlockGormRepository(d.DB)

	schedulingCfg := d.Config.Scheduling()

	resolver := conflict.NewResolver(schedulingCfg, conflict.Deps{
		Appointments: appointmentRepo,
		Blocks:       blockRepo,
		Schedules:    availabilityRepo,
		Calendar:     d.Mirror,
		Clock:        d.Clock,
		Log:          d.Log.With().Str("component", "conflict_resolver").Logger(),
	})

	// ======================================================
	// 🧠 USE CASES
	// ======================================================
	bookUC := ucAppointment.NewBookAppointment(appointmentRepo, resolver, d.Audit, d.Log)
	transitionUC := ucAppointment.NewTransitionAppointment(appointmentRepo, d.Audit, d.Clock)
	rescheduleUC := ucAppointment.NewRescheduleAppointment(appointmentRepo, resolver, d.Audit, d.Clock, d.Log)
	listByDateUC := ucAppointment.NewListAppointmentsByDate(appointmentRepo, availabilityRepo)
	listByMonthUC := ucAppointment.NewListAppointmentsByMonth(appointmentRepo, availabilityRepo)
	availabilityUC := ucAppointment.NewGetAvailability(resolver)

	replaceScheduleUC := ucAvailability.NewReplaceSchedule(availabilityRepo, d.Audit, d.Log)
	getScheduleUC := ucAvailability.NewGetSchedule(availabilityRepo)
	adminBlocksUC := ucAvailability.NewAdminBlocks(blockRepo, d.Audit)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	appointmentHandler := handlers.NewAppointmentHandler(
		bookUC,
		transitionUC,
		rescheduleUC,
		listByDateUC,
		listByMonthUC,
		availabilityUC,
		d.Log,
	)

	availabilityHandler := handlers.NewAvailabilityHandler(replaceScheduleUC, getScheduleUC, d.Log)

	adminHandler := handlers.NewAdminHandler(adminBlocksUC, d.Mirror, d.Config.Validate, d.Log)

	auditLogsHandler := handlers.NewAuditLogsHandler(d.DB)

	// ======================================================
	// ❤️ HEALTH
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "calendar_policy": schedulingCfg.Policy()})
	})

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(d.Config.JWTSecret))
	{
		// ------------------------------
		// SLOTS / AGENDA DO TERAPEUTA
		// ------------------------------
		therapists := api.Group("/therapists/:therapistID")
		{
			therapists.GET("/slots", appointmentHandler.Slots)
			therapists.GET("/appointments", appointmentHandler.ListByDate)
			therapists.GET("/appointments/month", appointmentHandler.ListByMonth)
			therapists.GET("/availability", availabilityHandler.Get)
			therapists.PUT("/availability", availabilityHandler.Update)
		}

		// ------------------------------
		// APPOINTMENTS
		// ------------------------------
		appointments := api.Group("/appointments")
		{
			appointments.POST("", appointmentHandler.Create)

			staff := appointments.Group("/:id", middleware.RequireRole(middleware.RoleTherapist, middleware.RoleAdmin))
			staff.PATCH("/confirm", appointmentHandler.Transition(domain.ActionConfirm))
			staff.PATCH("/start", appointmentHandler.Transition(domain.ActionStart))
			staff.PATCH("/complete", appointmentHandler.Transition(domain.ActionComplete))
			staff.PATCH("/no-show", appointmentHandler.Transition(domain.ActionNoShow))

			appointments.PATCH("/:id/cancel", appointmentHandler.Transition(domain.ActionCancel))
			appointments.POST("/:id/reschedule", appointmentHandler.Reschedule)
		}

		// ------------------------------
		// 🔐 ADMIN
		// ------------------------------
		admin := api.Group("/admin", middleware.RequireRole(middleware.RoleAdmin))
		{
			admin.GET("/blocks", adminHandler.ListBlocks)
			admin.POST("/blocks", adminHandler.CreateBlock)
			admin.DELETE("/blocks/:id", adminHandler.DeactivateBlock)

			admin.POST("/calendar/invalidate", adminHandler.InvalidateCalendar)
			admin.GET("/calendar/stats", adminHandler.CalendarStats)

			admin.GET("/scheduling/config/validate", adminHandler.ValidateConfig)

			admin.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
