package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/BruksfildServices01/therapy-scheduler/internal/audit"
	"github.com/BruksfildServices01/therapy-scheduler/internal/calendar"
	"github.com/BruksfildServices01/therapy-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/therapy-scheduler/internal/db"
	"github.com/BruksfildServices01/therapy-scheduler/internal/notify"
	"github.com/BruksfildServices01/therapy-scheduler/internal/routes"
	"github.com/BruksfildServices01/therapy-scheduler/internal/telemetry"
	"github.com/BruksfildServices01/therapy-scheduler/internal/timezone"
)

const shutdownTimeout = 15 * time.Second

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sobe a API HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "aplica as migrations antes de subir")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ======================================================
	// ⚙️ CONFIG / LOG / TRACING
	// ======================================================
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	log := telemetry.NewLogger(cfg.Env, cfg.LogLevel)

	for _, p := range cfg.Validate() {
		log.Warn().
			Str("field", p.Field).
			Str("severity", string(p.Severity)).
			Msg(p.Message)
	}

	shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.TracingConfig{
		Enabled:     cfg.OTelEnabled,
		Endpoint:    cfg.OTelEndpoint,
		SampleRatio: cfg.OTelSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Error().Err(err).Msg("tracing shutdown failed")
		}
	}()

	// ======================================================
	// 🗄️ BANCO
	// ======================================================
	db, err := dbpkg.Open(cfg, log)
	if err != nil {
		return err
	}

	if migrateOnStart {
		if err := dbpkg.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// ======================================================
	// 📅 ESPELHO DA AGENDA EXTERNA
	// ======================================================
	mirror, err := newMirror(ctx, cfg, log)
	if err != nil {
		return err
	}

	// ======================================================
	// 📝 AUDITORIA / EVENTOS
	// ======================================================
	sinks := []audit.Sink{audit.New(db)}

	if w := notify.NewKafkaWriter(cfg.KafkaBrokers); w != nil {
		kafkaSink := notify.NewKafkaSink(w, cfg.KafkaTopic)
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
		log.Info().Str("topic", cfg.KafkaTopic).Msg("kafka notifications enabled")
	}

	dispatcher := audit.NewDispatcher(log, sinks...)
	defer dispatcher.Close()

	// ======================================================
	// 🌐 HTTP
	// ======================================================
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	routes.RegisterRoutes(r, routes.Deps{
		DB:     db,
		Config: cfg,
		Log:    log,
		Mirror: mirror,
		Audit:  dispatcher,
		Clock:  timezone.SystemClock{},
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           otelhttp.NewHandler(r, telemetry.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(sctx)
}

// newMirror escolhe cache (Redis ou memória) e feed (HTTP ou estático).
func newMirror(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*calendar.Mirror, error) {
	sched := cfg.Scheduling()

	var cache calendar.Cache
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis url: %w", err)
		}
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		cache = calendar.NewRedisCache(client, sched.CacheTTL)
	} else {
		cache = calendar.NewMemoryCache(cfg.CalendarCacheCapacity)
	}

	var feed calendar.Feed = calendar.StaticFeed{}
	if cfg.CalendarFeedURL != "" {
		feed = calendar.NewHTTPFeed(calendar.HTTPFeedConfig{
			BaseURL:       cfg.CalendarFeedURL,
			Token:         cfg.CalendarFeedToken,
			Timeout:       cfg.CalendarFetchTimeout,
			RatePerSecond: cfg.CalendarRatePerSecond,
		})
	} else {
		log.Warn().Msg("no calendar feed configured, external calendar checks always pass")
	}

	return calendar.NewMirror(feed,
		calendar.WithCache(cache),
		calendar.WithTTL(sched.CacheTTL),
		calendar.WithFetchTimeout(cfg.CalendarFetchTimeout),
		calendar.WithLogger(log.With().Str("component", "calendar_mirror").Logger()),
	), nil
}
