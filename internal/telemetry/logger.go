package telemetry

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const ServiceName = "therapy-scheduler"

// NewLogger: JSON em produção, console legível em desenvolvimento.
func NewLogger(env, level string) zerolog.Logger {
	return newLogger(os.Stdout, env, level)
}

func newLogger(out io.Writer, env, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if env == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", ServiceName).
		Logger()
}
