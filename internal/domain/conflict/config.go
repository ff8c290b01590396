package conflict

import (
	"fmt"
	"time"
)

const (
	MaxBufferMinutes  = 60
	DefaultCacheTTL   = 5 * time.Minute
	DefaultSessionMin = 50
	DefaultBufferMin  = 10
)

// Config é a configuração operacional do resolvedor e do espelho de agenda.
// É passada na construção; nada aqui é lido de estado global.
type Config struct {
	BufferMinutes  int
	SessionMinutes int
	AllowedDays    []int
	FailSecure     bool
	CacheTTL       time.Duration
}

func DefaultConfig() Config {
	return Config{
		BufferMinutes:  DefaultBufferMin,
		SessionMinutes: DefaultSessionMin,
		AllowedDays:    []int{1, 2, 3, 4, 5},
		FailSecure:     true,
		CacheTTL:       DefaultCacheTTL,
	}
}

func (c Config) Buffer() time.Duration {
	return time.Duration(c.BufferMinutes) * time.Minute
}

func (c Config) SessionDuration() time.Duration {
	if c.SessionMinutes <= 0 {
		return DefaultSessionMin * time.Minute
	}
	return time.Duration(c.SessionMinutes) * time.Minute
}

func (c Config) DayAllowed(d time.Weekday) bool {
	for _, allowed := range c.AllowedDays {
		if allowed == int(d) {
			return true
		}
	}
	return false
}

func (c Config) Policy() string {
	if c.FailSecure {
		return "fail-secure"
	}
	return "fail-open"
}

// ===============================
// Validation
// ===============================

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type Problem struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Validate relata problemas de configuração sem falhar.
func (c Config) Validate() []Problem {
	problems := []Problem{}

	add := func(field string, sev Severity, format string, args ...any) {
		problems = append(problems, Problem{
			Field:    field,
			Message:  fmt.Sprintf(format, args...),
			Severity: sev,
		})
	}

	if c.BufferMinutes < 0 || c.BufferMinutes > MaxBufferMinutes {
		add("buffer_minutes", SeverityError, "buffer must be between 0 and %d minutes, got %d", MaxBufferMinutes, c.BufferMinutes)
	}

	if c.SessionMinutes <= 0 {
		add("session_minutes", SeverityError, "session duration must be positive, got %d", c.SessionMinutes)
	}

	if len(c.AllowedDays) == 0 {
		add("allowed_days", SeverityError, "allowed days is empty: no date can be booked")
	}

	seen := map[int]bool{}
	for _, d := range c.AllowedDays {
		if d < 0 || d > 6 {
			add("allowed_days", SeverityError, "day %d is outside 0..6", d)
			continue
		}
		if seen[d] {
			add("allowed_days", SeverityWarning, "day %d listed more than once", d)
		}
		seen[d] = true
	}

	if c.CacheTTL <= 0 {
		add("cache_ttl", SeverityError, "calendar cache TTL must be positive, got %s", c.CacheTTL)
	}

	if !c.FailSecure {
		add("fail_secure", SeverityWarning, "fail-open policy: calendar outages are treated as free time")
	}

	return problems
}

func HasErrors(problems []Problem) bool {
	for _, p := range problems {
		if p.Severity == SeverityError {
			return true
		}
	}
	return false
}
