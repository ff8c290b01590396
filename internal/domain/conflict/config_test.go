package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fields(problems []Problem) []string {
	var out []string
	for _, p := range problems {
		out = append(out, p.Field)
	}
	return out
}

func TestDefaultConfigIsValid(t *testing.T) {
	problems := DefaultConfig().Validate()
	assert.Empty(t, problems)
	assert.False(t, HasErrors(problems))
}

func TestValidateReportsWithoutFailing(t *testing.T) {
	cfg := Config{
		BufferMinutes:  61,
		SessionMinutes: 0,
		AllowedDays:    nil,
		FailSecure:     true,
		CacheTTL:       0,
	}

	problems := cfg.Validate()
	assert.True(t, HasErrors(problems))
	assert.ElementsMatch(t, []string{"buffer_minutes", "session_minutes", "allowed_days", "cache_ttl"}, fields(problems))
}

func TestValidateDaysAndPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowedDays = []int{1, 1, 7}
	cfg.FailSecure = false

	problems := cfg.Validate()
	assert.Len(t, problems, 3)
	assert.True(t, HasErrors(problems))

	cfg.AllowedDays = []int{1}
	problems = cfg.Validate()
	assert.Len(t, problems, 1)
	assert.Equal(t, SeverityWarning, problems[0].Severity)
	assert.False(t, HasErrors(problems))
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10*time.Minute, cfg.Buffer())
	assert.Equal(t, 50*time.Minute, cfg.SessionDuration())
	assert.True(t, cfg.DayAllowed(time.Monday))
	assert.False(t, cfg.DayAllowed(time.Sunday))
	assert.Equal(t, "fail-secure", cfg.Policy())
}
