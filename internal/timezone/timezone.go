package timezone

import "time"

const DefaultTimezone = "America/Sao_Paulo"

// ===============================
// Clock
// ===============================

// Clock permite injetar o "agora" em regras que dependem de tempo.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapta uma função a Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// ===============================
// Locations
// ===============================

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// StartOfDay devolve 00:00 do dia civil de t em loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// OnDate monta o instante "HH:MM" no dia civil de date, no fuso loc.
func OnDate(date time.Time, hm string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0,
		loc,
	), nil
}

func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", dateStr, loc)
}
