package availability

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
)

// 2026-10-19 é uma segunda-feira
var monday = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func window(day int, start, end string) models.AvailabilityWindow {
	return models.AvailabilityWindow{
		TherapistID: "t-1",
		DayOfWeek:   day,
		StartTime:   start,
		EndTime:     end,
		Timezone:    "UTC",
	}
}

func at(hour, min int) time.Time {
	return monday.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func TestGenerateSlotsFirstSlotsOfDay(t *testing.T) {
	windows := []models.AvailabilityWindow{window(1, "09:00", "17:00")}

	slots := GenerateSlots(windows, monday, DefaultSlotOptions(), nil, zerolog.Nop())

	require.GreaterOrEqual(t, len(slots), 3)
	assert.Equal(t, Interval{at(9, 0), at(9, 50)}, slots[0])
	assert.Equal(t, Interval{at(10, 0), at(10, 50)}, slots[1])
	assert.Equal(t, Interval{at(11, 0), at(11, 50)}, slots[2])
}

func TestGenerateSlotsCountMatchesStep(t *testing.T) {
	cases := []struct {
		name     string
		windows  []models.AvailabilityWindow
		duration time.Duration
		buffer   time.Duration
	}{
		{"full day", []models.AvailabilityWindow{window(1, "09:00", "17:00")}, 50 * time.Minute, 10 * time.Minute},
		{"two disjoint", []models.AvailabilityWindow{window(1, "08:00", "11:30"), window(1, "13:00", "18:10")}, 50 * time.Minute, 10 * time.Minute},
		{"no buffer", []models.AvailabilityWindow{window(1, "09:00", "12:00")}, 45 * time.Minute, 0},
		{"odd remainder", []models.AvailabilityWindow{window(1, "09:00", "10:50")}, 50 * time.Minute, 10 * time.Minute},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := SlotOptions{Duration: tc.duration, Buffer: tc.buffer}
			slots := GenerateSlots(tc.windows, monday, opts, nil, zerolog.Nop())

			expected := 0
			for _, w := range tc.windows {
				span, err := WindowSpan(w, monday)
				require.NoError(t, err)
				expected += int(span.End.Sub(span.Start) / (tc.duration + tc.buffer))
			}
			assert.Len(t, slots, expected)

			for i := range slots {
				for j := i + 1; j < len(slots); j++ {
					assert.False(t, slots[i].Overlaps(slots[j]), "slots %d and %d overlap", i, j)
				}
			}
		})
	}
}

func TestGenerateSlotsSkipsBookedIntervals(t *testing.T) {
	windows := []models.AvailabilityWindow{window(1, "09:00", "12:00")}
	booked := []Interval{{at(10, 15), at(11, 5)}}

	slots := GenerateSlots(windows, monday, DefaultSlotOptions(), booked, zerolog.Nop())

	assert.Equal(t, []Interval{{at(9, 0), at(9, 50)}}, slots)
}

func TestGenerateSlotsToleratesBadRows(t *testing.T) {
	windows := []models.AvailabilityWindow{
		window(1, "", "12:00"),
		window(1, "banana", "12:00"),
		window(1, "12:00", "10:00"),
		window(1, "14:00", "15:00"),
	}

	slots := GenerateSlots(windows, monday, DefaultSlotOptions(), nil, zerolog.Nop())

	assert.Equal(t, []Interval{{at(14, 0), at(14, 50)}}, slots)
}

func TestGenerateSlotsShortWindowAndOtherDays(t *testing.T) {
	windows := []models.AvailabilityWindow{
		window(1, "09:00", "09:30"),
		window(2, "09:00", "17:00"),
	}

	slots := GenerateSlots(windows, monday, DefaultSlotOptions(), nil, zerolog.Nop())
	assert.Empty(t, slots)
}

func TestGenerateSlotsOverlappingWindowsAreNotMerged(t *testing.T) {
	windows := []models.AvailabilityWindow{
		window(1, "09:00", "11:00"),
		window(1, "09:00", "10:00"),
	}

	slots := GenerateSlots(windows, monday, DefaultSlotOptions(), nil, zerolog.Nop())

	assert.Equal(t, []Interval{
		{at(9, 0), at(9, 50)},
		{at(9, 0), at(9, 50)},
		{at(10, 0), at(10, 50)},
	}, slots)
}

func TestGenerateSlotsUsesWindowTimezone(t *testing.T) {
	sp, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	w := window(1, "09:00", "10:00")
	w.Timezone = "America/Sao_Paulo"

	date := time.Date(2026, 10, 19, 0, 0, 0, 0, sp)
	slots := GenerateSlots([]models.AvailabilityWindow{w}, date, DefaultSlotOptions(), nil, zerolog.Nop())

	require.Len(t, slots, 1)
	assert.True(t, slots[0].Start.Equal(time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)))
}

func TestWithinAnyWindow(t *testing.T) {
	windows := []models.AvailabilityWindow{
		window(1, "09:00", "12:00"),
		window(1, "14:00", "18:00"),
	}

	assert.True(t, WithinAnyWindow(windows, at(9, 0), at(9, 50)))
	assert.True(t, WithinAnyWindow(windows, at(17, 10), at(18, 0)))
	assert.False(t, WithinAnyWindow(windows, at(11, 30), at(12, 20)))
	assert.False(t, WithinAnyWindow(windows, at(12, 30), at(13, 20)))
	assert.False(t, WithinAnyWindow(windows, at(9, 0).AddDate(0, 0, 1), at(9, 50).AddDate(0, 0, 1)))
}

func TestOccurrences(t *testing.T) {
	single := models.AdminBlock{StartTime: at(10, 30), EndTime: at(11, 0)}
	assert.Len(t, Occurrences(single, at(0, 0), at(23, 59), time.UTC), 1)
	assert.Empty(t, Occurrences(single, at(11, 0), at(12, 0), time.UTC))

	weekly := models.AdminBlock{StartTime: at(12, 0), EndTime: at(13, 0), IsRecurring: true}
	nextMonday := monday.AddDate(0, 0, 14)
	occ := Occurrences(weekly, nextMonday, nextMonday.Add(24*time.Hour), time.UTC)
	require.Len(t, occ, 1)
	assert.Equal(t, at(12, 0).AddDate(0, 0, 14), occ[0].Start)

	assert.Empty(t, Occurrences(weekly, monday.AddDate(0, 0, 1), monday.AddDate(0, 0, 2), time.UTC))
	assert.Empty(t, Occurrences(weekly, monday.AddDate(0, 0, -7), monday, time.UTC))

	broken := models.AdminBlock{StartTime: at(13, 0), EndTime: at(12, 0)}
	assert.Nil(t, Occurrences(broken, at(0, 0), at(23, 0), time.UTC))
}

func TestOccurrencesKeepLocalTimeAcrossOffsetChange(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// criado no horário de verão (EDT, UTC-4) e lido do banco em UTC
	first := time.Date(2026, 10, 19, 12, 0, 0, 0, ny)
	weekly := models.AdminBlock{
		StartTime:   first.UTC(),
		EndTime:     first.Add(time.Hour).UTC(),
		IsRecurring: true,
	}

	// 2026-11-02 já é EST (UTC-5)
	day := time.Date(2026, 11, 2, 0, 0, 0, 0, ny)
	occ := Occurrences(weekly, day, day.AddDate(0, 0, 1), ny)
	require.Len(t, occ, 1)

	local := occ[0].Start.In(ny)
	assert.Equal(t, 12, local.Hour())
	assert.Equal(t, 0, local.Minute())
	assert.Equal(t, 17, occ[0].Start.UTC().Hour())
	assert.Equal(t, time.Hour, occ[0].End.Sub(occ[0].Start))
}
