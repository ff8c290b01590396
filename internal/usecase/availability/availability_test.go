package availability

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/therapy-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/therapy-scheduler/internal/httperr"
	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
)

type memStore struct {
	windows    map[string][]models.AvailabilityWindow
	calendars  map[string]string
	replaced   int
	blocks     []models.AdminBlock
	lastFilter domain.BlockFilter
}

func newMemStore() *memStore {
	return &memStore{
		windows:   map[string][]models.AvailabilityWindow{},
		calendars: map[string]string{},
	}
}

func (s *memStore) ListWindows(_ context.Context, therapistID string) ([]models.AvailabilityWindow, error) {
	return s.windows[therapistID], nil
}

func (s *memStore) CalendarID(_ context.Context, therapistID string) (string, error) {
	return s.calendars[therapistID], nil
}

func (s *memStore) ReplaceSchedule(_ context.Context, sc domain.Schedule) error {
	s.replaced++
	s.windows[sc.TherapistID] = sc.Windows
	if sc.CalendarID != nil {
		if *sc.CalendarID == "" {
			delete(s.calendars, sc.TherapistID)
		} else {
			s.calendars[sc.TherapistID] = *sc.CalendarID
		}
	}
	return nil
}

func (s *memStore) ListActive(context.Context, string, time.Time, time.Time) ([]models.AdminBlock, error) {
	return s.blocks, nil
}

func (s *memStore) CreateBlock(_ context.Context, b *models.AdminBlock) error {
	b.ID = uint(len(s.blocks) + 1)
	s.blocks = append(s.blocks, *b)
	return nil
}

func (s *memStore) ListBlocks(_ context.Context, f domain.BlockFilter) ([]models.AdminBlock, error) {
	s.lastFilter = f
	return s.blocks, nil
}

func (s *memStore) DeactivateBlock(_ context.Context, id uint) error {
	for i := range s.blocks {
		if s.blocks[i].ID == id {
			s.blocks[i].Active = false
			return nil
		}
	}
	return httperr.ErrBusiness("block_not_found")
}

func TestReplaceScheduleStoresWindowsWithTimezone(t *testing.T) {
	store := newMemStore()
	uc := NewReplaceSchedule(store, nil, zerolog.Nop())

	cal := "therapist@example.com"
	got, err := uc.Execute(context.Background(), ReplaceScheduleInput{
		TherapistID: "t-1",
		Timezone:    "America/Sao_Paulo",
		Windows: []WindowInput{
			{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"},
			{DayOfWeek: 1, StartTime: "11:00", EndTime: "17:00"},
		},
		CalendarID: &cal,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "America/Sao_Paulo", got[0].Timezone)
	assert.Equal(t, 1, store.replaced)

	view, err := NewGetSchedule(store).Execute(context.Background(), "t-1")
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", view.Timezone)
	assert.Equal(t, cal, view.CalendarID)
	assert.Len(t, view.Windows, 2)
}

func TestReplaceScheduleRejectsBadInputWithoutWriting(t *testing.T) {
	store := newMemStore()
	uc := NewReplaceSchedule(store, nil, zerolog.Nop())

	cases := []struct {
		name string
		in   ReplaceScheduleInput
		code string
	}{
		{"timezone", ReplaceScheduleInput{TherapistID: "t-1", Timezone: "Mars/Olympus"}, "invalid_timezone"},
		{"day", ReplaceScheduleInput{TherapistID: "t-1", Windows: []WindowInput{{DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00"}}}, "invalid_window"},
		{"format", ReplaceScheduleInput{TherapistID: "t-1", Windows: []WindowInput{{DayOfWeek: 1, StartTime: "9h", EndTime: "10:00"}}}, "invalid_window"},
		{"order", ReplaceScheduleInput{TherapistID: "t-1", Windows: []WindowInput{{DayOfWeek: 1, StartTime: "10:00", EndTime: "10:00"}}}, "invalid_window"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tc.in)
			assert.True(t, httperr.IsBusiness(err, tc.code), err)
		})
	}
	assert.Zero(t, store.replaced)
}

func TestOverlappingDetection(t *testing.T) {
	ws := []models.AvailabilityWindow{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"},
		{DayOfWeek: 2, StartTime: "10:00", EndTime: "11:00"},
		{DayOfWeek: 1, StartTime: "12:00", EndTime: "13:00"},
	}
	assert.False(t, overlapping(ws))

	ws = append(ws, models.AvailabilityWindow{DayOfWeek: 2, StartTime: "09:30", EndTime: "10:30"})
	assert.True(t, overlapping(ws))
}

func TestAdminBlocksLifecycle(t *testing.T) {
	store := newMemStore()
	uc := NewAdminBlocks(store, nil)

	start := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	b, err := uc.Create(context.Background(), CreateBlockInput{
		TherapistID: "t-1",
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		Reason:      "supervisão",
		ActorID:     "admin-1",
	})
	require.NoError(t, err)
	assert.Equal(t, BlockTypeOther, b.BlockType)
	require.NotNil(t, b.TherapistID)
	assert.Equal(t, "t-1", *b.TherapistID)
	assert.Equal(t, "admin-1", b.CreatedBy)

	global, err := uc.Create(context.Background(), CreateBlockInput{
		StartTime: start, EndTime: start.Add(24 * time.Hour), BlockType: BlockTypeVacation,
	})
	require.NoError(t, err)
	assert.Nil(t, global.TherapistID)

	_, err = uc.Create(context.Background(), CreateBlockInput{StartTime: start, EndTime: start})
	assert.True(t, httperr.IsBusiness(err, "invalid_block_period"))

	_, err = uc.Create(context.Background(), CreateBlockInput{StartTime: start, EndTime: start.Add(time.Hour), BlockType: "party"})
	assert.True(t, httperr.IsBusiness(err, "invalid_block_type"))

	_, err = uc.Create(context.Background(), CreateBlockInput{StartTime: start, EndTime: start.Add(8 * 24 * time.Hour), IsRecurring: true})
	assert.True(t, httperr.IsBusiness(err, "invalid_block_period"))

	require.NoError(t, uc.Deactivate(context.Background(), b.ID, "admin-1"))
	assert.False(t, store.blocks[0].Active)

	err = uc.Deactivate(context.Background(), 99, "admin-1")
	assert.True(t, httperr.IsBusiness(err, "block_not_found"))

	list, err := uc.List(context.Background(), domain.BlockFilter{TherapistID: "t-1", ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.True(t, store.lastFilter.ActiveOnly)
}
