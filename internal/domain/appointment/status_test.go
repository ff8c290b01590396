package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/therapy-scheduler/internal/httperr"
	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusScheduled, StatusConfirmed, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusConfirmed, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusScheduled, StatusCompleted, false},
		{StatusCancelled, StatusScheduled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusNoShow, StatusConfirmed, false},
	}

	for _, tc := range cases {
		err := CanTransition(tc.from, tc.to)
		if tc.ok {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
		} else {
			assert.True(t, httperr.IsBusiness(err, "invalid_state"), "%s -> %s", tc.from, tc.to)
		}
	}
}

func TestActiveStatuses(t *testing.T) {
	for _, s := range ActiveStatuses() {
		assert.True(t, IsActive(Status(s)))
	}
	assert.False(t, IsActive(StatusCancelled))
	assert.False(t, IsActive(StatusRescheduled))
}

func TestApplySetsTimestamps(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

	ap := &models.Appointment{Status: string(StatusScheduled)}
	require.NoError(t, Apply(ap, ActionCancel, now))
	assert.Equal(t, string(StatusCancelled), ap.Status)
	require.NotNil(t, ap.CancelledAt)
	assert.Equal(t, now, *ap.CancelledAt)

	ap = &models.Appointment{Status: string(StatusInProgress)}
	require.NoError(t, Apply(ap, ActionComplete, now))
	require.NotNil(t, ap.CompletedAt)

	ap = &models.Appointment{Status: string(StatusScheduled)}
	assert.Error(t, Apply(ap, ActionComplete, now))
	assert.Equal(t, string(StatusScheduled), ap.Status)

	assert.True(t, httperr.IsBusiness(Apply(ap, Action("archive"), now), "unknown_action"))
}
