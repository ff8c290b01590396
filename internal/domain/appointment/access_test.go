package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BruksfildServices01/therapy-scheduler/internal/httperr"
	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
)

func TestAuthorize(t *testing.T) {
	ap := &models.Appointment{ClientID: "c-1", TherapistID: "t-1"}

	cases := []struct {
		name   string
		actor  Actor
		action Action
		ok     bool
	}{
		{"admin any action", Actor{ID: "a-1", Role: RoleAdmin}, ActionConfirm, true},
		{"own therapist", Actor{ID: "t-1", Role: RoleTherapist}, ActionComplete, true},
		{"other therapist", Actor{ID: "t-2", Role: RoleTherapist}, ActionConfirm, false},
		{"own client cancels", Actor{ID: "c-1", Role: RoleClient}, ActionCancel, true},
		{"own client reschedules", Actor{ID: "c-1", Role: RoleClient}, ActionReschedule, true},
		{"own client cannot confirm", Actor{ID: "c-1", Role: RoleClient}, ActionConfirm, false},
		{"other client", Actor{ID: "c-2", Role: RoleClient}, ActionCancel, false},
		{"no role", Actor{ID: "c-1"}, ActionCancel, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(ap, tc.actor, tc.action)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, httperr.IsBusiness(err, "forbidden"))
			}
		})
	}
}
