package appointment

import (
	"github.com/BruksfildServices01/therapy-scheduler/internal/httperr"
	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
)

// ===============================
// Roles / acesso
// ===============================

const (
	RoleClient    = "client"
	RoleTherapist = "therapist"
	RoleAdmin     = "admin"
)

var errForbidden = httperr.ErrBusiness("forbidden")

// Actor é quem dispara a ação (claims sub/role do token).
type Actor struct {
	ID   string
	Role string
}

// Authorize: admin age sobre qualquer agendamento; terapeuta e cliente só
// sobre os próprios. Cliente não executa ações de atendimento.
func Authorize(ap *models.Appointment, actor Actor, action Action) error {
	switch actor.Role {
	case RoleAdmin:
		return nil
	case RoleTherapist:
		if actor.ID != "" && actor.ID == ap.TherapistID {
			return nil
		}
	case RoleClient:
		if action != ActionCancel && action != ActionReschedule {
			return errForbidden
		}
		if actor.ID != "" && actor.ID == ap.ClientID {
			return nil
		}
	}
	return errForbidden
}
