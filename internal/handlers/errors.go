package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/therapy-scheduler/internal/domain/conflict"
	"github.com/BruksfildServices01/therapy-scheduler/internal/httperr"
)

var rejectionMessages = map[conflict.Reason]string{
	conflict.ReasonInvalidTiming:       "Horário inválido.",
	conflict.ReasonDayNotAllowed:       "Dia da semana não permitido para agendamento.",
	conflict.ReasonOutsideWorkingHours: "Fora do horário de atendimento.",
	conflict.ReasonSlotAlreadyBooked:   "Horário já reservado.",
	conflict.ReasonAdminBlocked:        "Horário bloqueado pela administração.",
	conflict.ReasonExternalCalendar:    "Conflito com a agenda externa do terapeuta.",
	conflict.ReasonCalendarUnavailable: "Agenda externa indisponível. Tente novamente.",
}

var businessMessages = map[string]string{
	"invalid_input":         "Dados inválidos.",
	"invalid_state":         "Transição de status inválida.",
	"invalid_action":        "Ação inválida.",
	"unknown_action":        "Ação inválida.",
	"appointment_not_found": "Agendamento não encontrado.",
	"block_not_found":       "Bloqueio não encontrado.",
	"invalid_window":        "Janela de atendimento inválida.",
	"invalid_timezone":      "Fuso horário inválido.",
	"invalid_date":          "Data inválida.",
	"invalid_period":        "Período inválido.",
	"invalid_block_period":  "Período do bloqueio inválido.",
	"invalid_block_type":    "Tipo de bloqueio inválido.",
	"forbidden":             "Acesso negado.",
}

var notFoundCodes = map[string]bool{
	"appointment_not_found": true,
	"block_not_found":       true,
}

func rejectionStatus(reason conflict.Reason) int {
	switch reason {
	case conflict.ReasonSlotAlreadyBooked:
		return http.StatusConflict
	case conflict.ReasonCalendarUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnprocessableEntity
	}
}

// writeError traduz erros de domínio para a resposta HTTP.
func writeError(c *gin.Context, log zerolog.Logger, err error) {

	if rej, ok := conflict.AsRejection(err); ok {
		httperr.WriteConflict(
			c,
			rejectionStatus(rej.Reason),
			string(rej.Reason),
			rejectionMessages[rej.Reason],
			rej.ConflictingKind,
			rej.ConflictingID,
		)
		return
	}

	if be, ok := httperr.AsBusiness(err); ok {
		msg, known := businessMessages[be.Code]
		if !known {
			msg = "Operação não permitida."
		}
		if notFoundCodes[be.Code] {
			httperr.NotFound(c, be.Code, msg)
			return
		}
		if be.Code == "forbidden" {
			httperr.Forbidden(c, be.Code, msg)
			return
		}
		httperr.BadRequest(c, be.Code, msg)
		return
	}

	log.Error().Err(err).Str("route", c.FullPath()).Msg("request failed")
	httperr.Internal(c, "internal_error", "Erro interno.")
}
