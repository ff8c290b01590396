package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code            string `json:"error_code"`
	Message         string `json:"message"`
	ConflictingID   string `json:"conflicting_id,omitempty"`
	ConflictingKind string `json:"conflicting_kind,omitempty"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

// WriteConflict inclui a identidade do registro conflitante.
func WriteConflict(c *gin.Context, status int, code, message, kind, id string) {
	c.JSON(status, HTTPError{
		Code:            code,
		Message:         message,
		ConflictingID:   id,
		ConflictingKind: kind,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}
