package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// --------------------------------------------------
// Parsing de datas vindas da query string
// --------------------------------------------------

// parseDay lê "YYYY-MM-DD". Só ano/mês/dia são usados; o fuso do
// terapeuta é aplicado mais adiante.
func parseDay(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", dateStr)
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
