package availability

import (
	"context"
	"time"

	"github.com/BruksfildServices01/therapy-scheduler/internal/models"
)

type BlockFilter struct {
	TherapistID string
	From        time.Time
	To          time.Time
	ActiveOnly  bool
}

type BlockStore interface {
	// ListActive devolve os bloqueios ativos do terapeuta (ou globais) que
	// podem cruzar [from, to). Recorrentes vêm sempre; use Occurrences.
	ListActive(ctx context.Context, therapistID string, from, to time.Time) ([]models.AdminBlock, error)

	CreateBlock(ctx context.Context, b *models.AdminBlock) error
	ListBlocks(ctx context.Context, filter BlockFilter) ([]models.AdminBlock, error)
	DeactivateBlock(ctx context.Context, id uint) error
}

const week = 7 * 24 * time.Hour

// Occurrences projeta o bloqueio em [from, to). Recorrentes repetem
// semanalmente a partir da primeira ocorrência, no mesmo horário local de
// loc (a hora UTC muda quando o fuso entra ou sai do horário de verão).
func Occurrences(b models.AdminBlock, from, to time.Time, loc *time.Location) []Interval {
	if !b.EndTime.After(b.StartTime) {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	rng := Interval{Start: from, End: to}
	start := b.StartTime.In(loc)
	end := b.EndTime.In(loc)

	if !b.IsRecurring {
		base := Interval{Start: start, End: end}
		if base.Overlaps(rng) {
			return []Interval{base}
		}
		return nil
	}

	// semanas inteiras antes de from; uma a menos cobre a hora de diferença
	k := 0
	if end.Before(from) {
		k = int(from.Sub(end)/week) - 1
		if k < 0 {
			k = 0
		}
	}

	var out []Interval
	for ; ; k++ {
		occ := Interval{
			Start: start.AddDate(0, 0, 7*k),
			End:   end.AddDate(0, 0, 7*k),
		}
		if !occ.Start.Before(to) {
			break
		}
		if occ.Overlaps(rng) {
			out = append(out, occ)
		}
	}
	return out
}
