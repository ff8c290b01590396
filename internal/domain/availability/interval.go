package availability

import "time"

// Interval é semiaberto: [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

func (i Interval) OverlapsAny(others []Interval) bool {
	for _, o := range others {
		if i.Overlaps(o) {
			return true
		}
	}
	return false
}

// Expand alarga o intervalo em d para os dois lados.
func (i Interval) Expand(d time.Duration) Interval {
	return Interval{Start: i.Start.Add(-d), End: i.End.Add(d)}
}

func (i Interval) Contains(o Interval) bool {
	return !o.Start.Before(i.Start) && !o.End.After(i.End)
}
