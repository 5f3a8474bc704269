package scheduling

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// NextGridStart rounds t up to the next grid boundary. Instants already on
// the boundary are returned unchanged.
func NextGridStart(t time.Time, grid time.Duration) time.Time {
	gridMin := int(grid / time.Minute)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	mins := t.Hour()*60 + t.Minute()

	if mins%gridMin == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return day.Add(time.Duration(mins) * time.Minute)
	}
	return day.Add(time.Duration(mins-mins%gridMin+gridMin) * time.Minute)
}

// SlotStarts returns the grid-aligned instants contained in
// [NextGridStart(from), to), in ascending order. It materializes which
// discrete slot starts an arbitrary stored interval covers.
func SlotStarts(from, to time.Time, grid time.Duration) []time.Time {
	var starts []time.Time
	for t := NextGridStart(from, grid); t.Before(to); t = t.Add(grid) {
		starts = append(starts, t)
	}
	return starts
}
