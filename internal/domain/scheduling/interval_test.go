package scheduling

import (
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 1, 5, hour, min, 0, 0, time.Local)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a    Interval
		b    Interval
		want bool
	}{
		{"identical", Interval{at(9, 0), at(9, 30)}, Interval{at(9, 0), at(9, 30)}, true},
		{"partial", Interval{at(9, 0), at(9, 30)}, Interval{at(9, 15), at(9, 45)}, true},
		{"contained", Interval{at(9, 0), at(10, 0)}, Interval{at(9, 15), at(9, 30)}, true},
		{"touching ends do not overlap", Interval{at(9, 0), at(9, 30)}, Interval{at(9, 30), at(10, 0)}, false},
		{"disjoint", Interval{at(9, 0), at(9, 15)}, Interval{at(10, 0), at(10, 15)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps (reversed) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextGridStart(t *testing.T) {
	grid := 15 * time.Minute

	if got := NextGridStart(at(9, 0), grid); !got.Equal(at(9, 0)) {
		t.Errorf("aligned instant changed: got %v", got)
	}
	if got := NextGridStart(at(9, 2), grid); !got.Equal(at(9, 15)) {
		t.Errorf("09:02 should round to 09:15, got %v", got)
	}
	if got := NextGridStart(at(9, 59), grid); !got.Equal(at(10, 0)) {
		t.Errorf("09:59 should round to 10:00, got %v", got)
	}

	withSeconds := time.Date(2026, 1, 5, 9, 0, 30, 0, time.Local)
	if got := NextGridStart(withSeconds, grid); !got.Equal(at(9, 15)) {
		t.Errorf("09:00:30 should round to 09:15, got %v", got)
	}
}

func TestSlotStarts(t *testing.T) {
	grid := 15 * time.Minute

	got := SlotStarts(at(9, 2), at(9, 50), grid)
	want := []time.Time{at(9, 15), at(9, 30), at(9, 45)}
	if len(got) != len(want) {
		t.Fatalf("expected %d starts, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("start %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSlotStarts_EndBoundaryExcluded(t *testing.T) {
	grid := 15 * time.Minute

	got := SlotStarts(at(9, 0), at(9, 30), grid)
	if len(got) != 2 || !got[0].Equal(at(9, 0)) || !got[1].Equal(at(9, 15)) {
		t.Errorf("expected {09:00, 09:15}, got %v", got)
	}
}

func TestSlotStarts_EmptyRange(t *testing.T) {
	grid := 15 * time.Minute

	if got := SlotStarts(at(9, 2), at(9, 10), grid); len(got) != 0 {
		t.Errorf("expected no starts, got %v", got)
	}
}
