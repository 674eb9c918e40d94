package daterange

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDay(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "already midnight UTC",
			in:   date(2025, time.June, 1),
			want: date(2025, time.June, 1),
		},
		{
			name: "afternoon collapses to midnight",
			in:   time.Date(2025, time.June, 1, 15, 30, 45, 123, time.UTC),
			want: date(2025, time.June, 1),
		},
		{
			name: "non-UTC zone converts before truncating",
			in:   time.Date(2025, time.June, 1, 22, 0, 0, 0, time.FixedZone("UTC-5", -5*3600)),
			want: date(2025, time.June, 2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Day(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("Day(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("Day(%v) location = %v, want UTC", tt.in, got.Location())
			}
		})
	}
}

func TestDayIsIdempotent(t *testing.T) {
	in := time.Date(2025, time.March, 30, 23, 59, 59, 0, time.UTC)
	once := Day(in)
	twice := Day(once)
	if !once.Equal(twice) {
		t.Errorf("Day applied twice differs: %v vs %v", once, twice)
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                   string
		aStart, aEnd           time.Time
		bStart, bEnd           time.Time
		want                   bool
	}{
		{
			name:   "identical stays overlap",
			aStart: date(2025, time.June, 1), aEnd: date(2025, time.June, 5),
			bStart: date(2025, time.June, 1), bEnd: date(2025, time.June, 5),
			want: true,
		},
		{
			name:   "partial overlap at the tail",
			aStart: date(2025, time.June, 1), aEnd: date(2025, time.June, 5),
			bStart: date(2025, time.June, 4), bEnd: date(2025, time.June, 8),
			want: true,
		},
		{
			name:   "one stay contains the other",
			aStart: date(2025, time.June, 1), aEnd: date(2025, time.June, 10),
			bStart: date(2025, time.June, 3), bEnd: date(2025, time.June, 5),
			want: true,
		},
		{
			name:   "single night inside a longer stay",
			aStart: date(2025, time.June, 2), aEnd: date(2025, time.June, 3),
			bStart: date(2025, time.June, 1), bEnd: date(2025, time.June, 5),
			want: true,
		},
		{
			name:   "back to back stays do not overlap",
			aStart: date(2025, time.June, 1), aEnd: date(2025, time.June, 5),
			bStart: date(2025, time.June, 5), bEnd: date(2025, time.June, 8),
			want: false,
		},
		{
			name:   "back to back reversed",
			aStart: date(2025, time.June, 5), aEnd: date(2025, time.June, 8),
			bStart: date(2025, time.June, 1), bEnd: date(2025, time.June, 5),
			want: false,
		},
		{
			name:   "fully disjoint",
			aStart: date(2025, time.June, 1), aEnd: date(2025, time.June, 3),
			bStart: date(2025, time.June, 10), bEnd: date(2025, time.June, 12),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			if got != tt.want {
				t.Errorf("Overlaps(%v, %v, %v, %v) = %v, want %v",
					tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}

			// Overlap is symmetric.
			reversed := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd)
			if reversed != tt.want {
				t.Errorf("Overlaps is not symmetric for %s", tt.name)
			}
		})
	}
}

// Timestamps on the same calendar day must compare as that day regardless
// of the hour, so a checkout at 23:00 still hands the room over to a
// check-in recorded at 01:00 the same day.
func TestOverlapsIgnoresTimeOfDay(t *testing.T) {
	aStart := time.Date(2025, time.June, 1, 14, 0, 0, 0, time.UTC)
	aEnd := time.Date(2025, time.June, 5, 23, 0, 0, 0, time.UTC)
	bStart := time.Date(2025, time.June, 5, 1, 0, 0, 0, time.UTC)
	bEnd := time.Date(2025, time.June, 8, 11, 0, 0, 0, time.UTC)

	if Overlaps(aStart, aEnd, bStart, bEnd) {
		t.Error("checkout day and check-in day are the same calendar day; back to back stays must not overlap")
	}
}

// A stay spanning a DST transition is still a plain run of calendar days
// once normalized to UTC.
func TestOverlapsAcrossDSTTransition(t *testing.T) {
	// Europe DST starts on 2025-03-30.
	aStart := date(2025, time.March, 28)
	aEnd := date(2025, time.March, 31)
	bStart := date(2025, time.March, 31)
	bEnd := date(2025, time.April, 2)

	if Overlaps(aStart, aEnd, bStart, bEnd) {
		t.Error("stays meeting at the DST boundary must not overlap")
	}
	if !Overlaps(aStart, aEnd, date(2025, time.March, 30), bEnd) {
		t.Error("stay starting inside the DST window must overlap")
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	b := time.Date(2025, time.June, 1, 21, 0, 0, 0, time.UTC)
	c := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

	if !SameDay(a, b) {
		t.Error("timestamps on the same day should compare equal")
	}
	if SameDay(a, c) {
		t.Error("different days should not compare equal")
	}
}

func TestNights(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     int
	}{
		{"single night", date(2025, time.June, 1), date(2025, time.June, 2), 1},
		{"week long stay", date(2025, time.June, 1), date(2025, time.June, 8), 7},
		{"time of day ignored", time.Date(2025, time.June, 1, 23, 0, 0, 0, time.UTC), time.Date(2025, time.June, 3, 1, 0, 0, 0, time.UTC), 2},
		{"zero length range", date(2025, time.June, 1), date(2025, time.June, 1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Nights(tt.checkIn, tt.checkOut); got != tt.want {
				t.Errorf("Nights(%v, %v) = %d, want %d", tt.checkIn, tt.checkOut, got, tt.want)
			}
		})
	}
}
