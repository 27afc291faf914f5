package engine

import "testing"

func TestInAnyRange(t *testing.T) {
	tests := []struct {
		name   string
		hour   float64
		ranges []TimeRange
		want   bool
	}{
		{
			name:   "empty list never matches",
			hour:   12,
			ranges: []TimeRange{},
			want:   false,
		},
		{
			name:   "nil list never matches",
			hour:   0,
			ranges: nil,
			want:   false,
		},
		{
			name:   "same-day range includes start",
			hour:   6,
			ranges: []TimeRange{{Start: 6, End: 14}},
			want:   true,
		},
		{
			name:   "same-day range excludes end",
			hour:   14,
			ranges: []TimeRange{{Start: 6, End: 14}},
			want:   false,
		},
		{
			name:   "same-day range interior",
			hour:   10,
			ranges: []TimeRange{{Start: 6, End: 14}},
			want:   true,
		},
		{
			name:   "fractional hour inside half-hour range",
			hour:   18.5,
			ranges: []TimeRange{{Start: 18.5, End: 20.5}},
			want:   true,
		},
		{
			name:   "fractional hour at half-hour end",
			hour:   20.5,
			ranges: []TimeRange{{Start: 18.5, End: 20.5}},
			want:   false,
		},
		{
			name:   "overnight wrap matches late evening",
			hour:   23,
			ranges: []TimeRange{{Start: 22, End: 6}},
			want:   true,
		},
		{
			name:   "overnight wrap matches early morning",
			hour:   5,
			ranges: []TimeRange{{Start: 22, End: 6}},
			want:   true,
		},
		{
			name:   "overnight wrap excludes midday",
			hour:   12,
			ranges: []TimeRange{{Start: 22, End: 6}},
			want:   false,
		},
		{
			name:   "overnight wrap includes start",
			hour:   22,
			ranges: []TimeRange{{Start: 22, End: 6}},
			want:   true,
		},
		{
			name:   "overnight wrap excludes end",
			hour:   6,
			ranges: []TimeRange{{Start: 22, End: 6}},
			want:   false,
		},
		{
			name:   "degenerate range never matches",
			hour:   8,
			ranges: []TimeRange{{Start: 8, End: 8}},
			want:   false,
		},
		{
			name:   "union across multiple ranges",
			hour:   19,
			ranges: []TimeRange{{Start: 7, End: 9}, {Start: 18.5, End: 20.5}},
			want:   true,
		},
		{
			name:   "gap between ranges",
			hour:   12,
			ranges: []TimeRange{{Start: 7, End: 9}, {Start: 18.5, End: 20.5}},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InAnyRange(tt.hour, tt.ranges)
			if got != tt.want {
				t.Errorf("InAnyRange(%v, %v) = %v, want %v", tt.hour, tt.ranges, got, tt.want)
			}
		})
	}
}

func TestInAnyRangeWrapSweep(t *testing.T) {
	// For a wrapping range every hour in [start,24) and [0,end) must
	// match and every other whole hour must not.
	r := []TimeRange{{Start: 22, End: 6}}
	for h := 0; h < 24; h++ {
		want := h >= 22 || h < 6
		if got := InAnyRange(float64(h), r); got != want {
			t.Errorf("hour %d: got %v, want %v", h, got, want)
		}
	}
}
