package engine

// InAnyRange reports whether hour falls inside any of the given ranges.
// A range with Start <= End matches hour in [Start, End); a range with
// Start > End wraps midnight and matches [Start, 24) or [0, End).
// An empty list never matches. Callers pass hour already reduced modulo
// 24; no normalization happens here.
func InAnyRange(hour float64, ranges []TimeRange) bool {
	for _, r := range ranges {
		if r.Start <= r.End {
			if hour >= r.Start && hour < r.End {
				return true
			}
			continue
		}
		// Overnight wrap
		if hour >= r.Start || hour < r.End {
			return true
		}
	}
	return false
}
