package core

// PriorityBand is one of the five contiguous score ranges an email can land in
type PriorityBand struct {
	Label string
	Color string
	Badge string
	Min   int
	Max   int
}

// priorityBands partitions [0,100] into five contiguous, non-overlapping
// ranges, ordered highest first
var priorityBands = []PriorityBand{
	{Label: "critical", Color: "red", Badge: "🔴", Min: 80, Max: 100},
	{Label: "high", Color: "orange", Badge: "🟠", Min: 60, Max: 79},
	{Label: "medium", Color: "yellow", Badge: "🟡", Min: 40, Max: 59},
	{Label: "low", Color: "green", Badge: "🟢", Min: 20, Max: 39},
	{Label: "minimal", Color: "gray", Badge: "⚪", Min: 0, Max: 19},
}

// BandFor maps a total score to its priority band. Scores outside [0,100]
// cannot occur after clamping, but the lowest band is returned as a
// defensive fallback so the mapping is total.
func BandFor(score int) PriorityBand {
	for _, b := range priorityBands {
		if score >= b.Min && score <= b.Max {
			return b
		}
	}
	return priorityBands[len(priorityBands)-1]
}

// Bands returns the ordered band table
func Bands() []PriorityBand {
	out := make([]PriorityBand, len(priorityBands))
	copy(out, priorityBands)
	return out
}
