package quad

import (
	"math"

	"github.com/gogpu/quad/internal/tess"
)

// Dash defines a dash pattern for lines.
// A dash pattern consists of alternating dash and gap lengths.
// For example, [5, 3] creates a pattern of 5 units dash, 3 units gap.
type Dash struct {
	// Array contains alternating dash/gap lengths.
	// If the array has an odd number of elements, it is logically duplicated
	// to create an even-length pattern (e.g., [5] becomes [5, 5]).
	Array []float64

	// Offset is the starting offset into the pattern.
	Offset float64
}

// NewDash creates a dash pattern from alternating dash/gap lengths.
//
// Examples:
//
//	NewDash(5, 3)        // 5 units dash, 3 units gap
//	NewDash(10, 5, 2, 5) // 10 dash, 5 gap, 2 dash, 5 gap
//	NewDash(5)           // equivalent to [5, 5]
//
// Returns nil if no lengths are provided or all lengths are zero.
func NewDash(lengths ...float64) *Dash {
	var sum float64
	normalized := make([]float64, len(lengths))
	for i, l := range lengths {
		normalized[i] = math.Abs(l)
		sum += normalized[i]
	}
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil
	}
	return &Dash{Array: normalized}
}

// WithOffset returns a new Dash with the given offset.
func (d *Dash) WithOffset(offset float64) *Dash {
	if d == nil {
		return nil
	}
	return &Dash{Array: d.Array, Offset: offset}
}

// tess converts the pattern to an even-length float32 pattern.
func (d *Dash) tess() *tess.Dash {
	if d == nil || len(d.Array) == 0 {
		return nil
	}
	n := len(d.Array)
	if n%2 == 1 {
		n *= 2
	}
	pattern := make([]float32, n)
	var sum float32
	for i := range pattern {
		pattern[i] = float32(d.Array[i%len(d.Array)])
		sum += pattern[i]
	}
	if !(sum > 0) {
		return nil
	}
	return &tess.Dash{Pattern: pattern, Offset: float32(d.Offset)}
}
