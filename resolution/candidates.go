package resolution

import (
	"fmt"
	"math"

	"github.com/bob-anderson-ok/LunarOccultation/occult"
	"github.com/bob-anderson-ok/LunarOccultation/units"
)

// Candidates returns the angular sizes start, start+step, ... below end.
// End is excluded, matching a half-open range.
func Candidates(start, end, step units.Angle) ([]units.Angle, error) {
	s, e, d := start.Milliarcseconds(), end.Milliarcseconds(), step.Milliarcseconds()
	if !(s > 0) || math.IsInf(s, 0) {
		return nil, fmt.Errorf("first candidate %v must be positive: %w", start, occult.ErrInvalidParameter)
	}
	if !(d > 0) || math.IsInf(d, 0) {
		return nil, fmt.Errorf("candidate step %v must be positive: %w", step, occult.ErrInvalidParameter)
	}
	if !(e > s) || math.IsInf(e, 0) {
		return nil, fmt.Errorf("candidate range [%v, %v) is empty: %w", start, end, occult.ErrInvalidParameter)
	}

	n := int(math.Ceil((e - s) / d))
	out := make([]units.Angle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, start+units.Angle(i)*step)
	}
	return out, nil
}
