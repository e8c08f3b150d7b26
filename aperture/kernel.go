package aperture

import (
	"fmt"
	"math"

	"github.com/bob-anderson-ok/LunarOccultation/occult"
	"github.com/bob-anderson-ok/LunarOccultation/units"
)

// Kernel evaluates the chord length of the disk as it sweeps across the grid: for each
// position x, with R the effective radius, the value is sqrt(R² - (R-x)²) and only
// positions where that radicand is non-negative are kept. The kernel always has odd
// length; a trailing zero is appended when needed.
//
// Kernel is the 1-D projection of a uniform 2-D disk, which is the intensity profile
// a finite source or pupil contributes along the occultation axis.
func (a Aperture) Kernel(x []units.Length) ([]float64, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("kernel grid is empty: %w", occult.ErrInvalidParameter)
	}
	if !a.radius.Positive() {
		return nil, fmt.Errorf("aperture radius %v must be positive: %w", a.radius, occult.ErrInvalidParameter)
	}
	if a.scale <= 0 || math.IsNaN(a.scale) || math.IsInf(a.scale, 0) {
		return nil, fmt.Errorf("aperture scale %g must be positive: %w", a.scale, occult.ErrInvalidParameter)
	}

	R := a.EffectiveRadius().Meters()
	kernel := make([]float64, 0, len(x))
	for _, xi := range x {
		d := R - xi.Meters()
		inner := R*R - d*d
		if inner >= 0 {
			kernel = append(kernel, math.Sqrt(inner))
		}
	}
	if len(kernel) == 0 {
		return nil, fmt.Errorf("%v with effective radius %v covers no grid point: %w", a.kind, a.EffectiveRadius(), occult.ErrNumericDegeneracy)
	}
	if len(kernel)%2 == 0 {
		kernel = append(kernel, 0)
	}
	return kernel, nil
}
