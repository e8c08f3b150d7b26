// Package lightcurve provides the occultation light curve type, rebinning of
// high resolution curves onto a detector's exposure grid, and diagnostic plots.
package lightcurve

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/bob-anderson-ok/LunarOccultation/occult"
	"github.com/bob-anderson-ok/LunarOccultation/units"
)

// ErrLengthMismatch is returned when paired sample slices differ in length.
var ErrLengthMismatch = fmt.Errorf("sample lengths differ: %w", occult.ErrInvalidParameter)

// Curve is an occultation light curve: one normalized flux sample per time sample.
// A Curve handed back by the diffraction engine is never modified afterwards.
type Curve struct {
	Time []units.Interval // Time relative to the geometric shadow edge
	Flux []float64        // Flux normalized to the unocculted level
}

// Len returns the number of samples.
func (c Curve) Len() int { return len(c.Flux) }

// Validate checks that time and flux have the same length.
func (c Curve) Validate() error {
	if len(c.Time) != len(c.Flux) {
		return fmt.Errorf("curve has %d times and %d fluxes: %w", len(c.Time), len(c.Flux), ErrLengthMismatch)
	}
	return nil
}

// Clone returns a deep copy that can be modified freely.
func (c Curve) Clone() Curve {
	out := Curve{
		Time: make([]units.Interval, len(c.Time)),
		Flux: make([]float64, len(c.Flux)),
	}
	copy(out.Time, c.Time)
	copy(out.Flux, c.Flux)
	return out
}

// TimeRange returns the earliest and latest sample times.
func (c Curve) TimeRange() (lo, hi units.Interval) {
	if len(c.Time) == 0 {
		return 0, 0
	}
	lo, hi = c.Time[0], c.Time[0]
	for _, t := range c.Time[1:] {
		lo = min(lo, t)
		hi = max(hi, t)
	}
	return lo, hi
}

// Rebin bins the curve onto edges expressed in milliseconds.
func (c Curve) Rebin(edges []float64) (Binned, error) {
	if err := c.Validate(); err != nil {
		return Binned{}, err
	}
	return Rebin(edges, units.Milliseconds(c.Time), c.Flux)
}

// BinEdges returns the exposure boundaries, in milliseconds, used to bin a curve
// spanning [lo, hi]: every multiple of exposure after lo, with the first and the
// last boundary left out so that partially covered exposures are not formed.
func BinEdges(lo, hi, exposure units.Interval) ([]float64, error) {
	step := exposure.Milliseconds()
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("exposure %v must be positive: %w", exposure, occult.ErrInvalidParameter)
	}
	start, stop := lo.Milliseconds(), hi.Milliseconds()
	if !(stop > start) {
		return nil, fmt.Errorf("time range [%v, %v] is empty: %w", lo, hi, occult.ErrInvalidParameter)
	}
	// Tolerate rounding in the span so an exact multiple does not gain a bin.
	n := int(math.Ceil((stop-start)/step - 1e-9))
	if n < 3 {
		return nil, fmt.Errorf("exposure %v leaves no interior bins in [%v, %v]: %w", exposure, lo, hi, occult.ErrNumericDegeneracy)
	}
	edges := make([]float64, 0, n-2)
	for i := 1; i < n-1; i++ {
		edges = append(edges, start+float64(i)*step)
	}
	return edges, nil
}

// Binned holds the per-bin means produced by Rebin. Bins that received no
// samples carry NaN in X and Y and a zero count.
type Binned struct {
	X      []float64
	Y      []float64
	Counts []int
}

// Len returns the number of bins, populated or not.
func (b Binned) Len() int { return len(b.Y) }

// Empty returns the number of bins that received no samples.
func (b Binned) Empty() int {
	n := 0
	for _, c := range b.Counts {
		if c == 0 {
			n++
		}
	}
	return n
}

// Populated returns a copy holding only the bins that received samples.
func (b Binned) Populated() Binned {
	out := Binned{
		X:      make([]float64, 0, len(b.X)),
		Y:      make([]float64, 0, len(b.Y)),
		Counts: make([]int, 0, len(b.Counts)),
	}
	for i, c := range b.Counts {
		if c == 0 {
			continue
		}
		out.X = append(out.X, b.X[i])
		out.Y = append(out.Y, b.Y[i])
		out.Counts = append(out.Counts, c)
	}
	return out
}

// Rebin averages the (x, y) samples that fall in each bin. Bin i collects the
// samples with edges[i-1] <= x < edges[i]; bin 0 collects everything below
// edges[0]. Samples at or beyond the last edge are dropped, so the result has
// one bin per edge. Edges must increase strictly.
func Rebin(edges, x, y []float64) (Binned, error) {
	if len(x) != len(y) {
		return Binned{}, fmt.Errorf("rebin got %d x and %d y samples: %w", len(x), len(y), ErrLengthMismatch)
	}
	if len(edges) == 0 {
		return Binned{}, fmt.Errorf("rebin needs at least one edge: %w", occult.ErrInvalidParameter)
	}
	for i := 1; i < len(edges); i++ {
		if !(edges[i] > edges[i-1]) {
			return Binned{}, fmt.Errorf("bin edges must increase strictly at %d: %w", i, occult.ErrInvalidParameter)
		}
	}

	sumX := make([]float64, len(edges))
	sumY := make([]float64, len(edges))
	counts := make([]int, len(edges))
	for i, xi := range x {
		bin := binIndex(edges, xi)
		if bin == len(edges) {
			continue
		}
		sumX[bin] += xi
		sumY[bin] += y[i]
		counts[bin]++
	}

	out := Binned{X: sumX, Y: sumY, Counts: counts}
	for i, c := range counts {
		if c == 0 {
			out.X[i], out.Y[i] = math.NaN(), math.NaN()
			continue
		}
		out.X[i] /= float64(c)
		out.Y[i] /= float64(c)
	}
	return out, nil
}

// binIndex returns the number of edges that are <= v.
func binIndex(edges []float64, v float64) int {
	lo, hi := 0, len(edges)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if edges[mid] <= v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// ChiSquare returns sum((data-model)²/sigma²) over the bins. All three slices must
// have the same length and every sigma must be positive.
func ChiSquare(data, model, sigma []float64) (float64, error) {
	if len(data) != len(model) || len(data) != len(sigma) {
		return 0, fmt.Errorf("chi-square over %d data, %d model, %d sigma: %w", len(data), len(model), len(sigma), ErrLengthMismatch)
	}
	if len(sigma) > 0 && !(floats.Min(sigma) > 0) {
		return 0, fmt.Errorf("chi-square needs positive sigma in every bin: %w", occult.ErrNumericDegeneracy)
	}
	var chisq float64
	for i := range data {
		r := (data[i] - model[i]) / sigma[i]
		chisq += r * r
	}
	return chisq, nil
}
