// Package diffraction synthesizes lunar occultation light curves: the Fresnel
// knife-edge pattern integrated over a filter band, smoothed by the projected
// stellar disk and the telescope pupil, and normalized to the unocculted flux.
package diffraction

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/bob-anderson-ok/LunarOccultation/aperture"
	"github.com/bob-anderson-ok/LunarOccultation/filters"
	"github.com/bob-anderson-ok/LunarOccultation/lightcurve"
	"github.com/bob-anderson-ok/LunarOccultation/occult"
	"github.com/bob-anderson-ok/LunarOccultation/units"
)

const (
	// WindowStart and WindowEnd bound the shadow-plane window around the limb.
	// Trailing fringes extend further than leading ones.
	WindowStart = -40 * units.Meter
	WindowEnd   = 60 * units.Meter

	DefaultElements   = 2400
	WavelengthSamples = 200

	// tailSamples is how many samples at the unobstructed end set the unit flux.
	tailSamples = 100
)

// Option configures a single fringe-pattern synthesis.
type Option func(*settings)

type settings struct {
	source    *aperture.Aperture
	telescope *aperture.Aperture
	elements  int
}

// WithSource smooths the pattern with a finite source. The source is projected
// onto the limb plane before its kernel is evaluated.
func WithSource(a aperture.Aperture) Option {
	return func(s *settings) { s.source = &a }
}

// WithTelescope smooths the pattern with the telescope pupil.
func WithTelescope(a aperture.Aperture) Option {
	return func(s *settings) { s.telescope = &a }
}

// WithElements sets the number of grid samples used by MakeFringePattern.
// An Engine's grid is fixed when it is built, so Pattern ignores it.
func WithElements(n int) Option {
	return func(s *settings) { s.elements = n }
}

// Engine holds the parts of a synthesis that do not depend on the apertures:
// the shadow grid, the time axis and the band-integrated point-source profile.
// An Engine is immutable and safe for concurrent use.
type Engine struct {
	moonDistance units.Length
	velocity     units.Speed
	band         filters.Band

	x         []units.Length
	time      []units.Interval
	broadband []float64
}

// NewEngine validates the geometry and computes the band-integrated knife-edge
// profile on a grid of elements samples.
func NewEngine(moonDistance units.Length, velocity units.Speed, band filters.Band, elements int) (*Engine, error) {
	if !moonDistance.Positive() {
		return nil, fmt.Errorf("moon distance %v must be positive: %w", moonDistance, occult.ErrInvalidParameter)
	}
	v := velocity.MetersPerSecond()
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("shadow velocity %v must be finite and non-zero: %w", velocity, occult.ErrInvalidParameter)
	}
	if err := band.Validate(); err != nil {
		return nil, err
	}
	if elements < 2 {
		return nil, fmt.Errorf("grid needs at least 2 elements, got %d: %w", elements, occult.ErrInvalidParameter)
	}

	e := &Engine{
		moonDistance: moonDistance,
		velocity:     velocity,
		band:         band,
	}

	grid := floats.Span(make([]float64, elements), WindowStart.Meters(), WindowEnd.Meters())
	e.x = units.Lengths(grid)
	e.time = make([]units.Interval, elements)
	for i, xi := range e.x {
		e.time[i] = (-xi).Over(velocity)
	}

	wavelengths, err := band.Wavelengths(WavelengthSamples)
	if err != nil {
		return nil, err
	}
	e.broadband = make([]float64, elements)
	for _, lambda := range wavelengths {
		k := math.Sqrt(math.Pi / (moonDistance.Meters() * lambda.Meters()))
		for i, xi := range grid {
			e.broadband[i] += knifeEdgeAmplitude(xi * k)
		}
	}
	return e, nil
}

// Elements returns the grid size.
func (e *Engine) Elements() int { return len(e.x) }

// Grid returns a copy of the shadow-plane positions.
func (e *Engine) Grid() []units.Length {
	out := make([]units.Length, len(e.x))
	copy(out, e.x)
	return out
}

// Pattern synthesizes the normalized light curve seen through the configured
// apertures. The source is smoothed in first and the telescope second; both
// convolutions extend the edge samples rather than padding with zeros.
func (e *Engine) Pattern(opts ...Option) (lightcurve.Curve, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	flux := make([]float64, len(e.broadband))
	copy(flux, e.broadband)

	if s.source != nil {
		src, err := s.source.Project(e.moonDistance)
		if err != nil {
			return lightcurve.Curve{}, err
		}
		if flux, err = e.smooth(flux, src); err != nil {
			return lightcurve.Curve{}, fmt.Errorf("source: %w", err)
		}
	}
	if s.telescope != nil {
		var err error
		if flux, err = e.smooth(flux, *s.telescope); err != nil {
			return lightcurve.Curve{}, fmt.Errorf("telescope: %w", err)
		}
	}

	// FFT round-off can leave tiny negative values deep in the shadow.
	for i, f := range flux {
		if f < 0 {
			flux[i] = 0
		}
	}

	tail := flux[len(flux)-min(tailSamples, len(flux)):]
	unocculted := stat.Mean(tail, nil)
	if !(unocculted > 0) || math.IsInf(unocculted, 0) {
		return lightcurve.Curve{}, fmt.Errorf("unocculted flux %g cannot normalize the pattern: %w", unocculted, occult.ErrNumericDegeneracy)
	}
	floats.Scale(1/unocculted, flux)

	time := make([]units.Interval, len(e.time))
	copy(time, e.time)
	return lightcurve.Curve{Time: time, Flux: flux}, nil
}

func (e *Engine) smooth(flux []float64, a aperture.Aperture) ([]float64, error) {
	kernel, err := a.Kernel(e.x)
	if err != nil {
		return nil, err
	}
	return Convolve1D(flux, kernel, ConvSame, PadReplicate, true)
}

// MakeFringePattern builds a one-off Engine and returns its pattern. Callers
// synthesizing many patterns for the same geometry should keep an Engine.
func MakeFringePattern(moonDistance units.Length, velocity units.Speed, band filters.Band, opts ...Option) (lightcurve.Curve, error) {
	s := settings{elements: DefaultElements}
	for _, opt := range opts {
		opt(&s)
	}
	e, err := NewEngine(moonDistance, velocity, band, s.elements)
	if err != nil {
		return lightcurve.Curve{}, err
	}
	return e.Pattern(opts...)
}
