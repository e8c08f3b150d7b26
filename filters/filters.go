// Package filters describes photometric pass bands as a pivot wavelength and a width.
package filters

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/bob-anderson-ok/LunarOccultation/occult"
	"github.com/bob-anderson-ok/LunarOccultation/units"
)

// Band is an immutable spectral band, sampled uniformly over [Pivot-FWHM/2, Pivot+FWHM/2].
type Band struct {
	Pivot units.Length
	FWHM  units.Length
}

// NewBand returns a validated Band.
func NewBand(pivot, fwhm units.Length) (Band, error) {
	b := Band{Pivot: pivot, FWHM: fwhm}
	if err := b.Validate(); err != nil {
		return Band{}, err
	}
	return b, nil
}

// Validate reports whether the band is physical: a positive pivot, a non-negative
// width, and a blue edge that stays above zero.
func (b Band) Validate() error {
	if !b.Pivot.Positive() {
		return fmt.Errorf("band pivot wavelength %v must be positive: %w", b.Pivot, occult.ErrInvalidParameter)
	}
	if b.FWHM < 0 || math.IsNaN(float64(b.FWHM)) || math.IsInf(float64(b.FWHM), 0) {
		return fmt.Errorf("band width %v must be finite and non-negative: %w", b.FWHM, occult.ErrInvalidParameter)
	}
	if lo, _ := b.Interval(); lo <= 0 {
		return fmt.Errorf("band blue edge %v must be positive: %w", lo, occult.ErrInvalidParameter)
	}
	return nil
}

// Interval returns the blue and red edges of the band.
func (b Band) Interval() (lo, hi units.Length) {
	return b.Pivot - b.FWHM/2, b.Pivot + b.FWHM/2
}

// Wavelengths returns n wavelengths evenly spanning the band, edges included.
// A single sample sits on the pivot.
func (b Band) Wavelengths(n int) ([]units.Length, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("need at least one wavelength sample, got %d: %w", n, occult.ErrInvalidParameter)
	}
	if n == 1 {
		return []units.Length{b.Pivot}, nil
	}
	lo, hi := b.Interval()
	return units.Lengths(floats.Span(make([]float64, n), lo.Meters(), hi.Meters())), nil
}

// Filter is a named Band.
type Filter struct {
	Name string
	Band Band
}

func (f Filter) String() string {
	return fmt.Sprintf("%s (%.0f/%.0f Å)", f.Name, f.Band.Pivot.Angstroms(), f.Band.FWHM.Angstroms())
}

func angstromFilter(name string, pivot, fwhm float64) Filter {
	return Filter{Name: name, Band: Band{Pivot: units.Length(pivot) * units.Angstrom, FWHM: units.Length(fwhm) * units.Angstrom}}
}

// SDSS holds the Sloan u' g' r' i' z' filters keyed by their one-letter name.
var SDSS = map[string]Filter{
	"u": angstromFilter("u", 3540, 570),
	"g": angstromFilter("g", 4770, 1370),
	"r": angstromFilter("r", 6230, 1370),
	"i": angstromFilter("i", 7630, 1530),
	"z": angstromFilter("z", 9130, 950),
}

// HAlpha is a narrow H-alpha filter.
var HAlpha = angstromFilter("ha", 6565, 50)

// Lookup finds a filter by name, case-insensitively. "ha" selects H-alpha.
func Lookup(name string) (Filter, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == HAlpha.Name {
		return HAlpha, nil
	}
	if f, ok := SDSS[key]; ok {
		return f, nil
	}
	return Filter{}, fmt.Errorf("unknown filter %q (known: %s): %w", name, strings.Join(Names(), ", "), occult.ErrInvalidParameter)
}

// Names lists every filter Lookup accepts, in wavelength order.
func Names() []string {
	all := make([]Filter, 0, len(SDSS)+1)
	for _, f := range SDSS {
		all = append(all, f)
	}
	all = append(all, HAlpha)
	sort.Slice(all, func(i, j int) bool {
		if all[i].Band.Pivot == all[j].Band.Pivot {
			return all[i].Name < all[j].Name
		}
		return all[i].Band.Pivot < all[j].Band.Pivot
	})
	names := make([]string, len(all))
	for i, f := range all {
		names[i] = f.Name
	}
	return names
}
