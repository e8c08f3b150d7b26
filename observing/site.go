// Package observing estimates the photometric signal to noise of an occultation
// observation and the sky brightness contributed by the Moon.
package observing

import (
	"fmt"
	"maps"
	"strings"

	"github.com/bob-anderson-ok/LunarOccultation/filters"
	"github.com/bob-anderson-ok/LunarOccultation/occult"
	"github.com/bob-anderson-ok/LunarOccultation/units"
)

// ReadoutSpeed selects the detector readout mode, which sets the read noise.
type ReadoutSpeed int

const (
	Slow ReadoutSpeed = iota
	Fast
)

func (s ReadoutSpeed) String() string {
	switch s {
	case Slow:
		return "slow"
	case Fast:
		return "fast"
	}
	return fmt.Sprintf("ReadoutSpeed(%d)", int(s))
}

// ParseReadoutSpeed accepts "slow" or "fast" in any case.
func ParseReadoutSpeed(s string) (ReadoutSpeed, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "slow":
		return Slow, nil
	case "fast":
		return Fast, nil
	}
	return 0, fmt.Errorf("unknown readout speed %q: %w", s, occult.ErrInvalidParameter)
}

// Photometry is a site's calibration in one band.
type Photometry struct {
	Sky        float64 // sky brightness, mag/arcsec²
	Extinction float64 // mag per airmass
	ZeroPoint  float64 // magnitude giving 1 count/s
}

// Alias lets a narrow-band filter borrow another band's calibration.
type Alias struct {
	Band            string
	ZeroPointOffset float64
}

// Site bundles the calibration of a telescope and camera.
type Site struct {
	Name       string
	Bands      map[string]Photometry
	Aliases    map[string]Alias
	Gain       float64                  // e-/ADU
	ReadNoise  map[ReadoutSpeed]float64 // e-/pixel
	Throughput float64                  // count scale relative to the calibrating telescope
	PixelScale units.Angle
}

// LaPalma returns the calibration of ULTRACAM-class cameras at La Palma: zero
// points measured on the WHT scaled to the GTC aperture with an extra reflection,
// and typical sky brightness with the Moon up.
func LaPalma() Site {
	return Site{
		Name: "La Palma",
		Bands: map[string]Photometry{
			"u": {Sky: 13.6, Extinction: 0.50, ZeroPoint: 25.05},
			"g": {Sky: 12.9, Extinction: 0.19, ZeroPoint: 26.88},
			"r": {Sky: 12.6, Extinction: 0.09, ZeroPoint: 26.3},
			"i": {Sky: 12.11, Extinction: 0.05, ZeroPoint: 26.33},
			"z": {Sky: 11.83, Extinction: 0.04, ZeroPoint: 25.28},
		},
		// r has 27.4 times the bandwidth of H-alpha, so a star must be 3.6 mag
		// brighter for the same counts.
		Aliases: map[string]Alias{
			"ha": {Band: "r", ZeroPointOffset: -3.6},
		},
		Gain: 1.2,
		ReadNoise: map[ReadoutSpeed]float64{
			Slow: 2,
			Fast: 5,
		},
		Throughput: (730000.0 / 124700.0) * 0.9,
		PixelScale: 0.15 * units.Arcsecond,
	}
}

// Photometry returns the calibration used for the named filter.
func (s Site) Photometry(filter string) (Photometry, error) {
	name := strings.ToLower(strings.TrimSpace(filter))
	if p, ok := s.Bands[name]; ok {
		return p, nil
	}
	if a, ok := s.Aliases[name]; ok {
		p, ok := s.Bands[a.Band]
		if !ok {
			return Photometry{}, fmt.Errorf("filter %q borrows unknown band %q at %s: %w", filter, a.Band, s.Name, occult.ErrInvalidParameter)
		}
		p.ZeroPoint += a.ZeroPointOffset
		return p, nil
	}
	return Photometry{}, fmt.Errorf("no calibration for filter %q at %s: %w", filter, s.Name, occult.ErrInvalidParameter)
}

// WithSky returns a copy of the site whose sky brightness is replaced in every
// band present in sky. Other bands keep their values.
func (s Site) WithSky(sky map[string]float64) Site {
	bands := maps.Clone(s.Bands)
	for name, mag := range sky {
		if p, ok := bands[name]; ok {
			p.Sky = mag
			bands[name] = p
		}
	}
	s.Bands = bands
	return s
}

// Validate reports whether the camera constants are physical.
func (s Site) Validate() error {
	if !(s.Gain > 0) {
		return fmt.Errorf("gain %g must be positive: %w", s.Gain, occult.ErrInvalidParameter)
	}
	if !(s.Throughput > 0) {
		return fmt.Errorf("throughput scale %g must be positive: %w", s.Throughput, occult.ErrInvalidParameter)
	}
	if !(s.PixelScale > 0) {
		return fmt.Errorf("pixel scale %v must be positive: %w", s.PixelScale, occult.ErrInvalidParameter)
	}
	for speed, rn := range s.ReadNoise {
		if rn < 0 {
			return fmt.Errorf("%v read noise %g must not be negative: %w", speed, rn, occult.ErrInvalidParameter)
		}
	}
	return nil
}

// Supports reports whether the site can calibrate the filter.
func (s Site) Supports(f filters.Filter) bool {
	_, err := s.Photometry(f.Name)
	return err == nil
}
