package observing

import (
	"fmt"
	"math"

	"github.com/bob-anderson-ok/LunarOccultation/filters"
	"github.com/bob-anderson-ok/LunarOccultation/occult"
	"github.com/bob-anderson-ok/LunarOccultation/units"
)

// Conditions describe a single exposure.
type Conditions struct {
	Exposure units.Interval
	Seeing   units.Angle // FWHM of the seeing disk
	Airmass  float64
	Readout  ReadoutSpeed
}

// Validate rejects non-physical conditions.
func (c Conditions) Validate() error {
	if !(c.Exposure > 0) || math.IsInf(float64(c.Exposure), 0) {
		return fmt.Errorf("exposure %v must be positive: %w", c.Exposure, occult.ErrInvalidParameter)
	}
	if !(c.Seeing > 0) || math.IsInf(float64(c.Seeing), 0) {
		return fmt.Errorf("seeing %v must be positive: %w", c.Seeing, occult.ErrInvalidParameter)
	}
	if !(c.Airmass >= 1) || math.IsInf(c.Airmass, 0) {
		return fmt.Errorf("airmass %g must be at least 1: %w", c.Airmass, occult.ErrInvalidParameter)
	}
	return nil
}

// NoiseModel turns a stellar magnitude and observing conditions into a
// signal-to-noise ratio per exposure.
type NoiseModel interface {
	SNR(magnitude float64, f filters.Filter, c Conditions) (float64, error)
}

// SNR estimates the signal to noise of a star of the given magnitude in one
// exposure, counting photon noise from the star and from the sky within the
// seeing disk, plus read noise over the same pixels.
func (s Site) SNR(magnitude float64, f filters.Filter, c Conditions) (float64, error) {
	if math.IsNaN(magnitude) || math.IsInf(magnitude, 0) {
		return 0, fmt.Errorf("magnitude %g must be finite: %w", magnitude, occult.ErrInvalidParameter)
	}
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if err := s.Validate(); err != nil {
		return 0, err
	}
	p, err := s.Photometry(f.Name)
	if err != nil {
		return 0, err
	}
	rno, ok := s.ReadNoise[c.Readout]
	if !ok {
		return 0, fmt.Errorf("no read noise for %v readout at %s: %w", c.Readout, s.Name, occult.ErrInvalidParameter)
	}

	atmosphere := math.Pow(10, -p.Extinction*c.Airmass/2.5)
	expT := c.Exposure.Seconds()
	ps := s.PixelScale.Arcseconds()

	object := math.Pow(10, (p.ZeroPoint-magnitude)/2.5) * atmosphere * expT * s.Throughput
	pixels := math.Pi * math.Pow(c.Seeing.Arcseconds()/ps, 2)
	sky := math.Pow(10, (p.ZeroPoint-p.Sky)/2.5) * atmosphere * expT * ps * ps * s.Throughput

	snr := (object / s.Gain) / math.Sqrt(object*s.Gain+pixels*(sky*s.Gain+rno*rno))
	if !(snr > 0) || math.IsInf(snr, 0) {
		return 0, fmt.Errorf("signal to noise %g for magnitude %g: %w", snr, magnitude, occult.ErrNumericDegeneracy)
	}
	return snr, nil
}
