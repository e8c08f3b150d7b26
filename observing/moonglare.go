package observing

import (
	"fmt"
	"math"

	"github.com/bob-anderson-ok/LunarOccultation/occult"
	"github.com/bob-anderson-ok/LunarOccultation/units"
)

// DefaultVExtinction is the V-band extinction used by LunarBackground.
const DefaultVExtinction = 0.172

const (
	sunIlluminance  = 1.174e4 // footcandles
	moonDiameterDeg = 0.26
)

// LunarBackground estimates the sky brightness next to the lunar limb, in
// mag/arcsec², for the u, g, r, i and z bands. It adds earthshine on the dark
// limb to moonlight scattered by the atmosphere (Schaefer, Bulder & Bourgeois
// 1992), then converts the V-band result to SDSS bands with fixed lunar colors.
//
// sunlitFraction is the illuminated fraction of the disk (1 at full Moon) and
// cuspAngle locates the star on the limb.
func LunarBackground(sunlitFraction, airmass float64, cuspAngle units.Angle, extinction float64) (map[string]float64, error) {
	if !(sunlitFraction >= 0 && sunlitFraction <= 1) {
		return nil, fmt.Errorf("sunlit fraction %g must lie in [0, 1]: %w", sunlitFraction, occult.ErrInvalidParameter)
	}
	if !(airmass >= 1) || math.IsInf(airmass, 0) {
		return nil, fmt.Errorf("airmass %g must be at least 1: %w", airmass, occult.ErrInvalidParameter)
	}
	if math.IsNaN(float64(cuspAngle)) || math.IsInf(float64(cuspAngle), 0) {
		return nil, fmt.Errorf("cusp angle %v must be finite: %w", cuspAngle, occult.ErrInvalidParameter)
	}
	if !(extinction >= 0) {
		return nil, fmt.Errorf("extinction %g must not be negative: %w", extinction, occult.ErrInvalidParameter)
	}

	// Phase angle from the illuminated fraction.
	alpha := units.Angle(math.Acos(2*sunlitFraction-1)).Degrees()
	moon := moonIlluminance(alpha)
	earth := 78 * moonIlluminance(180-math.Abs(alpha))

	// Surface brightnesses in nanolamberts.
	transmitted := math.Pow(10, -0.4*extinction*airmass)
	earthshine := 1.65e9 * transmitted * earth / sunIlluminance

	theta := moonDiameterDeg * (1 - 0.4*math.Exp(-cuspAngle.Degrees()/30))
	theta *= math.Sqrt(math.Pow(cuspAngle.Cos(), 2) + math.Pow(1-sunlitFraction+cuspAngle.Sin(), 2))
	if !(theta > 0) {
		return nil, fmt.Errorf("star at cusp angle %v sits on the lunar center: %w", cuspAngle, occult.ErrNumericDegeneracy)
	}
	scattered := 6.25e7 * moon / (theta * theta) * (transmitted - math.Pow(10, -0.8*extinction*airmass))

	total := scattered + earthshine
	if !(total > 0) {
		return nil, fmt.Errorf("lunar background %g nL: %w", total, occult.ErrNumericDegeneracy)
	}
	V := (20.7233 - math.Log(total/34.08)) / 0.92104
	return johnsonToSDSS(V+0.2, V+0.5, V, V-0.3, V-1.0), nil
}

// moonIlluminance is the illuminance of the whole Moon at the given phase
// angle in degrees, in footcandles.
func moonIlluminance(alpha float64) float64 {
	m := -12.73 + 0.026*math.Abs(alpha) + 4.0e-9*math.Pow(alpha, 4)
	return math.Pow(10, -0.4*(m+16.57))
}

// johnsonToSDSS converts UBVRI to ugriz with the Smith et al. (2002) relations.
func johnsonToSDSS(U, B, V, R, I float64) map[string]float64 {
	g := V + 0.54*(B-V) - 0.07
	r := V - 0.44*(B-V) + 0.12
	return map[string]float64{
		"u": 1.33*(U-B) + 1.12 + g,
		"g": g,
		"r": r,
		"i": r - 1.00*(R-I) + 0.21,
		"z": r - 1.65*(R-I) + 0.38,
	}
}
