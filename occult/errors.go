// Package occult holds the error kinds shared by the lunar occultation packages.
//
// Every validation failure in units-bearing APIs wraps one of these sentinels so
// callers can branch with errors.Is regardless of which package rejected the input.
package occult

import "errors"

var (
	// ErrInvalidParameter reports a non-physical input: a non-positive distance,
	// radius or bandwidth, a zero velocity, or an empty grid. It is raised before
	// any numeric work starts and is never recovered.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNumericDegeneracy reports a computation that cannot produce a meaningful
	// number, such as an empty convolution kernel or a zero normalization level.
	ErrNumericDegeneracy = errors.New("numeric degeneracy")
)
