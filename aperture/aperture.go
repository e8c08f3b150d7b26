// Package aperture models uniform circular disks (a stellar photosphere or a telescope
// entrance pupil) and turns them into 1-D convolution kernels along the shadow axis.
//
// An Aperture is an immutable value. Projecting a star onto the lunar limb returns a
// new Aperture carrying the projection scale, so kernel evaluation never depends on
// the order of earlier mutations.
package aperture

import (
	"fmt"
	"math"

	"github.com/bob-anderson-ok/LunarOccultation/occult"
	"github.com/bob-anderson-ok/LunarOccultation/units"
)

// Kind tags the Aperture variant.
type Kind int

const (
	Disk Kind = iota
	Telescope
	UniformStar
)

func (k Kind) String() string {
	switch k {
	case Disk:
		return "disk"
	case Telescope:
		return "telescope"
	case UniformStar:
		return "uniform star"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Aperture is a uniform circular disk of a given radius. Scale multiplies the radius
// when the disk is projected onto the ground; it stays 1 for Disk and Telescope.
type Aperture struct {
	kind     Kind
	radius   units.Length
	scale    float64
	distance units.Length // observer distance, UniformStar only
}

// NewDisk returns a plain disk aperture.
func NewDisk(radius units.Length) (Aperture, error) {
	if !radius.Positive() {
		return Aperture{}, fmt.Errorf("disk radius %v must be positive: %w", radius, occult.ErrInvalidParameter)
	}
	return Aperture{kind: Disk, radius: radius, scale: 1}, nil
}

// NewTelescope returns the entrance pupil of a telescope with the given diameter.
func NewTelescope(diameter units.Length) (Aperture, error) {
	if !diameter.Positive() {
		return Aperture{}, fmt.Errorf("telescope diameter %v must be positive: %w", diameter, occult.ErrInvalidParameter)
	}
	return Aperture{kind: Telescope, radius: diameter / 2, scale: 1}, nil
}

// NewUniformStar returns a uniform stellar disk of the given radius seen from distance.
func NewUniformStar(radius, distance units.Length) (Aperture, error) {
	if !radius.Positive() {
		return Aperture{}, fmt.Errorf("star radius %v must be positive: %w", radius, occult.ErrInvalidParameter)
	}
	if !distance.Positive() {
		return Aperture{}, fmt.Errorf("star distance %v must be positive: %w", distance, occult.ErrInvalidParameter)
	}
	return Aperture{kind: UniformStar, radius: radius, scale: 1, distance: distance}, nil
}

func (a Aperture) Kind() Kind             { return a.kind }
func (a Aperture) Radius() units.Length   { return a.radius }
func (a Aperture) Scale() float64         { return a.scale }
func (a Aperture) Distance() units.Length { return a.distance }

// EffectiveRadius is the radius after ground projection.
func (a Aperture) EffectiveRadius() units.Length {
	return a.radius.Scale(a.scale)
}

// AngularSize is radius/distance in the small-angle limit. It is zero for anything
// but a UniformStar.
func (a Aperture) AngularSize() units.Angle {
	if a.kind != UniformStar || a.distance == 0 {
		return 0
	}
	return units.Angle(a.radius / a.distance)
}

// WithAngularSize returns a copy of the star moved to the distance at which it
// subtends size, keeping its radius. The projection scale is reset.
func (a Aperture) WithAngularSize(size units.Angle) (Aperture, error) {
	if a.kind != UniformStar {
		return Aperture{}, fmt.Errorf("angular size is only defined for a uniform star, not a %v: %w", a.kind, occult.ErrInvalidParameter)
	}
	if size <= 0 || math.IsInf(float64(size), 0) || math.IsNaN(float64(size)) {
		return Aperture{}, fmt.Errorf("angular size %v must be positive: %w", size, occult.ErrInvalidParameter)
	}
	a.distance = a.radius.Scale(1 / size.Radians())
	a.scale = 1
	return a, nil
}

// Project returns the aperture as it appears on the plane of the lunar limb, moonDistance
// away. A star is rescaled so its effective radius equals moonDistance*tan(angular size);
// a Disk or Telescope sits at the observer and is returned unchanged.
func (a Aperture) Project(moonDistance units.Length) (Aperture, error) {
	if !moonDistance.Positive() {
		return Aperture{}, fmt.Errorf("moon distance %v must be positive: %w", moonDistance, occult.ErrInvalidParameter)
	}
	if a.kind != UniformStar {
		return a, nil
	}
	projected := moonDistance.Scale(a.AngularSize().Tan())
	a.scale = float64(projected / a.radius)
	return a, nil
}

func (a Aperture) String() string {
	if a.kind == UniformStar {
		return fmt.Sprintf("%v r=%v d=%v (%.4g mas) scale=%.4g", a.kind, a.radius, a.distance, a.AngularSize().Milliarcseconds(), a.scale)
	}
	return fmt.Sprintf("%v r=%v", a.kind, a.radius)
}
