// Package units provides typed physical quantities used throughout the occultation model.
//
// Each quantity is a float64 in SI base units, in the same spirit as time.Duration:
// multiply a number by one of the unit constants to build a value, and call the
// matching accessor to read it back in the unit you want.
//
//	d := 384400 * units.Kilometer
//	v := 1 * units.KilometerPerSecond
//	t := d.Over(v) // units.Interval
package units

import (
	"fmt"
	"math"
)

// Length is a distance in meters.
type Length float64

const (
	Meter       Length = 1
	Kilometer   Length = 1e3
	Nanometer   Length = 1e-9
	Angstrom    Length = 1e-10
	SolarRadius Length = 6.957e8
	AU          Length = 1.495978707e11
	Parsec      Length = 3.0856775814913673e16
)

func (l Length) Meters() float64        { return float64(l) }
func (l Length) Kilometers() float64    { return float64(l / Kilometer) }
func (l Length) Angstroms() float64     { return float64(l / Angstrom) }
func (l Length) Nanometers() float64    { return float64(l / Nanometer) }
func (l Length) SolarRadii() float64    { return float64(l / SolarRadius) }
func (l Length) Parsecs() float64       { return float64(l / Parsec) }
func (l Length) String() string         { return fmt.Sprintf("%g m", float64(l)) }
func (l Length) Positive() bool         { return l > 0 && !math.IsInf(float64(l), 1) }
func (l Length) Scale(f float64) Length { return Length(float64(l) * f) }

// Over returns the time needed to cover l at speed s.
func (l Length) Over(s Speed) Interval {
	return Interval(float64(l) / float64(s))
}

// Speed is a velocity in meters per second. Its sign carries direction.
type Speed float64

const (
	MeterPerSecond     Speed = 1
	KilometerPerSecond Speed = 1e3
)

func (s Speed) MetersPerSecond() float64     { return float64(s) }
func (s Speed) KilometersPerSecond() float64 { return float64(s / KilometerPerSecond) }
func (s Speed) String() string               { return fmt.Sprintf("%g m/s", float64(s)) }

// Interval is a span of time in seconds. It is used instead of time.Duration
// because light-curve samples are spaced by tens of microseconds and must not be
// rounded to whole nanoseconds.
type Interval float64

const (
	Second      Interval = 1
	Millisecond Interval = 1e-3
	Microsecond Interval = 1e-6
)

func (t Interval) Seconds() float64      { return float64(t) }
func (t Interval) Milliseconds() float64 { return float64(t / Millisecond) }
func (t Interval) String() string        { return fmt.Sprintf("%g s", float64(t)) }

// Angle is a plane angle in radians.
type Angle float64

const (
	Radian         Angle = 1
	Degree         Angle = math.Pi / 180
	Arcsecond      Angle = Degree / 3600
	Milliarcsecond Angle = Arcsecond / 1000
)

func (a Angle) Radians() float64         { return float64(a) }
func (a Angle) Degrees() float64         { return float64(a / Degree) }
func (a Angle) Arcseconds() float64      { return float64(a / Arcsecond) }
func (a Angle) Milliarcseconds() float64 { return float64(a / Milliarcsecond) }
func (a Angle) Tan() float64             { return math.Tan(float64(a)) }
func (a Angle) Cos() float64             { return math.Cos(float64(a)) }
func (a Angle) Sin() float64             { return math.Sin(float64(a)) }
func (a Angle) String() string           { return fmt.Sprintf("%g mas", a.Milliarcseconds()) }

// Lengths converts a slice of raw meter values to Lengths.
func Lengths(meters []float64) []Length {
	out := make([]Length, len(meters))
	for i, m := range meters {
		out[i] = Length(m)
	}
	return out
}

// Seconds converts a slice of Intervals to raw seconds.
func Seconds(ts []Interval) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = float64(t)
	}
	return out
}

// Milliseconds converts a slice of Intervals to raw milliseconds.
func Milliseconds(ts []Interval) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = t.Milliseconds()
	}
	return out
}
