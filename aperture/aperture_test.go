package aperture_test

import (
	"errors"
	"math"
	"testing"

	"github.com/bob-anderson-ok/LunarOccultation/aperture"
	"github.com/bob-anderson-ok/LunarOccultation/occult"
	"github.com/bob-anderson-ok/LunarOccultation/units"
	. "github.com/smartystreets/goconvey/convey"
)

func grid(start, step float64, n int) []units.Length {
	x := make([]units.Length, n)
	for i := range x {
		x[i] = units.Length(start + step*float64(i))
	}
	return x
}

func TestKernel(t *testing.T) {
	Convey("Given a disk of radius 2 m on a 1 m grid", t, func() {
		disk, err := aperture.NewDisk(2 * units.Meter)
		So(err, ShouldBeNil)

		Convey("The kernel traces the chord length of the disk", func() {
			k, err := disk.Kernel(grid(-3, 1, 12))
			So(err, ShouldBeNil)
			So(k, ShouldHaveLength, 5)
			So(k[0], ShouldEqual, 0)
			So(k[1], ShouldAlmostEqual, math.Sqrt(3), 1e-12)
			So(k[2], ShouldAlmostEqual, 2, 1e-12)
			So(k[3], ShouldAlmostEqual, math.Sqrt(3), 1e-12)
			So(k[4], ShouldEqual, 0)
		})
	})

	Convey("Given a disk whose chord covers an even number of samples", t, func() {
		disk, err := aperture.NewDisk(1.5 * units.Meter)
		So(err, ShouldBeNil)

		Convey("A trailing zero keeps the kernel odd", func() {
			k, err := disk.Kernel(grid(0, 1, 10))
			So(err, ShouldBeNil)
			So(k, ShouldHaveLength, 5)
			So(k[1], ShouldAlmostEqual, math.Sqrt2, 1e-12)
			So(k[4], ShouldEqual, 0)
		})
	})

	Convey("Kernels have odd length for any radius and spacing", t, func() {
		for _, r := range []float64{0.05, 0.3, 1, 2.5, 5.1, 17} {
			for _, step := range []float64{0.0357, 0.1, 0.25} {
				d, err := aperture.NewDisk(units.Length(r))
				So(err, ShouldBeNil)
				k, err := d.Kernel(grid(-40, step, int(100/step)))
				So(err, ShouldBeNil)
				So(len(k)%2, ShouldEqual, 1)
				for _, v := range k {
					So(v, ShouldBeGreaterThanOrEqualTo, 0)
				}
			}
		}
	})

	Convey("Invalid inputs fail instead of returning an empty kernel", t, func() {
		disk, _ := aperture.NewDisk(units.Meter)
		_, err := disk.Kernel(nil)
		So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)

		_, err = aperture.Aperture{}.Kernel(grid(0, 1, 4))
		So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)

		_, err = aperture.NewDisk(0)
		So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)
		_, err = aperture.NewTelescope(-1)
		So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)
		_, err = aperture.NewUniformStar(units.SolarRadius, 0)
		So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)
	})

	Convey("A disk too small to touch any grid point is degenerate", t, func() {
		tiny, err := aperture.NewDisk(1e-6 * units.Meter)
		So(err, ShouldBeNil)
		_, err = tiny.Kernel(grid(0.5, 1, 4))
		So(errors.Is(err, occult.ErrNumericDegeneracy), ShouldBeTrue)
	})
}

func TestTelescope(t *testing.T) {
	Convey("A telescope's radius is half its diameter", t, func() {
		tel, err := aperture.NewTelescope(10.2 * units.Meter)
		So(err, ShouldBeNil)
		So(tel.Kind(), ShouldEqual, aperture.Telescope)
		So(tel.Radius().Meters(), ShouldAlmostEqual, 5.1, 1e-12)
		So(tel.Scale(), ShouldEqual, 1)
		So(tel.AngularSize(), ShouldEqual, 0)

		Convey("Projection leaves it where it is", func() {
			p, err := tel.Project(384400 * units.Kilometer)
			So(err, ShouldBeNil)
			So(p, ShouldResemble, tel)
		})

		Convey("It has no angular size to set", func() {
			_, err := tel.WithAngularSize(units.Milliarcsecond)
			So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)
		})
	})
}

func TestUniformStar(t *testing.T) {
	Convey("Given the Sun placed at 1 pc", t, func() {
		star, err := aperture.NewUniformStar(units.SolarRadius, units.Parsec)
		So(err, ShouldBeNil)

		Convey("Its angular size is radius over distance", func() {
			So(star.AngularSize().Radians(), ShouldAlmostEqual, units.SolarRadius.Meters()/units.Parsec.Meters(), 1e-20)
		})

		Convey("Setting an angular size reads back the same value", func() {
			for _, mas := range []float64{0.1, 0.7, 1.3, 25} {
				want := units.Angle(mas) * units.Milliarcsecond
				s, err := star.WithAngularSize(want)
				So(err, ShouldBeNil)
				So(s.AngularSize().Milliarcseconds(), ShouldAlmostEqual, mas, mas*1e-12)
				So(s.Radius(), ShouldEqual, star.Radius())
			}
		})

		Convey("Non-positive angular sizes are rejected", func() {
			_, err := star.WithAngularSize(0)
			So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)
		})

		Convey("Projecting onto the lunar limb rescales a copy", func() {
			moon := 384400 * units.Kilometer
			s, err := star.WithAngularSize(units.Milliarcsecond)
			So(err, ShouldBeNil)
			p, err := s.Project(moon)
			So(err, ShouldBeNil)

			want := moon.Meters() * math.Tan(units.Milliarcsecond.Radians())
			So(p.EffectiveRadius().Meters(), ShouldAlmostEqual, want, 1e-9)
			So(p.Scale(), ShouldAlmostEqual, want/units.SolarRadius.Meters(), 1e-18)
			So(s.Scale(), ShouldEqual, 1)

			_, err = s.Project(0)
			So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)
		})
	})
}
