package filters_test

import (
	"errors"
	"testing"

	"github.com/bob-anderson-ok/LunarOccultation/filters"
	"github.com/bob-anderson-ok/LunarOccultation/occult"
	"github.com/bob-anderson-ok/LunarOccultation/units"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBand(t *testing.T) {
	Convey("Given the SDSS g' band", t, func() {
		g, err := filters.Lookup("G")
		So(err, ShouldBeNil)
		So(g.Name, ShouldEqual, "g")

		Convey("Its interval is symmetric about the pivot", func() {
			lo, hi := g.Band.Interval()
			So(lo.Angstroms(), ShouldAlmostEqual, 4085, 1e-6)
			So(hi.Angstroms(), ShouldAlmostEqual, 5455, 1e-6)
		})

		Convey("Wavelength sampling includes both edges", func() {
			w, err := g.Band.Wavelengths(200)
			So(err, ShouldBeNil)
			So(w, ShouldHaveLength, 200)
			So(w[0].Angstroms(), ShouldAlmostEqual, 4085, 1e-6)
			So(w[199].Angstroms(), ShouldAlmostEqual, 5455, 1e-6)
			So(w[1], ShouldBeGreaterThan, w[0])
		})

		Convey("A single sample sits on the pivot", func() {
			w, err := g.Band.Wavelengths(1)
			So(err, ShouldBeNil)
			So(w, ShouldResemble, []units.Length{g.Band.Pivot})
		})
	})

	Convey("Given malformed bands", t, func() {
		_, err := filters.NewBand(0, 10*units.Angstrom)
		So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)

		_, err = filters.NewBand(5000*units.Angstrom, -1*units.Angstrom)
		So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)

		_, err = filters.NewBand(5000*units.Angstrom, 20000*units.Angstrom)
		So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)

		b, err := filters.NewBand(5000*units.Angstrom, 0)
		So(err, ShouldBeNil)
		_, err = b.Wavelengths(0)
		So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)
	})
}

func TestLookup(t *testing.T) {
	Convey("Lookup knows the SDSS set and H-alpha", t, func() {
		So(filters.Names(), ShouldResemble, []string{"u", "g", "r", "ha", "i", "z"})

		ha, err := filters.Lookup(" Ha ")
		So(err, ShouldBeNil)
		So(ha.Band.FWHM.Angstroms(), ShouldAlmostEqual, 50, 1e-9)

		_, err = filters.Lookup("V")
		So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)
	})
}
