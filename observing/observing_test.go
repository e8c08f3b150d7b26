package observing

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/bob-anderson-ok/LunarOccultation/filters"
	"github.com/bob-anderson-ok/LunarOccultation/occult"
	"github.com/bob-anderson-ok/LunarOccultation/units"
)

func gtcConditions() Conditions {
	return Conditions{
		Exposure: 0.5 * units.Millisecond,
		Seeing:   0.8 * units.Arcsecond,
		Airmass:  1.3,
		Readout:  Slow,
	}
}

func TestSNR(t *testing.T) {
	site := LaPalma()

	Convey("Given La Palma and an 8th magnitude star in g", t, func() {
		g := filters.SDSS["g"]

		Convey("The slow readout SNR matches the reference calculation", func() {
			snr, err := site.SNR(8, g, gtcConditions())
			So(err, ShouldBeNil)
			So(snr, ShouldAlmostEqual, 205.3917, 1e-3)
		})

		Convey("Fast readout adds read noise", func() {
			c := gtcConditions()
			c.Readout = Fast
			snr, err := site.SNR(8, g, c)
			So(err, ShouldBeNil)
			So(snr, ShouldAlmostEqual, 203.3304, 1e-3)
		})

		Convey("H-alpha uses the r band with a fainter zero point", func() {
			snr, err := site.SNR(8, filters.HAlpha, gtcConditions())
			So(err, ShouldBeNil)
			So(snr, ShouldAlmostEqual, 29.4757, 1e-3)

			p, err := site.Photometry("HA")
			So(err, ShouldBeNil)
			So(p.ZeroPoint, ShouldAlmostEqual, 26.3-3.6)
		})

		Convey("Fainter stars have lower SNR", func() {
			bright, err := site.SNR(8, g, gtcConditions())
			So(err, ShouldBeNil)
			faint, err := site.SNR(12, g, gtcConditions())
			So(err, ShouldBeNil)
			So(faint, ShouldBeLessThan, bright)
		})

		Convey("Non-physical conditions are rejected", func() {
			c := gtcConditions()
			c.Exposure = 0
			_, err := site.SNR(8, g, c)
			So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)

			c = gtcConditions()
			c.Airmass = 0.5
			_, err = site.SNR(8, g, c)
			So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)

			c = gtcConditions()
			c.Readout = ReadoutSpeed(7)
			_, err = site.SNR(8, g, c)
			So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)
		})

		Convey("Filters the site cannot calibrate are rejected", func() {
			_, err := site.SNR(8, filters.Filter{Name: "y", Band: g.Band}, gtcConditions())
			So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)
			So(site.Supports(filters.Filter{Name: "y"}), ShouldBeFalse)
			So(site.Supports(filters.HAlpha), ShouldBeTrue)
		})
	})
}

func TestReadoutSpeed(t *testing.T) {
	Convey("Readout speeds parse and print", t, func() {
		s, err := ParseReadoutSpeed(" Fast ")
		So(err, ShouldBeNil)
		So(s, ShouldEqual, Fast)
		So(s.String(), ShouldEqual, "fast")
		So(Slow.String(), ShouldEqual, "slow")

		_, err = ParseReadoutSpeed("turbo")
		So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)
	})
}

func TestLunarBackground(t *testing.T) {
	Convey("Given a half Moon with the star 30 degrees from the cusp", t, func() {
		sky, err := LunarBackground(0.5, 1.3, 30*units.Degree, DefaultVExtinction)
		So(err, ShouldBeNil)

		Convey("The ugriz brightnesses follow the reference calculation", func() {
			So(sky["u"], ShouldAlmostEqual, 13.5062, 1e-3)
			So(sky["g"], ShouldAlmostEqual, 12.7852, 1e-3)
			So(sky["r"], ShouldAlmostEqual, 12.4852, 1e-3)
			So(sky["i"], ShouldAlmostEqual, 11.9952, 1e-3)
			So(sky["z"], ShouldAlmostEqual, 11.7102, 1e-3)
		})

		Convey("A full Moon is brighter", func() {
			full, err := LunarBackground(1, 1.3, 30*units.Degree, DefaultVExtinction)
			So(err, ShouldBeNil)
			So(full["g"], ShouldBeLessThan, sky["g"])
			So(full["g"], ShouldAlmostEqual, 9.6598, 1e-3)
		})

		Convey("It can replace a site's sky", func() {
			base := LaPalma()
			site := base.WithSky(sky)
			p, err := site.Photometry("g")
			So(err, ShouldBeNil)
			So(p.Sky, ShouldAlmostEqual, sky["g"])
			So(p.ZeroPoint, ShouldEqual, 26.88)

			// The base site is untouched.
			orig, err := base.Photometry("g")
			So(err, ShouldBeNil)
			So(orig.Sky, ShouldEqual, 12.9)
		})
	})

	Convey("Non-physical inputs are rejected", t, func() {
		_, err := LunarBackground(1.5, 1.3, 0, DefaultVExtinction)
		So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)

		_, err = LunarBackground(0.5, 0.9, 0, DefaultVExtinction)
		So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)

		_, err = LunarBackground(0.5, 1.3, 0, -1)
		So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)
	})
}
