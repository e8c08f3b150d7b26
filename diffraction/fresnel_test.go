package diffraction

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFresnelIntegrals(t *testing.T) {
	Convey("Given the normalized Fresnel integrals", t, func() {
		Convey("They vanish at zero", func() {
			s, c := fresnelCephesScalar(0)
			So(s, ShouldEqual, 0)
			So(c, ShouldEqual, 0)
		})

		Convey("They match tabulated values at 1", func() {
			s, c := fresnelCephesScalar(1)
			So(s, ShouldAlmostEqual, 0.4382591473903548, 1e-14)
			So(c, ShouldAlmostEqual, 0.7798934003768228, 1e-14)
		})

		Convey("They match tabulated values in the asymptotic branch", func() {
			s, c := fresnelCephesScalar(2)
			So(s, ShouldAlmostEqual, 0.3434156783636982, 1e-12)
			So(c, ShouldAlmostEqual, 0.4882534060753408, 1e-12)
		})

		Convey("They are odd functions", func() {
			for _, x := range []float64{0.3, 1.2, 4.5, 20} {
				s, c := fresnelCephesScalar(x)
				sn, cn := fresnelCephesScalar(-x)
				So(sn, ShouldEqual, -s)
				So(cn, ShouldEqual, -c)
			}
		})

		Convey("They tend to one half for large arguments", func() {
			s, c := fresnelCephesScalar(1e5)
			So(s, ShouldEqual, 0.5)
			So(c, ShouldEqual, 0.5)

			s, c = fresnelCephesScalar(500)
			So(s, ShouldAlmostEqual, 0.5, 1e-3)
			So(c, ShouldAlmostEqual, 0.5, 1e-3)
		})
	})
}

func TestKnifeEdgeAmplitude(t *testing.T) {
	Convey("Given the knife-edge amplitude", t, func() {
		Convey("It is half the unobstructed amplitude at the geometric edge", func() {
			So(knifeEdgeAmplitude(0), ShouldAlmostEqual, math.Sqrt(math.Pi)/2, 1e-15)
		})

		Convey("It approaches sqrt(pi) far on the unobstructed side", func() {
			So(knifeEdgeAmplitude(1e6), ShouldAlmostEqual, math.Sqrt(math.Pi), 1e-9)
		})

		Convey("It approaches zero deep in the shadow", func() {
			So(knifeEdgeAmplitude(-1e3), ShouldBeLessThan, 1e-3)
			So(knifeEdgeAmplitude(-1e3), ShouldBeGreaterThanOrEqualTo, 0)
		})

		Convey("It falls monotonically into the shadow", func() {
			prev := knifeEdgeAmplitude(0)
			for u := -0.1; u > -10; u -= 0.1 {
				a := knifeEdgeAmplitude(u)
				So(a, ShouldBeLessThan, prev)
				prev = a
			}
		})

		Convey("It overshoots in the first bright fringe", func() {
			peak := 0.0
			for u := 0.0; u < 3; u += 0.01 {
				peak = max(peak, knifeEdgeAmplitude(u))
			}
			So(peak/math.Sqrt(math.Pi), ShouldBeGreaterThan, 1.1)
			So(peak/math.Sqrt(math.Pi), ShouldBeLessThan, 1.2)
		})
	})
}
