package lightcurve

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/floats"

	"github.com/bob-anderson-ok/LunarOccultation/occult"
	"github.com/bob-anderson-ok/LunarOccultation/units"
)

func TestRebin(t *testing.T) {
	Convey("Given samples and bin edges", t, func() {
		edges := []float64{0, 1, 2}

		Convey("Each bin holds the mean of the samples falling in it", func() {
			b, err := Rebin(edges, []float64{-0.5, 0.2, 0.8, 1.0, 1.5, 2.0, 3.0}, []float64{9, 1, 3, 4, 6, 100, 100})
			So(err, ShouldBeNil)
			So(b.Len(), ShouldEqual, 3)
			So(b.Counts, ShouldResemble, []int{1, 2, 2})
			So(b.Y[0], ShouldEqual, 9)
			So(b.Y[1], ShouldAlmostEqual, 2)
			So(b.Y[2], ShouldAlmostEqual, 5)
			So(b.X[1], ShouldAlmostEqual, 0.5)
		})

		Convey("The order of the samples does not matter", func() {
			up, err := Rebin(edges, []float64{0.2, 0.8, 1.2}, []float64{1, 2, 3})
			So(err, ShouldBeNil)
			down, err := Rebin(edges, []float64{1.2, 0.8, 0.2}, []float64{3, 2, 1})
			So(err, ShouldBeNil)
			So(math.IsNaN(up.Y[0]), ShouldBeTrue)
			So(floats.Same(down.Y, up.Y), ShouldBeTrue)
			So(down.Counts, ShouldResemble, up.Counts)
		})

		Convey("Empty bins are NaN and are dropped by Populated", func() {
			b, err := Rebin(edges, []float64{0.5}, []float64{2})
			So(err, ShouldBeNil)
			So(b.Empty(), ShouldEqual, 2)
			So(math.IsNaN(b.Y[0]), ShouldBeTrue)
			So(math.IsNaN(b.Y[2]), ShouldBeTrue)

			p := b.Populated()
			So(p.Len(), ShouldEqual, 1)
			So(p.Y, ShouldResemble, []float64{2})
			So(p.Empty(), ShouldEqual, 0)
		})

		Convey("Malformed input is rejected", func() {
			_, err := Rebin(edges, []float64{1, 2}, []float64{1})
			So(errors.Is(err, ErrLengthMismatch), ShouldBeTrue)
			So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)

			_, err = Rebin(nil, []float64{1}, []float64{1})
			So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)

			_, err = Rebin([]float64{0, 2, 1}, []float64{1}, []float64{1})
			So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)
		})
	})
}

func TestBinEdges(t *testing.T) {
	Convey("Given the default occultation window", t, func() {
		lo, hi := -60*units.Millisecond, 40*units.Millisecond

		Convey("Half-millisecond exposures give 198 interior edges", func() {
			edges, err := BinEdges(lo, hi, 0.5*units.Millisecond)
			So(err, ShouldBeNil)
			So(len(edges), ShouldEqual, 198)
			So(edges[0], ShouldAlmostEqual, -59.5, 1e-9)
			So(edges[len(edges)-1], ShouldAlmostEqual, 39, 1e-9)
		})

		Convey("A non-positive exposure is rejected", func() {
			_, err := BinEdges(lo, hi, 0)
			So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)
		})

		Convey("An empty range is rejected", func() {
			_, err := BinEdges(hi, lo, units.Millisecond)
			So(errors.Is(err, occult.ErrInvalidParameter), ShouldBeTrue)
		})

		Convey("An exposure as long as the window leaves nothing to bin", func() {
			_, err := BinEdges(lo, hi, 60*units.Millisecond)
			So(errors.Is(err, occult.ErrNumericDegeneracy), ShouldBeTrue)
		})
	})
}

func TestCurve(t *testing.T) {
	Convey("Given a curve", t, func() {
		c := Curve{
			Time: []units.Interval{3 * units.Millisecond, 1 * units.Millisecond, 2 * units.Millisecond},
			Flux: []float64{0.5, 1, 1.5},
		}

		Convey("Its time range ignores ordering", func() {
			lo, hi := c.TimeRange()
			So(lo, ShouldEqual, 1*units.Millisecond)
			So(hi, ShouldEqual, 3*units.Millisecond)
		})

		Convey("A clone does not share storage", func() {
			d := c.Clone()
			d.Flux[0] = 42
			So(c.Flux[0], ShouldEqual, 0.5)
		})

		Convey("Mismatched lengths fail validation and rebinning", func() {
			bad := Curve{Time: c.Time, Flux: c.Flux[:2]}
			So(errors.Is(bad.Validate(), ErrLengthMismatch), ShouldBeTrue)
			_, err := bad.Rebin([]float64{2})
			So(errors.Is(err, ErrLengthMismatch), ShouldBeTrue)
		})

		Convey("It rebins on millisecond edges", func() {
			b, err := c.Rebin([]float64{1.5, 2.5})
			So(err, ShouldBeNil)
			So(b.Counts, ShouldResemble, []int{1, 1})
			So(b.Y, ShouldResemble, []float64{1, 1.5})
		})
	})
}

func TestChiSquare(t *testing.T) {
	Convey("Given data, a model and uncertainties", t, func() {
		Convey("Chi-square sums the squared normalized residuals", func() {
			chisq, err := ChiSquare([]float64{1, 2, 3}, []float64{1, 1, 1}, []float64{1, 0.5, 2})
			So(err, ShouldBeNil)
			So(chisq, ShouldAlmostEqual, 0+4+1)
		})

		Convey("A non-positive sigma is a numeric degeneracy", func() {
			_, err := ChiSquare([]float64{1, 2}, []float64{1, 1}, []float64{1, 0})
			So(errors.Is(err, occult.ErrNumericDegeneracy), ShouldBeTrue)

			_, err = ChiSquare([]float64{1}, []float64{1}, []float64{math.NaN()})
			So(errors.Is(err, occult.ErrNumericDegeneracy), ShouldBeTrue)
		})

		Convey("Mismatched lengths are rejected", func() {
			_, err := ChiSquare([]float64{1, 2}, []float64{1}, []float64{1, 1})
			So(errors.Is(err, ErrLengthMismatch), ShouldBeTrue)
		})
	})
}

func TestPlots(t *testing.T) {
	Convey("Given a binned fit", t, func() {
		fit := Fit{
			Title: "test fit",
			Time:  []float64{-1, 0, 1, 2},
			Model: []float64{0.1, 0.5, 1.1, 1.0},
			Data:  []float64{0.12, 0.48, 1.05, 1.02},
			Sigma: []float64{0.01, 0.02, 0.03, 0.03},
		}

		Convey("It renders at the requested size", func() {
			img, err := PlotFit(fit, 400, 300)
			So(err, ShouldBeNil)
			So(img.Bounds().Dx(), ShouldEqual, 400)
			So(img.Bounds().Dy(), ShouldEqual, 300)
		})

		Convey("It can be saved as a PNG", func() {
			name := filepath.Join(t.TempDir(), "fit.png")
			So(SaveFitPlot(name, fit, 200, 150), ShouldBeNil)
			info, err := os.Stat(name)
			So(err, ShouldBeNil)
			So(info.Size(), ShouldBeGreaterThan, 0)
		})

		Convey("Mismatched series are rejected", func() {
			fit.Sigma = fit.Sigma[:2]
			_, err := PlotFit(fit, 400, 300)
			So(errors.Is(err, ErrLengthMismatch), ShouldBeTrue)
		})

		Convey("Whole curves render too", func() {
			c := Curve{
				Time: []units.Interval{0, units.Millisecond, 2 * units.Millisecond},
				Flux: []float64{0, 1, 1},
			}
			img, err := PlotCurves("curves", []Series{{Label: "point", Curve: c}}, 300, 200)
			So(err, ShouldBeNil)
			So(img.Bounds().Dx(), ShouldEqual, 300)
		})
	})

	Convey("Nice steps round up to 1, 2 or 5", t, func() {
		So(niceStep(0.7), ShouldAlmostEqual, 1)
		So(niceStep(1.3), ShouldAlmostEqual, 2)
		So(niceStep(3), ShouldAlmostEqual, 5)
		So(niceStep(8), ShouldAlmostEqual, 10)
		So(niceStep(0), ShouldEqual, 1)
	})
}
