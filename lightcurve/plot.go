package lightcurve

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"gonum.org/v1/plot"
	_ "gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	vgdraw "gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/bob-anderson-ok/LunarOccultation/units"
)

// StepTicks is a custom tick marker for plots with fixed step intervals.
type StepTicks struct {
	Step   float64
	Format string
}

func (t StepTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	if t.Step <= 0 {
		return ticks
	}
	start := math.Ceil(min/t.Step) * t.Step
	for v := start; v <= max; v += t.Step {
		ticks = append(ticks, plot.Tick{
			Value: v,
			Label: fmt.Sprintf(t.Format, v),
		})
	}
	return ticks
}

// Series is one labelled curve drawn by PlotCurves.
type Series struct {
	Label string
	Curve Curve
}

// Fit is what PlotFit draws: the binned point-source model as a line and the
// noisy binned data with one-sigma error bars.
type Fit struct {
	Title string
	Time  []float64 // bin centers in milliseconds
	Model []float64
	Data  []float64
	Sigma []float64
}

var palette = []color.RGBA{
	{R: 0, G: 0, B: 255, A: 255},
	{R: 220, G: 0, B: 0, A: 255},
	{R: 0, G: 150, B: 0, A: 255},
	{R: 200, G: 120, B: 0, A: 255},
	{R: 130, G: 0, B: 160, A: 255},
}

func newPlot(title, xLabel string) *plot.Plot {
	p := plot.New()

	// Font settings
	p.Title.TextStyle.Font.Typeface = "Liberation"
	p.Title.TextStyle.Font.Variant = "Sans"
	p.Title.TextStyle.Font.Size = vg.Points(12)

	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.Label.TextStyle.Font.Typeface = "Liberation"
		ax.Label.TextStyle.Font.Variant = "Sans"
		ax.Label.TextStyle.Font.Size = vg.Points(12)

		ax.Tick.Label.Font.Typeface = "Liberation"
		ax.Tick.Label.Font.Variant = "Sans"
		ax.Tick.Label.Font.Size = vg.Points(10)
	}
	p.Legend.TextStyle.Font.Typeface = "Liberation"
	p.Legend.TextStyle.Font.Variant = "Sans"
	p.Legend.Top = true

	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "normalized intensity"
	p.Y.Tick.Marker = StepTicks{Step: 0.2, Format: "%.2f"}
	p.Add(plotter.NewGrid())
	return p
}

// PlotCurves draws one line per series against time in milliseconds.
func PlotCurves(title string, series []Series, wPx, hPx float64) (image.Image, error) {
	p := newPlot(title, "time (ms)")

	var lo, hi float64 = math.Inf(1), math.Inf(-1)
	for i, s := range series {
		if err := s.Curve.Validate(); err != nil {
			return nil, err
		}
		times := units.Milliseconds(s.Curve.Time)
		pts := make(plotter.XYs, len(times))
		for j := range times {
			pts[j].X = times[j]
			pts[j].Y = s.Curve.Flux[j]
			lo = min(lo, times[j])
			hi = max(hi, times[j])
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = palette[i%len(palette)]
		p.Add(line)
		if s.Label != "" {
			p.Legend.Add(s.Label, line)
		}
	}
	if hi > lo {
		p.X.Tick.Marker = StepTicks{Step: niceStep((hi - lo) / 10), Format: "%.1f"}
	}

	return render(p, wPx, hPx), nil
}

// PlotFit draws the binned model as a line and the noisy data as points with
// error bars.
func PlotFit(fit Fit, wPx, hPx float64) (image.Image, error) {
	n := len(fit.Time)
	if len(fit.Model) != n || len(fit.Data) != n || len(fit.Sigma) != n {
		return nil, fmt.Errorf("fit plot: %w", ErrLengthMismatch)
	}

	p := newPlot(fit.Title, "time (ms)")

	model := make(plotter.XYs, n)
	data := errorPoints{XYs: make(plotter.XYs, n), YErrors: make(plotter.YErrors, n)}
	for i := 0; i < n; i++ {
		model[i].X, model[i].Y = fit.Time[i], fit.Model[i]
		data.XYs[i].X, data.XYs[i].Y = fit.Time[i], fit.Data[i]
		data.YErrors[i].Low, data.YErrors[i].High = fit.Sigma[i], fit.Sigma[i]
	}

	line, err := plotter.NewLine(model)
	if err != nil {
		return nil, err
	}
	line.Color = palette[0]
	p.Add(line)
	p.Legend.Add("Point Source", line)

	pts, err := plotter.NewScatter(data.XYs)
	if err != nil {
		return nil, err
	}
	pts.Color = palette[1]
	pts.Radius = vg.Points(1.5)
	p.Add(pts)
	p.Legend.Add("Data", pts)

	bars, err := plotter.NewYErrorBars(data)
	if err != nil {
		return nil, err
	}
	bars.Color = palette[1]
	p.Add(bars)

	if n > 1 {
		lo, hi := fit.Time[0], fit.Time[n-1]
		if lo > hi {
			lo, hi = hi, lo
		}
		p.X.Tick.Marker = StepTicks{Step: niceStep((hi - lo) / 10), Format: "%.1f"}
	}

	return render(p, wPx, hPx), nil
}

// SaveFitPlot creates and saves a fit plot to a PNG file.
func SaveFitPlot(filename string, fit Fit, wPx, hPx float64) error {
	img, err := PlotFit(fit, wPx, hPx)
	if err != nil {
		return err
	}
	return SaveImageToFile(filename, img)
}

// SaveImageToFile saves an image to a PNG file.
func SaveImageToFile(filename string, img image.Image) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return png.Encode(f, img)
}

type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

func render(p *plot.Plot, wPx, hPx float64) image.Image {
	const dpi = 96
	width := vg.Length(wPx) * vg.Inch / dpi
	height := vg.Length(hPx) * vg.Inch / dpi

	c := vgimg.New(width, height)
	dc := vgdraw.New(c)
	p.Draw(dc)

	return c.Image()
}

// niceStep rounds raw up to 1, 2 or 5 times a power of ten.
func niceStep(raw float64) float64 {
	if raw <= 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch f := raw / mag; {
	case f <= 1:
		return mag
	case f <= 2:
		return 2 * mag
	case f <= 5:
		return 5 * mag
	}
	return 10 * mag
}
