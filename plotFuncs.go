package main

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/bob-anderson-ok/LunarOccultation/lightcurve"
	"github.com/bob-anderson-ok/LunarOccultation/resolution"
)

// makeRejectionPlot draws the fraction of trials that rejected a point source
// at each tested angular size, with the resolving threshold dashed.
func makeRejectionPlot(steps []resolution.Step, threshold float64, filename string) error {
	if len(steps) == 0 {
		return fmt.Errorf("no candidate was evaluated")
	}

	p := plot.New()

	// Modify the font fields directly on existing styles
	p.Title.TextStyle.Font.Typeface = "Liberation"
	p.Title.TextStyle.Font.Variant = "Sans"
	p.Title.TextStyle.Font.Size = vg.Points(12)

	p.X.Label.TextStyle.Font.Typeface = "Liberation"
	p.X.Label.TextStyle.Font.Variant = "Sans"
	p.X.Label.TextStyle.Font.Size = vg.Points(12)

	p.Y.Label.TextStyle.Font.Typeface = "Liberation"
	p.Y.Label.TextStyle.Font.Variant = "Sans"
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)

	p.X.Tick.Label.Font.Typeface = "Liberation"
	p.X.Tick.Label.Font.Variant = "Sans"
	p.X.Tick.Label.Font.Size = vg.Points(10)

	p.Title.Text = "Point-source rejections vs stellar angular size"
	p.X.Label.Text = "Angular size (mas)"
	p.Y.Label.Text = "Fraction of trials rejected"

	p.X.Tick.Marker = lightcurve.StepTicks{Step: 0.2, Format: "%.1f"}
	p.Y.Tick.Marker = lightcurve.StepTicks{Step: 0.1, Format: "%.2f"}
	p.Add(plotter.NewGrid()) // grid + ticks

	p.Y.Min = 0.0
	p.Y.Max = 1.05

	n := len(steps)
	pts := make(plotter.XYs, n)
	for i, s := range steps {
		pts[i].X = s.AngularSize.Milliarcseconds()
		pts[i].Y = s.Fraction
	}

	linePoints, scatterPoints, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	linePoints.Color = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	linePoints.Width = vg.Points(1)

	scatterPoints.Shape = draw.CircleGlyph{}
	scatterPoints.Radius = vg.Points(3)
	scatterPoints.Color = color.RGBA{R: 120, G: 120, B: 120, A: 255}

	p.Add(linePoints, scatterPoints)

	lo, hi := pts[0].X, pts[n-1].X
	if hi == lo {
		lo, hi = lo-0.1, hi+0.1
	}
	hline, err := plotter.NewLine(plotter.XYs{
		{X: lo, Y: threshold},
		{X: hi, Y: threshold},
	})
	if err != nil {
		return err
	}
	hline.Dashes = []vg.Length{
		vg.Points(6), // dash length
		vg.Points(4), // gap length
	}
	hline.Color = color.RGBA{R: 220, G: 0, B: 0, A: 255}

	p.Add(hline)

	return p.Save(8*vg.Inch, 4*vg.Inch, filename)
}
