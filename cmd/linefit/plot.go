package main

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cwbudde/algo-linefit/fit/line"
	"github.com/cwbudde/algo-linefit/internal/linefile"
)

// plotSamples is the number of points used to draw the model curve.
const plotSamples = 1000

type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// writePlot draws the data as points, with error bars when sigmas are
// known, and the model plus the optional background as a line. The format
// follows the file extension.
func writePlot(path string, d linefile.Data, m line.Model, bg *linefile.Background) error {
	p := plot.New()
	p.Title.Text = "Line fit"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	pts := make(plotter.XYs, d.Len())
	lo, hi := d.X[0], d.X[0]

	for i := range pts {
		pts[i].X, pts[i].Y = d.X[i], d.Y[i]
		lo, hi = min(lo, d.X[i]), max(hi, d.X[i])
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}

	scatter.GlyphStyle.Radius = vg.Points(2)
	p.Add(scatter)
	p.Legend.Add("data", scatter)

	if d.Sigma != nil {
		errs := make(plotter.YErrors, d.Len())
		for i, s := range d.Sigma {
			errs[i].Low, errs[i].High = s, s
		}

		bars, err := plotter.NewYErrorBars(errorPoints{XYs: pts, YErrors: errs})
		if err != nil {
			return fmt.Errorf("plot: %w", err)
		}

		p.Add(bars)
	}

	x := make([]float64, plotSamples)
	for i := range x {
		x[i] = lo + (hi-lo)*float64(i)/float64(plotSamples-1)
	}

	y := line.EvalSlice(nil, m, x)
	if bg != nil {
		for i, b := range bg.At(x) {
			y[i] += b
		}
	}

	curve := make(plotter.XYs, len(x))
	for i := range curve {
		curve[i].X, curve[i].Y = x[i], y[i]
	}

	fit, err := plotter.NewLine(curve)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}

	fit.LineStyle.Width = vg.Points(1.5)
	p.Add(fit)
	p.Legend.Add("model", fit)
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("plot: %w", err)
	}

	return nil
}
