package linefile

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cwbudde/algo-vecmath"
	"github.com/google/uuid"

	"github.com/cwbudde/algo-linefit/fit/line"
)

// Report is the content of a result file.
type Report struct {
	RunID     uuid.UUID
	Checksum  uint64 // Data.Checksum of the fitted samples
	Samples   int
	ChiSquare float64
	RMS       float64
	Converged bool
	Lines     []line.Profile

	// Background names the baseline subtracted before fitting, if any.
	Background string
	// Range is the fitted x interval, nil when all samples were used.
	Range *[2]float64
}

// NewReport returns a report with a fresh random run id.
func NewReport(d Data, lines []line.Profile) Report {
	return Report{
		RunID:    uuid.New(),
		Checksum: d.Checksum(),
		Samples:  d.Len(),
		Lines:    lines,
	}
}

// WriteResults writes r as a commented header followed by one row per
// line: kind, then value and error for each parameter, then flux and
// FWHM. A final comment row holds the aggregates over all lines.
func WriteResults(w io.Writer, r Report) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# run %s\n", r.RunID)
	fmt.Fprintf(bw, "# data-checksum %016x\n", r.Checksum)
	fmt.Fprintf(bw, "# samples %d\n", r.Samples)

	if r.Range != nil {
		fmt.Fprintf(bw, "# range %.10g %.10g\n", r.Range[0], r.Range[1])
	}

	if r.Background != "" {
		fmt.Fprintf(bw, "# background %s\n", r.Background)
	}

	fmt.Fprintf(bw, "# chi-square %.10g\n", r.ChiSquare)
	fmt.Fprintf(bw, "# rms %.10g\n", r.RMS)
	fmt.Fprintf(bw, "# converged %t\n", r.Converged)
	fmt.Fprintln(bw, "# kind scale ±scale centre ±centre width ±width [lorentz-width ±lorentz-width] flux fwhm")

	models := make([]line.Model, 0, len(r.Lines))

	for _, p := range r.Lines {
		var sb strings.Builder

		sb.WriteString(p.Kind().String())

		for _, param := range p.Params() {
			fmt.Fprintf(&sb, " %.10g %.4g", param.Value, param.Error)
		}

		fmt.Fprintf(&sb, " %.10g %.10g\n", p.Flux(), p.FWHM())
		bw.WriteString(sb.String())

		models = append(models, p)
	}

	if len(models) > 1 {
		c := line.NewComposite(models...)
		fmt.Fprintf(bw, "# composite scale %.10g centre %.10g flux %.10g\n", c.Scale(), c.Centre(), c.Flux())
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("linefile: write results: %w", err)
	}

	return nil
}

// WriteModel writes two columns "x model(x)". A non-nil background (one
// value per x) is added to the model values.
func WriteModel(w io.Writer, m line.Model, x, background []float64) error {
	bw := bufio.NewWriter(w)
	y := line.EvalSlice(nil, m, x)

	if background != nil {
		vecmath.AddBlockInPlace(y, background[:len(y)])
	}

	for i, xi := range x {
		fmt.Fprintf(bw, "%.10g %.10g\n", xi, y[i])
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("linefile: write model: %w", err)
	}

	return nil
}
