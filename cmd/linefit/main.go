// Command linefit fits a superposition of spectral lines to sampled data.
//
// Usage:
//
//	linefit [flags] -data file (-lines file | -quick kind)
//
// The line configuration lists one profile per line,
//
//	kind scale centre width [lorentz-width]
//
// with kind one of gauss, lorentz or voigt and a trailing '*' on a value to
// hold it fixed. The data file holds columns "x y [sigma]" and may be
// compressed (.gz, .zst, .lz4). Rows with a NaN or infinite x or y are
// skipped.
//
// With -background the baseline in the given file (columns "x y",
// interpolated linearly) is subtracted before the lines are estimated and
// fitted, and added back to the model file and the plot. -range lo:hi
// restricts the fit to samples with lo <= x <= hi.
//
// Examples:
//
//	linefit -data spectrum.txt -lines lines.cfg
//	linefit -data spectrum.txt.zst -lines lines.cfg -out fit.txt -model fit.dat
//	linefit -data spectrum.txt -quick voigt -plot fit.png
//	linefit -data spectrum.txt -lines lines.cfg -background sky.txt -range 4800:4900
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cwbudde/algo-linefit/fit/line"
	"github.com/cwbudde/algo-linefit/fit/linefit"
	"github.com/cwbudde/algo-linefit/fit/lm"
	"github.com/cwbudde/algo-linefit/internal/linefile"
)

var errUsage = errors.New("usage")

type options struct {
	data        string
	lines       string
	quick       string
	out         string
	model       string
	plot        string
	background  string
	xrange      xRange
	noSigma     bool
	rescale     string
	maxIter     int
	maxSteps    int
	convergence float64
	verbose     bool
}

// xRange is a flag.Value for "lo:hi".
type xRange struct {
	lo, hi float64
	set    bool
}

func (r *xRange) String() string {
	if r == nil || !r.set {
		return ""
	}

	return fmt.Sprintf("%g:%g", r.lo, r.hi)
}

func (r *xRange) Set(s string) error {
	los, his, ok := strings.Cut(s, ":")
	if !ok {
		return fmt.Errorf("want lo:hi, got %q", s)
	}

	lo, err := strconv.ParseFloat(strings.TrimSpace(los), 64)
	if err != nil {
		return fmt.Errorf("bad lower bound %q", los)
	}

	hi, err := strconv.ParseFloat(strings.TrimSpace(his), 64)
	if err != nil {
		return fmt.Errorf("bad upper bound %q", his)
	}

	if !(lo < hi) {
		return fmt.Errorf("lower bound %g not below upper bound %g", lo, hi)
	}

	r.lo, r.hi, r.set = lo, hi, true

	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}

		return 2
	}

	level := zerolog.InfoLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true}).
		Level(level).With().Timestamp().Logger()

	if err := fit(opts, stdout, logger); err != nil {
		logger.Error().Err(err).Msg("fit failed")
		return 1
	}

	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options

	fs := flag.NewFlagSet("linefit", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.data, "data", "", "data file with columns x y [sigma] (.gz, .zst, .lz4 accepted)")
	fs.StringVar(&o.lines, "lines", "", "line configuration file")
	fs.StringVar(&o.quick, "quick", "", "estimate a single line of this kind (gauss, lorentz, voigt) instead of -lines")
	fs.StringVar(&o.out, "out", "", "result file (default stdout)")
	fs.StringVar(&o.model, "model", "", "write the fitted model as columns x model(x)")
	fs.StringVar(&o.plot, "plot", "", "plot data and model to this file (.png, .svg, .pdf)")
	fs.StringVar(&o.background, "background", "", "baseline file with columns x y, subtracted before fitting")
	fs.Var(&o.xrange, "range", "fit only samples with lo <= x <= hi, given as lo:hi")
	fs.BoolVar(&o.noSigma, "no-sigma", false, "ignore the sigma column and fit unweighted")
	fs.StringVar(&o.rescale, "rescale", "auto", "rescale errors by sqrt(chi2/dof): auto, yes or no")
	fs.IntVar(&o.maxIter, "max-iter", 20, "consecutive rejected steps before giving up")
	fs.IntVar(&o.maxSteps, "max-steps", 500, "hard limit on iterations")
	fs.Float64Var(&o.convergence, "convergence", 0.999, "chi-square ratio at which the fit has converged")
	fs.BoolVar(&o.verbose, "v", false, "log every iteration")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: linefit [flags] -data file (-lines file | -quick kind)\n\n")
		fmt.Fprintf(stderr, "Fits Gaussian, Lorentzian and Voigt lines to sampled data.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  linefit -data spectrum.txt -lines lines.cfg\n")
		fmt.Fprintf(stderr, "  linefit -data spectrum.txt.zst -lines lines.cfg -out fit.txt -model fit.dat\n")
		fmt.Fprintf(stderr, "  linefit -data spectrum.txt -quick voigt -plot fit.png\n")
		fmt.Fprintf(stderr, "  linefit -data spectrum.txt -lines lines.cfg -background sky.txt -range 4800:4900\n")
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}

	switch {
	case o.data == "":
		fmt.Fprintf(stderr, "error: -data is required\n")
		fs.Usage()

		return o, errUsage
	case (o.lines == "") == (o.quick == ""):
		fmt.Fprintf(stderr, "error: exactly one of -lines and -quick is required\n")
		fs.Usage()

		return o, errUsage
	case o.rescale != "auto" && o.rescale != "yes" && o.rescale != "no":
		fmt.Fprintf(stderr, "error: -rescale must be auto, yes or no\n")

		return o, errUsage
	}

	return o, nil
}

func fit(o options, stdout io.Writer, logger zerolog.Logger) error {
	d, err := linefile.ReadDataFile(o.data)
	if err != nil {
		return err
	}

	if o.noSigma {
		d.Sigma = nil
	}

	logger.Info().Str("file", o.data).Int("samples", d.Len()).Bool("sigma", d.Sigma != nil).Msg("data loaded")

	if d.Dropped > 0 {
		logger.Warn().Int("rows", d.Dropped).Msg("skipped non-finite samples")
	}

	if o.xrange.set {
		d = d.Within(o.xrange.lo, o.xrange.hi)
		if d.Len() == 0 {
			return fmt.Errorf("no samples in range %s", o.xrange.String())
		}

		logger.Info().Str("range", o.xrange.String()).Int("samples", d.Len()).Msg("range selected")
	}

	var (
		bg   *linefile.Background
		base []float64
		net  = d
	)

	if o.background != "" {
		b, err := linefile.ReadBackgroundFile(o.background)
		if err != nil {
			return err
		}

		bg = &b
		base = b.At(d.X)
		net = d.Subtract(base)

		logger.Info().Str("file", o.background).Int("points", len(b.X)).Msg("background loaded")
	}

	profiles, err := initialLines(o, d, base, logger)
	if err != nil {
		return err
	}

	models := make([]line.Model, len(profiles))
	for i, p := range profiles {
		models[i] = p
	}

	model := line.NewComposite(models...)

	fopts := []linefit.Option{
		linefit.WithMaxIterations(o.maxIter),
		linefit.WithMaxSteps(o.maxSteps),
		linefit.WithConvergence(o.convergence),
		linefit.WithObserver(func(s lm.Step) {
			logger.Debug().
				Int("iter", s.Iteration).
				Float64("lambda", s.Lambda).
				Float64("chi2", s.ChiSquare).
				Float64("best", s.Best).
				Bool("accepted", s.Accepted).
				Msg("step")
		}),
	}

	switch o.rescale {
	case "yes":
		fopts = append(fopts, linefit.WithRescaledErrors(true))
	case "no":
		fopts = append(fopts, linefit.WithRescaledErrors(false))
	}

	fitter := linefit.New(model, fopts...)

	res, err := fitter.Fit(net.X, net.Y, net.Sigma)
	if err != nil {
		return err
	}

	report := linefile.NewReport(d, profiles)
	report.ChiSquare = res.ChiSquare
	report.RMS = fitter.RMS(net.X, net.Y)
	report.Converged = res.Converged
	report.Background = o.background

	if o.xrange.set {
		report.Range = &[2]float64{o.xrange.lo, o.xrange.hi}
	}

	ev := logger.Info()
	if !res.Converged {
		ev = logger.Warn()
	}

	ev.Str("run", report.RunID.String()).
		Float64("chi2", res.ChiSquare).
		Float64("rms", report.RMS).
		Int("iterations", res.Iterations).
		Bool("converged", res.Converged).
		Msg("fit finished")

	if err := writeTo(o.out, stdout, func(w io.Writer) error {
		return linefile.WriteResults(w, report)
	}); err != nil {
		return err
	}

	if o.model != "" {
		if err := writeTo(o.model, nil, func(w io.Writer) error {
			return linefile.WriteModel(w, model, d.X, base)
		}); err != nil {
			return err
		}
	}

	if o.plot != "" {
		if err := writePlot(o.plot, d, model, bg); err != nil {
			return err
		}

		logger.Info().Str("file", o.plot).Msg("plot written")
	}

	return nil
}

// initialLines reads the configured lines, or estimates a single line
// from the data above base in quick mode. base may be nil.
func initialLines(o options, d linefile.Data, base []float64, logger zerolog.Logger) ([]line.Profile, error) {
	if o.quick != "" {
		kind, err := line.ParseKind(o.quick)
		if err != nil {
			return nil, err
		}

		est := linefit.Estimate(d.X, d.Y, base)

		logger.Info().
			Float64("peak", est.Peak).
			Float64("centre", est.Centre).
			Float64("fwhm", est.FWHM).
			Float64("asymmetry", est.Asymmetry).
			Bool("absorption", est.Absorption).
			Msg("quick estimate")

		p, err := linefit.Guess(kind, est)
		if err != nil {
			return nil, err
		}

		return []line.Profile{p}, nil
	}

	f, err := os.Open(o.lines)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	profiles, err := linefile.ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", o.lines, err)
	}

	if len(profiles) == 0 {
		return nil, fmt.Errorf("%s: no lines configured", o.lines)
	}

	logger.Info().Str("file", o.lines).Int("lines", len(profiles)).Msg("lines loaded")

	return profiles, nil
}

// writeTo writes to path, or to fallback when path is empty.
func writeTo(path string, fallback io.Writer, write func(io.Writer) error) error {
	if path == "" {
		return write(fallback)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := write(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
