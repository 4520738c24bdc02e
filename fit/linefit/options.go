package linefit

import "github.com/cwbudde/algo-linefit/fit/lm"

type rescaleMode int8

const (
	rescaleAuto rescaleMode = iota
	rescaleAlways
	rescaleNever
)

type config struct {
	lm      []lm.Option
	rescale rescaleMode
}

// Option configures a Fitter.
type Option func(*config)

// WithMaxIterations sets the number of consecutive rejected steps after
// which a fit gives up (default 20).
func WithMaxIterations(n int) Option {
	return func(cfg *config) {
		cfg.lm = append(cfg.lm, lm.WithMaxIterations(n))
	}
}

// WithConvergence sets the chi-square ratio above which an accepted step
// ends the fit as converged (default 0.999).
func WithConvergence(ratio float64) Option {
	return func(cfg *config) {
		cfg.lm = append(cfg.lm, lm.WithConvergence(ratio))
	}
}

// WithMaxSteps bounds the total number of iterations of one fit.
func WithMaxSteps(n int) Option {
	return func(cfg *config) {
		cfg.lm = append(cfg.lm, lm.WithMaxSteps(n))
	}
}

// WithRescaledErrors forces parameter errors to be rescaled by
// sqrt(chi2/dof), or not. By default errors are rescaled only when the
// fit is given no sigmas.
func WithRescaledErrors(on bool) Option {
	return func(cfg *config) {
		if on {
			cfg.rescale = rescaleAlways
		} else {
			cfg.rescale = rescaleNever
		}
	}
}

// WithObserver installs a per-iteration callback.
func WithObserver(fn func(lm.Step)) Option {
	return func(cfg *config) {
		cfg.lm = append(cfg.lm, lm.WithObserver(fn))
	}
}

func applyOptions(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
