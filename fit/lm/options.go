package lm

const (
	defaultMaxIterations = 20
	defaultConvergence   = 0.999
	defaultMaxSteps      = 500
	defaultZeroTolerance = 1e-18
)

// Step describes one Marquardt iteration. It is passed to the observer
// installed with [WithObserver].
type Step struct {
	Iteration int     // 1-based iteration count within the current Fit
	Lambda    float64 // damping after the accept/reject decision
	ChiSquare float64 // chi-square at the trial point (+Inf if no valid trial was found)
	Best      float64 // best chi-square so far
	Accepted  bool
}

// Config holds the stopping rules of an Optimizer.
type Config struct {
	// MaxIterations is the number of consecutive rejected steps after
	// which the fit stops.
	MaxIterations int
	// Convergence is the chi-square ratio new/old above which an accepted
	// step ends the fit as converged.
	Convergence float64
	// MaxSteps bounds the total number of iterations.
	MaxSteps int
	// ZeroTolerance is the chi-square floor, relative to Σ(y/σ)², at which
	// a fit whose steps can no longer improve is still reported converged.
	ZeroTolerance float64
	// Observer, if set, is called after every iteration.
	Observer func(Step)
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the standard stopping rules: 20 failed steps, a
// 0.999 chi-square ratio and at most 500 iterations.
func DefaultConfig() Config {
	return Config{
		MaxIterations: defaultMaxIterations,
		Convergence:   defaultConvergence,
		MaxSteps:      defaultMaxSteps,
		ZeroTolerance: defaultZeroTolerance,
	}
}

// WithMaxIterations sets the failed-step cap.
func WithMaxIterations(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxIterations = n
		}
	}
}

// WithConvergence sets the chi-square ratio threshold. Values outside
// (0, 1) are ignored.
func WithConvergence(ratio float64) Option {
	return func(cfg *Config) {
		if ratio > 0 && ratio < 1 {
			cfg.Convergence = ratio
		}
	}
}

// WithMaxSteps sets the hard cap on iterations per Fit.
func WithMaxSteps(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxSteps = n
		}
	}
}

// WithZeroTolerance sets the relative chi-square floor.
func WithZeroTolerance(tol float64) Option {
	return func(cfg *Config) {
		if tol >= 0 {
			cfg.ZeroTolerance = tol
		}
	}
}

// WithObserver installs a per-iteration callback.
func WithObserver(fn func(Step)) Option {
	return func(cfg *Config) {
		cfg.Observer = fn
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
