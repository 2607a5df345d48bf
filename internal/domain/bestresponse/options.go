package bestresponse

import "github.com/okian/bertrand/pkg/logger"

// Option applies a configuration option to the Solver.
type Option func(*Solver)

// WithHops sets the number of basin-hopping perturbations per response.
// Zero disables the global phase and leaves only the local refinement.
func WithHops(n int) Option {
	return func(s *Solver) {
		if n >= 0 {
			s.hops = n
		}
	}
}

// WithStepSize sets the half-width of the uniform hop displacement.
func WithStepSize(step float64) Option {
	return func(s *Solver) {
		if step > 0 {
			s.stepSize = step
		}
	}
}

// WithStepScale sets the hop half-width as a fraction of the current price
// once that exceeds the absolute step size.
func WithStepScale(frac float64) Option {
	return func(s *Solver) {
		if frac >= 0 {
			s.stepScale = frac
		}
	}
}

// WithScanPoints sets how many evenly spaced prices are scanned for local
// search starts. Zero disables the scan.
func WithScanPoints(n int) Option {
	return func(s *Solver) {
		if n >= 0 {
			s.scanPoints = n
		}
	}
}

// WithTemperature sets the Metropolis acceptance temperature.
func WithTemperature(temp float64) Option {
	return func(s *Solver) {
		if temp > 0 {
			s.temperature = temp
		}
	}
}

// WithSeed sets the seed of the per-call random source.
func WithSeed(seed int64) Option {
	return func(s *Solver) {
		s.seed = seed
	}
}

// WithGradientThreshold sets the local optimizer's gradient norm stop.
func WithGradientThreshold(tol float64) Option {
	return func(s *Solver) {
		if tol > 0 {
			s.gradTol = tol
		}
	}
}

// WithImproveTolerance sets the relative objective gain required before a
// candidate replaces the current price.
func WithImproveTolerance(tol float64) Option {
	return func(s *Solver) {
		if tol >= 0 {
			s.improveTol = tol
		}
	}
}

// WithLogger sets the solver logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Solver) {
		if l != nil {
			s.logger = l
		}
	}
}
