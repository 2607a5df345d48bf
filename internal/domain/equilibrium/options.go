package equilibrium

import (
	"time"

	"github.com/okian/bertrand/pkg/logger"
)

// Option applies a configuration option to the Iterator.
type Option func(*Iterator)

// WithBaseline sets the starting price of every slot.
func WithBaseline(price float64) Option {
	return func(it *Iterator) {
		it.baseline = price
	}
}

// WithTolerance sets the relative and absolute closeness used to detect a
// fixed point.
func WithTolerance(rtol, atol float64) Option {
	return func(it *Iterator) {
		if rtol >= 0 {
			it.rtol = rtol
		}
		if atol >= 0 {
			it.atol = atol
		}
	}
}

// WithMaxCycles caps the number of full best-response cycles.
func WithMaxCycles(n int) Option {
	return func(it *Iterator) {
		if n > 0 {
			it.maxCycles = n
		}
	}
}

// WithTimeout bounds the wall time of one Solve call. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(it *Iterator) {
		if d >= 0 {
			it.timeout = d
		}
	}
}

// WithLogger sets the iterator logger.
func WithLogger(l logger.Logger) Option {
	return func(it *Iterator) {
		if l != nil {
			it.logger = l
		}
	}
}
