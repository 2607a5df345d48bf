// Package equilibrium searches for the Bertrand-Nash fixed point by cycling
// best responses over the three rank slots.
package equilibrium

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/okian/bertrand/internal/domain/model"
	"github.com/okian/bertrand/internal/domain/profit"
	"github.com/okian/bertrand/pkg/logger"
	"github.com/okian/bertrand/pkg/metrics"
)

// Default iteration constants.
const (
	defaultBaseline  = 5.0
	defaultRTol      = 1e-6
	defaultATol      = 1e-8
	defaultMaxCycles = 1000
	defaultTimeout   = 5 * time.Minute
)

// State is the iterator's lifecycle position.
type State int

// Iterator states.
const (
	Initializing State = iota
	Updating
	Converged
	Failed
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Updating:
		return "updating"
	case Converged:
		return "converged"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Responder returns p with one slot replaced by its best response.
type Responder interface {
	Respond(ctx context.Context, slot int, p model.PriceVector, a [model.NumSellers]float64) (model.PriceVector, error)
	Profits() *profit.Functions
}

// Result is a converged equilibrium in rank order.
type Result struct {
	Prices  model.PriceVector
	Profits model.ProfitVector
	Cycles  int
}

// Iterator runs the best-response fixed-point search.
type Iterator struct {
	responder Responder

	baseline  float64
	rtol      float64
	atol      float64
	maxCycles int
	timeout   time.Duration

	logger logger.Logger
}

// New creates an Iterator driving the given responder.
func New(r Responder, opts ...Option) *Iterator {
	it := &Iterator{
		responder: r,
		baseline:  defaultBaseline,
		rtol:      defaultRTol,
		atol:      defaultATol,
		maxCycles: defaultMaxCycles,
		timeout:   defaultTimeout,
		logger:    logger.Get().Named("equilibrium"),
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// Update applies one full cycle of best responses, slot 0 then 1 then 2.
func (it *Iterator) Update(ctx context.Context, p model.PriceVector, a [model.NumSellers]float64) (model.PriceVector, error) {
	var err error
	for slot := 0; slot < model.NumSellers; slot++ {
		p, err = it.responder.Respond(ctx, slot, p, a)
		if err != nil {
			return p, err
		}
	}
	return p, nil
}

// Solve iterates from the baseline until two consecutive cycles agree.
// Scores must be rank ordered and strictly descending.
func (it *Iterator) Solve(ctx context.Context, a [model.NumSellers]float64) (Result, error) {
	start := time.Now()
	defer func() { metrics.RecordSolveDuration(time.Since(start)) }()

	if it.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, it.timeout)
		defer cancel()
	}

	state := Initializing
	var prev model.PriceVector
	for i := range prev {
		prev[i] = it.baseline
	}
	it.transition(ctx, &state, Updating)

	for cycle := 1; state == Updating; cycle++ {
		if cycle > it.maxCycles {
			it.transition(ctx, &state, Failed)
			return Result{}, it.fail(ctx, state, &ConvergenceError{Cycles: it.maxCycles, Last: prev})
		}
		next, err := it.Update(ctx, prev, a)
		if err != nil {
			it.transition(ctx, &state, Failed)
			return Result{}, it.fail(ctx, state, &ConvergenceError{Cycles: cycle - 1, Last: prev, Cause: err})
		}
		it.logger.Debug(ctx, "cycle complete",
			logger.Int("cycle", cycle), logger.Any("prices", next))

		if it.allClose(prev, next) {
			it.transition(ctx, &state, Converged)
			metrics.RecordCycles(cycle)
			return Result{
				Prices:  next,
				Profits: it.responder.Profits().All(next, a),
				Cycles:  cycle,
			}, nil
		}
		prev = next
	}
	return Result{}, fmt.Errorf("iterator left updating in state %s", state)
}

func (it *Iterator) transition(ctx context.Context, state *State, next State) {
	it.logger.Debug(ctx, "state change",
		logger.String("from", state.String()), logger.String("to", next.String()))
	*state = next
}

func (it *Iterator) fail(ctx context.Context, state State, err *ConvergenceError) error {
	metrics.RecordConvergenceFailure()
	it.logger.Warn(ctx, "equilibrium search abandoned",
		logger.String("state", state.String()), logger.Int("cycles", err.Cycles), logger.Error(err))
	return err
}

// allClose mirrors numpy.allclose: |b-a| <= atol + rtol*|b| per coordinate.
func (it *Iterator) allClose(a, b model.PriceVector) bool {
	for i := range a {
		if math.Abs(b[i]-a[i]) > it.atol+it.rtol*math.Abs(b[i]) {
			return false
		}
	}
	return true
}
