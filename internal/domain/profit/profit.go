// Package profit exposes per-slot profit functions and their negations as
// objectives for minimization-based solvers.
package profit

import (
	"github.com/okian/bertrand/internal/domain/demand"
	"github.com/okian/bertrand/internal/domain/model"
)

// Func evaluates one slot's profit for rank-ordered prices and qualities.
type Func func(p model.PriceVector, a [model.NumSellers]float64) float64

// Option applies a configuration option to Functions.
type Option func(*Functions)

// WithCosts sets a per-slot marginal cost subtracted from each unit sold.
func WithCosts(costs [model.NumSellers]float64) Option {
	return func(f *Functions) {
		f.costs = costs
	}
}

// Functions is the dispatch table of per-slot profit functions.
type Functions struct {
	demand demand.Model
	costs  [model.NumSellers]float64
	slots  [model.NumSellers]Func
}

// New builds the profit table for the demand model.
func New(m demand.Model, opts ...Option) *Functions {
	f := &Functions{demand: m}
	for _, opt := range opts {
		opt(f)
	}
	for i := range f.slots {
		slot := i
		f.slots[slot] = func(p model.PriceVector, a [model.NumSellers]float64) float64 {
			share := f.demand.Shares(p, a)[slot]
			return (p[slot] - f.costs[slot]) * share
		}
	}
	return f
}

// Demand returns the demand model the table was built on.
func (f *Functions) Demand() demand.Model {
	return f.demand
}

// Slot returns the profit function of rank slot i.
func (f *Functions) Slot(i int) Func {
	return f.slots[i]
}

// Objective returns the negated profit of slot i.
func (f *Functions) Objective(i int) Func {
	fn := f.slots[i]
	return func(p model.PriceVector, a [model.NumSellers]float64) float64 {
		return -fn(p, a)
	}
}

// Profit evaluates slot i's profit.
func (f *Functions) Profit(i int, p model.PriceVector, a [model.NumSellers]float64) float64 {
	return f.slots[i](p, a)
}

// All evaluates every slot's profit at p.
func (f *Functions) All(p model.PriceVector, a [model.NumSellers]float64) model.ProfitVector {
	var out model.ProfitVector
	for i, fn := range f.slots {
		out[i] = fn(p, a)
	}
	return out
}
