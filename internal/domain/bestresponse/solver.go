// Package bestresponse finds the price maximizing one seller's profit while
// the other two prices stay fixed.
//
// The profit surface is flat at zero wherever a slot is priced out of the
// market and has kinks wherever the max/min in the demand shares switch
// branch. The search therefore runs in three phases: a coarse scan of
// (0, ceiling] together with starts just below every rival price, local
// refinement of the most promising starts with BFGS and Nelder-Mead, and
// basin hopping with an adaptive, price-scaled step around the best point.
package bestresponse

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/okian/bertrand/internal/domain/model"
	"github.com/okian/bertrand/internal/domain/profit"
	"github.com/okian/bertrand/pkg/logger"
	"github.com/okian/bertrand/pkg/metrics"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

// Defaults mirror scipy's basinhopping where it has an equivalent.
const (
	defaultHops            = 100
	defaultStepSize        = 0.5
	defaultStepScale       = 0.05
	defaultTemperature     = 1.0
	defaultSeed            = 42
	defaultGradTol         = 1e-8
	defaultImproveTol      = 1e-12
	defaultScanPoints      = 256
	defaultMajorIterations = 200

	// scipy AdaptiveStepsize: every interval hops the step shrinks or grows
	// by factor to steer the acceptance rate towards the target.
	adaptInterval    = 50
	adaptFactor      = 0.9
	targetAcceptRate = 0.5

	scanStarts = 3
	kinkOffset = 1e-3
)

// minimize is swapped in tests to force local-search outcomes.
var minimize = optimize.Minimize //nolint:gochecknoglobals // test seam

// Solver computes best responses for rank slots.
type Solver struct {
	profits *profit.Functions

	hops        int
	stepSize    float64
	stepScale   float64
	temperature float64
	seed        int64
	gradTol     float64
	improveTol  float64
	scanPoints  int

	logger logger.Logger
}

// New creates a Solver over the given profit table.
func New(profits *profit.Functions, opts ...Option) *Solver {
	s := &Solver{
		profits:     profits,
		hops:        defaultHops,
		stepSize:    defaultStepSize,
		stepScale:   defaultStepScale,
		temperature: defaultTemperature,
		seed:        defaultSeed,
		gradTol:     defaultGradTol,
		improveTol:  defaultImproveTol,
		scanPoints:  defaultScanPoints,
		logger:      logger.Get().Named("bestresponse"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Profits returns the profit table the solver optimizes.
func (s *Solver) Profits() *profit.Functions {
	return s.profits
}

// Respond returns p with slot's price replaced by its best response. When
// no candidate beats the current price the input is returned unchanged.
func (s *Solver) Respond(ctx context.Context, slot int, p model.PriceVector, a [model.NumSellers]float64) (model.PriceVector, error) {
	if slot < 0 || slot >= model.NumSellers {
		return p, fmt.Errorf("slot %d out of range", slot)
	}
	if err := ctx.Err(); err != nil {
		return p, fmt.Errorf("best response slot %d: %w", slot, err)
	}
	metrics.RecordBestResponse()

	obj := s.profits.Objective(slot)
	f := func(x float64) float64 {
		q := p
		q[slot] = x
		v := obj(q, a)
		if math.IsNaN(v) {
			return math.Inf(1)
		}
		return v
	}

	seedF := f(p[slot])
	bestX, bestF := p[slot], seedF
	for _, x0 := range s.starts(slot, p, a, f) {
		x, fx := s.local(f, x0, f(x0))
		if fx < bestF {
			bestX, bestF = x, fx
		}
	}

	x, fx := bestX, bestF
	step := math.Max(s.stepSize, s.stepScale*math.Abs(x))
	accepted := 0
	rng := rand.New(rand.NewSource(s.seed)) //nolint:gosec // reproducible search, not security sensitive
	for i := 1; i <= s.hops; i++ {
		if err := ctx.Err(); err != nil {
			return p, fmt.Errorf("best response slot %d: %w", slot, err)
		}
		trial := x + (2*rng.Float64()-1)*step
		tx, tf := s.local(f, trial, f(trial))
		if tf < fx || rng.Float64() < math.Exp(-(tf-fx)/s.temperature) {
			x, fx = tx, tf
			accepted++
		}
		if fx < bestF {
			bestX, bestF = x, fx
		}
		if i%adaptInterval == 0 {
			if float64(accepted)/adaptInterval > targetAcceptRate {
				step /= adaptFactor
			} else {
				step *= adaptFactor
			}
			accepted = 0
		}
	}

	if !(bestF < seedF-s.improveTol*math.Max(1, math.Abs(seedF))) {
		s.logger.Debug(ctx, "no improvement over current price",
			logger.Int("slot", slot), logger.Float64("price", p[slot]))
		return p, nil
	}
	out := p
	out[slot] = bestX
	return out, nil
}

// starts lists deterministic local-search seeds: the current price, points
// just below each positive rival price and the best local minima of a
// uniform scan over (0, ceiling].
func (s *Solver) starts(slot int, p model.PriceVector, a [model.NumSellers]float64, f func(float64) float64) []float64 {
	out := []float64{p[slot]}
	for j, q := range p {
		if j != slot && q > 0 && !math.IsInf(q, 0) {
			out = append(out, q*(1-kinkOffset))
		}
	}
	if s.scanPoints <= 0 {
		return out
	}

	ceiling := s.profits.Demand().PriceCeiling(p, a)
	xs := make([]float64, s.scanPoints)
	fs := make([]float64, s.scanPoints)
	for k := range xs {
		xs[k] = ceiling * float64(k+1) / float64(s.scanPoints)
		fs[k] = f(xs[k])
	}
	var minima []int
	for k := range xs {
		if (k == 0 || fs[k] < fs[k-1]) && (k == len(xs)-1 || fs[k] <= fs[k+1]) {
			minima = append(minima, k)
		}
	}
	sort.SliceStable(minima, func(i, j int) bool { return fs[minima[i]] < fs[minima[j]] })
	for _, k := range minima[:min(scanStarts, len(minima))] {
		out = append(out, xs[k])
	}
	return out
}

// local refines x0 with BFGS on a central-difference gradient and with
// Nelder-Mead, which copes with the kinks BFGS line searches fail on. The
// best location reached is kept either way.
func (s *Solver) local(f func(float64) float64, x0, f0 float64) (float64, float64) {
	fv := func(x []float64) float64 { return f(x[0]) }
	problem := optimize.Problem{
		Func: fv,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, fv, x, &fd.Settings{Formula: fd.Central})
		},
	}
	settings := func() *optimize.Settings {
		return &optimize.Settings{
			GradientThreshold: s.gradTol,
			MajorIterations:   defaultMajorIterations,
			Converger: &optimize.FunctionConverge{
				Absolute:   1e-14,
				Relative:   1e-14,
				Iterations: 20,
			},
		}
	}

	bestX, bestF := x0, f0
	methods := []optimize.Method{
		&optimize.BFGS{},
		&optimize.NelderMead{SimplexSize: math.Max(s.stepSize, s.stepScale*math.Abs(x0))},
	}
	for _, method := range methods {
		res, err := minimize(problem, []float64{x0}, settings(), method)
		if err != nil {
			metrics.RecordLocalSearchFailure()
		}
		if res == nil || len(res.X) == 0 || math.IsNaN(res.F) {
			continue
		}
		if res.F < bestF {
			bestX, bestF = res.X[0], res.F
		}
	}
	return bestX, bestF
}
