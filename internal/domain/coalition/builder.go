package coalition

import (
	"context"
	"fmt"

	"github.com/okian/bertrand/internal/domain/equilibrium"
	"github.com/okian/bertrand/internal/domain/model"
	"github.com/okian/bertrand/pkg/logger"
	"github.com/okian/bertrand/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// Solver finds the equilibrium for rank-ordered quality scores.
type Solver interface {
	Solve(ctx context.Context, a [model.NumSellers]float64) (equilibrium.Result, error)
}

// Validator rejects rank-ordered scores the demand model cannot evaluate.
type Validator interface {
	ValidateScores(a [model.NumSellers]float64) error
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithParallelism solves up to n partitions concurrently. Values below 2
// keep the builder sequential.
func WithParallelism(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.parallelism = n
		}
	}
}

// WithValidator checks ranked scores before solving.
func WithValidator(v Validator) Option {
	return func(b *Builder) {
		b.validator = v
	}
}

// WithLogger sets the builder logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// Builder solves every coalition structure of a scenario.
type Builder struct {
	solver      Solver
	validator   Validator
	parallelism int
	logger      logger.Logger
}

// NewBuilder creates a Builder around an equilibrium solver.
func NewBuilder(s Solver, opts ...Option) *Builder {
	b := &Builder{
		solver:      s,
		parallelism: 1,
		logger:      logger.Get().Named("coalition"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build solves one partition: tie-break, rank, iterate, and keep the
// ordering needed to map results back to sellers.
func (b *Builder) Build(ctx context.Context, p model.PartitionID, members [model.NumSellers]model.Member) (model.Outcome, error) {
	if !p.Valid() {
		return model.Outcome{}, fmt.Errorf("partition %d: %w", int(p), model.ErrUnknownName)
	}
	if err := validateMembers(members); err != nil {
		return model.Outcome{}, fmt.Errorf("partition %s: %w", p, err)
	}
	adjusted, err := BreakTies(members)
	if err != nil {
		return model.Outcome{}, fmt.Errorf("partition %s: %w", p, err)
	}
	scores, ordering := Rank(adjusted)
	b.logger.Info(ctx, "solving partition",
		logger.String("partition", p.String()),
		logger.Any("ordering", ordering),
		logger.Any("scores", scores))

	if b.validator != nil {
		if err := b.validator.ValidateScores(scores); err != nil {
			return model.Outcome{}, fmt.Errorf("partition %s: %w", p, err)
		}
	}

	res, err := b.solver.Solve(ctx, scores)
	if err != nil {
		return model.Outcome{}, fmt.Errorf("partition %s: %w", p, err)
	}

	out := model.Outcome{
		Partition: p,
		Prices:    res.Prices,
		Profits:   res.Profits,
		Ordering:  ordering,
		Cycles:    res.Cycles,
	}
	b.logger.Info(ctx, "partition solved",
		logger.String("partition", p.String()),
		logger.Any("prices", out.PricesBySeller()),
		logger.Any("profits", out.ProfitsBySeller()),
		logger.Int("cycles", res.Cycles))
	return out, nil
}

// BuildScenario solves all five partitions and returns outcomes in
// partition order.
func (b *Builder) BuildScenario(ctx context.Context, sc model.Scenario) ([]model.Outcome, error) {
	outcomes := make([]model.Outcome, model.NumPartitions)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, b.parallelism))
	for _, p := range model.AllPartitions {
		g.Go(func() error {
			o, err := b.Build(gctx, p, sc.Partitions[p])
			if err != nil {
				metrics.RecordPartitionFailure(sc.Name)
				return fmt.Errorf("scenario %s: %w", sc.Name, err)
			}
			outcomes[p] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// Tables arranges outcomes into [partition][seller] price and profit tables.
func Tables(outcomes []model.Outcome) (prices, profits model.Table) {
	for _, o := range outcomes {
		if !o.Partition.Valid() {
			continue
		}
		prices[o.Partition] = o.PricesBySeller()
		profits[o.Partition] = o.ProfitsBySeller()
	}
	return prices, profits
}
