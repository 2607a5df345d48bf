// Package service wires the coalition builder, the stability checker and
// the results store into the two things the command does: compute and
// persist every scenario, or load the latest persisted runs and report
// them.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okian/bertrand/internal/adapters/repository"
	"github.com/okian/bertrand/internal/domain/coalition"
	"github.com/okian/bertrand/internal/domain/model"
	"github.com/okian/bertrand/internal/domain/stability"
	"github.com/okian/bertrand/pkg/logger"
	"github.com/okian/bertrand/pkg/metrics"
)

// ErrNotConfigured is returned when a required collaborator is missing.
var ErrNotConfigured = errors.New("service not configured")

// Builder solves all partitions of a scenario.
type Builder interface {
	BuildScenario(ctx context.Context, sc model.Scenario) ([]model.Outcome, error)
}

// Checker produces stability verdicts from a [partition][seller] profit table.
type Checker func(table *model.Table) [model.NumPartitions]model.Verdict

// Report is everything printed for one scenario.
type Report struct {
	Scenario    string                             `json:"scenario"`
	Description string                             `json:"description"`
	RunID       uuid.UUID                          `json:"run_id"`
	CreatedAt   time.Time                          `json:"created_at"`
	Outcomes    []model.Outcome                    `json:"outcomes"`
	Prices      model.Table                        `json:"prices"`
	Profits     model.Table                        `json:"profits"`
	Verdicts    [model.NumPartitions]model.Verdict `json:"verdicts"`
}

// Service runs scenarios end to end.
type Service struct {
	builder Builder
	store   repository.Store
	checker Checker
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithBuilder sets the partition builder used by Compute.
func WithBuilder(b Builder) Option {
	return func(s *Service) {
		s.builder = b
	}
}

// WithStore sets the results store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		s.store = st
	}
}

// WithChecker replaces the stability checker.
func WithChecker(c Checker) Option {
	return func(s *Service) {
		if c != nil {
			s.checker = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. The stability checker defaults to stability.Check.
func New(opts ...Option) *Service {
	s := &Service{
		checker: stability.Check,
		logger:  logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compute solves every scenario, persists each run and returns the reports
// in input order. The first failing scenario aborts the whole call.
func (s *Service) Compute(ctx context.Context, scenarios []model.Scenario) ([]Report, error) {
	if s.builder == nil || s.store == nil {
		return nil, fmt.Errorf("compute: %w", ErrNotConfigured)
	}
	reports := make([]Report, 0, len(scenarios))
	for _, sc := range scenarios {
		s.logger.Info(ctx, "computing scenario",
			logger.String("scenario", sc.Name),
			logger.String("description", sc.Description))

		start := time.Now()
		outcomes, err := s.builder.BuildScenario(ctx, sc)
		if err != nil {
			return nil, err
		}
		run := repository.Run{Scenario: sc.Name, CreatedAt: time.Now().UTC(), Outcomes: outcomes}
		id, err := s.store.Save(ctx, run)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		run.ID = id

		s.logger.Info(ctx, "scenario persisted",
			logger.String("scenario", sc.Name),
			logger.String("run", id.String()),
			logger.Duration("elapsed", time.Since(start)))
		reports = append(reports, s.Assemble(sc, run))
	}
	return reports, nil
}

// Load reads the latest persisted run of every scenario. A scenario that
// was never computed yields repository.ErrNotFound.
func (s *Service) Load(ctx context.Context, scenarios []model.Scenario) ([]Report, error) {
	if s.store == nil {
		return nil, fmt.Errorf("load: %w", ErrNotConfigured)
	}
	reports := make([]Report, 0, len(scenarios))
	for _, sc := range scenarios {
		run, err := s.store.Latest(ctx, sc.Name)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		s.logger.Debug(ctx, "loaded run",
			logger.String("scenario", sc.Name),
			logger.String("run", run.ID.String()))
		reports = append(reports, s.Assemble(sc, run))
	}
	return reports, nil
}

// Assemble derives the seller-indexed tables and verdicts of a run and
// publishes the verdicts as metrics.
func (s *Service) Assemble(sc model.Scenario, run repository.Run) Report {
	prices, profits := coalition.Tables(run.Outcomes)
	verdicts := s.checker(&profits)
	for _, v := range verdicts {
		metrics.SetStabilityVerdict(sc.Name, v.Partition.String(), v.Stable)
	}
	return Report{
		Scenario:    sc.Name,
		Description: sc.Description,
		RunID:       run.ID,
		CreatedAt:   run.CreatedAt,
		Outcomes:    run.Outcomes,
		Prices:      prices,
		Profits:     profits,
		Verdicts:    verdicts,
	}
}
