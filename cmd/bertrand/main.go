// Command bertrand computes coalition Bertrand-Nash equilibria for the
// configured scenarios and reports their core stability.
//
// With -calculate every scenario is solved and persisted; without it the
// latest persisted runs are loaded and reported. Everything else comes
// from configuration (see internal/config).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/okian/bertrand/internal/adapters/repository"
	service "github.com/okian/bertrand/internal/app"
	"github.com/okian/bertrand/internal/config"
	"github.com/okian/bertrand/internal/domain/bestresponse"
	"github.com/okian/bertrand/internal/domain/coalition"
	"github.com/okian/bertrand/internal/domain/demand"
	"github.com/okian/bertrand/internal/domain/equilibrium"
	"github.com/okian/bertrand/internal/domain/profit"
	"github.com/okian/bertrand/internal/report"
	"github.com/okian/bertrand/internal/scenario"
	"github.com/okian/bertrand/pkg/logger"
	"github.com/okian/bertrand/pkg/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		// Logger may not be initialized yet.
		os.Stderr.WriteString("bertrand: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("bertrand", flag.ContinueOnError)
	calculate := fs.Bool("calculate", false, "recompute and persist all scenarios before reporting")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithFormat(strings.ToLower(cfg.LogFormat))); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	scenarios, err := scenario.FromConfig(cfg.Scenarios)
	if err != nil {
		return err
	}

	store, err := repository.Open(ctx, cfg.DBPath, repository.WithLogger(log.Named("repository")))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "closing store", logger.Error(err))
		}
	}()

	opts := []service.Option{service.WithStore(store), service.WithLogger(log.Named("service"))}
	if *calculate {
		builder, err := newBuilder(cfg, log)
		if err != nil {
			return err
		}
		opts = append(opts, service.WithBuilder(builder))
	}
	svc := service.New(opts...)

	var reports []service.Report
	if *calculate {
		reports, err = svc.Compute(ctx, scenarios)
	} else {
		reports, err = svc.Load(ctx, scenarios)
	}
	if err != nil {
		return err
	}

	if err := report.Write(stdout, reports, strings.ToLower(cfg.ReportFormat)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		log.Debug(ctx, "metrics written", logger.String("path", cfg.MetricsFile))
	}
	return nil
}

// newBuilder assembles demand model, profit functions, best-response
// search and equilibrium iteration from configuration.
func newBuilder(cfg *config.Config, log logger.Logger) (*coalition.Builder, error) {
	dist, err := demand.NewDistribution(cfg.Distribution, cfg.ThetaMean, cfg.ThetaStdDev, cfg.ThetaMax)
	if err != nil {
		return nil, err
	}
	dm := demand.New(dist, cfg.Squared)

	responder := bestresponse.New(profit.New(dm),
		bestresponse.WithHops(cfg.HopIterations),
		bestresponse.WithStepSize(cfg.HopStepSize),
		bestresponse.WithTemperature(cfg.HopTemperature),
		bestresponse.WithStepScale(cfg.HopStepScale),
		bestresponse.WithScanPoints(cfg.ScanPoints),
		bestresponse.WithSeed(cfg.Seed),
		bestresponse.WithLogger(log.Named("bestresponse")),
	)
	iterator := equilibrium.New(responder,
		equilibrium.WithBaseline(cfg.BaselinePrice),
		equilibrium.WithTolerance(cfg.RTol, cfg.ATol),
		equilibrium.WithMaxCycles(cfg.MaxCycles),
		equilibrium.WithTimeout(cfg.Timeout),
		equilibrium.WithLogger(log.Named("equilibrium")),
	)
	return coalition.NewBuilder(iterator,
		coalition.WithValidator(dm),
		coalition.WithParallelism(cfg.Parallelism),
		coalition.WithLogger(log.Named("coalition")),
	), nil
}
