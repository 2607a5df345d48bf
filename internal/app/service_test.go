package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/okian/bertrand/internal/adapters/repository"
	service "github.com/okian/bertrand/internal/app"
	"github.com/okian/bertrand/internal/domain/coalition"
	"github.com/okian/bertrand/internal/domain/equilibrium"
	"github.com/okian/bertrand/internal/domain/model"
	"github.com/okian/bertrand/internal/domain/stability"
	"github.com/okian/bertrand/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// echoSolver earns 10 x score per slot so profits track the inputs.
type echoSolver struct{ fail bool }

func (e echoSolver) Solve(_ context.Context, a [model.NumSellers]float64) (equilibrium.Result, error) {
	if e.fail {
		return equilibrium.Result{}, &equilibrium.ConvergenceError{Cycles: 1000}
	}
	var res equilibrium.Result
	for i, v := range a {
		res.Prices[i] = 100 * v
		res.Profits[i] = 10 * v
	}
	res.Cycles = 2
	return res, nil
}

// grandFavoured gives every seller its best score in the grand coalition.
func grandFavoured(name string) model.Scenario {
	sc := model.Scenario{Name: name, Description: "grand coalition pays best"}
	for _, p := range model.AllPartitions {
		scores := [model.NumSellers]float64{0.5, 0.4, 0.3}
		if p == model.ABC {
			scores = [model.NumSellers]float64{0.9, 0.8, 0.7}
		}
		for i, s := range model.AllSellers {
			sc.Partitions[p][i] = model.Member{Seller: s, Score: scores[i]}
		}
	}
	return sc
}

func openStore(t *testing.T) *repository.SQLiteStore {
	store, err := repository.Open(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestServiceCompute(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with an echo solver and a sqlite store", t, func() {
		store := openStore(t)
		svc := service.New(
			service.WithBuilder(coalition.NewBuilder(echoSolver{})),
			service.WithStore(store),
		)

		Convey("When computing a scenario", func() {
			reports, err := svc.Compute(ctx, []model.Scenario{grandFavoured("grand")})

			Convey("Then one report with five outcomes is returned", func() {
				So(err, ShouldBeNil)
				So(reports, ShouldHaveLength, 1)
				r := reports[0]
				So(r.Scenario, ShouldEqual, "grand")
				So(r.RunID, ShouldNotEqual, uuid.Nil)
				So(r.Outcomes, ShouldHaveLength, model.NumPartitions)
				So(r.Prices.At(model.ABC, model.A), ShouldAlmostEqual, 90, 1e-9)
				So(r.Profits.At(model.A_B_C_, model.C), ShouldAlmostEqual, 3, 1e-9)
			})

			Convey("Then only the grand coalition is core stable", func() {
				v := reports[0].Verdicts
				So(v[model.ABC].Stable, ShouldBeTrue)
				So(v[model.ABC].Reason, ShouldEqual, stability.StableReason)
				for _, p := range model.AllPartitions[1:] {
					So(v[p].Stable, ShouldBeFalse)
					So(v[p].Reason, ShouldEqual, "Not stable due to ABC")
				}
			})

			Convey("Then loading returns the persisted run", func() {
				loaded, err := svc.Load(ctx, []model.Scenario{grandFavoured("grand")})
				So(err, ShouldBeNil)
				So(loaded[0].RunID, ShouldEqual, reports[0].RunID)
				So(loaded[0].Prices, ShouldResemble, reports[0].Prices)
				So(loaded[0].Verdicts, ShouldResemble, reports[0].Verdicts)
			})
		})

		Convey("When loading a scenario never computed", func() {
			_, err := svc.Load(ctx, []model.Scenario{grandFavoured("missing")})

			Convey("Then ErrNotFound surfaces", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})

	Convey("Given a solver that never converges", t, func() {
		svc := service.New(
			service.WithBuilder(coalition.NewBuilder(echoSolver{fail: true})),
			service.WithStore(openStore(t)),
		)

		Convey("When computing", func() {
			_, err := svc.Compute(ctx, []model.Scenario{grandFavoured("stuck")})

			Convey("Then the convergence failure is returned", func() {
				So(errors.Is(err, equilibrium.ErrConvergenceFailure), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service without collaborators", t, func() {
		svc := service.New()

		Convey("Then compute and load refuse to run", func() {
			_, err := svc.Compute(ctx, nil)
			So(errors.Is(err, service.ErrNotConfigured), ShouldBeTrue)
			_, err = svc.Load(ctx, nil)
			So(errors.Is(err, service.ErrNotConfigured), ShouldBeTrue)
		})
	})
}

func TestAssemble(t *testing.T) {
	Convey("Given a custom checker", t, func() {
		var seen model.Table
		svc := service.New(service.WithChecker(func(table *model.Table) [model.NumPartitions]model.Verdict {
			seen = *table
			var out [model.NumPartitions]model.Verdict
			for _, p := range model.AllPartitions {
				out[p] = model.Verdict{Partition: p, Stable: true, Reason: "stub"}
			}
			return out
		}))
		run := repository.Run{Outcomes: []model.Outcome{{
			Partition: model.AB_C,
			Prices:    model.PriceVector{3, 2, 1},
			Profits:   model.ProfitVector{30, 20, 10},
			Ordering:  model.Ordering{model.C, model.A, model.B},
		}}}

		Convey("When assembling", func() {
			r := svc.Assemble(grandFavoured("x"), run)

			Convey("Then the checker receives the seller-indexed profit table", func() {
				So(seen.At(model.AB_C, model.C), ShouldEqual, 30)
				So(seen.At(model.AB_C, model.A), ShouldEqual, 20)
				So(r.Prices.At(model.AB_C, model.B), ShouldEqual, 1)
				So(r.Verdicts[model.A_BC].Reason, ShouldEqual, "stub")
			})
		})
	})
}
