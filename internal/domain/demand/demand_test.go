package demand_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/bertrand/internal/domain/demand"
	"github.com/okian/bertrand/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDistributions(t *testing.T) {
	Convey("Given a uniform distribution with theta_max 10000", t, func() {
		d, err := demand.NewDistribution(demand.KindUniform, 0, 0, 10000)
		So(err, ShouldBeNil)

		Convey("Then it is exactly 0 below zero and exactly 1 at or above theta_max", func() {
			So(d.CDF(-1e-9), ShouldEqual, 0)
			So(d.CDF(-5000), ShouldEqual, 0)
			So(d.CDF(10000), ShouldEqual, 1)
			So(d.CDF(1e12), ShouldEqual, 1)
			So(d.CDF(math.Inf(1)), ShouldEqual, 1)
			So(d.CDF(math.Inf(-1)), ShouldEqual, 0)
		})

		Convey("Then it is linear in between", func() {
			So(d.CDF(0), ShouldEqual, 0)
			So(d.CDF(2500), ShouldAlmostEqual, 0.25, 1e-12)
			So(d.CDF(5000), ShouldAlmostEqual, 0.5, 1e-12)
		})

		Convey("Then NaN thresholds map to zero demand", func() {
			So(d.CDF(math.NaN()), ShouldEqual, 0)
		})
	})

	Convey("Given a truncated normal distribution", t, func() {
		d, err := demand.NewDistribution(demand.KindTruncatedNormal, 5000, 2000, 10000)
		So(err, ShouldBeNil)

		Convey("Then the boundaries are exact", func() {
			So(d.CDF(-1), ShouldEqual, 0)
			So(d.CDF(10000), ShouldEqual, 1)
			So(d.CDF(20000), ShouldEqual, 1)
		})

		Convey("Then it is symmetric around a centred mean and monotone", func() {
			So(d.CDF(5000), ShouldAlmostEqual, 0.5, 1e-9)
			prev := 0.0
			for theta := 0.0; theta < 10000; theta += 500 {
				v := d.CDF(theta)
				So(v, ShouldBeGreaterThanOrEqualTo, prev)
				So(v, ShouldBeBetweenOrEqual, 0, 1)
				prev = v
			}
		})
	})

	Convey("Given invalid distribution parameters", t, func() {
		Convey("Then construction fails with ErrInvalidDistribution", func() {
			_, err := demand.NewDistribution("cauchy", 0, 1, 10)
			So(errors.Is(err, demand.ErrInvalidDistribution), ShouldBeTrue)

			_, err = demand.NewDistribution(demand.KindUniform, 0, 0, 0)
			So(errors.Is(err, demand.ErrInvalidDistribution), ShouldBeTrue)

			_, err = demand.NewDistribution(demand.KindTruncatedNormal, 0, 0, 10)
			So(errors.Is(err, demand.ErrInvalidDistribution), ShouldBeTrue)
		})
	})
}

func TestModelShares(t *testing.T) {
	Convey("Given a uniform demand model", t, func() {
		m := demand.New(demand.Uniform{ThetaMax: 100}, false)
		a := [model.NumSellers]float64{0.9, 0.8, 0.7}

		Convey("When all prices are equal", func() {
			shares := m.Shares(model.PriceVector{5, 5, 5}, a)

			Convey("Then the top seller takes the whole market", func() {
				So(shares[0], ShouldEqual, 1)
				So(shares[1], ShouldEqual, 0)
				So(shares[2], ShouldEqual, 0)
			})
		})

		Convey("When prices are spread by quality", func() {
			p := model.PriceVector{30, 20, 10}
			shares := m.Shares(p, a)

			Convey("Then every slot gets the textbook vertical-differentiation share", func() {
				// sigma01 = sigma02 = sigma12 = 100
				So(m.Sigma(0, 1, p, a), ShouldAlmostEqual, 100, 1e-9)
				So(shares[0], ShouldAlmostEqual, 0, 1e-12)
			})
		})

		Convey("When prices are interior", func() {
			p := model.PriceVector{6, 3, 1}
			shares := m.Shares(p, a)

			Convey("Then shares follow the three threshold formulas", func() {
				s01 := (6.0 - 3.0) / (0.9 - 0.8)
				s02 := (6.0 - 1.0) / (0.9 - 0.7)
				s12 := (3.0 - 1.0) / (0.8 - 0.7)
				So(shares[0], ShouldAlmostEqual, 1-math.Max(s01, s02)/100, 1e-9)
				So(shares[1], ShouldAlmostEqual, (s01-s12)/100, 1e-9)
				So(shares[2], ShouldAlmostEqual, math.Min(s12, s02)/100, 1e-9)
			})
		})

		Convey("When prices are negative or absurd", func() {
			inputs := []model.PriceVector{
				{-5, 3, 1},
				{1e9, -1e9, 0},
				{0, 0, 0},
				{math.Inf(1), 1, 0},
			}

			Convey("Then shares stay within [0, 1] without panicking", func() {
				for _, p := range inputs {
					So(func() { m.Shares(p, a) }, ShouldNotPanic)
					for _, s := range m.Shares(p, a) {
						So(s, ShouldBeBetweenOrEqual, 0, 1)
					}
				}
			})
		})
	})

	Convey("Given rival prices and the uniform support", t, func() {
		m := demand.New(demand.Uniform{ThetaMax: 100}, false)
		a := [model.NumSellers]float64{0.9, 0.8, 0.7}
		p := model.PriceVector{6, 3, 1}

		Convey("Then the price ceiling is the top price plus the widest gap times theta_max", func() {
			So(m.PriceCeiling(p, a), ShouldAlmostEqual, 26, 1e-9)
		})

		Convey("Then no slot sells at or above the ceiling", func() {
			ceiling := m.PriceCeiling(p, a)
			for slot := 0; slot < model.NumSellers; slot++ {
				for _, x := range []float64{ceiling, ceiling + 1, 10 * ceiling} {
					q := p
					q[slot] = x
					So(m.Shares(q, a)[slot], ShouldEqual, 0)
				}
			}
		})

		Convey("Then non-finite prices do not poison the ceiling", func() {
			c := m.PriceCeiling(model.PriceVector{math.Inf(1), 3, math.NaN()}, a)
			So(c, ShouldAlmostEqual, 23, 1e-9)
		})
	})

	Convey("Given a squared-quality model", t, func() {
		m := demand.New(demand.Uniform{ThetaMax: 100}, true)
		a := [model.NumSellers]float64{0.9, 0.8, 0.7}

		Convey("Then sigma divides by the difference of squares", func() {
			p := model.PriceVector{6, 3, 1}
			So(m.Sigma(0, 1, p, a), ShouldAlmostEqual, 3/(0.81-0.64), 1e-9)
		})
	})
}

func TestValidateScores(t *testing.T) {
	Convey("Given a demand model", t, func() {
		m := demand.New(demand.Uniform{ThetaMax: 10}, false)

		Convey("Then strictly descending scores are accepted", func() {
			So(m.ValidateScores([model.NumSellers]float64{0.9, 0.8, 0.7}), ShouldBeNil)
		})

		Convey("Then equal scores are a model evaluation error", func() {
			err := m.ValidateScores([model.NumSellers]float64{0.8, 0.8, 0.7})
			So(errors.Is(err, demand.ErrModelEvaluation), ShouldBeTrue)
		})

		Convey("Then ascending scores are rejected", func() {
			err := m.ValidateScores([model.NumSellers]float64{0.7, 0.8, 0.9})
			So(errors.Is(err, demand.ErrModelEvaluation), ShouldBeTrue)
		})

		Convey("Then non-finite scores are rejected", func() {
			err := m.ValidateScores([model.NumSellers]float64{math.NaN(), 0.8, 0.7})
			So(errors.Is(err, demand.ErrModelEvaluation), ShouldBeTrue)
		})
	})
}
