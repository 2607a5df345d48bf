package scenario_test

import (
	"errors"
	"testing"

	"github.com/okian/bertrand/internal/config"
	"github.com/okian/bertrand/internal/domain/model"
	"github.com/okian/bertrand/internal/scenario"
	. "github.com/smartystreets/goconvey/convey"
)

func fullConfig(name string) config.ScenarioConfig {
	c := config.ScenarioConfig{Name: name, Partitions: map[string][]config.MemberConfig{}}
	for _, p := range model.AllPartitions {
		c.Partitions[p.String()] = []config.MemberConfig{
			{Seller: "A", Score: 0.5}, {Seller: "B", Score: 0.6}, {Seller: "C", Score: 0.7},
		}
	}
	return c
}

func TestDefaults(t *testing.T) {
	Convey("Given the built-in datasets", t, func() {
		all := scenario.Defaults()

		Convey("Then there are two valid scenarios", func() {
			So(len(all), ShouldEqual, 2)
			So(all[0].Name, ShouldEqual, scenario.Quantity)
			So(all[1].Name, ShouldEqual, scenario.Dirichlet)
			for _, sc := range all {
				So(scenario.Validate(sc), ShouldBeNil)
			}
		})

		Convey("Then solo scores are shared across partitions", func() {
			q := all[0]
			So(q.Partitions[model.A_B_C_][0], ShouldResemble, model.Member{Seller: model.A, Score: .5004})
			So(q.Partitions[model.A_BC][0], ShouldResemble, q.Partitions[model.A_B_C_][0])
			So(q.Partitions[model.AB_C][2], ShouldResemble, q.Partitions[model.A_B_C_][2])
			So(q.Partitions[model.AC_B][1], ShouldResemble, q.Partitions[model.A_B_C_][1])
		})
	})
}

func TestFromConfig(t *testing.T) {
	Convey("Given no configured scenarios", t, func() {
		all, err := scenario.FromConfig(nil)

		Convey("Then the defaults are used", func() {
			So(err, ShouldBeNil)
			So(all, ShouldResemble, scenario.Defaults())
		})
	})

	Convey("Given a complete configured scenario", t, func() {
		all, err := scenario.FromConfig([]config.ScenarioConfig{fullConfig("toy")})

		Convey("Then it is converted", func() {
			So(err, ShouldBeNil)
			So(len(all), ShouldEqual, 1)
			So(all[0].Partitions[model.AC_B][2], ShouldResemble, model.Member{Seller: model.C, Score: 0.7})
		})
	})

	Convey("Given broken configured scenarios", t, func() {
		Convey("Then a missing partition is rejected", func() {
			c := fullConfig("toy")
			delete(c.Partitions, "ABC")
			_, err := scenario.FromConfig([]config.ScenarioConfig{c})
			So(errors.Is(err, scenario.ErrInvalidScenario), ShouldBeTrue)
		})

		Convey("Then an unknown partition name is rejected", func() {
			c := fullConfig("toy")
			c.Partitions["ABCD"] = c.Partitions["ABC"]
			_, err := scenario.FromConfig([]config.ScenarioConfig{c})
			So(errors.Is(err, scenario.ErrInvalidScenario), ShouldBeTrue)
			So(errors.Is(err, model.ErrUnknownName), ShouldBeTrue)
		})

		Convey("Then a repeated seller is rejected", func() {
			c := fullConfig("toy")
			c.Partitions["AB_C"][2].Seller = "A"
			_, err := scenario.FromConfig([]config.ScenarioConfig{c})
			So(errors.Is(err, scenario.ErrInvalidScenario), ShouldBeTrue)
		})

		Convey("Then scores outside (0, 1] are rejected", func() {
			c := fullConfig("toy")
			c.Partitions["ABC"] = []config.MemberConfig{{Seller: "A", Score: 0}, {Seller: "B", Score: 0.6}, {Seller: "C", Score: 0.7}}
			_, err := scenario.FromConfig([]config.ScenarioConfig{c})
			So(errors.Is(err, scenario.ErrInvalidScenario), ShouldBeTrue)
		})

		Convey("Then duplicate names are rejected", func() {
			_, err := scenario.FromConfig([]config.ScenarioConfig{fullConfig("x"), fullConfig("x")})
			So(errors.Is(err, scenario.ErrInvalidScenario), ShouldBeTrue)
		})
	})
}
