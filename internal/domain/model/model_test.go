package model_test

import (
	"errors"
	"testing"

	"github.com/okian/bertrand/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSellers(t *testing.T) {
	Convey("Given seller names", t, func() {
		Convey("Then names and indices parse", func() {
			for in, want := range map[string]model.Seller{"A": model.A, "b": model.B, " C ": model.C, "1": model.B} {
				got, err := model.ParseSeller(in)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}
		})

		Convey("Then unknown names are rejected", func() {
			_, err := model.ParseSeller("D")
			So(errors.Is(err, model.ErrUnknownName), ShouldBeTrue)
			So(model.Seller(7).Valid(), ShouldBeFalse)
			So(model.Seller(7).String(), ShouldEqual, "Seller(7)")
		})
	})
}

func TestPartitions(t *testing.T) {
	Convey("Given the five coalition structures", t, func() {
		Convey("Then table order matches the canonical names", func() {
			names := []string{}
			for _, p := range model.AllPartitions {
				names = append(names, p.String())
			}
			So(names, ShouldResemble, []string{"ABC", "AB_C", "AC_B", "A_BC", "A_B_C_"})
		})

		Convey("Then groups describe each structure", func() {
			So(model.AB_C.Groups(), ShouldResemble, [][]model.Seller{{model.A, model.B}, {model.C}})
			So(model.A_BC.HasGroup([]model.Seller{model.C, model.B}), ShouldBeTrue)
			So(model.A_BC.HasGroup([]model.Seller{model.A, model.B}), ShouldBeFalse)
			So(model.ABC.HasGroup([]model.Seller{model.A}), ShouldBeFalse)
			So(model.A_B_C_.HasGroup([]model.Seller{model.B}), ShouldBeTrue)
		})

		Convey("Then Groups returns a copy", func() {
			g := model.ABC.Groups()
			g[0][0] = model.C
			So(model.ABC.Groups()[0][0], ShouldEqual, model.A)
		})

		Convey("Then names round-trip through text encoding", func() {
			for _, p := range model.AllPartitions {
				raw, err := p.MarshalText()
				So(err, ShouldBeNil)
				var back model.PartitionID
				So(back.UnmarshalText(raw), ShouldBeNil)
				So(back, ShouldEqual, p)
			}
			_, err := model.PartitionID(9).MarshalText()
			So(errors.Is(err, model.ErrUnknownName), ShouldBeTrue)
		})
	})
}

func TestOutcome(t *testing.T) {
	Convey("Given an outcome ranked C, A, B", t, func() {
		o := model.Outcome{
			Partition: model.AC_B,
			Prices:    model.PriceVector{30, 20, 10},
			Profits:   model.ProfitVector{3, 2, 1},
			Ordering:  model.Ordering{model.C, model.A, model.B},
		}

		Convey("Then values map back to seller identity", func() {
			So(o.PricesBySeller(), ShouldResemble, [model.NumSellers]float64{20, 10, 30})
			So(o.ProfitsBySeller(), ShouldResemble, [model.NumSellers]float64{2, 1, 3})
		})

		Convey("Then mapping back to rank order recovers the outcome", func() {
			So(o.Ordering.ToRank(o.PricesBySeller()), ShouldResemble, [model.NumSellers]float64(o.Prices))
			So(o.Ordering.ToRank(o.ProfitsBySeller()), ShouldResemble, [model.NumSellers]float64(o.Profits))
		})

		Convey("Then a table stores them by partition and seller", func() {
			var tbl model.Table
			tbl.Set(o.Partition, model.C, 3)
			So(tbl.At(model.AC_B, model.C), ShouldEqual, 3)
			So(tbl.At(model.ABC, model.C), ShouldEqual, 0)
		})
	})
}
