package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/bertrand/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.DBPath, convey.ShouldEqual, "bertrand.db")
			convey.So(cfg.Distribution, convey.ShouldEqual, "uniform")
			convey.So(cfg.ThetaMax, convey.ShouldEqual, 10000)
			convey.So(cfg.BaselinePrice, convey.ShouldEqual, 5.0)
			convey.So(cfg.RTol, convey.ShouldEqual, 1e-6)
			convey.So(cfg.MaxCycles, convey.ShouldEqual, 1000)
			convey.So(cfg.Timeout, convey.ShouldEqual, 5*time.Minute)
			convey.So(cfg.HopIterations, convey.ShouldEqual, 100)
			convey.So(cfg.HopStepScale, convey.ShouldEqual, 0.05)
			convey.So(cfg.ScanPoints, convey.ShouldEqual, 256)
			convey.So(cfg.Parallelism, convey.ShouldEqual, 1)
			convey.So(cfg.Scenarios, convey.ShouldBeEmpty)
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
