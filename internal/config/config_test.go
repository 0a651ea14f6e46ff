package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/podium/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Trials, convey.ShouldEqual, 10_000)
			convey.So(cfg.MaxTrials, convey.ShouldEqual, 1_000_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.BatchSize, convey.ShouldEqual, 250)
			convey.So(cfg.Seed, convey.ShouldEqual, 0)
			convey.So(cfg.ProgressSteps, convey.ShouldEqual, 20)
			convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"*"})
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one bad field each", t, func() {
		cases := map[string]func(*config.Config){
			"addr must not be empty":          func(c *config.Config) { c.Addr = " " },
			"trials must be positive":         func(c *config.Config) { c.Trials = 0 },
			"max_trials must be at least":     func(c *config.Config) { c.MaxTrials = c.Trials - 1 },
			"batch_size must be positive":     func(c *config.Config) { c.BatchSize = -1 },
			"max_competitors must be":         func(c *config.Config) { c.MaxCompetitors = 0 },
			"progress_steps must not be":      func(c *config.Config) { c.ProgressSteps = -1 },
			"rate limits must not be":         func(c *config.Config) { c.RateLimitBurst = -3 },
			"log_format must be text or json": func(c *config.Config) { c.LogFormat = "xml" },
		}

		for msg, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, msg)
		}
	})
}
