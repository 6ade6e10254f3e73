package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/fieldtrials/internal/config"
	"github.com/okian/fieldtrials/internal/domain/scoring"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.MaxUploadMB, convey.ShouldEqual, 32)
			convey.So(cfg.SessionTTL(), convey.ShouldEqual, 30*time.Minute)
			convey.So(cfg.MaxSessions, convey.ShouldEqual, 256)
			convey.So(cfg.Weights(), convey.ShouldResemble, scoring.DefaultWeights())
			convey.So(cfg.TieThreshold, convey.ShouldEqual, 1.0)
			convey.So(cfg.HighlightedGroups, convey.ShouldContain, "9504VIP3")
			convey.So(cfg.RelativeBands, convey.ShouldResemble, []float64{90, 95})
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then MaxUploadBytes should convert megabytes", func() {
			convey.So(cfg.MaxUploadBytes(), convey.ShouldEqual, int64(32<<20))
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one invalid setting", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"zero upload limit", func(c *config.Config) { c.MaxUploadMB = 0 }},
			{"zero ttl", func(c *config.Config) { c.SessionTTLSeconds = 0 }},
			{"zero sessions", func(c *config.Config) { c.MaxSessions = 0 }},
			{"negative threshold", func(c *config.Config) { c.TieThreshold = -0.5 }},
			{"negative weight", func(c *config.Config) { c.ScoringWeightMax = -1 }},
			{"descending bands", func(c *config.Config) { c.RelativeBands = []float64{95, 90} }},
			{"empty bands", func(c *config.Config) { c.RelativeBands = nil }},
		}

		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)
			err := cfg.Validate()

			convey.Convey("Then "+tc.name+" should be rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("Then a negative weight should also match the scoring kind", func() {
			cfg := config.New()
			cfg.ScoringWeightMean = -1
			convey.So(errors.Is(cfg.Validate(), scoring.ErrInvalidWeights), convey.ShouldBeTrue)
		})
	})
}
