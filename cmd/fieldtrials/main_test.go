package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/fieldtrials/internal/config"
	"github.com/okian/fieldtrials/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainWiring(t *testing.T) {
	convey.Convey("Given configuration from the environment", t, func() {
		t.Setenv("FIELDTRIALS_ADDR", ":18080")
		t.Setenv("FIELDTRIALS_TIE_THRESHOLD", "2.5")
		t.Setenv("FIELDTRIALS_HIGHLIGHTED_GROUPS", "H1,H2")
		t.Setenv("FIELDTRIALS_MAX_UPLOAD_MB", "1")

		ctx := context.Background()
		cfg, err := config.Load(ctx)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the service and mux are built from it", func() {
			svc := newService(logger.Get(), cfg)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()
			mux := newMux(ctx, cfg, svc)

			convey.Convey("Then the configured values should reach the service", func() {
				stats := svc.GetStats()
				convey.So(stats["tieThreshold"], convey.ShouldEqual, 2.5)
				convey.So(stats["highlightedGroups"], convey.ShouldResemble, []string{"H1", "H2"})
			})

			convey.Convey("Then API and docs routes should be served", func() {
				for _, path := range []string{"/", "/stats", "/healthz", "/api-docs", "/openapi.yaml"} {
					w := httptest.NewRecorder()
					mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
					convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				}
			})
		})
	})

	convey.Convey("Given invalid configuration", t, func() {
		t.Setenv("FIELDTRIALS_MAX_SESSIONS", "0")

		convey.Convey("Then run should fail before serving", func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			convey.So(run(ctx), convey.ShouldNotBeNil)
		})
	})
}

func TestConfigureLogging(t *testing.T) {
	convey.Convey("Given invalid logging settings", t, func() {
		cfg := config.New()
		cfg.LogFormat = "xml"
		cfg.LogLevel = "verbose"

		convey.Convey("Then configuring should fall back without panicking", func() {
			convey.So(func() { configureLogging(context.Background(), logger.Get(), cfg) }, convey.ShouldNotPanic)
		})

		convey.Reset(func() {
			_ = logger.SetFormat(logger.FormatText)
			_ = logger.SetLevelString("info")
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background updaters", t, func() {
		cfg := config.New()
		svc := newService(logger.Get(), cfg)

		convey.Convey("Then they should return once the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
