package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a swagger handler", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()

		convey.Convey("When registering the swagger handler", func() {
			Register(ctx, mux)

			convey.Convey("Then it should handle /openapi.yaml route", func() {
				req := httptest.NewRequest("GET", "/openapi.yaml", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
				convey.So(w.Body.String(), convey.ShouldStartWith, "openapi: 3")
			})

			convey.Convey("And it should handle /api-docs route", func() {
				req := httptest.NewRequest("GET", "/api-docs", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "Field Trials API - ReDoc")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, RedocURL)
			})
		})

		convey.Convey("When registering on a nil mux", func() {
			convey.So(func() { Register(ctx, nil) }, convey.ShouldPanic)
		})
	})
}

func TestOpenAPIDocumentsEveryRoute(t *testing.T) {
	convey.Convey("Given the embedded OpenAPI document", t, func() {
		doc := string(OpenAPI)

		convey.Convey("Then every public path should be described", func() {
			for _, path := range []string{
				"/sessions:",
				"/sessions/{id}:",
				"/sessions/{id}/overview:",
				"/sessions/{id}/summaries:",
				"/sessions/{id}/relative-to-mean:",
				"/sessions/{id}/decision-matrix:",
				"/sessions/{id}/decision-matrix.xlsx:",
				"/sessions/{id}/head-to-head:",
				"/sessions/{id}/head-to-head.xlsx:",
				"/sessions/{id}/head-to-head/candidates:",
				"/sessions/{id}/relative-production:",
				"/sessions/{id}/heatmap:",
				"/sessions/{id}/dashboard:",
				"/healthz:",
				"/stats:",
			} {
				convey.So(strings.Contains(doc, "  "+path+"\n"), convey.ShouldBeTrue)
			}
		})
	})
}
