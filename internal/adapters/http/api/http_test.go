package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/fieldtrials/internal/adapters/export"
	"github.com/okian/fieldtrials/internal/adapters/http/api"
	service "github.com/okian/fieldtrials/internal/app"
	"github.com/okian/fieldtrials/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const trialsCSV = `hibrido,cidadeUF,estado,macroRegiao,prod_media_corr_sc,conjuntaGeral
H,X-GO,GO,Centro,100,Conjunta
H,Y-MT,MT,Norte,90,Conjunta
C,X-GO,GO,Centro,95,Conjunta
C,Y-MT,MT,Norte,90,Estratégico
C,Z-PR,PR,Sul,70,Conjunta
A,X-GO,GO,Centro,,Conjunta
`

type errorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Missing []string `json:"missing"`
}

func newMux(svc *service.Service, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(svc, svc, opts...).Register(context.Background(), mux)
	return mux
}

func multipartBody(field, filename, content string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	So(err, ShouldBeNil)
	_, err = fw.Write([]byte(content))
	So(err, ShouldBeNil)
	So(mw.Close(), ShouldBeNil)
	return &buf, mw.FormDataContentType()
}

func do(mux http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func uploadFile(mux http.Handler, filename, content string) *httptest.ResponseRecorder {
	body, contentType := multipartBody("file", filename, content)
	req := httptest.NewRequest(http.MethodPost, "/sessions", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) errorBody {
	var e errorBody
	So(json.Unmarshal(w.Body.Bytes(), &e), ShouldBeNil)
	return e
}

func TestSessionRoutes(t *testing.T) {
	Convey("Given a started service behind the API", t, func() {
		svc := service.New()
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		mux := newMux(svc)

		Convey("When uploading a valid CSV", func() {
			w := uploadFile(mux, "trials.csv", trialsCSV)

			Convey("Then a session should be created", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				var res service.UploadResult
				So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
				So(res.SessionID, ShouldNotBeBlank)
				So(res.Filename, ShouldEqual, "trials.csv")
				So(res.Rows, ShouldEqual, 5)
				So(res.DroppedRows, ShouldEqual, 1)
				So(res.Groups, ShouldEqual, 2)

				Convey("And deleting it should return 204 then 404", func() {
					So(do(mux, http.MethodDelete, "/sessions/"+res.SessionID).Code, ShouldEqual, http.StatusNoContent)
					w := do(mux, http.MethodDelete, "/sessions/"+res.SessionID)
					So(w.Code, ShouldEqual, http.StatusNotFound)
					So(decodeError(w).Code, ShouldEqual, service.KindNotFound)
				})
			})
		})

		Convey("When the multipart field is missing", func() {
			body, contentType := multipartBody("upload", "trials.csv", trialsCSV)
			req := httptest.NewRequest(http.MethodPost, "/sessions", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the request should be rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				e := decodeError(w)
				So(e.Code, ShouldEqual, service.KindInvalidQuery)
				So(e.Message, ShouldContainSubstring, "file")
			})
		})

		Convey("When the body is not multipart", func() {
			req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(trialsCSV))
			req.Header.Set("Content-Type", "text/csv")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When uploading an unsupported format", func() {
			w := uploadFile(mux, "trials.txt", trialsCSV)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w).Code, ShouldEqual, service.KindUnsupportedFormat)
		})

		Convey("When required columns are missing", func() {
			w := uploadFile(mux, "trials.csv", "hibrido,estado\nH,GO\n")

			Convey("Then the missing columns should be listed", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				e := decodeError(w)
				So(e.Code, ShouldEqual, service.KindMissingColumns)
				So(e.Missing, ShouldContain, "location_id")
				So(e.Missing, ShouldContain, "productivity")
				So(e.Missing, ShouldNotContain, "group_id")
			})
		})

		Convey("When no row survives validation", func() {
			w := uploadFile(mux, "trials.csv", "hibrido,cidadeUF,estado,prod_media_corr_sc\nH,X-GO,GO,\n")
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(decodeError(w).Code, ShouldEqual, service.KindNoRows)
		})

		Convey("When the body exceeds the upload limit", func() {
			small := newMux(svc, api.WithMaxUploadBytes(64))
			w := uploadFile(small, "trials.csv", strings.Repeat(trialsCSV, 20))
			So(w.Code, ShouldBeIn, []int{http.StatusRequestEntityTooLarge, http.StatusBadRequest})
		})
	})

	Convey("Given a service that was never started", t, func() {
		mux := newMux(service.New())

		Convey("Then session routes should report unavailability", func() {
			w := uploadFile(mux, "trials.csv", trialsCSV)
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(decodeError(w).Code, ShouldEqual, service.KindNotStarted)
		})
	})
}

func TestAnalysisRoutes(t *testing.T) {
	Convey("Given an uploaded session", t, func() {
		svc := service.New(service.WithHighlightedGroups("H"))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		mux := newMux(svc)

		w := uploadFile(mux, "trials.csv", trialsCSV)
		So(w.Code, ShouldEqual, http.StatusCreated)
		var res service.UploadResult
		So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
		base := "/sessions/" + res.SessionID

		Convey("When requesting the overview", func() {
			w := do(mux, http.MethodGet, base+"/overview")

			Convey("Then counts should cover the kept rows", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var out struct {
					Trials int `json:"trials"`
					Groups int `json:"groups"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
				So(out.Trials, ShouldEqual, 5)
				So(out.Groups, ShouldEqual, 2)
			})
		})

		Convey("When filtering the overview by state", func() {
			w := do(mux, http.MethodGet, base+"/overview?state=GO&state=MT")
			var out struct {
				Trials int `json:"trials"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
			So(out.Trials, ShouldEqual, 4)
			So(do(mux, http.MethodGet, base+"/overview?state=all").Code, ShouldEqual, http.StatusOK)
		})

		Convey("When filtering on a column the upload lacks", func() {
			w := do(mux, http.MethodGet, base+"/overview?team=A")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w).Code, ShouldEqual, service.KindInvalidQuery)
		})

		Convey("When requesting the decision matrix", func() {
			w := do(mux, http.MethodGet, base+"/decision-matrix")

			Convey("Then H should rank above C", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var rows []struct {
					Rank    int     `json:"rank"`
					GroupID string  `json:"group_id"`
					Score   float64 `json:"final_score"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &rows), ShouldBeNil)
				So(len(rows), ShouldEqual, 2)
				So(rows[0].GroupID, ShouldEqual, "H")
				So(rows[0].Rank, ShouldEqual, 1)
				So(rows[1].GroupID, ShouldEqual, "C")
			})
		})

		Convey("When weights are malformed or invalid", func() {
			bad := do(mux, http.MethodGet, base+"/decision-matrix?w_mean=abc")
			So(bad.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(bad).Code, ShouldEqual, service.KindInvalidQuery)

			negative := do(mux, http.MethodGet, base+"/decision-matrix?w_max=-1")
			So(negative.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(negative).Code, ShouldEqual, service.KindInvalidWeights)
		})

		Convey("When exporting the decision matrix", func() {
			w := do(mux, http.MethodGet, base+"/decision-matrix.xlsx")

			Convey("Then a workbook should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, export.ContentType)
				So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, ".xlsx")
				f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
				So(err, ShouldBeNil)
				defer func() { _ = f.Close() }()
				So(len(f.GetSheetList()), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When comparing H against C", func() {
			w := do(mux, http.MethodGet, base+"/head-to-head?head=H&check=C")

			Convey("Then the shared locations should be classified", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var out service.HeadToHeadResult
				So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
				So(len(out.Rows), ShouldEqual, 2)
				So(out.Rows[0].LocationID, ShouldEqual, "X-GO")
				So(out.Summary.Total, ShouldEqual, 2)
				So(out.Summary.Wins, ShouldEqual, 1)
				So(out.Summary.Ties, ShouldEqual, 1)
				So(out.Summary.Losses, ShouldEqual, 0)
				So(out.Summary.BiggestLoss, ShouldBeNil)
			})
		})

		Convey("When a wide threshold is requested", func() {
			w := do(mux, http.MethodGet, base+"/head-to-head?head=H&check=C&threshold=10")
			var out service.HeadToHeadResult
			So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
			So(out.Summary.Ties, ShouldEqual, 2)
			So(out.Summary.Threshold, ShouldEqual, 10)
		})

		Convey("When head-to-head parameters are wrong", func() {
			missing := do(mux, http.MethodGet, base+"/head-to-head?head=H")
			So(missing.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(missing).Code, ShouldEqual, service.KindInvalidQuery)

			negative := do(mux, http.MethodGet, base+"/head-to-head?head=H&check=C&threshold=-1")
			So(negative.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(negative).Code, ShouldEqual, service.KindInvalidThreshold)

			disjoint := do(mux, http.MethodGet, base+"/head-to-head?head=H&check=C&state=PR")
			So(disjoint.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(decodeError(disjoint).Code, ShouldEqual, service.KindEmptyComparison)
		})

		Convey("When exporting a comparison", func() {
			w := do(mux, http.MethodGet, base+"/head-to-head.xlsx?head=H&check=C")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, export.ContentType)
		})

		Convey("When listing candidates", func() {
			w := do(mux, http.MethodGet, base+"/head-to-head/candidates")
			var out struct {
				Heads  []string `json:"heads"`
				Checks []string `json:"checks"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
			So(out.Heads, ShouldResemble, []string{"H"})
			So(out.Checks, ShouldResemble, []string{"C"})
		})

		Convey("When requesting the remaining JSON views", func() {
			for _, path := range []string{"/summaries", "/summaries?group_key=state", "/relative-to-mean", "/relative-production", "/heatmap"} {
				So(do(mux, http.MethodGet, base+path).Code, ShouldEqual, http.StatusOK)
			}
		})

		Convey("When requesting the dashboard", func() {
			w := do(mux, http.MethodGet, base+"/dashboard")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "text/html")
			So(w.Body.String(), ShouldContainSubstring, "<html")
		})

		Convey("When the session does not exist", func() {
			w := do(mux, http.MethodGet, "/sessions/unknown/overview")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w).Code, ShouldEqual, service.KindNotFound)
		})
	})
}

func TestOperationalRoutes(t *testing.T) {
	Convey("Given a started service behind the API", t, func() {
		svc := service.New()
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		mux := newMux(svc)

		Convey("When requesting stats", func() {
			w := do(mux, http.MethodGet, "/stats")

			Convey("Then service state should be reported", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var stats map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
				So(stats["started"], ShouldEqual, true)
				So(stats["activeSessions"], ShouldEqual, float64(0))
			})
		})

		Convey("When scraping healthz after a request", func() {
			_ = do(mux, http.MethodGet, "/stats")
			w := do(mux, http.MethodGet, "/healthz")

			Convey("Then the exposition should include HTTP metrics", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "fieldtrials_analytics_")
			})
		})

		Convey("When using a method a route does not accept", func() {
			w := do(mux, http.MethodPost, "/stats")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}
