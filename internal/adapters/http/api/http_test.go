package api_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/okian/outbreak/internal/adapters/http/api"
	service "github.com/okian/outbreak/internal/app"
	"github.com/okian/outbreak/internal/domain/projection"
	"github.com/okian/outbreak/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// Mock implementations for testing
type mockDependencies struct {
	err      error
	calc     *service.Calculation
	lastReq  service.Request
	lastLock service.LockdownRequest
}

func (m *mockDependencies) Simulate(_ context.Context, req service.Request) (service.Calculation, error) {
	m.lastReq = req
	if m.err != nil {
		return service.Calculation{}, m.err
	}
	if m.calc != nil {
		return *m.calc, nil
	}
	return service.Calculation{Metadata: service.Metadata{ID: "mock", Model: service.ModelStrategies}}, nil
}

func (m *mockDependencies) SimulateLockdown(_ context.Context, req service.LockdownRequest) (service.Calculation, error) {
	m.lastLock = req
	if m.err != nil {
		return service.Calculation{}, m.err
	}
	return service.Calculation{Metadata: service.Metadata{ID: "mock", Model: service.ModelLockdown}}, nil
}

func (m *mockDependencies) Strategies(_ context.Context) []projection.Strategy {
	return projection.DefaultCatalog()
}

func (m *mockDependencies) Presets(_ context.Context) []projection.Preset {
	return projection.Presets()
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps api.Dependencies, stats api.StatsProvider) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, stats).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}})

		Convey("Then the health endpoint serves Prometheus metrics", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "outbreak_projection_")
		})

		Convey("Then the stats endpoint returns the provider stats", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
			var body map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body["started"], ShouldEqual, true)
		})

		Convey("Then the strategy catalog is listed", func() {
			w := do(mux, http.MethodGet, "/strategies", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body []projection.Strategy
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(len(body), ShouldEqual, 6)
			So(body[5].ID, ShouldEqual, "vacinas")
		})

		Convey("Then the presets are listed", func() {
			w := do(mux, http.MethodGet, "/presets", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body []projection.Preset
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(len(body), ShouldEqual, 3)
		})

		Convey("Then wrong methods are not found", func() {
			So(do(mux, http.MethodPost, "/strategies", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/presets", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/stats", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/simulate", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/simulate/lockdown", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodDelete, "/healthz", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then unknown paths are not found", func() {
			So(do(mux, http.MethodGet, "/leaderboard", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSimulateHandler(t *testing.T) {
	Convey("Given a server backed by a mock", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps, &mockStatsProvider{})

		Convey("When posting a full request", func() {
			w := do(mux, http.MethodPost, "/simulate", `{
				"initial_cases": 250,
				"total_weeks": 30,
				"initial_rate": 1.4,
				"preset": "leve",
				"mitigation": {"enabled": true, "start_week": 5, "transition_weeks": 3, "strategy_ids": ["vacinas"]}
			}`)

			Convey("Then every field reaches the service", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				r := deps.lastReq
				So(*r.InitialCases, ShouldEqual, 250.0)
				So(*r.TotalWeeks, ShouldEqual, 30)
				So(*r.InitialRate, ShouldEqual, 1.4)
				So(r.Preset, ShouldEqual, "leve")
				So(*r.Mitigation.Enabled, ShouldBeTrue)
				So(*r.Mitigation.StartWeek, ShouldEqual, 5)
				So(*r.Mitigation.TransitionWeeks, ShouldEqual, 3)
				So(r.Mitigation.StrategyIDs, ShouldResemble, []string{"vacinas"})
			})
		})

		Convey("When posting an empty body", func() {
			w := do(mux, http.MethodPost, "/simulate", "")

			Convey("Then an empty request is forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastReq.InitialCases, ShouldBeNil)
				So(deps.lastReq.Mitigation, ShouldBeNil)
			})
		})

		Convey("When posting malformed JSON", func() {
			w := do(mux, http.MethodPost, "/simulate", `{"initial_cases": `)

			Convey("Then it is rejected as a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, `"code":"bad_request"`)
			})
		})

		Convey("When posting a wrongly typed field", func() {
			w := do(mux, http.MethodPost, "/simulate/lockdown", `{"total_weeks": "many"}`)

			Convey("Then it is rejected as a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the service rejects the preset", func() {
			deps.err = projection.ErrUnknownPreset
			w := do(mux, http.MethodPost, "/simulate", `{"preset":"x"}`)

			Convey("Then it maps to 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "unknown_preset")
			})
		})

		Convey("When the service rejects the catalog", func() {
			deps.err = fmt.Errorf("simulate: %w", projection.ErrInvalidCatalog)
			w := do(mux, http.MethodPost, "/simulate", `{"catalog":[{"id":"x","multiplier":9}]}`)

			Convey("Then it maps to 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "invalid_catalog")
			})
		})

		Convey("When the projection overflows", func() {
			deps.err = fmt.Errorf("simulate strategies: %w", service.ErrOverflow)
			w := do(mux, http.MethodPost, "/simulate", `{}`)

			Convey("Then it maps to 422", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(w.Body.String(), ShouldContainSubstring, `"code":"overflow"`)
			})
		})

		Convey("When the result cannot be encoded", func() {
			deps.calc = &service.Calculation{Result: projection.Result{TotalBaseline: math.Inf(1)}}
			w := do(mux, http.MethodPost, "/simulate", `{}`)

			Convey("Then a JSON 500 is written", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				var body map[string]string
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["code"], ShouldEqual, "internal_error")
			})
		})

		Convey("When the service is not started", func() {
			deps.err = service.ErrNotStarted
			w := do(mux, http.MethodPost, "/simulate/lockdown", `{}`)

			Convey("Then it maps to 503", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		Convey("When the service fails otherwise", func() {
			deps.err = errors.New("boom")
			w := do(mux, http.MethodPost, "/simulate", `{}`)

			Convey("Then it maps to 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, "api.simulate: boom")
			})
		})

		Convey("When posting a lockdown request", func() {
			w := do(mux, http.MethodPost, "/simulate/lockdown", `{"initial_rate": 1.3, "lockdown": {"final_rate": 0.7, "start_week": 4}}`)

			Convey("Then it reaches the lockdown operation", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(*deps.lastLock.InitialRate, ShouldEqual, 1.3)
				So(*deps.lastLock.Lockdown.FinalRate, ShouldEqual, 0.7)
				So(*deps.lastLock.Lockdown.StartWeek, ShouldEqual, 4)
				So(deps.lastLock.Lockdown.Enabled, ShouldBeNil)
				So(w.Body.String(), ShouldContainSubstring, `"model":"lockdown"`)
			})
		})
	})
}

func TestSimulateEndToEnd(t *testing.T) {
	Convey("Given a server backed by a started service", t, func() {
		svc := service.New()
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		mux := newMux(svc, svc)

		Convey("When posting the default request", func() {
			w := do(mux, http.MethodPost, "/simulate", `{}`)

			Convey("Then a full calculation is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var calc service.Calculation
				So(json.Unmarshal(w.Body.Bytes(), &calc), ShouldBeNil)
				So(calc.Metadata.ID, ShouldNotBeEmpty)
				So(len(calc.Result.Mitigated), ShouldEqual, 20)
				So(len(calc.Result.Baseline), ShouldEqual, 20)
				So(calc.Result.ReductionPercent, ShouldBeGreaterThan, 0)
				So(len(calc.Summary), ShouldEqual, 2)
				So(calc.Summary[1].Title, ShouldEqual, "Without mitigation")
			})

			Convey("Then the wire names are stable", func() {
				body := w.Body.String()
				for _, name := range []string{
					`"calculation_id"`, `"mitigated_series"`, `"baseline_series"`,
					`"total_mitigated_cases"`, `"total_baseline_cases"`,
					`"reduction_percent"`, `"final_equivalent_rate"`, `"averted_cases"`,
				} {
					So(body, ShouldContainSubstring, name)
				}
			})
		})

		Convey("When posting an unknown preset", func() {
			w := do(mux, http.MethodPost, "/simulate", `{"preset":"maximo"}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "maximo")
			})
		})

		Convey("When posting a count far beyond the maximum", func() {
			payload := `{"initial_cases": 1e300, "total_weeks": 260, "initial_rate": 5}`
			first := do(mux, http.MethodPost, "/simulate", payload)
			second := do(mux, http.MethodPost, "/simulate", payload)

			Convey("Then it is clamped and answered every time", func() {
				So(first.Code, ShouldEqual, http.StatusOK)
				So(second.Code, ShouldEqual, http.StatusOK)
				var calc service.Calculation
				So(json.Unmarshal(second.Body.Bytes(), &calc), ShouldBeNil)
				So(calc.Metadata.Cached, ShouldBeTrue)
				So(calc.Params.InitialCases, ShouldEqual, 1e9)
			})
		})

		Convey("When posting a catalog with unusable multipliers", func() {
			for _, m := range []string{"1e300", "0", "-1", "1.5"} {
				w := do(mux, http.MethodPost, "/simulate",
					`{"catalog":[{"id":"distanciamento","name":"d","description":"d","multiplier":`+m+`}]}`)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "invalid_catalog")
			}

			Convey("Then nothing was simulated", func() {
				w := do(mux, http.MethodGet, "/stats", "")
				var body map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["simulations"], ShouldEqual, 0.0)
			})
		})

		Convey("When the stats are read after a simulation", func() {
			do(mux, http.MethodPost, "/simulate/lockdown", `{}`)
			w := do(mux, http.MethodGet, "/stats", "")

			Convey("Then the simulation is counted", func() {
				var body map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["simulations"], ShouldEqual, 1.0)
				So(body["started"], ShouldEqual, true)
			})
		})
	})
}
