package restserver

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/wxcompute/rainodds/internal/climatology"
	"github.com/wxcompute/rainodds/pkg/config"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()

	store, err := climatology.NewSQLiteStore(":memory:", nil)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	if _, err := store.UpsertStation(ctx, "vancouver", []float64{1, 1, 1}); err != nil {
		t.Fatalf("failed to seed station: %v", err)
	}
	if _, err := store.UpsertStation(ctx, "halfcoin", []float64{0.5, 0.5}); err != nil {
		t.Fatalf("failed to seed station: %v", err)
	}

	var wg sync.WaitGroup
	ctrl, err := NewController(ctx, &wg, config.RESTServerData{}, store, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("failed to create controller: %v", err)
	}
	return ctrl
}

func doRequest(t *testing.T, ctrl *Controller, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestListStations(t *testing.T) {
	ctrl := newTestController(t)

	rec := doRequest(t, ctrl, http.MethodGet, "/api/stations", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var stations []climatology.Station
	if err := json.Unmarshal(rec.Body.Bytes(), &stations); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(stations) != 2 {
		t.Fatalf("expected 2 stations, got %d", len(stations))
	}
	if stations[0].Name != "halfcoin" || stations[1].Name != "vancouver" {
		t.Errorf("unexpected station order: %+v", stations)
	}
}

func TestGetStationPMF(t *testing.T) {
	ctrl := newTestController(t)

	rec := doRequest(t, ctrl, http.MethodGet, "/api/stations/halfcoin/pmf", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp PMFResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if resp.Days != 2 {
		t.Errorf("expected 2 days, got %d", resp.Days)
	}
	want := []float64{0.25, 0.5, 0.25}
	for k := range want {
		if math.Abs(resp.PMF[k]-want[k]) > 1e-12 {
			t.Errorf("pmf[%d]: expected %v, got %v", k, want[k], resp.PMF[k])
		}
	}
	if math.Abs(resp.Mean-1.0) > 1e-12 {
		t.Errorf("expected mean 1.0, got %v", resp.Mean)
	}
}

func TestGetStationExceedance(t *testing.T) {
	ctrl := newTestController(t)

	rec := doRequest(t, ctrl, http.MethodGet, "/api/stations/vancouver/exceedance?n=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ExceedanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if resp.Probability != 1.0 {
		t.Errorf("rains every day: expected probability 1.0, got %v", resp.Probability)
	}
}

func TestGetStationExceedanceBadThreshold(t *testing.T) {
	ctrl := newTestController(t)

	rec := doRequest(t, ctrl, http.MethodGet, "/api/stations/vancouver/exceedance?n=soggy", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGetStationUnknown(t *testing.T) {
	ctrl := newTestController(t)

	rec := doRequest(t, ctrl, http.MethodGet, "/api/stations/atlantis/exceedance?n=1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestGetStationSimulation(t *testing.T) {
	ctrl := newTestController(t)

	rec := doRequest(t, ctrl, http.MethodGet, "/api/stations/vancouver/simulate?n=2&trials=200", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp SimulationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if resp.Trials != 200 {
		t.Errorf("expected 200 trials, got %d", resp.Trials)
	}
	// Certain rain leaves nothing to chance for any seed.
	if resp.Estimate != 1.0 || resp.Exact != 1.0 {
		t.Errorf("expected estimate and exact 1.0, got %v and %v", resp.Estimate, resp.Exact)
	}
}

func TestPostExceedance(t *testing.T) {
	ctrl := newTestController(t)

	rec := doRequest(t, ctrl, http.MethodPost, "/api/exceedance",
		`{"probabilities": [0.5, 0.5], "threshold": 1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ExceedanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if math.Abs(resp.Probability-0.25) > 1e-12 {
		t.Errorf("expected 0.25, got %v", resp.Probability)
	}
}

func TestPostExceedanceInvalidProbability(t *testing.T) {
	ctrl := newTestController(t)

	rec := doRequest(t, ctrl, http.MethodPost, "/api/exceedance",
		`{"probabilities": [1.5], "threshold": 0}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMsgpackContentType(t *testing.T) {
	ctrl := newTestController(t)

	rec := doRequest(t, ctrl, http.MethodGet, "/api/stations?format=msgpack", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-msgpack" {
		t.Errorf("expected msgpack content type, got %q", ct)
	}
}
