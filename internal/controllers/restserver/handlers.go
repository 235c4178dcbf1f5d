package restserver

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wxcompute/rainodds/internal/climatology"
	"github.com/wxcompute/rainodds/internal/distribution"
	"github.com/wxcompute/rainodds/pkg/responseformat"
)

// Handlers contains all HTTP handlers for the REST server.
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance.
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// ListStations returns every station with stored climatology.
func (h *Handlers) ListStations(w http.ResponseWriter, req *http.Request) {
	stations, err := h.controller.store.ListStations(req.Context())
	if err != nil {
		h.controller.logger.Errorf("listing stations: %v", err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, "could not list stations")
		return
	}
	if stations == nil {
		stations = []climatology.Station{}
	}
	h.formatter.WriteResponse(w, req, stations)
}

// GetStationPMF returns the exact mass function for a station's year.
func (h *Handlers) GetStationPMF(w http.ResponseWriter, req *http.Request) {
	station := mux.Vars(req)["station"]

	dist, ok := h.stationDistribution(w, req, station)
	if !ok {
		return
	}

	h.formatter.WriteResponse(w, req, PMFResponse{
		Station:  station,
		Days:     dist.NumTrials(),
		Mean:     dist.Mean(),
		Variance: dist.Variance(),
		PMF:      dist.PMF(),
	})
}

// GetStationExceedance returns the exact P(rainy days > n) for a station.
func (h *Handlers) GetStationExceedance(w http.ResponseWriter, req *http.Request) {
	station := mux.Vars(req)["station"]

	n, err := strconv.Atoi(req.URL.Query().Get("n"))
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "query parameter n must be an integer")
		return
	}

	dist, ok := h.stationDistribution(w, req, station)
	if !ok {
		return
	}

	h.formatter.WriteResponse(w, req, ExceedanceResponse{
		Station:     station,
		Days:        dist.NumTrials(),
		Threshold:   n,
		Probability: dist.Survival(n),
	})
}

// GetStationSimulation runs the parallel Monte Carlo estimator for a station
// and reports it beside the exact value.
func (h *Handlers) GetStationSimulation(w http.ResponseWriter, req *http.Request) {
	station := mux.Vars(req)["station"]
	query := req.URL.Query()

	n, err := strconv.Atoi(query.Get("n"))
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "query parameter n must be an integer")
		return
	}

	trials := h.controller.restConfig.DefaultTrials
	if raw := query.Get("trials"); raw != "" {
		trials, err = strconv.Atoi(raw)
		if err != nil {
			h.formatter.WriteError(w, req, http.StatusBadRequest, "query parameter trials must be an integer")
			return
		}
	}
	if trials > maxTrials {
		trials = maxTrials
	}

	probabilities, ok := h.stationProbabilities(w, req, station)
	if !ok {
		return
	}

	response, err := h.simulate(probabilities, n, trials, station)
	if err != nil {
		h.writeKernelError(w, req, err)
		return
	}
	h.formatter.WriteResponse(w, req, response)
}

// PostExceedance computes the tail probability for a caller-supplied vector,
// optionally with a Monte Carlo cross-check when trials is positive.
func (h *Handlers) PostExceedance(w http.ResponseWriter, req *http.Request) {
	var body ExceedanceRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if body.Trials > 0 {
		trials := body.Trials
		if trials > maxTrials {
			trials = maxTrials
		}
		response, err := h.simulate(body.Probabilities, body.Threshold, trials, "")
		if err != nil {
			h.writeKernelError(w, req, err)
			return
		}
		h.formatter.WriteResponse(w, req, response)
		return
	}

	exact, err := distribution.ProbMoreThanN(body.Probabilities, body.Threshold)
	if err != nil {
		h.writeKernelError(w, req, err)
		return
	}
	h.formatter.WriteResponse(w, req, ExceedanceResponse{
		Days:        len(body.Probabilities),
		Threshold:   body.Threshold,
		Probability: exact,
	})
}

// simulate runs both estimators over one probability vector.
func (h *Handlers) simulate(p []float64, n, trials int, station string) (*SimulationResponse, error) {
	exact, err := distribution.ProbMoreThanN(p, n)
	if err != nil {
		return nil, err
	}
	estimate, err := distribution.EstimateProbMoreThanNParallel(p, n, trials, 0, time.Now().UnixNano())
	if err != nil {
		return nil, err
	}

	return &SimulationResponse{
		Station:       station,
		Days:          len(p),
		Threshold:     n,
		Trials:        trials,
		Estimate:      estimate,
		StandardError: distribution.StandardError(estimate, trials),
		Exact:         exact,
		AbsDifference: math.Abs(estimate - exact),
	}, nil
}

// stationProbabilities loads a station's vector, writing the HTTP error
// itself when the lookup fails.
func (h *Handlers) stationProbabilities(w http.ResponseWriter, req *http.Request, station string) ([]float64, bool) {
	probabilities, err := h.controller.store.GetDailyProbabilities(req.Context(), station)
	if err != nil {
		if errors.Is(err, climatology.ErrStationNotFound) {
			h.formatter.WriteError(w, req, http.StatusNotFound, err.Error())
		} else {
			h.controller.logger.Errorf("loading climatology for %s: %v", station, err)
			h.formatter.WriteError(w, req, http.StatusInternalServerError, "could not load station climatology")
		}
		return nil, false
	}
	return probabilities, true
}

// stationDistribution loads a station's vector and builds its distribution.
func (h *Handlers) stationDistribution(w http.ResponseWriter, req *http.Request, station string) (*distribution.PoissonBinomial, bool) {
	probabilities, ok := h.stationProbabilities(w, req, station)
	if !ok {
		return nil, false
	}
	dist, err := distribution.NewPoissonBinomial(probabilities)
	if err != nil {
		// Stored climatology violating [0,1] is a data problem, not a
		// caller problem.
		h.controller.logger.Errorf("invalid stored climatology for %s: %v", station, err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, "stored climatology is invalid")
		return nil, false
	}
	return dist, true
}

// writeKernelError maps kernel validation errors to 400s.
func (h *Handlers) writeKernelError(w http.ResponseWriter, req *http.Request, err error) {
	if errors.Is(err, distribution.ErrInvalidProbability) || errors.Is(err, distribution.ErrInvalidTrialCount) {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}
	h.controller.logger.Errorf("computing distribution: %v", err)
	h.formatter.WriteError(w, req, http.StatusInternalServerError, "computation failed")
}
