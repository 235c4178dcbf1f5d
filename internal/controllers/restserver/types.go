package restserver

// PMFResponse carries the full exact mass function for a station.
type PMFResponse struct {
	Station  string    `json:"station"`
	Days     int       `json:"days"`
	Mean     float64   `json:"mean"`
	Variance float64   `json:"variance"`
	PMF      []float64 `json:"pmf"`
}

// ExceedanceResponse carries an exact tail probability.
type ExceedanceResponse struct {
	Station     string  `json:"station,omitempty"`
	Days        int     `json:"days"`
	Threshold   int     `json:"threshold"`
	Probability float64 `json:"probability"`
}

// SimulationResponse carries a Monte Carlo estimate beside the exact value
// so callers can see the agreement directly.
type SimulationResponse struct {
	Station       string  `json:"station,omitempty"`
	Days          int     `json:"days"`
	Threshold     int     `json:"threshold"`
	Trials        int     `json:"trials"`
	Estimate      float64 `json:"estimate"`
	StandardError float64 `json:"standard_error"`
	Exact         float64 `json:"exact"`
	AbsDifference float64 `json:"abs_difference"`
}

// ExceedanceRequest is the POST body for ad-hoc probability vectors.
type ExceedanceRequest struct {
	Probabilities []float64 `json:"probabilities"`
	Threshold     int       `json:"threshold"`

	// Trials, when positive, additionally runs the Monte Carlo estimator.
	Trials int `json:"trials,omitempty"`
}
