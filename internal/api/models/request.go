package models

// LOPFRequest is the request body for POST /api/v1/lopf.
//
// Exactly one of Scenario or ScenarioName must be set: Scenario supplies
// the network/solver configuration inline, ScenarioName selects one of the
// bundled example scenarios returned by GET /api/v1/scenarios.
type LOPFRequest struct {
	Scenario     *ScenarioPayload `json:"scenario,omitempty"`
	ScenarioName string           `json:"scenario_name,omitempty"`
	Options      LOPFOptions      `json:"options,omitempty"`
}

// ScenarioPayload mirrors config.ScenarioConfig's JSON/YAML shape for
// inline network submission over HTTP.
type ScenarioPayload struct {
	Network NetworkPayload `json:"network" binding:"required"`
	Solver  SolverPayload  `json:"solver" binding:"required"`
}

// NetworkPayload is deliberately untyped beyond what gin needs to route
// the request: the handler re-marshals it through config.NetworkConfig so
// the YAML and JSON scenario shapes never drift apart.
type NetworkPayload map[string]interface{}

// SolverPayload selects the formulation and solver backend options.
type SolverPayload struct {
	Formulation   string                 `json:"formulation" binding:"required"`
	PTDFTolerance float64                `json:"ptdf_tolerance,omitempty"`
	SkipPre       bool                   `json:"skip_pre,omitempty"`
	Options       map[string]interface{} `json:"options,omitempty"`
}

// LOPFOptions are per-request overrides that don't belong in the saved
// scenario itself.
type LOPFOptions struct {
	RejectSubOptimal bool `json:"reject_suboptimal,omitempty"`
}
