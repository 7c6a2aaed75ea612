package models

// LOPFResponse is the response body for POST /api/v1/lopf.
//
// Objective is not filled in by handlers.BuildLOPFResponse, so it is
// always 0 in the served response.
type LOPFResponse struct {
	Status      string                 `json:"status"`
	Objective   float64                `json:"objective"`
	Formulation string                 `json:"formulation"`
	Buses       []BusResult            `json:"buses"`
	Generators  []GeneratorResult      `json:"generators,omitempty"`
	StorageUnits []StorageUnitResult   `json:"storage_units,omitempty"`
	Stores      []StoreResult          `json:"stores,omitempty"`
	Loads       []LoadResult           `json:"loads,omitempty"`
	Links       []LinkResult           `json:"links,omitempty"`
	Branches    []BranchResult         `json:"branches,omitempty"`
}

// Series is a per-snapshot scalar series, JSON-keyed by snapshot name.
type Series map[string]float64

type BusResult struct {
	Name          string `json:"name"`
	P             Series `json:"p"`
	VAng          Series `json:"v_ang,omitempty"`
	VMagPu        Series `json:"v_mag_pu,omitempty"`
	MarginalPrice Series `json:"marginal_price,omitempty"`
}

type GeneratorResult struct {
	Name    string  `json:"name"`
	Bus     string  `json:"bus"`
	P       Series  `json:"p"`
	PNomOpt float64 `json:"p_nom_opt"`
}

type StorageUnitResult struct {
	Name          string  `json:"name"`
	Bus           string  `json:"bus"`
	P             Series  `json:"p"`
	StateOfCharge Series  `json:"state_of_charge"`
	Spill         Series  `json:"spill,omitempty"`
	PNomOpt       float64 `json:"p_nom_opt"`
}

type StoreResult struct {
	Name    string  `json:"name"`
	Bus     string  `json:"bus"`
	P       Series  `json:"p"`
	E       Series  `json:"e"`
	ENomOpt float64 `json:"e_nom_opt"`
}

type LoadResult struct {
	Name string `json:"name"`
	Bus  string `json:"bus"`
	P    Series `json:"p"`
}

type LinkResult struct {
	Name    string  `json:"name"`
	Bus0    string  `json:"bus0"`
	Bus1    string  `json:"bus1"`
	P0      Series  `json:"p0"`
	P1      Series  `json:"p1"`
	PNomOpt float64 `json:"p_nom_opt"`
}

type BranchResult struct {
	Type    string  `json:"type"`
	Name    string  `json:"name"`
	Bus0    string  `json:"bus0"`
	Bus1    string  `json:"bus1"`
	P0      Series  `json:"p0"`
	P1      Series  `json:"p1"`
	SNomOpt float64 `json:"s_nom_opt"`
}

// FormulationInfo describes one recognized passive-branch-flow formulation.
type FormulationInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// ScenarioInfo describes one bundled example scenario.
type ScenarioInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Formulation string `json:"formulation"`
}

// ErrorResponse is the envelope every API error is returned in.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code alongside the message.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
