package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lopf/internal/api/models"
	"lopf/internal/config"
	"lopf/internal/model"
	"lopf/internal/opf"
	"lopf/internal/scenario"
	"lopf/internal/solver"
	"lopf/internal/solver/refsolver"
	"lopf/internal/topology"
)

// LOPFHandler serves POST /api/v1/lopf: build a network from either an
// inline scenario payload or a bundled scenario name, solve it, and
// report the resulting dispatch.
type LOPFHandler struct{}

func NewLOPFHandler() *LOPFHandler { return &LOPFHandler{} }

func (h *LOPFHandler) Solve(c *gin.Context) {
	var req models.LOPFRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "InvalidRequest", err.Error(), nil)
		return
	}

	var (
		net         *model.Network
		snapshots   []model.Snapshot
		formulation opf.Formulation
	)

	switch {
	case req.ScenarioName != "" && req.Scenario != nil:
		writeError(c, http.StatusBadRequest, "InvalidRequest", "only one of scenario or scenario_name may be set", nil)
		return
	case req.ScenarioName != "":
		b, ok := scenario.ByName(req.ScenarioName)
		if !ok {
			writeError(c, http.StatusNotFound, "UnknownScenario", "no bundled scenario named "+req.ScenarioName, nil)
			return
		}
		net, snapshots = b.Build()
		formulation = b.Formulation
	case req.Scenario != nil:
		netConfig, err := decodeNetworkPayload(req.Scenario.Network)
		if err != nil {
			writeError(c, http.StatusBadRequest, "InvalidNetwork", err.Error(), nil)
			return
		}
		net, err = netConfig.ToNetwork()
		if err != nil {
			writeError(c, http.StatusBadRequest, "InvalidNetwork", err.Error(), nil)
			return
		}
		snapshots = net.Snapshots
		formulation = opf.Formulation(req.Scenario.Solver.Formulation)
	default:
		writeError(c, http.StatusBadRequest, "InvalidRequest", "one of scenario or scenario_name is required", nil)
		return
	}

	if err := net.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "InvalidNetwork", err.Error(), nil)
		return
	}

	runOpts := solver.RunOptions{
		Formulation:      formulation,
		SkipPre:          false,
		Topology:         topology.Reference{},
		Solver:           refsolver.New(),
		RejectSubOptimal: req.Options.RejectSubOptimal,
	}
	if req.Scenario != nil {
		runOpts.PTDFTolerance = req.Scenario.Solver.PTDFTolerance
		runOpts.SkipPre = req.Scenario.Solver.SkipPre
	}

	if err := solver.Run(context.Background(), net, snapshots, runOpts); err != nil {
		writeSolveError(c, err)
		return
	}

	c.JSON(http.StatusOK, BuildLOPFResponse(net, formulation))
}

func decodeNetworkPayload(payload models.NetworkPayload) (config.NetworkConfig, error) {
	return config.DecodeNetwork(payload)
}

func writeSolveError(c *gin.Context, err error) {
	var (
		infeasible  *solver.InfeasibleOrUnboundedLPError
		subOptimal  *solver.SolverSubOptimalError
		unsupported *opf.ErrUnsupportedFormulation
		topoErr     *topology.Error
	)
	switch {
	case errors.As(err, &infeasible):
		writeError(c, http.StatusUnprocessableEntity, "InfeasibleOrUnboundedLP", err.Error(), nil)
	case errors.As(err, &subOptimal):
		writeError(c, http.StatusUnprocessableEntity, "SolverSubOptimal", err.Error(), nil)
	case errors.As(err, &unsupported):
		writeError(c, http.StatusBadRequest, "UnsupportedFormulation", err.Error(), nil)
	case errors.As(err, &topoErr):
		writeError(c, http.StatusBadRequest, "TopologyError", err.Error(), nil)
	default:
		writeError(c, http.StatusInternalServerError, "SolveFailed", err.Error(), nil)
	}
}

func writeError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, models.ErrorResponse{Error: models.ErrorDetail{Code: code, Message: message, Details: details}})
}

func toSeries(s model.Series) models.Series {
	out := make(models.Series, len(s))
	for sn, v := range s {
		out[string(sn)] = v
	}
	return out
}

// BuildLOPFResponse maps a solved network's element tables onto the
// response shape both the HTTP handler and the CLI's --out JSON share.
func BuildLOPFResponse(net *model.Network, formulation opf.Formulation) models.LOPFResponse {
	resp := models.LOPFResponse{
		Status:      string(solver.StatusOptimal),
		Formulation: string(formulation),
	}

	for _, name := range sortedNames(busNames(net)) {
		b := net.Buses[name]
		resp.Buses = append(resp.Buses, models.BusResult{
			Name:          name,
			P:             toSeries(b.Result.P),
			VAng:          toSeries(b.Result.VAng),
			VMagPu:        toSeries(b.Result.VMagPu),
			MarginalPrice: toSeries(b.Result.MarginalPrice),
		})
	}
	for _, name := range sortedNames(generatorNames(net)) {
		g := net.Generators[name]
		resp.Generators = append(resp.Generators, models.GeneratorResult{
			Name: name, Bus: g.Bus, P: toSeries(g.Result.P), PNomOpt: g.Result.PNomOpt,
		})
	}
	for _, name := range sortedNames(storageUnitNames(net)) {
		s := net.StorageUnits[name]
		resp.StorageUnits = append(resp.StorageUnits, models.StorageUnitResult{
			Name: name, Bus: s.Bus, P: toSeries(s.Result.P),
			StateOfCharge: toSeries(s.Result.StateOfCharge), Spill: toSeries(s.Result.Spill),
			PNomOpt: s.Result.PNomOpt,
		})
	}
	for _, name := range sortedNames(storeNames(net)) {
		s := net.Stores[name]
		resp.Stores = append(resp.Stores, models.StoreResult{
			Name: name, Bus: s.Bus, P: toSeries(s.Result.P), E: toSeries(s.Result.E), ENomOpt: s.Result.ENomOpt,
		})
	}
	for _, name := range sortedNames(loadNames(net)) {
		l := net.Loads[name]
		resp.Loads = append(resp.Loads, models.LoadResult{Name: name, Bus: l.Bus, P: toSeries(l.Result.P)})
	}
	for _, name := range sortedNames(linkNames(net)) {
		l := net.Links[name]
		resp.Links = append(resp.Links, models.LinkResult{
			Name: name, Bus0: l.Bus0, Bus1: l.Bus1,
			P0: toSeries(l.Result.P0), P1: toSeries(l.Result.P1), PNomOpt: l.Result.PNomOpt,
		})
	}
	for key, b := range net.PassiveBranches() {
		resp.Branches = append(resp.Branches, models.BranchResult{
			Type: string(key.Type), Name: key.Name, Bus0: b.Bus0, Bus1: b.Bus1,
			P0: toSeries(b.Result.P0), P1: toSeries(b.Result.P1), SNomOpt: b.Result.SNomOpt,
		})
	}

	return resp
}
