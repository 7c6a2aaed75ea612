// Package solver drives one LOPF solve end to end: optional topology
// discovery, model assembly (internal/opf), dispatch to an external LP
// solver, and result extraction back into the network's element tables.
// The solver itself is out of scope — this package only describes the
// contract an external LP/MILP engine must satisfy and consumes it.
package solver

import (
	"fmt"

	"lopf/internal/lpalgebra"
)

// Status mirrors the two outcomes network_lopf treats as usable
// ("ok"/"optimal" and "warning"/"other", i.e. a feasible but possibly
// sub-optimal stop) plus the remaining outcomes the driver must reject.
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusSubOptimal Status = "suboptimal"
	StatusInfeasible Status = "infeasible"
	StatusUnbounded  Status = "unbounded"
	StatusError      Status = "error"
)

// Options carries solver-specific passthrough settings (e.g. thread
// count, MIP gap) that the core never interprets itself — grounded on
// network_lopf's solver_options dict, which is forwarded to pyomo's
// SolverFactory untouched.
type Options map[string]any

// Solution is what an external Solver hands back: the primal value of
// every declared variable, the dual value of every named equality
// constraint (needed for marginal prices), the solve status, and the
// reported objective bound.
type Solution struct {
	Status         Status
	ObjectiveBound float64
	Primal         []float64             // indexed by lpalgebra.VarRefID
	Dual           map[int]float64       // indexed by constraint slot (Model.Constraint's int)
}

// Solver is the external LP/MILP collaborator contract. A solve is
// presented as a flat lpalgebra.Model; Solve must not mutate it.
type Solver interface {
	Solve(m *lpalgebra.Model, opts Options) (Solution, error)
}

// InfeasibleOrUnboundedLPError reports a solve that returned no usable
// primal solution.
type InfeasibleOrUnboundedLPError struct {
	Status Status
}

func (e *InfeasibleOrUnboundedLPError) Error() string {
	return fmt.Sprintf("InfeasibleOrUnboundedLP: solver status %q", e.Status)
}

// SolverSubOptimalError reports a solve the driver refused to extract
// results from because the caller asked to treat sub-optimal stops as
// fatal (by default, spec §7 has the driver extract anyway, matching
// network_lopf's "warning"/"other" branch, which still calls
// extract_optimisation_results).
type SolverSubOptimalError struct {
	Status Status
}

func (e *SolverSubOptimalError) Error() string {
	return fmt.Sprintf("SolverSubOptimal: solver status %q", e.Status)
}

// NonLinearOPFRequestedError is returned when RunOptions asks for AC OPF,
// which this package does not implement.
type NonLinearOPFRequestedError struct{}

func (e *NonLinearOPFRequestedError) Error() string { return "NonLinearOPFRequested: AC OPF is not supported" }
