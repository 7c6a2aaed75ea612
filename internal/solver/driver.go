package solver

import (
	"context"
	"fmt"

	"lopf/internal/lpalgebra"
	"lopf/internal/model"
	"lopf/internal/opf"
	"lopf/internal/topology"
)

// RunOptions configures one end-to-end solve, grounded on network_lopf's
// keyword arguments in pypsa/opf.py.
type RunOptions struct {
	Formulation        opf.Formulation
	PTDFTolerance      float64
	ExtraFunctionality func(*model.Network, *lpalgebra.Model, []model.Snapshot) error

	// SkipPre skips topology discovery, matching network_lopf's
	// skip_pre=True for a network whose sub-networks are already current.
	SkipPre  bool
	Topology topology.Provider

	Solver        Solver
	SolverOptions Options

	// RejectSubOptimal turns a "feasible but not proven optimal" stop into
	// a hard error instead of extracting results anyway. network_lopf
	// itself always extracts on that stop (with a printed warning); this
	// defaults to false to match that behavior.
	RejectSubOptimal bool

	// FreeMemoryHack exists only for API parity with network_lopf's
	// free_memory_hack flag. Go has no pyomo ConcreteModel to stash away
	// mid-solve, so this is a documented no-op.
	FreeMemoryHack bool
}

// Run builds the LP model for snapshots, solves it, and — on a usable
// solve — unpacks results back into net's element tables. net is mutated
// in place, mirroring network_lopf's own in-place result extraction.
func Run(ctx context.Context, net *model.Network, snapshots []model.Snapshot, opts RunOptions) error {
	if net == nil {
		return fmt.Errorf("solver: network is nil")
	}
	if opts.Solver == nil {
		return fmt.Errorf("solver: no Solver configured")
	}
	if len(snapshots) == 0 {
		return fmt.Errorf("solver: no snapshots to solve")
	}
	if err := net.Validate(); err != nil {
		return fmt.Errorf("solver: invalid network: %w", err)
	}
	if err := opf.ValidateFormulation(opts.Formulation); err != nil {
		return fmt.Errorf("solver: %w", err)
	}

	if !opts.SkipPre {
		if opts.Topology == nil {
			return fmt.Errorf("solver: SkipPre is false but no Topology provider configured")
		}
		if err := opts.Topology.DetermineNetworkTopology(ctx, net, string(opts.Formulation)); err != nil {
			return fmt.Errorf("solver: topology discovery failed: %w", err)
		}
	}

	m, err := opf.Build(net, snapshots, opf.BuildOptions{
		Formulation:        opts.Formulation,
		PTDFTolerance:      opts.PTDFTolerance,
		ExtraFunctionality: opts.ExtraFunctionality,
	})
	if err != nil {
		return fmt.Errorf("solver: model assembly failed: %w", err)
	}

	solution, err := opts.Solver.Solve(m, opts.SolverOptions)
	if err != nil {
		return fmt.Errorf("solver: solve failed: %w", err)
	}

	switch solution.Status {
	case StatusOptimal:
		return extract(net, m, snapshots, opts.Formulation, solution)
	case StatusSubOptimal:
		if opts.RejectSubOptimal {
			return &SolverSubOptimalError{Status: solution.Status}
		}
		return extract(net, m, snapshots, opts.Formulation, solution)
	default:
		return &InfeasibleOrUnboundedLPError{Status: solution.Status}
	}
}

// RunACOPF is the AC OPF entry point network_pf/network_opf occupy in
// pypsa/opf.py. Nonlinear power flow is out of scope here, so this exists
// only so a caller reaching for it fails loudly instead of silently
// falling back to the linear model.
func RunACOPF(context.Context, *model.Network, []model.Snapshot, RunOptions) error {
	return &NonLinearOPFRequestedError{}
}
