package opf

import (
	"lopf/internal/lpalgebra"
	"lopf/internal/model"
)

// BuildOptions configures one model assembly pass.
type BuildOptions struct {
	Formulation         Formulation
	PTDFTolerance       float64
	ExtraFunctionality  func(*model.Network, *lpalgebra.Model, []model.Snapshot) error
}

// Build runs every declarator in the canonical order the concurrency
// model requires (spec §5): generators, storage, stores, branch
// extensions, links, nodal balance setup, passive branch flows, passive
// branch magnitude constraints, nodal or sub-network balance, CO2,
// objective — then, if set, ExtraFunctionality, exactly mirroring
// network_lopf's call sequence in pypsa/opf.py (extra_functionality runs
// after the objective and before the solver's dual-suffix bookkeeping).
func Build(net *model.Network, snapshots []model.Snapshot, opts BuildOptions) (*lpalgebra.Model, error) {
	m := lpalgebra.NewModel()

	if err := DefineGeneratorVariablesConstraints(net, m, snapshots); err != nil {
		return nil, err
	}
	if err := DefineStorageVariablesConstraints(net, m, snapshots); err != nil {
		return nil, err
	}
	if err := DefineStoreVariablesConstraints(net, m, snapshots); err != nil {
		return nil, err
	}
	if err := DefineBranchExtensionVariables(net, m, snapshots); err != nil {
		return nil, err
	}
	if err := DefineLinkFlows(net, m, snapshots); err != nil {
		return nil, err
	}

	balance, err := DefineNodalBalances(net, m, snapshots)
	if err != nil {
		return nil, err
	}

	if err := DefinePassiveBranchFlows(net, m, snapshots, opts.Formulation, opts.PTDFTolerance, balance); err != nil {
		return nil, err
	}
	if err := DefinePassiveBranchConstraints(net, m, snapshots); err != nil {
		return nil, err
	}

	switch opts.Formulation {
	case FormulationAngles, FormulationKirchhoff:
		if err := DefineNodalBalanceConstraints(net, m, snapshots, balance); err != nil {
			return nil, err
		}
	case FormulationPTDF, FormulationCycles:
		if err := DefineSubNetworkBalanceConstraints(net, m, snapshots, balance); err != nil {
			return nil, err
		}
	}

	if net.CO2Limit != nil {
		if err := DefineCO2Constraint(net, m, snapshots); err != nil {
			return nil, err
		}
	}

	if err := DefineLinearObjective(net, m, snapshots); err != nil {
		return nil, err
	}

	if opts.ExtraFunctionality != nil {
		if err := opts.ExtraFunctionality(net, m, snapshots); err != nil {
			return nil, err
		}
	}

	return m, nil
}
