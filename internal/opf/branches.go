package opf

import (
	"lopf/internal/lpalgebra"
	"lopf/internal/model"
)

const (
	VarPassiveBranchSNom = "passive_branch_s_nom"
	VarPassiveBranchP    = "passive_branch_p"
)

// DefineBranchExtensionVariables declares passive_branch_s_nom for every
// extendable line/transformer, grounded on
// define_branch_extension_variables in pypsa/opf.py (the link_p_nom half
// of that function lives in DefineLinkFlows, alongside link_p, since the
// two are declared together there).
func DefineBranchExtensionVariables(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot) error {
	branches := net.PassiveBranches()
	for _, key := range net.PassiveBranchKeysOrdered() {
		b := branches[key]
		if b.SNomExtendable {
			m.NewVariable(VarPassiveBranchSNom, key.String(), lpalgebra.NonNegativeReal, b.SNomMin, b.SNomMax)
		}
	}
	return nil
}

// DefinePassiveBranchConstraints bounds |passive_branch_p| by the nominal
// (or extendable) capacity, grounded on define_passive_branch_constraints.
// Must run after whichever flow formulation declared passive_branch_p.
func DefinePassiveBranchConstraints(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot) error {
	branches := net.PassiveBranches()
	for _, key := range net.PassiveBranchKeysOrdered() {
		b := branches[key]
		for _, sn := range snapshots {
			pRef := m.MustVariable(VarPassiveBranchP, IndexBranchSn(key, sn))

			if b.SNomExtendable {
				sNomRef := m.MustVariable(VarPassiveBranchSNom, key.String())
				upper := lpalgebra.NewExpr(0).Add(1, pRef).Add(-1, sNomRef)
				m.AddConstraint("flow_upper", IndexBranchSn(key, sn),
					lpalgebra.NewConstraint(upper, lpalgebra.LE, lpalgebra.NewExpr(0)))
				lower := lpalgebra.NewExpr(0).Add(1, pRef).Add(1, sNomRef)
				m.AddConstraint("flow_lower", IndexBranchSn(key, sn),
					lpalgebra.NewConstraint(lower, lpalgebra.GE, lpalgebra.NewExpr(0)))
			} else {
				upper := lpalgebra.NewExpr(0).Add(1, pRef)
				m.AddConstraint("flow_upper", IndexBranchSn(key, sn),
					lpalgebra.NewConstraint(upper, lpalgebra.LE, lpalgebra.NewExpr(b.SNom)))
				lower := lpalgebra.NewExpr(0).Add(1, pRef)
				m.AddConstraint("flow_lower", IndexBranchSn(key, sn),
					lpalgebra.NewConstraint(lower, lpalgebra.GE, lpalgebra.NewExpr(-b.SNom)))
			}
		}
	}
	return nil
}

func IndexBranchSn(key model.BranchKey, sn model.Snapshot) string {
	return key.String() + "|" + string(sn)
}
