package opf

import (
	"lopf/internal/lpalgebra"
	"lopf/internal/model"
)

const (
	VarLinkP    = "link_p"
	VarLinkPNom = "link_p_nom"
)

// DefineLinkFlows declares link_p_nom for every extendable link and
// link_p[link,sn] bounded directly for fixed-capacity links or tied to
// link_p_nom via p_upper/p_lower for extendable ones — grounded on
// define_branch_extension_variables (the link_p_nom half) and
// define_link_flows in pypsa/opf.py.
func DefineLinkFlows(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot) error {
	for _, name := range net.LinkNamesOrdered() {
		l := net.Links[name]
		if l.PNomExtendable {
			m.NewVariable(VarLinkPNom, name, lpalgebra.NonNegativeReal, l.PNomMin, l.PNomMax)
		}
		for _, sn := range snapshots {
			lb, ub := -lpalgebra.Inf, lpalgebra.Inf
			if !l.PNomExtendable {
				lb = l.PMinPu * l.PNom
				ub = l.PMaxPu * l.PNom
			}
			m.NewVariable(VarLinkP, IndexGenSn(name, sn), lpalgebra.Real, lb, ub)
		}
		if l.PNomExtendable {
			pNomRef := m.MustVariable(VarLinkPNom, name)
			for _, sn := range snapshots {
				pRef := m.MustVariable(VarLinkP, IndexGenSn(name, sn))
				upper := lpalgebra.NewExpr(0).Add(1, pRef).Add(-l.PMaxPu, pNomRef)
				m.AddConstraint("link_p_upper", IndexGenSn(name, sn),
					lpalgebra.NewConstraint(upper, lpalgebra.LE, lpalgebra.NewExpr(0)))
				lower := lpalgebra.NewExpr(0).Add(1, pRef).Add(-l.PMinPu, pNomRef)
				m.AddConstraint("link_p_lower", IndexGenSn(name, sn),
					lpalgebra.NewConstraint(lower, lpalgebra.GE, lpalgebra.NewExpr(0)))
			}
		}
	}
	return nil
}
