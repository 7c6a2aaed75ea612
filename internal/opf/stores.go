package opf

import (
	"math"

	"lopf/internal/lpalgebra"
	"lopf/internal/model"
)

const (
	VarStoreP    = "store_p"
	VarStoreE    = "store_e"
	VarStoreENom = "store_e_nom"
)

// DefineStoreVariablesConstraints declares the dispatch variable store_p
// (unbounded, sign convention applied at balance time), the energy
// variable store_e (bounded directly for fixed-capacity stores, via
// store_e_nom for extendable ones), and the energy recurrence — grounded
// on define_store_variables_constraints in pypsa/opf.py.
func DefineStoreVariablesConstraints(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot) error {
	for _, name := range net.StoreNamesOrdered() {
		s := net.Stores[name]
		for _, sn := range snapshots {
			m.NewVariable(VarStoreP, IndexGenSn(name, sn), lpalgebra.Real, -lpalgebra.Inf, lpalgebra.Inf)

			lb, ub := -lpalgebra.Inf, lpalgebra.Inf
			if !s.ENomExtendable {
				lb = s.ENom * s.EMinPuFixed
				ub = s.ENom * s.EMaxPuFixed
			}
			m.NewVariable(VarStoreE, IndexGenSn(name, sn), lpalgebra.Real, lb, ub)
		}

		if s.ENomExtendable {
			eNomRef := m.NewVariable(VarStoreENom, name, lpalgebra.Real, s.ENomMin, s.ENomMax)
			for _, sn := range snapshots {
				eRef := m.MustVariable(VarStoreE, IndexGenSn(name, sn))
				upper := lpalgebra.NewExpr(0).Add(1, eRef).Add(-s.EMaxPuFixed, eNomRef)
				m.AddConstraint("store_e_upper", IndexGenSn(name, sn),
					lpalgebra.NewConstraint(upper, lpalgebra.LE, lpalgebra.NewExpr(0)))

				lower := lpalgebra.NewExpr(0).Add(1, eRef).Add(-s.EMinPuFixed, eNomRef)
				m.AddConstraint("store_e_lower", IndexGenSn(name, sn),
					lpalgebra.NewConstraint(lower, lpalgebra.GE, lpalgebra.NewExpr(0)))
			}
		}

		for i, sn := range snapshots {
			elapsed := net.SnapshotWeightings.WeightOf(sn)
			decay := math.Pow(1-s.StandingLoss, elapsed)

			eRef := m.MustVariable(VarStoreE, IndexGenSn(name, sn))
			expr := lpalgebra.NewExpr(0).Add(-1, eRef)

			if i == 0 && !s.ECyclic {
				expr = expr.AddConst(decay * s.EInitial)
			} else {
				prevSn := model.PreviousSnapshot(snapshots, i)
				prevRef := m.MustVariable(VarStoreE, IndexGenSn(name, prevSn))
				expr = expr.Add(decay, prevRef)
			}

			pRef := m.MustVariable(VarStoreP, IndexGenSn(name, sn))
			expr = expr.Add(-elapsed, pRef)

			m.AddConstraint("store_constraint", IndexGenSn(name, sn),
				lpalgebra.NewConstraint(expr, lpalgebra.EQ, lpalgebra.NewExpr(0)))
		}
	}
	return nil
}
