package opf

import (
	"math"

	"lopf/internal/lpalgebra"
	"lopf/internal/model"
)

const (
	VarStorageDispatch   = "storage_p_dispatch"
	VarStorageStore      = "storage_p_store"
	VarStorageSpill      = "storage_p_spill"
	VarStoragePNom       = "storage_p_nom"
	VarStateOfCharge     = "state_of_charge"
)

// DefineStorageVariablesConstraints declares per-snapshot dispatch/store
// variables, a spill variable only where inflow is positive, the optional
// extendable-capacity variable and its bound constraints, and the state of
// charge recurrence — grounded on define_storage_variables_constraints in
// pypsa/opf.py.
func DefineStorageVariablesConstraints(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot) error {
	for _, name := range net.StorageUnitNamesOrdered() {
		s := net.StorageUnits[name]
		for _, sn := range snapshots {
			dispatchUB := lpalgebra.Inf
			if !s.PNomExtendable {
				dispatchUB = s.PNom * s.PMaxPuFixed
			}
			m.NewVariable(VarStorageDispatch, IndexGenSn(name, sn), lpalgebra.NonNegativeReal, 0, dispatchUB)

			storeUB := lpalgebra.Inf
			if !s.PNomExtendable {
				storeUB = -s.PNom * s.PMinPuFixed
			}
			m.NewVariable(VarStorageStore, IndexGenSn(name, sn), lpalgebra.NonNegativeReal, 0, storeUB)

			if s.HasSpillAt(sn) {
				m.NewVariable(VarStorageSpill, IndexGenSn(name, sn), lpalgebra.NonNegativeReal, 0, s.Inflow.At(sn, 0))
			}

			m.NewVariable(VarStateOfCharge, IndexGenSn(name, sn), lpalgebra.NonNegativeReal, 0, lpalgebra.Inf)
		}

		if s.PNomExtendable {
			pNomRef := m.NewVariable(VarStoragePNom, name, lpalgebra.NonNegativeReal, s.PNomMin, s.PNomMax)
			for _, sn := range snapshots {
				dispatchRef := m.MustVariable(VarStorageDispatch, IndexGenSn(name, sn))
				upper := lpalgebra.NewExpr(0).Add(1, dispatchRef).Add(-s.PMaxPuFixed, pNomRef)
				m.AddConstraint("storage_p_upper", IndexGenSn(name, sn),
					lpalgebra.NewConstraint(upper, lpalgebra.LE, lpalgebra.NewExpr(0)))

				storeRef := m.MustVariable(VarStorageStore, IndexGenSn(name, sn))
				lower := lpalgebra.NewExpr(0).Add(1, storeRef).Add(s.PMinPuFixed, pNomRef)
				m.AddConstraint("storage_p_lower", IndexGenSn(name, sn),
					lpalgebra.NewConstraint(lower, lpalgebra.LE, lpalgebra.NewExpr(0)))
			}
		}

		for _, sn := range snapshots {
			socRef := m.MustVariable(VarStateOfCharge, IndexGenSn(name, sn))
			var upper lpalgebra.Expr
			if s.PNomExtendable {
				pNomRef := m.MustVariable(VarStoragePNom, name)
				upper = lpalgebra.NewExpr(0).Add(1, socRef).Add(-s.MaxHours, pNomRef)
			} else {
				upper = lpalgebra.NewExpr(-s.MaxHours * s.PNom).Add(1, socRef)
			}
			m.AddConstraint("state_of_charge_upper", IndexGenSn(name, sn),
				lpalgebra.NewConstraint(upper, lpalgebra.LE, lpalgebra.NewExpr(0)))
		}

		if err := defineStateOfChargeRecurrence(net, m, snapshots, s, name); err != nil {
			return err
		}
	}
	return nil
}

func defineStateOfChargeRecurrence(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot, s *model.StorageUnit, name string) error {
	for i, sn := range snapshots {
		elapsed := net.SnapshotWeightings.WeightOf(sn)
		decay := math.Pow(1-s.StandingLoss, elapsed)

		expr := lpalgebra.NewExpr(0)

		if i == 0 && !s.CyclicStateOfCharge {
			expr = expr.AddConst(decay * s.StateOfChargeInitial)
		} else {
			prevSn := model.PreviousSnapshot(snapshots, i)
			prevRef := m.MustVariable(VarStateOfCharge, IndexGenSn(name, prevSn))
			expr = expr.Add(decay, prevRef)
		}

		if s.StateOfChargeSet.Has(sn) {
			pinned := s.StateOfChargeSet.At(sn, 0)
			expr = expr.AddConst(-pinned)
			socRef := m.MustVariable(VarStateOfCharge, IndexGenSn(name, sn))
			m.AddConstraint("state_of_charge_constraint_fixed", IndexGenSn(name, sn),
				lpalgebra.NewConstraint(lpalgebra.NewExpr(0).Add(1, socRef), lpalgebra.EQ, lpalgebra.NewExpr(pinned)))
		} else {
			socRef := m.MustVariable(VarStateOfCharge, IndexGenSn(name, sn))
			expr = expr.Add(-1, socRef)
		}

		dispatchRef := m.MustVariable(VarStorageDispatch, IndexGenSn(name, sn))
		storeRef := m.MustVariable(VarStorageStore, IndexGenSn(name, sn))
		expr = expr.Add(s.EfficiencyStore*elapsed, storeRef)
		expr = expr.Add(-elapsed/s.EfficiencyDispatch, dispatchRef)
		expr = expr.AddConst(s.Inflow.At(sn, 0) * elapsed)

		if s.HasSpillAt(sn) {
			spillRef := m.MustVariable(VarStorageSpill, IndexGenSn(name, sn))
			expr = expr.Add(-elapsed, spillRef)
		}

		m.AddConstraint("state_of_charge_constraint", IndexGenSn(name, sn),
			lpalgebra.NewConstraint(expr, lpalgebra.EQ, lpalgebra.NewExpr(0)))
	}
	return nil
}
