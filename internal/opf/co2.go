package opf

import (
	"lopf/internal/lpalgebra"
	"lopf/internal/model"
)

// DefineCO2Constraint adds Σ co2-intensity*dispatch <= net.CO2Limit over
// generators (by their own carrier and efficiency) and stores (by the
// carrier of the bus they sit on), grounded on define_co2_constraint in
// pypsa/opf.py. A no-op when net.CO2Limit is unset.
func DefineCO2Constraint(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot) error {
	if net.CO2Limit == nil {
		return nil
	}

	expr := lpalgebra.NewExpr(0)
	for _, name := range net.GeneratorNamesOrdered() {
		g := net.Generators[name]
		carrier := net.Carriers[g.Carrier]
		if carrier == nil {
			continue
		}
		for _, sn := range snapshots {
			coef := carrier.CO2Emissions * (1 / g.Efficiency) * net.SnapshotWeightings.WeightOf(sn)
			pRef := m.MustVariable(VarGeneratorP, IndexGenSn(name, sn))
			expr = expr.Add(coef, pRef)
		}
	}

	for _, name := range net.StoreNamesOrdered() {
		s := net.Stores[name]
		bus := net.Buses[s.Bus]
		carrier := net.Carriers[bus.Carrier]
		if carrier == nil {
			continue
		}
		for _, sn := range snapshots {
			coef := carrier.CO2Emissions * net.SnapshotWeightings.WeightOf(sn)
			pRef := m.MustVariable(VarStoreP, IndexGenSn(name, sn))
			expr = expr.Add(coef, pRef)
		}
	}

	m.AddConstraint("co2_constraint", "", lpalgebra.NewConstraint(expr, lpalgebra.LE, lpalgebra.NewExpr(*net.CO2Limit)))
	return nil
}
