package opf

import (
	"lopf/internal/lpalgebra"
	"lopf/internal/model"
)

// evalExpr evaluates e against a sparse set of variable assignments, keyed
// by the variable's flat storage id (lpalgebra.VarRefID). Unassigned
// variables are treated as zero.
func evalExpr(e lpalgebra.Expr, values map[int]float64) float64 {
	out := e.Constant
	for _, t := range e.Terms {
		out += t.Coef * values[lpalgebra.VarRefID(t.Var)]
	}
	return out
}

// mustConstraint looks up a constraint by name/index and fails the test if
// missing.
func mustConstraint(m *lpalgebra.Model, name, index string) lpalgebra.Constraint {
	slot, ok := m.Constraint(name, index)
	if !ok {
		panic("test: constraint " + name + "[" + index + "] not found")
	}
	return m.ConstraintAt(slot)
}

// newSingleBusNetwork builds a one-bus, one-snapshot network with a fixed
// generator and a fixed load, used as the minimal S1-style scenario.
func newSingleBusNetwork(genP, loadP float64) *model.Network {
	net := model.NewNetwork()
	bus, _ := model.NewBus("bus1", "AC")
	net.AddBus(bus)
	net.Carriers["gas"] = &model.Carrier{Name: "gas", CO2Emissions: 0.4}

	g := model.NewGenerator("gen1", "bus1")
	g.Dispatch = model.DispatchFlexible
	g.PNom = genP
	g.PMinPuFixed = 0
	g.PMaxPuFixed = 1
	g.MarginalCost = 20
	g.Carrier = "gas"
	net.AddGenerator(g)

	l := model.NewLoad("load1", "bus1")
	l.PSet = model.Series{"t0": loadP}
	net.AddLoad(l)

	net.Snapshots = []model.Snapshot{"t0"}
	net.SnapshotWeightings = model.SnapshotWeightings{"t0": 1.0}
	return net
}
