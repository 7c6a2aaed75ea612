package solver

import (
	"lopf/internal/lpalgebra"
	"lopf/internal/model"
)

// fakeSolver stands in for the external LP engine this package never
// implements. build receives the assembled model so tests can answer with
// primals/duals keyed off the model's own variable and constraint slots.
type fakeSolver struct {
	build func(m *lpalgebra.Model) (Solution, error)
}

func (f *fakeSolver) Solve(m *lpalgebra.Model, opts Options) (Solution, error) {
	return f.build(m)
}

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

// solvePrimals builds a Solution's Primal slice by reading every declared
// variable out of values, keyed by (name, index), defaulting to zero for
// anything not listed.
func solvePrimals(m *lpalgebra.Model, values map[[2]string]float64) []float64 {
	out := make([]float64, m.NumVariables())
	for _, v := range m.Variables() {
		if val, ok := values[[2]string{v.Name, v.Index}]; ok {
			out[lpalgebra.VarRefID(v.Ref)] = val
		}
	}
	return out
}
