// Package scenario builds the small set of bundled example networks used
// by the demo CLI and the HTTP API's GET /api/v1/scenarios and
// scenario_name-selecting POST /api/v1/lopf. Each builder constructs a
// model.Network directly rather than going through config.NetworkConfig,
// the way cmd/demo's own fixtures were built before this package existed.
package scenario

import (
	"fmt"

	"lopf/internal/model"
	"lopf/internal/opf"
)

// Builder constructs one bundled network and reports which formulation
// it's meant to be solved with.
type Builder struct {
	Name        string
	Description string
	Formulation opf.Formulation
	Build       func() (*model.Network, []model.Snapshot)
}

// All returns every bundled scenario, in a fixed, stable order.
func All() []Builder {
	return []Builder{
		{Name: "two-bus-line", Description: "two buses joined by one line, one generator, one load", Formulation: opf.FormulationAngles, Build: TwoBusLine},
		{Name: "storage-cyclic", Description: "single bus, one cyclic storage unit smoothing a two-peak load", Formulation: opf.FormulationAngles, Build: StorageCyclic},
	}
}

// ByName looks up one bundled scenario, or reports ok=false.
func ByName(name string) (Builder, bool) {
	for _, b := range All() {
		if b.Name == name {
			return b, true
		}
	}
	return Builder{}, false
}

// TwoBusLine is the two-bus AC scenario: load=100MW at bus B, a generator
// capped at 200MW at bus A with marginal cost 10, and a line with
// x_pu=0.1, s_nom=150 joining them. Solved with FormulationAngles, the
// expected dispatch is p_gen=100, p_line=100 (A to B), objective=1000
// times the snapshot weighting, theta_A=0, theta_B=-10.
func TwoBusLine() (*model.Network, []model.Snapshot) {
	net := model.NewNetwork()
	net.Carriers["AC"] = &model.Carrier{Name: "AC"}

	busA, err := model.NewBus("A", "AC")
	if err != nil {
		panic(fmt.Sprintf("scenario: %v", err))
	}
	busB, err := model.NewBus("B", "AC")
	if err != nil {
		panic(fmt.Sprintf("scenario: %v", err))
	}
	net.AddBus(busA)
	net.AddBus(busB)

	gen := model.NewGenerator("gas-a", "A")
	gen.PNom = 200
	gen.Dispatch = model.DispatchFlexible
	gen.PMinPuFixed = 0
	gen.PMaxPuFixed = 1
	gen.MarginalCost = 10
	gen.Carrier = "gas"
	net.AddGenerator(gen)

	load := model.NewLoad("load-b", "B")
	load.PSet = model.Series{"t0": 100}
	net.AddLoad(load)

	line := &model.PassiveBranch{
		Type: model.BranchKey{Type: model.BranchLine, Name: "line-ab"},
		Bus0: "A",
		Bus1: "B",
		SNom: 150,
		XPu:  0.1,
	}
	net.AddLine(line)

	net.Snapshots = []model.Snapshot{"t0"}
	net.SnapshotWeightings = model.SnapshotWeightings{"t0": 1.0}

	return net, net.Snapshots
}

// StorageCyclic is the cyclic-storage scenario: one bus, one storage unit
// with max_hours=4, p_nom=10, efficiency_store=efficiency_dispatch=1, no
// standing loss or inflow, cycled over 24 hourly snapshots against a load
// profile with two equal peaks. A correct solve charges the troughs and
// discharges the peaks, and CyclicStateOfCharge pins soc[0]==soc[23].
func StorageCyclic() (*model.Network, []model.Snapshot) {
	net := model.NewNetwork()
	net.Carriers["AC"] = &model.Carrier{Name: "AC"}

	bus, err := model.NewBus("bus0", "AC")
	if err != nil {
		panic(fmt.Sprintf("scenario: %v", err))
	}
	net.AddBus(bus)

	gen := model.NewGenerator("backstop", "bus0")
	gen.PNom = 10
	gen.Dispatch = model.DispatchFlexible
	gen.PMinPuFixed = 0
	gen.PMaxPuFixed = 1
	gen.MarginalCost = 100
	gen.Carrier = "backstop"
	net.AddGenerator(gen)

	su := model.NewStorageUnit("battery", "bus0")
	su.PNom = 10
	su.MaxHours = 4
	su.EfficiencyStore = 1
	su.EfficiencyDispatch = 1
	su.StandingLoss = 0
	su.CyclicStateOfCharge = true
	su.MarginalCost = 0
	net.AddStorageUnit(su)

	snapshots := make([]model.Snapshot, 24)
	weightings := model.SnapshotWeightings{}
	pset := model.Series{}
	for h := 0; h < 24; h++ {
		sn := model.Snapshot(fmt.Sprintf("h%02d", h))
		snapshots[h] = sn
		weightings[sn] = 1.0
		// Two equal peaks at hours 8 and 18, troughs elsewhere.
		switch h {
		case 8, 18:
			pset[sn] = 15
		default:
			pset[sn] = 5
		}
	}
	load := model.NewLoad("load0", "bus0")
	load.PSet = pset
	net.AddLoad(load)

	net.Snapshots = snapshots
	net.SnapshotWeightings = weightings

	return net, snapshots
}
