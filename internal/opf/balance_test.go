package opf

import (
	"math"
	"testing"

	"lopf/internal/lpalgebra"
	"lopf/internal/model"
)

func TestDefineNodalBalancesAccumulatesContributions(t *testing.T) {
	net := newSingleBusNetwork(100, 50)
	m := lpalgebra.NewModel()
	if err := DefineGeneratorVariablesConstraints(net, m, net.Snapshots); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	balance, err := DefineNodalBalances(net, m, net.Snapshots)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	genRef := m.MustVariable(VarGeneratorP, IndexGenSn("gen1", "t0"))
	expr := balance[balanceKey("bus1", "t0")]
	v := evalExpr(expr, map[int]float64{lpalgebra.VarRefID(genRef): 50})
	if math.Abs(v) > 1e-9 {
		t.Errorf("single-bus balance at gen=50 (== load) = %v; want 0", v)
	}
}

func TestDefineNodalBalanceConstraintsIncludesPassiveBranch(t *testing.T) {
	net := newTwoBusNetwork()
	gen := model.NewGenerator("gen0", "bus0")
	gen.Dispatch = model.DispatchFlexible
	gen.PNom = 100
	gen.PMaxPuFixed = 1
	net.AddGenerator(gen)
	load := model.NewLoad("load1", "bus1")
	load.PSet = model.Series{"t0": 40}
	net.AddLoad(load)

	m := lpalgebra.NewModel()
	if err := DefineGeneratorVariablesConstraints(net, m, net.Snapshots); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	balance, err := DefineNodalBalances(net, m, net.Snapshots)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	key := model.BranchKey{Type: model.BranchLine, Name: "line1"}
	pRef := m.NewVariable(VarPassiveBranchP, IndexBranchSn(key, "t0"), lpalgebra.Real, -lpalgebra.Inf, lpalgebra.Inf)

	if err := DefineNodalBalanceConstraints(net, m, net.Snapshots, balance); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	genRef := m.MustVariable(VarGeneratorP, IndexGenSn("gen0", "t0"))

	bus0 := mustConstraint(m, "power_balance", balanceKey("bus0", "t0"))
	v := evalExpr(bus0.Expr, map[int]float64{
		lpalgebra.VarRefID(genRef): 40,
		lpalgebra.VarRefID(pRef):   40,
	})
	if math.Abs(v) > 1e-9 {
		t.Errorf("bus0 balance at gen=40,flow=40 = %v; want 0", v)
	}

	bus1 := mustConstraint(m, "power_balance", balanceKey("bus1", "t0"))
	v = evalExpr(bus1.Expr, map[int]float64{lpalgebra.VarRefID(pRef): 40})
	if math.Abs(v) > 1e-9 {
		t.Errorf("bus1 balance at flow=40 (== load) = %v; want 0", v)
	}
}

func TestDefineSubNetworkBalanceConstraintsAggregatesWithoutBranchDoubleCounting(t *testing.T) {
	net := newTwoBusNetwork()
	gen := model.NewGenerator("gen0", "bus0")
	gen.Dispatch = model.DispatchFlexible
	gen.PNom = 100
	gen.PMaxPuFixed = 1
	net.AddGenerator(gen)
	load := model.NewLoad("load1", "bus1")
	load.PSet = model.Series{"t0": 40}
	net.AddLoad(load)
	net.SubNetworks["sub0"] = &model.SubNetwork{Name: "sub0", Carrier: "AC", SlackBus: "bus0", BusesO: []string{"bus1"}}

	m := lpalgebra.NewModel()
	if err := DefineGeneratorVariablesConstraints(net, m, net.Snapshots); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	balance, err := DefineNodalBalances(net, m, net.Snapshots)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Note: no passive_branch_p contribution added (ptdf/cycles already fold
	// branch flow into the per-bus balance before this point).
	if err := DefineSubNetworkBalanceConstraints(net, m, net.Snapshots, balance); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	genRef := m.MustVariable(VarGeneratorP, IndexGenSn("gen0", "t0"))
	c := mustConstraint(m, "sub_network_balance_constraint", balanceKey("sub0", "t0"))
	v := evalExpr(c.Expr, map[int]float64{lpalgebra.VarRefID(genRef): 40})
	if math.Abs(v) > 1e-9 {
		t.Errorf("sub-network balance at gen=40 (== load) = %v; want 0", v)
	}
}
