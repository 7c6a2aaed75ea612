package opf

import (
	"math"
	"testing"

	"lopf/internal/lpalgebra"
	"lopf/internal/model"
)

func newStoreNetwork() (*model.Network, *model.Store) {
	net := model.NewNetwork()
	bus, _ := model.NewBus("bus1", "AC")
	net.AddBus(bus)

	s := model.NewStore("tank1", "bus1")
	s.ENom = 20
	s.EMinPuFixed = 0
	s.EMaxPuFixed = 1
	s.StandingLoss = 0
	s.EInitial = 8
	net.AddStore(s)

	net.Snapshots = []model.Snapshot{"t0", "t1"}
	net.SnapshotWeightings = model.SnapshotWeightings{"t0": 1, "t1": 1}
	return net, s
}

func TestStoreEnergyRecurrenceInitial(t *testing.T) {
	net, _ := newStoreNetwork()
	m := lpalgebra.NewModel()
	if err := DefineStoreVariablesConstraints(net, m, net.Snapshots); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	eT0 := m.MustVariable(VarStoreE, IndexGenSn("tank1", "t0"))
	pT0 := m.MustVariable(VarStoreP, IndexGenSn("tank1", "t0"))

	c := mustConstraint(m, "store_constraint", IndexGenSn("tank1", "t0"))
	// -e[t0] + e_initial*decay - elapsed*p[t0] == 0; at e[t0]=8, p[t0]=0.
	v := evalExpr(c.Expr, map[int]float64{
		lpalgebra.VarRefID(eT0): 8,
		lpalgebra.VarRefID(pT0): 0,
	})
	if math.Abs(v) > 1e-9 {
		t.Errorf("store_constraint[t0] at e=8,p=0 = %v; want 0", v)
	}
}

func TestStoreEnergyBoundsFixed(t *testing.T) {
	net, _ := newStoreNetwork()
	m := lpalgebra.NewModel()
	if err := DefineStoreVariablesConstraints(net, m, net.Snapshots); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eRef := m.MustVariable(VarStoreE, IndexGenSn("tank1", "t0"))
	lb, ub := m.VariableBounds(eRef)
	if lb != 0 || ub != 20 {
		t.Errorf("store_e bounds = [%v,%v]; want [0,20]", lb, ub)
	}
}

func TestStoreEnergyRecurrenceSecondStep(t *testing.T) {
	net, _ := newStoreNetwork()
	m := lpalgebra.NewModel()
	if err := DefineStoreVariablesConstraints(net, m, net.Snapshots); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	eT0 := m.MustVariable(VarStoreE, IndexGenSn("tank1", "t0"))
	eT1 := m.MustVariable(VarStoreE, IndexGenSn("tank1", "t1"))
	pT1 := m.MustVariable(VarStoreP, IndexGenSn("tank1", "t1"))

	c := mustConstraint(m, "store_constraint", IndexGenSn("tank1", "t1"))
	// -e[t1] + decay*e[t0] - elapsed*p[t1] == 0; dispatching p=2 for 1h from e[t0]=8 -> e[t1]=6.
	v := evalExpr(c.Expr, map[int]float64{
		lpalgebra.VarRefID(eT0): 8,
		lpalgebra.VarRefID(eT1): 6,
		lpalgebra.VarRefID(pT1): 2,
	})
	if math.Abs(v) > 1e-9 {
		t.Errorf("store_constraint[t1] at e[t0]=8,p[t1]=2,e[t1]=6 = %v; want 0", v)
	}
}
