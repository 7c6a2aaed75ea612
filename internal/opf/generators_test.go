package opf

import (
	"testing"

	"lopf/internal/lpalgebra"
	"lopf/internal/model"
)

func TestDefineGeneratorVariablesConstraintsFixed(t *testing.T) {
	net := newSingleBusNetwork(100, 50)
	m := lpalgebra.NewModel()

	if err := DefineGeneratorVariablesConstraints(net, m, net.Snapshots); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ref, ok := m.Variable(VarGeneratorP, IndexGenSn("gen1", "t0"))
	if !ok {
		t.Fatalf("generator_p[gen1,t0] not declared")
	}
	lb, ub := m.VariableBounds(ref)
	if lb != 0 || ub != 100 {
		t.Errorf("bounds = [%v,%v]; want [0,100]", lb, ub)
	}

	if _, ok := m.Variable(VarGeneratorPNom, "gen1"); ok {
		t.Errorf("generator_p_nom should not be declared for a fixed-capacity generator")
	}
}

func TestDefineGeneratorVariablesConstraintsExtendable(t *testing.T) {
	net := newSingleBusNetwork(0, 50)
	g := net.Generators["gen1"]
	g.PNomExtendable = true
	g.PNomMin = 0
	g.PNomMax = 500
	g.PMaxPuFixed = 1

	m := lpalgebra.NewModel()
	if err := DefineGeneratorVariablesConstraints(net, m, net.Snapshots); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pRef, ok := m.Variable(VarGeneratorP, IndexGenSn("gen1", "t0"))
	if !ok {
		t.Fatalf("generator_p[gen1,t0] not declared")
	}
	lb, ub := m.VariableBounds(pRef)
	if lb != -lpalgebra.Inf || ub != lpalgebra.Inf {
		t.Errorf("extendable generator_p bounds = [%v,%v]; want unbounded", lb, ub)
	}

	pNomRef, ok := m.Variable(VarGeneratorPNom, "gen1")
	if !ok {
		t.Fatalf("generator_p_nom not declared for extendable generator")
	}
	nlb, nub := m.VariableBounds(pNomRef)
	if nlb != 0 || nub != 500 {
		t.Errorf("generator_p_nom bounds = [%v,%v]; want [0,500]", nlb, nub)
	}

	// p_upper: p - p_max_pu*p_nom <= 0, evaluated at p=500, p_nom=500 -> 0.
	upper := mustConstraint(m, "generator_p_upper", IndexGenSn("gen1", "t0"))
	v := evalExpr(upper.Expr, map[int]float64{
		lpalgebra.VarRefID(pRef):    500,
		lpalgebra.VarRefID(pNomRef): 500,
	})
	if v != 0 {
		t.Errorf("generator_p_upper at p=p_nom=500 = %v; want 0", v)
	}

	// p_lower: p - p_min_pu*p_nom >= 0, p_min_pu=0 here, evaluated at p=0.
	lower := mustConstraint(m, "generator_p_lower", IndexGenSn("gen1", "t0"))
	v = evalExpr(lower.Expr, map[int]float64{
		lpalgebra.VarRefID(pRef):    0,
		lpalgebra.VarRefID(pNomRef): 500,
	})
	if v != 0 {
		t.Errorf("generator_p_lower at p=0 = %v; want 0", v)
	}
}

func TestDefineGeneratorVariablesConstraintsVariableDispatch(t *testing.T) {
	net := newSingleBusNetwork(100, 50)
	g := net.Generators["gen1"]
	g.Dispatch = model.DispatchVariable
	g.PMaxPu = model.Series{"t0": 0.8}
	g.PMinPu = model.Series{"t0": 0.1}

	m := lpalgebra.NewModel()
	if err := DefineGeneratorVariablesConstraints(net, m, net.Snapshots); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref, _ := m.Variable(VarGeneratorP, IndexGenSn("gen1", "t0"))
	lb, ub := m.VariableBounds(ref)
	if lb != 10 || ub != 80 {
		t.Errorf("bounds = [%v,%v]; want [10,80]", lb, ub)
	}
}
