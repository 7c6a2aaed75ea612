package opf

import (
	"math"
	"testing"

	"lopf/internal/lpalgebra"
)

func TestDefineCO2ConstraintNoOpWithoutLimit(t *testing.T) {
	net := newSingleBusNetwork(100, 50)
	m := lpalgebra.NewModel()
	if err := DefineGeneratorVariablesConstraints(net, m, net.Snapshots); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := DefineCO2Constraint(net, m, net.Snapshots); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := m.NumConstraints(); n != 0 {
		t.Errorf("NumConstraints() = %d; want 0 when CO2Limit is unset", n)
	}
}

func TestDefineCO2ConstraintSumsGeneratorEmissions(t *testing.T) {
	net := newSingleBusNetwork(100, 50)
	limit := 100.0
	net.CO2Limit = &limit
	g := net.Generators["gen1"]
	g.Efficiency = 0.5

	m := lpalgebra.NewModel()
	if err := DefineGeneratorVariablesConstraints(net, m, net.Snapshots); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := DefineCO2Constraint(net, m, net.Snapshots); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	genRef := m.MustVariable(VarGeneratorP, IndexGenSn("gen1", "t0"))
	c := mustConstraint(m, "co2_constraint", "")
	if c.Sense != lpalgebra.LE {
		t.Fatalf("co2_constraint sense = %v; want LE", c.Sense)
	}
	// coef = co2_emissions(0.4) * (1/efficiency=2) * weight(1) = 0.8; limit=100.
	v := evalExpr(c.Expr, map[int]float64{lpalgebra.VarRefID(genRef): 50})
	// normalized expr is lhs - rhs = 0.8*50 - 100 = -60.
	if math.Abs(v-(-60)) > 1e-9 {
		t.Errorf("co2_constraint at p=50 = %v; want -60", v)
	}
}
