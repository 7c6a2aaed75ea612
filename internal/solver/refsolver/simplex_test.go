package refsolver

import (
	"math"
	"testing"

	"lopf/internal/lpalgebra"
)

func approxEqual(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestSolveMinimizesSingleBoundedVariable(t *testing.T) {
	m := lpalgebra.NewModel()
	x := m.NewVariable("x", "0", lpalgebra.NonNegativeReal, 0, 10)
	m.AddObjective(lpalgebra.NewExpr(0).Add(2, x))
	// x >= 3
	m.AddConstraint("ge", "0", lpalgebra.NewConstraint(lpalgebra.NewExpr(0).Add(1, x), lpalgebra.GE, lpalgebra.NewExpr(3)))

	sol, err := New().Solve(m, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Status != "optimal" {
		t.Fatalf("status = %v; want optimal", sol.Status)
	}
	if got := sol.Primal[lpalgebra.VarRefID(x)]; !approxEqual(got, 3) {
		t.Errorf("x = %v; want 3", got)
	}
	if !approxEqual(sol.ObjectiveBound, 6) {
		t.Errorf("objective = %v; want 6", sol.ObjectiveBound)
	}
}

func TestSolveTwoGeneratorsMeetLoadAtCheapestCost(t *testing.T) {
	m := lpalgebra.NewModel()
	cheap := m.NewVariable("p", "cheap", lpalgebra.NonNegativeReal, 0, 80)
	pricey := m.NewVariable("p", "pricey", lpalgebra.NonNegativeReal, 0, 80)
	m.AddObjective(lpalgebra.NewExpr(0).Add(10, cheap).Add(50, pricey))
	balance := lpalgebra.NewExpr(0).Add(1, cheap).Add(1, pricey)
	m.AddConstraint("balance", "0", lpalgebra.NewConstraint(balance, lpalgebra.EQ, lpalgebra.NewExpr(100)))

	sol, err := New().Solve(m, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sol.Primal[lpalgebra.VarRefID(cheap)]; !approxEqual(got, 80) {
		t.Errorf("cheap dispatch = %v; want 80 (at its upper bound)", got)
	}
	if got := sol.Primal[lpalgebra.VarRefID(pricey)]; !approxEqual(got, 20) {
		t.Errorf("pricey dispatch = %v; want 20 (covers the remainder)", got)
	}
	if !approxEqual(sol.ObjectiveBound, 10*80+50*20) {
		t.Errorf("objective = %v; want %v", sol.ObjectiveBound, 10*80.0+50*20.0)
	}
}

func TestSolveDetectsInfeasibility(t *testing.T) {
	m := lpalgebra.NewModel()
	x := m.NewVariable("x", "0", lpalgebra.NonNegativeReal, 0, 5)
	m.AddObjective(lpalgebra.NewExpr(0).Add(1, x))
	m.AddConstraint("ge", "0", lpalgebra.NewConstraint(lpalgebra.NewExpr(0).Add(1, x), lpalgebra.GE, lpalgebra.NewExpr(10)))

	sol, err := New().Solve(m, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Status != "infeasible" {
		t.Errorf("status = %v; want infeasible", sol.Status)
	}
}

func TestSolveFreeVariableNegativeAtOptimum(t *testing.T) {
	m := lpalgebra.NewModel()
	theta := m.NewVariable("theta", "bus1", lpalgebra.Real, lpalgebra.Inf*-1, lpalgebra.Inf)
	m.AddConstraint("fix", "0", lpalgebra.NewConstraint(lpalgebra.NewExpr(0).Add(1, theta), lpalgebra.EQ, lpalgebra.NewExpr(-4)))

	sol, err := New().Solve(m, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sol.Primal[lpalgebra.VarRefID(theta)]; !approxEqual(got, -4) {
		t.Errorf("theta = %v; want -4", got)
	}
}
