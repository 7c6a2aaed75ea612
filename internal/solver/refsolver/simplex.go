// Package refsolver is a minimal dense two-phase simplex implementation of
// solver.Solver, used by cmd/demo and cmd/cli to run the bundled example
// scenarios end to end without requiring an external LP solver.
//
// It is deliberately not a production solver: no sparsity exploitation, no
// warm starts, no numerical safeguards beyond a basic epsilon and an
// iteration cap. A real deployment should implement solver.Solver against
// an external LP backend instead.
package refsolver

import (
	"math"

	"lopf/internal/lpalgebra"
	"lopf/internal/solver"
)

const (
	epsilon      = 1e-9
	maxIterScale = 200
)

// Solver is a solver.Solver backed by the in-process simplex below.
type Solver struct{}

func New() *Solver { return &Solver{} }

func (s *Solver) Solve(m *lpalgebra.Model, _ solver.Options) (solver.Solution, error) {
	prob, err := compile(m)
	if err != nil {
		return solver.Solution{}, err
	}

	status, x, duals, err := prob.solve()
	if err != nil {
		return solver.Solution{}, err
	}

	primal := make([]float64, m.NumVariables())
	for _, v := range prob.vars {
		val := x[v.posCol]
		if v.negCol >= 0 {
			val -= x[v.negCol]
		} else {
			val += v.lb
		}
		primal[lpalgebra.VarRefID(v.ref)] = val
	}

	dualByConstraint := make(map[int]float64, len(duals))
	for slot, d := range duals {
		dualByConstraint[slot] = d
	}

	objective := 0.0
	for _, t := range m.Objective.Terms {
		objective += t.Coef * primal[lpalgebra.VarRefID(t.Var)]
	}
	objective += m.Objective.Constant

	return solver.Solution{
		Status:         status,
		ObjectiveBound: objective,
		Primal:         primal,
		Dual:           dualByConstraint,
	}, nil
}

// splitVar is one original decision variable split into xPos - xNeg so the
// whole problem can be expressed with only non-negative columns.
type splitVar struct {
	ref      lpalgebra.VarRef
	posCol   int
	negCol   int // -1 if the variable's lower bound is >= 0 (no split needed)
	lb, ub   float64
}

// problem is the standard-form LP the simplex operates on: minimize c.x
// subject to A x = b, x >= 0, built from the model's variables, bounds and
// constraints.
type problem struct {
	vars []splitVar

	numCols       int // decision columns (post-split), before slack/surplus/artificial
	rows          [][]float64
	rhs           []float64
	senses        []lpalgebra.Sense
	cost          []float64
	rowConstraint []int // original model constraint slot for each structural row, -1 for bound rows
}

func compile(m *lpalgebra.Model) (*problem, error) {
	vars := m.Variables()
	p := &problem{}
	colOf := make(map[int]int) // VarRefID -> posCol
	for _, v := range vars {
		lb, ub := v.LB, v.UB
		sv := splitVar{ref: v.Ref, lb: lb, ub: ub, negCol: -1}
		sv.posCol = p.numCols
		p.numCols++
		if lb < 0 {
			sv.negCol = p.numCols
			p.numCols++
		}
		colOf[lpalgebra.VarRefID(v.Ref)] = len(p.vars)
		p.vars = append(p.vars, sv)
	}

	addRow := func(coefs []float64, sense lpalgebra.Sense, rhs float64, constraintSlot int) {
		p.rows = append(p.rows, coefs)
		p.rhs = append(p.rhs, rhs)
		p.rowConstraint = append(p.rowConstraint, constraintSlot)
		p.senses = append(p.senses, sense)
	}

	rowCoefs := func(e lpalgebra.Expr) []float64 {
		out := make([]float64, p.numCols)
		for _, t := range e.Terms {
			idx := colOf[lpalgebra.VarRefID(t.Var)]
			v := p.vars[idx]
			if v.negCol >= 0 {
				out[v.posCol] += t.Coef
				out[v.negCol] -= t.Coef
			} else if v.lb != 0 {
				// x = lb + x'; coefficient on x' is unchanged, constant
				// term -coef*lb folded into rhs by the caller.
				out[v.posCol] += t.Coef
			} else {
				out[v.posCol] += t.Coef
			}
		}
		return out
	}

	shift := func(e lpalgebra.Expr) float64 {
		s := 0.0
		for _, t := range e.Terms {
			idx := colOf[lpalgebra.VarRefID(t.Var)]
			v := p.vars[idx]
			if v.negCol < 0 && v.lb != 0 && !math.IsInf(v.lb, -1) {
				s += t.Coef * v.lb
			}
		}
		return s
	}

	p.senses = nil
	for _, c := range m.Constraints() {
		coefs := rowCoefs(c.C.Expr)
		rhs := -c.C.Expr.Constant - shift(c.C.Expr)
		addRow(coefs, c.C.Sense, rhs, c.Slot)
	}

	// explicit bound rows for every split/shifted variable with a finite
	// remaining bound (x' <= ub-lb, x' >= 0 is implicit).
	for _, v := range p.vars {
		if v.negCol >= 0 {
			// free or negative-lb variable: only an upper bound (if finite)
			// needs a row, expressed on xPos - xNeg.
			if !math.IsInf(v.ub, 1) {
				row := make([]float64, p.numCols)
				row[v.posCol] = 1
				row[v.negCol] = -1
				addRow(row, lpalgebra.LE, v.ub, -1)
			}
			if !math.IsInf(v.lb, -1) {
				row := make([]float64, p.numCols)
				row[v.posCol] = 1
				row[v.negCol] = -1
				addRow(row, lpalgebra.GE, v.lb, -1)
			}
			continue
		}
		if !math.IsInf(v.ub, 1) {
			row := make([]float64, p.numCols)
			row[v.posCol] = 1
			ub := v.ub
			if !math.IsInf(v.lb, -1) {
				ub -= v.lb
			}
			addRow(row, lpalgebra.LE, ub, -1)
		}
	}

	p.cost = make([]float64, p.numCols)
	for _, t := range m.Objective.Terms {
		idx := colOf[lpalgebra.VarRefID(t.Var)]
		v := p.vars[idx]
		p.cost[v.posCol] += t.Coef
		if v.negCol >= 0 {
			p.cost[v.negCol] -= t.Coef
		}
	}

	return p, nil
}
