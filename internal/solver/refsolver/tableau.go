package refsolver

import (
	"fmt"

	"lopf/internal/lpalgebra"
	"lopf/internal/solver"
)

// colKind marks what role a tableau column beyond the structural decision
// columns plays, so duals can be read back off the right column per row.
type colKind int

const (
	kindSlack colKind = iota
	kindSurplus
	kindArtificial
)

type extraCol struct {
	row  int
	kind colKind
	col  int
}

func (p *problem) solve() (solver.Status, []float64, map[int]float64, error) {
	numRows := len(p.rows)
	if numRows == 0 {
		return solver.StatusOptimal, make([]float64, p.numCols), map[int]float64{}, nil
	}

	totalCols := p.numCols
	rowSign := make([]float64, numRows)
	var extras []extraCol
	basis := make([]int, numRows)

	// widen every structural row to totalCols+slack/surplus/artificial width
	// once the final column count is known; build in two passes.
	effSense := make([]lpalgebra.Sense, numRows)
	for i := range p.rows {
		sign := 1.0
		if p.rhs[i] < 0 {
			sign = -1.0
		}
		rowSign[i] = sign
		sense := p.senses[i]
		if sign < 0 {
			switch sense {
			case lpalgebra.LE:
				sense = lpalgebra.GE
			case lpalgebra.GE:
				sense = lpalgebra.LE
			}
		}
		effSense[i] = sense

		switch sense {
		case lpalgebra.LE:
			extras = append(extras, extraCol{row: i, kind: kindSlack, col: totalCols})
			totalCols++
		case lpalgebra.GE:
			extras = append(extras, extraCol{row: i, kind: kindSurplus, col: totalCols})
			totalCols++
			extras = append(extras, extraCol{row: i, kind: kindArtificial, col: totalCols})
			totalCols++
		case lpalgebra.EQ:
			extras = append(extras, extraCol{row: i, kind: kindArtificial, col: totalCols})
			totalCols++
		}
	}

	A := make([][]float64, numRows)
	b := make([]float64, numRows)
	for i := range p.rows {
		row := make([]float64, totalCols)
		for j, c := range p.rows[i] {
			row[j] = rowSign[i] * c
		}
		A[i] = row
		b[i] = rowSign[i] * p.rhs[i]
	}
	for _, e := range extras {
		switch e.kind {
		case kindSlack:
			A[e.row][e.col] = 1
			basis[e.row] = e.col
		case kindSurplus:
			A[e.row][e.col] = -1
		case kindArtificial:
			A[e.row][e.col] = 1
			basis[e.row] = e.col
		}
	}

	phase1Cost := make([]float64, totalCols)
	artificialCols := map[int]bool{}
	for _, e := range extras {
		if e.kind == kindArtificial {
			phase1Cost[e.col] = 1
			artificialCols[e.col] = true
		}
	}

	tab := newTableau(A, b, phase1Cost, basis)
	if unbounded := tab.run(nil); unbounded {
		return solver.StatusError, nil, nil, fmt.Errorf("refsolver: phase 1 unbounded (should not happen)")
	}
	if tab.objectiveValue() > 1e-6 {
		return solver.StatusInfeasible, nil, nil, nil
	}

	// evict any artificial left basic at zero level by pivoting on any
	// nonzero structural entry in its row; if none exists the row is
	// redundant and is left as-is.
	for i, bc := range tab.basis {
		if !artificialCols[bc] {
			continue
		}
		for j := 0; j < p.numCols; j++ {
			if abs(tab.rows[i][j]) > epsilon {
				tab.pivot(i, j)
				break
			}
		}
	}

	cost2 := make([]float64, totalCols)
	copy(cost2, p.cost)
	tab.setCost(cost2)

	excluded := artificialCols
	if unbounded := tab.run(excluded); unbounded {
		return solver.StatusUnbounded, nil, nil, nil
	}

	x := make([]float64, p.numCols)
	for i, bc := range tab.basis {
		if bc < p.numCols {
			x[bc] = tab.rows[i][len(tab.rows[i])-1]
		}
	}

	duals := map[int]float64{}
	for _, e := range extras {
		slot := p.rowConstraint[e.row]
		if slot < 0 {
			continue
		}
		switch e.kind {
		case kindSlack:
			rc := tab.reducedCost(e.col)
			duals[slot] = rowSign[e.row] * (-rc)
		case kindSurplus:
			rc := tab.reducedCost(e.col)
			duals[slot] = rowSign[e.row] * rc
		case kindArtificial:
			if effSense[e.row] == lpalgebra.EQ {
				rc := tab.reducedCost(e.col)
				duals[slot] = rowSign[e.row] * (-rc)
			}
		}
	}

	return solver.StatusOptimal, x, duals, nil
}

// tableau is a dense Gauss-Jordan simplex tableau. Row 0 holds reduced
// costs (c_j - z_j) plus the negated current objective value in the last
// column; rows 1..m (stored 0-indexed as rows[0..m-1] here, with the
// objective kept separately in obj) hold B^-1*A and B^-1*b.
type tableau struct {
	rows  [][]float64 // m rows, each numCols+1 wide (last column is rhs)
	obj   []float64   // numCols+1 wide
	basis []int
}

func newTableau(A [][]float64, b []float64, cost []float64, basis []int) *tableau {
	m := len(A)
	n := len(cost)
	rows := make([][]float64, m)
	for i := range A {
		row := make([]float64, n+1)
		copy(row, A[i])
		row[n] = b[i]
		rows[i] = row
	}
	t := &tableau{rows: rows, basis: append([]int(nil), basis...)}
	t.setCost(cost)
	return t
}

// setCost rebuilds the objective row for a new cost vector against the
// tableau's current basis, without touching the constraint rows.
func (t *tableau) setCost(cost []float64) {
	n := len(t.rows[0])
	obj := make([]float64, n)
	copy(obj, cost)
	for i, bc := range t.basis {
		c := cost[bc]
		if c == 0 {
			continue
		}
		for j := range obj {
			obj[j] -= c * t.rows[i][j]
		}
	}
	t.obj = obj
}

func (t *tableau) reducedCost(col int) float64 { return t.obj[col] }

func (t *tableau) objectiveValue() float64 { return -t.obj[len(t.obj)-1] }

// run executes Bland's-rule simplex pivots until optimal or unbounded.
// Columns in excluded are never chosen as an entering variable.
func (t *tableau) run(excluded map[int]bool) (unbounded bool) {
	n := len(t.obj) - 1
	for iter := 0; iter < 20000; iter++ {
		enter := -1
		for j := 0; j < n; j++ {
			if excluded != nil && excluded[j] {
				continue
			}
			if t.obj[j] < -epsilon {
				enter = j
				break
			}
		}
		if enter < 0 {
			return false
		}

		leave := -1
		bestRatio := 0.0
		for i, row := range t.rows {
			if row[enter] <= epsilon {
				continue
			}
			ratio := row[len(row)-1] / row[enter]
			if leave < 0 || ratio < bestRatio-epsilon ||
				(ratio < bestRatio+epsilon && t.basis[i] < t.basis[leave]) {
				leave = i
				bestRatio = ratio
			}
		}
		if leave < 0 {
			return true
		}
		t.pivot(leave, enter)
	}
	return false
}

func (t *tableau) pivot(row, col int) {
	pivotRow := t.rows[row]
	pv := pivotRow[col]
	for j := range pivotRow {
		pivotRow[j] /= pv
	}
	for i, r := range t.rows {
		if i == row {
			continue
		}
		factor := r[col]
		if factor == 0 {
			continue
		}
		for j := range r {
			r[j] -= factor * pivotRow[j]
		}
	}
	factor := t.obj[col]
	if factor != 0 {
		for j := range t.obj {
			t.obj[j] -= factor * pivotRow[j]
		}
	}
	t.basis[row] = col
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
