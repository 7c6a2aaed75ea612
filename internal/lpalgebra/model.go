package lpalgebra

import (
	"fmt"
	"math"
)

// Domain restricts the feasible region of a declared variable.
type Domain int

const (
	Real Domain = iota
	NonNegativeReal
)

// Inf is the sentinel for "no bound" on either side, matching the spec's
// "lower/upper bound (each possibly None)".
var Inf = math.Inf(1)

type variableSlot struct {
	Name  string
	Index string
	LB    float64
	UB    float64
}

type constraintSlot struct {
	Name  string
	Index string
	C     Constraint
}

// Model is the flat store of named, indexed variables and constraints a
// solve builds up. Containers are pre-sizeable from the network's element
// counts (spec §4.1) via Reserve.
type Model struct {
	variables []variableSlot
	varIndex  map[string]map[string]VarRef

	constraints   []constraintSlot
	constraintIdx map[string]map[string]int

	Objective Expr
}

func NewModel() *Model {
	return &Model{
		varIndex:      map[string]map[string]VarRef{},
		constraintIdx: map[string]map[string]int{},
	}
}

// Reserve pre-grows the backing slices to avoid repeated reallocation
// during the bulk declaration passes (spec §9: "an LP assembly pass
// touches millions of terms; use a single expression pool").
func (m *Model) Reserve(numVars, numConstraints int) {
	if cap(m.variables) < numVars {
		grown := make([]variableSlot, len(m.variables), numVars)
		copy(grown, m.variables)
		m.variables = grown
	}
	if cap(m.constraints) < numConstraints {
		grown := make([]constraintSlot, len(m.constraints), numConstraints)
		copy(grown, m.constraints)
		m.constraints = grown
	}
}

// NewVariable declares name[index] with the given domain and bounds (Inf
// meaning unbounded on that side) and returns its reference. Declaring the
// same (name, index) twice is a programmer error and panics, mirroring the
// ordering guarantee in spec §5 that every variable is declared exactly
// once before any constraint references it.
func (m *Model) NewVariable(name, index string, domain Domain, lb, ub float64) VarRef {
	if domain == NonNegativeReal && lb < 0 {
		lb = 0
	}
	if _, ok := m.varIndex[name]; !ok {
		m.varIndex[name] = map[string]VarRef{}
	}
	if _, exists := m.varIndex[name][index]; exists {
		panic(fmt.Sprintf("lpalgebra: variable %s[%s] already declared", name, index))
	}
	ref := VarRef{id: len(m.variables)}
	m.variables = append(m.variables, variableSlot{Name: name, Index: index, LB: lb, UB: ub})
	m.varIndex[name][index] = ref
	return ref
}

// Variable looks up a previously declared name[index].
func (m *Model) Variable(name, index string) (VarRef, bool) {
	byIndex, ok := m.varIndex[name]
	if !ok {
		return VarRef{}, false
	}
	ref, ok := byIndex[index]
	return ref, ok
}

// MustVariable is Variable but panics on a missing lookup — used where the
// declarator ordering guarantee (spec §5) makes a miss a programmer error.
func (m *Model) MustVariable(name, index string) VarRef {
	ref, ok := m.Variable(name, index)
	if !ok {
		panic(fmt.Sprintf("lpalgebra: variable %s[%s] not declared", name, index))
	}
	return ref
}

func (m *Model) NumVariables() int { return len(m.variables) }

func (m *Model) VariableBounds(ref VarRef) (lb, ub float64) {
	s := m.variables[ref.id]
	return s.LB, s.UB
}

func (m *Model) VariableName(ref VarRef) (name, index string) {
	s := m.variables[ref.id]
	return s.Name, s.Index
}

// AddConstraint registers a constraint under name[index].
func (m *Model) AddConstraint(name, index string, c Constraint) int {
	if _, ok := m.constraintIdx[name]; !ok {
		m.constraintIdx[name] = map[string]int{}
	}
	slot := len(m.constraints)
	m.constraints = append(m.constraints, constraintSlot{Name: name, Index: index, C: c})
	m.constraintIdx[name][index] = slot
	return slot
}

// Constraint looks up a previously registered name[index]'s slot.
func (m *Model) Constraint(name, index string) (int, bool) {
	byIndex, ok := m.constraintIdx[name]
	if !ok {
		return 0, false
	}
	slot, ok := byIndex[index]
	return slot, ok
}

func (m *Model) NumConstraints() int { return len(m.constraints) }

func (m *Model) ConstraintAt(slot int) Constraint { return m.constraints[slot].C }

// AddObjective folds terms into the running objective expression.
func (m *Model) AddObjective(e Expr) {
	m.Objective = m.Objective.Plus(e)
}

// VariableSnapshot is a read-only view of a declared variable, used by the
// solver adapter layer to build its own internal representation without
// reaching into Model internals.
type VariableSnapshot struct {
	Name  string
	Index string
	LB    float64
	UB    float64
	Ref   VarRef
}

// Variables returns every declared variable in declaration order —
// declaration order is the order the canonical builder pipeline runs in
// (spec §5), so this is stable across runs of the same scenario.
func (m *Model) Variables() []VariableSnapshot {
	out := make([]VariableSnapshot, len(m.variables))
	for i, v := range m.variables {
		out[i] = VariableSnapshot{Name: v.Name, Index: v.Index, LB: v.LB, UB: v.UB, Ref: VarRef{id: i}}
	}
	return out
}

// ConstraintSnapshot is a read-only view of a registered constraint.
type ConstraintSnapshot struct {
	Name  string
	Index string
	C     Constraint
	Slot  int
}

func (m *Model) Constraints() []ConstraintSnapshot {
	out := make([]ConstraintSnapshot, len(m.constraints))
	for i, c := range m.constraints {
		out[i] = ConstraintSnapshot{Name: c.Name, Index: c.Index, C: c.C, Slot: i}
	}
	return out
}

// VarRefID exposes the flat storage slot for adapters that must build a
// dense coefficient matrix (e.g. translating to a solver's native format).
func VarRefID(v VarRef) int { return v.id }
