package model

import "gonum.org/v1/gonum/mat"

// SubNetwork is a connected component of the passive-branch graph, as
// produced by the topology collaborator (spec §6). The core never computes
// C, T, B, or PTDF itself — it only consumes them.
type SubNetwork struct {
	Name    string
	Carrier string // "AC" or "DC"

	SlackBus string
	BusesO   []string    // ordered non-slack buses
	BranchesO []BranchKey // ordered branches belonging to this sub-network

	// C is the cycle basis matrix (branches x cycles).
	// T is the spanning tree matrix (branches x non-slack buses).
	// B is the susceptance matrix reduced to the non-slack buses
	// (BusesO x BusesO); the slack bus row and column are not stored.
	// PTDF is the power transfer distribution factor matrix (branches x
	// non-slack buses, columns in BusesO order); the slack bus has no column.
	//
	// Any of these may be nil if the chosen formulation does not need them
	// (e.g. "angles" never touches C/T/PTDF).
	C    *mat.Dense
	T    *mat.Dense
	B    *mat.Dense
	PTDF *mat.Dense
}

// BusIndex returns the column index of bus within BusesO, or -1 if bus is
// the slack bus or not part of this sub-network.
func (sn *SubNetwork) BusIndex(bus string) int {
	for i, b := range sn.BusesO {
		if b == bus {
			return i
		}
	}
	return -1
}

// BranchIndex returns the row index of key within BranchesO, or -1.
func (sn *SubNetwork) BranchIndex(key BranchKey) int {
	for i, b := range sn.BranchesO {
		if b == key {
			return i
		}
	}
	return -1
}
