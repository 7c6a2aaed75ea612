package model

import "fmt"

// Store is an energy reservoir with decoupled dispatch (p) and energy (e).
type Store struct {
	Name string
	Bus  string

	ENom           float64
	ENomMin        float64
	ENomMax        float64
	ENomExtendable bool

	EMinPuFixed float64
	EMaxPuFixed float64

	StandingLoss float64
	ECyclic      bool
	EInitial     float64

	MarginalCost float64
	CapitalCost  float64
	Sign         float64

	Result StoreResult
}

// StoreResult holds the per-snapshot and capacity outputs of a solve.
type StoreResult struct {
	P       Series
	E       Series
	ENomOpt float64
}

func NewStore(name, bus string) *Store {
	return &Store{
		Name:        name,
		Bus:         bus,
		EMaxPuFixed: 1.0,
		Sign:        1.0,
	}
}

func (s *Store) Validate(net *Network) error {
	if s.Name == "" {
		return fmt.Errorf("store: name is required")
	}
	if _, ok := net.Buses[s.Bus]; !ok {
		return fmt.Errorf("store %q: bus %q does not exist", s.Name, s.Bus)
	}
	if s.ENomExtendable && s.ENomMin > s.ENomMax {
		return fmt.Errorf("store %q: e_nom_min > e_nom_max", s.Name)
	}
	if s.StandingLoss < 0 || s.StandingLoss >= 1 {
		return fmt.Errorf("store %q: standing_loss must be in [0,1)", s.Name)
	}
	return nil
}
