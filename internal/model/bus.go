package model

import "fmt"

// Bus aggregates power balance at every snapshot. Its Carrier ("AC"/"DC")
// determines which impedance attribute a passive branch touching it uses.
type Bus struct {
	Name    string
	Carrier string

	Result BusResult
}

// BusResult holds the per-snapshot outputs of a solve.
type BusResult struct {
	P             Series
	VAng          Series
	VMagPu        Series
	MarginalPrice Series
}

// Carrier names an energy carrier (e.g. "AC", "DC", "gas", "wind") and its
// CO2 intensity, used by the optional CO2 constraint.
type Carrier struct {
	Name          string
	CO2Emissions  float64 // mass per unit energy
}

func NewBus(name, carrier string) (*Bus, error) {
	if name == "" {
		return nil, fmt.Errorf("bus: name is required")
	}
	if carrier == "" {
		return nil, fmt.Errorf("bus %q: carrier is required", name)
	}
	return &Bus{Name: name, Carrier: carrier}, nil
}
