package opf

import (
	"testing"

	"lopf/internal/model"
)

func TestOraclePerfectForesightUnknownUnit(t *testing.T) {
	net, _ := newStorageNetwork()
	_, err := OraclePerfectForesight(net, net.Snapshots, "nope", nil, 0)
	if err == nil {
		t.Fatalf("expected an error for an unknown storage unit")
	}
}

func TestOraclePerfectForesightNoSnapshotsIsZero(t *testing.T) {
	net, _ := newStorageNetwork()
	v, err := OraclePerfectForesight(net, nil, "batt1", nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0 {
		t.Errorf("OraclePerfectForesight with no snapshots = %v; want 0", v)
	}
}

func TestOraclePerfectForesightCapturesObviousArbitrage(t *testing.T) {
	net, s := newStorageNetwork()
	s.StateOfChargeInitial = 0
	s.EfficiencyStore = 1
	s.EfficiencyDispatch = 1
	s.MarginalCost = 0

	// Cheap at t0 (charge), expensive at t1 (discharge): an obvious profit.
	prices := map[model.Snapshot]float64{"t0": 1, "t1": 10, "t2": 10}
	v, err := OraclePerfectForesight(net, net.Snapshots, "batt1", prices, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v <= 0 {
		t.Errorf("OraclePerfectForesight should find positive profit from an obvious price spread, got %v", v)
	}
}
