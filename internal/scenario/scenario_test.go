package scenario

import "testing"

func TestAllListsEveryBundledScenario(t *testing.T) {
	all := All()
	if len(all) == 0 {
		t.Fatal("expected at least one bundled scenario")
	}
	seen := map[string]bool{}
	for _, b := range all {
		if seen[b.Name] {
			t.Fatalf("duplicate scenario name %q", b.Name)
		}
		seen[b.Name] = true
		if b.Build == nil {
			t.Fatalf("scenario %q has no Build func", b.Name)
		}
	}
}

func TestByNameFindsAndRejects(t *testing.T) {
	if _, ok := ByName("two-bus-line"); !ok {
		t.Fatal("expected two-bus-line to be found")
	}
	if _, ok := ByName("does-not-exist"); ok {
		t.Fatal("expected unknown scenario name to report ok=false")
	}
}

func TestTwoBusLineShapesMatchExpectedDispatch(t *testing.T) {
	net, snapshots := TwoBusLine()
	if len(snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snapshots))
	}
	if len(net.Buses) != 2 {
		t.Fatalf("expected 2 buses, got %d", len(net.Buses))
	}
	gen, ok := net.Generators["gas-a"]
	if !ok {
		t.Fatal("expected generator gas-a")
	}
	if gen.PNom != 200 || gen.MarginalCost != 10 {
		t.Fatalf("generator does not match scenario S1: %+v", gen)
	}
	load, ok := net.Loads["load-b"]
	if !ok {
		t.Fatal("expected load load-b")
	}
	if load.PSet.At(snapshots[0], -1) != 100 {
		t.Fatalf("expected 100MW load, got %v", load.PSet.At(snapshots[0], -1))
	}
	line, ok := net.Lines["line-ab"]
	if !ok {
		t.Fatal("expected line line-ab")
	}
	if line.XPu != 0.1 || line.SNom != 150 {
		t.Fatalf("line does not match scenario S1: %+v", line)
	}
}

func TestStorageCyclicHas24Snapshots(t *testing.T) {
	net, snapshots := StorageCyclic()
	if len(snapshots) != 24 {
		t.Fatalf("expected 24 snapshots, got %d", len(snapshots))
	}
	su, ok := net.StorageUnits["battery"]
	if !ok {
		t.Fatal("expected storage unit battery")
	}
	if !su.CyclicStateOfCharge {
		t.Fatal("expected cyclic state of charge")
	}
	if su.MaxHours != 4 || su.PNom != 10 {
		t.Fatalf("storage unit does not match scenario S2: %+v", su)
	}
}
