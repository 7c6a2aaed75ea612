package marketdata

import (
	"testing"

	"lopf/internal/model"
)

func TestApplyLoadSeriesWritesPSet(t *testing.T) {
	net := model.NewNetwork()
	net.AddLoad(model.NewLoad("load0", "bus0"))
	series := model.Series{"t0": 42}

	if err := ApplyLoadSeries(net, "load0", series); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := net.Loads["load0"].PSet.At("t0", -1); got != 42 {
		t.Fatalf("expected PSet[t0]=42, got %v", got)
	}
}

func TestApplyLoadSeriesRejectsUnknownLoad(t *testing.T) {
	net := model.NewNetwork()
	if err := ApplyLoadSeries(net, "missing", model.Series{}); err == nil {
		t.Fatal("expected error for unknown load")
	}
}

func TestApplyGeneratorPMaxPuSwitchesDispatch(t *testing.T) {
	net := model.NewNetwork()
	net.AddGenerator(model.NewGenerator("gen0", "bus0"))
	series := model.Series{"t0": 0.8}

	if err := ApplyGeneratorPMaxPu(net, "gen0", series); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g := net.Generators["gen0"]
	if g.Dispatch != model.DispatchVariable {
		t.Fatalf("expected DispatchVariable, got %v", g.Dispatch)
	}
	if got := g.PMaxPu.At("t0", -1); got != 0.8 {
		t.Fatalf("expected PMaxPu[t0]=0.8, got %v", got)
	}
}
