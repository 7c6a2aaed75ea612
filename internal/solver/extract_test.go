package solver

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"lopf/internal/model"
	"lopf/internal/opf"
)

func TestExtractGeneratorAndLoadBalanceToZero(t *testing.T) {
	net := newSingleBusNetwork(100, 50)
	m, err := opf.Build(net, net.Snapshots, opf.BuildOptions{Formulation: opf.FormulationAngles})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	values := map[[2]string]float64{
		{opf.VarGeneratorP, opf.IndexGenSn("gen1", "t0")}: 50,
	}
	solution := Solution{Status: StatusOptimal, Primal: solvePrimals(m, values), Dual: map[int]float64{}}
	if err := extract(net, m, net.Snapshots, opf.FormulationAngles, solution); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := net.Generators["gen1"].Result.P["t0"]; got != 50 {
		t.Errorf("generator p = %v; want 50", got)
	}
	if got := net.Generators["gen1"].Result.PNomOpt; got != 100 {
		t.Errorf("generator p_nom_opt = %v; want 100 (fixed capacity)", got)
	}
	if got := net.Loads["load1"].Result.P["t0"]; got != 50 {
		t.Errorf("load p = %v; want 50", got)
	}
	if got := net.Buses["bus1"].Result.P["t0"]; got != 0 {
		t.Errorf("bus p = %v; want 0 (generation matches load)", got)
	}
}

func TestExtractStorageUnitDispatchAndSOC(t *testing.T) {
	net := model.NewNetwork()
	bus, _ := model.NewBus("bus1", "AC")
	net.AddBus(bus)
	s := model.NewStorageUnit("batt1", "bus1")
	s.PNom = 10
	net.AddStorageUnit(s)
	net.Snapshots = []model.Snapshot{"t0"}
	net.SnapshotWeightings = model.SnapshotWeightings{"t0": 1}

	m, err := opf.Build(net, net.Snapshots, opf.BuildOptions{Formulation: opf.FormulationAngles})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	values := map[[2]string]float64{
		{opf.VarStorageDispatch, opf.IndexGenSn("batt1", "t0")}: 4,
		{opf.VarStorageStore, opf.IndexGenSn("batt1", "t0")}:    0,
		{opf.VarStateOfCharge, opf.IndexGenSn("batt1", "t0")}:   6,
	}
	solution := Solution{Status: StatusOptimal, Primal: solvePrimals(m, values), Dual: map[int]float64{}}
	if err := extract(net, m, net.Snapshots, opf.FormulationAngles, solution); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := net.StorageUnits["batt1"].Result.P["t0"]; got != 4 {
		t.Errorf("storage p = %v; want 4", got)
	}
	if got := net.StorageUnits["batt1"].Result.StateOfCharge["t0"]; got != 6 {
		t.Errorf("storage state of charge = %v; want 6", got)
	}
	if got := net.StorageUnits["batt1"].Result.Spill["t0"]; got != 0 {
		t.Errorf("storage spill = %v; want 0 (no inflow)", got)
	}
}

func TestExtractLinkFlowsApplyEfficiencyAtBus1(t *testing.T) {
	net := model.NewNetwork()
	b0, _ := model.NewBus("bus0", "AC")
	b1, _ := model.NewBus("bus1", "AC")
	net.AddBus(b0)
	net.AddBus(b1)
	link := model.NewLink("link1", "bus0", "bus1")
	link.PNom = 30
	link.Efficiency = 0.9
	net.AddLink(link)
	net.Snapshots = []model.Snapshot{"t0"}
	net.SnapshotWeightings = model.SnapshotWeightings{"t0": 1}

	m, err := opf.Build(net, net.Snapshots, opf.BuildOptions{Formulation: opf.FormulationAngles})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	values := map[[2]string]float64{
		{opf.VarLinkP, opf.IndexGenSn("link1", "t0")}: 20,
	}
	solution := Solution{Status: StatusOptimal, Primal: solvePrimals(m, values), Dual: map[int]float64{}}
	if err := extract(net, m, net.Snapshots, opf.FormulationAngles, solution); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := net.Links["link1"].Result.P0["t0"]; got != 20 {
		t.Errorf("link p0 = %v; want 20", got)
	}
	if got := net.Links["link1"].Result.P1["t0"]; got != -18 {
		t.Errorf("link p1 = %v; want -18 (20 * -0.9)", got)
	}
	if got := net.Buses["bus0"].Result.P["t0"]; got != -20 {
		t.Errorf("bus0 p = %v; want -20", got)
	}
	if got := net.Buses["bus1"].Result.P["t0"]; got != 18 {
		t.Errorf("bus1 p = %v; want 18", got)
	}
}

func TestExtractAnglesFormulationReadsDuals(t *testing.T) {
	net := newSingleBusNetwork(100, 50)
	m, err := opf.Build(net, net.Snapshots, opf.BuildOptions{Formulation: opf.FormulationAngles})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	slot, ok := m.Constraint("power_balance", opf.IndexGenSn("bus1", "t0"))
	if !ok {
		t.Fatalf("power_balance constraint not found")
	}
	solution := Solution{
		Status: StatusOptimal,
		Primal: solvePrimals(m, nil),
		Dual:   map[int]float64{slot: 37.5},
	}
	if err := extract(net, m, net.Snapshots, opf.FormulationAngles, solution); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := net.Buses["bus1"].Result.MarginalPrice["t0"]; got != 37.5 {
		t.Errorf("marginal price = %v; want 37.5", got)
	}
}

func TestExtractAnglesPTDFRecoversNonSlackAngleFromBusPower(t *testing.T) {
	net := model.NewNetwork()
	b0, _ := model.NewBus("bus0", "AC")
	b1, _ := model.NewBus("bus1", "AC")
	net.AddBus(b0)
	net.AddBus(b1)

	g := model.NewGenerator("gen1", "bus0")
	g.Dispatch = model.DispatchFlexible
	g.PNom = 100
	g.PMaxPuFixed = 1
	net.AddGenerator(g)

	l := model.NewLoad("load1", "bus1")
	l.PSet = model.Series{"t0": 50}
	net.AddLoad(l)

	line := model.NewLine("line1", "bus0", "bus1")
	line.SNom = 100
	line.XPu = 0.1
	line.SubNetwork = "sub0"
	net.AddLine(line)

	key := model.BranchKey{Type: model.BranchLine, Name: "line1"}
	y := 1 / line.XPu
	net.SubNetworks["sub0"] = &model.SubNetwork{
		Name:      "sub0",
		Carrier:   "AC",
		SlackBus:  "bus0",
		BusesO:    []string{"bus1"},
		BranchesO: []model.BranchKey{key},
		B:         mat.NewDense(1, 1, []float64{y}),
		PTDF:      mat.NewDense(1, 1, []float64{-1}),
	}

	net.Snapshots = []model.Snapshot{"t0"}
	net.SnapshotWeightings = model.SnapshotWeightings{"t0": 1}

	m, err := opf.Build(net, net.Snapshots, opf.BuildOptions{Formulation: opf.FormulationPTDF})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	values := map[[2]string]float64{
		{opf.VarGeneratorP, opf.IndexGenSn("gen1", "t0")}:          50,
		{opf.VarPassiveBranchP, opf.IndexBranchSn(key, "t0")}:      50,
	}
	solution := Solution{Status: StatusOptimal, Primal: solvePrimals(m, values), Dual: map[int]float64{}}
	if err := extract(net, m, net.Snapshots, opf.FormulationPTDF, solution); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := net.Buses["bus0"].Result.VAng["t0"]; got != 0 {
		t.Errorf("slack bus angle = %v; want 0", got)
	}
	want := -50.0 / y
	if got := net.Buses["bus1"].Result.VAng["t0"]; math.Abs(got-want) > 1e-9 {
		t.Errorf("non-slack bus angle = %v; want %v", got, want)
	}
}
