package opf

import (
	"testing"

	"lopf/internal/lpalgebra"
	"lopf/internal/model"
)

func TestBuildAnglesUsesNodalBalanceConstraints(t *testing.T) {
	net := newSingleBusNetwork(100, 50)
	m, err := Build(net, net.Snapshots, BuildOptions{Formulation: FormulationAngles})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := m.Constraint("power_balance", balanceKey("bus1", "t0")); !ok {
		t.Errorf("angles formulation should register a power_balance constraint")
	}
	if _, ok := m.Constraint("sub_network_balance_constraint", balanceKey("sub0", "t0")); ok {
		t.Errorf("angles formulation should not register a sub_network_balance_constraint")
	}
}

func TestBuildPTDFUsesSubNetworkBalanceConstraints(t *testing.T) {
	net := newSingleBusNetwork(100, 50)
	net.SubNetworks["sub0"] = &model.SubNetwork{Name: "sub0", Carrier: "AC", SlackBus: "bus1"}
	m, err := Build(net, net.Snapshots, BuildOptions{Formulation: FormulationPTDF})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := m.Constraint("sub_network_balance_constraint", balanceKey("sub0", "t0")); !ok {
		t.Errorf("ptdf formulation should register a sub_network_balance_constraint")
	}
	if _, ok := m.Constraint("power_balance", balanceKey("bus1", "t0")); ok {
		t.Errorf("ptdf formulation should not also register a power_balance constraint (would double count)")
	}
}

func TestBuildCO2ConstraintOnlyWhenLimitSet(t *testing.T) {
	net := newSingleBusNetwork(100, 50)
	m, err := Build(net, net.Snapshots, BuildOptions{Formulation: FormulationAngles})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.Constraint("co2_constraint", ""); ok {
		t.Errorf("co2_constraint should not be registered without a CO2Limit")
	}

	limit := 1000.0
	net.CO2Limit = &limit
	m, err = Build(net, net.Snapshots, BuildOptions{Formulation: FormulationAngles})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.Constraint("co2_constraint", ""); !ok {
		t.Errorf("co2_constraint should be registered once CO2Limit is set")
	}
}

func TestBuildRunsExtraFunctionalityLastWithObjectiveAlreadySet(t *testing.T) {
	net := newSingleBusNetwork(100, 50)
	var sawObjectiveTerms bool
	opts := BuildOptions{
		Formulation: FormulationAngles,
		ExtraFunctionality: func(n *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot) error {
			sawObjectiveTerms = len(m.Objective.Terms) > 0
			m.AddConstraint("extra_cap", "", lpalgebra.NewConstraint(
				lpalgebra.NewExpr(0).Add(1, m.MustVariable(VarGeneratorP, IndexGenSn("gen1", "t0"))),
				lpalgebra.LE, lpalgebra.NewExpr(90)))
			return nil
		},
	}
	m, err := Build(net, net.Snapshots, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sawObjectiveTerms {
		t.Errorf("ExtraFunctionality should run after the objective is populated")
	}
	if _, ok := m.Constraint("extra_cap", ""); !ok {
		t.Errorf("ExtraFunctionality's constraint should be present in the built model")
	}
}

func TestBuildUnsupportedFormulationPropagatesError(t *testing.T) {
	net := newSingleBusNetwork(100, 50)
	_, err := Build(net, net.Snapshots, BuildOptions{Formulation: Formulation("nope")})
	if err == nil {
		t.Fatalf("expected an error for an unsupported formulation")
	}
}
