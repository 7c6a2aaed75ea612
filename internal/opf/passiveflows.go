package opf

import (
	"fmt"

	"lopf/internal/lpalgebra"
	"lopf/internal/model"
)

const (
	VarVoltageAngle = "voltage_angles"
	VarCycle        = "cycles"
)

// Formulation names the four recognized passive-branch flow formulations.
type Formulation string

const (
	FormulationAngles    Formulation = "angles"
	FormulationPTDF      Formulation = "ptdf"
	FormulationCycles    Formulation = "cycles"
	FormulationKirchhoff Formulation = "kirchhoff"
)

// ErrUnsupportedFormulation is returned for any formulation outside the
// four recognized values.
type ErrUnsupportedFormulation struct{ Formulation string }

func (e *ErrUnsupportedFormulation) Error() string {
	return fmt.Sprintf("UnsupportedFormulation: %q", e.Formulation)
}

// ValidateFormulation reports ErrUnsupportedFormulation for any formulation
// outside the four recognized values. Run calls this before topology
// discovery so an unsupported formulation fails fast instead of surfacing
// mid-Build, after earlier declarators have already mutated m.
func ValidateFormulation(formulation Formulation) error {
	switch formulation {
	case FormulationAngles, FormulationPTDF, FormulationCycles, FormulationKirchhoff:
		return nil
	default:
		return &ErrUnsupportedFormulation{Formulation: string(formulation)}
	}
}

// DefinePassiveBranchFlows declares passive_branch_p and, depending on
// formulation, the supporting variables/constraints that pin its value —
// grounded on define_passive_branch_flows and its four
// _with_angles/_PTDF/_cycles/_kirchhoff variants in pypsa/opf.py.
func DefinePassiveBranchFlows(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot, formulation Formulation, ptdfTolerance float64, balance PBalance) error {
	switch formulation {
	case FormulationAngles:
		return defineFlowsWithAngles(net, m, snapshots)
	case FormulationPTDF:
		return defineFlowsWithPTDF(net, m, snapshots, ptdfTolerance, balance)
	case FormulationCycles:
		return defineFlowsWithCycles(net, m, snapshots, balance)
	case FormulationKirchhoff:
		return defineFlowsWithKirchhoff(net, m, snapshots)
	default:
		return &ErrUnsupportedFormulation{Formulation: string(formulation)}
	}
}

func declarePassiveBranchP(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot) {
	for _, key := range net.PassiveBranchKeysOrdered() {
		for _, sn := range snapshots {
			m.NewVariable(VarPassiveBranchP, IndexBranchSn(key, sn), lpalgebra.Real, -lpalgebra.Inf, lpalgebra.Inf)
		}
	}
}

func defineFlowsWithAngles(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot) error {
	for _, bus := range net.BusNamesOrdered() {
		for _, sn := range snapshots {
			m.NewVariable(VarVoltageAngle, IndexGenSn(bus, sn), lpalgebra.Real, -lpalgebra.Inf, lpalgebra.Inf)
		}
	}

	for _, subName := range net.SubNetworkNamesOrdered() {
		sub := net.SubNetworks[subName]
		for _, sn := range snapshots {
			thetaSlack := m.MustVariable(VarVoltageAngle, IndexGenSn(sub.SlackBus, sn))
			m.AddConstraint("slack_angle", IndexGenSn(subName, sn),
				lpalgebra.NewConstraint(lpalgebra.NewExpr(0).Add(1, thetaSlack), lpalgebra.EQ, lpalgebra.NewExpr(0)))
		}
	}

	declarePassiveBranchP(net, m, snapshots)
	branches := net.PassiveBranches()
	for _, key := range net.PassiveBranchKeysOrdered() {
		b := branches[key]
		sub := net.SubNetworks[b.SubNetwork]
		carrier := "AC"
		if sub != nil {
			carrier = sub.Carrier
		}
		y := 1 / b.Impedance(carrier)
		for _, sn := range snapshots {
			theta0 := m.MustVariable(VarVoltageAngle, IndexGenSn(b.Bus0, sn))
			theta1 := m.MustVariable(VarVoltageAngle, IndexGenSn(b.Bus1, sn))
			pRef := m.MustVariable(VarPassiveBranchP, IndexBranchSn(key, sn))
			expr := lpalgebra.NewExpr(0).Add(y, theta0).Add(-y, theta1).Add(-1, pRef)
			m.AddConstraint("passive_branch_p_def", IndexBranchSn(key, sn),
				lpalgebra.NewConstraint(expr, lpalgebra.EQ, lpalgebra.NewExpr(0)))
		}
	}
	return nil
}

func defineFlowsWithPTDF(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot, tolerance float64, balance PBalance) error {
	declarePassiveBranchP(net, m, snapshots)

	for _, subName := range net.SubNetworkNamesOrdered() {
		sub := net.SubNetworks[subName]
		if len(sub.BranchesO) == 0 || sub.PTDF == nil {
			continue
		}
		_, numBuses := sub.PTDF.Dims()
		for i, key := range sub.BranchesO {
			for _, sn := range snapshots {
				expr := lpalgebra.NewExpr(0)
				for j := 0; j < numBuses; j++ {
					v := sub.PTDF.At(i, j)
					if v == 0 || (tolerance > 0 && absf(v) < tolerance) {
						continue
					}
					expr = expr.Plus(balance[balanceKey(sub.BusesO[j], sn)].Scale(v))
				}
				pRef := m.MustVariable(VarPassiveBranchP, IndexBranchSn(key, sn))
				expr = expr.Add(-1, pRef)
				m.AddConstraint("passive_branch_p_def", IndexBranchSn(key, sn),
					lpalgebra.NewConstraint(expr, lpalgebra.EQ, lpalgebra.NewExpr(0)))
			}
		}
	}
	return nil
}

func defineFlowsWithCycles(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot, balance PBalance) error {
	for _, subName := range net.SubNetworkNamesOrdered() {
		sub := net.SubNetworks[subName]
		if sub.C == nil {
			continue
		}
		_, numCycles := sub.C.Dims()
		for j := 0; j < numCycles; j++ {
			for _, sn := range snapshots {
				m.NewVariable(VarCycle, IndexCycle(subName, j, sn), lpalgebra.Real, -lpalgebra.Inf, lpalgebra.Inf)
			}
		}
	}

	declarePassiveBranchP(net, m, snapshots)
	branches := net.PassiveBranches()

	for _, subName := range net.SubNetworkNamesOrdered() {
		sub := net.SubNetworks[subName]
		if len(sub.BranchesO) == 0 {
			continue
		}
		_, numCycles := sub.C.Dims()
		for i, key := range sub.BranchesO {
			for _, sn := range snapshots {
				expr := lpalgebra.NewExpr(0)
				for j := 0; j < numCycles; j++ {
					v := sub.C.At(i, j)
					if v == 0 {
						continue
					}
					cycleRef := m.MustVariable(VarCycle, IndexCycle(subName, j, sn))
					expr = expr.Add(v, cycleRef)
				}
				_, numTreeBuses := sub.T.Dims()
				for j := 0; j < numTreeBuses; j++ {
					v := sub.T.At(i, j)
					if v == 0 {
						continue
					}
					expr = expr.Plus(balance[balanceKey(sub.BusesO[j], sn)].Scale(v))
				}
				pRef := m.MustVariable(VarPassiveBranchP, IndexBranchSn(key, sn))
				expr = expr.Add(-1, pRef)
				m.AddConstraint("passive_branch_p_def", IndexBranchSn(key, sn),
					lpalgebra.NewConstraint(expr, lpalgebra.EQ, lpalgebra.NewExpr(0)))
			}
		}
		if err := defineCycleConstraints(net, m, snapshots, sub, subName, branches); err != nil {
			return err
		}
	}
	return nil
}

func defineFlowsWithKirchhoff(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot) error {
	declarePassiveBranchP(net, m, snapshots)
	branches := net.PassiveBranches()
	for _, subName := range net.SubNetworkNamesOrdered() {
		sub := net.SubNetworks[subName]
		if err := defineCycleConstraints(net, m, snapshots, sub, subName, branches); err != nil {
			return err
		}
	}
	return nil
}

// defineCycleConstraints enforces Kirchhoff's voltage law around every
// fundamental cycle: Σ impedance(i) * C[i,j] * p[i] == 0, shared by the
// "cycles" and "kirchhoff" formulations.
func defineCycleConstraints(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot, sub *model.SubNetwork, subName string, branches map[model.BranchKey]*model.PassiveBranch) error {
	if sub.C == nil {
		return nil
	}
	numBranches, numCycles := sub.C.Dims()
	for j := 0; j < numCycles; j++ {
		for _, sn := range snapshots {
			expr := lpalgebra.NewExpr(0)
			for i := 0; i < numBranches; i++ {
				v := sub.C.At(i, j)
				if v == 0 {
					continue
				}
				key := sub.BranchesO[i]
				b := branches[key]
				z := b.Impedance(sub.Carrier)
				pRef := m.MustVariable(VarPassiveBranchP, IndexBranchSn(key, sn))
				expr = expr.Add(z*v, pRef)
			}
			m.AddConstraint("cycle_constraints", IndexCycle(subName, j, sn),
				lpalgebra.NewConstraint(expr, lpalgebra.EQ, lpalgebra.NewExpr(0)))
		}
	}
	return nil
}

func IndexCycle(subName string, j int, sn model.Snapshot) string {
	return fmt.Sprintf("%s|%d|%s", subName, j, sn)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
