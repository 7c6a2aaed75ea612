package opf

import (
	"fmt"

	"lopf/internal/lpalgebra"
	"lopf/internal/model"
)

// PBalance accumulates, per (bus, snapshot), every controllable one-port's
// signed contribution to that bus's power balance, before passive branch
// flows are added by the chosen formulation. Grounded on
// define_nodal_balances in pypsa/opf.py, which stores the equivalent in
// network._p_balance.
type PBalance map[string]lpalgebra.Expr

func balanceKey(bus string, sn model.Snapshot) string { return fmt.Sprintf("%s|%s", bus, sn) }

// DefineNodalBalances builds the pre-passive-branch balance expression for
// every bus and snapshot.
func DefineNodalBalances(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot) (PBalance, error) {
	balance := make(PBalance, len(net.Buses)*len(snapshots))
	for _, bus := range net.BusNamesOrdered() {
		for _, sn := range snapshots {
			balance[balanceKey(bus, sn)] = lpalgebra.NewExpr(0)
		}
	}

	for _, name := range net.LinkNamesOrdered() {
		l := net.Links[name]
		for _, sn := range snapshots {
			pRef := m.MustVariable(VarLinkP, IndexGenSn(name, sn))
			balance[balanceKey(l.Bus0, sn)] = balance[balanceKey(l.Bus0, sn)].Add(-1, pRef)
			balance[balanceKey(l.Bus1, sn)] = balance[balanceKey(l.Bus1, sn)].Add(l.Efficiency, pRef)
		}
	}

	for _, name := range net.GeneratorNamesOrdered() {
		g := net.Generators[name]
		for _, sn := range snapshots {
			pRef := m.MustVariable(VarGeneratorP, IndexGenSn(name, sn))
			balance[balanceKey(g.Bus, sn)] = balance[balanceKey(g.Bus, sn)].Add(g.Sign, pRef)
		}
	}

	for _, name := range net.LoadNamesOrdered() {
		l := net.Loads[name]
		for _, sn := range snapshots {
			balance[balanceKey(l.Bus, sn)] = balance[balanceKey(l.Bus, sn)].AddConst(l.Sign * l.PSet.At(sn, 0))
		}
	}

	for _, name := range net.StorageUnitNamesOrdered() {
		s := net.StorageUnits[name]
		for _, sn := range snapshots {
			dispatchRef := m.MustVariable(VarStorageDispatch, IndexGenSn(name, sn))
			storeRef := m.MustVariable(VarStorageStore, IndexGenSn(name, sn))
			balance[balanceKey(s.Bus, sn)] = balance[balanceKey(s.Bus, sn)].Add(s.Sign, dispatchRef).Add(-s.Sign, storeRef)
		}
	}

	for _, name := range net.StoreNamesOrdered() {
		s := net.Stores[name]
		for _, sn := range snapshots {
			pRef := m.MustVariable(VarStoreP, IndexGenSn(name, sn))
			balance[balanceKey(s.Bus, sn)] = balance[balanceKey(s.Bus, sn)].Add(s.Sign, pRef)
		}
	}

	return balance, nil
}

// DefineNodalBalanceConstraints adds each passive branch's contribution to
// its endpoint buses' balance and registers one equality constraint per
// (bus, snapshot). Used for the "angles" and "kirchhoff" formulations.
func DefineNodalBalanceConstraints(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot, balance PBalance) error {
	addPassiveBranchContributions(net, m, snapshots, balance)
	for _, bus := range net.BusNamesOrdered() {
		for _, sn := range snapshots {
			m.AddConstraint("power_balance", balanceKey(bus, sn),
				lpalgebra.NewConstraint(balance[balanceKey(bus, sn)], lpalgebra.EQ, lpalgebra.NewExpr(0)))
		}
	}
	return nil
}

// DefineSubNetworkBalanceConstraints aggregates each sub-network's buses'
// balance expressions into one constraint per (sub-network, snapshot).
// Used for the "ptdf" and "cycles" formulations, where passive branch
// flows are already expressed in terms of the per-bus balance and adding
// branch contributions again would double count them.
func DefineSubNetworkBalanceConstraints(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot, balance PBalance) error {
	for _, snName := range net.SubNetworkNamesOrdered() {
		sub := net.SubNetworks[snName]
		allBuses := append([]string{sub.SlackBus}, sub.BusesO...)
		for _, sn := range snapshots {
			agg := lpalgebra.NewExpr(0)
			for _, bus := range allBuses {
				agg = agg.Plus(balance[balanceKey(bus, sn)])
			}
			m.AddConstraint("sub_network_balance_constraint", balanceKey(snName, sn),
				lpalgebra.NewConstraint(agg, lpalgebra.EQ, lpalgebra.NewExpr(0)))
		}
	}
	return nil
}

func addPassiveBranchContributions(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot, balance PBalance) {
	branches := net.PassiveBranches()
	for _, key := range net.PassiveBranchKeysOrdered() {
		b := branches[key]
		for _, sn := range snapshots {
			pRef := m.MustVariable(VarPassiveBranchP, IndexBranchSn(key, sn))
			balance[balanceKey(b.Bus0, sn)] = balance[balanceKey(b.Bus0, sn)].Add(-1, pRef)
			balance[balanceKey(b.Bus1, sn)] = balance[balanceKey(b.Bus1, sn)].Add(1, pRef)
		}
	}
}
