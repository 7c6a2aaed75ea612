package solver

import (
	"gonum.org/v1/gonum/mat"

	"lopf/internal/lpalgebra"
	"lopf/internal/model"
	"lopf/internal/opf"
)

// extract unpacks a usable Solution back into net's element result tables,
// grounded on extract_optimisation_results in pypsa/opf.py. It is called
// once per Run, after the solver has reported an optimal or sub-optimal
// (but otherwise usable) stop.
func extract(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot, formulation opf.Formulation, solution Solution) error {
	primal := func(ref lpalgebra.VarRef) float64 { return solution.Primal[lpalgebra.VarRefID(ref)] }

	busP := make(map[string]model.Series, len(net.Buses))
	for _, bus := range net.BusNamesOrdered() {
		busP[bus] = model.Series{}
	}
	addBusP := func(bus string, sn model.Snapshot, v float64) { busP[bus][sn] += v }

	for _, name := range net.GeneratorNamesOrdered() {
		g := net.Generators[name]
		p := model.Series{}
		for _, sn := range snapshots {
			v := primal(m.MustVariable(opf.VarGeneratorP, opf.IndexGenSn(name, sn)))
			p[sn] = v
			addBusP(g.Bus, sn, g.Sign*v)
		}
		g.Result.P = p
		if g.PNomExtendable {
			g.Result.PNomOpt = primal(m.MustVariable(opf.VarGeneratorPNom, name))
		} else {
			g.Result.PNomOpt = g.PNom
		}
	}

	for _, name := range net.StorageUnitNamesOrdered() {
		s := net.StorageUnits[name]
		p := model.Series{}
		soc := model.Series{}
		spill := model.Series{}
		for _, sn := range snapshots {
			dispatch := primal(m.MustVariable(opf.VarStorageDispatch, opf.IndexGenSn(name, sn)))
			store := primal(m.MustVariable(opf.VarStorageStore, opf.IndexGenSn(name, sn)))
			p[sn] = dispatch - store
			soc[sn] = primal(m.MustVariable(opf.VarStateOfCharge, opf.IndexGenSn(name, sn)))
			if s.HasSpillAt(sn) {
				spill[sn] = primal(m.MustVariable(opf.VarStorageSpill, opf.IndexGenSn(name, sn)))
			} else {
				spill[sn] = 0
			}
			addBusP(s.Bus, sn, s.Sign*p[sn])
		}
		s.Result.P = p
		s.Result.StateOfCharge = soc
		s.Result.Spill = spill
		if s.PNomExtendable {
			s.Result.PNomOpt = primal(m.MustVariable(opf.VarStoragePNom, name))
		} else {
			s.Result.PNomOpt = s.PNom
		}
	}

	for _, name := range net.StoreNamesOrdered() {
		s := net.Stores[name]
		p := model.Series{}
		e := model.Series{}
		for _, sn := range snapshots {
			v := primal(m.MustVariable(opf.VarStoreP, opf.IndexGenSn(name, sn)))
			p[sn] = v
			e[sn] = primal(m.MustVariable(opf.VarStoreE, opf.IndexGenSn(name, sn)))
			addBusP(s.Bus, sn, s.Sign*v)
		}
		s.Result.P = p
		s.Result.E = e
		if s.ENomExtendable {
			s.Result.ENomOpt = primal(m.MustVariable(opf.VarStoreENom, name))
		} else {
			s.Result.ENomOpt = s.ENom
		}
	}

	for _, name := range net.LoadNamesOrdered() {
		l := net.Loads[name]
		p := model.Series{}
		for _, sn := range snapshots {
			v := l.PSet.At(sn, 0)
			p[sn] = v
			addBusP(l.Bus, sn, l.Sign*v)
		}
		l.Result.P = p
	}

	for _, name := range net.LinkNamesOrdered() {
		l := net.Links[name]
		p0 := model.Series{}
		p1 := model.Series{}
		for _, sn := range snapshots {
			v0 := primal(m.MustVariable(opf.VarLinkP, opf.IndexGenSn(name, sn)))
			v1 := -v0 * l.Efficiency
			p0[sn] = v0
			p1[sn] = v1
			addBusP(l.Bus0, sn, -v0)
			addBusP(l.Bus1, sn, -v1)
		}
		l.Result.P0 = p0
		l.Result.P1 = p1
		if l.PNomExtendable {
			l.Result.PNomOpt = primal(m.MustVariable(opf.VarLinkPNom, name))
		} else {
			l.Result.PNomOpt = l.PNom
		}
	}

	branches := net.PassiveBranches()
	for _, key := range net.PassiveBranchKeysOrdered() {
		b := branches[key]
		p0 := model.Series{}
		p1 := model.Series{}
		for _, sn := range snapshots {
			v := primal(m.MustVariable(opf.VarPassiveBranchP, opf.IndexBranchSn(key, sn)))
			p0[sn] = v
			p1[sn] = -v
		}
		b.Result.P0 = p0
		b.Result.P1 = p1
		if b.SNomExtendable {
			b.Result.SNomOpt = primal(m.MustVariable(opf.VarPassiveBranchSNom, key.String()))
		} else {
			b.Result.SNomOpt = b.SNom
		}
	}

	for _, bus := range net.BusNamesOrdered() {
		net.Buses[bus].Result.P = busP[bus]
	}

	if err := extractAngles(net, m, snapshots, formulation, busP, solution); err != nil {
		return err
	}

	return nil
}

// extractAngles fills v_ang, marginal_price, and v_mag_pu, grounded on the
// formulation-dependent branch of extract_optimisation_results:
// "angles" reads voltage_angles and power_balance duals directly; the
// PTDF-derived formulations recover non-slack angles per sub-network by
// solving the reduced susceptance system against the already-extracted
// bus power injections.
func extractAngles(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot, formulation opf.Formulation, busP map[string]model.Series, solution Solution) error {
	vAng := make(map[string]model.Series, len(net.Buses))
	marginalPrice := make(map[string]model.Series, len(net.Buses))
	for _, bus := range net.BusNamesOrdered() {
		vAng[bus] = model.Series{}
		marginalPrice[bus] = model.Series{}
	}

	switch formulation {
	case opf.FormulationAngles:
		for _, bus := range net.BusNamesOrdered() {
			for _, sn := range snapshots {
				vAng[bus][sn] = solution.Primal[lpalgebra.VarRefID(m.MustVariable(opf.VarVoltageAngle, opf.IndexGenSn(bus, sn)))]
				if slot, ok := m.Constraint("power_balance", opf.IndexGenSn(bus, sn)); ok {
					marginalPrice[bus][sn] = solution.Dual[slot]
				}
			}
		}
	default:
		for _, subName := range net.SubNetworkNamesOrdered() {
			sub := net.SubNetworks[subName]
			for _, sn := range snapshots {
				vAng[sub.SlackBus][sn] = 0
			}
			if len(sub.BusesO) == 0 || sub.B == nil {
				continue
			}
			n, _ := sub.B.Dims()
			pVec := mat.NewVecDense(n, nil)
			for _, sn := range snapshots {
				for j, bus := range sub.BusesO {
					pVec.SetVec(j, busP[bus][sn])
				}
				var theta mat.VecDense
				if err := theta.SolveVec(sub.B, pVec); err != nil {
					continue
				}
				for j, bus := range sub.BusesO {
					vAng[bus][sn] = theta.AtVec(j)
				}
			}
		}
	}

	for _, bus := range net.BusNamesOrdered() {
		b := net.Buses[bus]
		vMag := model.Series{}
		for _, sn := range snapshots {
			if b.Carrier == "DC" {
				vMag[sn] = 1 + vAng[bus][sn]
			} else {
				vMag[sn] = 1
			}
		}
		if b.Carrier == "DC" {
			for _, sn := range snapshots {
				vAng[bus][sn] = 0
			}
		}
		b.Result.VAng = vAng[bus]
		b.Result.VMagPu = vMag
		b.Result.MarginalPrice = marginalPrice[bus]
	}

	return nil
}
