package opf

import (
	"lopf/internal/lpalgebra"
	"lopf/internal/model"
)

// DefineLinearObjective accumulates marginal-cost terms for every
// dispatchable variable plus capital-cost terms for every extendable
// element's nominal capacity, subtracting the capital cost of each
// element's pre-existing capacity so the constant term reflects only the
// cost of new build — grounded on define_linear_objective in
// pypsa/opf.py.
func DefineLinearObjective(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot) error {
	obj := lpalgebra.NewExpr(0)

	for _, name := range net.GeneratorNamesOrdered() {
		g := net.Generators[name]
		for _, sn := range snapshots {
			pRef := m.MustVariable(VarGeneratorP, IndexGenSn(name, sn))
			obj = obj.Add(g.MarginalCost*net.SnapshotWeightings.WeightOf(sn), pRef)
		}
	}
	for _, name := range net.StorageUnitNamesOrdered() {
		s := net.StorageUnits[name]
		for _, sn := range snapshots {
			pRef := m.MustVariable(VarStorageDispatch, IndexGenSn(name, sn))
			obj = obj.Add(s.MarginalCost*net.SnapshotWeightings.WeightOf(sn), pRef)
		}
	}
	for _, name := range net.StoreNamesOrdered() {
		s := net.Stores[name]
		for _, sn := range snapshots {
			pRef := m.MustVariable(VarStoreP, IndexGenSn(name, sn))
			obj = obj.Add(s.MarginalCost*net.SnapshotWeightings.WeightOf(sn), pRef)
		}
	}
	for _, name := range net.LinkNamesOrdered() {
		l := net.Links[name]
		for _, sn := range snapshots {
			pRef := m.MustVariable(VarLinkP, IndexGenSn(name, sn))
			obj = obj.Add(l.MarginalCost*net.SnapshotWeightings.WeightOf(sn), pRef)
		}
	}

	for _, name := range net.GeneratorNamesOrdered() {
		g := net.Generators[name]
		if !g.PNomExtendable {
			continue
		}
		pNomRef := m.MustVariable(VarGeneratorPNom, name)
		obj = obj.Add(g.CapitalCost, pNomRef).AddConst(-g.CapitalCost * g.PNom)
	}
	for _, name := range net.StorageUnitNamesOrdered() {
		s := net.StorageUnits[name]
		if !s.PNomExtendable {
			continue
		}
		pNomRef := m.MustVariable(VarStoragePNom, name)
		obj = obj.Add(s.CapitalCost, pNomRef).AddConst(-s.CapitalCost * s.PNom)
	}
	for _, name := range net.StoreNamesOrdered() {
		s := net.Stores[name]
		if !s.ENomExtendable {
			continue
		}
		eNomRef := m.MustVariable(VarStoreENom, name)
		obj = obj.Add(s.CapitalCost, eNomRef).AddConst(-s.CapitalCost * s.ENom)
	}
	branches := net.PassiveBranches()
	for _, key := range net.PassiveBranchKeysOrdered() {
		b := branches[key]
		if !b.SNomExtendable {
			continue
		}
		sNomRef := m.MustVariable(VarPassiveBranchSNom, key.String())
		obj = obj.Add(b.CapitalCost, sNomRef).AddConst(-b.CapitalCost * b.SNom)
	}
	for _, name := range net.LinkNamesOrdered() {
		l := net.Links[name]
		if !l.PNomExtendable {
			continue
		}
		pNomRef := m.MustVariable(VarLinkPNom, name)
		obj = obj.Add(l.CapitalCost, pNomRef).AddConst(-l.CapitalCost * l.PNom)
	}

	m.AddObjective(obj)
	return nil
}
