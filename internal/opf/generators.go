// Package opf assembles the LP model for one solve: one file per
// subsystem (generators, storage, stores, branch extensions, links,
// passive branch flows, nodal balance, CO2, objective), invoked by
// build.go in the canonical order the concurrency model requires.
package opf

import (
	"fmt"

	"lopf/internal/lpalgebra"
	"lopf/internal/model"
)

const (
	VarGeneratorP    = "generator_p"
	VarGeneratorPNom = "generator_p_nom"
)

// DefineGeneratorVariablesConstraints declares generator_p[gen,sn] (bounded
// directly for fixed-capacity generators, left unbounded for extendable
// ones pending generator_p_nom) and, for extendable generators,
// generator_p_nom plus the p_lower/p_upper constraints tying the two
// together — grounded on define_generator_variables_constraints in
// pypsa/opf.py.
func DefineGeneratorVariablesConstraints(net *model.Network, m *lpalgebra.Model, snapshots []model.Snapshot) error {
	for _, name := range net.GeneratorNamesOrdered() {
		g := net.Generators[name]
		for _, sn := range snapshots {
			lb, ub := lpalgebra.Inf*-1, lpalgebra.Inf
			if !g.PNomExtendable {
				lb = g.PNom * g.PMinPuAt(sn)
				ub = g.PNom * g.PMaxPuAt(sn)
			}
			m.NewVariable(VarGeneratorP, IndexGenSn(name, sn), lpalgebra.Real, lb, ub)
		}
		if g.PNomExtendable {
			m.NewVariable(VarGeneratorPNom, name, lpalgebra.NonNegativeReal, g.PNomMin, g.PNomMax)
			for _, sn := range snapshots {
				pRef := m.MustVariable(VarGeneratorP, IndexGenSn(name, sn))
				pNomRef := m.MustVariable(VarGeneratorPNom, name)

				lower := lpalgebra.NewExpr(0).Add(1, pRef).Add(-g.PMinPuAt(sn), pNomRef)
				m.AddConstraint("generator_p_lower", IndexGenSn(name, sn),
					lpalgebra.NewConstraint(lower, lpalgebra.GE, lpalgebra.NewExpr(0)))

				upper := lpalgebra.NewExpr(0).Add(1, pRef).Add(-g.PMaxPuAt(sn), pNomRef)
				m.AddConstraint("generator_p_upper", IndexGenSn(name, sn),
					lpalgebra.NewConstraint(upper, lpalgebra.LE, lpalgebra.NewExpr(0)))
			}
		}
	}
	return nil
}

func IndexGenSn(name string, sn model.Snapshot) string {
	return fmt.Sprintf("%s|%s", name, sn)
}
