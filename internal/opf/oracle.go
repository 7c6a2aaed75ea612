package opf

import (
	"fmt"
	"math"

	"lopf/internal/model"
)

// OraclePerfectForesight computes a dynamic-programming upper bound on the
// profit a single storage unit could extract from a known price series,
// ignoring every other network constraint (passive branch limits, other
// elements' balance contributions, sub-network coupling). It is meant to
// run before the full LP build as a cheap sanity check: if the LP's
// reported objective contribution from this unit is far above this bound,
// something in the scenario (prices, efficiencies, capacity) is probably
// wrong.
//
// Grounded on oracleProfitCanonical (internal/analysis/potential.go) and
// optimizeDP (internal/strategy/oracle.go) in the teacher, generalized from
// the teacher's canonical 1MW/1MWh/100%-efficient battery to the unit's own
// nominal power, max hours, charge/discharge efficiencies, and standing
// loss.
func OraclePerfectForesight(net *model.Network, snapshots []model.Snapshot, unitName string, prices map[model.Snapshot]float64, socSteps int) (float64, error) {
	s, ok := net.StorageUnits[unitName]
	if !ok {
		return 0, fmt.Errorf("oracle: storage unit %q not found", unitName)
	}
	if len(snapshots) == 0 {
		return 0, nil
	}
	if socSteps < 2 {
		socSteps = 200
	}

	pNom := s.PNom
	if s.PNomExtendable {
		pNom = s.PNomMax
	}
	if pNom <= 0 || math.IsInf(pNom, 1) {
		return 0, fmt.Errorf("oracle: storage unit %q has no usable nominal power for a bound", unitName)
	}
	capacity := s.MaxHours * pNom
	if capacity <= 0 {
		return 0, nil
	}

	dischargeMax := pNom * s.PMaxPuFixed
	chargeMax := -pNom * s.PMinPuFixed

	nStates := socSteps + 1
	socOf := func(idx int) float64 { return capacity * float64(idx) / float64(socSteps) }
	idxOf := func(soc float64) int {
		if soc <= 0 {
			return 0
		}
		if soc >= capacity {
			return socSteps
		}
		return int(math.Round(soc / capacity * float64(socSteps)))
	}

	negInf := math.Inf(-1)
	dp := make([]float64, nStates)
	next := make([]float64, nStates)
	for i := range dp {
		dp[i] = negInf
	}

	initSOC := s.StateOfChargeInitial
	if s.CyclicStateOfCharge {
		initSOC = capacity / 2
	}
	dp[idxOf(initSOC)] = 0

	const actionSteps = 20
	for _, sn := range snapshots {
		for i := range next {
			next[i] = negInf
		}
		elapsed := net.SnapshotWeightings.WeightOf(sn)
		decay := math.Pow(1-s.StandingLoss, elapsed)
		price := prices[sn]

		for idx := 0; idx < nStates; idx++ {
			if dp[idx] == negInf {
				continue
			}
			soc := socOf(idx) * decay

			idle := idxOf(soc)
			if dp[idx] > next[idle] {
				next[idle] = dp[idx]
			}

			for k := 1; k <= actionSteps; k++ {
				frac := float64(k) / float64(actionSteps)

				power := dischargeMax * frac
				energyOut := power * elapsed / s.EfficiencyDispatch
				if energyOut <= soc {
					v := dp[idx] + (price-s.MarginalCost)*power*elapsed
					ni := idxOf(soc - energyOut)
					if v > next[ni] {
						next[ni] = v
					}
				}

				cpower := chargeMax * frac
				energyIn := cpower * elapsed * s.EfficiencyStore
				if soc+energyIn <= capacity {
					v := dp[idx] - price*cpower*elapsed
					ni := idxOf(soc + energyIn)
					if v > next[ni] {
						next[ni] = v
					}
				}
			}
		}
		dp, next = next, dp
	}

	best := negInf
	for _, v := range dp {
		if v > best {
			best = v
		}
	}
	if best == negInf {
		return 0, nil
	}
	return best, nil
}
