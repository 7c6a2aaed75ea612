package marketdata

import (
	"fmt"

	"lopf/internal/model"
)

// ApplyLoadSeries writes series onto net.Loads[loadName].PSet. This (and
// ApplyGeneratorPMaxPu below) live here rather than as model.Network
// methods so the core data model package never depends on the market-data
// HTTP/cache machinery — callers that never fetch external data don't pay
// for it.
func ApplyLoadSeries(net *model.Network, loadName string, series model.Series) error {
	l, ok := net.Loads[loadName]
	if !ok {
		return fmt.Errorf("marketdata: load %q does not exist", loadName)
	}
	l.PSet = series
	return nil
}

// ApplyGeneratorPMaxPu writes series onto a generator's per-unit dispatch
// upper bound and switches it to DispatchVariable, matching the teacher's
// convention of only reading PMaxPu when Dispatch says to.
func ApplyGeneratorPMaxPu(net *model.Network, generatorName string, series model.Series) error {
	g, ok := net.Generators[generatorName]
	if !ok {
		return fmt.Errorf("marketdata: generator %q does not exist", generatorName)
	}
	g.Dispatch = model.DispatchVariable
	g.PMaxPu = series
	return nil
}
