package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"lopf/internal/model"
	"lopf/internal/opf"

	"gopkg.in/yaml.v3"
)

// ScenarioConfig is the on-disk configuration shape (YAML) for one LOPF
// scenario: a network plus the solve parameters to run over it.
type ScenarioConfig struct {
	// Optional: load the network body from a separate YAML (e.g.
	// scenarios/networks/*.yaml). If both NetworkFile and Network carry
	// entries, Network's entries override NetworkFile's by name.
	NetworkFile string        `yaml:"network_file"`
	Network     NetworkConfig `yaml:"network"`
	Solver      SolverConfig  `yaml:"solver"`
}

type SolverConfig struct {
	Name          string         `yaml:"name"`
	Formulation   string         `yaml:"formulation"`
	PTDFTolerance float64        `yaml:"ptdf_tolerance"`
	SkipPre       bool           `yaml:"skip_pre"`
	Options       map[string]any `yaml:"options"`
}

type NetworkConfig struct {
	Buses              []BusConfig          `yaml:"buses"`
	Carriers           []CarrierConfig      `yaml:"carriers"`
	Generators         []GeneratorConfig    `yaml:"generators"`
	StorageUnits       []StorageUnitConfig  `yaml:"storage_units"`
	Stores             []StoreConfig        `yaml:"stores"`
	Loads              []LoadConfig         `yaml:"loads"`
	Lines              []LineConfig         `yaml:"lines"`
	Transformers       []TransformerConfig  `yaml:"transformers"`
	Links              []LinkConfig         `yaml:"links"`
	Snapshots          []string             `yaml:"snapshots"`
	SnapshotWeightings map[string]float64   `yaml:"snapshot_weightings"`
	CO2Limit           *float64             `yaml:"co2_limit"`
}

type BusConfig struct {
	Name    string `yaml:"name"`
	Carrier string `yaml:"carrier"`
}

type CarrierConfig struct {
	Name         string  `yaml:"name"`
	CO2Emissions float64 `yaml:"co2_emissions"`
}

type GeneratorConfig struct {
	Name           string             `yaml:"name"`
	Bus            string             `yaml:"bus"`
	PNom           float64            `yaml:"p_nom"`
	PNomMin        float64            `yaml:"p_nom_min"`
	PNomMax        float64            `yaml:"p_nom_max"`
	PNomExtendable bool               `yaml:"p_nom_extendable"`
	Dispatch       string             `yaml:"dispatch"` // "variable" or "flexible"
	PMinPuFixed    float64            `yaml:"p_min_pu_fixed"`
	PMaxPuFixed    float64            `yaml:"p_max_pu_fixed"`
	PMinPu         map[string]float64 `yaml:"p_min_pu"`
	PMaxPu         map[string]float64 `yaml:"p_max_pu"`
	MarginalCost   float64            `yaml:"marginal_cost"`
	CapitalCost    float64            `yaml:"capital_cost"`
	Efficiency     float64            `yaml:"efficiency"`
	Carrier        string             `yaml:"carrier"`
}

type StorageUnitConfig struct {
	Name                 string             `yaml:"name"`
	Bus                  string             `yaml:"bus"`
	PNom                 float64            `yaml:"p_nom"`
	PNomMin              float64            `yaml:"p_nom_min"`
	PNomMax              float64            `yaml:"p_nom_max"`
	PNomExtendable       bool               `yaml:"p_nom_extendable"`
	PMaxPuFixed          float64            `yaml:"p_max_pu_fixed"`
	PMinPuFixed          float64            `yaml:"p_min_pu_fixed"`
	MaxHours             float64            `yaml:"max_hours"`
	EfficiencyStore      float64            `yaml:"efficiency_store"`
	EfficiencyDispatch   float64            `yaml:"efficiency_dispatch"`
	StandingLoss         float64            `yaml:"standing_loss"`
	CyclicStateOfCharge  bool               `yaml:"cyclic_state_of_charge"`
	StateOfChargeInitial float64            `yaml:"state_of_charge_initial"`
	MarginalCost         float64            `yaml:"marginal_cost"`
	CapitalCost          float64            `yaml:"capital_cost"`
	Inflow               map[string]float64 `yaml:"inflow"`
	StateOfChargeSet     map[string]float64 `yaml:"state_of_charge_set"`
}

type StoreConfig struct {
	Name           string  `yaml:"name"`
	Bus            string  `yaml:"bus"`
	ENom           float64 `yaml:"e_nom"`
	ENomMin        float64 `yaml:"e_nom_min"`
	ENomMax        float64 `yaml:"e_nom_max"`
	ENomExtendable bool    `yaml:"e_nom_extendable"`
	EMinPuFixed    float64 `yaml:"e_min_pu_fixed"`
	EMaxPuFixed    float64 `yaml:"e_max_pu_fixed"`
	StandingLoss   float64 `yaml:"standing_loss"`
	ECyclic        bool    `yaml:"e_cyclic"`
	EInitial       float64 `yaml:"e_initial"`
	MarginalCost   float64 `yaml:"marginal_cost"`
	CapitalCost    float64 `yaml:"capital_cost"`
}

type LoadConfig struct {
	Name string             `yaml:"name"`
	Bus  string             `yaml:"bus"`
	PSet map[string]float64 `yaml:"p_set"`
}

type LineConfig struct {
	Name           string  `yaml:"name"`
	Bus0           string  `yaml:"bus0"`
	Bus1           string  `yaml:"bus1"`
	SNom           float64 `yaml:"s_nom"`
	SNomMin        float64 `yaml:"s_nom_min"`
	SNomMax        float64 `yaml:"s_nom_max"`
	SNomExtendable bool    `yaml:"s_nom_extendable"`
	CapitalCost    float64 `yaml:"capital_cost"`
	XPu            float64 `yaml:"x_pu"`
	RPu            float64 `yaml:"r_pu"`
}

type TransformerConfig LineConfig

type LinkConfig struct {
	Name           string  `yaml:"name"`
	Bus0           string  `yaml:"bus0"`
	Bus1           string  `yaml:"bus1"`
	PNom           float64 `yaml:"p_nom"`
	PNomMin        float64 `yaml:"p_nom_min"`
	PNomMax        float64 `yaml:"p_nom_max"`
	PNomExtendable bool    `yaml:"p_nom_extendable"`
	PMinPu         float64 `yaml:"p_min_pu"`
	PMaxPu         float64 `yaml:"p_max_pu"`
	Efficiency     float64 `yaml:"efficiency"`
	MarginalCost   float64 `yaml:"marginal_cost"`
	CapitalCost    float64 `yaml:"capital_cost"`
}

// Load reads path, merges in NetworkFile if set, and validates the result.
func Load(path string) (*ScenarioConfig, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config but does not validate it, useful
// for debugging or printing a partially-built scenario.
func LoadUnchecked(path string) (*ScenarioConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c ScenarioConfig
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if c.NetworkFile != "" {
		networkPath := c.NetworkFile
		if !filepath.IsAbs(networkPath) {
			cand := filepath.Join(filepath.Dir(path), networkPath)
			if _, err := os.Stat(cand); err == nil {
				networkPath = cand
			}
		}
		loaded, err := loadNetworkFile(networkPath)
		if err != nil {
			return nil, err
		}
		c.Network = MergeNetwork(loaded, c.Network)
	}
	return &c, nil
}

// DecodeNetwork re-marshals an untyped map (e.g. a JSON request body
// already decoded by gin) through YAML so it lands on NetworkConfig's
// yaml-tagged fields without a second, JSON-tagged struct to keep in sync.
func DecodeNetwork(raw map[string]interface{}) (NetworkConfig, error) {
	bytes, err := yaml.Marshal(raw)
	if err != nil {
		return NetworkConfig{}, fmt.Errorf("config: re-encoding network payload: %w", err)
	}
	var n NetworkConfig
	if err := yaml.Unmarshal(bytes, &n); err != nil {
		return NetworkConfig{}, fmt.Errorf("config: decoding network payload: %w", err)
	}
	return n, nil
}

func (c *ScenarioConfig) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Solver.Formulation == "" {
		return errors.New("solver.formulation is required")
	}
	net, err := c.Network.ToNetwork()
	if err != nil {
		return fmt.Errorf("network config invalid: %w", err)
	}
	if err := net.Validate(); err != nil {
		return fmt.Errorf("network config invalid: %w", err)
	}
	return nil
}

type networkFileWrapper struct {
	Network NetworkConfig `yaml:"network"`
}

func loadNetworkFile(path string) (NetworkConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return NetworkConfig{}, err
	}
	var w networkFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return NetworkConfig{}, err
	}
	return w.Network, nil
}

// MergeNetwork overlays override's element lists onto base's, entries with
// the same name in override replacing base's. Used when a scenario loads a
// shared network file and applies its own per-run tweaks on top.
func MergeNetwork(base, override NetworkConfig) NetworkConfig {
	out := base
	out.Buses = mergeByName(out.Buses, override.Buses, func(b BusConfig) string { return b.Name })
	out.Carriers = mergeByName(out.Carriers, override.Carriers, func(c CarrierConfig) string { return c.Name })
	out.Generators = mergeByName(out.Generators, override.Generators, func(g GeneratorConfig) string { return g.Name })
	out.StorageUnits = mergeByName(out.StorageUnits, override.StorageUnits, func(s StorageUnitConfig) string { return s.Name })
	out.Stores = mergeByName(out.Stores, override.Stores, func(s StoreConfig) string { return s.Name })
	out.Loads = mergeByName(out.Loads, override.Loads, func(l LoadConfig) string { return l.Name })
	out.Lines = mergeByName(out.Lines, override.Lines, func(l LineConfig) string { return l.Name })
	out.Transformers = mergeByName(out.Transformers, override.Transformers, func(t TransformerConfig) string { return t.Name })
	out.Links = mergeByName(out.Links, override.Links, func(l LinkConfig) string { return l.Name })
	if len(override.Snapshots) > 0 {
		out.Snapshots = override.Snapshots
	}
	if len(override.SnapshotWeightings) > 0 {
		out.SnapshotWeightings = override.SnapshotWeightings
	}
	if override.CO2Limit != nil {
		out.CO2Limit = override.CO2Limit
	}
	return out
}

func mergeByName[T any](base, override []T, name func(T) string) []T {
	if len(override) == 0 {
		return base
	}
	byName := make(map[string]T, len(base)+len(override))
	order := make([]string, 0, len(base)+len(override))
	for _, v := range base {
		n := name(v)
		if _, ok := byName[n]; !ok {
			order = append(order, n)
		}
		byName[n] = v
	}
	for _, v := range override {
		n := name(v)
		if _, ok := byName[n]; !ok {
			order = append(order, n)
		}
		byName[n] = v
	}
	out := make([]T, len(order))
	for i, n := range order {
		out[i] = byName[n]
	}
	return out
}

// ToNetwork builds a model.Network from the configuration, applying the
// same zero-value-means-default conventions as the model constructors
// (e.g. an unset efficiency defaults to 1.0 via NewGenerator/NewLink,
// applied here before config overrides).
func (n NetworkConfig) ToNetwork() (*model.Network, error) {
	net := model.NewNetwork()

	for _, bc := range n.Buses {
		b, err := model.NewBus(bc.Name, bc.Carrier)
		if err != nil {
			return nil, err
		}
		net.AddBus(b)
	}
	for _, cc := range n.Carriers {
		net.Carriers[cc.Name] = &model.Carrier{Name: cc.Name, CO2Emissions: cc.CO2Emissions}
	}
	for _, gc := range n.Generators {
		g := model.NewGenerator(gc.Name, gc.Bus)
		g.PNom = gc.PNom
		g.PNomMin = gc.PNomMin
		g.PNomMax = gc.PNomMax
		g.PNomExtendable = gc.PNomExtendable
		if gc.Dispatch != "" {
			g.Dispatch = model.Dispatch(gc.Dispatch)
		}
		g.PMinPuFixed = gc.PMinPuFixed
		g.PMaxPuFixed = gc.PMaxPuFixed
		g.PMinPu = toSeries(gc.PMinPu)
		g.PMaxPu = toSeries(gc.PMaxPu)
		g.MarginalCost = gc.MarginalCost
		g.CapitalCost = gc.CapitalCost
		if gc.Efficiency != 0 {
			g.Efficiency = gc.Efficiency
		}
		g.Carrier = gc.Carrier
		net.AddGenerator(g)
	}
	for _, sc := range n.StorageUnits {
		s := model.NewStorageUnit(sc.Name, sc.Bus)
		s.PNom = sc.PNom
		s.PNomMin = sc.PNomMin
		s.PNomMax = sc.PNomMax
		s.PNomExtendable = sc.PNomExtendable
		if sc.PMaxPuFixed != 0 {
			s.PMaxPuFixed = sc.PMaxPuFixed
		}
		if sc.PMinPuFixed != 0 {
			s.PMinPuFixed = sc.PMinPuFixed
		}
		s.MaxHours = sc.MaxHours
		if sc.EfficiencyStore != 0 {
			s.EfficiencyStore = sc.EfficiencyStore
		}
		if sc.EfficiencyDispatch != 0 {
			s.EfficiencyDispatch = sc.EfficiencyDispatch
		}
		s.StandingLoss = sc.StandingLoss
		s.CyclicStateOfCharge = sc.CyclicStateOfCharge
		s.StateOfChargeInitial = sc.StateOfChargeInitial
		s.MarginalCost = sc.MarginalCost
		s.CapitalCost = sc.CapitalCost
		s.Inflow = toSeries(sc.Inflow)
		s.StateOfChargeSet = toSeries(sc.StateOfChargeSet)
		net.AddStorageUnit(s)
	}
	for _, sc := range n.Stores {
		s := model.NewStore(sc.Name, sc.Bus)
		s.ENom = sc.ENom
		s.ENomMin = sc.ENomMin
		s.ENomMax = sc.ENomMax
		s.ENomExtendable = sc.ENomExtendable
		s.EMinPuFixed = sc.EMinPuFixed
		if sc.EMaxPuFixed != 0 {
			s.EMaxPuFixed = sc.EMaxPuFixed
		}
		s.StandingLoss = sc.StandingLoss
		s.ECyclic = sc.ECyclic
		s.EInitial = sc.EInitial
		s.MarginalCost = sc.MarginalCost
		s.CapitalCost = sc.CapitalCost
		net.AddStore(s)
	}
	for _, lc := range n.Loads {
		l := model.NewLoad(lc.Name, lc.Bus)
		l.PSet = toSeries(lc.PSet)
		net.AddLoad(l)
	}
	for _, lc := range n.Lines {
		l := model.NewLine(lc.Name, lc.Bus0, lc.Bus1)
		l.SNom = lc.SNom
		l.SNomMin = lc.SNomMin
		l.SNomMax = lc.SNomMax
		l.SNomExtendable = lc.SNomExtendable
		l.CapitalCost = lc.CapitalCost
		l.XPu = lc.XPu
		l.RPu = lc.RPu
		net.AddLine(l)
	}
	for _, tc := range n.Transformers {
		t := model.NewTransformer(tc.Name, tc.Bus0, tc.Bus1)
		t.SNom = tc.SNom
		t.SNomMin = tc.SNomMin
		t.SNomMax = tc.SNomMax
		t.SNomExtendable = tc.SNomExtendable
		t.CapitalCost = tc.CapitalCost
		t.XPu = tc.XPu
		t.RPu = tc.RPu
		net.AddTransformer(t)
	}
	for _, lc := range n.Links {
		l := model.NewLink(lc.Name, lc.Bus0, lc.Bus1)
		l.PNom = lc.PNom
		l.PNomMin = lc.PNomMin
		l.PNomMax = lc.PNomMax
		l.PNomExtendable = lc.PNomExtendable
		if lc.PMinPu != 0 {
			l.PMinPu = lc.PMinPu
		}
		if lc.PMaxPu != 0 {
			l.PMaxPu = lc.PMaxPu
		}
		if lc.Efficiency != 0 {
			l.Efficiency = lc.Efficiency
		}
		l.MarginalCost = lc.MarginalCost
		l.CapitalCost = lc.CapitalCost
		net.AddLink(l)
	}

	net.Snapshots = make([]model.Snapshot, len(n.Snapshots))
	for i, sn := range n.Snapshots {
		net.Snapshots[i] = model.Snapshot(sn)
	}
	net.SnapshotWeightings = toWeightings(n.SnapshotWeightings)
	net.CO2Limit = n.CO2Limit

	return net, nil
}

func toSeries(m map[string]float64) model.Series {
	if len(m) == 0 {
		return nil
	}
	out := make(model.Series, len(m))
	for k, v := range m {
		out[model.Snapshot(k)] = v
	}
	return out
}

func toWeightings(m map[string]float64) model.SnapshotWeightings {
	out := make(model.SnapshotWeightings, len(m))
	for k, v := range m {
		out[model.Snapshot(k)] = v
	}
	return out
}

// Formulation converts the string formulation name from YAML into the
// opf package's typed Formulation value.
func (c *ScenarioConfig) Formulation() opf.Formulation {
	return opf.Formulation(c.Solver.Formulation)
}
