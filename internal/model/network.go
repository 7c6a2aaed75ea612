package model

import (
	"fmt"
	"sort"
)

// Network is the read-only input to the builder: the element tables plus
// the snapshot list and weightings. It is mutated only by
// DetermineNetworkTopology (external collaborator) before a build, and by
// the result extractor after a successful solve.
type Network struct {
	Buses    map[string]*Bus
	Carriers map[string]*Carrier

	Generators   map[string]*Generator
	StorageUnits map[string]*StorageUnit
	Stores       map[string]*Store
	Loads        map[string]*Load
	Links        map[string]*Link

	Lines        map[string]*PassiveBranch
	Transformers map[string]*PassiveBranch

	SubNetworks map[string]*SubNetwork

	Snapshots          []Snapshot
	SnapshotWeightings SnapshotWeightings

	CO2Limit *float64
}

func NewNetwork() *Network {
	return &Network{
		Buses:              map[string]*Bus{},
		Carriers:           map[string]*Carrier{},
		Generators:         map[string]*Generator{},
		StorageUnits:       map[string]*StorageUnit{},
		Stores:             map[string]*Store{},
		Loads:              map[string]*Load{},
		Links:              map[string]*Link{},
		Lines:              map[string]*PassiveBranch{},
		Transformers:       map[string]*PassiveBranch{},
		SubNetworks:        map[string]*SubNetwork{},
		SnapshotWeightings: SnapshotWeightings{},
	}
}

func (n *Network) AddBus(b *Bus) { n.Buses[b.Name] = b }

func (n *Network) AddGenerator(g *Generator) { n.Generators[g.Name] = g }

func (n *Network) AddStorageUnit(s *StorageUnit) { n.StorageUnits[s.Name] = s }

func (n *Network) AddStore(s *Store) { n.Stores[s.Name] = s }

func (n *Network) AddLoad(l *Load) { n.Loads[l.Name] = l }

func (n *Network) AddLink(l *Link) { n.Links[l.Name] = l }

func (n *Network) AddLine(b *PassiveBranch) { n.Lines[b.Type.Name] = b }

func (n *Network) AddTransformer(b *PassiveBranch) { n.Transformers[b.Type.Name] = b }

// PassiveBranches returns every line and transformer keyed by BranchKey.
// The result is a map, so ranging over it has no fixed order;
// PassiveBranchKeysOrdered gives the (type, then name) order.
func (n *Network) PassiveBranches() map[BranchKey]*PassiveBranch {
	out := make(map[BranchKey]*PassiveBranch, len(n.Lines)+len(n.Transformers))
	for name, b := range n.Lines {
		out[BranchKey{Type: BranchLine, Name: name}] = b
	}
	for name, b := range n.Transformers {
		out[BranchKey{Type: BranchTransformer, Name: name}] = b
	}
	return out
}

// PassiveBranchKeysOrdered returns every passive branch key sorted
// deterministically, used wherever declarators iterate branches to keep
// variable/constraint declaration order reproducible.
func (n *Network) PassiveBranchKeysOrdered() []BranchKey {
	branches := n.PassiveBranches()
	keys := make([]BranchKey, 0, len(branches))
	for k := range branches {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return keys[i].Name < keys[j].Name
	})
	return keys
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (n *Network) BusNamesOrdered() []string         { return sortedKeys(n.Buses) }
func (n *Network) GeneratorNamesOrdered() []string    { return sortedKeys(n.Generators) }
func (n *Network) StorageUnitNamesOrdered() []string  { return sortedKeys(n.StorageUnits) }
func (n *Network) StoreNamesOrdered() []string        { return sortedKeys(n.Stores) }
func (n *Network) LoadNamesOrdered() []string         { return sortedKeys(n.Loads) }
func (n *Network) LinkNamesOrdered() []string         { return sortedKeys(n.Links) }
func (n *Network) SubNetworkNamesOrdered() []string   { return sortedKeys(n.SubNetworks) }

// Validate checks every invariant spec.md §3 lists that is local to the
// static data model (topology-dependent invariants, e.g. "each branch
// belongs to exactly one sub-network", are checked by the topology
// collaborator, not here).
func (n *Network) Validate() error {
	for _, sn := range n.Snapshots {
		w := n.SnapshotWeightings.WeightOf(sn)
		if w <= 0 {
			return fmt.Errorf("snapshot %q: weighting must be > 0, got %v", sn, w)
		}
	}
	for _, g := range n.Generators {
		if err := g.Validate(n); err != nil {
			return err
		}
	}
	for _, s := range n.StorageUnits {
		if err := s.Validate(n); err != nil {
			return err
		}
	}
	for _, s := range n.Stores {
		if err := s.Validate(n); err != nil {
			return err
		}
	}
	for _, l := range n.Loads {
		if err := l.Validate(n); err != nil {
			return err
		}
	}
	for _, l := range n.Links {
		if err := l.Validate(n); err != nil {
			return err
		}
	}
	for _, b := range n.Lines {
		if err := b.Validate(n); err != nil {
			return err
		}
	}
	for _, b := range n.Transformers {
		if err := b.Validate(n); err != nil {
			return err
		}
	}
	return nil
}

// PreviousSnapshot returns the snapshot immediately preceding snapshots[i]
// within the given solve window, wrapping to the last entry of the window
// when i is 0; callers decide whether a wrap applies (it is only used for
// cyclic state of charge). This implements
// the open question in spec §9: cyclicity wraps within the *solve window*
// snapshots, not the network's full snapshot list.
func PreviousSnapshot(snapshots []Snapshot, i int) Snapshot {
	if i == 0 {
		return snapshots[len(snapshots)-1]
	}
	return snapshots[i-1]
}
