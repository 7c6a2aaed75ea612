package topology

import (
	"context"
	"fmt"
	"sort"

	"github.com/katalvlaran/lvlath/graph/algorithms"
	"github.com/katalvlaran/lvlath/graph/core"

	"lopf/internal/model"
)

// Reference is a deterministic, in-process Provider: it discovers
// connected components of the passive-branch graph with
// github.com/katalvlaran/lvlath (the same graph/core and graph/algorithms
// packages the example corpus uses for BFS-based connectivity), picks the
// lexicographically smallest bus per component as its slack, and — when
// the requested formulation needs them — builds the spanning tree,
// fundamental cycle basis, susceptance, and PTDF matrices with
// gonum.org/v1/gonum/mat.
//
// It stands in for a real topology service in tests and cmd/demo; a
// production deployment can substitute any other Provider.
type Reference struct{}

func (Reference) DetermineNetworkTopology(ctx context.Context, net *model.Network, formulation string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	branches := net.PassiveBranches()
	g := core.NewGraph(false, true)
	for _, bus := range net.BusNamesOrdered() {
		g.AddVertex(&core.Vertex{ID: bus, Metadata: map[string]interface{}{}})
	}
	for _, key := range net.PassiveBranchKeysOrdered() {
		b := branches[key]
		g.AddEdge(b.Bus0, b.Bus1, 0)
	}

	visited := map[string]bool{}
	net.SubNetworks = map[string]*model.SubNetwork{}
	componentIdx := 0
	for _, bus := range net.BusNamesOrdered() {
		if visited[bus] {
			continue
		}
		res, err := algorithms.BFS(g, bus, nil)
		if err != nil {
			return newError("BFS from bus %q: %v", bus, err)
		}
		component := make([]string, 0, len(res.Order))
		for _, v := range res.Order {
			visited[v.ID] = true
			component = append(component, v.ID)
		}
		sort.Strings(component)

		sn, err := buildSubNetwork(net, fmt.Sprintf("sub%d", componentIdx), component, branches, formulation)
		if err != nil {
			return err
		}
		net.SubNetworks[sn.Name] = sn
		for _, bk := range sn.BranchesO {
			branches[bk].SubNetwork = sn.Name
		}
		componentIdx++
	}
	return nil
}

func buildSubNetwork(net *model.Network, name string, busesInComponent []string, branches map[model.BranchKey]*model.PassiveBranch, formulation string) (*model.SubNetwork, error) {
	if len(busesInComponent) == 0 {
		return nil, newError("sub-network %s: empty component", name)
	}
	slack := busesInComponent[0]
	carrier := net.Buses[slack].Carrier

	busSet := make(map[string]bool, len(busesInComponent))
	for _, b := range busesInComponent {
		busSet[b] = true
	}

	var branchKeys []model.BranchKey
	for _, key := range net.PassiveBranchKeysOrdered() {
		br := branches[key]
		if busSet[br.Bus0] {
			if !busSet[br.Bus1] {
				return nil, newError("branch %s spans two components (bus0=%s bus1=%s)", key, br.Bus0, br.Bus1)
			}
			branchKeys = append(branchKeys, key)
		}
	}

	busesO := make([]string, 0, len(busesInComponent)-1)
	for _, b := range busesInComponent {
		if b != slack {
			busesO = append(busesO, b)
		}
	}

	sn := &model.SubNetwork{
		Name:      name,
		Carrier:   carrier,
		SlackBus:  slack,
		BusesO:    busesO,
		BranchesO: branchKeys,
	}

	if needsMatrices(formulation) {
		if err := populateMatrices(sn, branches, carrier); err != nil {
			return nil, err
		}
	}
	return sn, nil
}
