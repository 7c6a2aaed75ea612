package topology

import (
	"gonum.org/v1/gonum/mat"

	"lopf/internal/model"
)

// populateMatrices builds T (spanning tree incidence), C (fundamental cycle
// basis), B (reduced susceptance), and PTDF for sn, following the standard
// construction: a spanning tree is grown over sn's branches with a
// union-find (the same disjoint-set approach
// _examples/katalvlaran-lvlath/prim_kruskal/kruskal.go uses for its MST),
// each remaining ("cotree") branch closes exactly one fundamental cycle
// against the tree, and PTDF/B follow from the per-branch susceptance
// diag(1/impedance).
func populateMatrices(sn *model.SubNetwork, branches map[model.BranchKey]*model.PassiveBranch, carrier string) error {
	numBuses := len(sn.BusesO)
	numBranches := len(sn.BranchesO)

	busIdx := make(map[string]int, numBuses)
	for i, b := range sn.BusesO {
		busIdx[b] = i
	}

	susceptance := make([]float64, numBranches)
	for i, key := range sn.BranchesO {
		z := branches[key].Impedance(carrier)
		if z == 0 {
			return newError("branch %s: zero impedance, cannot compute susceptance", key)
		}
		susceptance[i] = 1 / z
	}

	tree, cotree, parentEdge, parentBus := spanningTree(sn, branches)

	t := mat.NewDense(numBranches, numBuses, nil)
	for _, bi := range tree {
		setIncidenceRow(t, bi, sn, branches, busIdx)
	}

	full := mat.NewDense(numBranches, numBuses, nil)
	for bi := range sn.BranchesO {
		setIncidenceRow(full, bi, sn, branches, busIdx)
	}

	c := mat.NewDense(numBranches, len(cotree), nil)
	for col, cotreeIdx := range cotree {
		key := sn.BranchesO[cotreeIdx]
		br := branches[key]
		path := treePathBuses(br.Bus0, br.Bus1, parentBus, parentEdge, func(bi int) string {
			return branches[sn.BranchesO[bi]].Bus0
		})
		c.Set(cotreeIdx, col, 1)
		for _, step := range path {
			c.Set(step.branchIdx, col, step.sign)
		}
	}

	bMatrix := mat.NewDense(numBuses, numBuses, nil)
	for bi, key := range sn.BranchesO {
		br := branches[key]
		i0, ok0 := busIdx[br.Bus0]
		i1, ok1 := busIdx[br.Bus1]
		b := susceptance[bi]
		if ok0 {
			bMatrix.Set(i0, i0, bMatrix.At(i0, i0)+b)
		}
		if ok1 {
			bMatrix.Set(i1, i1, bMatrix.At(i1, i1)+b)
		}
		if ok0 && ok1 {
			bMatrix.Set(i0, i1, bMatrix.At(i0, i1)-b)
			bMatrix.Set(i1, i0, bMatrix.At(i1, i0)-b)
		}
	}

	var bInv mat.Dense
	if numBuses > 0 {
		if err := bInv.Inverse(bMatrix); err != nil {
			return newError("sub-network %s: susceptance matrix is singular: %v", sn.Name, err)
		}
	}

	bf := mat.NewDense(numBranches, numBuses, nil)
	for bi := 0; bi < numBranches; bi++ {
		for bj := 0; bj < numBuses; bj++ {
			bf.Set(bi, bj, full.At(bi, bj)*susceptance[bi])
		}
	}
	ptdf := mat.NewDense(numBranches, numBuses, nil)
	if numBuses > 0 {
		ptdf.Mul(bf, &bInv)
	}

	sn.T = t
	sn.C = c
	sn.B = bMatrix
	sn.PTDF = ptdf
	return nil
}

func setIncidenceRow(d *mat.Dense, branchIdx int, sn *model.SubNetwork, branches map[model.BranchKey]*model.PassiveBranch, busIdx map[string]int) {
	br := branches[sn.BranchesO[branchIdx]]
	if i, ok := busIdx[br.Bus0]; ok {
		d.Set(branchIdx, i, 1)
	}
	if i, ok := busIdx[br.Bus1]; ok {
		d.Set(branchIdx, i, -1)
	}
}

// spanningTree grows a spanning tree over sn's buses (slack included) using
// a union-find over branches in declaration order, returning the tree
// branch indices, the remaining cotree branch indices, and per-bus parent
// pointers (parentEdge/parentBus) for fundamental-cycle path reconstruction.
func spanningTree(sn *model.SubNetwork, branches map[model.BranchKey]*model.PassiveBranch) (tree, cotree []int, parentEdge map[string]int, parentBus map[string]string) {
	parent := map[string]string{}
	var find func(string) string
	find = func(x string) string {
		if parent[x] == "" {
			parent[x] = x
		}
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}

	parentEdge = map[string]int{}
	parentBus = map[string]string{}
	adj := map[string][]struct {
		to  string
		idx int
	}{}

	for i, key := range sn.BranchesO {
		br := branches[key]
		rootA, rootB := find(br.Bus0), find(br.Bus1)
		if rootA != rootB {
			parent[rootA] = rootB
			tree = append(tree, i)
			adj[br.Bus0] = append(adj[br.Bus0], struct {
				to  string
				idx int
			}{br.Bus1, i})
			adj[br.Bus1] = append(adj[br.Bus1], struct {
				to  string
				idx int
			}{br.Bus0, i})
		} else {
			cotree = append(cotree, i)
		}
	}

	root := sn.SlackBus
	visited := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range adj[cur] {
			if !visited[e.to] {
				visited[e.to] = true
				parentBus[e.to] = cur
				parentEdge[e.to] = e.idx
				queue = append(queue, e.to)
			}
		}
	}
	return tree, cotree, parentEdge, parentBus
}

type cycleStep struct {
	branchIdx int
	sign      float64
}

// treePathBuses walks the tree from u and v up to their lowest common
// ancestor, returning the tree branches on that path signed so that
// summing them plus the +1 cotree edge (u->v) yields a closed loop: the
// loop returns from v up to the ancestor and then down to u, and each tree
// edge is +1 when that walk follows its Bus0->Bus1 orientation and -1
// otherwise, matching the KVL cycle-sum convention. bus0Of gives a branch
// index's Bus0.
func treePathBuses(u, v string, parentBus map[string]string, parentEdge map[string]int, bus0Of func(int) string) []cycleStep {
	pathTo := func(x string) []string {
		var p []string
		for x != "" {
			p = append(p, x)
			x = parentBus[x]
		}
		return p
	}
	pu := pathTo(u)
	pv := pathTo(v)
	depthOf := map[string]int{}
	for i, b := range pu {
		depthOf[b] = i
	}
	var lca string
	for _, b := range pv {
		if _, ok := depthOf[b]; ok {
			lca = b
			break
		}
	}

	var steps []cycleStep
	for _, b := range pu {
		if b == lca {
			break
		}
		// Walked parent -> b: against the branch when b is its Bus0.
		sign := 1.0
		if bus0Of(parentEdge[b]) == b {
			sign = -1
		}
		steps = append(steps, cycleStep{branchIdx: parentEdge[b], sign: sign})
	}
	for _, b := range pv {
		if b == lca {
			break
		}
		// Walked b -> parent: along the branch when b is its Bus0.
		sign := -1.0
		if bus0Of(parentEdge[b]) == b {
			sign = 1
		}
		steps = append(steps, cycleStep{branchIdx: parentEdge[b], sign: sign})
	}
	return steps
}
