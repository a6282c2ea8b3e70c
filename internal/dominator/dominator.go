// Package dominator computes the dominator tree (Lengauer-Tarjan) and
// dominance frontier (Cooper-Harvey-Kennedy) of an already CFG-linked IR
// function (spec §4.9). Faithfully ported from
// original_source/lib/middle_end/ir/dom.c, operating on visit-time
// (DFS pre-order) coordinates exactly as the original does, then writing
// results back onto the ir.Node graph.
package dominator

import "weakc/internal/ir"

// state is the per-call scratch arena (dom.c uses global scratch arrays;
// per the spec §9 Design Notes recommendation, this implementation resets
// all of it per function call instead of reusing process-wide globals).
type state struct {
	nodes []*ir.Node // index 0 unused; visit-time is 1-based

	// graph/reverseGraph: successor/predecessor adjacency in visit-time
	// coordinates.
	graph        [][]int
	reverseGraph [][]int

	visitTime        map[*ir.Node]int
	inverseVisitTime []*ir.Node
	parentInDFSTree  []int

	semidom         []int
	idom            []int
	unionFind       []int
	pathCompression []int

	buckets [][]int

	counter int
}

// Run computes the dominator tree and dominance frontier for fn (a FuncDecl
// node whose body has already been CFG-linked via internal/cfg.Build) and
// writes results back onto each instruction's Idom/Children/DF fields.
func Run(fn *ir.Node) {
	body := fn.FuncDeclVal.Body
	if len(body) == 0 {
		return
	}
	entry := body[0]

	s := &state{
		visitTime: make(map[*ir.Node]int),
	}
	s.nodes = append(s.nodes, nil) // 1-based

	s.dfs(entry)

	n := s.counter
	s.graph = make([][]int, n+1)
	s.reverseGraph = make([][]int, n+1)
	for _, node := range body {
		u, ok := s.visitTime[node]
		if !ok {
			continue // unreachable instruction, left out per spec §4.9.1 step 1
		}
		for _, succ := range node.Succs {
			if v, ok := s.visitTime[succ]; ok {
				s.graph[u] = append(s.graph[u], v)
				s.reverseGraph[v] = append(s.reverseGraph[v], u)
			}
		}
	}

	s.semidom = make([]int, n+1)
	s.idom = make([]int, n+1)
	s.unionFind = make([]int, n+1)
	s.pathCompression = make([]int, n+1)
	s.buckets = make([][]int, n+1)
	for v := 1; v <= n; v++ {
		s.semidom[v] = v
		s.idom[v] = v
		s.unionFind[v] = v
		s.pathCompression[v] = v
	}

	s.domTree()

	// Write back: convert visit-time indices to *ir.Node and populate
	// Idom + dominator-tree Children.
	for v := 1; v <= n; v++ {
		node := s.inverseVisitTime[v]
		if s.idom[v] == v {
			node.Idom = nil // entry
			continue
		}
		idomNode := s.inverseVisitTime[s.idom[v]]
		node.Idom = idomNode
		idomNode.Children = append(idomNode.Children, node)
	}

	s.dominanceFrontier(body)
}

// dfs performs DFS numbering from the entry, assigning visit-time
// (pre-order) indices starting at 1 and recording the DFS parent in
// visit-time coordinates (spec §4.9.1 step 1).
func (s *state) dfs(entry *ir.Node) {
	s.parentInDFSTree = []int{0} // index 0 unused

	var visit func(n *ir.Node, parent int)
	visit = func(n *ir.Node, parent int) {
		if _, seen := s.visitTime[n]; seen {
			return
		}
		s.counter++
		s.visitTime[n] = s.counter
		s.nodes = append(s.nodes, n)
		s.inverseVisitTime = append(s.inverseVisitTime, n)
		s.parentInDFSTree = append(s.parentInDFSTree, parent)

		for _, succ := range n.Succs {
			visit(succ, s.counter)
		}
	}
	s.inverseVisitTime = append(s.inverseVisitTime, nil) // index 0 unused
	visit(entry, 0)
}

// leastSemidom is the standard LT eval-with-path-compression: recursive
// union-find lookup returning the ancestor with minimum semidom along the
// compressed path (spec §4.9.1's "least_semidom").
func (s *state) leastSemidom(v int) int {
	if s.unionFind[v] == v {
		return v
	}
	root := s.leastSemidom(s.unionFind[v])
	if s.semidom[s.pathCompression[s.unionFind[v]]] < s.semidom[s.pathCompression[v]] {
		s.pathCompression[v] = s.pathCompression[s.unionFind[v]]
	}
	s.unionFind[v] = root
	return s.pathCompression[v]
}

func (s *state) union(child, parent int) {
	s.unionFind[child] = parent
}

// domTree is the core Lengauer-Tarjan algorithm (spec §4.9.1 steps 2-5).
func (s *state) domTree() {
	n := s.counter

	for w := n; w >= 1; w-- {
		// Semidominators (step 3).
		for _, v := range s.reverseGraph[w] {
			var candidate int
			if v < w {
				candidate = v
			} else {
				candidate = s.semidom[s.leastSemidom(v)]
			}
			if candidate < s.semidom[w] {
				s.semidom[w] = candidate
			}
		}
		s.buckets[s.semidom[w]] = append(s.buckets[s.semidom[w]], w)

		// Implicit immediate dominators (step 4): bucket(w) was populated by
		// higher-visit-time vertices whose semidom is w, since every vertex
		// is processed here before its own bucket is consulted.
		for _, v := range s.buckets[w] {
			u := s.leastSemidom(v)
			if s.semidom[u] >= w {
				s.idom[v] = w
			} else {
				s.idom[v] = u
			}
		}
		s.buckets[w] = nil

		// Union w's DFS-tree children into w.
		for _, succ := range s.graph[w] {
			if s.parentInDFSTree[succ] == w {
				s.union(succ, w)
			}
		}
	}

	// Finalize (step 5): ascending visit-time order.
	for v := 2; v <= n; v++ {
		if s.idom[v] != s.semidom[v] {
			s.idom[v] = s.idom[s.idom[v]]
		}
	}
	s.idom[1] = 1
}

// dominanceFrontier implements Cooper-Harvey-Kennedy (spec §4.9.2): for
// every block with >= 2 CFG predecessors, walk upward along idom from each
// predecessor, appending the block to every visited node's DF list until
// reaching the block's own idom or a self-dominating root.
func (s *state) dominanceFrontier(body []*ir.Node) {
	for _, b := range body {
		bv, ok := s.visitTime[b]
		if !ok || len(b.Preds) < 2 {
			continue
		}
		bIdomV := s.idom[bv]
		for _, pred := range b.Preds {
			pv, ok := s.visitTime[pred]
			if !ok {
				continue
			}
			r := pv
			for r != bIdomV {
				rNode := s.inverseVisitTime[r]
				rNode.DF = append(rNode.DF, b)
				if s.idom[r] == r {
					break // reached the self-dominating root (entry)
				}
				r = s.idom[r]
			}
		}
	}
}

// Dominates reports whether d dominates n: d == n, or d is reachable from
// n by following Idom links upward (spec §4.9.3).
func Dominates(d, n *ir.Node) bool {
	for cur := n; cur != nil; cur = cur.Idom {
		if cur == d {
			return true
		}
	}
	return false
}

// DominatedBy is the symmetric wording of Dominates.
func DominatedBy(n, d *ir.Node) bool { return Dominates(d, n) }
