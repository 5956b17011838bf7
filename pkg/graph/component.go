package graph

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte // max rank stays below 64
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Components labels every node with its weakly connected component
// (edges treated as undirected). Nodes in different components are never
// connected by a route, so a search between them can be skipped.
type Components struct {
	label   []uint32
	count   int
	largest int
}

// NewComponents computes the weakly connected components of g.
func NewComponents(g *Graph) *Components {
	n := uint32(g.NodeCount())
	uf := NewUnionFind(n)
	for u := uint32(0); u < n; u++ {
		for i := 0; i < g.NodeOutDegree(int(u)); i++ {
			uf.Union(u, uint32(g.EdgeTargetNodeID(g.NodeOutEdgeID(int(u), i))))
		}
	}

	c := &Components{label: make([]uint32, n)}
	for i := uint32(0); i < n; i++ {
		root := uf.Find(i)
		c.label[i] = root
		if root == i {
			c.count++
			c.largest = max(c.largest, int(uf.size[root]))
		}
	}
	return c
}

// Connected reports whether nodes a and b lie in the same component.
func (c *Components) Connected(a, b int) bool {
	return c.label[a] == c.label[b]
}

// Count returns the number of components.
func (c *Components) Count() int { return c.count }

// LargestSize returns the number of nodes in the largest component.
func (c *Components) LargestSize() int { return c.largest }
