package grouping

// unionFind is a disjoint-set forest with path compression and union by
// rank. It makes the clustering's transitivity explicit and reproducible
// instead of depending on visit order.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range u.parent {
		u.parent[i] = i
	}
	return u
}

// find returns the set representative for x, compressing the path
func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

// union merges the sets containing a and b
func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}
