package assignment

import (
	"fmt"
	"math"
	"sort"
)

// arcTo is one outgoing arc of a left node in the deduplicated adjacency.
type arcTo struct {
	right int
	cost  int64
}

// Solve computes a minimum-cost perfect assignment of n left nodes to n
// right nodes using only the given arcs. Parallel arcs collapse to the
// cheapest one.
//
// Contracts:
//   - n ≥ 0; every arc endpoint lies in [0, n).
//   - Costs may be negative.
//
// Errors: ErrNegativeSize, ErrArcOutOfRange. Infeasibility and overflow are
// reported in Result.Status with a nil error.
func Solve(n int, arcs []Arc) (Result, error) {
	if n < 0 {
		return Result{}, ErrNegativeSize
	}
	if n == 0 {
		return Result{Status: Optimal, RightOf: []int{}}, nil
	}

	adj, costOf, maxAbs, err := buildAdjacency(n, arcs)
	if err != nil {
		return Result{}, err
	}
	if maxAbs < 0 || maxAbs > overflowLimit(n) {
		return Result{Status: PossibleOverflow}, nil
	}

	// 1-based rows and columns; column 0 is the virtual root of each phase.
	var (
		u     = make([]int64, n+1) // row potentials
		v     = make([]int64, n+1) // column potentials
		p     = make([]int, n+1)   // p[j] = row matched to column j (0 = free)
		way   = make([]int, n+1)   // predecessor column on the shortest path
		minv  = make([]int64, n+1) // tentative reduced distance per column
		reach = make([]bool, n+1)  // minv[j] is finite
		used  = make([]bool, n+1)  // column j is in the search tree
	)
	var (
		i, j, i0, j0, j1 int
		cur, delta       int64
		a                arcTo
	)
	for i = 1; i <= n; i++ {
		p[0] = i
		j0 = 0
		for j = 0; j <= n; j++ {
			minv[j] = 0
			reach[j] = false
			used[j] = false
		}
		for {
			used[j0] = true
			i0 = p[j0]
			for _, a = range adj[i0-1] {
				j = a.right + 1
				if used[j] {
					continue
				}
				cur = a.cost - u[i0] - v[j]
				if !reach[j] || cur < minv[j] {
					minv[j] = cur
					reach[j] = true
					way[j] = j0
				}
			}
			j1 = -1
			for j = 1; j <= n; j++ {
				if !used[j] && reach[j] && (j1 < 0 || minv[j] < delta) {
					delta = minv[j]
					j1 = j
				}
			}
			if j1 < 0 {
				// The alternating tree cannot grow: Hall's condition fails.
				return Result{Status: Infeasible}, nil
			}
			for j = 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else if reach[j] {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		// Augment along the recorded path.
		for j0 != 0 {
			j1 = way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	res := Result{Status: Optimal, RightOf: make([]int, n)}
	for j = 1; j <= n; j++ {
		l := p[j] - 1
		res.RightOf[l] = j - 1
		res.Cost += costOf[l][j-1]
	}

	return res, nil
}

// buildAdjacency validates arcs and returns, per left node, its arcs sorted
// by right node with duplicates collapsed to the minimum cost. maxAbs is the
// largest |cost|, or -1 if some cost is math.MinInt64.
func buildAdjacency(n int, arcs []Arc) ([][]arcTo, []map[int]int64, int64, error) {
	costOf := make([]map[int]int64, n)
	var maxAbs int64
	for _, a := range arcs {
		if a.Left < 0 || a.Left >= n || a.Right < 0 || a.Right >= n {
			return nil, nil, 0, fmt.Errorf("%w: (%d,%d) with n=%d", ErrArcOutOfRange, a.Left, a.Right, n)
		}
		if a.Cost == math.MinInt64 {
			maxAbs = -1
		} else if maxAbs >= 0 {
			c := a.Cost
			if c < 0 {
				c = -c
			}
			if c > maxAbs {
				maxAbs = c
			}
		}
		m := costOf[a.Left]
		if m == nil {
			m = make(map[int]int64)
			costOf[a.Left] = m
		}
		if old, ok := m[a.Right]; !ok || a.Cost < old {
			m[a.Right] = a.Cost
		}
	}

	adj := make([][]arcTo, n)
	for l, m := range costOf {
		row := make([]arcTo, 0, len(m))
		for r, c := range m {
			row = append(row, arcTo{right: r, cost: c})
		}
		sort.Slice(row, func(x, y int) bool { return row[x].right < row[y].right })
		adj[l] = row
	}

	return adj, costOf, maxAbs, nil
}

// overflowLimit bounds |cost| so that potentials (each at most the length
// of an alternating path, ≤ 2n arcs) and the total cost stay inside int64.
func overflowLimit(n int) int64 {
	return math.MaxInt64 / (4*int64(n) + 4)
}
