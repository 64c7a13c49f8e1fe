package assignment_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/kpartite/assignment"
)

// dense builds the full arc list of a square cost matrix.
func dense(c [][]int64) []assignment.Arc {
	arcs := make([]assignment.Arc, 0, len(c)*len(c))
	for i := range c {
		for j := range c[i] {
			arcs = append(arcs, assignment.Arc{Left: i, Right: j, Cost: c[i][j]})
		}
	}
	return arcs
}

// bruteForce enumerates all permutations of a dense matrix.
func bruteForce(c [][]int64) int64 {
	n := len(c)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	best := int64(math.MaxInt64)
	var rec func(k int, acc int64)
	rec = func(k int, acc int64) {
		if k == n {
			if acc < best {
				best = acc
			}
			return
		}
		for i := k; i < n; i++ {
			perm[k], perm[i] = perm[i], perm[k]
			rec(k+1, acc+c[k][perm[k]])
			perm[k], perm[i] = perm[i], perm[k]
		}
	}
	rec(0, 0)
	return best
}

func TestSolve_Empty(t *testing.T) {
	res, err := assignment.Solve(0, nil)
	require.NoError(t, err)
	assert.Equal(t, assignment.Optimal, res.Status)
	assert.Empty(t, res.RightOf)
	assert.Zero(t, res.Cost)
}

func TestSolve_InputErrors(t *testing.T) {
	_, err := assignment.Solve(-1, nil)
	require.ErrorIs(t, err, assignment.ErrNegativeSize)

	_, err = assignment.Solve(2, []assignment.Arc{{Left: 0, Right: 2, Cost: 1}})
	require.ErrorIs(t, err, assignment.ErrArcOutOfRange)
}

func TestSolve_Dense3x3(t *testing.T) {
	c := [][]int64{
		{4, 1, 3},
		{2, 0, 5},
		{3, 2, 2},
	}
	res, err := assignment.Solve(3, dense(c))
	require.NoError(t, err)
	require.Equal(t, assignment.Optimal, res.Status)
	assert.Equal(t, int64(5), res.Cost)
	assert.Equal(t, []int{1, 0, 2}, res.RightOf)
}

func TestSolve_NegativeCosts(t *testing.T) {
	c := [][]int64{
		{-10, -20},
		{-30, -5},
	}
	res, err := assignment.Solve(2, dense(c))
	require.NoError(t, err)
	require.Equal(t, assignment.Optimal, res.Status)
	assert.Equal(t, int64(-50), res.Cost)
	assert.Equal(t, []int{1, 0}, res.RightOf)
}

func TestSolve_MatchesBruteForce(t *testing.T) {
	matrices := [][][]int64{
		{{7, 53, 183, 439}, {497, 383, 563, 79}, {627, 343, 773, 959}, {447, 283, 463, 29}},
		{{1, 2, 3, 4, 5}, {2, 4, 6, 8, 10}, {3, 6, 9, 12, 15}, {4, 8, 12, 16, 20}, {5, 10, 15, 20, 25}},
		{{0, -3, 9, 2, 1}, {4, 4, -1, 0, 7}, {8, 2, 3, -6, 5}, {1, 1, 1, 1, 1}, {9, -9, 0, 3, 2}},
	}
	for _, c := range matrices {
		res, err := assignment.Solve(len(c), dense(c))
		require.NoError(t, err)
		require.Equal(t, assignment.Optimal, res.Status)
		assert.Equal(t, bruteForce(c), res.Cost)

		seen := make(map[int]bool)
		var sum int64
		for l, r := range res.RightOf {
			assert.False(t, seen[r], "right node %d used twice", r)
			seen[r] = true
			sum += c[l][r]
		}
		assert.Equal(t, res.Cost, sum)
	}
}

func TestSolve_SparseUsesListedArcsOnly(t *testing.T) {
	// 0→1 is cheap but forces 1 onto the absent arc 1→0; only the
	// diagonal is a perfect matching.
	arcs := []assignment.Arc{
		{Left: 0, Right: 0, Cost: 10},
		{Left: 0, Right: 1, Cost: 1},
		{Left: 1, Right: 1, Cost: 10},
	}
	res, err := assignment.Solve(2, arcs)
	require.NoError(t, err)
	require.Equal(t, assignment.Optimal, res.Status)
	assert.Equal(t, []int{0, 1}, res.RightOf)
	assert.Equal(t, int64(20), res.Cost)
}

func TestSolve_ParallelArcsKeepCheapest(t *testing.T) {
	arcs := []assignment.Arc{
		{Left: 0, Right: 0, Cost: 9},
		{Left: 0, Right: 0, Cost: 2},
	}
	res, err := assignment.Solve(1, arcs)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Cost)
}

func TestSolve_Infeasible(t *testing.T) {
	// Both left nodes only reach right node 0.
	arcs := []assignment.Arc{
		{Left: 0, Right: 0, Cost: 1},
		{Left: 1, Right: 0, Cost: 1},
	}
	res, err := assignment.Solve(2, arcs)
	require.NoError(t, err)
	assert.Equal(t, assignment.Infeasible, res.Status)

	res, err = assignment.Solve(3, nil)
	require.NoError(t, err)
	assert.Equal(t, assignment.Infeasible, res.Status)
}

func TestSolve_PossibleOverflow(t *testing.T) {
	arcs := []assignment.Arc{{Left: 0, Right: 0, Cost: math.MaxInt64}}
	res, err := assignment.Solve(1, arcs)
	require.NoError(t, err)
	assert.Equal(t, assignment.PossibleOverflow, res.Status)
	assert.Equal(t, "POSSIBLE_OVERFLOW", res.Status.String())

	arcs = []assignment.Arc{{Left: 0, Right: 0, Cost: math.MinInt64}}
	res, err = assignment.Solve(1, arcs)
	require.NoError(t, err)
	assert.Equal(t, assignment.PossibleOverflow, res.Status)
}
