package multiplets_test

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/katalvlaran/kpartite/expr"
	"github.com/katalvlaran/kpartite/multiplets"
)

// buildInstance returns a session with hyperedges built for in, or nil.
func buildInstance(in instance) *multiplets.Session {
	s, err := multiplets.New(in.entities, "id", "group")
	if err != nil {
		return nil
	}
	if _, err = s.BuildHyperedges(
		multiplets.WithWeight(absDiff()),
		multiplets.WithFilter(expr.AtMost(in.threshold)),
	); err != nil {
		return nil
	}
	return s
}

// TestMatchingInvariants checks properties that must hold on every random
// k-partite instance.
func TestMatchingInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40

	properties := gopter.NewProperties(parameters)

	// Property 1: hyperedges are exactly the fully compatible k-tuples.
	properties.Property("hyperedge count matches enumeration", prop.ForAll(
		func(seed int64, k int) bool {
			in := randomInstance(seed, k, 4)
			s := buildInstance(in)
			if s == nil {
				return false
			}
			return s.Hyperedges().Height() == in.bruteForceCount()
		},
		gen.Int64(),
		gen.IntRange(2, 4),
	))

	// Property 2: building twice gives identical tables.
	properties.Property("hyperedge build is deterministic", prop.ForAll(
		func(seed int64) bool {
			in := randomInstance(seed, 3, 4)
			a, b := buildInstance(in), buildInstance(in)
			if a == nil || b == nil {
				return false
			}
			return a.Hyperedges().Equal(b.Hyperedges())
		},
		gen.Int64(),
	))

	// Property 3: with two groups both exact strategies are optimal, so they
	// agree on cardinality and weight.
	properties.Property("set packing and assignment agree", prop.ForAll(
		func(seed int64) bool {
			s := buildInstance(randomInstance(seed, 2, 5))
			if s == nil {
				return false
			}
			if s.Hyperedges().Height() == 0 {
				return true
			}
			a, err := s.Assignment(multiplets.MatchOptions{})
			if err != nil {
				return false
			}
			p, err := s.SetPacking(multiplets.MatchOptions{})
			if err != nil {
				return false
			}
			return disjoint(t, s, a.Table) && disjoint(t, s, p.Table) &&
				a.Cardinality == p.Cardinality && math.Abs(a.Weight-p.Weight) < 1e-9
		},
		gen.Int64(),
	))

	// Property 4: greedy is disjoint and never beats the exact optimum.
	properties.Property("greedy is bounded by set packing", prop.ForAll(
		func(seed int64) bool {
			s := buildInstance(randomInstance(seed, 3, 3))
			if s == nil {
				return false
			}
			g, err := s.Greedy(multiplets.GreedyOptions{Attempts: 5, Seed: seed})
			if err != nil || !disjoint(t, s, g.Table) {
				return false
			}
			p, err := s.SetPacking(multiplets.MatchOptions{})
			if err != nil || !disjoint(t, s, p.Table) {
				return false
			}
			if p.Cardinality != g.Cardinality {
				return p.Cardinality > g.Cardinality
			}
			return p.Weight <= g.Weight+1e-9
		},
		gen.Int64(),
	))

	// Property 5: on three groups set packing reaches the enumerated optimum,
	// for the built weights and for weights of both signs.
	properties.Property("set packing matches enumeration", prop.ForAll(
		func(seed int64, shift float64) bool {
			s := buildInstance(randomInstance(seed, 3, 3))
			if s == nil {
				return false
			}
			tb := shifted(t, s.Hyperedges(), shift)
			for _, wcol := range []string{multiplets.DefaultWeightColumn, "_signed"} {
				p, err := s.SetPacking(multiplets.MatchOptions{Input: tb, WeightColumn: wcol})
				if err != nil || !disjoint(t, s, p.Table) {
					return false
				}
				card, w := bestPacking(t, s, tb, wcol)
				if p.Cardinality != card || math.Abs(p.Weight-w) > 1e-9 {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.Float64Range(0, 40).Map(math.Round),
	))

	// Property 6: with two groups and weights of both signs the exact
	// strategies still agree.
	properties.Property("mixed-sign weights keep strategies in agreement", prop.ForAll(
		func(seed int64, shift float64) bool {
			s := buildInstance(randomInstance(seed, 2, 5))
			if s == nil {
				return false
			}
			if s.Hyperedges().Height() == 0 {
				return true
			}
			opts := multiplets.MatchOptions{Input: shifted(t, s.Hyperedges(), shift), WeightColumn: "_signed"}
			a, err := s.Assignment(opts)
			if err != nil {
				return false
			}
			p, err := s.SetPacking(opts)
			if err != nil {
				return false
			}
			return a.Cardinality == p.Cardinality && math.Abs(a.Weight-p.Weight) < 1e-9
		},
		gen.Int64(),
		gen.Float64Range(0, 40).Map(math.Round),
	))

	properties.TestingRun(t)
}
