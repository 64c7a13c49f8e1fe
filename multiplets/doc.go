// Package multiplets selects disjoint multiplets from entities partitioned
// into k groups.
//
// A Session partitions an entity table by a group column. BuildHyperedges
// then evaluates a weight on every cross-group pair, keeps the compatible
// pairs and intersects the pair tables into hyperedges: one entity per
// group, every pair compatible, weight aggregated over the C(k,2) pairs.
//
// Three strategies select a set of hyperedges in which no entity appears
// twice:
//
//   - Greedy      — randomized scan-and-take passes; heuristic, parallel.
//   - SetPacking  — exact binary program, any k; optional deadline.
//   - Assignment  — exact, k = 2 only, via a square assignment instance.
//
// The exact strategies maximize the number of multiplets first and minimize
// the total weight second. Match picks Assignment for two groups and
// SetPacking otherwise.
//
// Errors are wrapped in *Error with the failing operation; test them with
// errors.Is against the sentinels (ErrConfiguration, ErrNoSolution and
// their children). Recoverable input problems are not errors: they are
// logged at Warn and recorded in Session.Warnings.
//
// A Session is not safe for concurrent use.
package multiplets
