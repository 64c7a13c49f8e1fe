// Package kpartite matches entities across groups into disjoint multiplets.
//
// Given a table of entities, each carrying an identifier and a group label,
// the module builds every compatible multiplet (one entity per group, every
// pair accepted by a filter) and selects a disjoint subset of them: as many
// as possible, and among those the lightest.
//
// Packages:
//
//	frame       – minimal columnar table: joins, grouping, unpivot, CSV output
//	expr        – weight expressions and pair filters, including Lua sources
//	multiplets  – Session: partition, BuildHyperedges, Match, Greedy, Join, Unpivot
//	bip         – branch-and-bound binary integer programs (exact set packing)
//	assignment  – sparse min-cost perfect assignment (two-group reduction)
//	metrics     – Prometheus instrumentation for builds and solves
//	source      – CSV, JSON-lines and SQL entity readers
//	config      – YAML/TOML job files with validation
//	cmd/multiplets – command-line driver
//
// Quick start:
//
//	s, _ := multiplets.New(entities, "id", "group")
//	_, _ = s.BuildHyperedges(
//		multiplets.WithWeight(weight),
//		multiplets.WithFilter(expr.AtMost(30)),
//	)
//	res, _ := s.Match(multiplets.MatchOptions{})
//
// Strategies:
//
//   - Assignment: two groups, exact, polynomial.
//   - SetPacking: any number of groups, exact, exponential worst case with a
//     soft time limit.
//   - Greedy: randomized repeated greedy selection, parallel attempts.
package kpartite
