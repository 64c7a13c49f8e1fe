package multiplets_test

import (
	"fmt"
	"math"
	"os"

	"github.com/katalvlaran/kpartite/expr"
	"github.com/katalvlaran/kpartite/frame"
	"github.com/katalvlaran/kpartite/multiplets"
)

// Example builds triplets of entities from three groups whose values lie
// within 30 of each other and selects the best disjoint set.
func Example() {
	entities := frame.MustFromRows([]string{"id", "group", "value"},
		[]any{1, "D", 10}, []any{2, "D", 20},
		[]any{3, "E", 30}, []any{4, "E", 40},
		[]any{5, "F", 50}, []any{6, "F", 60},
	)
	s, err := multiplets.New(entities, "id", "group")
	if err != nil {
		fmt.Println(err)
		return
	}

	distance := expr.Fn(func(r frame.Row) (float64, error) {
		a, _ := r.Float("value_A")
		b, _ := r.Float("value_B")
		return math.Abs(a - b), nil
	})
	h, err := s.BuildHyperedges(
		multiplets.WithWeight(distance),
		multiplets.WithFilter(expr.AtMost(30)),
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("hyperedges:", h.Height())

	res, err := s.Match(multiplets.MatchOptions{})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(res.Strategy, res.Cardinality, res.Weight)

	// Output:
	// hyperedges: 2
	// set_packing 1 60
}

// ExampleSession_Assignment pairs two groups exactly; one more pair always
// beats a lighter but smaller selection.
func ExampleSession_Assignment() {
	entities := frame.MustFromRows([]string{"id", "group", "value"},
		[]any{1, "D", 10}, []any{2, "D", 20},
		[]any{3, "E", 30}, []any{4, "E", 40},
	)
	s, _ := multiplets.New(entities, "id", "group")
	_, _ = s.BuildHyperedges(
		multiplets.WithWeight(expr.Fn(func(r frame.Row) (float64, error) {
			a, _ := r.Float("value_A")
			b, _ := r.Float("value_B")
			return math.Abs(a - b), nil
		})),
		multiplets.WithFilter(expr.AtMost(20)),
	)

	res, err := s.Assignment(multiplets.MatchOptions{})
	if err != nil {
		fmt.Println(err)
		return
	}
	_ = res.Table.WriteCSV(os.Stdout)
	fmt.Println("weight:", res.Weight)

	// Output:
	// id_0,id_1,_distance
	// 1,3,20
	// 2,4,20
	// weight: 40
}
