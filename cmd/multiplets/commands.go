package main

import (
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/kpartite/frame"
)

// shapeFlags are the output reshaping flags shared by match and greedy.
type shapeFlags struct {
	join bool
	long bool
}

func (f *shapeFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.join, "join", false, "attach entity attributes to every multiplet")
	cmd.Flags().BoolVar(&f.long, "long", false, "one row per entity with a multiplet_id column")
}

func newHyperedgesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "hyperedges",
		Short: "Build and print every compatible multiplet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPipeline(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer p.close()

			h, err := p.build()
			if err != nil {
				return err
			}
			return p.write(cmd.OutOrStdout(), h)
		},
	}
}

func newMatchCmd(g *globals) *cobra.Command {
	var sf shapeFlags
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Select a maximum set of disjoint multiplets exactly",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPipeline(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer p.close()

			if _, err = p.build(); err != nil {
				return err
			}
			res, err := p.session.Match(matchOptions(g.job.Match))
			if err != nil {
				return err
			}
			g.log.Info("matched",
				zap.Stringer("strategy", res.Strategy),
				zap.Int("multiplets", res.Cardinality),
				zap.Float64("weight", res.Weight),
			)

			out, err := p.shape(res.Table, sf.join, sf.long)
			if err != nil {
				return err
			}
			return p.write(cmd.OutOrStdout(), out)
		},
	}
	sf.register(cmd)
	return cmd
}

func newGreedyCmd(g *globals) *cobra.Command {
	var sf shapeFlags
	cmd := &cobra.Command{
		Use:   "greedy",
		Short: "Select disjoint multiplets with the randomized greedy search",
		Long: "Select disjoint multiplets with the randomized greedy search.\n\n" +
			"With greedy.top_k > 0 the best set of each of the top_k largest\n" +
			"cardinalities is printed, tagged by a cardinality column.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPipeline(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer p.close()

			if _, err = p.build(); err != nil {
				return err
			}
			opts, err := p.greedyOptions()
			if err != nil {
				return err
			}

			var out *frame.Table
			if k := g.job.Greedy.TopK; k > 0 {
				byCard, berr := p.session.GreedyByCardinality(k, opts)
				if berr != nil {
					return berr
				}
				shape := func(t *frame.Table) (*frame.Table, error) { return p.shape(t, sf.join, sf.long) }
				if out, err = stackByCardinality(byCard, shape); err != nil {
					return err
				}
			} else {
				res, gerr := p.session.Greedy(opts)
				if gerr != nil {
					return gerr
				}
				g.log.Info("greedy selection",
					zap.Int("multiplets", res.Cardinality),
					zap.Float64("weight", res.Weight),
				)
				if out, err = p.shape(res.Table, sf.join, sf.long); err != nil {
					return err
				}
			}
			return p.write(cmd.OutOrStdout(), out)
		},
	}
	sf.register(cmd)
	return cmd
}

// stackByCardinality shapes the per-cardinality tables and concatenates
// them, largest first, with a leading cardinality column.
func stackByCardinality(byCard map[int]*frame.Table, shape func(*frame.Table) (*frame.Table, error)) (*frame.Table, error) {
	sizes := make([]int, 0, len(byCard))
	for h := range byCard {
		sizes = append(sizes, h)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))

	parts := make([]*frame.Table, 0, len(sizes))
	for _, h := range sizes {
		t, err := shape(byCard[h])
		if err != nil {
			return nil, err
		}
		tag := make([]frame.Value, t.Height())
		for i := range tag {
			tag[i] = frame.Int(int64(h))
		}
		tagged, err := frame.FromColumns([]string{"cardinality"}, [][]frame.Value{tag})
		if err != nil {
			return nil, err
		}
		for _, c := range t.Columns() {
			col, _ := t.Column(c)
			if tagged, err = tagged.WithColumn(c, col); err != nil {
				return nil, err
			}
		}
		parts = append(parts, tagged)
	}
	return frame.Concat(parts...)
}
