package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/katalvlaran/kpartite/config"
	"github.com/katalvlaran/kpartite/expr"
	"github.com/katalvlaran/kpartite/frame"
	"github.com/katalvlaran/kpartite/multiplets"
	"github.com/katalvlaran/kpartite/source"
)

// pipeline runs one job: load, partition, build.
type pipeline struct {
	g        *globals
	entities *frame.Table
	session  *multiplets.Session
	scripts  []*expr.Lua
}

func newPipeline(ctx context.Context, g *globals) (*pipeline, error) {
	p := &pipeline{g: g}
	t, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	p.entities = t
	g.log.Info("entities loaded", zap.Int("rows", t.Height()), zap.Int("columns", t.Width()))

	if p.session, err = multiplets.New(t, g.job.IDColumn, g.job.GroupColumn, p.sessionOptions()...); err != nil {
		return nil, err
	}
	return p, nil
}

// close releases the Lua interpreters.
func (p *pipeline) close() {
	for _, l := range p.scripts {
		l.Close()
	}
	p.scripts = nil
}

func (p *pipeline) load(ctx context.Context) (*frame.Table, error) {
	in := p.g.job.Input
	format := source.FormatOf(in.Path)
	if in.Format != "" {
		var err error
		if format, err = source.ParseFormat(in.Format); err != nil {
			return nil, err
		}
	}

	switch format {
	case source.FormatSQL:
		driver := in.Driver
		if driver == "" {
			driver = "postgres"
		}
		db, err := sql.Open(driver, in.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		return source.ReadSQL(ctx, db, in.Query)
	case source.FormatJSONLines:
		f, err := os.Open(in.Path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return source.ReadJSONLines(f)
	default:
		f, err := os.Open(in.Path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		opts := source.CSVOptions{NullValues: in.NullValues, Strings: in.Strings}
		if in.Comma != "" {
			opts.Comma, _ = utf8.DecodeRuneInString(in.Comma)
		}
		return source.ReadCSV(f, opts)
	}
}

func (p *pipeline) sessionOptions() []multiplets.Option {
	job := p.g.job
	opts := []multiplets.Option{multiplets.WithLogger(p.g.log)}
	switch {
	case job.MaxGroups < 0:
		opts = append(opts, multiplets.WithoutGroupCap())
	case job.MaxGroups > 0:
		opts = append(opts, multiplets.WithMaxGroups(job.MaxGroups))
	}
	if job.IndexColumn != "" {
		opts = append(opts, multiplets.WithIndexColumn(job.IndexColumn))
	}
	if p.g.reg != nil {
		opts = append(opts, multiplets.WithMetrics(p.g.reg))
	}
	return opts
}

// compile compiles a Lua expression owned by the pipeline.
func (p *pipeline) compile(src string) (*expr.Lua, error) {
	l, err := expr.CompileLua(src)
	if err != nil {
		return nil, err
	}
	p.scripts = append(p.scripts, l)
	return l, nil
}

// build computes the hyperedges described by the job's edges section.
func (p *pipeline) build() (*frame.Table, error) {
	e := p.g.job.Edges
	var opts []multiplets.BuildOption

	if e.Weight != "" {
		l, err := p.compile(e.Weight)
		if err != nil {
			return nil, err
		}
		opts = append(opts, multiplets.WithWeight(l.Expr()))
	}
	switch {
	case e.Filter != "":
		l, err := p.compile(e.Filter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, multiplets.WithFilter(l.Filter()))
	case e.Threshold != nil:
		opts = append(opts, multiplets.WithFilter(expr.AtMost(*e.Threshold)))
	}
	agg, ok := multiplets.AggregatorByName(e.Aggregator)
	if !ok {
		return nil, fmt.Errorf("unknown aggregator %q", e.Aggregator)
	}
	opts = append(opts, multiplets.WithAggregator(agg), multiplets.WithWeightColumn(e.WeightColumn))

	return p.session.BuildHyperedges(opts...)
}

func matchOptions(m config.Match) multiplets.MatchOptions {
	return multiplets.MatchOptions{
		Multiplier:      m.Multiplier,
		Penalty:         m.Penalty,
		ForceSetPacking: m.ForceSetPacking,
		MaxTime:         m.MaxTimeDuration(),
		Verbose:         m.Verbose,
	}
}

func (p *pipeline) greedyOptions() (multiplets.GreedyOptions, error) {
	c := p.g.job.Greedy
	opts := multiplets.DefaultGreedyOptions()
	if c.Attempts > 0 {
		opts.Attempts = c.Attempts
	}
	if c.Workers > 0 {
		opts.Workers = c.Workers
	}
	opts.Seed = c.Seed
	opts.Verbose = c.Verbose
	agg, ok := multiplets.AggregatorByName(c.SetAggregator)
	if !ok {
		return opts, fmt.Errorf("unknown set aggregator %q", c.SetAggregator)
	}
	opts.SetAggregator = agg
	if c.Preference != "" {
		l, err := p.compile(c.Preference)
		if err != nil {
			return opts, err
		}
		opts.Preference = l.Expr()
	}
	return opts, nil
}

// shape applies the --join and --long output flags to a multiplet table.
func (p *pipeline) shape(t *frame.Table, join, long bool) (*frame.Table, error) {
	var err error
	switch {
	case long:
		if t, err = p.session.Unpivot(t, true); err != nil {
			return nil, err
		}
		if join {
			attrs := p.entities.Drop(p.g.job.GroupColumn)
			id := p.g.job.IDColumn
			t, err = frame.LeftJoin(t, attrs, []string{id}, []string{id})
		}
	case join:
		t, err = p.session.Join(t, p.entities, "")
	}
	return t, err
}

// write emits t as CSV to the --output destination.
func (p *pipeline) write(stdout io.Writer, t *frame.Table) error {
	path := p.g.outputPath
	if path == "" || path == "-" {
		return t.WriteCSV(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = t.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
