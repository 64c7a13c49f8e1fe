// Command multiplets builds k-partite hyperedges from an entity table and
// selects disjoint multiplets, driven by a YAML or TOML job file.
//
//	multiplets hyperedges --config job.yaml --output edges.csv
//	multiplets match      --config job.yaml --long
//	multiplets greedy     --config job.toml --input entities.jsonl
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/lib/pq"

	"github.com/katalvlaran/kpartite/config"
	"github.com/katalvlaran/kpartite/metrics"
)

// globals holds the persistent flags and the state built from them.
type globals struct {
	configPath string
	inputPath  string
	format     string
	outputPath string
	metricsOut string
	logLevel   string

	job *config.Job
	log *zap.Logger
	reg *metrics.Registry
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "multiplets",
		Short:         "Match entities across groups into disjoint multiplets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return g.finish()
		},
	}

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "job file (.yaml, .yml or .toml)")
	root.PersistentFlags().StringVarP(&g.inputPath, "input", "i", "", "entity file, overrides input.path")
	root.PersistentFlags().StringVar(&g.format, "format", "", "input format: csv, jsonl or sql (default: from the file extension)")
	root.PersistentFlags().StringVarP(&g.outputPath, "output", "o", "-", "output CSV file, - for stdout")
	root.PersistentFlags().StringVar(&g.metricsOut, "metrics-out", "", "write Prometheus metrics in textfile format to this path")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	_ = root.MarkPersistentFlagRequired("config")

	root.AddCommand(newHyperedgesCmd(g))
	root.AddCommand(newMatchCmd(g))
	root.AddCommand(newGreedyCmd(g))

	return root
}

func (g *globals) init() error {
	log, err := newLogger(g.logLevel)
	if err != nil {
		return err
	}
	g.log = log

	job, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	if g.inputPath != "" {
		job.Input.Path = g.inputPath
	}
	if g.format != "" {
		job.Input.Format = g.format
	}
	g.job = job

	if g.metricsOut != "" {
		g.reg = metrics.NewRegistry()
	}
	return nil
}

func (g *globals) finish() error {
	if g.log != nil {
		_ = g.log.Sync()
	}
	if g.reg == nil {
		return nil
	}
	if err := g.reg.WriteTextfile(g.metricsOut); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// newLogger builds a console logger on stderr at the given level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
