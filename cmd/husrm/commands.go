package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	internal "github.com/ZanzyTHEbar/husrm/husrm"
	"github.com/ZanzyTHEbar/husrm/husrm/compare"
	"github.com/ZanzyTHEbar/husrm/husrm/config"
	"github.com/ZanzyTHEbar/husrm/husrm/metrics"
	"github.com/ZanzyTHEbar/husrm/husrm/mining"
	"github.com/ZanzyTHEbar/husrm/husrm/output"
	"github.com/ZanzyTHEbar/husrm/husrm/sequence"
)

// miningFlags are the threshold flags shared by mine and compare.
type miningFlags struct {
	minUtil   float64
	minConf   float64
	maxAnt    int
	maxCons   int
	setKind   string
	disabled  []int
	workers   int
	metricsTo string
}

func (f *miningFlags) register(fs *pflag.FlagSet) {
	fs.Float64Var(&f.minUtil, "min-util", internal.DefaultMinUtility, "minimum rule utility (0 is treated as 0.001)")
	fs.Float64Var(&f.minConf, "min-conf", internal.DefaultMinConfidence, "minimum rule confidence in [0,1]")
	fs.IntVar(&f.maxAnt, "max-antecedent", internal.DefaultMaxAntecedent, "maximum antecedent size")
	fs.IntVar(&f.maxCons, "max-consequent", internal.DefaultMaxConsequent, "maximum consequent size")
	fs.StringVar(&f.setKind, "set-kind", internal.DefaultSetKind, "sequence-id set: bitvector, list or roaring")
	fs.IntSliceVar(&f.disabled, "disable-strategy", nil, "turn off strategy 1-4 (repeatable)")
	fs.StringVar(&f.metricsTo, "metrics-file", "", "write prometheus metrics to this textfile after the run")
}

// apply copies the flags the user set over the loaded configuration.
func (f *miningFlags) apply(fs *pflag.FlagSet, cfg *config.Config) error {
	if fs.Changed("min-util") {
		cfg.Mining.MinUtility = f.minUtil
	}
	if fs.Changed("min-conf") {
		cfg.Mining.MinConfidence = f.minConf
	}
	if fs.Changed("max-antecedent") {
		cfg.Mining.MaxAntecedent = f.maxAnt
	}
	if fs.Changed("max-consequent") {
		cfg.Mining.MaxConsequent = f.maxCons
	}
	if fs.Changed("set-kind") {
		cfg.Mining.SetKind = f.setKind
	}
	if fs.Changed("disable-strategy") {
		cfg.Mining.DisabledStrategies = f.disabled
	}
	if fs.Changed("metrics-file") {
		cfg.Metrics.Textfile = f.metricsTo
	}
	if fs.Changed("workers") {
		cfg.Compare.Workers = f.workers
	}
	return cfg.Validate()
}

func (a *app) loadDatabase() (*sequence.Database, error) {
	opts := []sequence.ParseOption{
		sequence.WithMaxSequences(a.cfg.Input.MaxSequences),
		sequence.WithParseLogger(a.logger),
	}
	if a.cfg.Input.Path == "-" {
		return sequence.Parse(a.stdin, opts...)
	}
	return sequence.LoadFile(a.cfg.Input.Path, opts...)
}

func (a *app) newCollector() *metrics.Collector {
	if a.cfg.Metrics.Textfile == "" {
		return nil
	}
	return metrics.NewCollector()
}

func (a *app) writeMetrics(c *metrics.Collector) error {
	if c == nil {
		return nil
	}
	if err := c.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		return err
	}
	a.logger.Debug().Str("path", a.cfg.Metrics.Textfile).Msg("metrics written")
	return nil
}

func newMineCmd(a *app) *cobra.Command {
	var (
		flags      miningFlags
		outputPath string
		format     string
		verify     bool
	)

	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Mine rules and write them to a file or stdout",
		Long: `Mine every rule meeting the utility and confidence thresholds.

Examples:
  # Rules with utility >= 40 and confidence >= 0.7
  husrm mine -i corpus.txt --min-util 40 --min-conf 0.7

  # JSON lines output, recomputing every rule against the corpus
  husrm mine -i corpus.txt --format jsonl --verify -o rules.jsonl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs := cmd.Flags()
			if fs.Changed("output") {
				a.cfg.Output.Path = outputPath
			}
			if fs.Changed("format") {
				a.cfg.Output.Format = format
			}
			if err := flags.apply(fs, a.cfg); err != nil {
				return err
			}
			return a.runMine(cmd, verify)
		},
	}

	fs := cmd.Flags()
	flags.register(fs)
	fs.StringVarP(&outputPath, "output", "o", "-", "rule output file, - for stdout")
	fs.StringVar(&format, "format", internal.DefaultOutputFormat, "output format: text or jsonl")
	fs.BoolVar(&verify, "verify", false, "recompute every rule by brute force and fail on mismatch")
	return cmd
}

func (a *app) runMine(cmd *cobra.Command, verify bool) (err error) {
	mc, err := a.cfg.ToMining()
	if err != nil {
		return err
	}
	db, err := a.loadDatabase()
	if err != nil {
		return err
	}

	w, closeOut, err := a.openOutput()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	sink, err := output.Open(a.cfg.Output.Format, w)
	if err != nil {
		return err
	}
	var target mining.RuleSink = sink
	mined := db
	if verify {
		// mining prunes its input, so verify against an untouched copy
		mined = db.Clone()
		target = mining.NewVerifyingSink(db, sink)
	}

	collector := a.newCollector()
	miner, err := mining.New(mc,
		mining.WithLogger(a.logger),
		mining.WithObserver(metrics.NewRuntimeObserver(a.cfg.Metrics.SampleEvery)),
		mining.WithCollector(collector),
	)
	if err != nil {
		return err
	}

	stats, runErr := miner.Run(cmd.Context(), mined, target)
	if ferr := sink.Flush(); ferr != nil && runErr == nil {
		runErr = fmt.Errorf("failed to flush rules: %w", ferr)
	}
	if runErr != nil {
		return runErr
	}
	if err := a.writeMetrics(collector); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%d rules, %d candidate pairs, peak heap %.2f MiB, %s\n",
		stats.RulesEmitted, stats.CandidatePairs, stats.PeakHeapMiB, stats.Elapsed())
	return nil
}

func (a *app) openOutput() (io.Writer, func() error, error) {
	if a.cfg.Output.Path == "" || a.cfg.Output.Path == "-" {
		return a.stdout, func() error { return nil }, nil
	}
	f, err := os.Create(a.cfg.Output.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output %s: %w", a.cfg.Output.Path, err)
	}
	return f, f.Close, nil
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print statistics about the corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.loadDatabase()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), sequence.Describe(db).String())
			return err
		},
	}
}

func newCompareCmd(a *app) *cobra.Command {
	var flags miningFlags

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Mine with every strategy combination and check they agree",
		Long: `Run the miner once per combination of the four optimizations:
  1 item pruning, 2 pair pruning, 3 bit vector sets, 4 tight bounds.
All runs must report the same rules; they differ only in work done.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.apply(cmd.Flags(), a.cfg); err != nil {
				return err
			}
			mc, err := a.cfg.ToMining()
			if err != nil {
				return err
			}
			db, err := a.loadDatabase()
			if err != nil {
				return err
			}

			collector := a.newCollector()
			report, err := compare.Run(cmd.Context(), db, mc,
				compare.WithWorkers(a.cfg.Compare.Workers),
				compare.WithLogger(a.logger),
				compare.WithCollector(collector),
			)
			if err != nil {
				return err
			}
			if err := report.WriteTable(cmd.OutOrStdout()); err != nil {
				return err
			}
			if err := a.writeMetrics(collector); err != nil {
				return err
			}
			if !report.Consistent {
				return fmt.Errorf("strategy combinations disagree: %v", report.Mismatches)
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().IntVar(&flags.workers, "workers", internal.DefaultCompareWorkers, "concurrent mining runs")
	return cmd
}
