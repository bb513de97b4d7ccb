package compare

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	internal "github.com/ZanzyTHEbar/husrm/husrm"
	"github.com/ZanzyTHEbar/husrm/husrm/metrics"
	"github.com/ZanzyTHEbar/husrm/husrm/mining"
	"github.com/ZanzyTHEbar/husrm/husrm/sequence"
)

// Result is the outcome of mining with one strategy combination.
type Result struct {
	Strategies mining.Strategies
	Rules      int
	Duration   time.Duration
	Stats      *metrics.RunStats
	signature  []string
}

// Report collects every result in combination order.
type Report struct {
	Results []Result
	// Consistent is true when every combination reported the same rules.
	Consistent bool
	// Mismatches names the combinations that disagree with the first one.
	Mismatches []string
}

type options struct {
	workers      int
	combinations []mining.Strategies
	logger       zerolog.Logger
	collector    *metrics.Collector
}

// Option configures Run.
type Option func(*options)

func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithCombinations restricts the comparison to the given combinations.
func WithCombinations(combos []mining.Strategies) Option {
	return func(o *options) {
		if len(combos) > 0 {
			o.combinations = combos
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithCollector(c *metrics.Collector) Option {
	return func(o *options) {
		o.collector = c
	}
}

// Run mines db once per strategy combination, concurrently. Each run works
// on its own copy of db; db itself is never modified.
func Run(ctx context.Context, db *sequence.Database, base mining.Config, opts ...Option) (*Report, error) {
	o := options{
		workers:      internal.DefaultCompareWorkers,
		combinations: mining.StrategyCombinations(),
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	type indexed struct {
		pos    int
		result Result
	}
	p := pool.NewWithResults[indexed]().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(o.workers)

	for i, strategies := range o.combinations {
		cfg := base
		cfg.Strategies = strategies
		p.Go(func(ctx context.Context) (indexed, error) {
			res, err := mineOne(ctx, db.Clone(), cfg, o)
			if err != nil {
				return indexed{}, fmt.Errorf("strategies %s: %w", strategies, err)
			}
			return indexed{pos: i, result: res}, nil
		})
	}

	done, err := p.Wait()
	if err != nil {
		return nil, err
	}
	slices.SortFunc(done, func(a, b indexed) int { return a.pos - b.pos })

	report := &Report{Consistent: true}
	for _, d := range done {
		report.Results = append(report.Results, d.result)
	}
	if len(report.Results) > 0 {
		ref := report.Results[0].signature
		for _, res := range report.Results[1:] {
			if !slices.Equal(ref, res.signature) {
				report.Consistent = false
				report.Mismatches = append(report.Mismatches, res.Strategies.String())
			}
		}
	}
	o.logger.Info().
		Int("combinations", len(report.Results)).
		Bool("consistent", report.Consistent).
		Strs("mismatches", report.Mismatches).
		Msg("strategy comparison finished")
	return report, nil
}

func mineOne(ctx context.Context, db *sequence.Database, cfg mining.Config, o options) (Result, error) {
	m, err := mining.New(cfg,
		mining.WithLogger(o.logger.With().Str("strategies", cfg.Strategies.String()).Logger()),
		mining.WithCollector(o.collector),
	)
	if err != nil {
		return Result{}, err
	}
	sink := &mining.CollectingSink{}
	start := time.Now()
	stats, err := m.Run(ctx, db, sink)
	if err != nil {
		return Result{}, err
	}

	sig := make([]string, len(sink.Rules))
	for i, r := range sink.Rules {
		sig[i] = r.String()
	}
	slices.Sort(sig)
	return Result{
		Strategies: cfg.Strategies,
		Rules:      len(sink.Rules),
		Duration:   time.Since(start),
		Stats:      stats,
		signature:  sig,
	}, nil
}

// WriteTable prints one line per combination.
func (r *Report) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGIES\tRULES\tTABLES\tPRUNED PAIRS\tDURATION")
	for _, res := range r.Results {
		tables, pruned := 0, 0
		if res.Stats != nil {
			tables, pruned = res.Stats.UtilityTables, res.Stats.PrunedPairs
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", res.Strategies, res.Rules, tables, pruned, res.Duration.Round(time.Microsecond))
	}
	status := "consistent"
	if !r.Consistent {
		status = "INCONSISTENT: " + strings.Join(r.Mismatches, " | ")
	}
	fmt.Fprintf(tw, "\n%s\n", status)
	return tw.Flush()
}
