package mining

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ZanzyTHEbar/husrm/husrm/indexing"
	"github.com/ZanzyTHEbar/husrm/husrm/metrics"
	"github.com/ZanzyTHEbar/husrm/husrm/sequence"
)

// Miner runs the rule search. A Miner holds no per-run state and can be
// reused; concurrent runs need distinct observers.
type Miner struct {
	cfg       Config
	logger    zerolog.Logger
	observer  metrics.MemoryObserver
	collector *metrics.Collector
}

// Option configures a Miner.
type Option func(*Miner)

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Miner) {
		m.logger = logger
	}
}

func WithObserver(observer metrics.MemoryObserver) Option {
	return func(m *Miner) {
		if observer != nil {
			m.observer = observer
		}
	}
}

func WithCollector(collector *metrics.Collector) Option {
	return func(m *Miner) {
		m.collector = collector
	}
}

// New validates cfg and returns a Miner.
func New(cfg Config, opts ...Option) (*Miner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Miner{
		cfg:      cfg,
		logger:   zerolog.Nop(),
		observer: metrics.NopObserver{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Run mines db and sends every rule meeting both thresholds to sink, in
// discovery order. When item pruning is enabled db is modified in place; pass
// a clone to keep the original. The context is checked between top-level
// candidate pairs.
func (m *Miner) Run(ctx context.Context, db *sequence.Database, sink RuleSink) (stats *metrics.RunStats, err error) {
	stats = &metrics.RunStats{RunID: uuid.NewString(), Started: time.Now()}
	logger := m.logger.With().Str("run_id", stats.RunID).Logger()
	minUtil := m.cfg.EffectiveMinUtility()
	kind := m.cfg.EffectiveSetKind()
	stats.SetKind = kind.String()

	logger.Info().
		Float64("min_utility", minUtil).
		Float64("min_confidence", m.cfg.MinConfidence).
		Int("max_antecedent", m.cfg.MaxAntecedent).
		Int("max_consequent", m.cfg.MaxConsequent).
		Str("strategies", m.cfg.Strategies.String()).
		Str("set_kind", stats.SetKind).
		Int("sequences", db.Len()).
		Msg("mining started")

	m.observer.Reset()
	m.observer.Sample()
	defer func() {
		m.observer.Sample()
		stats.Finished = time.Now()
		stats.PeakHeapMiB = m.observer.Peak()
		m.collector.CandidatePairs(stats.CandidatePairs, stats.PrunedPairs)
		m.collector.RunFinished(stats.Elapsed(), stats.PeakHeapMiB, err)
		event := logger.Info()
		if err != nil {
			event = logger.Error().Err(err)
		}
		event.Fields(stats.AsMap()).Msg("mining finished")
	}()

	if m.cfg.Strategies.PruneItems {
		report := sequence.PruneUnpromising(db, minUtil)
		stats.ItemsPruned = report.ItemsRemoved
		stats.SequencesPruned = report.SequencesRemoved
		logger.Debug().
			Int("rounds", report.Rounds).
			Int("items", report.ItemsRemoved).
			Int("occurrences", report.OccurrencesRemoved).
			Int("itemsets", report.ItemsetsRemoved).
			Int("sequences", report.SequencesRemoved).
			Msg("unpromising items removed")
	}
	stats.Sequences = db.Len()

	r := &run{
		cfg:       m.cfg,
		minUtil:   minUtil,
		db:        db,
		index:     indexing.BuildItemIndex(db, indexing.NewFactory(kind, db.Len())),
		sink:      sink,
		observer:  m.observer,
		collector: m.collector,
		stats:     stats,
	}

	cands := generateCandidates(db)
	logger.Debug().Int("pairs", cands.size()).Msg("candidate pairs generated")

	for _, x := range cands.antecedents() {
		for _, y := range cands.consequents(x) {
			if err := ctx.Err(); err != nil {
				return stats, fmt.Errorf("mining interrupted: %w", err)
			}
			c := cands[x][y]
			stats.CandidatePairs++
			if m.cfg.Strategies.PrunePairs && c.estimate < minUtil {
				stats.PrunedPairs++
				continue
			}
			logger.Trace().Int("x", x).Int("y", y).Int("sequences", len(c.sids)).Msg("evaluating pair")
			if err := r.evaluatePair(x, y, c.sids); err != nil {
				return stats, err
			}
			m.observer.Sample()
		}
	}
	return stats, nil
}

// run holds the state of one mining run.
type run struct {
	cfg       Config
	minUtil   float64
	db        *sequence.Database
	index     *indexing.ItemIndex
	sink      RuleSink
	observer  metrics.MemoryObserver
	collector *metrics.Collector
	stats     *metrics.RunStats
}

// evaluatePair builds the utility table of x ==> y, emits it, then grows the
// consequent and the antecedent.
func (r *run) evaluatePair(x, y sequence.Item, sids []int) error {
	table := &utilityTable{}
	for _, sid := range sids {
		if rw, ok := buildRow(r.db.Sequence(sid), sid, x, y); ok {
			table.add(rw)
		}
	}
	r.stats.UtilityTables++
	r.collector.TableBuilt()

	ant, cons := []sequence.Item{x}, []sequence.Item{y}
	sidsAnt := r.index.Get(x)
	if err := r.emit(ant, cons, table.support(), r.index.Support(x), table.totalUtility); err != nil {
		return err
	}

	left, right := table.bounds(r.cfg.Strategies.TightBounds)
	if right >= r.minUtil && len(cons) < r.cfg.MaxConsequent {
		if err := r.expandRight(table, ant, cons, sidsAnt); err != nil {
			return err
		}
	}
	if left >= r.minUtil && len(ant) < r.cfg.MaxAntecedent {
		if err := r.expandFirstLeft(table, ant, cons, sidsAnt); err != nil {
			return err
		}
	}
	return nil
}

// emit reports the rule when it meets both thresholds.
func (r *run) emit(ant, cons []sequence.Item, support, antSupport int, utility float64) error {
	if support == 0 {
		return nil
	}
	if antSupport < support {
		return fmt.Errorf("%w: rule %v ==> %v has support %d but its antecedent occurs in %d sequences",
			ErrInvariantViolation, ant, cons, support, antSupport)
	}
	if utility < r.minUtil {
		return nil
	}
	confidence := float64(support) / float64(antSupport)
	if confidence < r.cfg.MinConfidence {
		return nil
	}

	rule := Rule{
		Antecedent: ant,
		Consequent: cons,
		Support:    support,
		Confidence: confidence,
		Utility:    utility,
	}
	if err := r.sink.Emit(rule); err != nil {
		return fmt.Errorf("failed to emit rule %s: %w", rule.Key(), err)
	}
	r.stats.RulesEmitted++
	r.collector.RuleEmitted()
	return nil
}
