package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "husrm"

// Expansion directions.
const (
	DirectionRight = "right"
	DirectionLeft  = "left"
)

// Collector exposes mining counters through its own prometheus registry.
// A nil *Collector is valid and records nothing.
type Collector struct {
	reg *prometheus.Registry

	rulesEmitted   prometheus.Counter
	tablesBuilt    prometheus.Counter
	pairsGenerated prometheus.Counter
	pairsPruned    prometheus.Counter
	expansions     *prometheus.CounterVec
	runs           *prometheus.CounterVec
	peakHeap       prometheus.Gauge
	runDuration    prometheus.Histogram
}

// NewCollector registers the mining metrics on a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		reg: reg,
		rulesEmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rules_emitted_total",
			Help:      "Rules that passed both thresholds",
		}),
		tablesBuilt: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "utility_tables_total",
			Help:      "Utility tables built for top-level candidate pairs",
		}),
		pairsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidate_pairs_total",
			Help:      "Distinct (X,Y) pairs seen during candidate generation",
		}),
		pairsPruned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidate_pairs_pruned_total",
			Help:      "Candidate pairs discarded by their utility estimate",
		}),
		expansions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expansions_total",
			Help:      "Rule expansions by direction",
		}, []string{"direction"}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Mining runs by result",
		}, []string{"result"}),
		peakHeap: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peak_heap_mib",
			Help:      "Largest heap sample of the last run in MiB",
		}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Mining run duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
		}),
	}
}

// Registry returns the registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.reg
}

func (c *Collector) RuleEmitted() {
	if c != nil {
		c.rulesEmitted.Inc()
	}
}

func (c *Collector) TableBuilt() {
	if c != nil {
		c.tablesBuilt.Inc()
	}
}

func (c *Collector) CandidatePairs(generated, pruned int) {
	if c != nil {
		c.pairsGenerated.Add(float64(generated))
		c.pairsPruned.Add(float64(pruned))
	}
}

func (c *Collector) Expansion(direction string) {
	if c != nil {
		c.expansions.WithLabelValues(direction).Inc()
	}
}

// RunFinished records the outcome of one run.
func (c *Collector) RunFinished(elapsed time.Duration, peakMiB float64, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.runs.WithLabelValues(result).Inc()
	c.runDuration.Observe(elapsed.Seconds())
	c.peakHeap.Set(peakMiB)
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.reg); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
