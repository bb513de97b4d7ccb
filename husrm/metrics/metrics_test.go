package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryObserver(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"RuntimeSamples", testRuntimeObserverSamples},
		{"RuntimeThrottle", testRuntimeObserverThrottle},
		{"Nop", testNopObserver},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testRuntimeObserverSamples(t *testing.T) {
	var o MemoryObserver = NewRuntimeObserver(1)
	first := o.Sample()
	assert.Greater(t, first, 0.0)

	buf := make([]byte, 8*bytesPerMiB)
	buf[len(buf)-1] = 1
	o.Sample()
	assert.GreaterOrEqual(t, o.Peak(), first)
	assert.Equal(t, byte(1), buf[len(buf)-1])

	o.Reset()
	assert.Equal(t, 0.0, o.Peak())
}

func testRuntimeObserverThrottle(t *testing.T) {
	o := NewRuntimeObserver(10)
	first := o.Sample()
	for i := 0; i < 8; i++ {
		assert.Equal(t, first, o.Sample(), "cached sample between reads")
	}
	assert.Equal(t, first, o.Peak())
}

func testNopObserver(t *testing.T) {
	var o MemoryObserver = NopObserver{}
	o.Reset()
	assert.Equal(t, 0.0, o.Sample())
	assert.Equal(t, 0.0, o.Peak())
}

func TestCollector(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"Counters", testCollectorCounters},
		{"NilSafe", testCollectorNilSafe},
		{"Textfile", testCollectorTextfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testCollectorCounters(t *testing.T) {
	c := NewCollector()
	c.RuleEmitted()
	c.RuleEmitted()
	c.TableBuilt()
	c.CandidatePairs(10, 4)
	c.Expansion(DirectionLeft)
	c.Expansion(DirectionRight)
	c.Expansion(DirectionRight)
	c.RunFinished(150*time.Millisecond, 12.5, nil)
	c.RunFinished(time.Millisecond, 3, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.rulesEmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.tablesBuilt))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.pairsGenerated))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.pairsPruned))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.expansions.WithLabelValues(DirectionRight)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues("error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.peakHeap))

	count, err := testutil.GatherAndCount(c.Registry(), "husrm_run_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func testCollectorNilSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RuleEmitted()
		c.TableBuilt()
		c.CandidatePairs(1, 1)
		c.Expansion(DirectionLeft)
		c.RunFinished(time.Second, 1, nil)
	})
	assert.Nil(t, c.Registry())
	assert.NoError(t, c.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func testCollectorTextfile(t *testing.T) {
	c := NewCollector()
	c.RuleEmitted()
	path := filepath.Join(t.TempDir(), "husrm.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "husrm_rules_emitted_total 1")
}

func TestRunStats(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rs := &RunStats{
		RunID:        "abc",
		Started:      start,
		Finished:     start.Add(1500 * time.Millisecond),
		RulesEmitted: 7,
		SetKind:      "bitvector",
	}
	assert.Equal(t, 1500*time.Millisecond, rs.Elapsed())

	m := rs.AsMap()
	assert.Equal(t, "abc", m["run_id"])
	assert.Equal(t, int64(1500), m["elapsed_ms"])
	assert.Equal(t, 7, m["rules_emitted"])
	assert.Equal(t, "bitvector", m["set_kind"])
}
