package metrics

import (
	"time"
)

// RunStats summarizes one mining run.
type RunStats struct {
	RunID    string
	Started  time.Time
	Finished time.Time

	Sequences        int
	ItemsPruned      int
	SequencesPruned  int
	CandidatePairs   int
	PrunedPairs      int
	UtilityTables    int
	RightExpansions  int
	LeftExpansions   int
	RulesEmitted     int
	PeakHeapMiB      float64
	SetKind          string
}

// Elapsed returns the wall time of the run.
func (rs *RunStats) Elapsed() time.Duration {
	if rs.Finished.IsZero() {
		return time.Since(rs.Started)
	}
	return rs.Finished.Sub(rs.Started)
}

// AsMap returns the statistics keyed by snake_case names, for logging and reports.
func (rs *RunStats) AsMap() map[string]interface{} {
	return map[string]interface{}{
		"run_id":           rs.RunID,
		"started":          rs.Started,
		"finished":         rs.Finished,
		"elapsed_ms":       rs.Elapsed().Milliseconds(),
		"sequences":        rs.Sequences,
		"items_pruned":     rs.ItemsPruned,
		"sequences_pruned": rs.SequencesPruned,
		"candidate_pairs":  rs.CandidatePairs,
		"pruned_pairs":     rs.PrunedPairs,
		"utility_tables":   rs.UtilityTables,
		"right_expansions": rs.RightExpansions,
		"left_expansions":  rs.LeftExpansions,
		"rules_emitted":    rs.RulesEmitted,
		"peak_heap_mib":    rs.PeakHeapMiB,
		"set_kind":         rs.SetKind,
	}
}
