package sequence

// PruneReport summarizes what PruneUnpromising removed.
type PruneReport struct {
	Rounds             int
	ItemsRemoved       int // distinct items
	OccurrencesRemoved int
	ItemsetsRemoved    int
	SequencesRemoved   int
}

// EstimateItemUtilities returns, for every item, the summed exact utility of
// the sequences containing it.
func EstimateItemUtilities(db *Database) map[Item]float64 {
	estimates := make(map[Item]float64)
	for _, s := range db.Sequences {
		for _, item := range s.DistinctItems() {
			estimates[item] += s.ExactUtility
		}
	}
	return estimates
}

// PruneUnpromising removes every item whose estimated utility is below
// minUtil, subtracting its utility from the owning sequence. Removal lowers
// other estimates, so the pass repeats until nothing changes; running it again
// on its own output is a no-op. This differs from a single pass only in
// removing more items; the mined rules are the same.
func PruneUnpromising(db *Database, minUtil float64) PruneReport {
	var report PruneReport
	removed := make(map[Item]struct{})

	for {
		report.Rounds++
		estimates := EstimateItemUtilities(db)
		unpromising := make(map[Item]struct{})
		for item, est := range estimates {
			if est < minUtil {
				unpromising[item] = struct{}{}
				removed[item] = struct{}{}
			}
		}
		if len(unpromising) == 0 {
			break
		}

		kept := db.Sequences[:0]
		for _, s := range db.Sequences {
			occ, sets := s.removeItems(unpromising)
			report.OccurrencesRemoved += occ
			report.ItemsetsRemoved += sets
			if s.Len() == 0 {
				report.SequencesRemoved++
				continue
			}
			kept = append(kept, s)
		}
		clear(db.Sequences[len(kept):])
		db.Sequences = kept
	}

	report.ItemsRemoved = len(removed)
	return report
}

// removeItems drops the given items in place and returns how many occurrences
// and itemsets disappeared.
func (s *Sequence) removeItems(drop map[Item]struct{}) (occurrences, itemsets int) {
	keptSets := s.Itemsets[:0]
	for _, is := range s.Itemsets {
		n := 0
		for j, item := range is.Items {
			if _, ok := drop[item]; ok {
				s.ExactUtility -= is.Utilities[j]
				occurrences++
				continue
			}
			is.Items[n] = item
			is.Utilities[n] = is.Utilities[j]
			n++
		}
		is.Items, is.Utilities = is.Items[:n], is.Utilities[:n]
		if n == 0 {
			itemsets++
			continue
		}
		keptSets = append(keptSets, is)
	}
	s.Itemsets = keptSets
	return occurrences, itemsets
}
