package mining

import (
	"maps"
	"slices"

	"github.com/ZanzyTHEbar/husrm/husrm/sequence"
)

// candidate accumulates, for a pair (x, y), the ids of the sequences where
// x occurs before y and the summed exact utility of those sequences.
type candidate struct {
	estimate float64
	sids     []int
}

type candidateIndex map[sequence.Item]map[sequence.Item]*candidate

// generateCandidates enumerates every ordered item pair of every sequence.
// Sequence ids are visited in increasing order, so each sids list is sorted
// and a sequence is counted once per pair.
func generateCandidates(db *sequence.Database) candidateIndex {
	cands := make(candidateIndex)
	for sid, s := range db.Sequences {
		for i, is := range s.Itemsets {
			for _, x := range is.Items {
				byY, ok := cands[x]
				if !ok {
					byY = make(map[sequence.Item]*candidate)
					cands[x] = byY
				}
				for k := i + 1; k < s.Len(); k++ {
					for _, y := range s.Itemsets[k].Items {
						if y == x {
							continue
						}
						c, ok := byY[y]
						if !ok {
							c = &candidate{}
							byY[y] = c
						}
						if n := len(c.sids); n > 0 && c.sids[n-1] == sid {
							continue
						}
						c.sids = append(c.sids, sid)
						c.estimate += s.ExactUtility
					}
				}
			}
		}
	}
	return cands
}

func (ci candidateIndex) antecedents() []sequence.Item {
	return slices.Sorted(maps.Keys(ci))
}

func (ci candidateIndex) consequents(x sequence.Item) []sequence.Item {
	return slices.Sorted(maps.Keys(ci[x]))
}

func (ci candidateIndex) size() int {
	n := 0
	for _, byY := range ci {
		n += len(byY)
	}
	return n
}
