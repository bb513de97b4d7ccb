package sequence

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats describes the shape of a database.
type Stats struct {
	Sequences           int
	Itemsets            int
	Occurrences         int
	DistinctItems       int
	MaxItem             Item
	TotalUtility        float64
	MeanItemsetsPerSeq  float64
	StdItemsetsPerSeq   float64
	MeanItemsPerItemset float64
	StdItemsPerItemset  float64
	MeanSeqUtility      float64
}

// Describe computes database statistics.
func Describe(db *Database) Stats {
	st := Stats{Sequences: db.Len()}
	if db.Len() == 0 {
		return st
	}

	perSeq := make([]float64, 0, db.Len())
	perItemset := make([]float64, 0, db.Len())
	seqUtil := make([]float64, 0, db.Len())
	distinct := make(map[Item]struct{})

	for _, s := range db.Sequences {
		perSeq = append(perSeq, float64(s.Len()))
		seqUtil = append(seqUtil, s.ExactUtility)
		for _, is := range s.Itemsets {
			perItemset = append(perItemset, float64(is.Len()))
			st.Occurrences += is.Len()
			for _, item := range is.Items {
				distinct[item] = struct{}{}
				if item > st.MaxItem {
					st.MaxItem = item
				}
			}
		}
	}

	st.Itemsets = len(perItemset)
	st.DistinctItems = len(distinct)
	st.TotalUtility = floats.Sum(seqUtil)
	st.MeanSeqUtility = stat.Mean(seqUtil, nil)
	st.MeanItemsetsPerSeq, st.StdItemsetsPerSeq = meanStd(perSeq)
	st.MeanItemsPerItemset, st.StdItemsPerItemset = meanStd(perItemset)
	return st
}

func meanStd(xs []float64) (float64, float64) {
	switch len(xs) {
	case 0:
		return 0, 0
	case 1:
		return xs[0], 0
	}
	return stat.MeanStdDev(xs, nil)
}

// String renders the statistics as an aligned block.
func (st Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sequences:              %d\n", st.Sequences)
	fmt.Fprintf(&b, "itemsets:               %d\n", st.Itemsets)
	fmt.Fprintf(&b, "item occurrences:       %d\n", st.Occurrences)
	fmt.Fprintf(&b, "distinct items:         %d (max id %d)\n", st.DistinctItems, st.MaxItem)
	fmt.Fprintf(&b, "itemsets per sequence:  %.3f (sd %.3f)\n", st.MeanItemsetsPerSeq, st.StdItemsetsPerSeq)
	fmt.Fprintf(&b, "items per itemset:      %.3f (sd %.3f)\n", st.MeanItemsPerItemset, st.StdItemsPerItemset)
	fmt.Fprintf(&b, "total utility:          %g\n", st.TotalUtility)
	fmt.Fprintf(&b, "mean sequence utility:  %g\n", st.MeanSeqUtility)
	return b.String()
}
