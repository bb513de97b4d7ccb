package mining

import (
	"github.com/ZanzyTHEbar/husrm/husrm/sequence"
)

// side tells which rule side an item could still join.
type side int

const (
	sideNone side = iota
	sideLeft
	sideRight
	sideBoth
)

// classify compares item with the largest antecedent and consequent items.
// Sides only grow by appending larger items.
func classify(item, maxA, maxC sequence.Item) side {
	left, right := item > maxA, item > maxC
	switch {
	case left && right:
		return sideBoth
	case left:
		return sideLeft
	case right:
		return sideRight
	}
	return sideNone
}

// findFirst returns the first itemset in [from, to) holding item and the
// item's index inside it.
func findFirst(s *sequence.Sequence, item sequence.Item, from, to int) (pos, idx int, ok bool) {
	for pos = from; pos < to; pos++ {
		if idx = s.Itemsets[pos].IndexOf(item); idx >= 0 {
			return pos, idx, true
		}
	}
	return -1, -1, false
}

// findLastAfter returns the last itemset strictly after the given position
// holding item.
func findLastAfter(s *sequence.Sequence, item sequence.Item, after int) (pos, idx int, ok bool) {
	for pos = s.Len() - 1; pos > after; pos-- {
		if idx = s.Itemsets[pos].IndexOf(item); idx >= 0 {
			return pos, idx, true
		}
	}
	return -1, -1, false
}

// sumItems adds the utilities of the items in itemsets [from, to) accepted by keep.
func sumItems(s *sequence.Sequence, from, to int, keep func(sequence.Item) bool) float64 {
	var total float64
	for pos := from; pos < to; pos++ {
		is := s.Itemsets[pos]
		for j, item := range is.Items {
			if keep(item) {
				total += is.Utilities[j]
			}
		}
	}
	return total
}

// sumTail adds the utilities of the items after index idx of one itemset.
func sumTail(is sequence.Itemset, idx int) float64 {
	var total float64
	for _, u := range is.Utilities[idx+1:] {
		total += u
	}
	return total
}

// classifyBetween splits the utility of itemsets [from, to) by side.
func classifyBetween(s *sequence.Sequence, from, to int, maxA, maxC sequence.Item) (l, r, lr float64) {
	for pos := from; pos < to; pos++ {
		is := s.Itemsets[pos]
		for j, item := range is.Items {
			switch classify(item, maxA, maxC) {
			case sideLeft:
				l += is.Utilities[j]
			case sideRight:
				r += is.Utilities[j]
			case sideBoth:
				lr += is.Utilities[j]
			}
		}
	}
	return l, r, lr
}

// buildRow computes the row of rule x ==> y for one sequence. ok is false
// when the rule does not occur in it.
func buildRow(s *sequence.Sequence, sid int, x, y sequence.Item) (row, bool) {
	alpha, xi, ok := findFirst(s, x, 0, s.Len())
	if !ok {
		return row{}, false
	}
	beta, yi, ok := findLastAfter(s, y, alpha)
	if !ok {
		return row{}, false
	}

	r := row{sid: sid, alpha: alpha, beta: beta}
	alphaSet, betaSet := s.Itemsets[alpha], s.Itemsets[beta]
	r.utility = alphaSet.Utilities[xi] + betaSet.Utilities[yi]

	// Items up to alpha can only extend the antecedent.
	r.lutil = sumItems(s, 0, alpha, func(w sequence.Item) bool { return w > x })
	r.lutil += sumTail(alphaSet, xi)

	// Items from beta on can only extend the consequent.
	r.rutil = sumTail(betaSet, yi)
	r.rutil += sumItems(s, beta+1, s.Len(), func(w sequence.Item) bool { return w > y })

	l, rr, lr := classifyBetween(s, alpha+1, beta, x, y)
	r.lutil += l
	r.rutil += rr
	r.lrutil = lr
	return r, true
}
