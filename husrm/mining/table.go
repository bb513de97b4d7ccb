package mining

import (
	"maps"
	"slices"

	"github.com/ZanzyTHEbar/husrm/husrm/sequence"
)

// row describes one supporting sequence of a rule whose consequent can still
// grow. alpha is the itemset of the last antecedent item and beta the itemset
// of the first consequent item; alpha < beta always holds.
//
// lutil covers items that can only extend the antecedent, rutil items that can
// only extend the consequent, and lrutil items that can extend either side.
// The sums may overestimate but never underestimate.
type row struct {
	sid     int
	utility float64
	lutil   float64
	rutil   float64
	lrutil  float64
	alpha   int
	beta    int
}

type utilityTable struct {
	rows         []row
	totalUtility float64
	totalLutil   float64
	totalRutil   float64
	totalLRutil  float64
}

func (t *utilityTable) add(r row) {
	t.rows = append(t.rows, r)
	t.totalUtility += r.utility
	t.totalLutil += r.lutil
	t.totalRutil += r.rutil
	t.totalLRutil += r.lrutil
}

func (t *utilityTable) support() int { return len(t.rows) }

// bounds returns the upper bounds on the utility of any rule reachable by
// left and by right expansion. Right-expanded rules are later left-expanded,
// so the right bound always includes lutil.
func (t *utilityTable) bounds(tight bool) (left, right float64) {
	right = t.totalUtility + t.totalLutil + t.totalRutil + t.totalLRutil
	if tight {
		return t.totalUtility + t.totalLutil + t.totalLRutil, right
	}
	return right, right
}

// leftRow describes one supporting sequence once the consequent is fixed.
type leftRow struct {
	sid     int
	utility float64
	lutil   float64
}

type leftTable struct {
	rows         []leftRow
	totalUtility float64
	totalLutil   float64
}

func (t *leftTable) add(r leftRow) {
	t.rows = append(t.rows, r)
	t.totalUtility += r.utility
	t.totalLutil += r.lutil
}

func (t *leftTable) support() int { return len(t.rows) }

func (t *leftTable) bound() float64 { return t.totalUtility + t.totalLutil }

// tableSet groups the tables built for each extension item of one rule.
type tableSet[T any] map[sequence.Item]*T

func (ts tableSet[T]) get(item sequence.Item) *T {
	t, ok := ts[item]
	if !ok {
		t = new(T)
		ts[item] = t
	}
	return t
}

// items returns the extension items in ascending order.
func (ts tableSet[T]) items() []sequence.Item {
	return slices.Sorted(maps.Keys(ts))
}

// appendItem returns a new slice holding items followed by item.
func appendItem(items []sequence.Item, item sequence.Item) []sequence.Item {
	out := make([]sequence.Item, len(items)+1)
	copy(out, items)
	out[len(items)] = item
	return out
}
