package indexing

import (
	"slices"
)

// SortedList keeps sequence ids in ascending order. Ids are normally added in
// increasing order, making Add an append. Membership probes go through an
// Eytzinger copy of the list that is rebuilt after mutations.
type SortedList struct {
	ids    []int
	layout []int
}

func NewSortedList() *SortedList {
	return &SortedList{}
}

func (l *SortedList) Add(id int) {
	n := len(l.ids)
	switch {
	case n == 0 || l.ids[n-1] < id:
		l.ids = append(l.ids, id)
	case l.ids[n-1] == id:
		return
	default:
		pos, found := slices.BinarySearch(l.ids, id)
		if found {
			return
		}
		l.ids = slices.Insert(l.ids, pos, id)
	}
	l.layout = nil
}

func (l *SortedList) Size() int { return len(l.ids) }

func (l *SortedList) Contains(id int) bool {
	if len(l.ids) == 0 {
		return false
	}
	if l.layout == nil {
		l.layout = buildEytzinger(l.ids)
	}
	return eytzingerContains(l.layout, id)
}

// Intersect probes every member of l against other, so the result stays sorted.
func (l *SortedList) Intersect(other SequenceIDSet) SequenceIDSet {
	res := NewSortedList()
	for _, id := range l.ids {
		if other.Contains(id) {
			res.ids = append(res.ids, id)
		}
	}
	return res
}

func (l *SortedList) IDs() []int { return slices.Clone(l.ids) }

func (l *SortedList) Kind() Kind { return KindSortedList }

// buildEytzinger lays a sorted slice out in breadth-first order of the
// implicit binary search tree (node i has children 2i and 2i+1, 1-based).
func buildEytzinger(sorted []int) []int {
	n := len(sorted)
	layout := make([]int, n)
	pos := 0
	var fill func(i int)
	fill = func(i int) {
		if i > n {
			return
		}
		fill(i << 1)
		layout[i-1] = sorted[pos]
		pos++
		fill((i << 1) | 1)
	}
	fill(1)
	return layout
}

func eytzingerContains(layout []int, x int) bool {
	for i, n := 1, len(layout); i <= n; {
		v := layout[i-1]
		switch {
		case x == v:
			return true
		case x < v:
			i <<= 1
		default:
			i = (i << 1) | 1
		}
	}
	return false
}
