package sequence

import (
	"slices"
	"strconv"
	"strings"
)

// Item is an event identifier. Items inside an itemset are kept in strictly
// increasing order; every "greater than" pruning comparison relies on it.
type Item = int

// Itemset holds the items observed at one time step together with the
// utility of each occurrence. Items and Utilities have the same length.
type Itemset struct {
	Items     []Item
	Utilities []float64
}

// Len returns the number of items in the itemset.
func (is Itemset) Len() int { return len(is.Items) }

// IndexOf returns the position of item inside the itemset, or -1.
func (is Itemset) IndexOf(item Item) int {
	if idx, ok := slices.BinarySearch(is.Items, item); ok {
		return idx
	}
	return -1
}

// Utility returns the summed utility of every occurrence in the itemset.
func (is Itemset) Utility() float64 {
	var total float64
	for _, u := range is.Utilities {
		total += u
	}
	return total
}

func (is Itemset) clone() Itemset {
	return Itemset{
		Items:     slices.Clone(is.Items),
		Utilities: slices.Clone(is.Utilities),
	}
}

// sortPairs orders the itemset by item while keeping utilities aligned.
func (is *Itemset) sortPairs() {
	if slices.IsSorted(is.Items) {
		return
	}
	idx := make([]int, len(is.Items))
	for i := range idx {
		idx[i] = i
	}
	slices.SortFunc(idx, func(a, b int) int { return is.Items[a] - is.Items[b] })
	items := make([]Item, len(idx))
	utils := make([]float64, len(idx))
	for i, j := range idx {
		items[i] = is.Items[j]
		utils[i] = is.Utilities[j]
	}
	is.Items, is.Utilities = items, utils
}

// Sequence is one entity's ordered list of itemsets plus its exact utility.
type Sequence struct {
	// Line is the 1-based corpus line the sequence was parsed from (0 when built in code).
	Line         int
	Itemsets     []Itemset
	ExactUtility float64
}

// NewSequence builds a sequence from itemsets, sorting each itemset and
// computing the exact utility as the sum of all occurrence utilities.
func NewSequence(itemsets ...Itemset) *Sequence {
	s := &Sequence{Itemsets: make([]Itemset, 0, len(itemsets))}
	for _, is := range itemsets {
		is = is.clone()
		is.sortPairs()
		s.Itemsets = append(s.Itemsets, is)
		s.ExactUtility += is.Utility()
	}
	return s
}

// Len returns the number of itemsets.
func (s *Sequence) Len() int { return len(s.Itemsets) }

// Locate returns the itemset and in-itemset index of item.
func (s *Sequence) Locate(item Item) (itemset, index int, ok bool) {
	for i, is := range s.Itemsets {
		if j := is.IndexOf(item); j >= 0 {
			return i, j, true
		}
	}
	return -1, -1, false
}

// Contains reports whether item occurs anywhere in the sequence.
func (s *Sequence) Contains(item Item) bool {
	_, _, ok := s.Locate(item)
	return ok
}

// DistinctItems returns every item of the sequence in ascending order.
func (s *Sequence) DistinctItems() []Item {
	var items []Item
	for _, is := range s.Itemsets {
		items = append(items, is.Items...)
	}
	slices.Sort(items)
	return slices.Compact(items)
}

// Clone returns a deep copy of the sequence.
func (s *Sequence) Clone() *Sequence {
	c := &Sequence{Line: s.Line, ExactUtility: s.ExactUtility, Itemsets: make([]Itemset, len(s.Itemsets))}
	for i, is := range s.Itemsets {
		c.Itemsets[i] = is.clone()
	}
	return c
}

// String renders the sequence in the corpus token format.
func (s *Sequence) String() string {
	var b strings.Builder
	for _, is := range s.Itemsets {
		for j, item := range is.Items {
			b.WriteString(strconv.Itoa(item))
			b.WriteByte('[')
			b.WriteString(strconv.FormatFloat(is.Utilities[j], 'f', -1, 64))
			b.WriteString("] ")
		}
		b.WriteString("-1 ")
	}
	b.WriteString("-2 S:")
	b.WriteString(strconv.FormatFloat(s.ExactUtility, 'f', -1, 64))
	return b.String()
}

// Database is the ordered sequence collection. A sequence's id is its index.
type Database struct {
	Sequences []*Sequence
}

// NewDatabase wraps the given sequences.
func NewDatabase(seqs ...*Sequence) *Database {
	return &Database{Sequences: seqs}
}

// Len returns the number of sequences.
func (db *Database) Len() int { return len(db.Sequences) }

// Sequence returns the sequence with the given id.
func (db *Database) Sequence(id int) *Sequence { return db.Sequences[id] }

// Add appends a sequence; its id is the previous length.
func (db *Database) Add(s *Sequence) { db.Sequences = append(db.Sequences, s) }

// Clone returns a deep copy, so pruning one copy leaves the other intact.
func (db *Database) Clone() *Database {
	c := &Database{Sequences: make([]*Sequence, len(db.Sequences))}
	for i, s := range db.Sequences {
		c.Sequences[i] = s.Clone()
	}
	return c
}

// String renders one "id: sequence" line per sequence.
func (db *Database) String() string {
	var b strings.Builder
	for i, s := range db.Sequences {
		b.WriteString(strconv.Itoa(i))
		b.WriteString(": ")
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	return b.String()
}
