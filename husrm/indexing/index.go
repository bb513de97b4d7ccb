package indexing

import (
	"github.com/ZanzyTHEbar/husrm/husrm/sequence"
)

// ItemIndex maps each item to the ids of the sequences containing it.
type ItemIndex struct {
	factory Factory
	sets    map[sequence.Item]SequenceIDSet
}

// BuildItemIndex scans db once. Sequence ids are visited in increasing order.
func BuildItemIndex(db *sequence.Database, factory Factory) *ItemIndex {
	idx := &ItemIndex{factory: factory, sets: make(map[sequence.Item]SequenceIDSet)}
	for sid, s := range db.Sequences {
		for _, is := range s.Itemsets {
			for _, item := range is.Items {
				set, ok := idx.sets[item]
				if !ok {
					set = factory.New()
					idx.sets[item] = set
				}
				set.Add(sid)
			}
		}
	}
	return idx
}

// Get returns the set for item, or an empty set when the item is unknown.
func (idx *ItemIndex) Get(item sequence.Item) SequenceIDSet {
	if set, ok := idx.sets[item]; ok {
		return set
	}
	return idx.factory.New()
}

// Support returns the number of sequences containing item.
func (idx *ItemIndex) Support(item sequence.Item) int {
	if set, ok := idx.sets[item]; ok {
		return set.Size()
	}
	return 0
}
