package mining

import (
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/husrm/husrm/sequence"
)

// Rule is a sequential rule "antecedent ==> consequent": every antecedent
// item occurs before every consequent item. Both sides are strictly
// increasing and disjoint.
type Rule struct {
	Antecedent []sequence.Item `json:"antecedent"`
	Consequent []sequence.Item `json:"consequent"`
	Support    int             `json:"support"`
	Confidence float64         `json:"confidence"`
	Utility    float64         `json:"utility"`
}

// String renders the rule in the tab-separated line format, without newline.
func (r Rule) String() string {
	var b strings.Builder
	writeItems(&b, r.Antecedent)
	b.WriteString("\t==> ")
	writeItems(&b, r.Consequent)
	b.WriteString("\t#SUP: ")
	b.WriteString(strconv.Itoa(r.Support))
	b.WriteString("\t#CONF: ")
	b.WriteString(FormatNumber(r.Confidence))
	b.WriteString("\t#UTIL: ")
	b.WriteString(FormatNumber(r.Utility))
	return b.String()
}

// Key identifies the rule by its two item sets.
func (r Rule) Key() string {
	var b strings.Builder
	writeItems(&b, r.Antecedent)
	b.WriteString(" ==> ")
	writeItems(&b, r.Consequent)
	return b.String()
}

// FormatNumber uses the shortest representation that round-trips.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeItems(b *strings.Builder, items []sequence.Item) {
	for i, item := range items {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(item))
	}
}

// RuleSink receives rules in emission order. An error aborts the search.
type RuleSink interface {
	Emit(Rule) error
}

// RuleSinkFunc adapts a function to RuleSink.
type RuleSinkFunc func(Rule) error

func (f RuleSinkFunc) Emit(r Rule) error { return f(r) }

// CollectingSink keeps every rule in memory.
type CollectingSink struct {
	Rules []Rule
}

func (s *CollectingSink) Emit(r Rule) error {
	s.Rules = append(s.Rules, r)
	return nil
}
