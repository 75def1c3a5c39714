package weeks

import (
	"sort"
)

const (
	lateMonthStart  = 11 // November and December open a rollover
	earlyMonthLimit = 3  // January through March close it
	rolloverPivot   = 6  // months up to June follow the rollover into the next year
)

// Order is a total chronological order over a set of week labels.
// It is built fresh for each set and never mutated afterwards.
type Order struct {
	labels []string
	index  map[string]int
}

type sortKey struct {
	label string
	dated bool
	year  int
	month int
	day   int
}

// NewOrder builds the order for the distinct labels given. Dated labels come
// first by (year, month, day); undated labels follow in lexicographic order.
// A set holding both Nov/Dec and Jan-Mar labels spans a year boundary, and
// every month through June is then placed in the following year.
func NewOrder(labels []string) *Order {
	seen := make(map[string]struct{}, len(labels))
	keys := make([]sortKey, 0, len(labels))
	hasLate, hasEarly := false, false

	for _, label := range labels {
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}

		key := sortKey{label: label}
		if month, day, ok := MonthDay(label); ok {
			key.dated, key.month, key.day = true, month, day
			if month >= lateMonthStart {
				hasLate = true
			}
			if month <= earlyMonthLimit {
				hasEarly = true
			}
		}
		keys = append(keys, key)
	}

	if hasLate && hasEarly {
		for i := range keys {
			if keys[i].dated && keys[i].month <= rolloverPivot {
				keys[i].year = 1
			}
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		return keys[i].less(keys[j])
	})

	o := &Order{
		labels: make([]string, len(keys)),
		index:  make(map[string]int, len(keys)),
	}
	for i, k := range keys {
		o.labels[i] = k.label
		o.index[k.label] = i
	}
	return o
}

func (a sortKey) less(b sortKey) bool {
	if a.dated != b.dated {
		return a.dated
	}
	if !a.dated {
		return a.label < b.label
	}
	if a.year != b.year {
		return a.year < b.year
	}
	if a.month != b.month {
		return a.month < b.month
	}
	if a.day != b.day {
		return a.day < b.day
	}
	return a.label < b.label
}

// CanonicalOrder returns the distinct labels in chronological order
func CanonicalOrder(labels []string) []string {
	return NewOrder(labels).Labels()
}

// Labels returns a copy of the ordered labels
func (o *Order) Labels() []string {
	out := make([]string, len(o.labels))
	copy(out, o.labels)
	return out
}

// Len returns the number of distinct labels
func (o *Order) Len() int {
	return len(o.labels)
}

// Index returns the position of label, or -1 when it is not in the set
func (o *Order) Index(label string) int {
	if i, ok := o.index[label]; ok {
		return i
	}
	return -1
}

// Less reports whether a sorts before b. Unknown labels sort last.
func (o *Order) Less(a, b string) bool {
	ia, ib := o.Index(a), o.Index(b)
	if ia < 0 {
		return false
	}
	if ib < 0 {
		return true
	}
	return ia < ib
}

// InRange reports whether label lies between from and to inclusive.
// All three labels must belong to the order.
func (o *Order) InRange(label, from, to string) bool {
	i, lo, hi := o.Index(label), o.Index(from), o.Index(to)
	if i < 0 || lo < 0 || hi < 0 {
		return false
	}
	return i >= lo && i <= hi
}

// Before returns up to n labels immediately preceding label, oldest first
func (o *Order) Before(label string, n int) []string {
	i := o.Index(label)
	if i <= 0 || n <= 0 {
		return nil
	}
	start := i - n
	if start < 0 {
		start = 0
	}
	out := make([]string, i-start)
	copy(out, o.labels[start:i])
	return out
}
