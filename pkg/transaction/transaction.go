package transaction

import (
	"github.com/shopspring/decimal"
)

// Record represents a single purchase entry
type Record struct {
	ID    int64
	Name  string
	Price decimal.Decimal
	Date  string // free-form, e.g. "01 January 2024"
}

// List holds records in insertion order
type List struct {
	Records []Record
}

// NewList wraps records in a List, keeping their order
func NewList(records []Record) *List {
	return &List{Records: records}
}

// Add appends a record to the list
func (l *List) Add(r Record) {
	l.Records = append(l.Records, r)
}

// Index returns the position of the record with the given id, or -1
func (l *List) Index(id int64) int {
	for i, r := range l.Records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Find returns a pointer to the record with the given id so callers can
// mutate it in place
func (l *List) Find(id int64) (*Record, bool) {
	i := l.Index(id)
	if i < 0 {
		return nil, false
	}
	return &l.Records[i], true
}

// Remove deletes the record matching id, keeping the relative order of the
// others. It reports whether a record was removed.
func (l *List) Remove(id int64) bool {
	i := l.Index(id)
	if i < 0 {
		return false
	}
	l.Records = append(l.Records[:i], l.Records[i+1:]...)
	return true
}

// MaxID returns the largest id in the list, or 0 when empty
func (l *List) MaxID() int64 {
	if len(l.Records) == 0 {
		return 0
	}
	highest := l.Records[0].ID
	for _, r := range l.Records[1:] {
		if r.ID > highest {
			highest = r.ID
		}
	}
	return highest
}

// Total returns the sum of all prices
func (l *List) Total() decimal.Decimal {
	return Sum(l.Records)
}

// Snapshot returns a copy of the records that callers may keep
func (l *List) Snapshot() []Record {
	out := make([]Record, len(l.Records))
	copy(out, l.Records)
	return out
}

// Sum adds up the prices of records
func Sum(records []Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Price)
	}
	return total
}
