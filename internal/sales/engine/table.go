package engine

import (
	"slices"
	"strings"
)

// Entry is one aggregated (department, total) pair.
type Entry struct {
	Department string
	Total      int64
}

// Table accumulates per-department sales totals. It is exclusively owned by
// the goroutine processing one job, so it carries no locking. Memory is O(D)
// in the number of unique departments, independent of row count.
type Table struct {
	totals map[string]int64
}

func NewTable() *Table {
	return &Table{totals: make(map[string]int64)}
}

func (t *Table) Add(department string, sales int64) {
	t.totals[department] += sales
}

// Snapshot returns the entries sorted by department name ascending with a
// byte-wise comparison. The ordering is a contract of the output artifact,
// not an implementation detail.
func (t *Table) Snapshot() []Entry {
	entries := make([]Entry, 0, len(t.totals))
	for department, total := range t.totals {
		entries = append(entries, Entry{Department: department, Total: total})
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Department, b.Department)
	})

	return entries
}

func (t *Table) Len() int {
	return len(t.totals)
}

func (t *Table) Total() int64 {
	var sum int64
	for _, total := range t.totals {
		sum += total
	}

	return sum
}
