// Package tally counts records by a normalized field value and ranks the
// resulting buckets by frequency.
package tally

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrMissingField is matched by every *MissingFieldError.
var ErrMissingField = errors.New("missing field")

// MissingFieldError reports a record that lacks the field being tallied.
type MissingFieldError struct {
	Field  string
	Record int // 1-based position in the input
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("record %d: missing field %q", e.Record, e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// Record is one row of input keyed by field name.
type Record map[string]string

// Key is a trimmed, title-cased field value used as a tally bucket.
type Key string

// Table maps each distinct Key to the number of records that produced it.
type Table map[Key]int

// Entry is one ranked (key, count) pair.
type Entry struct {
	Key   Key `json:"title"`
	Count int `json:"count"`
}

// Source yields records one at a time and returns io.EOF when exhausted.
type Source interface {
	Next() (Record, error)
}

// Normalize trims surrounding whitespace and title-cases the rest.
func Normalize(s string) Key {
	return Key(cases.Title(language.Und).String(strings.TrimSpace(s)))
}

// Tally reads src to the end and counts records by the normalized value of
// field. On any error the partial table is discarded and nil is returned.
func Tally(src Source, field string) (Table, error) {
	t := make(Table)
	for n := 1; ; n++ {
		rec, err := src.Next()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read record %d: %w", n, err)
		}
		v, ok := rec[field]
		if !ok {
			return nil, &MissingFieldError{Field: field, Record: n}
		}
		t[Normalize(v)]++
	}
}

// TallyRecords is Tally over an in-memory slice.
func TallyRecords(records []Record, field string) (Table, error) {
	return Tally(NewSliceSource(records), field)
}

// Total returns the sum of all counts, which equals the number of records tallied.
func (t Table) Total() int {
	total := 0
	for _, c := range t {
		total += c
	}
	return total
}

// Rank orders the table by count descending. Equal counts are ordered by key
// ascending so the output is reproducible. t is not modified.
func Rank(t Table) []Entry {
	entries := make([]Entry, 0, len(t))
	for k, c := range t {
		entries = append(entries, Entry{Key: k, Count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// Top returns the first n entries, or all of them when n <= 0.
func Top(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}

// CountMatching sums the counts of every key accepted by pred.
func CountMatching(t Table, pred func(Key) bool) int {
	n := 0
	for k, c := range t {
		if pred(k) {
			n += c
		}
	}
	return n
}

// Contains matches keys containing sub, ignoring case.
func Contains(sub string) func(Key) bool {
	needle := strings.ToLower(sub)
	return func(k Key) bool {
		return strings.Contains(strings.ToLower(string(k)), needle)
	}
}

// Equals matches the single key that s normalizes to.
func Equals(s string) func(Key) bool {
	want := Normalize(s)
	return func(k Key) bool { return k == want }
}
