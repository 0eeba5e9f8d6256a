package tally

import (
	"errors"
	"maps"
	"reflect"
	"testing"
)

func titles(vals ...string) []Record {
	out := make([]Record, len(vals))
	for i, v := range vals {
		out[i] = Record{"title": v}
	}
	return out
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want Key
	}{
		{" foo ", "Foo"},
		{"Foo", "Foo"},
		{"FOO", "Foo"},
		{"the office", "The Office"},
		{"\tgame of THRONES\n", "Game Of Thrones"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTally_Example(t *testing.T) {
	got, err := TallyRecords(titles("the office", "The Office", "Friends", " the office "), "title")
	if err != nil {
		t.Fatalf("TallyRecords: %v", err)
	}
	want := Table{"The Office": 3, "Friends": 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tally = %v, want %v", got, want)
	}
	ranked := Rank(got)
	wantRank := []Entry{{"The Office", 3}, {"Friends", 1}}
	if !reflect.DeepEqual(ranked, wantRank) {
		t.Errorf("rank = %v, want %v", ranked, wantRank)
	}
}

func TestTally_Empty(t *testing.T) {
	got, err := TallyRecords(nil, "title")
	if err != nil {
		t.Fatalf("TallyRecords(nil): %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("empty input: want empty non-nil table, got %#v", got)
	}
	if r := Rank(got); len(r) != 0 {
		t.Errorf("Rank(empty) = %v", r)
	}
}

func TestTally_TotalMatchesRecordCount(t *testing.T) {
	recs := titles("a", "b", "A", "c ", " B", "d", "a", "Friends", "friends")
	got, err := TallyRecords(recs, "title")
	if err != nil {
		t.Fatalf("TallyRecords: %v", err)
	}
	if got.Total() != len(recs) {
		t.Errorf("Total() = %d, want %d", got.Total(), len(recs))
	}
	for k := range got {
		if k != Normalize(string(k)) {
			t.Errorf("key %q is not normalized", k)
		}
	}
}

func TestTally_NormalizationInsensitive(t *testing.T) {
	got, err := TallyRecords(titles(" foo ", "Foo", "FOO"), "title")
	if err != nil {
		t.Fatalf("TallyRecords: %v", err)
	}
	if len(got) != 1 || got["Foo"] != 3 {
		t.Errorf("tally = %v, want map[Foo:3]", got)
	}
}

func TestTally_MissingField(t *testing.T) {
	recs := []Record{
		{"title": "Friends"},
		{"genres": "Comedy"},
		{"title": "The Office"},
	}
	got, err := TallyRecords(recs, "title")
	if got != nil {
		t.Errorf("want nil table on failure, got %v", got)
	}
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("want ErrMissingField, got %v", err)
	}
	var mfe *MissingFieldError
	if !errors.As(err, &mfe) {
		t.Fatalf("want *MissingFieldError, got %T", err)
	}
	if mfe.Field != "title" || mfe.Record != 2 {
		t.Errorf("unexpected error detail: %+v", mfe)
	}
}

func TestTally_StopsAtMissingField(t *testing.T) {
	src := NewSliceSource([]Record{{"title": "a"}, {}, {"title": "b"}, {"title": "c"}})
	if _, err := Tally(src, "title"); err == nil {
		t.Fatal("expected error")
	}
	// The source is left right after the bad record.
	rec, err := src.Next()
	if err != nil || rec["title"] != "b" {
		t.Errorf("next record after abort = %v, %v; want title b", rec, err)
	}
}

type failingSource struct{ err error }

func (f failingSource) Next() (Record, error) { return nil, f.err }

func TestTally_SourceErrorSurfaced(t *testing.T) {
	boom := errors.New("boom")
	_, err := Tally(failingSource{boom}, "title")
	if !errors.Is(err, boom) {
		t.Errorf("want source error to be wrapped, got %v", err)
	}
}

func TestRank_SortedAndDeterministic(t *testing.T) {
	table := Table{"Friends": 2, "Avatar": 2, "The Office": 5, "Lost": 1, "Dark": 2}
	want := []Entry{
		{"The Office", 5},
		{"Avatar", 2},
		{"Dark", 2},
		{"Friends", 2},
		{"Lost", 1},
	}
	for i := 0; i < 5; i++ {
		if got := Rank(table); !reflect.DeepEqual(got, want) {
			t.Fatalf("Rank = %v, want %v", got, want)
		}
	}
}

func TestRank_DoesNotMutate(t *testing.T) {
	table := Table{"B": 1, "A": 3, "C": 2}
	before := maps.Clone(table)
	got := Rank(table)
	if !reflect.DeepEqual(table, before) {
		t.Errorf("Rank mutated its input: %v -> %v", before, table)
	}
	if len(got) != len(table) {
		t.Errorf("len(Rank) = %d, want %d", len(got), len(table))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Count > got[i-1].Count {
			t.Errorf("Rank not non-increasing at %d: %v", i, got)
		}
	}
}

func TestTop(t *testing.T) {
	entries := []Entry{{"A", 3}, {"B", 2}, {"C", 1}}
	if got := Top(entries, 2); len(got) != 2 || got[1].Key != "B" {
		t.Errorf("Top(2) = %v", got)
	}
	if got := Top(entries, 0); len(got) != 3 {
		t.Errorf("Top(0) = %v", got)
	}
	if got := Top(entries, 10); len(got) != 3 {
		t.Errorf("Top(10) = %v", got)
	}
}

func TestCountMatching(t *testing.T) {
	table, err := TallyRecords(titles("The Office", "Office Space", "Friends"), "title")
	if err != nil {
		t.Fatalf("TallyRecords: %v", err)
	}
	if got := CountMatching(table, Contains("Office")); got != 2 {
		t.Errorf("Contains(Office) = %d, want 2", got)
	}
	if got := CountMatching(table, Contains("office")); got != 2 {
		t.Errorf("Contains(office) = %d, want 2", got)
	}
	if got := CountMatching(table, Contains("Seinfeld")); got != 0 {
		t.Errorf("Contains(Seinfeld) = %d, want 0", got)
	}
	if got := CountMatching(table, Equals(" the office")); got != 1 {
		t.Errorf("Equals(the office) = %d, want 1", got)
	}
	if got := CountMatching(Table{}, Contains("")); got != 0 {
		t.Errorf("empty table = %d, want 0", got)
	}
}
