package core_test

import (
	"testing"
	"time"

	"github.com/aretw0/jotter/pkg/core"
)

func TestNotes_SortedMostRecentFirst(t *testing.T) {
	notes := core.Notes{
		"a": {ID: "a", LastUpdated: 100},
		"b": {ID: "b", LastUpdated: 300},
		"c": {ID: "c", LastUpdated: 200},
	}

	sorted := notes.Sorted()
	if len(sorted) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(sorted))
	}

	want := []int64{300, 200, 100}
	for i, n := range sorted {
		if n.LastUpdated != want[i] {
			t.Errorf("position %d: expected lastUpdated %d, got %d", i, want[i], n.LastUpdated)
		}
	}
}

func TestNotes_SortedEmpty(t *testing.T) {
	if got := core.Notes(nil).Sorted(); len(got) != 0 {
		t.Errorf("expected no notes, got %v", got)
	}
}

func TestNewNote(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	a := core.NewNote(now)
	b := core.NewNote(now)

	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct non-empty ids, got %q and %q", a.ID, b.ID)
	}
	if a.LastUpdated != now.UnixMilli() {
		t.Errorf("expected lastUpdated %d, got %d", now.UnixMilli(), a.LastUpdated)
	}
	if a.Title != "" || a.Content != "" {
		t.Errorf("expected blank fields, got %+v", a)
	}
}

func TestNote_Complete(t *testing.T) {
	cases := []struct {
		name string
		note core.Note
		want bool
	}{
		{"both set", core.Note{Title: "t", Content: "c"}, true},
		{"empty title", core.Note{Content: "c"}, false},
		{"whitespace content", core.Note{Title: "t", Content: " \n\t"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.note.Complete(); got != tc.want {
				t.Errorf("Complete() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNote_TouchKeepsID(t *testing.T) {
	n := core.Note{ID: "fixed", LastUpdated: 1}
	touched := n.Touch(time.UnixMilli(42))

	if touched.ID != "fixed" || touched.LastUpdated != 42 {
		t.Errorf("unexpected touched note: %+v", touched)
	}
	if n.LastUpdated != 1 {
		t.Errorf("Touch must not mutate the receiver")
	}
}
