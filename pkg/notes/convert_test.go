package notes

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/jotter/pkg/core"
)

func TestFromDocument_NumericShapes(t *testing.T) {
	shapes := []any{
		int(1700000000123),
		int64(1700000000123),
		uint64(1700000000123),
		float64(1700000000123),
		json.Number("1700000000123"),
		"1700000000123",
	}

	for _, v := range shapes {
		doc := core.Document{Content: "c", Metadata: core.Metadata{fieldTitle: "t", fieldLastUpdated: v}}
		n, err := FromDocument("id", doc)
		if err != nil {
			t.Fatalf("%T: unexpected error: %v", v, err)
		}
		if n.LastUpdated != 1700000000123 {
			t.Errorf("%T: expected 1700000000123, got %d", v, n.LastUpdated)
		}
	}
}

func TestFromDocument_KeyWinsOverBodyID(t *testing.T) {
	doc := ToDocument(core.Note{ID: "inner", Title: "t", Content: "c"})
	n, err := FromDocument("outer", doc)
	if err != nil {
		t.Fatal(err)
	}
	if n.ID != "outer" {
		t.Errorf("expected id from key, got %q", n.ID)
	}
}

func TestFromDocument_RejectsBadTimestamp(t *testing.T) {
	doc := core.Document{Metadata: core.Metadata{fieldLastUpdated: []string{"x"}}}
	if _, err := FromDocument("id", doc); err == nil {
		t.Error("expected an error for a non-numeric lastUpdated")
	}
}
