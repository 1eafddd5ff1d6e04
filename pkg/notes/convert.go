package notes

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/aretw0/jotter/pkg/core"
)

const (
	fieldTitle       = "title"
	fieldLastUpdated = "lastUpdated"
)

// ToDocument maps a note onto the document persisted by the store.
func ToDocument(n core.Note) core.Document {
	return core.Document{
		ID:      n.ID,
		Content: n.Content,
		Metadata: core.Metadata{
			fieldTitle:       n.Title,
			fieldLastUpdated: n.LastUpdated,
		},
	}
}

// FromDocument rebuilds a note from a stored document.
// The document key wins over any id carried in the body.
func FromDocument(id string, doc core.Document) (core.Note, error) {
	n := core.Note{
		ID:      id,
		Content: doc.Content,
	}

	if raw, ok := doc.Metadata[fieldTitle]; ok && raw != nil {
		title, ok := raw.(string)
		if !ok {
			return core.Note{}, fmt.Errorf("note %s: title is %T, not a string", id, raw)
		}
		n.Title = title
	}

	if raw, ok := doc.Metadata[fieldLastUpdated]; ok && raw != nil {
		ts, err := toMillis(raw)
		if err != nil {
			return core.Note{}, fmt.Errorf("note %s: lastUpdated: %w", id, err)
		}
		n.LastUpdated = ts
	}

	return n, nil
}

// toMillis normalizes the numeric shapes produced by the different serializers.
func toMillis(v any) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case int32:
		return int64(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", t)
		}
		return int64(t), nil
	case float64:
		return int64(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return 0, err
		}
		return int64(f), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
