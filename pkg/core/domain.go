package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
)

// Metadata represents the flexible key-value pairs associated with a document.
type Metadata map[string]any

// Clone returns a shallow copy of the metadata.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return Metadata{}
	}
	return maps.Clone(m)
}

// Document is the unit a DocumentStore persists.
// It is agnostic to storage format (Markdown, JSON, YAML, wire).
type Document struct {
	ID       string
	Content  string
	Metadata Metadata
}

// Clone returns a copy of d that shares no map with the original.
func (d Document) Clone() Document {
	d.Metadata = d.Metadata.Clone()
	return d
}

// MarshalJSON encodes the document as a flat object: metadata keys, "content" and "id".
func (d Document) MarshalJSON() ([]byte, error) {
	payload := make(map[string]any, len(d.Metadata)+2)
	for k, v := range d.Metadata {
		payload[k] = v
	}
	payload["content"] = d.Content
	if d.ID != "" {
		payload["id"] = d.ID
	}
	return json.Marshal(payload)
}

// UnmarshalJSON decodes a flat object. Numbers are kept as json.Number.
func (d *Document) UnmarshalJSON(data []byte) error {
	var payload map[string]any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}

	doc := Document{Metadata: make(Metadata, len(payload))}
	for k, v := range payload {
		switch k {
		case "content":
			s, ok := v.(string)
			if !ok && v != nil {
				return fmt.Errorf("invalid document: content must be a string")
			}
			doc.Content = s
		case "id":
			s, ok := v.(string)
			if !ok && v != nil {
				return fmt.Errorf("invalid document: id must be a string")
			}
			doc.ID = s
		default:
			doc.Metadata[k] = v
		}
	}

	*d = doc
	return nil
}

// Snapshot is the full state of a collection, keyed by document ID.
type Snapshot map[string]Document

// Clone deep-copies the snapshot so receivers may keep or mutate it.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for id, doc := range s {
		out[id] = doc.Clone()
	}
	return out
}
