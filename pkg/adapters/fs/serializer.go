package fs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/jotter/pkg/core"
)

// Serializer defines how to read and write a specific file format.
type Serializer interface {
	// Parse reads a whole document from r.
	Parse(r io.Reader) (core.Document, error)
	// Serialize converts the document to file contents.
	Serialize(doc core.Document) ([]byte, error)
}

// DefaultSerializers returns the standard set of serializers, keyed by extension.
func DefaultSerializers(strict bool) map[string]Serializer {
	return map[string]Serializer{
		".md":   NewMarkdownSerializer(strict),
		".json": NewJSONSerializer(strict),
		".yaml": NewYAMLSerializer(strict),
		".yml":  NewYAMLSerializer(strict),
	}
}

// extensionPattern builds the doublestar pattern matching every registered extension,
// e.g. "*.{json,md,yaml,yml}".
func extensionPattern(serializers map[string]Serializer) string {
	exts := slices.Sorted(maps.Keys(serializers))
	for i, ext := range exts {
		exts[i] = strings.TrimPrefix(ext, ".")
	}
	return "*.{" + strings.Join(exts, ",") + "}"
}

// --- JSON Serializer ---

// JSONSerializer stores a document as one flat object: metadata keys plus "content".
type JSONSerializer struct {
	// Strict keeps numbers as json.Number to avoid precision loss.
	Strict bool
}

func NewJSONSerializer(strict bool) *JSONSerializer {
	return &JSONSerializer{Strict: strict}
}

func (s *JSONSerializer) Parse(r io.Reader) (core.Document, error) {
	var payload map[string]any
	decoder := json.NewDecoder(r)
	if s.Strict {
		decoder.UseNumber()
	}
	if err := decoder.Decode(&payload); err != nil {
		return core.Document{}, fmt.Errorf("invalid json: %w", err)
	}
	return fromPayload(payload)
}

func (s *JSONSerializer) Serialize(doc core.Document) ([]byte, error) {
	return json.MarshalIndent(toPayload(doc), "", "  ")
}

// --- YAML Serializer ---

// YAMLSerializer stores a document as one flat YAML mapping.
type YAMLSerializer struct {
	// Strict converts numbers to json.Number so values compare equal across formats.
	Strict bool
}

func NewYAMLSerializer(strict bool) *YAMLSerializer {
	return &YAMLSerializer{Strict: strict}
}

func (s *YAMLSerializer) Parse(r io.Reader) (core.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Document{}, err
	}

	var payload map[string]any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return core.Document{}, fmt.Errorf("invalid yaml: %w", err)
	}

	doc, err := fromPayload(payload)
	if err != nil {
		return core.Document{}, err
	}
	if s.Strict {
		doc.Metadata = normalize(doc.Metadata).(core.Metadata)
	}
	return doc, nil
}

func (s *YAMLSerializer) Serialize(doc core.Document) ([]byte, error) {
	return yaml.Marshal(toPayload(doc))
}

// --- Markdown Serializer ---

// MarkdownSerializer stores metadata as YAML frontmatter followed by the content.
type MarkdownSerializer struct {
	Strict bool
}

func NewMarkdownSerializer(strict bool) *MarkdownSerializer {
	return &MarkdownSerializer{Strict: strict}
}

func (s *MarkdownSerializer) Parse(r io.Reader) (core.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Document{}, err
	}

	doc := core.Document{Metadata: core.Metadata{}}

	if !bytes.HasPrefix(data, []byte("---\n")) && !bytes.HasPrefix(data, []byte("---\r\n")) {
		doc.Content = string(data)
		return doc, nil
	}

	rest := data[3:]
	parts := bytes.SplitN(rest, []byte("\n---"), 2)
	if len(parts) == 1 {
		return core.Document{}, errors.New("frontmatter started but no closing delimiter found")
	}

	if err := yaml.Unmarshal(parts[0], &doc.Metadata); err != nil {
		return core.Document{}, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	if doc.Metadata == nil {
		doc.Metadata = core.Metadata{}
	}

	body := string(parts[1])
	body = strings.TrimPrefix(body, "\r")
	body = strings.TrimPrefix(body, "\n")
	doc.Content = body

	if id, ok := doc.Metadata["id"].(string); ok {
		doc.ID = id
		delete(doc.Metadata, "id")
	}
	if s.Strict {
		doc.Metadata = normalize(doc.Metadata).(core.Metadata)
	}
	return doc, nil
}

func (s *MarkdownSerializer) Serialize(doc core.Document) ([]byte, error) {
	meta := doc.Metadata.Clone()
	if doc.ID != "" {
		meta["id"] = doc.ID
	}

	var buf bytes.Buffer
	if len(meta) > 0 {
		buf.WriteString("---\n")
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(map[string]any(meta)); err != nil {
			return nil, err
		}
		if err := encoder.Close(); err != nil {
			return nil, err
		}
		buf.WriteString("---\n")
	}
	buf.WriteString(doc.Content)
	return buf.Bytes(), nil
}

// --- Helpers ---

func toPayload(doc core.Document) map[string]any {
	payload := make(map[string]any, len(doc.Metadata)+2)
	for k, v := range doc.Metadata {
		payload[k] = v
	}
	payload["content"] = doc.Content
	if doc.ID != "" {
		payload["id"] = doc.ID
	}
	return payload
}

func fromPayload(payload map[string]any) (core.Document, error) {
	doc := core.Document{Metadata: core.Metadata{}}
	for k, v := range payload {
		switch k {
		case "content":
			s, ok := v.(string)
			if !ok && v != nil {
				return core.Document{}, errors.New("content must be a string")
			}
			doc.Content = s
		case "id":
			if s, ok := v.(string); ok {
				doc.ID = s
			}
		default:
			doc.Metadata[k] = v
		}
	}
	return doc, nil
}

// normalize converts numeric values to json.Number, recursively.
// This keeps YAML-backed documents consistent with strict JSON ones.
func normalize(val any) any {
	switch v := val.(type) {
	case core.Metadata:
		m := make(core.Metadata, len(v))
		for k, val := range v {
			m[k] = normalize(val)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[k] = normalize(val)
		}
		return m
	case []any:
		l := make([]any, len(v))
		for i, val := range v {
			l[i] = normalize(val)
		}
		return l
	case int:
		return json.Number(fmt.Sprintf("%d", v))
	case int64:
		return json.Number(fmt.Sprintf("%d", v))
	case uint64:
		return json.Number(fmt.Sprintf("%d", v))
	case float64:
		return json.Number(fmt.Sprintf("%v", v))
	default:
		return v
	}
}
