package content

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tailscale/hujson"

	ferrors "github.com/conneroisu/folio/internal/errors"
)

// Index is the ordered, read-only list of entries of one category.
type Index struct {
	category Category
	entries  []Entry
}

// Entries returns the entries in document order.
func (idx *Index) Entries() []Entry {
	out := make([]Entry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Find returns the entry with the given id, or a NotFound error.
func (idx *Index) Find(id string) (Entry, error) {
	for _, e := range idx.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, ferrors.NewNotFoundError(ferrors.ErrCodeEntryNotFound,
		fmt.Sprintf("no entry with id %q", id)).
		WithCategory(idx.category.Name()).
		WithContext("id", id)
}

// WithTag returns the entries carrying tag, in document order. The match is
// exact and case-sensitive; no match yields an empty slice.
func (idx *Index) WithTag(tag string) []Entry {
	out := make([]Entry, 0)
	for _, e := range idx.entries {
		if e.HasTag(tag) {
			out = append(out, e)
		}
	}
	return out
}

// ParseIndex decodes an index document for category. The document may use
// comments and trailing commas. Every entry is validated against the
// category schema; the first violation fails the whole index.
func ParseIndex(category Category, data []byte) (*Index, error) {
	indexPath := category.IndexPath()
	malformed := func(code, msg string, cause error) error {
		return ferrors.WrapMalformedIndex(cause, code, msg, indexPath).
			WithCategory(category.Name())
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, malformed(ferrors.ErrCodeIndexSyntax, "invalid index syntax", err)
	}

	var document map[string]json.RawMessage
	if err := json.Unmarshal(standardized, &document); err != nil {
		return nil, malformed(ferrors.ErrCodeIndexSyntax, "index must be a JSON object", err)
	}

	rawList, ok := document[category.Schema.Key]
	if !ok {
		return nil, malformed(ferrors.ErrCodeIndexSchema,
			"missing entry array", fmt.Errorf("no %q member", category.Schema.Key))
	}

	var rawEntries []map[string]json.RawMessage
	if err := json.Unmarshal(rawList, &rawEntries); err != nil {
		return nil, malformed(ferrors.ErrCodeIndexSchema,
			fmt.Sprintf("%q must be an array of objects", category.Schema.Key), err)
	}

	idx := &Index{category: category, entries: make([]Entry, 0, len(rawEntries))}
	seen := make(map[string]int, len(rawEntries))

	for i, raw := range rawEntries {
		entry, err := decodeEntry(category.Schema, raw)
		if err == nil {
			err = category.Schema.Validate(entry)
		}
		if err != nil {
			return nil, malformed(ferrors.ErrCodeIndexSchema,
				fmt.Sprintf("entry %d is invalid", i), err)
		}

		if first, dup := seen[entry.ID]; dup {
			return nil, malformed(ferrors.ErrCodeDuplicateID,
				fmt.Sprintf("entry %d reuses id %q", i, entry.ID),
				fmt.Errorf("first used by entry %d", first))
		}
		seen[entry.ID] = i

		idx.entries = append(idx.entries, entry)
	}

	return idx, nil
}

type rawTag struct {
	Name *string `json:"name"`
}

// decodeEntry extracts the fields schema knows about; unknown members are
// ignored.
func decodeEntry(schema Schema, raw map[string]json.RawMessage) (Entry, error) {
	entry := Entry{
		Tags:   make([]string, 0),
		Fields: make(map[string]string, len(schema.Fields)),
	}

	for name, dst := range map[string]*string{
		FieldID:    &entry.ID,
		FieldFile:  &entry.File,
		FieldTitle: &entry.Title,
	} {
		value, _, err := decodeString(raw, name)
		if err != nil {
			return Entry{}, err
		}
		*dst = value
	}

	for _, name := range schema.fieldNames() {
		value, present, err := decodeString(raw, name)
		if err != nil {
			return Entry{}, err
		}
		if !present || (value == "" && schema.Fields[name] == Optional) {
			continue
		}
		entry.Fields[name] = value
	}

	if schema.Tagged {
		if msg, ok := raw[FieldTags]; ok && !isNull(msg) {
			var tags []rawTag
			if err := json.Unmarshal(msg, &tags); err != nil {
				return Entry{}, fmt.Errorf("tags: must be an array of {\"name\": string} objects: %w", err)
			}
			for i, tag := range tags {
				if tag.Name == nil {
					return Entry{}, fmt.Errorf("tags: %d: missing name", i)
				}
				entry.Tags = append(entry.Tags, *tag.Name)
			}
		}
	}

	return entry, nil
}

// decodeString reads a string member. A missing or null member reports
// present == false.
func decodeString(raw map[string]json.RawMessage, name string) (value string, present bool, err error) {
	msg, ok := raw[name]
	if !ok || isNull(msg) {
		return "", false, nil
	}
	if err := json.Unmarshal(msg, &value); err != nil {
		return "", false, fmt.Errorf("%s: must be a string", name)
	}
	return value, true, nil
}

func isNull(msg json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(msg), []byte("null"))
}
