package store

import (
	"encoding/json"
	"fmt"
	"time"

	"tracker/internal/models"
)

const metadataKey = "metadata"

var emptyCollection = json.RawMessage("[]")

// snapshot is one complete document: every collection plus metadata.
type snapshot struct {
	collections map[models.Collection]json.RawMessage
	metadata    models.Metadata
}

func emptySnapshot() snapshot {
	s := snapshot{collections: make(map[models.Collection]json.RawMessage, len(models.AllCollections))}
	for _, c := range models.AllCollections {
		s.collections[c] = emptyCollection
	}
	return s
}

// clone copies the collection map. Raw values are never mutated in place,
// so sharing them is safe.
func (s snapshot) clone() snapshot {
	out := snapshot{
		collections: make(map[models.Collection]json.RawMessage, len(s.collections)),
		metadata:    s.metadata,
	}
	for k, v := range s.collections {
		out.collections[k] = v
	}
	return out
}

func decodeDocument(content []byte) (snapshot, error) {
	const op = "decodeDocument"

	var top map[string]json.RawMessage
	if err := json.Unmarshal(content, &top); err != nil {
		return snapshot{}, fmt.Errorf("%s: document is not a JSON object: %w", op, err)
	}

	s := emptySnapshot()
	for key, value := range top {
		if key == metadataKey {
			if err := json.Unmarshal(value, &s.metadata); err != nil {
				return snapshot{}, fmt.Errorf("%s: invalid metadata: %w", op, err)
			}
			continue
		}
		if len(value) == 0 || string(value) == "null" {
			value = emptyCollection
		}
		if value[0] != '[' {
			return snapshot{}, fmt.Errorf("%s: collection %q is not a list", op, key)
		}
		s.collections[models.Collection(key)] = value
	}
	return s, nil
}

// encodeDocument renders the snapshot with metadata stamped for the next save.
// Keys are sorted and indented so that successive versions diff cleanly.
func encodeDocument(s snapshot, savedAt time.Time) ([]byte, models.Metadata, error) {
	meta := models.Metadata{
		LastUpdated: savedAt.UTC(),
		Version:     s.metadata.Version + 1,
	}

	top := make(map[string]any, len(s.collections)+1)
	for k, v := range s.collections {
		top[string(k)] = v
	}
	top[metadataKey] = meta

	content, err := json.MarshalIndent(top, "", "  ")
	if err != nil {
		return nil, models.Metadata{}, fmt.Errorf("encodeDocument: %w", err)
	}
	return content, meta, nil
}

func encodeCollection[T any](records []T) (json.RawMessage, error) {
	if len(records) == 0 {
		return emptyCollection, nil
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
