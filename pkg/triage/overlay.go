package triage

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// overlay is the user-editable mapping layer. Its JSON form is an object keyed
// by condition; key order in the document is insertion order, and decoding
// keeps it, so overlay-only rules classify in the order they were added.
type overlay struct {
	keys    []ConditionKey
	entries map[ConditionKey]MappingEntry
}

func newOverlay() *overlay {
	return &overlay{entries: make(map[ConditionKey]MappingEntry)}
}

func (o *overlay) get(key ConditionKey) (MappingEntry, bool) {
	entry, ok := o.entries[key]
	return entry, ok
}

func (o *overlay) set(key ConditionKey, entry MappingEntry) {
	if _, exists := o.entries[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.entries[key] = entry.clone()
}

func (o *overlay) remove(key ConditionKey) bool {
	if _, exists := o.entries[key]; !exists {
		return false
	}
	delete(o.entries, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

func (o *overlay) clone() *overlay {
	c := &overlay{
		keys:    append([]ConditionKey(nil), o.keys...),
		entries: make(map[ConditionKey]MappingEntry, len(o.entries)),
	}
	for k, v := range o.entries {
		c.entries[k] = v.clone()
	}
	return c
}

func (o *overlay) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(string(key))
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(o.entries[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an overlay document. Keys are normalized; a repeated
// key keeps its first position and its last value. Entries failing Validate
// are dropped and reported through skipped.
func (o *overlay) UnmarshalJSON(data []byte) error {
	_, err := o.decode(data)
	return err
}

func (o *overlay) decode(data []byte) (skipped map[ConditionKey]error, err error) {
	o.keys = nil
	o.entries = make(map[ConditionKey]MappingEntry)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("overlay must be a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		rawKey, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("overlay key must be a string")
		}
		var entry MappingEntry
		if err := dec.Decode(&entry); err != nil {
			return nil, fmt.Errorf("overlay entry %q: %w", rawKey, err)
		}
		key := NormalizeKey(rawKey)
		if key == "" {
			continue
		}
		if err := entry.Validate(); err != nil {
			if skipped == nil {
				skipped = make(map[ConditionKey]error)
			}
			skipped[key] = err
			continue
		}
		o.set(key, entry)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return skipped, nil
}
