package session

import (
	"encoding/json"
	"maps"
	"slices"
)

// Entries maps keys to JSON-encoded values.
// The zero value is an empty set of entries.
type Entries map[string]json.RawMessage

// Clone returns a deep copy.
func (e Entries) Clone() Entries {
	out := make(Entries, len(e))
	for k, v := range e {
		out[k] = slices.Clone(v)
	}
	return out
}

// Keys returns the keys in unspecified order.
func (e Entries) Keys() []string {
	return slices.Collect(maps.Keys(e))
}

// MarshalBinary encodes entries as a JSON object. Nil entries encode as "{}".
func (e Entries) MarshalBinary() ([]byte, error) {
	if e == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]json.RawMessage(e))
}

// UnmarshalBinary decodes a JSON object produced by MarshalBinary.
func (e *Entries) UnmarshalBinary(data []byte) error {
	m := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*e = m
	return nil
}
