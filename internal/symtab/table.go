package symtab

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Table is the flat variant: scope path keys mapped to the records found
// directly inside that scope. Keys keep their creation order.
type Table struct {
	keys    []string
	entries map[string][]Record
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[string][]Record)}
}

// Layout implements Document.
func (t *Table) Layout() Layout { return LayoutFlat }

// Ensure creates the entry for p if it does not exist yet. Existing
// entries are left untouched. It reports whether a key was created.
func (t *Table) Ensure(p Path) bool {
	key := p.Key()
	if _, ok := t.entries[key]; ok {
		return false
	}
	t.entries[key] = []Record{}
	t.keys = append(t.keys, key)
	return true
}

// Append adds rec to the entry for p. The entry must already exist.
func (t *Table) Append(p Path, rec Record) error {
	key := p.Key()
	recs, ok := t.entries[key]
	if !ok {
		return fmt.Errorf("append %q to %q: %w", rec.Name, key, ErrNoScope)
	}
	t.entries[key] = append(recs, rec)
	return nil
}

// Lookup returns the records stored under key.
func (t *Table) Lookup(key string) ([]Record, bool) {
	recs, ok := t.entries[key]
	return recs, ok
}

// Keys returns the scope keys in creation order.
func (t *Table) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Len returns the number of scope keys.
func (t *Table) Len() int { return len(t.keys) }

// MarshalJSON implements json.Marshaler, keeping key order.
func (t *Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range t.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalJSON(key)
		if err != nil {
			return nil, err
		}
		v, err := marshalJSON(t.entries[key])
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

// MarshalYAML implements yaml.Marshaler, keeping key order.
func (t *Table) MarshalYAML() (any, error) {
	out := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range t.keys {
		var val yaml.Node
		if err := val.Encode(t.entries[key]); err != nil {
			return nil, fmt.Errorf("encode scope %q: %w", key, err)
		}
		out.Content = append(out.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&val,
		)
	}
	return out, nil
}
