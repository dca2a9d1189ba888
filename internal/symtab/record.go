package symtab

import (
	"bytes"
	"encoding/json"
)

// Record is a single symbol as seen by an Assembler.
type Record struct {
	Name        string `json:"name" yaml:"name"`
	Kind        Kind   `json:"kind" yaml:"kind"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Initializer string `json:"initializer,omitempty" yaml:"initializer,omitempty"`

	// Source position, kept out of the serialized document.
	File string `json:"-" yaml:"-"`
	Line int    `json:"-" yaml:"-"`
}

// setType stores a resolved type. A failed resolution leaves the field
// empty, which drops it from the serialized record.
func (r *Record) setType(typ string, err error) {
	if err != nil || typ == "" {
		r.Type = ""
		return
	}
	r.Type = typ
}

// setInitializer stores the initializer source text when present.
func (r *Record) setInitializer(text string, ok bool) {
	if !ok || text == "" {
		r.Initializer = ""
		return
	}
	r.Initializer = text
}

// marshalJSON encodes v without HTML escaping so initializer text such as
// `a < b && c` survives verbatim.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
