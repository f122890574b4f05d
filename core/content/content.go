package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Value is a single cell value: either a string or null.
type Value struct {
	s     string
	valid bool
}

// String returns a non-null Value holding s.
func String(s string) Value {
	return Value{s: s, valid: true}
}

// Null returns the null Value.
func Null() Value {
	return Value{}
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return !v.valid
}

// String returns the string held by v, or "" when v is null.
func (v Value) String() string {
	return v.s
}

// MarshalJSON encodes v as a JSON string or null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.valid {
		return []byte("null"), nil
	}
	return encodeString(v.s)
}

// UnmarshalJSON decodes a JSON string or null. Other JSON values are kept as
// their literal text, since rows written by external tools may carry numbers.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*v = Null()
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	}
	*v = String(string(trimmed))
	return nil
}

// Content is an insertion-ordered mapping of keys to Values.
// The zero value is an empty, usable Content.
type Content struct {
	keys []string
	vals map[string]Value
}

// New returns an empty Content.
func New() Content {
	return Content{vals: make(map[string]Value)}
}

// FromMap builds a Content from a plain map. Keys are added in sorted order
// because Go maps carry no order of their own.
func FromMap(m map[string]*string) Content {
	c := New()
	for _, k := range sortedKeys(m) {
		if p := m[k]; p != nil {
			c.Set(k, String(*p))
		} else {
			c.Set(k, Null())
		}
	}
	return c
}

// Set stores val under key. A key that already exists keeps its position.
func (c *Content) Set(key string, val Value) {
	if c.vals == nil {
		c.vals = make(map[string]Value)
	}
	if _, ok := c.vals[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.vals[key] = val
}

// Get returns the value stored under key and whether the key exists.
func (c Content) Get(key string) (Value, bool) {
	v, ok := c.vals[key]
	return v, ok
}

// Text returns the trimmed string stored under key, or "" when the key is
// missing or null.
func (c Content) Text(key string) string {
	v, ok := c.vals[key]
	if !ok || v.IsNull() {
		return ""
	}
	return strings.TrimSpace(v.s)
}

// Keys returns the keys in insertion order.
func (c Content) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of keys.
func (c Content) Len() int {
	return len(c.keys)
}

// Clone returns a deep copy of c.
func (c Content) Clone() Content {
	out := Content{
		keys: make([]string, len(c.keys)),
		vals: make(map[string]Value, len(c.vals)),
	}
	copy(out.keys, c.keys)
	for k, v := range c.vals {
		out.vals[k] = v
	}
	return out
}

// Equal reports whether c and other hold the same keys and values, ignoring order.
func (c Content) Equal(other Content) bool {
	if len(c.vals) != len(other.vals) {
		return false
	}
	for k, v := range c.vals {
		ov, ok := other.vals[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// MarshalJSON encodes c as a JSON object in insertion order.
func (c Content) MarshalJSON() ([]byte, error) {
	return c.encode(c.keys)
}

// UnmarshalJSON decodes a JSON object, keeping the document's key order.
func (c *Content) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = New()
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("content: expected JSON object, got %v", tok)
	}

	out := New()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("content: expected object key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("content: value for %q: %w", key, err)
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("content: value for %q: %w", key, err)
		}
		out.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*c = out
	return nil
}

// Parse decodes a JSON object into a Content.
func Parse(data []byte) (Content, error) {
	var c Content
	if err := c.UnmarshalJSON(data); err != nil {
		return Content{}, err
	}
	return c, nil
}

func (c Content) encode(keys []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := encodeString(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := c.vals[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeString writes s as a JSON string without HTML escaping.
func encodeString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
