package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// ValueKind tags which variant a SectionValue holds.
type ValueKind string

// Section value variants.
const (
	ValueText  ValueKind = "text"
	ValueList  ValueKind = "list"
	ValueKeyed ValueKind = "keyed"
)

// KeyedEntry is one named subsection of a keyed section value.
type KeyedEntry struct {
	Key   string
	Value string
}

// SectionValue is the content of one document section.
// Exactly one of Text, Items or Entries is meaningful, selected by Kind.
type SectionValue struct {
	Kind    ValueKind
	Text    string
	Items   []string
	Entries []KeyedEntry
}

// TextValue returns a freeform section value.
func TextValue(s string) SectionValue {
	return SectionValue{Kind: ValueText, Text: s}
}

// ListValue returns a list section value.
func ListValue(items []string) SectionValue {
	if items == nil {
		items = []string{}
	}
	return SectionValue{Kind: ValueList, Items: items}
}

// KeyedValue returns a subsectioned section value.
func KeyedValue(entries []KeyedEntry) SectionValue {
	if entries == nil {
		entries = []KeyedEntry{}
	}
	return SectionValue{Kind: ValueKeyed, Entries: entries}
}

// IsEmpty reports whether the value carries no content.
func (v SectionValue) IsEmpty() bool {
	switch v.Kind {
	case ValueList:
		return len(v.Items) == 0
	case ValueKeyed:
		for _, e := range v.Entries {
			if strings.TrimSpace(e.Value) != "" {
				return false
			}
		}
		return true
	default:
		return strings.TrimSpace(v.Text) == ""
	}
}

// MarshalJSON encodes text as a string, lists as an array and keyed
// values as an object with subsection order preserved.
func (v SectionValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueList:
		if v.Items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Items)
	case ValueKeyed:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, e := range v.Entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(e.Key)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(e.Value)
			if err != nil {
				return nil, err
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return json.Marshal(v.Text)
	}
}

// UnmarshalJSON decodes the shape written by MarshalJSON.
func (v *SectionValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: empty section value", ErrInvalidInput)
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = TextValue(s)
	case '[':
		var items []string
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*v = ListValue(items)
	case '{':
		entries, err := decodeOrderedStrings(trimmed)
		if err != nil {
			return err
		}
		*v = KeyedValue(entries)
	case 'n':
		*v = TextValue("")
	default:
		return fmt.Errorf("%w: unsupported section value %s", ErrInvalidInput, trimmed)
	}
	return nil
}

// decodeOrderedStrings reads a flat JSON object of strings keeping key order.
// Non-string member values are kept as their raw JSON text.
func decodeOrderedStrings(data []byte) ([]KeyedEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	entries := []KeyedEntry{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key %v", ErrInvalidInput, tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			s = string(raw)
		}
		entries = append(entries, KeyedEntry{Key: key, Value: s})
	}
	return entries, nil
}

// Section is one keyed entry of document content.
type Section struct {
	Key   string
	Value SectionValue
}

// Content is the ordered section content of a document.
type Content []Section

// Get returns the value for key.
func (c Content) Get(key string) (SectionValue, bool) {
	for _, s := range c {
		if s.Key == key {
			return s.Value, true
		}
	}
	return SectionValue{}, false
}

// Set replaces the value for key in place, or appends it.
func (c *Content) Set(key string, v SectionValue) {
	for i := range *c {
		if (*c)[i].Key == key {
			(*c)[i].Value = v
			return
		}
	}
	*c = append(*c, Section{Key: key, Value: v})
}

// Delete removes key if present.
func (c *Content) Delete(key string) {
	for i := range *c {
		if (*c)[i].Key == key {
			*c = append((*c)[:i], (*c)[i+1:]...)
			return
		}
	}
}

// Keys returns the section keys in order.
func (c Content) Keys() []string {
	keys := make([]string, len(c))
	for i, s := range c {
		keys[i] = s.Key
	}
	return keys
}

// MarshalJSON encodes content as a JSON object in section order.
func (c Content) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(s.Key)
		if err != nil {
			return nil, err
		}
		val, err := s.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping section order.
func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*c = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return err
	}
	out := Content{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: content key %v", ErrInvalidInput, tok)
		}
		var v SectionValue
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("section %s: %w", key, err)
		}
		out = append(out, Section{Key: key, Value: v})
	}
	*c = out
	return nil
}

// Clone returns a deep copy of the content.
func (c Content) Clone() Content {
	if c == nil {
		return nil
	}
	out := make(Content, len(c))
	for i, s := range c {
		v := s.Value
		v.Items = slices.Clone(v.Items)
		v.Entries = slices.Clone(v.Entries)
		out[i] = Section{Key: s.Key, Value: v}
	}
	return out
}
