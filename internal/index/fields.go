package index

import (
	"bytes"
	"encoding/json"
	"strings"
)

var jsonNull = []byte("null")

// jsonString records whether a field held a JSON string.
type jsonString struct {
	ok bool
	v  string
}

func (s *jsonString) UnmarshalJSON(b []byte) error {
	s.ok = !bytes.Equal(b, jsonNull) && json.Unmarshal(b, &s.v) == nil
	return nil
}

// nonEmpty returns the string when it is valid and not blank.
func (s jsonString) nonEmpty() (string, bool) {
	if !s.ok || strings.TrimSpace(s.v) == "" {
		return "", false
	}
	return s.v, true
}

// jsonNumber records whether a field held a JSON number.
type jsonNumber struct {
	ok bool
	v  float64
}

func (n *jsonNumber) UnmarshalJSON(b []byte) error {
	n.ok = !bytes.Equal(b, jsonNull) && json.Unmarshal(b, &n.v) == nil
	return nil
}

// jsonBool records whether a field held a JSON boolean.
type jsonBool struct {
	ok bool
	v  bool
}

func (t *jsonBool) UnmarshalJSON(b []byte) error {
	t.ok = !bytes.Equal(b, jsonNull) && json.Unmarshal(b, &t.v) == nil
	return nil
}

// jsonStringList records whether a field held an array and whether every
// element was a non-blank string. Elements that are strings are kept in
// order even when others are not.
type jsonStringList struct {
	isArray bool
	valid   bool
	v       []string
}

func (l *jsonStringList) UnmarshalJSON(b []byte) error {
	var elems []json.RawMessage
	if bytes.Equal(b, jsonNull) || json.Unmarshal(b, &elems) != nil {
		return nil
	}
	l.isArray = true
	l.valid = true
	for _, e := range elems {
		var s jsonString
		_ = s.UnmarshalJSON(e)
		if v, ok := s.nonEmpty(); ok {
			l.v = append(l.v, v)
			continue
		}
		l.valid = false
	}
	return nil
}

// hasDuplicates reports whether two entries are equal after trimming.
func (l jsonStringList) hasDuplicates() bool {
	seen := make(map[string]bool, len(l.v))
	for _, s := range l.v {
		key := strings.TrimSpace(s)
		if seen[key] {
			return true
		}
		seen[key] = true
	}
	return false
}

// object holds the members of a JSON object by their exact key. Keys are
// matched case-sensitively, unlike encoding/json struct tags.
type object map[string]json.RawMessage

// decodeObject returns the members of b when b is a JSON object. Any other
// value yields an empty object, so every field reads as missing.
func decodeObject(b []byte) object {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var o object
	if err := json.Unmarshal(trimmed, &o); err != nil {
		return nil
	}
	return o
}

// read feeds the member named key to dst. A missing member leaves dst at
// its zero value.
func (o object) read(key string, dst json.Unmarshaler) {
	if raw, ok := o[key]; ok {
		_ = dst.UnmarshalJSON(raw)
	}
}

// rawUnit is the typed view of one element of "chapters".
type rawUnit struct {
	ID    jsonString
	Title jsonString
	Items json.RawMessage
}

func readUnit(b []byte) rawUnit {
	o := decodeObject(b)
	var u rawUnit
	o.read("id", &u.ID)
	o.read("title", &u.Title)
	u.Items = o["items"]
	return u
}

// rawItem is the typed view of one element of a unit's "items".
type rawItem struct {
	ID               jsonString
	Title            jsonString
	Path             jsonString
	EstimatedMinutes jsonNumber
	PracticeMinutes  jsonNumber
	HasAssignment    jsonBool
	Difficulty       jsonString
	Type             jsonString
	Tags             jsonStringList
	Prerequisites    jsonStringList
}

func readItem(b []byte) rawItem {
	o := decodeObject(b)
	var it rawItem
	o.read("id", &it.ID)
	o.read("title", &it.Title)
	o.read("path", &it.Path)
	o.read("estimatedMinutes", &it.EstimatedMinutes)
	o.read("practiceMinutes", &it.PracticeMinutes)
	o.read("hasAssignment", &it.HasAssignment)
	o.read("difficulty", &it.Difficulty)
	o.read("type", &it.Type)
	o.read("tags", &it.Tags)
	o.read("prerequisites", &it.Prerequisites)
	return it
}
