package domain

import (
	"strings"
	"time"
)

// Fields holds the caller-defined payload carried by an item.
type Fields map[string]any

// Item is one unit of work on the board. It belongs to exactly one column.
type Item struct {
	ID       string
	ColumnID string
	Fields   Fields
}

// NewItem constructs a new value for this package.
func NewItem(id, columnID string, fields Fields) (Item, error) {
	id = strings.TrimSpace(id)
	columnID = strings.TrimSpace(columnID)
	if id == "" {
		return Item{}, ErrInvalidID
	}
	if columnID == "" {
		return Item{}, ErrInvalidColumnID
	}
	return Item{
		ID:       id,
		ColumnID: columnID,
		Fields:   fields.Clone(),
	}, nil
}

// Clone returns a copy whose payload does not alias the receiver.
func (i Item) Clone() Item {
	i.Fields = i.Fields.Clone()
	return i
}

// Title returns the display name of the item, falling back to its id.
func (i Item) Title() string {
	if name := i.Fields.String("name"); name != "" {
		return name
	}
	return i.ID
}

// CloneItems deep-copies a collection of items.
func CloneItems(in []Item) []Item {
	if in == nil {
		return nil
	}
	out := make([]Item, len(in))
	for idx, item := range in {
		out[idx] = item.Clone()
	}
	return out
}

// Clone deep-copies nested maps and slices. Scalar values are shared.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for key, value := range f {
		out[key] = cloneValue(value)
	}
	return out
}

// String returns the string stored under key, or "".
func (f Fields) String(key string) string {
	v, ok := f[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// Time returns the timestamp stored under key. RFC3339 strings are accepted so
// payloads decoded from JSON behave like payloads built in-process.
func (f Fields) Time(key string) (time.Time, bool) {
	switch v := f[key].(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(v))
		if err != nil {
			return time.Time{}, false
		}
		return ts, true
	default:
		return time.Time{}, false
	}
}

// Map returns the nested object stored under key.
func (f Fields) Map(key string) Fields {
	switch v := f[key].(type) {
	case Fields:
		return v
	case map[string]any:
		return Fields(v)
	default:
		return nil
	}
}

// cloneValue copies one payload value.
func cloneValue(v any) any {
	switch typed := v.(type) {
	case Fields:
		return typed.Clone()
	case map[string]any:
		return map[string]any(Fields(typed).Clone())
	case []any:
		out := make([]any, len(typed))
		for idx, elem := range typed {
			out[idx] = cloneValue(elem)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return v
	}
}
