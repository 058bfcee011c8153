// Package serialize converts entity graphs into plain, display-ready transfer
// structures. Recursion is bounded by a depth budget so back-references and
// deep graphs cannot run away.
package serialize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultDepth is large enough that normal entity graphs are never truncated.
const DefaultDepth = 99

// Field is a single named value exposed by an entity descriptor.
type Field struct {
	Name  string
	Value any
}

// Entity is implemented by every domain object that can be serialized. Fields
// returns the public fields in declaration order.
type Entity interface {
	Fields() []Field
}

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value any
}

// Object is an ordered mapping from field name to serialized value.
type Object []Member

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Keys lists the field names in order.
func (o Object) Keys() []string {
	keys := make([]string, 0, len(o))
	for _, m := range o {
		keys = append(keys, m.Key)
	}
	return keys
}

// MarshalJSON writes the object with its fields in descriptor order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(m.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", m.Key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode serializes every descriptor field of entity with the given depth.
func Encode(entity Entity, depth int) Object {
	fields := entity.Fields()
	out := make(Object, 0, len(fields))
	for _, f := range fields {
		out = append(out, Member{Key: f.Name, Value: Value(f.Value, depth)})
	}
	return out
}

// Value serializes a single value. Entities recurse while depth > 0,
// collections recurse while depth > 1 and otherwise collapse to display
// strings. Scalars are coerced to float64 first: numbers, booleans (1 or 0)
// and text that parses as a finite number. Anything else becomes its display
// string.
func Value(v any, depth int) any {
	switch x := v.(type) {
	case nil:
		return nil
	case Entity:
		if depth > 0 {
			return Encode(x, depth-1)
		}
		return Display(x)
	case []any:
		out := make([]any, 0, len(x))
		for _, item := range x {
			if depth > 1 {
				out = append(out, Value(item, depth-1))
				continue
			}
			out = append(out, Display(item))
		}
		return out
	case *string:
		if x == nil {
			return nil
		}
		return Value(*x, depth)
	case *float64:
		if x == nil {
			return nil
		}
		return *x
	case *uint:
		if x == nil {
			return nil
		}
		return float64(*x)
	case *bool:
		if x == nil {
			return nil
		}
		return Value(*x, depth)
	case bool:
		if x {
			return 1.0
		}
		return 0.0
	}
	if f, ok := numeric(v); ok {
		return f
	}
	return Display(v)
}

// Display renders a value as its human-readable string.
func Display(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		return parseFinite(string(x))
	case string:
		return parseFinite(x)
	}
	return 0, false
}

// parseFinite keeps NaN and infinities out so the result always marshals.
func parseFinite(text string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// List adapts a slice of entity structs into a serializable collection.
func List[T any, P interface {
	*T
	Entity
}](items []T) []any {
	out := make([]any, 0, len(items))
	for i := range items {
		out = append(out, P(&items[i]))
	}
	return out
}

// Ref adapts an optional entity reference, keeping a nil pointer absent.
func Ref[T any, P interface {
	*T
	Entity
}](ref P) any {
	if ref == nil {
		return nil
	}
	return ref
}
