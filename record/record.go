// Package record holds the nested metadata objects that pipeline stages attach to a run
// and to each sample. A Record keeps its keys in insertion order so that the JSON dump
// written at every checkpoint is stable from one run to the next.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

var (
	// ErrValueType is returned for values a Record cannot hold.
	ErrValueType = errors.New("unsupported record value")
	// ErrReplaceRecord is returned when a nested record would be swapped for a leaf, or the other way round.
	ErrReplaceRecord = errors.New("nested record cannot be replaced")
)

// Record is an ordered string-keyed map. Values are string, int64, float64, bool,
// []string or *Record. The zero value is ready to use.
type Record struct {
	keys   []string
	values map[string]interface{}
}

// New returns an empty Record.
func New() *Record {
	return &Record{values: make(map[string]interface{})}
}

func normalize(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case string, bool, int64, float64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case float32:
		return float64(x), nil
	case []string:
		return append([]string{}, x...), nil
	case *Record:
		if x == nil {
			return nil, fmt.Errorf("%w: nil record", ErrValueType)
		}
		return x, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrValueType, v)
	}
}

// Set stores v under key. Existing leaves are overwritten in place; a nested record can
// only be set once.
func (r *Record) Set(key string, v interface{}) error {
	nv, err := normalize(v)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	if r.values == nil {
		r.values = make(map[string]interface{})
	}
	if old, ok := r.values[key]; ok {
		_, oldRecord := old.(*Record)
		_, newRecord := nv.(*Record)
		if oldRecord || newRecord {
			if old == nv {
				return nil
			}
			return fmt.Errorf("set %q: %w", key, ErrReplaceRecord)
		}
		r.values[key] = nv
		return nil
	}
	r.keys = append(r.keys, key)
	r.values[key] = nv
	return nil
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (interface{}, bool) {
	if r == nil || r.values == nil {
		return nil, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	return append([]string{}, r.keys...)
}

// Len returns the number of keys.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Child returns the nested record at the dotted path, creating missing levels.
func (r *Record) Child(path string) (*Record, error) {
	cur := r
	for _, key := range strings.Split(path, ".") {
		if key == "" {
			return nil, fmt.Errorf("child %q: empty path element", path)
		}
		v, ok := cur.Get(key)
		if !ok {
			next := New()
			if err := cur.Set(key, next); err != nil {
				return nil, err
			}
			cur = next
			continue
		}
		next, ok := v.(*Record)
		if !ok {
			return nil, fmt.Errorf("child %q: %q: %w", path, key, ErrReplaceRecord)
		}
		cur = next
	}
	return cur, nil
}

// SetPath sets a value at a dotted path such as "quality.raw.reads".
func (r *Record) SetPath(path string, v interface{}) error {
	parent := r
	key := path
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		var err error
		if parent, err = r.Child(path[:i]); err != nil {
			return err
		}
		key = path[i+1:]
	}
	if key == "" {
		return fmt.Errorf("set %q: empty key", path)
	}
	return parent.Set(key, v)
}

// GetPath looks up a dotted path.
func (r *Record) GetPath(path string) (interface{}, bool) {
	var cur interface{} = r
	for _, key := range strings.Split(path, ".") {
		rec, ok := cur.(*Record)
		if !ok {
			return nil, false
		}
		if cur, ok = rec.Get(key); !ok {
			return nil, false
		}
	}
	return cur, true
}

// Equal reports whether a and b hold the same keys in the same order with equal values.
func Equal(a, b *Record) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i, key := range a.Keys() {
		if b.keys[i] != key {
			return false
		}
		av, bv := a.values[key], b.values[key]
		ar, aok := av.(*Record)
		br, bok := bv.(*Record)
		switch {
		case aok && bok:
			if !Equal(ar, br) {
				return false
			}
		case aok || bok:
			return false
		case !reflect.DeepEqual(av, bv):
			return false
		}
	}
	return true
}

// MarshalJSON writes the record as a JSON object in insertion order. Floats always carry
// a fraction or exponent so that they decode as floats again.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Record) encode(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		switch v := r.values[key].(type) {
		case *Record:
			if err := v.encode(buf); err != nil {
				return err
			}
		case int64:
			buf.WriteString(strconv.FormatInt(v, 10))
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("encode %q: %w: %v", key, ErrValueType, v)
			}
			s := strconv.FormatFloat(v, 'f', -1, 64)
			if !strings.ContainsAny(s, ".eE") {
				s += ".0"
			}
			buf.WriteString(s)
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("encode %q: %w", key, err)
			}
			buf.Write(b)
		}
	}
	buf.WriteByte('}')
	return nil
}

// UnmarshalJSON replaces the content of r with the decoded object, keeping key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}
	*r = Record{values: make(map[string]interface{})}
	return r.decodeObject(dec)
}

func (r *Record) decodeObject(dec *json.Decoder) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record: expected key, got %v", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return fmt.Errorf("record %q: %w", key, err)
		}
		if err := r.Set(key, v); err != nil {
			return err
		}
	}
	// closing brace
	_, err := dec.Token()
	return err
}

func decodeValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			child := New()
			if err := child.decodeObject(dec); err != nil {
				return nil, err
			}
			return child, nil
		case '[':
			list := []string{}
			for dec.More() {
				item, err := dec.Token()
				if err != nil {
					return nil, err
				}
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("%w: array item %v", ErrValueType, item)
				}
				list = append(list, s)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		}
	case json.Number:
		if strings.ContainsAny(t.String(), ".eE") {
			return t.Float64()
		}
		return t.Int64()
	case string, bool:
		return t, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrValueType, tok)
}
