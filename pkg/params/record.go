package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

var (
	// ErrMissingKey is returned by the typed accessors for an absent key.
	ErrMissingKey = errors.New("missing parameter")
	// ErrWrongType is returned when a value cannot be read as the requested type.
	ErrWrongType = errors.New("parameter has wrong type")
)

// Record is a read-only set of named parameter values. Values are copied in
// and out, so a Record never changes after it has been loaded.
type Record struct {
	name   string
	values map[string]any
}

// NewRecord returns a Record holding a deep copy of values.
func NewRecord(name string, values map[string]any) *Record {
	return &Record{name: name, values: cloneMap(values)}
}

// Name returns the record name, e.g. "hp" or "design".
func (r *Record) Name() string { return r.name }

// Len returns the number of parameters.
func (r *Record) Len() int { return len(r.values) }

// Keys returns the parameter names in sorted order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Get returns a copy of the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

// Map returns a copy of all parameters.
func (r *Record) Map() map[string]any {
	return cloneMap(r.values)
}

// String returns the string stored under key.
func (r *Record) String(key string) (string, error) {
	v, err := r.lookup(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", r.wrongType(key, "string", v)
	}
	return s, nil
}

// Float returns the number stored under key.
func (r *Record) Float(key string) (float64, error) {
	v, err := r.lookup(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, r.wrongType(key, "number", v)
	}
}

// Int returns the integer stored under key. Floats with a fractional part
// are rejected.
func (r *Record) Int(key string) (int, error) {
	v, err := r.lookup(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, r.wrongType(key, "integer", v)
		}
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || n < -intLimit || n >= intLimit {
			return 0, r.wrongType(key, "integer", v)
		}
		return int(n), nil
	default:
		return 0, r.wrongType(key, "integer", v)
	}
}

// intLimit is 2^(IntSize-1), the first float64 past the int range.
const intLimit = float64(1 << (strconv.IntSize - 1))

// Bool returns the boolean stored under key.
func (r *Record) Bool(key string) (bool, error) {
	v, err := r.lookup(key)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, r.wrongType(key, "bool", v)
	}
	return b, nil
}

// MarshalJSON encodes the parameters as a JSON object.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.values)
}

func (r *Record) lookup(key string) (any, error) {
	v, ok := r.values[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrMissingKey, r.name, key)
	}
	return v, nil
}

func (r *Record) wrongType(key, want string, v any) error {
	return fmt.Errorf("%w: %s.%s is %T, want %s", ErrWrongType, r.name, key, v, want)
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, e := range t {
			out[i] = cloneMap(e)
		}
		return out
	default:
		return v
	}
}
