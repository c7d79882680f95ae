// Package record implements the generic ordered key-value tree used to
// persist schematic documents. A Record holds an ordered list of entries;
// keys may repeat, and an entry's value is either a scalar (string, int,
// float, bool) or a nested Record. Getters tolerate missing keys by
// returning a caller-supplied default, so documents written by older
// versions load without errors.
//
// The text form is an s-expression: (key value) for scalars and
// (key (child ...) ...) for nested records.
package record

// Entry is a single key/value pair in a Record. Value is one of
// string, int, float64, bool or *Record.
type Entry struct {
	Key   string
	Value any
}

// Record is an ordered multimap tree node.
type Record struct {
	entries []Entry
}

// New creates an empty Record.
func New() *Record {
	return &Record{}
}

// Len returns the number of entries.
func (r *Record) Len() int {
	return len(r.entries)
}

// Entries returns the entry list. The returned slice must not be mutated.
func (r *Record) Entries() []Entry {
	return r.entries
}

// AddStr appends a string entry.
func (r *Record) AddStr(key, value string) *Record {
	r.entries = append(r.entries, Entry{Key: key, Value: value})
	return r
}

// AddInt appends an integer entry.
func (r *Record) AddInt(key string, value int) *Record {
	r.entries = append(r.entries, Entry{Key: key, Value: value})
	return r
}

// AddFloat appends a float entry.
func (r *Record) AddFloat(key string, value float64) *Record {
	r.entries = append(r.entries, Entry{Key: key, Value: value})
	return r
}

// AddBool appends a boolean entry.
func (r *Record) AddBool(key string, value bool) *Record {
	r.entries = append(r.entries, Entry{Key: key, Value: value})
	return r
}

// AddChild appends a nested record entry. Nil children are ignored.
func (r *Record) AddChild(key string, child *Record) *Record {
	if child == nil {
		return r
	}
	r.entries = append(r.entries, Entry{Key: key, Value: child})
	return r
}

// find returns the first entry with the given key.
func (r *Record) find(key string) (Entry, bool) {
	for _, e := range r.entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// Has reports whether at least one entry with the given key exists.
func (r *Record) Has(key string) bool {
	_, ok := r.find(key)
	return ok
}

// StrOr returns the first string value for key, or def if absent or of
// a different type.
func (r *Record) StrOr(key, def string) string {
	if e, ok := r.find(key); ok {
		if v, ok := e.Value.(string); ok {
			return v
		}
	}
	return def
}

// IntOr returns the first integer value for key, or def. Float values
// are truncated, so a file that stores "5.0" still loads as 5.
func (r *Record) IntOr(key string, def int) int {
	if e, ok := r.find(key); ok {
		switch v := e.Value.(type) {
		case int:
			return v
		case float64:
			return int(v)
		}
	}
	return def
}

// FloatOr returns the first float value for key, or def. Integer values
// are widened.
func (r *Record) FloatOr(key string, def float64) float64 {
	if e, ok := r.find(key); ok {
		switch v := e.Value.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
	}
	return def
}

// BoolOr returns the first boolean value for key, or def.
func (r *Record) BoolOr(key string, def bool) bool {
	if e, ok := r.find(key); ok {
		if v, ok := e.Value.(bool); ok {
			return v
		}
	}
	return def
}

// Child returns the first nested record for key, or nil.
func (r *Record) Child(key string) *Record {
	if e, ok := r.find(key); ok {
		if v, ok := e.Value.(*Record); ok {
			return v
		}
	}
	return nil
}

// Children returns all nested records for key, in order.
func (r *Record) Children(key string) []*Record {
	var out []*Record
	for _, e := range r.entries {
		if e.Key != key {
			continue
		}
		if v, ok := e.Value.(*Record); ok {
			out = append(out, v)
		}
	}
	return out
}
