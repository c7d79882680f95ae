package record

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Encode writes the record's entries as indented s-expressions. Output
// is deterministic: entry order is preserved and floats use the shortest
// representation that round-trips.
func (r *Record) Encode(w io.Writer) error {
	for _, e := range r.entries {
		if err := encodeEntry(w, e, 0); err != nil {
			return err
		}
	}
	return nil
}

// String returns the encoded text form.
func (r *Record) String() string {
	var sb strings.Builder
	// strings.Builder never fails
	_ = r.Encode(&sb)
	return sb.String()
}

func encodeEntry(w io.Writer, e Entry, depth int) error {
	indent := strings.Repeat("  ", depth)

	child, isChild := e.Value.(*Record)
	if !isChild {
		_, err := fmt.Fprintf(w, "%s(%s %s)\n", indent, e.Key, encodeScalar(e.Value))
		return err
	}

	if child.Len() == 0 {
		_, err := fmt.Fprintf(w, "%s(%s)\n", indent, e.Key)
		return err
	}

	if _, err := fmt.Fprintf(w, "%s(%s\n", indent, e.Key); err != nil {
		return err
	}
	for _, sub := range child.entries {
		if err := encodeEntry(w, sub, depth+1); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s)\n", indent)
	return err
}

func encodeScalar(v any) string {
	switch val := v.(type) {
	case string:
		return strconv.Quote(val)
	case int:
		return strconv.Itoa(val)
	case float64:
		s := strconv.FormatFloat(val, 'g', -1, 64)
		// Keep floats recognizable as floats in the text form.
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		// Unsupported types cannot appear via the Add* API.
		return fmt.Sprintf("%q", fmt.Sprint(val))
	}
}
