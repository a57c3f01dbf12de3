// Package telemetry holds the canonical in-memory model for one
// telemetry sample: measurement name, ordered tag set, ordered typed
// field set, and a timestamp.
//
// Tags and fields are slices rather than maps so that decode order is
// preserved and every encoder emits deterministic output.
package telemetry

import "fmt"

// Tag is one dimensional key/value pair.
type Tag struct {
	Key   string
	Value string
}

// Field is one measured key/value pair.
type Field struct {
	Key   string
	Value Value
}

// Record is one telemetry sample. The timestamp is an integer count of
// time units since an implicit reference point: relative units as
// decoded, nanoseconds since the Unix epoch once rebased.
type Record struct {
	Measurement string
	Tags        []Tag
	Fields      []Field
	Timestamp   int64
}

// Validate checks structural well-formedness: non-empty measurement,
// at least one field, and unique keys within tags and within fields.
func (r Record) Validate() error {
	if r.Measurement == "" {
		return fmt.Errorf("record has no measurement name")
	}
	if len(r.Fields) == 0 {
		return fmt.Errorf("record %q has no fields", r.Measurement)
	}
	seen := make(map[string]bool, len(r.Tags))
	for _, t := range r.Tags {
		if seen[t.Key] {
			return fmt.Errorf("record %q: duplicate tag key %q", r.Measurement, t.Key)
		}
		seen[t.Key] = true
	}
	seen = make(map[string]bool, len(r.Fields))
	for _, f := range r.Fields {
		if seen[f.Key] {
			return fmt.Errorf("record %q: duplicate field key %q", r.Measurement, f.Key)
		}
		seen[f.Key] = true
	}
	return nil
}

// Tag returns the value of the named tag.
func (r Record) Tag(key string) (string, bool) {
	for _, t := range r.Tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

// Field returns the value of the named field.
func (r Record) Field(key string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Clone returns a deep copy. Encoders never mutate records, but the
// rebaser hands out copies so the decoded sequence stays untouched.
func (r Record) Clone() Record {
	c := r
	c.Tags = append([]Tag(nil), r.Tags...)
	c.Fields = append([]Field(nil), r.Fields...)
	return c
}

// Equal compares two records member-wise, including tag and field order.
func (r Record) Equal(o Record) bool {
	if r.Measurement != o.Measurement || r.Timestamp != o.Timestamp {
		return false
	}
	if len(r.Tags) != len(o.Tags) || len(r.Fields) != len(o.Fields) {
		return false
	}
	for i, t := range r.Tags {
		if o.Tags[i] != t {
			return false
		}
	}
	for i, f := range r.Fields {
		if o.Fields[i].Key != f.Key || !o.Fields[i].Value.Equal(f.Value) {
			return false
		}
	}
	return true
}
