// Package lineproto decodes and encodes InfluxDB line protocol:
//
//	measurement[,tag_key=tag_value[,...]] field_key=field_value[,...] [timestamp]
//
// The decoder turns each input line into a telemetry.Record; the
// encoder is its exact inverse, so decode(encode(records)) reproduces
// the original sequence including field types and tag order.
package lineproto

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/auxspace/telhelp/pkg/telemetry"
)

// MalformedRecordError reports a line that does not conform to the
// line protocol. The whole run aborts on the first one; skipping bad
// lines would leave unexplained gaps in the output data set.
type MalformedRecordError struct {
	Line   int
	Raw    string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Raw)
}

// Decoder reads line protocol text and produces records one at a time.
type Decoder struct {
	scanner   *bufio.Scanner
	line      int
	defaultTS func() int64
	rec       telemetry.Record
	err       error
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithDefaultTimestamp supplies the timestamp used for lines that omit
// one. Without it, a line with no timestamp section is malformed.
func WithDefaultTimestamp(fn func() int64) Option {
	return func(d *Decoder) { d.defaultTS = fn }
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	d := &Decoder{scanner: s}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Next advances to the next record, skipping blank lines and lines
// beginning with '#'. It returns false at end of input or on error.
func (d *Decoder) Next() bool {
	if d.err != nil {
		return false
	}
	for d.scanner.Scan() {
		d.line++
		raw := strings.TrimSpace(d.scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		rec, err := d.parseLine(raw)
		if err != nil {
			d.err = err
			return false
		}
		d.rec = rec
		return true
	}
	d.err = d.scanner.Err()
	return false
}

// Record returns the record produced by the last successful Next.
func (d *Decoder) Record() telemetry.Record { return d.rec }

// Err returns the first error encountered, if any.
func (d *Decoder) Err() error { return d.err }

// Line returns the current input line number.
func (d *Decoder) Line() int { return d.line }

// DecodeAll reads every record from r.
func DecodeAll(r io.Reader, opts ...Option) ([]telemetry.Record, error) {
	d := NewDecoder(r, opts...)
	var recs []telemetry.Record
	for d.Next() {
		recs = append(recs, d.Record())
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

func (d *Decoder) parseLine(raw string) (telemetry.Record, error) {
	fail := func(reason string) (telemetry.Record, error) {
		return telemetry.Record{}, &MalformedRecordError{Line: d.line, Raw: raw, Reason: reason}
	}

	head, fieldsSec, tsSec := splitSections(raw)
	if fieldsSec == "" {
		return fail("missing fields section")
	}

	var rec telemetry.Record

	// Measurement and tags.
	headParts := splitUnescaped(head, ',', false)
	rec.Measurement = unescape(headParts[0])
	if rec.Measurement == "" {
		return fail("missing measurement name")
	}
	for _, part := range headParts[1:] {
		kv := splitUnescaped(part, '=', false)
		if len(kv) != 2 || kv[0] == "" {
			return fail(fmt.Sprintf("malformed tag %q", part))
		}
		rec.Tags = append(rec.Tags, telemetry.Tag{Key: unescape(kv[0]), Value: unescape(kv[1])})
	}

	// Fields.
	for _, part := range splitUnescaped(fieldsSec, ',', true) {
		kv := splitUnescaped(part, '=', true)
		if len(kv) != 2 || kv[0] == "" {
			return fail(fmt.Sprintf("malformed field %q", part))
		}
		val, err := parseFieldValue(kv[1])
		if err != nil {
			return fail(fmt.Sprintf("field %q: %v", unescape(kv[0]), err))
		}
		rec.Fields = append(rec.Fields, telemetry.Field{Key: unescape(kv[0]), Value: val})
	}

	// Timestamp.
	switch {
	case tsSec != "":
		ts, err := strconv.ParseInt(tsSec, 10, 64)
		if err != nil {
			return fail(fmt.Sprintf("unparseable timestamp %q", tsSec))
		}
		rec.Timestamp = ts
	case d.defaultTS != nil:
		rec.Timestamp = d.defaultTS()
	default:
		return fail("missing timestamp and no default configured")
	}

	if err := rec.Validate(); err != nil {
		return fail(err.Error())
	}
	return rec, nil
}

// splitSections splits a line into its measurement+tags head, fields
// section and optional timestamp section on unescaped spaces outside
// quoted string values.
func splitSections(line string) (head, fields, ts string) {
	parts := splitUnescaped(line, ' ', true)
	// Collapse runs of spaces: splitting "a  b" yields an empty part.
	var sections []string
	for _, p := range parts {
		if p != "" {
			sections = append(sections, p)
		}
	}
	switch len(sections) {
	case 0:
		return "", "", ""
	case 1:
		return sections[0], "", ""
	case 2:
		return sections[0], sections[1], ""
	default:
		return sections[0], strings.Join(sections[1:len(sections)-1], " "), sections[len(sections)-1]
	}
}

var boolTokens = map[string]bool{
	"t": true, "T": true, "true": true, "True": true, "TRUE": true,
	"f": false, "F": false, "false": false, "False": false, "FALSE": false,
}

// parseFieldValue dispatches on lexical form: quoted → string,
// trailing 'i' → integer, boolean token → boolean, otherwise float.
func parseFieldValue(s string) (telemetry.Value, error) {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return telemetry.StringValue(unquoteString(s)), nil
	}
	if s == "" {
		return telemetry.Value{}, fmt.Errorf("empty value")
	}
	if b, ok := boolTokens[s]; ok {
		return telemetry.BoolValue(b), nil
	}
	if s[len(s)-1] == 'i' {
		n, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
		if err != nil {
			return telemetry.Value{}, fmt.Errorf("bad integer %q", s)
		}
		return telemetry.IntValue(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return telemetry.Value{}, fmt.Errorf("bad value %q", s)
	}
	return telemetry.FloatValue(f), nil
}
