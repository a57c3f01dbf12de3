package lineproto

import (
	"io"
	"strconv"

	"github.com/auxspace/telhelp/pkg/telemetry"
)

// Encoder writes records as line protocol, one line per record. It
// re-escapes measurement, tag and field text exactly as the decoder
// expects, so its output round-trips.
type Encoder struct {
	w io.Writer
}

// NewEncoder creates an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one record followed by a newline.
func (e *Encoder) Encode(rec telemetry.Record) error {
	buf := Append(nil, rec)
	buf = append(buf, '\n')
	_, err := e.w.Write(buf)
	return err
}

// EncodeAll writes every record in sequence.
func EncodeAll(w io.Writer, recs []telemetry.Record) error {
	enc := NewEncoder(w)
	for _, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// Append appends the line protocol form of rec to dst without a
// trailing newline.
func Append(dst []byte, rec telemetry.Record) []byte {
	dst = append(dst, escapeMeasurement(rec.Measurement)...)
	for _, t := range rec.Tags {
		dst = append(dst, ',')
		dst = append(dst, escapeKey(t.Key)...)
		dst = append(dst, '=')
		dst = append(dst, escapeKey(t.Value)...)
	}
	dst = append(dst, ' ')
	for i, f := range rec.Fields {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, escapeKey(f.Key)...)
		dst = append(dst, '=')
		dst = append(dst, FormatValue(f.Value)...)
	}
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, rec.Timestamp, 10)
	return dst
}

// FormatValue renders a field value with its type suffix: integers get
// a trailing 'i', booleans become true/false, strings are quoted,
// floats use the shortest representation that parses back exactly.
func FormatValue(v telemetry.Value) string {
	switch v.Kind {
	case telemetry.KindInt:
		return strconv.FormatInt(v.Int, 10) + "i"
	case telemetry.KindBool:
		return strconv.FormatBool(v.Bool)
	case telemetry.KindString:
		return quoteString(v.Str)
	default:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	}
}
