package format

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/auxspace/telhelp/pkg/telemetry"
)

// jsonEncoder buffers the whole stream into one array of objects, one
// per record: {"measurement":..., "tags":{...}, "fields":{...},
// "timestamp":...}. Objects are built by hand so tag and field key
// order survives the trip, which map-based marshaling would not give.
type jsonEncoder struct{}

func (jsonEncoder) Encode(w io.Writer, recs []telemetry.Record) error {
	if len(recs) == 0 {
		_, err := io.WriteString(w, "[]\n")
		return err
	}
	buf := []byte("[\n")
	for i, rec := range recs {
		if i > 0 {
			buf = append(buf, ",\n"...)
		}
		buf = append(buf, "  "...)
		buf = appendRecordJSON(buf, rec)
	}
	buf = append(buf, "\n]\n"...)
	_, err := w.Write(buf)
	return err
}

// jsonLinesEncoder writes one compact object per line, same shape as
// the JSON array elements. Unlike JSON, output streams record by
// record.
type jsonLinesEncoder struct{}

func (jsonLinesEncoder) Encode(w io.Writer, recs []telemetry.Record) error {
	var buf []byte
	for _, rec := range recs {
		buf = appendRecordJSON(buf[:0], rec)
		buf = append(buf, '\n')
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

func appendRecordJSON(dst []byte, rec telemetry.Record) []byte {
	dst = append(dst, `{"measurement":`...)
	dst = appendJSONString(dst, rec.Measurement)
	dst = append(dst, `,"tags":{`...)
	for i, t := range rec.Tags {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = appendJSONString(dst, t.Key)
		dst = append(dst, ':')
		dst = appendJSONString(dst, t.Value)
	}
	dst = append(dst, `},"fields":{`...)
	for i, f := range rec.Fields {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = appendJSONString(dst, f.Key)
		dst = append(dst, ':')
		dst = appendJSONValue(dst, f.Value)
	}
	dst = append(dst, `},"timestamp":`...)
	dst = strconv.AppendInt(dst, rec.Timestamp, 10)
	return append(dst, '}')
}

func appendJSONString(dst []byte, s string) []byte {
	b, _ := json.Marshal(s)
	return append(dst, b...)
}

func appendJSONValue(dst []byte, v telemetry.Value) []byte {
	switch v.Kind {
	case telemetry.KindInt:
		return strconv.AppendInt(dst, v.Int, 10)
	case telemetry.KindBool:
		return strconv.AppendBool(dst, v.Bool)
	case telemetry.KindString:
		return appendJSONString(dst, v.Str)
	default:
		s := strconv.FormatFloat(v.Float, 'g', -1, 64)
		// Keep whole-valued floats typed as floats across a decode.
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return append(dst, s...)
	}
}
