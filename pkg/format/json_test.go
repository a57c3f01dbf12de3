package format

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/auxspace/telhelp/pkg/telemetry"
)

func TestJSONArrayShape(t *testing.T) {
	enc, err := NewEncoder(JSON)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, sampleRecords()); err != nil {
		t.Fatal(err)
	}

	// Must be one valid JSON array of objects with the fixed shape.
	var parsed []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(parsed))
	}
	for _, obj := range parsed {
		for _, key := range []string{"measurement", "tags", "fields", "timestamp"} {
			if _, ok := obj[key]; !ok {
				t.Errorf("object missing %q key", key)
			}
		}
	}
	if parsed[0]["measurement"] != "dps310" {
		t.Errorf("first measurement: got %v", parsed[0]["measurement"])
	}
}

func TestJSONPreservesKeyOrder(t *testing.T) {
	recs := []telemetry.Record{{
		Measurement: "bno08x",
		Fields: []telemetry.Field{
			{Key: "accel_z", Value: telemetry.FloatValue(0.3)},
			{Key: "accel_x", Value: telemetry.FloatValue(0.5)},
			{Key: "accel_y", Value: telemetry.FloatValue(-9.7)},
		},
		Timestamp: 1,
	}}
	enc, _ := NewEncoder(JSONLines)
	var buf bytes.Buffer
	if err := enc.Encode(&buf, recs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	zi := strings.Index(out, "accel_z")
	xi := strings.Index(out, "accel_x")
	yi := strings.Index(out, "accel_y")
	if !(zi < xi && xi < yi) {
		t.Errorf("field order not preserved: %s", out)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	recs := typedRecords()
	enc, _ := NewEncoder(JSON)
	var buf bytes.Buffer
	if err := enc.Encode(&buf, recs); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeJSON(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	requireSameRecords(t, recs, decoded)
}

func TestJSONLinesRoundTrip(t *testing.T) {
	recs := typedRecords()
	enc, _ := NewEncoder(JSONLines)
	var buf bytes.Buffer
	if err := enc.Encode(&buf, recs); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeJSONLines(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	requireSameRecords(t, recs, decoded)
}

// A whole-valued float must come back as a float, not an integer.
func TestJSONFloatTypeSurvives(t *testing.T) {
	recs := []telemetry.Record{{
		Measurement: "m",
		Fields:      []telemetry.Field{{Key: "v", Value: telemetry.FloatValue(5)}},
		Timestamp:   1,
	}}
	enc, _ := NewEncoder(JSONLines)
	var buf bytes.Buffer
	if err := enc.Encode(&buf, recs); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeJSONLines(&buf)
	if err != nil {
		t.Fatal(err)
	}
	got := decoded[0].Fields[0].Value
	if got.Kind != telemetry.KindFloat {
		t.Errorf("whole-valued float decoded as %v", got.Kind)
	}
}

// JSON field values must match the CSV-stringified cells once CSV's
// loss of native typing is accounted for.
func TestFormatEquivalenceJSONvsCSV(t *testing.T) {
	recs := typedRecords()

	jsonEnc, _ := NewEncoder(JSON)
	var jsonBuf bytes.Buffer
	if err := jsonEnc.Encode(&jsonBuf, recs); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeJSON(&jsonBuf)
	if err != nil {
		t.Fatal(err)
	}

	csvEnc, _ := NewEncoder(CSV)
	var csvBuf bytes.Buffer
	if err := csvEnc.Encode(&csvBuf, recs); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(csvBuf.String()), "\n")
	header := strings.Split(lines[0], ",")

	for i, rec := range decoded {
		cells := strings.Split(lines[i+1], ",")
		for j, col := range header {
			if col == "measurement" || col == "timestamp" {
				continue
			}
			v, ok := rec.Field(col)
			if !ok {
				continue
			}
			want := cells[j]
			var got string
			switch v.Kind {
			case telemetry.KindFloat:
				got = strconv.FormatFloat(v.Float, 'g', -1, 64)
			case telemetry.KindInt:
				got = strconv.FormatInt(v.Int, 10)
			case telemetry.KindBool:
				got = strconv.FormatBool(v.Bool)
			default:
				continue // string cells may be CSV-quoted
			}
			if got != want {
				t.Errorf("record %d column %s: JSON %q vs CSV %q", i, col, got, want)
			}
		}
	}
}

func typedRecords() []telemetry.Record {
	return []telemetry.Record{
		{
			Measurement: "sensor",
			Tags:        []telemetry.Tag{{Key: "unit", Value: "m"}, {Key: "stage", Value: "boost"}},
			Fields: []telemetry.Field{
				{Key: "temp", Value: telemetry.FloatValue(21.5)},
				{Key: "pressure", Value: telemetry.IntValue(101325)},
				{Key: "armed", Value: telemetry.BoolValue(true)},
				{Key: "state", Value: telemetry.StringValue(`go "now", fast`)},
			},
			Timestamp: 1725106800000000000,
		},
		{
			Measurement: "gps",
			Fields: []telemetry.Field{
				{Key: "alt", Value: telemetry.FloatValue(1234.5)},
				{Key: "sats", Value: telemetry.IntValue(9)},
			},
			Timestamp: 1725106801000000000,
		},
	}
}

func requireSameRecords(t *testing.T, want, got []telemetry.Record) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("record count: want %d, got %d", len(want), len(got))
	}
	for i := range want {
		if !want[i].Equal(got[i]) {
			t.Errorf("record %d changed:\nwant: %+v\ngot:  %+v", i, want[i], got[i])
		}
	}
}
