package filter

import (
	"testing"

	"github.com/auxspace/telhelp/pkg/telemetry"
)

func record(measurement string, ts int64) telemetry.Record {
	return telemetry.Record{
		Measurement: measurement,
		Tags:        []telemetry.Tag{{Key: "unit", Value: "m"}},
		Fields: []telemetry.Field{
			{Key: "accel_z", Value: telemetry.FloatValue(0.8)},
			{Key: "samples", Value: telemetry.IntValue(128)},
		},
		Timestamp: ts,
	}
}

func TestMatchMeasurement(t *testing.T) {
	f, err := Compile(`measurement == "bno08x"`)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := f.Match(record("bno08x", 1))
	if err != nil || !ok {
		t.Errorf("expected match, got %v/%v", ok, err)
	}
	ok, err = f.Match(record("dps310", 1))
	if err != nil || ok {
		t.Errorf("expected no match, got %v/%v", ok, err)
	}
}

func TestMatchFieldsAndTags(t *testing.T) {
	f, err := Compile(`tags.unit == "m" && fields.accel_z > 0.5 && fields.samples >= 100`)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := f.Match(record("bno08x", 1))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("expected predicate to hold")
	}
}

func TestMatchTimestamp(t *testing.T) {
	f, err := Compile(`timestamp > 100`)
	if err != nil {
		t.Fatal(err)
	}
	if ok, _ := f.Match(record("m", 50)); ok {
		t.Error("timestamp 50 should not match")
	}
	if ok, _ := f.Match(record("m", 150)); !ok {
		t.Error("timestamp 150 should match")
	}
}

func TestCompileRejectsNonBoolean(t *testing.T) {
	if _, err := Compile(`measurement`); err == nil {
		t.Error("expected compile error for non-boolean expression")
	}
}

func TestCompileRejectsBadSyntax(t *testing.T) {
	if _, err := Compile(`fields.accel_z >`); err == nil {
		t.Error("expected compile error for bad syntax")
	}
}

func TestApplyKeepsOrder(t *testing.T) {
	f, err := Compile(`timestamp >= 2`)
	if err != nil {
		t.Fatal(err)
	}
	in := []telemetry.Record{record("a", 1), record("b", 2), record("c", 3)}
	out, err := f.Apply(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].Measurement != "b" || out[1].Measurement != "c" {
		t.Errorf("unexpected result: %+v", out)
	}
}

func TestNilFilterKeepsEverything(t *testing.T) {
	var f *Filter
	in := []telemetry.Record{record("a", 1), record("b", 2)}
	out, err := f.Apply(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Errorf("nil filter dropped records: %d", len(out))
	}
}
