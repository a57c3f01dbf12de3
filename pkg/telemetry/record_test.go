package telemetry

import "testing"

func TestValidateOK(t *testing.T) {
	rec := Record{
		Measurement: "dps310",
		Tags:        []Tag{{Key: "unit", Value: "m"}},
		Fields:      []Field{{Key: "pressure", Value: FloatValue(972.715)}},
		Timestamp:   1725197514418,
	}
	if err := rec.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateNoFields(t *testing.T) {
	rec := Record{Measurement: "dps310"}
	if err := rec.Validate(); err == nil {
		t.Error("expected error for record without fields")
	}
}

func TestValidateNoMeasurement(t *testing.T) {
	rec := Record{Fields: []Field{{Key: "x", Value: IntValue(1)}}}
	if err := rec.Validate(); err == nil {
		t.Error("expected error for record without measurement")
	}
}

func TestValidateDuplicateTagKey(t *testing.T) {
	rec := Record{
		Measurement: "m",
		Tags:        []Tag{{Key: "a", Value: "1"}, {Key: "a", Value: "2"}},
		Fields:      []Field{{Key: "x", Value: IntValue(1)}},
	}
	if err := rec.Validate(); err == nil {
		t.Error("expected error for duplicate tag key")
	}
}

func TestValidateDuplicateFieldKey(t *testing.T) {
	rec := Record{
		Measurement: "m",
		Fields:      []Field{{Key: "x", Value: IntValue(1)}, {Key: "x", Value: IntValue(2)}},
	}
	if err := rec.Validate(); err == nil {
		t.Error("expected error for duplicate field key")
	}
}

func TestValueText(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{FloatValue(21.5), "21.5"},
		{IntValue(101325), "101325"},
		{BoolValue(true), "true"},
		{StringValue("nominal"), "nominal"},
	}
	for _, tt := range tests {
		if got := tt.value.Text(); got != tt.want {
			t.Errorf("Text(%v): got %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestValueNumeric(t *testing.T) {
	if v, ok := FloatValue(1.5).Numeric(); !ok || v != 1.5 {
		t.Errorf("float: got %v/%v", v, ok)
	}
	if v, ok := IntValue(7).Numeric(); !ok || v != 7 {
		t.Errorf("int: got %v/%v", v, ok)
	}
	if v, ok := BoolValue(true).Numeric(); !ok || v != 1 {
		t.Errorf("bool: got %v/%v", v, ok)
	}
	if _, ok := StringValue("x").Numeric(); ok {
		t.Error("string should not be numeric")
	}
}

func TestCloneIsDeep(t *testing.T) {
	rec := Record{
		Measurement: "m",
		Tags:        []Tag{{Key: "a", Value: "1"}},
		Fields:      []Field{{Key: "x", Value: IntValue(1)}},
		Timestamp:   5,
	}
	c := rec.Clone()
	c.Tags[0].Value = "changed"
	c.Fields[0].Value = IntValue(99)
	if rec.Tags[0].Value != "1" || rec.Fields[0].Value.Int != 1 {
		t.Error("Clone shares backing arrays with the original")
	}
}

func TestRecordEqual(t *testing.T) {
	a := Record{
		Measurement: "m",
		Tags:        []Tag{{Key: "a", Value: "1"}},
		Fields:      []Field{{Key: "x", Value: FloatValue(2.5)}},
		Timestamp:   10,
	}
	if !a.Equal(a.Clone()) {
		t.Error("record should equal its clone")
	}
	b := a.Clone()
	b.Fields[0].Value = IntValue(2)
	if a.Equal(b) {
		t.Error("records with different field types should not be equal")
	}
}
