package plot

import (
	"testing"
	"time"

	"github.com/auxspace/telhelp/pkg/telemetry"
)

func rec(measurement string, ts int64, fields ...telemetry.Field) telemetry.Record {
	return telemetry.Record{Measurement: measurement, Fields: fields, Timestamp: ts}
}

func TestBuildGroupsByMeasurement(t *testing.T) {
	recs := []telemetry.Record{
		rec("dps310", 1e9, telemetry.Field{Key: "pressure", Value: telemetry.FloatValue(972.715)}),
		rec("bno08x", 2e9, telemetry.Field{Key: "accel_z", Value: telemetry.FloatValue(0.3)}),
		rec("dps310", 3e9, telemetry.Field{Key: "pressure", Value: telemetry.FloatValue(972.713)}),
	}
	charts := Build(recs)
	if len(charts) != 2 {
		t.Fatalf("expected 2 charts, got %d", len(charts))
	}
	if charts[0].Measurement != "dps310" || charts[1].Measurement != "bno08x" {
		t.Errorf("first-seen order not kept: %q, %q", charts[0].Measurement, charts[1].Measurement)
	}
	if len(charts[0].Series) != 1 || len(charts[0].Series[0].Values) != 2 {
		t.Errorf("dps310 pressure series: %+v", charts[0].Series)
	}
}

func TestBuildSkipsStringFields(t *testing.T) {
	recs := []telemetry.Record{
		rec("ev", 1e9,
			telemetry.Field{Key: "state", Value: telemetry.StringValue("armed")},
			telemetry.Field{Key: "alt", Value: telemetry.FloatValue(120)},
		),
	}
	charts := Build(recs)
	if len(charts[0].Series) != 1 || charts[0].Series[0].Field != "alt" {
		t.Errorf("expected only numeric series, got %+v", charts[0].Series)
	}
}

func TestBuildBoolsPlotAsZeroOne(t *testing.T) {
	recs := []telemetry.Record{
		rec("pyro", 1e9, telemetry.Field{Key: "fired", Value: telemetry.BoolValue(true)}),
		rec("pyro", 2e9, telemetry.Field{Key: "fired", Value: telemetry.BoolValue(false)}),
	}
	charts := Build(recs)
	vals := charts[0].Series[0].Values
	if len(vals) != 2 || vals[0] != 1 || vals[1] != 0 {
		t.Errorf("bool series: %v", vals)
	}
}

func TestBuildTracksTimeRange(t *testing.T) {
	recs := []telemetry.Record{
		rec("m", 5e9, telemetry.Field{Key: "v", Value: telemetry.IntValue(1)}),
		rec("m", 2e9, telemetry.Field{Key: "v", Value: telemetry.IntValue(2)}),
		rec("m", 9e9, telemetry.Field{Key: "v", Value: telemetry.IntValue(3)}),
	}
	c := Build(recs)[0]
	if !c.Start.Equal(time.Unix(2, 0)) || !c.End.Equal(time.Unix(9, 0)) {
		t.Errorf("range: %v - %v", c.Start, c.End)
	}
}

func TestTimeLayoutThreshold(t *testing.T) {
	start := time.Unix(1000, 0)
	if got := TimeLayout(start, start.Add(5*time.Minute)); got != "15:04:05" {
		t.Errorf("short span layout: %q", got)
	}
	if got := TimeLayout(start, start.Add(time.Hour)); got != "15:04" {
		t.Errorf("long span layout: %q", got)
	}
}
