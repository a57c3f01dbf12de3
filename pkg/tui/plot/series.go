// Package plot renders corrected telemetry records as terminal
// time-series charts, grouped by measurement. It consumes the record
// sequence the pipeline produces; the core pipeline has no dependency
// on this package and runs fine without it.
package plot

import (
	"time"

	"github.com/auxspace/telhelp/pkg/telemetry"
)

// Series is the plotted values of one numeric field.
type Series struct {
	Field  string
	Values []float64
}

// Chart is everything needed to draw one measurement: one series per
// numeric field, plus the covered time range.
type Chart struct {
	Measurement string
	Series      []Series
	Start       time.Time
	End         time.Time
}

// printSecondsThreshold is the data span under which axis labels show
// seconds as well as minutes.
const printSecondsThreshold = 10 * time.Minute

// Build groups records by measurement (first-seen order) and collects
// each numeric field into a series. String fields are skipped; they
// have no position on a value axis.
func Build(recs []telemetry.Record) []Chart {
	index := make(map[string]int)

	var charts []Chart
	for _, rec := range recs {
		i, ok := index[rec.Measurement]
		if !ok {
			i = len(charts)
			index[rec.Measurement] = i
			charts = append(charts, Chart{Measurement: rec.Measurement})
		}
		c := &charts[i]

		ts := time.Unix(0, rec.Timestamp)
		if c.Start.IsZero() || ts.Before(c.Start) {
			c.Start = ts
		}
		if ts.After(c.End) {
			c.End = ts
		}

		for _, f := range rec.Fields {
			v, ok := f.Value.Numeric()
			if !ok {
				continue
			}
			appendValue(c, f.Key, v)
		}
	}
	return charts
}

func appendValue(c *Chart, field string, v float64) {
	for i := range c.Series {
		if c.Series[i].Field == field {
			c.Series[i].Values = append(c.Series[i].Values, v)
			return
		}
	}
	c.Series = append(c.Series, Series{Field: field, Values: []float64{v}})
}

// TimeLayout picks the axis label layout: spans under ten minutes get
// seconds, anything longer is labeled to the minute.
func TimeLayout(start, end time.Time) string {
	if end.Sub(start) <= printSecondsThreshold {
		return "15:04:05"
	}
	return "15:04"
}

// TimeRange renders the chart's covered range for the caption line.
func (c Chart) TimeRange() string {
	layout := TimeLayout(c.Start, c.End)
	return c.Start.Format(layout) + " - " + c.End.Format(layout)
}
