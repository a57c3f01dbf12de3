package format

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/auxspace/telhelp/pkg/telemetry"
)

// csvEncoder writes one table for the whole stream under the
// union-column policy: the header carries every distinct tag and field
// key seen anywhere in the sequence, in first-seen order, and rows
// leave cells empty for keys a record does not carry. Records with
// heterogeneous key sets are therefore never rejected. A field key
// that also occurs as a tag key gets a "_field" suffix in the header
// so no two columns share a name.
type csvEncoder struct{}

func (csvEncoder) Encode(w io.Writer, recs []telemetry.Record) error {
	var tagCols, fieldCols []string
	seenTag := make(map[string]bool)
	seenField := make(map[string]bool)
	for _, rec := range recs {
		for _, t := range rec.Tags {
			if !seenTag[t.Key] {
				seenTag[t.Key] = true
				tagCols = append(tagCols, t.Key)
			}
		}
		for _, f := range rec.Fields {
			if !seenField[f.Key] {
				seenField[f.Key] = true
				fieldCols = append(fieldCols, f.Key)
			}
		}
	}

	cw := csv.NewWriter(w)
	header := make([]string, 0, 2+len(tagCols)+len(fieldCols))
	header = append(header, "measurement")
	header = append(header, tagCols...)
	for _, col := range fieldCols {
		if seenTag[col] {
			col += "_field"
		}
		header = append(header, col)
	}
	header = append(header, "timestamp")
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, rec := range recs {
		row = row[:0]
		row = append(row, rec.Measurement)
		for _, col := range tagCols {
			v, _ := rec.Tag(col)
			row = append(row, v)
		}
		for _, col := range fieldCols {
			cell := ""
			if v, ok := rec.Field(col); ok {
				cell = v.Text()
			}
			row = append(row, cell)
		}
		row = append(row, strconv.FormatInt(rec.Timestamp, 10))
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// multiCSVEncoder writes one table per measurement, separated by a
// blank line. Each table gets its own header of that measurement's
// field keys (sorted) plus the timestamp column; rows keep input
// order.
type multiCSVEncoder struct{}

func (multiCSVEncoder) Encode(w io.Writer, recs []telemetry.Record) error {
	var order []string
	byMeasurement := make(map[string][]telemetry.Record)
	for _, rec := range recs {
		if _, ok := byMeasurement[rec.Measurement]; !ok {
			order = append(order, rec.Measurement)
		}
		byMeasurement[rec.Measurement] = append(byMeasurement[rec.Measurement], rec)
	}

	for i, name := range order {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := writeMeasurementTable(w, byMeasurement[name]); err != nil {
			return err
		}
	}
	return nil
}

func writeMeasurementTable(w io.Writer, recs []telemetry.Record) error {
	seen := make(map[string]bool)
	var cols []string
	for _, rec := range recs {
		for _, f := range rec.Fields {
			if !seen[f.Key] {
				seen[f.Key] = true
				cols = append(cols, f.Key)
			}
		}
	}
	sort.Strings(cols)

	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string{}, cols...), "timestamp")); err != nil {
		return err
	}
	row := make([]string, 0, len(cols)+1)
	for _, rec := range recs {
		row = row[:0]
		for _, col := range cols {
			cell := ""
			if v, ok := rec.Field(col); ok {
				cell = v.Text()
			}
			row = append(row, cell)
		}
		row = append(row, strconv.FormatInt(rec.Timestamp, 10))
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
