// Package format serializes corrected record sequences into one of the
// supported interchange formats: line protocol, CSV, multi-CSV, JSON
// and JSON Lines.
//
// All encoders are deterministic for a given input sequence and never
// mutate the records they are handed. Line protocol, JSON and JSON
// Lines preserve field typing; the CSV variants stringify all values.
package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/auxspace/telhelp/pkg/telemetry"
)

// Format names an output data format.
type Format string

const (
	LineProtocol Format = "influxdb-lines"
	CSV          Format = "csv"
	MultiCSV     Format = "multi-csv"
	JSON         Format = "json"
	JSONLines    Format = "json-lines"
)

// Parse maps a user-supplied format name to a Format.
func Parse(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case LineProtocol, CSV, MultiCSV, JSON, JSONLines:
		return f, nil
	}
	return "", fmt.Errorf("unknown data format %q (choose one of: %s)", s, strings.Join(Names(), ", "))
}

// Names lists the accepted format names.
func Names() []string {
	return []string{
		string(LineProtocol), string(CSV), string(MultiCSV), string(JSON), string(JSONLines),
	}
}

func (f Format) String() string { return string(f) }

// Encoder serializes a record sequence to w.
type Encoder interface {
	Encode(w io.Writer, recs []telemetry.Record) error
}

// NewEncoder returns the encoder for f.
func NewEncoder(f Format) (Encoder, error) {
	switch f {
	case LineProtocol:
		return lineProtocolEncoder{}, nil
	case CSV:
		return csvEncoder{}, nil
	case MultiCSV:
		return multiCSVEncoder{}, nil
	case JSON:
		return jsonEncoder{}, nil
	case JSONLines:
		return jsonLinesEncoder{}, nil
	}
	return nil, fmt.Errorf("unknown data format %q", f)
}
