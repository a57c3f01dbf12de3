package format

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/auxspace/telhelp/pkg/telemetry"
)

// DecodeJSON reads a JSON array produced by the JSON encoder back into
// records. Decoding walks the token stream instead of unmarshaling
// into maps so tag and field order is preserved.
func DecodeJSON(r io.Reader) ([]telemetry.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}
	var recs []telemetry.Record
	for dec.More() {
		rec, err := decodeRecord(dec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(recs)+1, err)
		}
		recs = append(recs, rec)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return recs, nil
}

// DecodeJSONLines reads JSON Lines output back into records, one
// object per line. Blank lines are skipped.
func DecodeJSONLines(r io.Reader) ([]telemetry.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var recs []telemetry.Record
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text))
		dec.UseNumber()
		rec, err := decodeRecord(dec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		recs = append(recs, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

func decodeRecord(dec *json.Decoder) (telemetry.Record, error) {
	var rec telemetry.Record
	if err := expectDelim(dec, '{'); err != nil {
		return rec, err
	}
	for dec.More() {
		key, err := stringToken(dec)
		if err != nil {
			return rec, err
		}
		switch key {
		case "measurement":
			if rec.Measurement, err = stringToken(dec); err != nil {
				return rec, err
			}
		case "tags":
			if rec.Tags, err = decodeTags(dec); err != nil {
				return rec, err
			}
		case "fields":
			if rec.Fields, err = decodeFields(dec); err != nil {
				return rec, err
			}
		case "timestamp":
			tok, err := dec.Token()
			if err != nil {
				return rec, err
			}
			num, ok := tok.(json.Number)
			if !ok {
				return rec, fmt.Errorf("timestamp is not a number")
			}
			if rec.Timestamp, err = num.Int64(); err != nil {
				return rec, fmt.Errorf("timestamp %v: %w", num, err)
			}
		default:
			return rec, fmt.Errorf("unexpected key %q", key)
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return rec, err
	}
	return rec, rec.Validate()
}

func decodeTags(dec *json.Decoder) ([]telemetry.Tag, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var tags []telemetry.Tag
	for dec.More() {
		key, err := stringToken(dec)
		if err != nil {
			return nil, err
		}
		val, err := stringToken(dec)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", key, err)
		}
		tags = append(tags, telemetry.Tag{Key: key, Value: val})
	}
	return tags, expectDelim(dec, '}')
}

func decodeFields(dec *json.Decoder) ([]telemetry.Field, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var fields []telemetry.Field
	for dec.More() {
		key, err := stringToken(dec)
		if err != nil {
			return nil, err
		}
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		val, err := valueFromToken(tok)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		fields = append(fields, telemetry.Field{Key: key, Value: val})
	}
	return fields, expectDelim(dec, '}')
}

// valueFromToken maps a JSON scalar back onto the tagged variant.
// Numbers without a fraction or exponent are integers, matching the
// encoder's float marker convention.
func valueFromToken(tok json.Token) (telemetry.Value, error) {
	switch t := tok.(type) {
	case json.Number:
		if !strings.ContainsAny(t.String(), ".eE") {
			n, err := t.Int64()
			if err != nil {
				return telemetry.Value{}, err
			}
			return telemetry.IntValue(n), nil
		}
		f, err := t.Float64()
		if err != nil {
			return telemetry.Value{}, err
		}
		return telemetry.FloatValue(f), nil
	case bool:
		return telemetry.BoolValue(t), nil
	case string:
		return telemetry.StringValue(t), nil
	}
	return telemetry.Value{}, fmt.Errorf("unsupported value %v", tok)
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %v", tok)
	}
	return s, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
