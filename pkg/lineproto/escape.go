package lineproto

import "strings"

// Escaping rules follow the InfluxDB line protocol: commas and spaces
// are escaped in measurement names; commas, equals signs and spaces in
// tag keys, tag values and field keys; quotes and backslashes inside
// quoted string field values. Measurement names additionally escape
// '#' so an encoded line can never be mistaken for a comment by the
// decoder.

func escapeMeasurement(s string) string {
	return escapeAny(s, `,\ #`)
}

func escapeKey(s string) string {
	return escapeAny(s, `,=\ `)
}

func escapeAny(s, chars string) string {
	if !strings.ContainsAny(s, chars) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(chars, s[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// unescape removes one level of backslash escaping.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// quoteString renders a string field value in double quotes with
// embedded quotes and backslashes escaped.
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

func unquoteString(s string) string {
	s = s[1 : len(s)-1]
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// splitUnescaped splits s on sep bytes that are not backslash-escaped
// and, when quotes is true, not inside a double-quoted run.
func splitUnescaped(s string, sep byte, quotes bool) []string {
	var parts []string
	var inQuotes bool
	start := 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\':
			i++ // escaped char, skip
		case quotes && s[i] == '"':
			inQuotes = !inQuotes
		case s[i] == sep && !inQuotes:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}
