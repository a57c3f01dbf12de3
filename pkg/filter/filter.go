// Package filter evaluates a user-supplied predicate expression against
// each record, selecting the subset to convert or plot.
//
// Expressions see the record as {measurement, tags, fields, timestamp},
// e.g.:
//
//	measurement == "bno08x" && fields.accel_z > 0.5
//	tags.unit == "m" || timestamp > 1725106800000000000
package filter

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/auxspace/telhelp/pkg/telemetry"
)

// Filter is a compiled record predicate.
type Filter struct {
	source  string
	program *vm.Program
}

// Compile type-checks and compiles the expression once; Match then
// runs the compiled program per record.
func Compile(source string) (*Filter, error) {
	program, err := expr.Compile(source, expr.Env(exprEnv()), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", source, err)
	}
	return &Filter{source: source, program: program}, nil
}

// Match reports whether rec satisfies the predicate.
func (f *Filter) Match(rec telemetry.Record) (bool, error) {
	out, err := expr.Run(f.program, recordEnv(rec))
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q: %w", f.source, err)
	}
	keep, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter %q did not evaluate to a boolean", f.source)
	}
	return keep, nil
}

// Apply returns the records matching the predicate, in input order.
// A nil filter keeps everything.
func (f *Filter) Apply(recs []telemetry.Record) ([]telemetry.Record, error) {
	if f == nil {
		return recs, nil
	}
	out := make([]telemetry.Record, 0, len(recs))
	for _, rec := range recs {
		keep, err := f.Match(rec)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, rec)
		}
	}
	return out, nil
}

func exprEnv() map[string]any {
	return map[string]any{
		"measurement": "",
		"tags":        map[string]string{},
		"fields":      map[string]any{},
		"timestamp":   int64(0),
	}
}

func recordEnv(rec telemetry.Record) map[string]any {
	tags := make(map[string]string, len(rec.Tags))
	for _, t := range rec.Tags {
		tags[t.Key] = t.Value
	}
	fields := make(map[string]any, len(rec.Fields))
	for _, f := range rec.Fields {
		fields[f.Key] = f.Value.Any()
	}
	return map[string]any{
		"measurement": rec.Measurement,
		"tags":        tags,
		"fields":      fields,
		"timestamp":   rec.Timestamp,
	}
}
