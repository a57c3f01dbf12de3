// Package rebase shifts relative telemetry timestamps onto an absolute
// time axis.
//
// Data loggers without a real-time clock stamp records relative to
// power-on. Given the absolute instant the relative clock started at
// and a timebase (raw timestamp units per second), the rebaser maps
// every raw timestamp to nanoseconds since the Unix epoch.
package rebase

import (
	"fmt"
	"math"
	"time"

	"github.com/auxspace/telhelp/pkg/telemetry"
)

const nanosPerSecond = int64(time.Second)

// InvalidTimebaseError reports a timebase that cannot scale timestamps:
// negative, NaN or infinite. Zero is valid and disables rebasing.
type InvalidTimebaseError struct {
	Timebase float64
}

func (e *InvalidTimebaseError) Error() string {
	return fmt.Sprintf("invalid timebase %v: must be a finite value >= 0", e.Timebase)
}

// Rebaser applies absolute = epoch + raw/timebase to each record.
type Rebaser struct {
	epoch    time.Time
	timebase float64
}

// New validates the timebase and returns a Rebaser. A timebase of zero
// yields a pass-through rebaser (format conversion only).
func New(epoch time.Time, timebase float64) (*Rebaser, error) {
	if timebase < 0 || math.IsNaN(timebase) || math.IsInf(timebase, 0) {
		return nil, &InvalidTimebaseError{Timebase: timebase}
	}
	return &Rebaser{epoch: epoch, timebase: timebase}, nil
}

// Enabled reports whether timestamps are actually rewritten.
func (r *Rebaser) Enabled() bool { return r.timebase > 0 }

// Epoch returns the reference instant raw timestamps are measured from.
func (r *Rebaser) Epoch() time.Time { return r.epoch }

// Absolute converts one raw timestamp to nanoseconds since the Unix
// epoch. With timebase zero the raw value passes through unchanged.
func (r *Rebaser) Absolute(raw int64) int64 {
	if r.timebase == 0 {
		return raw
	}
	return r.epoch.UnixNano() + r.offset(raw)
}

// offset scales raw to nanoseconds. Integer fast path for timebases
// that divide one second evenly (1 = seconds, 1e3 = ms, 1e6 = µs,
// 1e9 = ns); going through float64 would drop bits on values past
// 2^53. Raw values whose product would not fit in an int64 saturate
// instead of wrapping.
func (r *Rebaser) offset(raw int64) int64 {
	if tb := int64(r.timebase); tb > 0 && float64(tb) == r.timebase && nanosPerSecond%tb == 0 {
		if mul := nanosPerSecond / tb; raw >= math.MinInt64/mul && raw <= math.MaxInt64/mul {
			return raw * mul
		}
	}
	f := math.Round(float64(raw) * float64(nanosPerSecond) / r.timebase)
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// Rebase returns a copy of rec with its timestamp made absolute. The
// input record is not modified; tags and fields carry over as-is.
func (r *Rebaser) Rebase(rec telemetry.Record) telemetry.Record {
	out := rec
	out.Timestamp = r.Absolute(rec.Timestamp)
	return out
}

// RebaseAll transforms a whole sequence, preserving order.
func (r *Rebaser) RebaseAll(recs []telemetry.Record) []telemetry.Record {
	out := make([]telemetry.Record, len(recs))
	for i, rec := range recs {
		out[i] = r.Rebase(rec)
	}
	return out
}
