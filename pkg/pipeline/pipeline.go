// Package pipeline wires the conversion stages together: decode line
// protocol, rebase timestamps, filter, encode. One Pipeline value
// holds the full configuration for a run; nothing is process-global.
package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/auxspace/telhelp/pkg/filter"
	"github.com/auxspace/telhelp/pkg/format"
	"github.com/auxspace/telhelp/pkg/lineproto"
	"github.com/auxspace/telhelp/pkg/rebase"
	"github.com/auxspace/telhelp/pkg/telemetry"
)

// Options configures a Pipeline.
type Options struct {
	// Epoch is the absolute instant raw timestamps count from. The
	// zero time derives it so the newest record maps to Now().
	Epoch time.Time
	// Timebase is raw timestamp units per second; zero disables
	// rebasing (format conversion only).
	Timebase float64
	// Format selects the output encoder. Empty means line protocol.
	Format format.Format
	// Filter is an optional record predicate expression.
	Filter string
	// DefaultTimestamp supplies timestamps for lines that omit one.
	DefaultTimestamp func() int64
	// Now is the clock used for epoch auto-derivation. Defaults to
	// time.Now.
	Now func() time.Time
	// Logger receives run diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Summary describes a completed run.
type Summary struct {
	Records  int
	Earliest int64 // smallest output timestamp, ns when rebased
	Latest   int64 // largest output timestamp, ns when rebased
	Epoch    time.Time
	Rebased  bool
}

// Span is the time covered by the output records.
func (s Summary) Span() time.Duration {
	if s.Records == 0 {
		return 0
	}
	return time.Duration(s.Latest - s.Earliest)
}

// Pipeline is a configured, reusable conversion.
type Pipeline struct {
	opts    Options
	encoder format.Encoder
	filter  *filter.Filter
	logger  *slog.Logger
}

// New validates the options and builds a Pipeline. An invalid timebase
// or filter expression fails here, before any record is read.
func New(opts Options) (*Pipeline, error) {
	if opts.Format == "" {
		opts.Format = format.LineProtocol
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if _, err := rebase.New(opts.Epoch, opts.Timebase); err != nil {
		return nil, err
	}
	encoder, err := format.NewEncoder(opts.Format)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{opts: opts, encoder: encoder, logger: opts.Logger}
	if opts.Filter != "" {
		if p.filter, err = filter.Compile(opts.Filter); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Process decodes, rebases and filters the input, returning the
// corrected record sequence. This is the pull interface the plotter
// consumes; Run adds encoding on top.
func (p *Pipeline) Process(r io.Reader) ([]telemetry.Record, Summary, error) {
	var decodeOpts []lineproto.Option
	if p.opts.DefaultTimestamp != nil {
		decodeOpts = append(decodeOpts, lineproto.WithDefaultTimestamp(p.opts.DefaultTimestamp))
	}
	recs, err := lineproto.DecodeAll(r, decodeOpts...)
	if err != nil {
		return nil, Summary{}, err
	}
	p.logger.Debug("decoded input", "records", len(recs))

	epoch := p.opts.Epoch
	if p.opts.Timebase > 0 && epoch.IsZero() {
		epoch = p.deriveEpoch(recs)
		p.logger.Info("derived epoch from newest record", "epoch", epoch.Format(time.RFC3339))
	}
	rb, err := rebase.New(epoch, p.opts.Timebase)
	if err != nil {
		return nil, Summary{}, err
	}
	recs = rb.RebaseAll(recs)

	if recs, err = p.filter.Apply(recs); err != nil {
		return nil, Summary{}, err
	}

	sum := Summary{Records: len(recs), Epoch: epoch, Rebased: rb.Enabled()}
	for i, rec := range recs {
		if i == 0 || rec.Timestamp < sum.Earliest {
			sum.Earliest = rec.Timestamp
		}
		if i == 0 || rec.Timestamp > sum.Latest {
			sum.Latest = rec.Timestamp
		}
	}
	return recs, sum, nil
}

// Run executes the full conversion from r to w.
func (p *Pipeline) Run(r io.Reader, w io.Writer) (Summary, error) {
	recs, sum, err := p.Process(r)
	if err != nil {
		return Summary{}, err
	}
	if err := p.encoder.Encode(w, recs); err != nil {
		return Summary{}, fmt.Errorf("encode %s: %w", p.opts.Format, err)
	}
	p.logger.Info("conversion complete",
		"records", sum.Records,
		"format", p.opts.Format.String(),
		"span", sum.Span().String(),
	)
	return sum, nil
}

// Encode re-encodes an already processed record slice, used when the
// same records go to several outputs.
func (p *Pipeline) Encode(w io.Writer, recs []telemetry.Record) error {
	return p.encoder.Encode(w, recs)
}

// deriveEpoch places the newest raw timestamp at the current instant,
// the behavior when no reference time is supplied.
func (p *Pipeline) deriveEpoch(recs []telemetry.Record) time.Time {
	var latest int64
	for i, rec := range recs {
		if i == 0 || rec.Timestamp > latest {
			latest = rec.Timestamp
		}
	}
	// Offset of the newest record from the epoch, in nanoseconds.
	rb, _ := rebase.New(time.Unix(0, 0).UTC(), p.opts.Timebase)
	return p.opts.Now().Add(-time.Duration(rb.Absolute(latest))).UTC()
}
