package format

import (
	"io"

	"github.com/auxspace/telhelp/pkg/lineproto"
	"github.com/auxspace/telhelp/pkg/telemetry"
)

// lineProtocolEncoder re-emits records as line protocol, the canonical
// round-trip format.
type lineProtocolEncoder struct{}

func (lineProtocolEncoder) Encode(w io.Writer, recs []telemetry.Record) error {
	return lineproto.EncodeAll(w, recs)
}
