package fetch

import (
	"datapeek/lib/restyutil"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("datapeek.lib.fetch")

var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
