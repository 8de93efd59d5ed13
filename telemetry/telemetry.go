// Package telemetry records PrefetchEvents to a durable SQLite trace
// for offline analysis. Nothing here has any bearing on the predictor's
// own correctness: a sink only ever observes events that the core has
// already finished producing.
package telemetry

import (
	"github.com/sarchlab/markovprefetch"
)

//go:generate mockgen -destination mockeventsink_test.go -package telemetry github.com/sarchlab/markovprefetch/telemetry EventSink

// EventSink is anything that can durably record a stream of
// PrefetchEvents. Record must not block the caller for longer than a
// buffered append; implementations that need to do I/O should batch
// and flush asynchronously or on a size threshold.
type EventSink interface {
	// Record buffers evt for eventual persistence.
	Record(evt prefetcher.PrefetchEvent)

	// Flush forces any buffered events to be written out immediately.
	Flush()
}

// RecordAll hands every event to sink in order, then flushes once.
// Callers that classify a whole batch of addresses up front (rather
// than streaming one at a time) use this instead of driving Record and
// Flush themselves.
func RecordAll(sink EventSink, events []prefetcher.PrefetchEvent) {
	for _, evt := range events {
		sink.Record(evt)
	}

	sink.Flush()
}
