package prefetcher

import "github.com/sarchlab/markovprefetch/internal/accesshistory"

// An Address is an unsigned integer drawn from the configured universe
// [0, N). Out-of-range addresses are a programming error.
type Address = uint32

// Tag re-exports accesshistory.Tag so callers never need to import the
// internal package directly to read an AccessHistory snapshot.
type Tag = accesshistory.Tag

// HistoryEntry re-exports accesshistory.Entry for the same reason.
type HistoryEntry = accesshistory.Entry

// Demand and Prefetch are the two access tags.
const (
	Demand   = accesshistory.Demand
	Prefetch = accesshistory.Prefetch
)

// A PrefetchEvent is the single outcome produced for one input reference.
type PrefetchEvent struct {
	// Address is the input reference.
	Address Address

	// Hit is prefetchHit || demandHit.
	Hit bool
	// PrefetchHit is true iff Address was found in the history tagged
	// Prefetch. PrefetchHit and DemandHit are mutually exclusive.
	PrefetchHit bool
	// DemandHit is true iff Address was found in the history tagged
	// Demand.
	DemandHit bool

	// Prefetch is true iff a speculative prefetch was issued for this
	// reference.
	Prefetch bool
	// PrefetchAddress is defined iff Prefetch is true.
	PrefetchAddress Address

	// AccessHistory is the ordered snapshot of the recency window after
	// all updates for this reference have been applied.
	AccessHistory []HistoryEntry
}
