// Package prefetcher implements the core decision engine of a Markov
// prefetcher: a first-order transition-table learner, a bounded
// demand/prefetch recency window, and the classification logic that
// turns one input address into at most one speculative prefetch.
//
// This package is the sequential reference model described by the
// specification. A second, behaviorally identical model is available in
// the sibling package sequencer, which drives the same classification
// through six explicit clock-driven phases for hardware-style
// introspection.
package prefetcher

import (
	"fmt"

	"github.com/sarchlab/markovprefetch/internal/accesshistory"
	"github.com/sarchlab/markovprefetch/internal/transitiontable"
)

// A Prefetcher observes a stream of addresses and predicts the next one.
// All state is owned by the instance; concurrent mutation from multiple
// goroutines is not supported, matching the single-threaded,
// cooperative resource model the core is specified to have.
type Prefetcher struct {
	n int

	tt *transitiontable.Table
	ah *accesshistory.History

	prev      Address
	prevValid bool

	clock uint64
}

// N returns the configured address-space size.
func (p *Prefetcher) N() int {
	return p.n
}

// Reference processes one input address and returns the resulting
// PrefetchEvent. addr must be in [0, N); an out-of-range address is a
// programming error and panics.
func (p *Prefetcher) Reference(addr Address) PrefetchEvent {
	if int(addr) >= p.n {
		panic(fmt.Sprintf(
			"prefetcher: address %d out of range [0, %d)", addr, p.n))
	}

	hit, prefetchHit, demandHit := p.classifyHit(addr)

	if !hit && p.prevValid {
		p.tt.Observe(int(p.prev), int(addr))
	}

	p.ah.InsertDemand(addr, p.tick())

	prefetch, prefetchAddr := p.predictAndInsert(addr)

	p.prev = addr
	p.prevValid = true

	return PrefetchEvent{
		Address:         addr,
		Hit:             hit,
		PrefetchHit:     prefetchHit,
		DemandHit:       demandHit,
		Prefetch:        prefetch,
		PrefetchAddress: prefetchAddr,
		AccessHistory:   p.ah.Snapshot(),
	}
}

// classifyHit scans the history for addr, promoting it to Demand in
// place when it was found tagged Prefetch.
func (p *Prefetcher) classifyHit(addr Address) (hit, prefetchHit, demandHit bool) {
	tag, found := p.ah.FindTag(addr)
	if !found {
		return false, false, false
	}

	if tag == Prefetch {
		p.ah.PromoteToDemand(addr)

		return true, true, false
	}

	return true, false, true
}

// predictAndInsert queries the transition table for the most probable
// successor of addr and, if it is not already in the history, inserts
// it as a Prefetch entry.
func (p *Prefetcher) predictAndInsert(addr Address) (issued bool, predicted Address) {
	succ, ok := p.tt.MostProbableSuccessor(int(addr))
	if !ok {
		return false, 0
	}

	predicted = Address(succ)
	if p.ah.Contains(predicted) {
		return false, 0
	}

	p.ah.InsertPrefetch(predicted, p.tick())

	return true, predicted
}

func (p *Prefetcher) tick() uint64 {
	p.clock++

	return p.clock
}

// Reset clears the transition table, the history window, and the
// previous-address latch, returning the instance to the state of a
// freshly built one.
func (p *Prefetcher) Reset() {
	p.tt.Reset()
	p.ah.Reset()
	p.prev = 0
	p.prevValid = false
	p.clock = 0
}

// AccessHistorySnapshot returns a read-only copy of the history window.
func (p *Prefetcher) AccessHistorySnapshot() []HistoryEntry {
	return p.ah.Snapshot()
}

// TransitionTableSnapshot returns a read-only copy of the full N×N
// transition matrix.
func (p *Prefetcher) TransitionTableSnapshot() [][]uint32 {
	return p.tt.Snapshot()
}

// PreviousAddress returns the latched previous address and whether it is
// valid (it is invalid only before the first reference after
// construction or Reset).
func (p *Prefetcher) PreviousAddress() (Address, bool) {
	return p.prev, p.prevValid
}
