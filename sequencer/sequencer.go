// Package sequencer implements the six-phase staged form of the
// classifier: Idle, FindHit, UpdateHistory1, FindMostProbable,
// UpdateHistory2, ReportResult. One Tick advances exactly one phase.
//
// A Sequencer holds its own transition table and history window; it
// shares no state with the sequential prefetcher.Prefetcher model but
// must agree with it on every PrefetchEvent it reports for an identical
// address stream under identical N/W/B.
package sequencer

import (
	"fmt"

	"github.com/sarchlab/markovprefetch"
	"github.com/sarchlab/markovprefetch/internal/accesshistory"
	"github.com/sarchlab/markovprefetch/internal/transitiontable"
)

// Phase names the six stages of the classification pipeline.
type Phase int

const (
	Idle Phase = iota
	FindHit
	UpdateHistory1
	FindMostProbable
	UpdateHistory2
	ReportResult
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "Idle"
	case FindHit:
		return "FindHit"
	case UpdateHistory1:
		return "UpdateHistory1"
	case FindMostProbable:
		return "FindMostProbable"
	case UpdateHistory2:
		return "UpdateHistory2"
	case ReportResult:
		return "ReportResult"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// A Sequencer drives the same classification as prefetcher.Prefetcher
// through six explicit clock phases instead of one synchronous call.
type Sequencer struct {
	n int

	tt *transitiontable.Table
	ah *accesshistory.History

	prev      prefetcher.Address
	prevValid bool
	clock     uint64

	phase Phase
	cycle uint64

	pending []prefetcher.Address
	results []prefetcher.PrefetchEvent

	// latched across FindHit -> ReportResult for the in-flight address.
	addr           prefetcher.Address
	hit            bool
	prefetchHit    bool
	demandHit      bool
	predicted      prefetcher.Address
	predictedValid bool
	issued         bool
}

// Push enqueues an address to be classified on a future Tick. addr must
// be in [0, N); an out-of-range address is a programming error and
// panics.
func (s *Sequencer) Push(addr prefetcher.Address) {
	if int(addr) >= s.n {
		panic(fmt.Sprintf(
			"sequencer: address %d out of range [0, %d)", addr, s.n))
	}

	s.pending = append(s.pending, addr)
}

// State returns the current phase.
func (s *Sequencer) State() Phase {
	return s.phase
}

// Cycle returns the number of Idle->FindHit transitions made so far,
// i.e. the number of references that have started classification.
func (s *Sequencer) Cycle() uint64 {
	return s.cycle
}

// Tick advances the sequencer by exactly one phase and reports whether
// it made progress. It returns false only when idle with nothing
// pending.
func (s *Sequencer) Tick() bool {
	switch s.phase {
	case Idle:
		return s.tickIdle()
	case FindHit:
		return s.tickFindHit()
	case UpdateHistory1:
		return s.tickUpdateHistory1()
	case FindMostProbable:
		return s.tickFindMostProbable()
	case UpdateHistory2:
		return s.tickUpdateHistory2()
	case ReportResult:
		return s.tickReportResult()
	default:
		panic(fmt.Sprintf("sequencer: unknown phase %d", int(s.phase)))
	}
}

func (s *Sequencer) tickIdle() bool {
	if len(s.pending) == 0 {
		return false
	}

	s.addr = s.pending[0]
	s.pending = s.pending[1:]
	s.cycle++
	s.phase = FindHit

	return true
}

func (s *Sequencer) tickFindHit() bool {
	tag, found := s.ah.FindTag(s.addr)

	switch {
	case !found:
		s.hit, s.prefetchHit, s.demandHit = false, false, false
	case tag == prefetcher.Prefetch:
		s.ah.PromoteToDemand(s.addr)
		s.hit, s.prefetchHit, s.demandHit = true, true, false
	default:
		s.hit, s.prefetchHit, s.demandHit = true, false, true
	}

	s.phase = UpdateHistory1

	return true
}

func (s *Sequencer) tickUpdateHistory1() bool {
	if !s.hit && s.prevValid {
		s.tt.Observe(int(s.prev), int(s.addr))
	}

	s.ah.InsertDemand(s.addr, s.tick())
	s.phase = FindMostProbable

	return true
}

func (s *Sequencer) tickFindMostProbable() bool {
	succ, ok := s.tt.MostProbableSuccessor(int(s.addr))
	s.predictedValid = ok
	if ok {
		s.predicted = prefetcher.Address(succ)
	}

	s.phase = UpdateHistory2

	return true
}

func (s *Sequencer) tickUpdateHistory2() bool {
	s.issued = false

	if s.predictedValid && !s.ah.Contains(s.predicted) {
		s.ah.InsertPrefetch(s.predicted, s.tick())
		s.issued = true
	}

	s.phase = ReportResult

	return true
}

func (s *Sequencer) tickReportResult() bool {
	evt := prefetcher.PrefetchEvent{
		Address:       s.addr,
		Hit:           s.hit,
		PrefetchHit:   s.prefetchHit,
		DemandHit:     s.demandHit,
		Prefetch:      s.issued,
		AccessHistory: s.ah.Snapshot(),
	}
	if s.issued {
		evt.PrefetchAddress = s.predicted
	}

	s.results = append(s.results, evt)

	s.prev = s.addr
	s.prevValid = true
	s.phase = Idle

	return true
}

func (s *Sequencer) tick() uint64 {
	s.clock++

	return s.clock
}

// Drain returns every PrefetchEvent reported since the last Drain (or
// construction) and clears the internal buffer.
func (s *Sequencer) Drain() []prefetcher.PrefetchEvent {
	out := s.results
	s.results = nil

	return out
}

// Run pushes every address in addrs and ticks the sequencer to
// completion, returning one PrefetchEvent per address in order. It is
// a convenience for callers that do not need phase-by-phase control.
func (s *Sequencer) Run(addrs []prefetcher.Address) []prefetcher.PrefetchEvent {
	for _, a := range addrs {
		s.Push(a)
	}

	for len(s.results) < len(addrs) || s.phase != Idle {
		s.Tick()
	}

	return s.Drain()
}

// CurrentAddress returns the address latched for the in-flight
// classification and true, or the zero value and false while Idle with
// nothing yet pulled off the pending queue.
func (s *Sequencer) CurrentAddress() (prefetcher.Address, bool) {
	if s.phase == Idle {
		return 0, false
	}

	return s.addr, true
}

// PreviousAddress returns the latched previous address and whether it
// is valid (it is invalid only before the first completed cycle after
// construction or Reset).
func (s *Sequencer) PreviousAddress() (prefetcher.Address, bool) {
	return s.prev, s.prevValid
}

// PredictedAddress returns the most-probable successor computed for
// the in-flight address and whether one exists. It is computed by the
// Tick that runs the FindMostProbable phase, so it is only meaningful
// once State() has moved past FindMostProbable; before that it reports
// the prior cycle's prediction.
func (s *Sequencer) PredictedAddress() (prefetcher.Address, bool) {
	return s.predicted, s.predictedValid
}

// PredictedInHistory reports whether the predicted address was already
// present in the access history when UpdateHistory2 ran, i.e. whether
// the prediction was suppressed rather than issued as a prefetch.
func (s *Sequencer) PredictedInHistory() bool {
	return s.predictedValid && !s.issued
}

// AccessHistorySnapshot returns a read-only copy of the history window.
func (s *Sequencer) AccessHistorySnapshot() []prefetcher.HistoryEntry {
	return s.ah.Snapshot()
}

// TransitionTableSnapshot returns a read-only copy of the full N×N
// transition matrix.
func (s *Sequencer) TransitionTableSnapshot() [][]uint32 {
	return s.tt.Snapshot()
}

// Reset clears the transition table, the history window, the
// previous-address latch, and any pending or undrained work, returning
// the instance to the state of a freshly built one.
func (s *Sequencer) Reset() {
	s.tt.Reset()
	s.ah.Reset()
	s.prev = 0
	s.prevValid = false
	s.clock = 0
	s.cycle = 0
	s.phase = Idle
	s.pending = nil
	s.results = nil
	s.addr = 0
	s.hit, s.prefetchHit, s.demandHit = false, false, false
	s.predicted = 0
	s.predictedValid = false
	s.issued = false
}
