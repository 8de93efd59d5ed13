package sequencer

import (
	"github.com/sarchlab/markovprefetch/internal/accesshistory"
	"github.com/sarchlab/markovprefetch/internal/transitiontable"
)

// Builder builds Sequencers.
type Builder struct {
	n    int
	w    int
	bits uint
}

// MakeBuilder creates a new builder with the same defaults as
// prefetcher.MakeBuilder: N=32, W=5, B=8.
func MakeBuilder() Builder {
	return Builder{
		n:    32,
		w:    5,
		bits: 8,
	}
}

// WithAddressSpaceSize sets N, the size of the address universe [0, N).
func (b Builder) WithAddressSpaceSize(n int) Builder {
	b.n = n
	return b
}

// WithHistoryWindow sets W, the capacity of the access-history window.
func (b Builder) WithHistoryWindow(w int) Builder {
	b.w = w
	return b
}

// WithCounterWidth sets B, the bit width of each transition-table
// counter; counters saturate at 2^B-1.
func (b Builder) WithCounterWidth(bits uint) Builder {
	b.bits = bits
	return b
}

// Build builds a Sequencer. It panics if N, W, or B were configured
// with invalid values.
func (b Builder) Build() *Sequencer {
	if b.w <= 0 {
		panic("sequencer: history window W must be positive")
	}

	return &Sequencer{
		n:     b.n,
		tt:    transitiontable.New(b.n, b.bits),
		ah:    accesshistory.NewHistory(b.w),
		phase: Idle,
	}
}
