package sequencer_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/markovprefetch"
	"github.com/sarchlab/markovprefetch/sequencer"
)

var _ = Describe("Sequencer", func() {
	var s *sequencer.Sequencer

	BeforeEach(func() {
		s = sequencer.MakeBuilder().
			WithAddressSpaceSize(32).
			WithHistoryWindow(5).
			WithCounterWidth(8).
			Build()
	})

	It("should panic when an out-of-range address is pushed", func() {
		Expect(func() { s.Push(32) }).To(Panic())
	})

	It("should advance through all six phases for one address", func() {
		s.Push(3)

		Expect(s.Tick()).To(BeTrue())
		Expect(s.State()).To(Equal(sequencer.FindHit))

		Expect(s.Tick()).To(BeTrue())
		Expect(s.State()).To(Equal(sequencer.UpdateHistory1))

		Expect(s.Tick()).To(BeTrue())
		Expect(s.State()).To(Equal(sequencer.FindMostProbable))

		Expect(s.Tick()).To(BeTrue())
		Expect(s.State()).To(Equal(sequencer.UpdateHistory2))

		Expect(s.Tick()).To(BeTrue())
		Expect(s.State()).To(Equal(sequencer.ReportResult))

		Expect(s.Tick()).To(BeTrue())
		Expect(s.State()).To(Equal(sequencer.Idle))

		results := s.Drain()
		Expect(results).To(HaveLen(1))
		Expect(results[0].Address).To(Equal(prefetcher.Address(3)))
		Expect(results[0].Hit).To(BeFalse())
	})

	It("should report false and make no progress when idle with nothing pending", func() {
		Expect(s.Tick()).To(BeFalse())
		Expect(s.State()).To(Equal(sequencer.Idle))
	})

	It("should produce one event per pushed address via Run", func() {
		events := s.Run([]prefetcher.Address{0, 1, 2})
		Expect(events).To(HaveLen(3))
		Expect(s.State()).To(Equal(sequencer.Idle))
	})

	DescribeTable("should match the sequential model event-for-event",
		func(addrs []prefetcher.Address) {
			p := prefetcher.MakeBuilder().
				WithAddressSpaceSize(32).
				WithHistoryWindow(5).
				WithCounterWidth(8).
				Build()

			var want []prefetcher.PrefetchEvent
			for _, a := range addrs {
				want = append(want, p.Reference(a))
			}

			got := s.Run(addrs)

			Expect(got).To(Equal(want))
		},
		Entry("sequential walk", []prefetcher.Address{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}),
		Entry("immediate repeat", []prefetcher.Address{7, 7, 7}),
		Entry("interleaved, never self-predicting",
			[]prefetcher.Address{1, 0, 3, 2, 5, 4, 7, 6, 9, 8}),
		Entry("repeated pattern with a prefetch hit",
			[]prefetcher.Address{0, 1, 2, 3, 4, 5, 0, 1, 2, 3, 4, 5}),
		Entry("strided then revisited",
			[]prefetcher.Address{0, 2, 4, 6, 8, 0, 2, 4, 6, 8, 0, 2}),
	)

	It("should expose current/previous/predicted addresses as the cycle progresses", func() {
		s.Push(3)

		addr, ok := s.CurrentAddress()
		Expect(ok).To(BeFalse())
		Expect(addr).To(Equal(prefetcher.Address(0)))

		s.Tick() // -> FindHit
		addr, ok = s.CurrentAddress()
		Expect(ok).To(BeTrue())
		Expect(addr).To(Equal(prefetcher.Address(3)))

		_, prevOk := s.PreviousAddress()
		Expect(prevOk).To(BeFalse())

		s.Tick() // -> UpdateHistory1
		s.Tick() // -> FindMostProbable
		s.Tick() // -> UpdateHistory2
		s.Tick() // -> ReportResult
		s.Tick() // -> Idle

		_, ok = s.CurrentAddress()
		Expect(ok).To(BeFalse())

		prev, prevOk := s.PreviousAddress()
		Expect(prevOk).To(BeTrue())
		Expect(prev).To(Equal(prefetcher.Address(3)))
	})

	It("should report a suppressed prediction as already present in history", func() {
		s.Run([]prefetcher.Address{0, 1, 0})

		predicted, ok := s.PredictedAddress()
		Expect(ok).To(BeTrue())
		Expect(predicted).To(Equal(prefetcher.Address(1)))
		Expect(s.PredictedInHistory()).To(BeTrue())
	})

	It("should reset to the state of a freshly built instance", func() {
		s.Run([]prefetcher.Address{0, 1, 2, 3, 4, 5})

		s.Reset()

		Expect(s.State()).To(Equal(sequencer.Idle))
		Expect(s.Cycle()).To(BeZero())
		Expect(s.AccessHistorySnapshot()).To(BeEmpty())

		fresh := sequencer.MakeBuilder().
			WithAddressSpaceSize(32).
			WithHistoryWindow(5).
			WithCounterWidth(8).
			Build()

		Expect(s.Run([]prefetcher.Address{0})).To(Equal(fresh.Run([]prefetcher.Address{0})))
	})
})
