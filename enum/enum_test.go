package enum_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ctmsim/enum"
	"github.com/sarchlab/ctmsim/tm"
)

var _ = Describe("Enumeration spaces", func() {
	It("should size the raw space as (4n+2)^(2n)", func() {
		Expect(enum.RawSize(1)).To(Equal(uint64(36)))
		Expect(enum.RawSize(2)).To(Equal(uint64(10000)))
		Expect(enum.RawSize(3)).To(Equal(uint64(7529536)))
	})

	It("should size the reduced set as 2(n-1)(4n+2)^(2n-1)", func() {
		Expect(enum.ReducedSize(1)).To(Equal(uint64(0)))
		Expect(enum.ReducedSize(2)).To(Equal(uint64(2000)))
		Expect(enum.ReducedSize(3)).To(Equal(uint64(2151296)))
	})

	It("should have no reduced ranges for n=1", func() {
		ranges, err := enum.ReducedRanges(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(ranges).To(BeEmpty())
	})

	It("should lay out reduced ranges by initial digit", func() {
		ranges, err := enum.ReducedRanges(2)
		Expect(err).NotTo(HaveOccurred())
		Expect(ranges).To(Equal([]enum.Range{
			{Lo: 7000, Hi: 8000},
			{Lo: 9000, Hi: 10000},
		}))
		Expect(enum.TotalLen(ranges)).To(Equal(uint64(2000)))
	})

	It("should match ReducedSize for every tested n", func() {
		for n := 1; n <= 3; n++ {
			ranges, err := enum.ReducedRanges(n)
			Expect(err).NotTo(HaveOccurred())

			size, err := enum.ReducedSize(n)
			Expect(err).NotTo(HaveOccurred())
			Expect(enum.TotalLen(ranges)).To(Equal(size))
		}
	})

	It("should only contain machines whose initial transition moves right into 2..n", func() {
		ranges, err := enum.ReducedRanges(3)
		Expect(err).NotTo(HaveOccurred())

		for _, r := range ranges {
			// The initial digit is constant over a sub-range; its two
			// ends decode identically there.
			for _, index := range []uint64{r.Lo, r.Hi - 1} {
				table, err := tm.Decode(index, 3)
				Expect(err).NotTo(HaveOccurred())

				tr, ok := table.Lookup(tm.StartState, tm.Zero)
				Expect(ok).To(BeTrue())
				Expect(tr.Move).To(Equal(tm.MoveRight))
				Expect(tr.Next).To(BeNumerically(">=", 2))
				Expect(tr.Next).To(BeNumerically("<=", 3))
			}
		}
	})

	It("should reject unsupported state counts", func() {
		_, err := enum.RawSize(tm.MaxStates + 1)
		Expect(err).To(MatchError(tm.ErrIndexOutOfRange))

		_, err = enum.ReducedRanges(0)
		Expect(err).To(MatchError(tm.ErrIndexOutOfRange))
	})
})

var _ = Describe("Chunks", func() {
	ranges := []enum.Range{{Lo: 0, Hi: 10}, {Lo: 20, Hi: 30}}

	It("should split ranges into batch-sized chunks", func() {
		chunks := enum.Chunks(ranges, 0, 0, 4)
		Expect(chunks).To(Equal([]enum.Range{
			{Lo: 0, Hi: 4}, {Lo: 4, Hi: 8}, {Lo: 8, Hi: 10},
			{Lo: 20, Hi: 24}, {Lo: 24, Hi: 28}, {Lo: 28, Hi: 30},
		}))
	})

	It("should skip before applying the limit", func() {
		chunks := enum.Chunks(ranges, 4, 10, 4)
		Expect(chunks).To(Equal([]enum.Range{
			{Lo: 4, Hi: 8}, {Lo: 8, Hi: 10},
			{Lo: 20, Hi: 24},
		}))
		Expect(enum.TotalLen(chunks)).To(Equal(uint64(10)))
	})

	It("should skip across range boundaries", func() {
		chunks := enum.Chunks(ranges, 12, 0, 100)
		Expect(chunks).To(Equal([]enum.Range{{Lo: 22, Hi: 30}}))
	})

	It("should produce nothing when everything is skipped", func() {
		Expect(enum.Chunks(ranges, 20, 0, 4)).To(BeEmpty())
	})

	It("should cover every index exactly once", func() {
		chunks := enum.Chunks(ranges, 3, 0, 5)

		seen := map[uint64]int{}
		for _, c := range chunks {
			for i := c.Lo; i < c.Hi; i++ {
				seen[i]++
			}
		}
		Expect(seen).To(HaveLen(17))
		for _, count := range seen {
			Expect(count).To(Equal(1))
		}
	})
})
