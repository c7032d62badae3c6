package dist_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ctmsim/dist"
	"github.com/sarchlab/ctmsim/emu"
)

func halted(output string) emu.RunResult {
	return emu.RunResult{Status: emu.StatusHalted, Output: output}
}

func filtered(reason string) emu.RunResult {
	return emu.RunResult{Status: emu.StatusFiltered, Reason: reason}
}

var timeout = emu.RunResult{Status: emu.StatusTimeout}

var _ = Describe("String helpers", func() {
	It("should reverse strings", func() {
		Expect(dist.Reverse("")).To(Equal(""))
		Expect(dist.Reverse("100")).To(Equal("001"))
		Expect(dist.Reverse("01")).To(Equal("10"))
	})

	It("should complement binary strings", func() {
		Expect(dist.Complement("")).To(Equal(""))
		Expect(dist.Complement("100")).To(Equal("011"))
		Expect(dist.Complement("01")).To(Equal("10"))
	})
})

var _ = Describe("Aggregator", func() {
	var agg *dist.Aggregator

	BeforeEach(func() {
		agg = dist.NewAggregator(2)
	})

	Describe("Record", func() {
		It("should keep processed = halting + non-halting", func() {
			outcomes := []emu.RunResult{
				halted("1"), halted(""), halted("1"),
				timeout,
				filtered(emu.ReasonEscapee),
				filtered(emu.ReasonCycleTwo),
				filtered(emu.ReasonNoHaltTransition),
			}
			for _, o := range outcomes {
				agg.Record(o)
			}

			Expect(agg.TotalProcessedRaw).To(Equal(uint64(7)))
			Expect(agg.TotalHaltingRaw).To(Equal(uint64(3)))
			Expect(agg.NonHaltingTotal()).To(Equal(uint64(4)))
			Expect(agg.TotalProcessedRaw).To(Equal(agg.TotalHaltingRaw + agg.NonHaltingTotal()))

			Expect(agg.OutputCounts).To(Equal(map[string]uint64{"1": 2, "": 1}))
			Expect(agg.NonHaltingReasons).To(Equal(map[string]uint64{
				dist.ReasonTimeout:         1,
				emu.ReasonEscapee:          1,
				emu.ReasonCycleTwo:         1,
				emu.ReasonNoHaltTransition: 1,
			}))
		})

		It("should count halted output sums equal to halting total", func() {
			for i := 0; i < 5; i++ {
				agg.Record(halted("01"))
			}
			agg.Record(halted("10"))

			var sum uint64
			for _, c := range agg.OutputCounts {
				sum += c
			}
			Expect(sum).To(Equal(agg.TotalHaltingRaw))
		})
	})

	Describe("Merge", func() {
		outcomes := []emu.RunResult{
			halted("0"), halted("0"), halted("11"), halted(""),
			timeout, timeout,
			filtered(emu.ReasonEscapee),
			filtered(emu.ReasonNoHaltTransition),
			halted("101"),
		}

		// mergeBy partitions the outcomes into tallies of the given
		// sizes and merges them in the given order.
		mergeBy := func(sizes []int, order []int) *dist.Aggregator {
			var tallies []*dist.Tally
			i := 0
			for _, size := range sizes {
				t := dist.NewTally()
				for j := 0; j < size; j++ {
					t.Record(outcomes[i])
					i++
				}
				tallies = append(tallies, t)
			}

			a := dist.NewAggregator(2)
			for _, idx := range order {
				a.Merge(tallies[idx])
			}
			return a
		}

		It("should be independent of chunking and merge order", func() {
			direct := dist.NewAggregator(2)
			for _, o := range outcomes {
				direct.Record(o)
			}

			merged := [](*dist.Aggregator){
				mergeBy([]int{9}, []int{0}),
				mergeBy([]int{3, 3, 3}, []int{0, 1, 2}),
				mergeBy([]int{3, 3, 3}, []int{2, 0, 1}),
				mergeBy([]int{1, 4, 4}, []int{1, 2, 0}),
			}
			for _, a := range merged {
				Expect(a.OutputCounts).To(Equal(direct.OutputCounts))
				Expect(a.NonHaltingReasons).To(Equal(direct.NonHaltingReasons))
				Expect(a.TotalProcessedRaw).To(Equal(direct.TotalProcessedRaw))
				Expect(a.TotalHaltingRaw).To(Equal(direct.TotalHaltingRaw))
			}
		})
	})

	Describe("ApplyCompletionRules", func() {
		It("should match the reference arithmetic", func() {
			agg.Record(halted("0"))

			Expect(agg.ApplyCompletionRules(4)).To(Succeed())

			Expect(agg.EffectiveOutputCounts).To(Equal(map[string]uint64{
				"0": 6, "1": 6,
			}))
			Expect(agg.EffectiveHalting).To(Equal(uint64(12)))
			Expect(agg.EffectiveNonHalting).To(Equal(uint64(16)))
			Expect(agg.EffectiveTotal).To(Equal(uint64(28)))

			Expect(agg.CalculateD()).To(Succeed())
			Expect(agg.DDistribution).To(HaveLen(2))
			Expect(agg.DDistribution["0"]).To(BeNumerically("~", 0.5, 1e-12))
			Expect(agg.DDistribution["1"]).To(BeNumerically("~", 0.5, 1e-12))
		})

		It("should close the effective counts under reverse and complement", func() {
			agg.Record(halted("100"))
			agg.Record(halted("100"))
			agg.Record(halted("01"))
			agg.Record(timeout)

			Expect(agg.ApplyCompletionRules(8)).To(Succeed())

			counts := agg.EffectiveOutputCounts
			for s, c := range counts {
				Expect(counts[dist.Reverse(s)]).To(Equal(c),
					"reverse of %q missing or unequal", s)
				Expect(counts[dist.Complement(s)]).To(Equal(c),
					"complement of %q missing or unequal", s)
			}
		})

		It("should account for every orbit in the effective total", func() {
			agg.Record(halted("0"))
			agg.Record(halted("11"))
			agg.Record(timeout)
			agg.Record(filtered(emu.ReasonEscapee))

			Expect(agg.ApplyCompletionRules(4)).To(Succeed())

			// subspace S = 4 / (2*(2-1)) = 2; the total is
			// 2*(2*M + 6S) = 4M + 12S.
			Expect(agg.EffectiveTotal).To(Equal(uint64(4*4 + 12*2)))
			Expect(agg.EffectiveTotal).To(Equal(agg.EffectiveHalting + agg.EffectiveNonHalting))
		})

		It("should refuse to complete a single-state campaign", func() {
			one := dist.NewAggregator(1)
			one.Record(halted("0"))

			Expect(one.ApplyCompletionRules(4)).NotTo(Succeed())
		})
	})

	Describe("CalculateD", func() {
		It("should normalise raw counts to a unit sum", func() {
			agg.Record(halted("0"))
			agg.Record(halted("0"))
			agg.Record(halted("1"))
			agg.Record(timeout)

			Expect(agg.CalculateD()).To(Succeed())

			var sum float64
			for _, p := range agg.DDistribution {
				sum += p
			}
			Expect(sum).To(BeNumerically("~", 1.0, 1e-9))
			Expect(agg.DDistribution["0"]).To(BeNumerically("~", 2.0/3.0, 1e-12))
		})

		It("should fail with no halting machines", func() {
			agg.Record(timeout)

			Expect(agg.CalculateD()).To(MatchError(dist.ErrEmptyDistribution))
		})
	})
})
