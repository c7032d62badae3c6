package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ctmsim/emu"
	"github.com/sarchlab/ctmsim/tm"
)

var _ = Describe("Tape", func() {
	var tape *emu.Tape

	BeforeEach(func() {
		tape = emu.NewTape(tm.Zero)
	})

	It("should read blank everywhere initially", func() {
		Expect(tape.Read(0)).To(Equal(tm.Zero))
		Expect(tape.Read(-1000)).To(Equal(tm.Zero))
		Expect(tape.Read(1000)).To(Equal(tm.Zero))
	})

	It("should read back written symbols", func() {
		tape.Write(0, tm.One)
		tape.Write(3, tm.One)

		Expect(tape.Read(0)).To(Equal(tm.One))
		Expect(tape.Read(1)).To(Equal(tm.Zero))
		Expect(tape.Read(3)).To(Equal(tm.One))
	})

	It("should grow far to the left", func() {
		tape.Write(0, tm.One)
		tape.Write(-100, tm.One)

		Expect(tape.Read(-100)).To(Equal(tm.One))
		Expect(tape.Read(0)).To(Equal(tm.One))
		Expect(tape.Read(-50)).To(Equal(tm.Zero))
	})

	It("should grow far to the right", func() {
		tape.Write(0, tm.One)
		tape.Write(100, tm.One)

		Expect(tape.Read(100)).To(Equal(tm.One))
		Expect(tape.Read(0)).To(Equal(tm.One))
	})

	It("should report the non-blank window", func() {
		tape.Write(-2, tm.One)
		tape.Write(0, tm.Zero)
		tape.Write(1, tm.One)

		left, cells, ok := tape.Window()
		Expect(ok).To(BeTrue())
		Expect(left).To(Equal(-2))
		Expect(cells).To(Equal([]tm.Symbol{tm.One, tm.Zero, tm.Zero, tm.One}))
	})

	It("should report no window on an all-blank tape", func() {
		tape.Write(5, tm.Zero) // explicit blank write

		_, _, ok := tape.Window()
		Expect(ok).To(BeFalse())
	})

	It("should be blank again after Reset", func() {
		tape.Write(0, tm.One)
		tape.Reset(tm.Zero)

		Expect(tape.Read(0)).To(Equal(tm.Zero))
		_, _, ok := tape.Window()
		Expect(ok).To(BeFalse())
	})

	Context("with blank symbol 1", func() {
		BeforeEach(func() {
			tape = emu.NewTape(tm.One)
		})

		It("should read 1 on unwritten cells", func() {
			Expect(tape.Read(7)).To(Equal(tm.One))
		})

		It("should treat written 0 cells as the window", func() {
			tape.Write(0, tm.Zero)

			left, cells, ok := tape.Window()
			Expect(ok).To(BeTrue())
			Expect(left).To(Equal(0))
			Expect(cells).To(Equal([]tm.Symbol{tm.Zero}))
		})
	})
})
