package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LFSR", func() {
	It("should produce the known stream from the default seed", func() {
		l := NewLFSR(1)

		Expect(l.Next()).To(Equal(uint32(0xd0000001)))
		Expect(l.Next()).To(Equal(uint32(0xb8000001)))
	})

	It("should be deterministic for a given seed", func() {
		a := NewLFSR(0xcafe)
		b := NewLFSR(0xcafe)

		for i := 0; i < 1000; i++ {
			Expect(a.Next()).To(Equal(b.Next()))
		}
	})

	It("should never reach the absorbing zero state", func() {
		l := NewLFSR(1)

		for i := 0; i < 10000; i++ {
			Expect(l.Next()).NotTo(BeZero())
		}
	})

	It("should reject a zero seed", func() {
		Expect(func() { NewLFSR(0) }).To(Panic())
	})
})
