package cache

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Stats", func() {
	It("should have no miss rate before any access", func() {
		_, ok := Stats{}.MissRate()
		Expect(ok).To(BeFalse())
	})

	It("should compute the miss rate as a percentage", func() {
		s := Stats{ReadAccesses: 1, ReadMisses: 1, WriteAccesses: 1}

		rate, ok := s.MissRate()
		Expect(ok).To(BeTrue())
		Expect(rate).To(Equal(50.0))
	})

	It("should emit nothing for an idle core", func() {
		var buf bytes.Buffer
		Stats{}.Report(&buf, "I$")

		Expect(buf.Len()).To(BeZero())
	})

	It("should emit the fixed-format report", func() {
		s := Stats{
			ReadAccesses:  1,
			ReadMisses:    1,
			BytesRead:     4,
			WriteAccesses: 1,
			BytesWritten:  8,
			Writebacks:    2,
		}

		var buf bytes.Buffer
		s.Report(&buf, "D$")

		report := buf.String()
		Expect(report).To(ContainSubstring("D$ Bytes Read:            4\n"))
		Expect(report).To(ContainSubstring("D$ Bytes Written:         8\n"))
		Expect(report).To(ContainSubstring("D$ Read Accesses:         1\n"))
		Expect(report).To(ContainSubstring("D$ Write Accesses:        1\n"))
		Expect(report).To(ContainSubstring("D$ Read Misses:           1\n"))
		Expect(report).To(ContainSubstring("D$ Write Misses:          0\n"))
		Expect(report).To(ContainSubstring("D$ Writebacks:            2\n"))
		Expect(report).To(ContainSubstring("D$ Miss Rate:             50.000%\n"))
	})
})
