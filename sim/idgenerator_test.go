package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IDGenerator", func() {
	It("should generate distinct IDs", func() {
		g := GetIDGenerator()

		Expect(g.Generate()).NotTo(Equal(g.Generate()))
	})

	It("should not switch generators after use", func() {
		GetIDGenerator()

		Expect(UseParallelIDGenerator).To(Panic())
	})

	It("should generate xid strings in parallel mode", func() {
		Expect(parallelIDGenerator{}.Generate()).To(HaveLen(20))
	})
})
