package memory_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/flexee/memory"
)

var _ = Describe("Storage", func() {
	It("should read and write in single unit", func() {
		storage := memory.NewStorage(4096)
		Expect(storage.Write(0, []byte{1, 2, 3, 4})).To(Succeed())

		res, err := storage.Read(0, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal([]byte{1, 2}))

		res, _ = storage.Read(1, 2)
		Expect(res).To(Equal([]byte{2, 3}))
	})

	It("should read and write across units", func() {
		storage := memory.NewStorageWithUnitSize(8192, 4096)
		Expect(storage.Write(4094, []byte{1, 2, 3, 4})).To(Succeed())

		res, _ := storage.Read(4094, 4)
		Expect(res).To(Equal([]byte{1, 2, 3, 4}))
	})

	It("should read untouched bytes as erased", func() {
		storage := memory.NewStorage(1024)
		Expect(storage.Write(256, []byte{0x11})).To(Succeed())

		res, _ := storage.Read(254, 4)
		Expect(res).To(Equal([]byte{0xFF, 0xFF, 0x11, 0xFF}))
	})

	It("should honor a custom erased value", func() {
		storage := memory.NewStorage(64).WithErasedValue(0x00)

		res, _ := storage.Read(0, 2)
		Expect(res).To(Equal([]byte{0, 0}))
	})

	It("should erase a range", func() {
		storage := memory.NewStorage(64)
		Expect(storage.Write(0, []byte{1, 2, 3, 4})).To(Succeed())
		Expect(storage.Erase(1, 2)).To(Succeed())

		res, _ := storage.Read(0, 4)
		Expect(res).To(Equal([]byte{1, 0xFF, 0xFF, 4}))
	})

	It("should return error if accessing over the capacity", func() {
		storage := memory.NewStorage(4096)
		err := storage.Write(4096, []byte{1})
		Expect(errors.Is(err, memory.ErrOutOfRange)).To(BeTrue())

		_, err = storage.Read(4095, 2)
		Expect(errors.Is(err, memory.ErrOutOfRange)).To(BeTrue())
	})
})
