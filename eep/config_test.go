package eep_test

import (
	"encoding/binary"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sigurn/crc16"

	"github.com/sarchlab/flexee/eep"
	"github.com/sarchlab/flexee/routine"
)

func referenceChecksum(c *eep.Config) uint16 {
	buf := []byte{uint8(c.DefaultMode)}
	for _, v := range []uint32{
		c.Limits.FastRead, c.Limits.FastWrite,
		c.Limits.SlowRead, c.Limits.SlowWrite,
	} {
		buf = binary.BigEndian.AppendUint32(buf, v)
	}

	return crc16.Checksum(buf, crc16.MakeTable(crc16.CRC16_XMODEM))
}

var _ = Describe("Config", func() {
	It("should checksum the mode and the limits", func() {
		cfg := testConfig()

		Expect(cfg.ComputeChecksum()).To(Equal(referenceChecksum(cfg)))
		Expect(cfg.Checksum).To(Equal(cfg.ComputeChecksum()))
	})

	It("should checksum an all-zero configuration to zero", func() {
		cfg := &eep.Config{}

		Expect(cfg.ComputeChecksum()).To(Equal(uint16(0)))
		Expect(referenceChecksum(cfg)).To(Equal(uint16(0)))
	})

	It("should change the checksum with the mode", func() {
		cfg := testConfig()
		before := cfg.Checksum

		cfg.DefaultMode = eep.ModeFast
		Expect(cfg.ComputeChecksum()).NotTo(Equal(before))
	})

	It("should not checksum the device size", func() {
		cfg := testConfig()
		cfg.DeviceSize = 256

		Expect(cfg.ComputeChecksum()).To(Equal(cfg.Checksum))
	})

	It("should accept the default configuration", func() {
		Expect(eep.DefaultConfig().Validate(eep.DefaultFeatures())).To(Succeed())
	})

	It("should reject a zero limit", func() {
		cfg := testConfig()
		cfg.Limits.SlowRead = 0

		Expect(cfg.Validate(eep.DefaultFeatures())).NotTo(Succeed())
	})

	It("should want word multiples with quick writes", func() {
		cfg := testConfig()
		cfg.Limits.SlowWrite = 6

		Expect(cfg.Validate(eep.DefaultFeatures())).NotTo(Succeed())

		f := eep.DefaultFeatures()
		f.QuickWrites = false
		Expect(cfg.Validate(f)).To(Succeed())
	})

	It("should reject a device larger than FlexRAM", func() {
		cfg := testConfig()
		cfg.DeviceSize = 0x2000

		Expect(cfg.Validate(eep.DefaultFeatures())).NotTo(Succeed())
	})

	It("should reject swapped routines", func() {
		cfg := testConfig()
		cfg.EraseRoutine, cfg.WriteRoutine = cfg.WriteRoutine, cfg.EraseRoutine

		Expect(cfg.Validate(eep.DefaultFeatures())).NotTo(Succeed())
	})

	It("should reject an erase routine storing another value", func() {
		cfg := testConfig()
		cfg.EraseRoutine = routine.NewEraseRoutine(0x00)

		Expect(cfg.Validate(eep.DefaultFeatures())).NotTo(Succeed())
	})
})
