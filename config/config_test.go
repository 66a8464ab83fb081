package config_test

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/flexee/config"
	"github.com/sarchlab/flexee/eep"
	"github.com/sarchlab/flexee/ftfc"
	"github.com/sarchlab/flexee/regs"
)

var _ = Describe("Parse", func() {
	It("should fall back to the defaults", func() {
		s, err := config.Parse(nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(s.Config.Limits).To(Equal(eep.DefaultConfig().Limits))
		Expect(s.Config.Checksum).To(Equal(eep.DefaultConfig().Checksum))
		Expect(s.Features).To(Equal(eep.DefaultFeatures()))
		Expect(s.Device).To(Equal(ftfc.Defaults()))
	})

	It("should apply the given keys", func() {
		s, err := config.Parse(map[string]string{
			config.KeyDeviceSize:   "1024",
			config.KeyMode:         "Fast",
			config.KeySlowWrite:    "0x10",
			config.KeyErasedValue:  "0x00",
			config.KeyAsyncWrites:  "false",
			config.KeyTimeout:      "500",
			config.KeyEventWrite:   "7",
			config.KeyWriteLatency: "3",
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(s.Config.DeviceSize).To(Equal(uint32(1024)))
		Expect(s.Config.DefaultMode).To(Equal(eep.ModeFast))
		Expect(s.Config.Limits.SlowWrite).To(Equal(uint32(16)))
		Expect(s.Config.ErasedValue).To(Equal(uint8(0)))
		Expect(s.Config.ProductionErrors.Write).To(Equal(uint16(7)))
		Expect(s.Config.Checksum).To(Equal(s.Config.ComputeChecksum()))
		Expect(s.Features.AsyncWrites).To(BeFalse())
		Expect(s.Features.TimeoutIterations).To(Equal(uint32(500)))
		Expect(s.Device.WriteLatency).To(Equal(3))
		Expect(s.Device.ErasedValue).To(Equal(uint8(0)))
		Expect(s.Config.Validate(s.Features)).To(Succeed())
	})

	DescribeTable("should reject bad values",
		func(key, value string) {
			_, err := config.Parse(map[string]string{key: value})

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(key))
		},
		Entry("not a number", config.KeyFastRead, "many"),
		Entry("out of range", config.KeyErasedValue, "0x100"),
		Entry("not a boolean", config.KeyCancel, "sometimes"),
		Entry("unknown mode", config.KeyMode, "turbo"),
		Entry("not an integer", config.KeyQuickLatency, "1.5"),
	)

	It("should reject a device larger than the EEPROM partition", func() {
		_, err := config.Parse(map[string]string{
			config.KeyDeviceSize: "4096",
			config.KeyEEESize:    "512",
		})

		Expect(err).To(MatchError(ContainSubstring(config.KeyDeviceSize)))
		Expect(err).To(MatchError(ContainSubstring(config.KeyEEESize)))
	})

	It("should accept a device that fills the EEPROM partition", func() {
		s, err := config.Parse(map[string]string{
			config.KeyDeviceSize: "512",
			config.KeyEEESize:    "512",
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(s.Validate()).To(Succeed())
	})

	It("should reject a device that cannot be built", func() {
		_, err := config.Parse(map[string]string{config.KeyWriteLatency: "0"})

		Expect(err).To(HaveOccurred())
	})

	It("should keep a given checksum", func() {
		s, err := config.Parse(map[string]string{config.KeyChecksum: "0x1234"})
		Expect(err).NotTo(HaveOccurred())

		d := eep.MakeBuilder().
			WithRegisters(regs.New(ftfc.NewDevice(s.Device))).
			WithFeatures(s.Features).
			Build("EEP")

		Expect(errors.Is(d.Init(s.Config), eep.ErrInitFailed)).To(BeTrue())
	})
})

var _ = Describe("Load", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("should read back what was written", func() {
		s := config.Defaults()
		s.Config.Limits.FastRead = 128
		s.Config.DeviceSize = 2048
		s.Config.Seal()
		s.Features.QuickWrites = false
		s.Device.EEESize = 2048

		file := filepath.Join(dir, "flexee.env")
		Expect(config.Write(s, file)).To(Succeed())

		loaded, err := config.Load(file)

		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Config.Limits).To(Equal(s.Config.Limits))
		Expect(loaded.Config.Checksum).To(Equal(s.Config.Checksum))
		Expect(loaded.Features).To(Equal(s.Features))
		Expect(loaded.Device).To(Equal(s.Device))
	})

	It("should let later files win", func() {
		first := filepath.Join(dir, "a.env")
		second := filepath.Join(dir, "b.env")
		Expect(os.WriteFile(first, []byte("FLEXEE_SLOW_READ=16\n"), 0o644)).To(Succeed())
		Expect(os.WriteFile(second, []byte("FLEXEE_SLOW_READ=48\n"), 0o644)).To(Succeed())

		s, err := config.Load(first, second)

		Expect(err).NotTo(HaveOccurred())
		Expect(s.Config.Limits.SlowRead).To(Equal(uint32(48)))
	})

	It("should fail on a missing file", func() {
		_, err := config.Load(filepath.Join(dir, "missing.env"))

		Expect(err).To(HaveOccurred())
	})

	It("should list every key", func() {
		Expect(config.Keys()).To(ContainElements(
			config.KeyDeviceSize, config.KeyChecksum, config.KeyAutoEEE))
	})
})
