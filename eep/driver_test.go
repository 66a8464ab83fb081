package eep_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/flexee/eep"
	"github.com/sarchlab/flexee/ftfc"
	"github.com/sarchlab/flexee/regs"
	"github.com/sarchlab/flexee/report"
	"github.com/sarchlab/flexee/routine"
	"github.com/sarchlab/flexee/sequencer"
	"github.com/sarchlab/flexee/sim"
)

var _ = Describe("Driver", func() {
	var (
		dev      *ftfc.Device
		reloc    *routine.Relocator
		rec      *report.Recorder
		features eep.Features
		cfg      *eep.Config
		hooks    *transferLog
		drv      *eep.Driver
	)

	build := func() {
		drv = eep.MakeBuilder().
			WithRegisters(regs.New(dev)).
			WithRelocator(reloc).
			WithFeatures(features).
			WithDevErrorReporter(rec).
			WithProductionErrorReporter(rec).
			Build("EEP")
		drv.AcceptHook(hooks)
	}

	BeforeEach(func() {
		spec := ftfc.Defaults()
		spec.EEESize = 512
		dev = ftfc.NewDevice(spec)
		reloc = routine.NewRelocator(eep.DefaultRoutineBase, 64, true)
		rec = report.NewRecorder()
		features = eep.DefaultFeatures()
		cfg = testConfig()
		hooks = &transferLog{}
		build()
	})

	Context("init", func() {
		It("should start uninitialized", func() {
			Expect(drv.Status()).To(Equal(eep.StatusUninit))
			Expect(drv.Name()).To(Equal("EEP"))
		})

		It("should initialize with a valid configuration", func() {
			Expect(drv.Init(cfg)).To(Succeed())

			Expect(drv.Status()).To(Equal(eep.StatusIdle))
			Expect(drv.JobResult()).To(Equal(eep.JobOK))
			Expect(drv.Mode()).To(Equal(eep.ModeSlow))
			Expect(hooks.init).To(Equal([]interface{}{sequencer.BrownOutNone}))
			Expect(rec.DevErrors()).To(BeEmpty())
		})

		It("should stay uninitialized on a checksum mismatch", func() {
			cfg.Checksum ^= 0x0001

			err := drv.Init(cfg)

			Expect(errors.Is(err, eep.ErrInitFailed)).To(BeTrue())
			Expect(drv.Status()).To(Equal(eep.StatusUninit))
			Expect(rec.DevErrors()).To(ContainElement(report.DevError{
				ModuleID: eep.ModuleID,
				APIID:    uint8(eep.ServiceInit),
				ErrorID:  uint8(eep.CodeInitFailed),
			}))

			buf := make([]byte, 4)
			Expect(errors.Is(drv.Read(0, buf, 4), eep.ErrUninit)).To(BeTrue())
			Expect(errors.Is(drv.Write(0, buf, 4), eep.ErrUninit)).To(BeTrue())
		})

		It("should drop a working configuration on a bad one", func() {
			Expect(drv.Init(cfg)).To(Succeed())

			bad := testConfig()
			bad.Checksum++

			Expect(drv.Init(bad)).NotTo(Succeed())
			Expect(drv.Status()).To(Equal(eep.StatusUninit))
		})

		It("should reject a missing configuration", func() {
			Expect(errors.Is(drv.Init(nil), eep.ErrParamPointer)).To(BeTrue())
		})

		It("should reject an invalid configuration", func() {
			cfg.Limits.FastWrite = 0
			cfg.Seal()

			Expect(errors.Is(drv.Init(cfg), eep.ErrParamConfig)).To(BeTrue())
		})

		It("should report the brown-out class", func() {
			dev.BrownOut(ftfc.BrownOutDuringQuickWrites)
			dev.Reset()

			Expect(drv.Init(cfg)).To(Succeed())

			Expect(drv.BrownOut()).To(Equal(sequencer.BrownOutDuringQuickWrites))

			status, _ := rec.LastStatus(eventBrownOutQuick)
			Expect(status).To(Equal(report.EventFailed))
			status, _ = rec.LastStatus(eventBrownOutMaintenance)
			Expect(status).To(Equal(report.EventPassed))
			status, _ = rec.LastStatus(eventBrownOutNormal)
			Expect(status).To(Equal(report.EventPassed))
		})

		It("should fail when maintenance does not finish", func() {
			dev.BrownOut(ftfc.BrownOutDuringMaintenance)
			dev.Reset()
			dev.InjectFault(ftfc.FaultStuckMaintenance)

			Expect(errors.Is(drv.Init(cfg), eep.ErrInitFailed)).To(BeTrue())
			Expect(drv.Status()).To(Equal(eep.StatusUninit))
		})

		It("should not report production errors when disabled", func() {
			features.ProductionErrorsEnabled = false
			build()

			Expect(drv.Init(cfg)).To(Succeed())
			Expect(drv.Write(0, fill(4, 1), 4)).To(Succeed())
			runJob(drv)

			Expect(rec.ProductionEvents()).To(BeEmpty())
		})

		It("should report its version", func() {
			v := drv.VersionInfo()

			Expect(v.ModuleID).To(Equal(eep.ModuleID))
			Expect(v.VendorID).To(Equal(eep.VendorID))
		})
	})

	for _, async := range []bool{false, true} {
		async := async

		Context(fmt.Sprintf("jobs with async writes %v", async), func() {
			BeforeEach(func() {
				features.AsyncWrites = async
				build()
				Expect(drv.Init(cfg)).To(Succeed())
			})

			It("should read back what was written", func() {
				Expect(drv.Write(0x100, fill(16, 0xAA), 16)).To(Succeed())
				Expect(drv.Status()).To(Equal(eep.StatusBusy))
				Expect(drv.JobResult()).To(Equal(eep.JobPending))

				runJob(drv)
				Expect(drv.JobResult()).To(Equal(eep.JobOK))

				buf := make([]byte, 16)
				Expect(drv.Read(0x100, buf, 16)).To(Succeed())
				runJob(drv)

				Expect(drv.JobResult()).To(Equal(eep.JobOK))
				Expect(buf).To(Equal(fill(16, 0xAA)))
			})

			DescribeTable("round trips",
				func(addr, length uint32) {
					data := ramp(int(length), byte(addr))

					Expect(drv.Write(addr, data, length)).To(Succeed())
					runJob(drv)
					Expect(drv.JobResult()).To(Equal(eep.JobOK))

					buf := make([]byte, length)
					Expect(drv.Read(addr, buf, length)).To(Succeed())
					runJob(drv)

					Expect(drv.JobResult()).To(Equal(eep.JobOK))
					Expect(buf).To(Equal(data))
				},
				Entry("first byte", uint32(0), uint32(1)),
				Entry("unaligned", uint32(3), uint32(9)),
				Entry("aligned words", uint32(4), uint32(64)),
				Entry("last byte", uint32(511), uint32(1)),
				Entry("odd tail", uint32(100), uint32(37)),
				Entry("whole device", uint32(0), uint32(512)),
			)

			It("should erase to the erased value", func() {
				Expect(drv.Write(10, ramp(20, 1), 20)).To(Succeed())
				runJob(drv)

				Expect(drv.Erase(12, 15)).To(Succeed())
				runJob(drv)
				Expect(drv.JobResult()).To(Equal(eep.JobOK))

				buf := make([]byte, 20)
				Expect(drv.Read(10, buf, 20)).To(Succeed())
				runJob(drv)

				Expect(buf[2:17]).To(Equal(fill(15, 0xFF)))
				Expect(buf[:2]).To(Equal(ramp(20, 1)[:2]))
				Expect(buf[17:]).To(Equal(ramp(20, 1)[17:]))
			})

			It("should match written content", func() {
				data := ramp(40, 9)
				Expect(drv.Write(50, data, 40)).To(Succeed())
				runJob(drv)

				Expect(drv.Compare(50, data, 40)).To(Succeed())
				runJob(drv)

				Expect(drv.JobResult()).To(Equal(eep.JobOK))
				Expect(drv.LastJob().Mismatch).To(Equal(-1))
			})

			It("should detect a difference", func() {
				data := ramp(40, 9)
				Expect(drv.Write(50, data, 40)).To(Succeed())
				runJob(drv)

				want := append([]byte(nil), data...)
				want[27] ^= 0x80
				want[33] ^= 0x80

				Expect(drv.Compare(50, want, 40)).To(Succeed())
				runJob(drv)

				Expect(drv.JobResult()).To(Equal(eep.JobBlockInconsistent))
				Expect(drv.LastJob().Mismatch).To(Equal(27))
			})

			It("should refuse a job while one is pending", func() {
				Expect(drv.Write(0, fill(32, 0x11), 32)).To(Succeed())
				drv.Tick()
				before := drv.LastJob()

				err := drv.Write(64, fill(8, 0x22), 8)
				Expect(errors.Is(err, eep.ErrBusy)).To(BeTrue())
				Expect(errors.Is(drv.Erase(0, 4), eep.ErrBusy)).To(BeTrue())
				Expect(drv.LastJob()).To(Equal(before))

				runJob(drv)
				Expect(drv.JobResult()).To(Equal(eep.JobOK))

				buf := make([]byte, 40)
				Expect(drv.Read(32, buf, 40)).To(Succeed())
				runJob(drv)
				Expect(buf).To(Equal(fill(40, 0xFF)))
			})

			It("should accept a new job once the last one is terminal", func() {
				Expect(drv.Write(0, fill(4, 1), 4)).To(Succeed())
				runJob(drv)

				Expect(drv.Write(4, fill(4, 2), 4)).To(Succeed())
				Expect(hooks.done).To(Equal([]eep.JobResult{eep.JobOK}))
			})

			It("should not tick without a job", func() {
				Expect(drv.Tick()).To(BeFalse())
			})

			for _, mode := range []eep.Mode{eep.ModeSlow, eep.ModeFast} {
				mode := mode

				It(fmt.Sprintf("should bound the work of a tick in %s mode", mode),
					func() {
						Expect(drv.SetMode(mode)).To(Succeed())

						readLimit, writeLimit := cfg.Limits.SlowRead, cfg.Limits.SlowWrite
						if mode == eep.ModeFast {
							readLimit, writeLimit = cfg.Limits.FastRead, cfg.Limits.FastWrite
						}

						Expect(drv.Write(1, ramp(200, 3), 200)).To(Succeed())
						runJob(drv)
						for _, n := range hooks.moved {
							Expect(n).To(BeNumerically("<=", writeLimit))
						}

						hooks.moved = nil
						Expect(drv.Read(1, make([]byte, 200), 200)).To(Succeed())
						ticks := runJob(drv)
						Expect(ticks).To(BeNumerically(">=", 200/int(readLimit)))
						for _, n := range hooks.moved {
							Expect(n).To(BeNumerically("<=", readLimit))
						}

						hooks.moved = nil
						Expect(drv.Compare(1, ramp(200, 3), 200)).To(Succeed())
						runJob(drv)
						Expect(drv.JobResult()).To(Equal(eep.JobOK))
						for _, n := range hooks.moved {
							Expect(n).To(BeNumerically("<=", readLimit))
						}
					})
			}

			It("should fail on a controller error", func() {
				dev.InjectFault(ftfc.FaultMGSTAT)

				Expect(drv.Write(0, fill(8, 1), 8)).To(Succeed())
				runJob(drv)

				Expect(drv.JobResult()).To(Equal(eep.JobFailed))

				status, _ := rec.LastStatus(eventWrite)
				Expect(status).To(Equal(report.EventFailed))
			})

			It("should fail and report a timeout", func() {
				features.TimeoutIterations = 40
				build()
				Expect(drv.Init(cfg)).To(Succeed())
				dev.InjectFault(ftfc.FaultStuck)

				Expect(drv.Write(0, fill(8, 1), 8)).To(Succeed())
				runJob(drv)

				Expect(drv.JobResult()).To(Equal(eep.JobFailed))
				Expect(rec.DevErrors()).To(ContainElement(report.DevError{
					ModuleID: eep.ModuleID,
					APIID:    uint8(eep.ServiceMainFunction),
					ErrorID:  uint8(eep.CodeTimeout),
				}))

				_, loaded := reloc.Loaded()
				Expect(loaded).To(BeFalse())
			})

			It("should report passing jobs", func() {
				Expect(drv.Erase(0, 4)).To(Succeed())
				runJob(drv)
				Expect(drv.Read(0, make([]byte, 4), 4)).To(Succeed())
				runJob(drv)

				status, ok := rec.LastStatus(eventErase)
				Expect(ok).To(BeTrue())
				Expect(status).To(Equal(report.EventPassed))

				status, ok = rec.LastStatus(eventRead)
				Expect(ok).To(BeTrue())
				Expect(status).To(Equal(report.EventPassed))
			})
		})
	}

	Context("routine relocation", func() {
		BeforeEach(func() {
			Expect(drv.Init(cfg)).To(Succeed())
		})

		It("should keep the routine loaded for the job", func() {
			Expect(drv.Erase(0, 32)).To(Succeed())
			drv.Tick()

			kind, loaded := reloc.Loaded()
			Expect(loaded).To(BeTrue())
			Expect(kind).To(Equal(routine.KindErase))

			runJob(drv)

			_, loaded = reloc.Loaded()
			Expect(loaded).To(BeFalse())
		})

		It("should not load a routine for reads", func() {
			Expect(drv.Read(0, make([]byte, 32), 32)).To(Succeed())
			drv.Tick()

			_, loaded := reloc.Loaded()
			Expect(loaded).To(BeFalse())
		})

		It("should relocate around every access otherwise", func() {
			features.LoadOnJobStart = false
			build()
			Expect(drv.Init(cfg)).To(Succeed())

			Expect(drv.Write(0, fill(32, 5), 32)).To(Succeed())
			drv.Tick()

			_, loaded := reloc.Loaded()
			Expect(loaded).To(BeFalse())

			runJob(drv)
			Expect(drv.JobResult()).To(Equal(eep.JobOK))
		})

		It("should fail a job whose routine got corrupted", func() {
			Expect(drv.Write(0, fill(32, 5), 32)).To(Succeed())
			drv.Tick()
			reloc.Poke(0, reloc.Window()[0]^0xFF)

			runJob(drv)

			Expect(drv.JobResult()).To(Equal(eep.JobFailed))
		})
	})

	Context("parameter checks", func() {
		var (
			mockCtrl *gomock.Controller
			devErr   *MockDevErrorReporter
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			devErr = NewMockDevErrorReporter(mockCtrl)

			drv = eep.MakeBuilder().
				WithRegisters(regs.New(dev)).
				WithRelocator(reloc).
				WithDevErrorReporter(devErr).
				Build("EEP")
			Expect(drv.Init(cfg)).To(Succeed())
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		expectReport := func(service eep.ServiceID, code eep.ErrorCode) {
			devErr.EXPECT().ReportError(
				eep.ModuleID, eep.InstanceID, uint8(service), uint8(code))
		}

		It("should reject an address out of range", func() {
			expectReport(eep.ServiceRead, eep.CodeParamAddress)

			err := drv.Read(512, make([]byte, 1), 1)
			Expect(errors.Is(err, eep.ErrParamAddress)).To(BeTrue())
			Expect(drv.Status()).To(Equal(eep.StatusIdle))
		})

		It("should reject a zero length", func() {
			expectReport(eep.ServiceWrite, eep.CodeParamLength)

			err := drv.Write(0, make([]byte, 1), 0)
			Expect(errors.Is(err, eep.ErrParamLength)).To(BeTrue())
		})

		It("should reject a range past the end", func() {
			expectReport(eep.ServiceErase, eep.CodeParamLength)

			Expect(errors.Is(drv.Erase(500, 13), eep.ErrParamLength)).To(BeTrue())
		})

		It("should reject a missing buffer", func() {
			expectReport(eep.ServiceCompare, eep.CodeParamPointer)

			Expect(errors.Is(drv.Compare(0, nil, 4), eep.ErrParamPointer)).
				To(BeTrue())
		})

		It("should reject a buffer shorter than the length", func() {
			expectReport(eep.ServiceRead, eep.CodeParamLength)

			Expect(errors.Is(drv.Read(0, make([]byte, 3), 4), eep.ErrParamLength)).
				To(BeTrue())
		})

		It("should tell which service failed", func() {
			expectReport(eep.ServiceRead, eep.CodeParamAddress)

			err := drv.Read(600, make([]byte, 1), 1)

			var devError *eep.DevError
			Expect(errors.As(err, &devError)).To(BeTrue())
			Expect(devError.Service).To(Equal(eep.ServiceRead))
			Expect(errors.Is(err, &eep.DevError{
				Service: eep.ServiceWrite, Code: eep.CodeParamAddress,
			})).To(BeFalse())
		})

		It("should refuse a mode change during a job", func() {
			expectReport(eep.ServiceSetMode, eep.CodeBusy)

			Expect(drv.Write(0, fill(8, 1), 8)).To(Succeed())
			Expect(errors.Is(drv.SetMode(eep.ModeFast), eep.ErrBusy)).To(BeTrue())
		})

		It("should refuse an unknown mode", func() {
			expectReport(eep.ServiceSetMode, eep.CodeParamData)

			Expect(errors.Is(drv.SetMode(eep.Mode(7)), eep.ErrParamData)).To(BeTrue())
		})
	})

	Context("cancel", func() {
		var (
			mockCtrl *gomock.Controller
			jobEnd   *MockNotifier
			jobError *MockNotifier
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			jobEnd = NewMockNotifier(mockCtrl)
			jobError = NewMockNotifier(mockCtrl)
			cfg.Notifications.JobEnd = jobEnd
			cfg.Notifications.JobError = jobError

			Expect(drv.Init(cfg)).To(Succeed())
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should cancel a pending job", func() {
			jobError.EXPECT().Notify()

			Expect(drv.Write(0, fill(64, 3), 64)).To(Succeed())
			drv.Tick()
			drv.Tick()

			Expect(drv.Cancel()).To(Succeed())

			Expect(drv.JobResult()).To(Equal(eep.JobCanceled))
			Expect(drv.Status()).To(Equal(eep.StatusIdle))
			Expect(dev.Busy()).To(BeFalse())
			Expect(drv.Tick()).To(BeFalse())

			_, loaded := reloc.Loaded()
			Expect(loaded).To(BeFalse())

			_, reported := rec.LastStatus(eventWrite)
			Expect(reported).To(BeFalse())
		})

		It("should do nothing when idle", func() {
			Expect(drv.Cancel()).To(Succeed())
			Expect(drv.JobResult()).To(Equal(eep.JobOK))
		})

		It("should refuse to interrupt quick writes", func() {
			jobEnd.EXPECT().Notify()

			Expect(drv.QuickWrite(0, fill(32, 3), 32, 16)).To(Succeed())
			drv.Tick()

			err := drv.Cancel()
			Expect(errors.Is(err, eep.ErrQuickWritesActive)).To(BeTrue())

			runJob(drv)
			Expect(drv.JobResult()).To(Equal(eep.JobOK))
		})

		It("should notify the end of a job", func() {
			jobEnd.EXPECT().Notify()

			Expect(drv.Write(0, fill(4, 3), 4)).To(Succeed())
			runJob(drv)
		})

		It("should notify a compare mismatch as an error", func() {
			jobError.EXPECT().Notify()

			Expect(drv.Compare(0, fill(4, 3), 4)).To(Succeed())
			runJob(drv)

			Expect(drv.JobResult()).To(Equal(eep.JobBlockInconsistent))
		})

		It("should be rejected when not supported", func() {
			features.CancelSupported = false
			build()

			Expect(errors.Is(drv.Cancel(), eep.ErrNotSupported)).To(BeTrue())
		})
	})

	Context("quick writes", func() {
		BeforeEach(func() {
			Expect(drv.Init(cfg)).To(Succeed())
		})

		It("should write window by window", func() {
			data := ramp(32, 0x40)

			Expect(drv.QuickWrite(64, data, 32, 16)).To(Succeed())
			runJob(drv)

			Expect(drv.JobResult()).To(Equal(eep.JobOK))
			Expect(drv.LastJob().Quick).To(BeTrue())
			Expect(dev.Stats().QuickWrites).To(Equal(uint64(8)))

			buf := make([]byte, 32)
			Expect(drv.Read(64, buf, 32)).To(Succeed())
			runJob(drv)
			Expect(buf).To(Equal(data))
		})

		It("should be back in normal mode afterwards", func() {
			Expect(drv.QuickWrite(0, fill(16, 1), 16, 16)).To(Succeed())
			runJob(drv)

			Expect(drv.Write(33, fill(3, 2), 3)).To(Succeed())
			runJob(drv)

			Expect(drv.JobResult()).To(Equal(eep.JobOK))
		})

		It("should fall back to normal writes", func() {
			dev.InjectFault(ftfc.FaultAccessError)

			Expect(drv.QuickWrite(0, fill(16, 7), 16, 16)).To(Succeed())
			runJob(drv)

			Expect(drv.JobResult()).To(Equal(eep.JobOK))
			Expect(drv.LastJob().Quick).To(BeFalse())
			Expect(dev.Stats().QuickWrites).To(BeZero())
		})

		DescribeTable("acceptance",
			func(addr, length uint32, window uint16, want error) {
				err := drv.QuickWrite(addr, make([]byte, length), length, window)

				Expect(errors.Is(err, want)).To(BeTrue())
				Expect(drv.Status()).To(Equal(eep.StatusIdle))
			},
			Entry("unaligned address", uint32(2), uint32(16), uint16(16), eep.ErrParamAddress),
			Entry("window too small", uint32(0), uint32(24), uint16(12), eep.ErrParamLength),
			Entry("window too large", uint32(0), uint32(516), uint16(516), eep.ErrParamLength),
			Entry("window not a multiple of 4", uint32(0), uint32(36), uint16(18), eep.ErrParamLength),
			Entry("length not a multiple of the window", uint32(0), uint32(40), uint16(16), eep.ErrParamLength),
		)

		It("should be rejected when not supported", func() {
			features.QuickWrites = false
			build()
			Expect(drv.Init(cfg)).To(Succeed())

			err := drv.QuickWrite(0, make([]byte, 16), 16, 16)
			Expect(errors.Is(err, eep.ErrNotSupported)).To(BeTrue())
		})
	})

	Context("notifications", func() {
		It("should bracket controller accesses", func() {
			starts, finishes := 0, 0
			cfg.Notifications.AccessStart = eep.NotifierFunc(func() { starts++ })
			cfg.Notifications.AccessFinish = eep.NotifierFunc(func() { finishes++ })

			Expect(drv.Init(cfg)).To(Succeed())
			Expect(drv.Write(0, fill(8, 1), 8)).To(Succeed())
			runJob(drv)

			Expect(starts).To(BeNumerically(">", 0))
			Expect(finishes).To(Equal(starts))
		})

		It("should arm the scheduler on accept", func() {
			mockCtrl := gomock.NewController(GinkgoT())
			waker := NewMockWaker(mockCtrl)
			waker.EXPECT().TickLater()

			drv = eep.MakeBuilder().
				WithRegisters(regs.New(dev)).
				WithWaker(waker).
				Build("EEP")
			Expect(drv.Init(cfg)).To(Succeed())
			Expect(drv.Erase(0, 4)).To(Succeed())

			mockCtrl.Finish()
		})

		It("should let a job end start the next job", func() {
			cfg.Notifications.JobEnd = eep.NotifierFunc(func() {
				if drv.LastJob().Kind == eep.JobWrite {
					Expect(drv.Compare(0, fill(4, 9), 4)).To(Succeed())
				}
			})

			Expect(drv.Init(cfg)).To(Succeed())
			Expect(drv.Write(0, fill(4, 9), 4)).To(Succeed())
			runJob(drv)

			Expect(drv.LastJob().Kind).To(Equal(eep.JobCompare))
			runJob(drv)
			Expect(drv.JobResult()).To(Equal(eep.JobOK))
		})
	})

	Context("driven by a ticking component", func() {
		It("should run jobs to completion", func() {
			engine := sim.NewSerialEngine()
			tc := sim.NewTickingComponent("EEP", engine, 1*sim.MHz, nil)

			drv = eep.MakeBuilder().
				WithRegisters(regs.New(dev)).
				WithWaker(tc).
				Build("EEP")
			tc.SetTicker(drv)
			Expect(drv.Init(cfg)).To(Succeed())

			Expect(drv.Write(8, fill(24, 0x5A), 24)).To(Succeed())
			Expect(engine.Run()).To(Succeed())

			Expect(drv.JobResult()).To(Equal(eep.JobOK))
			Expect(tc.Ticks()).To(BeNumerically(">", 1))
		})
	})
})
