package report_test

import (
	"github.com/go-logr/logr/funcr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/flexee/report"
)

var _ = Describe("Recorder", func() {
	var r *report.Recorder

	BeforeEach(func() {
		r = report.NewRecorder()
	})

	It("should keep development errors in order", func() {
		r.ReportError(90, 0, 0x02, 0x20)
		r.ReportError(90, 0, 0x03, 0x21)

		Expect(r.DevErrors()).To(Equal([]report.DevError{
			{ModuleID: 90, APIID: 0x02, ErrorID: 0x20},
			{ModuleID: 90, APIID: 0x03, ErrorID: 0x21},
		}))
	})

	It("should return the latest status of an event", func() {
		r.ReportErrorStatus(7, report.EventFailed)
		r.ReportErrorStatus(8, report.EventFailed)
		r.ReportErrorStatus(7, report.EventPassed)

		status, ok := r.LastStatus(7)
		Expect(ok).To(BeTrue())
		Expect(status).To(Equal(report.EventPassed))

		_, ok = r.LastStatus(9)
		Expect(ok).To(BeFalse())
	})

	It("should forget on reset", func() {
		r.ReportError(90, 0, 0, 0)
		r.ReportErrorStatus(1, report.EventPassed)
		r.Reset()

		Expect(r.DevErrors()).To(BeEmpty())
		Expect(r.ProductionEvents()).To(BeEmpty())
	})
})

var _ = Describe("Tee", func() {
	It("should forward to every reporter", func() {
		a := report.NewRecorder()
		b := report.NewRecorder()

		var lines []string
		log := funcr.New(func(prefix, args string) {
			lines = append(lines, args)
		}, funcr.Options{})

		tee := report.Tee{a, b, report.NewLogger(log)}
		tee.ReportError(90, 0, 0x04, 0x13)
		tee.ReportErrorStatus(3, report.EventFailed)

		Expect(a.DevErrors()).To(HaveLen(1))
		Expect(b.ProductionEvents()).To(HaveLen(1))
		Expect(lines).To(HaveLen(2))
		Expect(lines[0]).To(ContainSubstring("0x13"))
	})
})
