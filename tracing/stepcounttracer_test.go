package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("StepCountTracer", func() {
	var t *StepCountTracer

	BeforeEach(func() {
		t = NewStepCountTracer(nil)
	})

	step := func(id, what string) Task {
		return Task{ID: id, Steps: []TaskStep{{What: what}}}
	}

	It("should count steps and the tasks that have them", func() {
		t.StartTask(Task{ID: "1"})
		t.StartTask(Task{ID: "2"})

		t.StepTask(step("1", "transfer"))
		t.StepTask(step("1", "transfer"))
		t.StepTask(step("2", "transfer"))
		t.StepTask(step("2", "retry"))
		t.EndTask(Task{ID: "1"})
		t.EndTask(Task{ID: "2"})

		Expect(t.GetStepNames()).To(Equal([]string{"transfer", "retry"}))
		Expect(t.GetStepCount("transfer")).To(Equal(uint64(3)))
		Expect(t.GetTaskCount("transfer")).To(Equal(uint64(2)))
		Expect(t.GetStepCount("retry")).To(Equal(uint64(1)))
	})

	It("should ignore steps of unknown tasks", func() {
		t.StepTask(step("1", "transfer"))

		Expect(t.GetStepCount("transfer")).To(BeZero())
		Expect(t.GetStepNames()).To(BeEmpty())
	})

	It("should count the transfers of a driver job", func() {
		d := newDriver()
		CollectTrace(d, t)

		Expect(d.Write(0, make([]byte, 16), 16)).To(Succeed())
		run(d, &testTimeTeller{})

		Expect(t.GetTaskCount("transfer")).To(Equal(uint64(1)))
		Expect(t.GetStepCount("transfer")).To(BeNumerically(">=", 1))
	})
})
