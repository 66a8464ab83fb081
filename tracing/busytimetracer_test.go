package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/flexee/sim"
)

var _ = Describe("BusyTimeTracer", func() {
	var (
		clock *testTimeTeller
		t     *BusyTimeTracer
	)

	at := func(now sim.VTimeInSec) {
		clock.currentTime = now
	}

	BeforeEach(func() {
		clock = &testTimeTeller{}
		t = NewBusyTimeTracer(clock, nil)
	})

	It("should track busy time, one task", func() {
		at(1)
		t.StartTask(Task{ID: "1"})
		at(2)
		t.EndTask(Task{ID: "1"})

		Expect(t.BusyTime()).To(Equal(sim.VTimeInSec(1.0)))
	})

	It("should track busy time, two separate tasks", func() {
		at(1)
		t.StartTask(Task{ID: "1"})
		at(2)
		t.EndTask(Task{ID: "1"})
		at(3)
		t.StartTask(Task{ID: "2"})
		at(4)
		t.EndTask(Task{ID: "2"})

		Expect(t.BusyTime()).To(Equal(sim.VTimeInSec(2.0)))
	})

	It("should count overlapped time once", func() {
		at(1)
		t.StartTask(Task{ID: "1"})
		at(2)
		t.StartTask(Task{ID: "2"})
		at(3)
		t.EndTask(Task{ID: "1"})

		Expect(t.BusyTime()).To(Equal(sim.VTimeInSec(0)))

		at(5)
		t.EndTask(Task{ID: "2"})

		Expect(t.BusyTime()).To(Equal(sim.VTimeInSec(4.0)))
	})

	It("should ignore filtered and unknown tasks", func() {
		t = NewBusyTimeTracer(clock, func(task Task) bool {
			return task.What == "write"
		})

		at(1)
		t.StartTask(Task{ID: "1", What: "read"})
		at(2)
		t.EndTask(Task{ID: "1"})
		t.EndTask(Task{ID: "9"})

		Expect(t.BusyTime()).To(Equal(sim.VTimeInSec(0)))
	})

	It("should terminate tasks in flight", func() {
		at(1)
		t.StartTask(Task{ID: "1"})

		t.TerminateAllTasks(3)

		Expect(t.BusyTime()).To(Equal(sim.VTimeInSec(2.0)))
	})

	It("should trace the jobs of a driver", func() {
		d := newDriver()
		CollectTrace(d, t)

		Expect(d.Write(0, []byte{1, 2, 3, 4}, 4)).To(Succeed())
		run(d, clock)

		Expect(t.BusyTime()).To(BeNumerically(">", 0))
		Expect(t.BusyTime()).To(BeNumerically("<=", clock.currentTime))
	})
})
