package tracing

import (
	"sync"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/flexee/datarecording"
	"github.com/sarchlab/flexee/eep"
	"github.com/sarchlab/flexee/sim"
)

// JobTable is the table DBTracer writes to.
const JobTable = "eep_jobs"

// JobEntry is one row of the job table.
type JobEntry struct {
	ID        string `json:"id" record:"index"`
	Location  string `json:"location"`
	Kind      string `json:"kind" record:"index"`
	Address   uint32 `json:"address"`
	Length    uint32 `json:"length"`
	Done      uint32 `json:"done"`
	Quick     bool   `json:"quick"`
	Mode      string `json:"mode"`
	Result    string `json:"result" record:"index"`
	Mismatch  int    `json:"mismatch"`
	Transfers int    `json:"transfers"`

	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// DBTracer is a tracer that stores the finished jobs into a DataRecorder.
type DBTracer struct {
	lock       sync.Mutex
	timeTeller sim.TimeTeller
	backend    datarecording.DataRecorder

	startTime, endTime sim.VTimeInSec

	tracingTasks map[string]*Task
	written      int
}

// NewDBTracer creates a new DBTracer. The recorder is flushed when the
// program exits through atexit.
func NewDBTracer(
	timeTeller sim.TimeTeller,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	dataRecorder.CreateTable(JobTable, JobEntry{})

	t := &DBTracer{
		timeTeller:   timeTeller,
		backend:      dataRecorder,
		tracingTasks: make(map[string]*Task),
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// SetTimeRange limits tracing to the jobs that overlap the range. A zero
// bound is open.
func (t *DBTracer) SetTimeRange(startTime, endTime sim.VTimeInSec) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.startTime = startTime
	t.endTime = endTime
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	startingTaskMustBeValid(task)

	task.StartTime = t.timeTeller.CurrentTime()
	if t.endTime > 0 && task.StartTime > t.endTime {
		return
	}

	t.tracingTasks[task.ID] = &task
}

func startingTaskMustBeValid(task Task) {
	if task.ID == "" {
		panic("task ID must be set")
	}

	if task.Kind == "" {
		panic("task kind must be set")
	}

	if task.What == "" {
		panic("task what must be set")
	}

	if task.Where == "" {
		panic("task location must be set")
	}
}

// StepTask counts a transfer of a task.
func (t *DBTracer) StepTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	original, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	now := t.timeTeller.CurrentTime()
	for _, s := range task.Steps {
		s.Time = now
		original.Steps = append(original.Steps, s)
	}
}

// EndTask writes the task to the recorder.
func (t *DBTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	original, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	delete(t.tracingTasks, task.ID)

	original.EndTime = t.timeTeller.CurrentTime()
	if t.startTime > 0 && original.EndTime < t.startTime {
		return
	}

	original.Detail = task.Detail
	t.backend.InsertData(JobTable, entryOf(original))
	t.written++
}

// Written returns the number of jobs handed to the recorder.
func (t *DBTracer) Written() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.written
}

// Terminate drops the unfinished tasks and flushes the recorder.
func (t *DBTracer) Terminate() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.tracingTasks = make(map[string]*Task)
	t.backend.Flush()
}

func entryOf(task *Task) JobEntry {
	e := JobEntry{
		ID:        task.ID,
		Location:  task.Where,
		Kind:      task.What,
		Mismatch:  -1,
		Transfers: len(task.Steps),
		StartTime: float64(task.StartTime),
		EndTime:   float64(task.EndTime),
	}

	if info, ok := task.Detail.(eep.JobInfo); ok {
		e.Address = info.Address
		e.Length = info.Length
		e.Done = info.Done
		e.Quick = info.Quick
		e.Mode = info.Mode.String()
		e.Result = info.Result.String()
		e.Mismatch = info.Mismatch
	}

	return e
}
