package tracing

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/sarchlab/flexee/sim"
)

// JSONTracer writes every finished job as one JSON object per line.
type JSONTracer struct {
	timeTeller sim.TimeTeller

	lock          sync.Mutex
	enc           *json.Encoder
	inflightTasks map[string]*Task
}

// NewJSONTracer creates a new JSONTracer that writes to w.
func NewJSONTracer(timeTeller sim.TimeTeller, w io.Writer) *JSONTracer {
	return &JSONTracer{
		timeTeller:    timeTeller,
		enc:           json.NewEncoder(w),
		inflightTasks: make(map[string]*Task),
	}
}

// StartTask records the start of a task
func (t *JSONTracer) StartTask(task Task) {
	task.StartTime = t.timeTeller.CurrentTime()

	t.lock.Lock()
	t.inflightTasks[task.ID] = &task
	t.lock.Unlock()
}

// StepTask records the moment that a task moves bytes.
func (t *JSONTracer) StepTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	original, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	original.Steps = append(original.Steps, task.Steps...)
}

// EndTask writes the task.
func (t *JSONTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	original, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	delete(t.inflightTasks, task.ID)

	original.EndTime = t.timeTeller.CurrentTime()
	original.Detail = task.Detail

	if err := t.enc.Encode(entryOf(original)); err != nil {
		panic(errors.Wrap(err, "cannot write job trace"))
	}
}
