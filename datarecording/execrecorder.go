package datarecording

import (
	"os"
	"strings"
	"sync"
	"time"
)

// ExecTable is the table that stores execution information.
const ExecTable = "exec_info"

const execTimeFormat = "2006-01-02 15:04:05.000000000"

// ExecInfo is one property of a program execution.
type ExecInfo struct {
	Property string
	Value    string
}

// ExecRecorder records how the program was started and when it ended.
type ExecRecorder struct {
	lock     sync.Mutex
	recorder DataRecorder
	entries  []ExecInfo
	ended    bool
}

// NewExecRecorder creates the execution table in the recorder.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	recorder.CreateTable(ExecTable, ExecInfo{})

	return &ExecRecorder{recorder: recorder}
}

// Set adds a property. Properties are written when End is called.
func (e *ExecRecorder) Set(property, value string) {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.entries = append(e.entries, ExecInfo{property, value})
}

// Start records the start time, the command line, and the working
// directory.
func (e *ExecRecorder) Start() {
	e.Set("Start Time", time.Now().Format(execTimeFormat))
	e.Set("Command", strings.Join(os.Args, " "))

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "unknown"
	}

	e.Set("Working Directory", cwd)
}

// End writes every property along with the end time. Calling End more than
// once has no effect.
func (e *ExecRecorder) End() {
	e.Set("End Time", time.Now().Format(execTimeFormat))

	e.lock.Lock()
	defer e.lock.Unlock()

	if e.ended {
		return
	}

	e.ended = true

	for _, entry := range e.entries {
		e.recorder.InsertData(ExecTable, entry)
	}

	e.entries = nil

	e.recorder.Flush()
}
