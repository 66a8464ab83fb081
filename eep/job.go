package eep

import "fmt"

// JobKind is the type of a job.
type JobKind uint8

// Job kinds.
const (
	JobNone JobKind = iota
	JobRead
	JobWrite
	JobErase
	JobCompare
)

func (k JobKind) String() string {
	switch k {
	case JobNone:
		return "none"
	case JobRead:
		return "read"
	case JobWrite:
		return "write"
	case JobErase:
		return "erase"
	case JobCompare:
		return "compare"
	default:
		return fmt.Sprintf("JobKind(%d)", uint8(k))
	}
}

// JobResult is the externally visible outcome of the last job.
type JobResult uint8

// Job results. Pending is the only non-terminal value.
const (
	JobOK JobResult = iota
	JobFailed
	JobPending
	JobCanceled
	JobBlockInconsistent
)

func (r JobResult) String() string {
	switch r {
	case JobOK:
		return "ok"
	case JobFailed:
		return "failed"
	case JobPending:
		return "pending"
	case JobCanceled:
		return "canceled"
	case JobBlockInconsistent:
		return "block-inconsistent"
	default:
		return fmt.Sprintf("JobResult(%d)", uint8(r))
	}
}

// State is the internal state of the driver.
type State uint8

// Driver states.
const (
	StateUninit State = iota
	StateIdle
	StateJobPending
)

func (s State) String() string {
	switch s {
	case StateUninit:
		return "uninit"
	case StateIdle:
		return "idle"
	case StateJobPending:
		return "job-pending"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Status is what the driver reports to the memory abstraction.
type Status uint8

// Driver status values.
const (
	StatusUninit Status = iota
	StatusIdle
	StatusBusy
)

func (s Status) String() string {
	switch s {
	case StatusUninit:
		return "uninit"
	case StatusIdle:
		return "idle"
	case StatusBusy:
		return "busy"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// JobInfo describes a job. Hooks receive it as the item.
type JobInfo struct {
	ID      string    `json:"id"`
	Kind    JobKind   `json:"kind"`
	Address uint32    `json:"address"`
	Length  uint32    `json:"length"`
	Done    uint32    `json:"done"`
	Quick   bool      `json:"quick"`
	Mode    Mode      `json:"mode"`
	Result  JobResult `json:"result"`

	// Mismatch is the offset within the job of the first differing byte
	// found by a compare job, or -1.
	Mismatch int `json:"mismatch"`
}

// job is the single active job descriptor. Only Tick and Cancel change it
// once it is staged.
type job struct {
	info JobInfo

	cursor    uint32
	remaining uint32
	buf       []byte
	pos       uint32

	window     uint16
	windowLeft uint32
	quickOn    bool

	started  bool
	loaded   bool
	chunkSet bool
}

func (j *job) advance(n uint32) {
	j.cursor += n
	j.remaining -= n
	j.pos += n
	j.info.Done += n
}

// data returns the next n bytes of the caller buffer, or nil for an erase.
func (j *job) data(n uint32) []byte {
	if j.info.Kind == JobErase {
		return nil
	}

	return j.buf[j.pos : j.pos+n]
}
