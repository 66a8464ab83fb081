package monitoring

import (
	"sync"
	"time"

	"github.com/sarchlab/flexee/eep"
	"github.com/sarchlab/flexee/sim"
)

// A ProgressBar follows the job of one driver.
type ProgressBar struct {
	sync.Mutex
	ID        string
	Name      string
	Job       string
	Kind      string
	StartTime time.Time
	Total     uint64
	Finished  uint64
	Done      bool
}

// Func updates the bar from the driver hooks.
func (b *ProgressBar) Func(ctx sim.HookCtx) {
	info, ok := ctx.Item.(eep.JobInfo)
	if !ok {
		return
	}

	b.Lock()
	defer b.Unlock()

	switch ctx.Pos {
	case eep.HookPosJobAccepted:
		b.Job = info.ID
		b.Kind = info.Kind.String()
		b.StartTime = time.Now()
		b.Total = uint64(info.Length)
		b.Finished = 0
		b.Done = false
	case eep.HookPosTransfer:
		b.Finished += uint64(ctx.Detail.(uint32))
	case eep.HookPosJobDone:
		b.Done = true
	}
}

type progressView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Job       string    `json:"job"`
	Kind      string    `json:"kind"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
	Done      bool      `json:"done"`
}

func (b *ProgressBar) view() progressView {
	b.Lock()
	defer b.Unlock()

	return progressView{
		ID:        b.ID,
		Name:      b.Name,
		Job:       b.Job,
		Kind:      b.Kind,
		StartTime: b.StartTime,
		Total:     b.Total,
		Finished:  b.Finished,
		Done:      b.Done,
	}
}
