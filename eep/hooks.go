package eep

import "github.com/sarchlab/flexee/sim"

// Hook positions of the driver. The item of every hook is a JobInfo.
var (
	// HookPosInit is invoked after a successful Init. The item is an empty
	// JobInfo and the detail is the observed sequencer.BrownOut code.
	HookPosInit = &sim.HookPos{Name: "EEP Init"}

	// HookPosJobAccepted is invoked when a job is staged.
	HookPosJobAccepted = &sim.HookPos{Name: "EEP Job Accepted"}

	// HookPosTransfer is invoked after a tick moved bytes. The detail is the
	// number of bytes moved by the tick.
	HookPosTransfer = &sim.HookPos{Name: "EEP Transfer"}

	// HookPosJobDone is invoked when a job reaches a terminal result. The
	// detail is the JobResult.
	HookPosJobDone = &sim.HookPos{Name: "EEP Job Done"}
)

func (d *Driver) invoke(pos *sim.HookPos, info JobInfo, detail interface{}) {
	if d.NumHooks() == 0 {
		return
	}

	d.InvokeHook(sim.HookCtx{
		Domain: d,
		Pos:    pos,
		Item:   info,
		Detail: detail,
	})
}
