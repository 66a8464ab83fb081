// Package tracing turns the hooks of an emulated EEPROM driver into task
// traces.
package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/flexee/eep"
	"github.com/sarchlab/flexee/sim"
)

// TaskKindJob is the kind of the tasks created for driver jobs.
const TaskKindJob = "eep_job"

// NamedHookable represent something both have a name and can be hooked
type NamedHookable interface {
	sim.Hookable
	Name() string
	AllHooks() []sim.Hook
}

// CollectTrace let the tracer to collect trace from a domain
func CollectTrace(domain NamedHookable, tracer Tracer) {
	for _, hook := range domain.AllHooks() {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	h := traceHook{t: tracer, where: domain.Name()}
	domain.AcceptHook(&h)
}

// A traceHook turns job hooks into tasks.
type traceHook struct {
	t     Tracer
	where string
}

// Func calls the tracer interfaces when the hook is triggered
func (h *traceHook) Func(ctx sim.HookCtx) {
	info, ok := ctx.Item.(eep.JobInfo)
	if !ok {
		return
	}

	task := Task{
		ID:     info.ID,
		Kind:   TaskKindJob,
		What:   info.Kind.String(),
		Where:  h.where,
		Detail: info,
	}

	switch ctx.Pos {
	case eep.HookPosJobAccepted:
		h.t.StartTask(task)
	case eep.HookPosTransfer:
		task.Steps = []TaskStep{{What: "transfer", Bytes: ctx.Detail.(uint32)}}
		h.t.StepTask(task)
	case eep.HookPosJobDone:
		h.t.EndTask(task)
	}
}
