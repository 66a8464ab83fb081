package sim

import (
	"reflect"

	"github.com/go-logr/logr"
)

// EventLogger is a hook that logs every event before it is handled.
type EventLogger struct {
	log logr.Logger
}

// NewEventLogger returns an EventLogger that writes into log.
func NewEventLogger(log logr.Logger) *EventLogger {
	return &EventLogger{log: log}
}

// Func logs the event information.
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent || !h.log.Enabled() {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	kv := []any{"time", float64(evt.Time()), "type", reflect.TypeOf(evt).String()}

	if n, ok := evt.Handler().(interface{ Name() string }); ok {
		kv = append(kv, "handler", n.Name())
	}

	h.log.Info("event", kv...)
}
