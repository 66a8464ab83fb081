package sim

import (
	"log"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

var _ Engine = (*SerialEngine)(nil)

// A SerialEngine runs events one after another on the goroutine that calls
// Run. Secondary events run after every primary event of the same time.
type SerialEngine struct {
	HookableBase

	timeLock  sync.RWMutex
	now       VTimeInSec
	primary   EventQueue
	secondary EventQueue
	handled   atomic.Uint64

	runLock   sync.Mutex
	pauseLock sync.Mutex
	stateLock sync.Mutex
	paused    bool
}

// NewSerialEngine creates a SerialEngine
func NewSerialEngine() *SerialEngine {
	return &SerialEngine{
		primary:   NewEventQueue(),
		secondary: NewEventQueue(),
	}
}

// Schedule registers an event to happen in the future.
func (e *SerialEngine) Schedule(evt Event) {
	if evt.Time() < e.CurrentTime() {
		log.Panic("scheduling an event earlier than current time")
	}

	if evt.IsSecondary() {
		e.secondary.Push(evt)
		return
	}

	e.primary.Push(evt)
}

// Run processes all the scheduled events. It stops at the first handler
// error.
func (e *SerialEngine) Run() error {
	e.runLock.Lock()
	defer e.runLock.Unlock()

	for {
		more, err := e.Step()
		if err != nil || !more {
			return err
		}
	}
}

// Step handles the next event, if any. It waits while the engine is paused.
func (e *SerialEngine) Step() (bool, error) {
	e.pauseLock.Lock()
	defer e.pauseLock.Unlock()

	evt := e.nextEvent()
	if evt == nil {
		return false, nil
	}

	now := e.CurrentTime()
	if evt.Time() < now {
		log.Panicf("cannot run event in the past, evt %s @ %.10f, now %.10f",
			reflect.TypeOf(evt), evt.Time(), now)
	}

	e.timeLock.Lock()
	e.now = evt.Time()
	e.timeLock.Unlock()

	ctx := HookCtx{Domain: e, Pos: HookPosBeforeEvent, Item: evt}
	e.InvokeHook(ctx)

	err := evt.Handler().Handle(evt)
	e.handled.Add(1)

	ctx.Pos = HookPosAfterEvent
	e.InvokeHook(ctx)

	if err != nil {
		return false, errors.Wrapf(err, "event %s @ %.10f",
			reflect.TypeOf(evt), evt.Time())
	}

	return true, nil
}

func (e *SerialEngine) nextEvent() Event {
	switch {
	case e.primary.Len() == 0 && e.secondary.Len() == 0:
		return nil
	case e.primary.Len() == 0:
		return e.secondary.Pop()
	case e.secondary.Len() == 0:
		return e.primary.Pop()
	}

	if e.primary.Peek().Time() <= e.secondary.Peek().Time() {
		return e.primary.Pop()
	}

	return e.secondary.Pop()
}

// Pending returns the number of events waiting to be handled.
func (e *SerialEngine) Pending() int {
	return e.primary.Len() + e.secondary.Len()
}

// Pause prevents the SerialEngine from handling more events.
func (e *SerialEngine) Pause() {
	e.stateLock.Lock()
	defer e.stateLock.Unlock()

	if e.paused {
		return
	}

	e.pauseLock.Lock()
	e.paused = true
}

// Continue allows the SerialEngine to handle events again.
func (e *SerialEngine) Continue() {
	e.stateLock.Lock()
	defer e.stateLock.Unlock()

	if !e.paused {
		return
	}

	e.pauseLock.Unlock()
	e.paused = false
}

// Paused tells if the engine is paused.
func (e *SerialEngine) Paused() bool {
	e.stateLock.Lock()
	defer e.stateLock.Unlock()

	return e.paused
}

// CurrentTime returns the time of the event being handled, or of the last
// one handled.
func (e *SerialEngine) CurrentTime() VTimeInSec {
	e.timeLock.RLock()
	defer e.timeLock.RUnlock()

	return e.now
}

// HandledEvents returns how many events the engine has handled.
func (e *SerialEngine) HandledEvents() uint64 {
	return e.handled.Load()
}
