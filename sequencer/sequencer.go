// Package sequencer drives the flash controller command protocol for the
// emulated EEPROM.
//
// The sequencer works at the granularity of hardware pages: one or four
// bytes stored into FlexRAM, or one SETRAM command. It can run writes
// synchronously, blocking until every page is programmed, or asynchronously,
// issuing one page per Poll call. Reads and compares are always synchronous.
package sequencer

import (
	"sync"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"

	"github.com/sarchlab/flexee/regs"
	"github.com/sarchlab/flexee/routine"
)

// Status is the outcome of a sequencer call.
type Status int

// Possible outcomes.
const (
	StatusOK Status = iota
	StatusFailed
	StatusTimeout
	StatusWriteRequested
	StatusMismatch
	StatusNotReady
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	case StatusTimeout:
		return "timeout"
	case StatusWriteRequested:
		return "write-requested"
	case StatusMismatch:
		return "mismatch"
	case StatusNotReady:
		return "not-ready"
	default:
		return "unknown"
	}
}

// BrownOut classifies the activity that was interrupted by the last
// brown-out.
type BrownOut uint8

// Brown-out codes as reported by the EEE status query.
const (
	BrownOutNone               BrownOut = 0x00
	BrownOutDuringMaintenance  BrownOut = 0x02
	BrownOutDuringQuickWrites  BrownOut = 0x04
	BrownOutDuringNormalWrites BrownOut = 0x08
)

func (b BrownOut) String() string {
	switch b {
	case BrownOutNone:
		return "none"
	case BrownOutDuringMaintenance:
		return "during-maintenance"
	case BrownOutDuringQuickWrites:
		return "during-quick-writes"
	case BrownOutDuringNormalWrites:
		return "during-normal-writes"
	default:
		return "unknown"
	}
}

// Errors returned by the command level functions.
var (
	ErrNotReady    = errors.New("FlexRAM not ready for EEPROM use")
	ErrMaintenance = errors.New("EEPROM maintenance command failed")
	ErrTimeout     = errors.New("flash controller timed out")
	ErrCommand     = errors.New("flash controller command failed")
	ErrBusy        = errors.New("a transfer is already in progress")
)

// Options select how the sequencer talks to the controller.
type Options struct {
	// Async makes writes issue one page per Poll instead of blocking.
	Async bool

	// Timeout is the number of status polls after which a wait is
	// abandoned. Zero disables timeout detection.
	Timeout uint32

	// Progress is called on every poll iteration while waiting, typically to
	// service a watchdog.
	Progress func()

	// AccessStart and AccessFinish bracket every controller access.
	AccessStart  func()
	AccessFinish func()
}

type transfer struct {
	active    bool
	kind      routine.Kind
	offset    uint32
	data      []byte
	length    uint32
	done      uint32
	pageSize  uint32
	inFlight  bool
	pollsLeft uint32
}

// Sequencer issues controller commands and FlexRAM accesses.
type Sequencer struct {
	lock sync.Mutex

	regs     *regs.File
	reloc    *routine.Relocator
	routines map[routine.Kind]routine.Routine
	opts     Options
	log      logr.Logger

	quick     bool
	xfer      transfer
	timedOut  bool
	lastFSTAT uint8
}

// New creates a sequencer. Routines are looked up by kind when an access
// needs them; the write routine also launches commands.
func New(
	rf *regs.File,
	reloc *routine.Relocator,
	routines []routine.Routine,
	opts Options,
) *Sequencer {
	s := &Sequencer{
		regs:     rf,
		reloc:    reloc,
		routines: make(map[routine.Kind]routine.Routine),
		opts:     opts,
		log:      logr.Discard(),
	}

	for _, r := range routines {
		s.routines[r.Kind()] = r
	}

	return s
}

// WithLogger sets the logger used for controller diagnostics.
func (s *Sequencer) WithLogger(log logr.Logger) *Sequencer {
	s.log = log
	return s
}

// Quick tells if the controller is in quick-writes mode.
func (s *Sequencer) Quick() bool {
	return s.quick
}

// TimedOut tells if the last failure was caused by the timeout counter.
func (s *Sequencer) TimedOut() bool {
	return s.timedOut
}

// LastStatus returns the FSTAT value observed by the last access.
func (s *Sequencer) LastStatus() uint8 {
	return s.lastFSTAT
}

// Ready tells if FlexRAM is usable as emulated EEPROM and no command is in
// progress.
func (s *Sequencer) Ready() bool {
	return s.regs.BitsSet(regs.FCNFG, regs.EEERDY) &&
		s.regs.BitsSet(regs.FSTAT, regs.CCIF)
}

func (s *Sequencer) accessStart() {
	if s.opts.AccessStart != nil {
		s.opts.AccessStart()
	}
}

func (s *Sequencer) accessFinish() {
	if s.opts.AccessFinish != nil {
		s.opts.AccessFinish()
	}
}

// call runs an access through the relocated routine of the given kind. If no
// routine is loaded, the routine is loaded for the duration of the call.
func (s *Sequencer) call(kind routine.Kind, a routine.Access) (routine.Result, error) {
	a.Regs = s.regs
	a.Progress = s.opts.Progress

	if loaded, ok := s.reloc.Loaded(); !ok || loaded != kind {
		rt, found := s.routines[kind]
		if !found {
			return routine.Result{}, errors.Errorf("no %s routine configured", kind)
		}

		if ok {
			return routine.Result{}, errors.Wrapf(routine.ErrBusy,
				"need %s routine, %s routine loaded", kind, loaded)
		}

		if err := s.reloc.Load(rt); err != nil {
			return routine.Result{}, err
		}
		defer s.reloc.Unload()
	}

	s.accessStart()
	res, err := s.reloc.Call(a)
	s.accessFinish()

	if err == nil {
		s.lastFSTAT = res.Status
	}

	return res, err
}

// commandKind picks the routine that launches commands. Any loaded routine
// can launch a command, so the loaded one is preferred.
func (s *Sequencer) commandKind() routine.Kind {
	if kind, ok := s.reloc.Loaded(); ok {
		return kind
	}

	return routine.KindWrite
}

func (s *Sequencer) checkResult(res routine.Result) Status {
	s.timedOut = res.TimedOut

	if res.TimedOut {
		return StatusTimeout
	}

	if res.Status&(regs.ErrorFlags|regs.MGSTAT0) != 0 {
		s.log.V(1).Info("controller reported error", "fstat", res.Status)
		return StatusFailed
	}

	return StatusOK
}

// execute stages a SETRAM command and runs it to completion.
func (s *Sequencer) execute(ctrl uint8, param uint16, hasParam bool) Status {
	if st := s.waitCCIF(); st != StatusOK {
		return st
	}

	s.regs.ClearErrors()
	s.regs.WriteCommand(regs.CmdSetRAM, ctrl)

	if hasParam {
		s.regs.WriteCommandParam16(4, param)
	}

	res, err := s.call(s.commandKind(), routine.Access{
		Wait:    true,
		Timeout: s.opts.Timeout,
	})
	if err != nil {
		s.log.Error(err, "cannot launch command", "ctrl", ctrl)
		return StatusFailed
	}

	return s.checkResult(res)
}

// waitCCIF polls until no command is in progress.
func (s *Sequencer) waitCCIF() Status {
	iterations := uint32(0)

	for {
		s.lastFSTAT = s.regs.Status()
		if s.lastFSTAT&regs.CCIF != 0 {
			s.timedOut = false
			return StatusOK
		}

		if s.opts.Progress != nil {
			s.opts.Progress()
		}

		iterations++
		if s.opts.Timeout != 0 && iterations >= s.opts.Timeout {
			s.timedOut = true
			return StatusTimeout
		}
	}
}

func statusError(st Status, what string) error {
	switch st {
	case StatusOK:
		return nil
	case StatusTimeout:
		return errors.Wrap(ErrTimeout, what)
	default:
		return errors.Wrap(ErrCommand, what)
	}
}
