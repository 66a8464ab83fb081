// Package eep implements the emulated EEPROM driver.
//
// The driver accepts one read, write, erase or compare job at a time. Public
// operations only validate and stage the job; the work is done by Tick,
// which the surrounding scheduler calls periodically. Every Tick moves a
// bounded number of bytes through the sequencer and, once the job reaches a
// terminal result, reports it and fires the notifications of the
// configuration set.
package eep

import (
	"errors"
	"sync"

	"github.com/go-logr/logr"

	"github.com/sarchlab/flexee/regs"
	"github.com/sarchlab/flexee/report"
	"github.com/sarchlab/flexee/routine"
	"github.com/sarchlab/flexee/sequencer"
	"github.com/sarchlab/flexee/sim"
)

// Driver is an emulated EEPROM driver instance.
type Driver struct {
	*sim.HookableBase

	name     string
	regs     *regs.File
	reloc    *routine.Relocator
	features Features
	devErr   report.DevErrorReporter
	prodErr  report.ProductionErrorReporter
	log      logr.Logger
	waker    Waker
	progress func()

	// lock guards the state transitions and the job info. tickLock
	// serializes the functions that drive the hardware.
	lock     sync.Mutex
	tickLock sync.Mutex

	cfg      *Config
	seq      *sequencer.Sequencer
	state    State
	result   JobResult
	mode     Mode
	job      job
	brownOut sequencer.BrownOut
}

// Name returns the name of the driver.
func (d *Driver) Name() string {
	return d.name
}

// Features returns the capability set of the driver.
func (d *Driver) Features() Features {
	return d.features
}

// Relocator returns the RAM window the access routines run from.
func (d *Driver) Relocator() *routine.Relocator {
	return d.reloc
}

// Init validates the configuration set and brings the emulated EEPROM
// online. On failure the driver is left uninitialized.
func (d *Driver) Init(cfg *Config) error {
	d.tickLock.Lock()
	defer d.tickLock.Unlock()

	d.lock.Lock()
	pending := d.state == StateJobPending
	d.lock.Unlock()

	if pending {
		return d.devError(ServiceInit, CodeBusy)
	}

	if cfg == nil {
		return d.devError(ServiceInit, CodeParamPointer)
	}

	if sum := cfg.ComputeChecksum(); sum != cfg.Checksum {
		d.log.Info("configuration checksum mismatch",
			"stored", cfg.Checksum, "computed", sum)
		d.setUninit()

		return d.devError(ServiceInit, CodeInitFailed)
	}

	if err := cfg.Validate(d.features); err != nil {
		d.log.Error(err, "invalid configuration")
		d.setUninit()

		return d.devError(ServiceInit, CodeParamConfig)
	}

	d.reloc.Unload()

	seq := sequencer.New(d.regs, d.reloc,
		[]routine.Routine{cfg.WriteRoutine, cfg.EraseRoutine},
		sequencer.Options{
			Async:        d.features.AsyncWrites,
			Timeout:      d.features.TimeoutIterations,
			Progress:     d.progress,
			AccessStart:  notifyFunc(cfg.Notifications.AccessStart),
			AccessFinish: notifyFunc(cfg.Notifications.AccessFinish),
		}).WithLogger(d.log.WithName("sequencer"))

	code, err := seq.Init()
	if err != nil {
		d.log.Error(err, "cannot bring up emulated EEPROM")
		d.setUninit()
		d.checkTimeout(ServiceInit, err)

		return d.devError(ServiceInit, CodeInitFailed)
	}

	d.reportBrownOut(cfg, code)

	d.lock.Lock()
	d.cfg = cfg
	d.seq = seq
	d.state = StateIdle
	d.result = JobOK
	d.mode = cfg.DefaultMode
	d.brownOut = code
	d.job = job{info: JobInfo{Mismatch: -1}}
	d.lock.Unlock()

	d.log.V(1).Info("initialized",
		"brownOut", code.String(), "mode", cfg.DefaultMode.String())
	d.invoke(HookPosInit, JobInfo{Mismatch: -1}, code)

	return nil
}

func (d *Driver) setUninit() {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.cfg = nil
	d.seq = nil
	d.state = StateUninit
}

// SetMode selects the throughput limits used by the following jobs.
func (d *Driver) SetMode(mode Mode) error {
	d.lock.Lock()

	code := ErrorCode(0)

	switch {
	case d.state == StateUninit:
		code = CodeUninit
	case d.state == StateJobPending:
		code = CodeBusy
	case mode != ModeSlow && mode != ModeFast:
		code = CodeParamData
	default:
		d.mode = mode
	}

	d.lock.Unlock()

	if code != 0 {
		return d.devError(ServiceSetMode, code)
	}

	return nil
}

// Mode returns the current operating mode.
func (d *Driver) Mode() Mode {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.mode
}

// Status returns the status of the driver.
func (d *Driver) Status() Status {
	d.lock.Lock()
	defer d.lock.Unlock()

	switch d.state {
	case StateIdle:
		return StatusIdle
	case StateJobPending:
		return StatusBusy
	default:
		return StatusUninit
	}
}

// State returns the internal state of the driver.
func (d *Driver) State() State {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.state
}

// JobResult returns the result of the last job.
func (d *Driver) JobResult() JobResult {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.result
}

// LastJob describes the current job, or the last one if none is pending.
func (d *Driver) LastJob() JobInfo {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.job.info
}

// BrownOut returns the brown-out code observed by the last Init.
func (d *Driver) BrownOut() sequencer.BrownOut {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.brownOut
}

// Cancel abandons the pending job. The hardware cannot abort a page, so
// Cancel waits for the page in flight to finish. A job running in quick
// writes mode cannot be canceled.
func (d *Driver) Cancel() error {
	if !d.features.CancelSupported {
		return d.devError(ServiceCancel, CodeNotSupported)
	}

	d.tickLock.Lock()
	defer d.tickLock.Unlock()

	switch d.State() {
	case StateUninit:
		return d.devError(ServiceCancel, CodeUninit)
	case StateIdle:
		return nil
	}

	j := &d.job
	if j.quickOn {
		return d.devError(ServiceCancel, CodeQuickWritesActive)
	}

	if st := d.seq.WaitIdle(); st == sequencer.StatusTimeout {
		d.devError(ServiceCancel, CodeTimeout)
	}

	d.release(j)
	d.log.V(1).Info("job canceled", "id", j.info.ID, "done", j.info.Done)
	d.complete(JobCanceled)

	return nil
}

// devError reports a development error if enabled and returns it.
func (d *Driver) devError(service ServiceID, code ErrorCode) error {
	if d.features.DevErrorDetect && d.devErr != nil {
		d.devErr.ReportError(ModuleID, InstanceID, uint8(service), uint8(code))
	}

	return &DevError{Service: service, Code: code}
}

func (d *Driver) checkTimeout(service ServiceID, err error) {
	if errors.Is(err, sequencer.ErrTimeout) {
		d.devError(service, CodeTimeout)
	}
}

func (d *Driver) reportEvent(id uint16, status report.EventStatus) {
	if !d.features.ProductionErrorsEnabled || d.prodErr == nil || id == 0 {
		return
	}

	d.prodErr.ReportErrorStatus(id, status)
}

// reportBrownOut raises the event of the observed brown-out class as failed
// and the events of the other classes as passed.
func (d *Driver) reportBrownOut(cfg *Config, code sequencer.BrownOut) {
	classes := []struct {
		code sequencer.BrownOut
		id   uint16
	}{
		{sequencer.BrownOutDuringMaintenance, cfg.ProductionErrors.BrownOutMaintenance},
		{sequencer.BrownOutDuringQuickWrites, cfg.ProductionErrors.BrownOutQuickWrites},
		{sequencer.BrownOutDuringNormalWrites, cfg.ProductionErrors.BrownOutNormalWrites},
	}

	for _, c := range classes {
		status := report.EventPassed
		if c.code == code {
			status = report.EventFailed
		}

		d.reportEvent(c.id, status)
	}
}

func notifyFunc(n Notifier) func() {
	if n == nil {
		return nil
	}

	return n.Notify
}
