package eep

import (
	"github.com/sarchlab/flexee/report"
	"github.com/sarchlab/flexee/routine"
	"github.com/sarchlab/flexee/sequencer"
)

// Tick performs one bounded increment of the pending job. It returns true
// while the job needs more ticks.
func (d *Driver) Tick() bool {
	d.tickLock.Lock()
	defer d.tickLock.Unlock()

	d.lock.Lock()
	pending := d.state == StateJobPending
	mode := d.mode
	d.lock.Unlock()

	if !pending {
		return false
	}

	j := &d.job

	if !j.started {
		j.started = true

		if res := d.begin(j); res != JobPending {
			d.finish(j, res)
			return false
		}
	}

	moved, res := d.step(j, mode)
	if moved > 0 {
		d.invoke(HookPosTransfer, d.LastJob(), moved)
	}

	if res != JobPending {
		d.finish(j, res)
		return false
	}

	return true
}

// begin relocates the access routine and enters quick-writes mode as the job
// requires.
func (d *Driver) begin(j *job) JobResult {
	kind, writes := routineKind(j.info.Kind)

	if writes && d.features.LoadOnJobStart {
		if err := d.reloc.Load(d.routineFor(kind)); err != nil {
			d.log.Error(err, "cannot relocate access routine", "kind", kind.String())
			return JobFailed
		}

		j.loaded = true
	}

	if !j.info.Quick {
		return JobPending
	}

	err := d.seq.SetQuickWrites(j.window)
	if err == nil {
		j.quickOn = true
		j.windowLeft = uint32(j.window)

		return JobPending
	}

	d.log.Info("cannot enter quick writes, falling back to normal writes",
		"window", j.window, "reason", err.Error())
	d.checkTimeout(ServiceMainFunction, err)

	if err := d.seq.SetEERAM(); err != nil {
		d.log.Error(err, "cannot restore normal writes")
		d.checkTimeout(ServiceMainFunction, err)

		return JobFailed
	}

	d.lock.Lock()
	j.info.Quick = false
	d.lock.Unlock()

	return JobPending
}

func (d *Driver) step(j *job, mode Mode) (uint32, JobResult) {
	switch j.info.Kind {
	case JobRead:
		return d.stepRead(j, mode)
	case JobCompare:
		return d.stepCompare(j, mode)
	case JobWrite, JobErase:
		if d.features.AsyncWrites {
			return d.stepWriteAsync(j, mode)
		}

		return d.stepWrite(j, mode)
	default:
		return 0, JobFailed
	}
}

func (d *Driver) stepRead(j *job, mode Mode) (uint32, JobResult) {
	n := min(j.remaining, d.cfg.Limits.read(mode))

	st := d.seq.Read(j.cursor, j.buf[j.pos:j.pos+n])
	if st != sequencer.StatusOK {
		d.log.Info("read failed", "address", j.cursor, "status", st.String())
		return 0, JobFailed
	}

	d.advance(j, n)

	return n, d.progressResult(j)
}

func (d *Driver) stepCompare(j *job, mode Mode) (uint32, JobResult) {
	n := min(j.remaining, d.cfg.Limits.read(mode))

	st, at := d.seq.Compare(j.cursor, j.buf[j.pos:j.pos+n])

	switch st {
	case sequencer.StatusOK:
		d.advance(j, n)
		return n, d.progressResult(j)
	case sequencer.StatusMismatch:
		d.lock.Lock()
		j.info.Mismatch = int(j.pos) + at
		d.lock.Unlock()

		d.log.V(1).Info("compare mismatch",
			"address", j.cursor+uint32(at), "offset", j.info.Mismatch)

		return 0, JobBlockInconsistent
	default:
		d.log.Info("compare failed", "address", j.cursor, "status", st.String())
		return 0, JobFailed
	}
}

func (d *Driver) chunkSize(j *job, mode Mode) uint32 {
	n := min(j.remaining, d.cfg.Limits.write(mode))
	if j.quickOn {
		n = min(n, j.windowLeft)
	}

	return n
}

func (d *Driver) stepWrite(j *job, mode Mode) (uint32, JobResult) {
	kind, _ := routineKind(j.info.Kind)
	n := d.chunkSize(j, mode)

	st, done := d.seq.Write(kind, j.cursor, j.data(n), n)
	d.advance(j, done)

	if st != sequencer.StatusOK {
		d.hardwareFailure(j, st)
		return done, JobFailed
	}

	if j.remaining == 0 {
		return done, JobOK
	}

	return done, d.rearm(j)
}

func (d *Driver) stepWriteAsync(j *job, mode Mode) (uint32, JobResult) {
	kind, _ := routineKind(j.info.Kind)

	if !j.chunkSet {
		n := d.chunkSize(j, mode)

		if err := d.seq.StartWrite(kind, j.cursor, j.data(n), n); err != nil {
			d.log.Error(err, "cannot start transfer")
			return 0, JobFailed
		}

		j.chunkSet = true
	}

	st, done := d.seq.Poll()
	d.advance(j, done)

	switch st {
	case sequencer.StatusWriteRequested:
		return done, JobPending
	case sequencer.StatusOK:
		j.chunkSet = false

		if j.remaining == 0 {
			return done, JobOK
		}

		return done, d.rearm(j)
	default:
		j.chunkSet = false
		d.hardwareFailure(j, st)

		return done, JobFailed
	}
}

// rearm starts the next quick-writes session once the current window is
// used up.
func (d *Driver) rearm(j *job) JobResult {
	if !j.quickOn || j.windowLeft != 0 {
		return JobPending
	}

	if err := d.seq.SetEERAM(); err != nil {
		d.log.Error(err, "cannot close quick-writes window")
		d.checkTimeout(ServiceMainFunction, err)

		return JobFailed
	}

	if err := d.seq.SetQuickWrites(j.window); err != nil {
		j.quickOn = false
		d.log.Error(err, "cannot open quick-writes window")
		d.checkTimeout(ServiceMainFunction, err)

		return JobFailed
	}

	j.windowLeft = uint32(j.window)

	return JobPending
}

func (d *Driver) advance(j *job, n uint32) {
	d.lock.Lock()
	j.advance(n)
	d.lock.Unlock()

	if j.quickOn {
		j.windowLeft -= n
	}
}

func (d *Driver) progressResult(j *job) JobResult {
	if j.remaining == 0 {
		return JobOK
	}

	return JobPending
}

func (d *Driver) hardwareFailure(j *job, st sequencer.Status) {
	d.log.Info("hardware failure",
		"id", j.info.ID,
		"address", j.cursor,
		"status", st.String(),
		"fstat", d.seq.LastStatus())

	if st == sequencer.StatusTimeout {
		d.devError(ServiceMainFunction, CodeTimeout)
	}
}

// finish leaves quick-writes mode, releases the access routine and reports
// the terminal result.
func (d *Driver) finish(j *job, res JobResult) {
	if j.quickOn {
		j.quickOn = false

		if err := d.seq.SetEERAM(); err != nil {
			d.log.Error(err, "cannot leave quick writes")
			d.checkTimeout(ServiceMainFunction, err)

			if res == JobOK {
				res = JobFailed
			}
		}
	}

	d.release(j)
	d.reportJob(j.info.Kind, res)
	d.complete(res)
}

func (d *Driver) release(j *job) {
	if j.loaded {
		d.reloc.Unload()
		j.loaded = false
	}
}

func (d *Driver) reportJob(kind JobKind, res JobResult) {
	ids := d.cfg.ProductionErrors

	var id uint16

	switch kind {
	case JobRead:
		id = ids.Read
	case JobWrite:
		id = ids.Write
	case JobErase:
		id = ids.Erase
	case JobCompare:
		id = ids.Compare
	}

	status := report.EventPassed
	if res == JobFailed {
		status = report.EventFailed
	}

	d.reportEvent(id, status)
}

// complete moves the driver back to idle and notifies the user.
func (d *Driver) complete(res JobResult) {
	d.lock.Lock()
	d.job.info.Result = res
	d.result = res
	d.state = StateIdle
	info := d.job.info
	d.lock.Unlock()

	d.log.V(1).Info("job done",
		"id", info.ID,
		"kind", info.Kind.String(),
		"result", res.String(),
		"done", info.Done)
	d.invoke(HookPosJobDone, info, res)

	n := d.cfg.Notifications
	if res == JobOK {
		if n.JobEnd != nil {
			n.JobEnd.Notify()
		}

		return
	}

	if n.JobError != nil {
		n.JobError.Notify()
	}
}

func (d *Driver) routineFor(kind routine.Kind) routine.Routine {
	if kind == routine.KindErase {
		return d.cfg.EraseRoutine
	}

	return d.cfg.WriteRoutine
}

func routineKind(k JobKind) (routine.Kind, bool) {
	switch k {
	case JobWrite:
		return routine.KindWrite, true
	case JobErase:
		return routine.KindErase, true
	default:
		return routine.KindWrite, false
	}
}
