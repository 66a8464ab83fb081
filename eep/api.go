package eep

import (
	"github.com/sarchlab/flexee/sim"
)

// Quick-writes window bounds, in bytes.
const (
	MinQuickWindow = 16
	MaxQuickWindow = 512
)

// Read stages a job that copies length bytes at addr into buf. buf must stay
// valid until the job ends.
func (d *Driver) Read(addr uint32, buf []byte, length uint32) error {
	if err := d.validate(ServiceRead, addr, length, buf, true); err != nil {
		return err
	}

	return d.accept(ServiceRead, job{
		info: JobInfo{Kind: JobRead, Address: addr, Length: length},
		buf:  buf[:length],
	})
}

// Write stages a job that programs length bytes of src at addr. The data is
// copied, so src may be reused once Write returns.
func (d *Driver) Write(addr uint32, src []byte, length uint32) error {
	if err := d.validate(ServiceWrite, addr, length, src, true); err != nil {
		return err
	}

	return d.accept(ServiceWrite, job{
		info: JobInfo{Kind: JobWrite, Address: addr, Length: length},
		buf:  append([]byte(nil), src[:length]...),
	})
}

// Erase stages a job that sets length bytes at addr to the erased value.
func (d *Driver) Erase(addr uint32, length uint32) error {
	if err := d.validate(ServiceErase, addr, length, nil, false); err != nil {
		return err
	}

	return d.accept(ServiceErase, job{
		info: JobInfo{Kind: JobErase, Address: addr, Length: length},
	})
}

// Compare stages a job that checks length bytes at addr against buf. A
// difference ends the job with JobBlockInconsistent.
func (d *Driver) Compare(addr uint32, buf []byte, length uint32) error {
	if err := d.validate(ServiceCompare, addr, length, buf, true); err != nil {
		return err
	}

	return d.accept(ServiceCompare, job{
		info: JobInfo{Kind: JobCompare, Address: addr, Length: length},
		buf:  buf[:length],
	})
}

// QuickWrite stages a write job that runs in quick-writes mode. The address
// must be word aligned, the window must be a multiple of 4 in
// [MinQuickWindow, MaxQuickWindow] and the length a multiple of the window.
// Each window is one quick-writes session of the controller.
func (d *Driver) QuickWrite(
	addr uint32,
	src []byte,
	length uint32,
	window uint16,
) error {
	if !d.features.QuickWrites {
		return d.devError(ServiceQuickWrite, CodeNotSupported)
	}

	err := d.validate(ServiceQuickWrite, addr, length, src, true)
	if err != nil {
		return err
	}

	if addr%4 != 0 {
		return d.devError(ServiceQuickWrite, CodeParamAddress)
	}

	if window < MinQuickWindow || window > MaxQuickWindow || window%4 != 0 {
		return d.devError(ServiceQuickWrite, CodeParamLength)
	}

	if length%uint32(window) != 0 {
		return d.devError(ServiceQuickWrite, CodeParamLength)
	}

	return d.accept(ServiceQuickWrite, job{
		info: JobInfo{
			Kind:    JobWrite,
			Address: addr,
			Length:  length,
			Quick:   true,
		},
		buf:    append([]byte(nil), src[:length]...),
		window: window,
	})
}

func (d *Driver) validate(
	service ServiceID,
	addr, length uint32,
	buf []byte,
	needBuf bool,
) error {
	d.lock.Lock()
	state := d.state
	cfg := d.cfg
	d.lock.Unlock()

	if state == StateUninit {
		return d.devError(service, CodeUninit)
	}

	if addr >= cfg.DeviceSize {
		return d.devError(service, CodeParamAddress)
	}

	if needBuf && buf == nil {
		return d.devError(service, CodeParamPointer)
	}

	if length == 0 ||
		uint64(addr)+uint64(length) > uint64(cfg.DeviceSize) ||
		(needBuf && uint64(len(buf)) < uint64(length)) {
		return d.devError(service, CodeParamLength)
	}

	return nil
}

// accept stages the job unless the previous one is still pending.
func (d *Driver) accept(service ServiceID, j job) error {
	d.lock.Lock()

	if d.result == JobPending {
		d.lock.Unlock()
		return d.devError(service, CodeBusy)
	}

	j.info.ID = sim.GetIDGenerator().Generate()
	j.info.Mode = d.mode
	j.info.Result = JobPending
	j.info.Mismatch = -1
	j.cursor = j.info.Address
	j.remaining = j.info.Length

	d.job = j
	d.state = StateJobPending
	d.result = JobPending

	info := j.info
	d.lock.Unlock()

	d.log.V(1).Info("job accepted",
		"id", info.ID,
		"kind", info.Kind.String(),
		"address", info.Address,
		"length", info.Length,
		"quick", info.Quick)
	d.invoke(HookPosJobAccepted, info, nil)

	if d.waker != nil {
		d.waker.TickLater()
	}

	return nil
}
