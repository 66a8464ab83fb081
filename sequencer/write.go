package sequencer

import (
	"github.com/sarchlab/flexee/regs"
	"github.com/sarchlab/flexee/routine"
)

// pageSize returns the number of bytes of the next hardware page. Bytes are
// stored one at a time until the address is word aligned, then a word at a
// time, then the tail one byte at a time. Quick writes always use words.
func pageSize(offset, remaining uint32, quick bool) uint32 {
	if quick {
		return 4
	}

	if offset%4 == 0 && remaining >= 4 {
		return 4
	}

	return 1
}

func (s *Sequencer) pageData(data []byte, at, size uint32) []byte {
	if data == nil {
		return make([]byte, size)
	}

	return data[at : at+size]
}

// programPage stores one page. When wait is false it returns
// StatusWriteRequested as soon as the controller accepted the page.
func (s *Sequencer) programPage(
	kind routine.Kind,
	offset uint32,
	page []byte,
	wait bool,
) Status {
	if s.regs.Status()&regs.ErrorFlags != 0 {
		s.regs.ClearErrors()
	}

	res, err := s.call(kind, routine.Access{
		Dst:     regs.FlexRAM(offset),
		Data:    page,
		Wait:    wait,
		Timeout: s.opts.Timeout,
	})
	if err != nil {
		s.log.Error(err, "cannot program page", "offset", offset)
		return StatusFailed
	}

	if wait {
		return s.checkResult(res)
	}

	if res.Status&regs.ErrorFlags != 0 {
		return StatusFailed
	}

	return StatusWriteRequested
}

// Write programs length bytes at the FlexRAM offset and blocks until all of
// them are done. Data may be nil for an erase. It returns the number of
// bytes that were programmed successfully.
func (s *Sequencer) Write(
	kind routine.Kind,
	offset uint32,
	data []byte,
	length uint32,
) (Status, uint32) {
	s.lock.Lock()
	defer s.lock.Unlock()

	done := uint32(0)
	for done < length {
		size := pageSize(offset+done, length-done, s.quick)
		if done+size > length {
			return StatusFailed, done
		}

		st := s.programPage(kind, offset+done, s.pageData(data, done, size), true)
		if st != StatusOK {
			return st, done
		}

		done += size
	}

	return StatusOK, done
}

// StartWrite registers a transfer that Poll performs one page at a time.
func (s *Sequencer) StartWrite(
	kind routine.Kind,
	offset uint32,
	data []byte,
	length uint32,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.xfer.active {
		return ErrBusy
	}

	s.xfer = transfer{
		active: true,
		kind:   kind,
		offset: offset,
		data:   data,
		length: length,
	}

	return nil
}

// Transferring tells if an asynchronous transfer is registered.
func (s *Sequencer) Transferring() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.xfer.active
}

// Poll advances the asynchronous transfer by at most one page. It returns
// StatusWriteRequested while the transfer goes on, and the number of bytes
// whose programming completed during this call. After the last page, one
// more call waits for the controller to settle and reports the final status.
func (s *Sequencer) Poll() (Status, uint32) {
	s.lock.Lock()
	defer s.lock.Unlock()

	x := &s.xfer
	if !x.active {
		return StatusOK, 0
	}

	completed := uint32(0)

	if x.inFlight {
		fstat := s.regs.Status()
		s.lastFSTAT = fstat

		if fstat&regs.CCIF == 0 {
			return s.pollBusy()
		}

		x.inFlight = false

		if fstat&(regs.ErrorFlags|regs.MGSTAT0) != 0 {
			s.log.V(1).Info("page failed", "offset", x.offset+x.done, "fstat", fstat)
			s.xfer = transfer{}

			return StatusFailed, 0
		}

		x.done += x.pageSize
		completed = x.pageSize
	}

	if x.done >= x.length {
		s.xfer = transfer{}
		s.timedOut = false

		return StatusOK, completed
	}

	size := pageSize(x.offset+x.done, x.length-x.done, s.quick)
	if x.done+size > x.length {
		s.xfer = transfer{}
		return StatusFailed, completed
	}

	st := s.programPage(x.kind, x.offset+x.done, s.pageData(x.data, x.done, size), false)
	if st != StatusWriteRequested {
		s.xfer = transfer{}
		return StatusFailed, completed
	}

	x.inFlight = true
	x.pageSize = size
	x.pollsLeft = s.opts.Timeout

	return StatusWriteRequested, completed
}

func (s *Sequencer) pollBusy() (Status, uint32) {
	if s.opts.Timeout == 0 {
		return StatusWriteRequested, 0
	}

	s.xfer.pollsLeft--
	if s.xfer.pollsLeft == 0 {
		s.log.Info("asynchronous write timed out",
			"offset", s.xfer.offset+s.xfer.done)
		s.xfer = transfer{}
		s.timedOut = true

		return StatusTimeout, 0
	}

	return StatusWriteRequested, 0
}
