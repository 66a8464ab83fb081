package sequencer

import (
	"encoding/binary"

	"github.com/sarchlab/flexee/regs"
)

// Read copies len(buf) bytes from the FlexRAM offset into buf.
func (s *Sequencer) Read(offset uint32, buf []byte) Status {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.Ready() {
		return StatusNotReady
	}

	s.accessStart()
	s.copyOut(offset, buf, func(i int, b []byte) bool {
		copy(buf[i:], b)
		return true
	})
	s.accessFinish()

	return s.checkCollision()
}

// Compare checks len(buf) bytes at the FlexRAM offset against buf. On a
// mismatch it returns StatusMismatch and the index of the first differing
// byte.
func (s *Sequencer) Compare(offset uint32, buf []byte) (Status, int) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.Ready() {
		return StatusNotReady, 0
	}

	mismatch := -1

	s.accessStart()
	s.copyOut(offset, buf, func(i int, b []byte) bool {
		for j := range b {
			if buf[i+j] != b[j] {
				mismatch = i + j
				return false
			}
		}

		return true
	})
	s.accessFinish()

	if st := s.checkCollision(); st != StatusOK {
		return st, 0
	}

	if mismatch >= 0 {
		return StatusMismatch, mismatch
	}

	return StatusOK, 0
}

// copyOut walks the range in words where aligned and bytes elsewhere. The
// visitor returns false to stop early.
func (s *Sequencer) copyOut(
	offset uint32,
	buf []byte,
	visit func(i int, b []byte) bool,
) {
	word := make([]byte, 4)

	for i := 0; i < len(buf); {
		addr := offset + uint32(i)

		if addr%4 == 0 && len(buf)-i >= 4 {
			binary.LittleEndian.PutUint32(word, s.regs.Read32(regs.FlexRAM(addr)))
			if !visit(i, word) {
				return
			}

			i += 4

			continue
		}

		if !visit(i, []byte{s.regs.Read8(regs.FlexRAM(addr))}) {
			return
		}

		i++
	}
}

func (s *Sequencer) checkCollision() Status {
	fstat := s.regs.Status()
	s.lastFSTAT = fstat

	if fstat&regs.RDCOLERR != 0 {
		s.regs.ClearErrors()
		return StatusFailed
	}

	return StatusOK
}
