package sequencer

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/flexee/regs"
)

// EEEStatus is the result of an EEE status query.
type EEEStatus struct {
	BrownOut       BrownOut
	CleanupRecords uint16
	ProcessRecords uint16
}

// Pending tells if the controller still has maintenance work to finish.
func (s EEEStatus) Pending() bool {
	return s.BrownOut != BrownOutNone ||
		s.CleanupRecords != 0 ||
		s.ProcessRecords != 0
}

// Init brings FlexRAM online as emulated EEPROM and finishes any maintenance
// left behind by a brown-out. It returns the brown-out code observed before
// the maintenance.
func (s *Sequencer) Init() (BrownOut, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.xfer = transfer{}
	s.quick = false

	if !s.regs.BitsSet(regs.FCNFG, regs.EEERDY) {
		s.log.Info("FlexRAM not in EEE mode, setting EEERAM")

		st := s.execute(regs.SetRAMEEERAM, 0, false)
		if err := statusError(st, "set FlexRAM as EEERAM"); err != nil {
			return BrownOutNone, err
		}

		if !s.regs.BitsSet(regs.FCNFG, regs.EEERDY) {
			return BrownOutNone, ErrNotReady
		}
	}

	status, err := s.queryStatus()
	if err != nil {
		return BrownOutNone, err
	}

	if !status.Pending() {
		return BrownOutNone, nil
	}

	s.log.Info("completing interrupted EEPROM maintenance",
		"brownOut", status.BrownOut.String(),
		"cleanupRecords", status.CleanupRecords,
		"processRecords", status.ProcessRecords)

	st := s.execute(regs.SetRAMCompleteQuick, 0, false)
	if st != StatusOK {
		if st == StatusTimeout {
			return status.BrownOut, errors.Wrap(ErrTimeout, "complete quick writes")
		}

		return status.BrownOut, ErrMaintenance
	}

	after, err := s.queryStatus()
	if err != nil {
		return status.BrownOut, err
	}

	if after.CleanupRecords != 0 || after.ProcessRecords != 0 {
		return status.BrownOut, errors.Wrapf(ErrNotReady,
			"%d records left after maintenance",
			int(after.CleanupRecords)+int(after.ProcessRecords))
	}

	return status.BrownOut, nil
}

// QueryStatus runs the EEE status query.
func (s *Sequencer) QueryStatus() (EEEStatus, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.queryStatus()
}

func (s *Sequencer) queryStatus() (EEEStatus, error) {
	st := s.execute(regs.SetRAMEEEStatusQuery, 0, false)
	if err := statusError(st, "EEE status query"); err != nil {
		return EEEStatus{}, err
	}

	return EEEStatus{
		BrownOut:       BrownOut(s.regs.ReadCommandResult8(5)),
		CleanupRecords: s.regs.ReadCommandResult16(6),
		ProcessRecords: s.regs.ReadCommandResult16(8),
	}, nil
}

// SetQuickWrites switches the controller into quick-writes mode for a
// window of size bytes.
func (s *Sequencer) SetQuickWrites(size uint16) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	st := s.execute(regs.SetRAMQuickWrites, size, true)
	if err := statusError(st, "set quick writes"); err != nil {
		return err
	}

	s.quick = true

	return nil
}

// SetEERAM returns the controller to normal emulated EEPROM mode.
func (s *Sequencer) SetEERAM() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	st := s.execute(regs.SetRAMEEERAM, 0, false)
	if err := statusError(st, "set FlexRAM as EEERAM"); err != nil {
		return err
	}

	s.quick = false

	if !s.regs.BitsSet(regs.FCNFG, regs.EEERDY) {
		return ErrNotReady
	}

	return nil
}

// CompleteMaintenance runs the complete-interrupted-quick-writes command.
func (s *Sequencer) CompleteMaintenance() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	st := s.execute(regs.SetRAMCompleteQuick, 0, false)
	if st != StatusOK {
		return ErrMaintenance
	}

	return nil
}

// WaitIdle waits for the in-flight hardware step to finish and drops any
// unfinished transfer. The controller cannot abort a step, so this is the
// closest thing to a cancel.
func (s *Sequencer) WaitIdle() Status {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.xfer = transfer{}

	return s.waitCCIF()
}
