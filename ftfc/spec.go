package ftfc

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/flexee/regs"
)

// Spec holds the immutable parameters of a simulated controller.
type Spec struct {
	// EEESize is the number of FlexRAM bytes backed by the emulated EEPROM.
	EEESize uint32

	// Latencies are expressed in controller cycles. One cycle passes every
	// time FSTAT is read.
	WriteLatency   int
	QuickLatency   int
	CommandLatency int

	// AutoEEE makes FlexRAM come out of reset in EEE mode, as on a part whose
	// partition has been configured for emulated EEPROM.
	AutoEEE bool

	ErasedValue byte
}

// Validate checks that the spec describes a controller that can be built.
func (s Spec) Validate() error {
	if s.EEESize == 0 || s.EEESize > regs.FlexRAMSize {
		return errors.Errorf("EEE size must be in (0, %d]", regs.FlexRAMSize)
	}

	if s.WriteLatency <= 0 || s.QuickLatency <= 0 || s.CommandLatency <= 0 {
		return errors.New("latencies must be > 0")
	}

	return nil
}

// Defaults returns a Spec resembling a 4 KB emulated EEPROM.
func Defaults() Spec {
	return Spec{
		EEESize:        regs.FlexRAMSize,
		WriteLatency:   8,
		QuickLatency:   2,
		CommandLatency: 4,
		AutoEEE:        true,
		ErasedValue:    0xFF,
	}
}
