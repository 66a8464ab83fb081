package eep

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/sarchlab/flexee/crc"
	"github.com/sarchlab/flexee/regs"
	"github.com/sarchlab/flexee/routine"
)

// Mode selects the per-tick throughput limits.
type Mode uint8

// Operating modes.
const (
	ModeSlow Mode = iota
	ModeFast
)

func (m Mode) String() string {
	switch m {
	case ModeSlow:
		return "slow"
	case ModeFast:
		return "fast"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Limits are the maximum number of bytes a single Tick transfers.
type Limits struct {
	FastRead  uint32
	FastWrite uint32
	SlowRead  uint32
	SlowWrite uint32
}

func (l Limits) read(m Mode) uint32 {
	if m == ModeFast {
		return l.FastRead
	}

	return l.SlowRead
}

func (l Limits) write(m Mode) uint32 {
	if m == ModeFast {
		return l.FastWrite
	}

	return l.SlowWrite
}

// A Notifier is called by the driver when something happened.
type Notifier interface {
	Notify()
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func()

// Notify calls f.
func (f NotifierFunc) Notify() {
	f()
}

// Notifications are the callbacks of a configuration. Any of them can be nil.
// JobEnd and JobError run inside Tick; they may stage the next job but must
// not call Init or Cancel.
type Notifications struct {
	JobEnd       Notifier
	JobError     Notifier
	AccessStart  Notifier
	AccessFinish Notifier
}

// ProductionErrorIDs are the event IDs used for production error reporting.
// Zero disables the event.
type ProductionErrorIDs struct {
	Erase   uint16
	Write   uint16
	Read    uint16
	Compare uint16

	BrownOutMaintenance  uint16
	BrownOutQuickWrites  uint16
	BrownOutNormalWrites uint16
}

// Config is a configuration set. It is immutable once passed to Init.
//
// Checksum protects the default mode and the limits. Use Seal to compute it
// after filling in the fields.
type Config struct {
	EraseRoutine routine.Routine
	WriteRoutine routine.Routine

	Notifications Notifications

	DefaultMode Mode
	Limits      Limits

	// DeviceSize is the number of bytes of the logical address space.
	DeviceSize uint32

	// ErasedValue is what an erased byte reads back as.
	ErasedValue uint8

	ProductionErrors ProductionErrorIDs

	Checksum uint16
}

// DefaultConfig returns a sealed configuration for a 4 KiB device.
func DefaultConfig() *Config {
	c := &Config{
		EraseRoutine: routine.NewEraseRoutine(0xFF),
		WriteRoutine: routine.NewWriteRoutine(),
		DefaultMode:  ModeSlow,
		Limits: Limits{
			FastRead:  256,
			FastWrite: 64,
			SlowRead:  32,
			SlowWrite: 8,
		},
		DeviceSize:  4096,
		ErasedValue: 0xFF,
	}

	return c.Seal()
}

// ComputeChecksum returns the CRC-16 over the default mode and the limits.
func (c *Config) ComputeChecksum() uint16 {
	acc := crc.New()
	acc.Add8(uint8(c.DefaultMode))
	acc.Add32(c.Limits.FastRead)
	acc.Add32(c.Limits.FastWrite)
	acc.Add32(c.Limits.SlowRead)
	acc.Add32(c.Limits.SlowWrite)

	return acc.Sum()
}

// Seal stores the checksum of the current field values.
func (c *Config) Seal() *Config {
	c.Checksum = c.ComputeChecksum()
	return c
}

// Validate checks the configuration against the enabled features.
func (c *Config) Validate(f Features) error {
	if c.EraseRoutine == nil || c.WriteRoutine == nil {
		return errors.New("both access routines are required")
	}

	if c.EraseRoutine.Kind() != routine.KindErase ||
		c.WriteRoutine.Kind() != routine.KindWrite {
		return errors.New("access routines are of the wrong kind")
	}

	if e, ok := c.EraseRoutine.(interface{ ErasedValue() byte }); ok &&
		e.ErasedValue() != c.ErasedValue {
		return errors.Errorf("erase routine stores 0x%02X, erased value is 0x%02X",
			e.ErasedValue(), c.ErasedValue)
	}

	if c.DefaultMode != ModeSlow && c.DefaultMode != ModeFast {
		return errors.Errorf("unknown default mode %d", c.DefaultMode)
	}

	l := c.Limits
	if l.FastRead == 0 || l.FastWrite == 0 || l.SlowRead == 0 || l.SlowWrite == 0 {
		return errors.New("limits must be > 0")
	}

	if f.QuickWrites && (l.FastWrite%4 != 0 || l.SlowWrite%4 != 0) {
		return errors.New("write limits must be a multiple of 4 with quick writes")
	}

	if c.DeviceSize == 0 || c.DeviceSize > regs.FlexRAMSize {
		return errors.Errorf("device size must be in (0, %d]", regs.FlexRAMSize)
	}

	return nil
}
