// Package ftfc simulates the flash controller that manages the FlexNVM
// partition and the FlexRAM used as emulated EEPROM.
//
// The device implements regs.Bus. Time only advances when FSTAT is read or
// when Step is called, which matches how a driver observes the hardware: it
// polls the status register.
package ftfc

import (
	"sync"

	"github.com/sarchlab/flexee/memory"
	"github.com/sarchlab/flexee/regs"
)

type ramMode int

const (
	modeTraditional ramMode = iota
	modeEEE
	modeQuick
)

type opKind int

const (
	opNone opKind = iota
	opWrite
	opQuickWrite
	opCommand
)

type pendingOp struct {
	kind   opKind
	offset uint32
	data   []byte
}

// Stats counts what the device has done since it was built.
type Stats struct {
	Cycles         uint64 `json:"cycles"`
	EEPROMWrites   uint64 `json:"eeprom_writes"`
	QuickWrites    uint64 `json:"quick_writes"`
	Commands       uint64 `json:"commands"`
	FailedAccesses uint64 `json:"failed_accesses"`
}

// Device is a simulated flash controller with its FlexRAM and backing store.
type Device struct {
	lock sync.Mutex

	spec    Spec
	storage *memory.Storage

	fstat uint8
	fcnfg uint8
	fsec  uint8
	fopt  uint8
	fccob [regs.NumFCCOB]uint8

	flexRAM []byte
	mode    ramMode

	busy    int
	pending pendingOp

	quickWindow uint32
	quickUsed   uint32

	brownOut       uint8
	cleanupRecords uint16
	processRecords uint16

	faults map[Fault]bool
	stats  Stats
}

// NewDevice creates a device with a fresh, erased backing store.
func NewDevice(spec Spec) *Device {
	if err := spec.Validate(); err != nil {
		panic(err)
	}

	storage := memory.NewStorage(uint64(spec.EEESize)).
		WithErasedValue(spec.ErasedValue)

	return NewDeviceWithStorage(spec, storage)
}

// NewDeviceWithStorage creates a device on an existing backing store, which
// lets the content survive across simulated power cycles.
func NewDeviceWithStorage(spec Spec, storage *memory.Storage) *Device {
	if err := spec.Validate(); err != nil {
		panic(err)
	}

	d := &Device{
		spec:    spec,
		storage: storage,
		flexRAM: make([]byte, regs.FlexRAMSize),
		faults:  make(map[Fault]bool),
	}
	d.reset()

	return d
}

// Spec returns the parameters of the device.
func (d *Device) Spec() Spec {
	return d.spec
}

// Storage returns the backing store.
func (d *Device) Storage() *memory.Storage {
	return d.storage
}

// Reset simulates a power cycle. The backing store and any brown-out
// information are kept.
func (d *Device) Reset() {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.reset()
}

func (d *Device) reset() {
	d.fstat = regs.CCIF
	d.fcnfg = 0
	d.fccob = [regs.NumFCCOB]uint8{}
	d.busy = 0
	d.pending = pendingOp{}
	d.quickWindow = 0
	d.quickUsed = 0
	d.mode = modeTraditional

	if d.spec.AutoEEE {
		d.enterEEE()
	} else {
		d.fcnfg |= regs.RAMRDY
	}
}

// BrownOut simulates a supply loss while the device is doing the given
// activity. The in-flight operation is lost. Call Reset afterwards to power
// the device up again.
func (d *Device) BrownOut(code uint8) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.busy = 0
	d.pending = pendingOp{}
	d.brownOut = code

	switch code {
	case BrownOutDuringMaintenance, BrownOutDuringQuickWrites:
		if d.cleanupRecords == 0 {
			d.cleanupRecords = 1
		}
	}
}

// InjectFault arms a fault. Persistent faults stay armed until ClearFaults.
func (d *Device) InjectFault(f Fault) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.faults[f] = true
}

// ClearFaults disarms every fault.
func (d *Device) ClearFaults() {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.faults = make(map[Fault]bool)
}

// Stats returns the activity counters.
func (d *Device) Stats() Stats {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.stats
}

// Busy tells if an operation is in progress.
func (d *Device) Busy() bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.fstat&regs.CCIF == 0
}

// Step advances the device by one cycle.
func (d *Device) Step() {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.step()
}

func (d *Device) takeFault(f Fault) bool {
	if !d.faults[f] {
		return false
	}

	if !f.persistent() {
		delete(d.faults, f)
	}

	return true
}

func (d *Device) step() {
	d.stats.Cycles++

	if d.busy <= 0 {
		return
	}

	d.busy--
	if d.busy == 0 {
		d.complete()
	}
}

func (d *Device) startOp(op pendingOp, latency int) {
	d.pending = op
	d.fstat &^= regs.CCIF | regs.MGSTAT0

	if d.faults[FaultStuck] {
		d.busy = -1
		return
	}

	d.busy = latency
}

func (d *Device) complete() {
	op := d.pending
	d.pending = pendingOp{}

	switch op.kind {
	case opWrite:
		d.commit(op)
		d.stats.EEPROMWrites++
	case opQuickWrite:
		d.commit(op)
		d.processRecords++
		d.stats.QuickWrites++
	case opCommand:
		d.executeCommand()
		d.stats.Commands++
	}

	if d.takeFault(FaultMGSTAT) {
		d.fstat |= regs.MGSTAT0
	}

	d.fstat |= regs.CCIF
}

func (d *Device) commit(op pendingOp) {
	copy(d.flexRAM[op.offset:], op.data)

	err := d.storage.Write(uint64(op.offset), op.data)
	if err != nil {
		panic(err)
	}
}

func (d *Device) enterEEE() {
	data, err := d.storage.Read(0, uint64(d.spec.EEESize))
	if err != nil {
		panic(err)
	}

	copy(d.flexRAM, data)

	d.mode = modeEEE
	d.fcnfg = (d.fcnfg &^ regs.RAMRDY) | regs.EEERDY
}

func (d *Device) fail(flag uint8) {
	d.fstat |= flag
	d.stats.FailedAccesses++
}
