package eep

import (
	"github.com/go-logr/logr"

	"github.com/sarchlab/flexee/regs"
	"github.com/sarchlab/flexee/report"
	"github.com/sarchlab/flexee/routine"
	"github.com/sarchlab/flexee/sim"
)

// Default RAM window the access routines are relocated to.
const (
	DefaultRoutineBase   uint32 = 0x1FFF8000
	DefaultRoutineWindow int    = 64
)

// A Waker arms the scheduler so that Tick is called soon.
type Waker interface {
	TickLater()
}

// Builder creates drivers.
type Builder struct {
	regs     *regs.File
	reloc    *routine.Relocator
	features Features
	devErr   report.DevErrorReporter
	prodErr  report.ProductionErrorReporter
	log      logr.Logger
	waker    Waker
	progress func()
}

// MakeBuilder returns a Builder with every feature enabled.
func MakeBuilder() Builder {
	return Builder{
		features: DefaultFeatures(),
		log:      logr.Discard(),
	}
}

// WithRegisters sets the register file of the flash controller.
func (b Builder) WithRegisters(rf *regs.File) Builder {
	b.regs = rf
	return b
}

// WithRelocator sets the RAM window the access routines run from.
func (b Builder) WithRelocator(r *routine.Relocator) Builder {
	b.reloc = r
	return b
}

// WithFeatures sets the capability set.
func (b Builder) WithFeatures(f Features) Builder {
	b.features = f
	return b
}

// WithDevErrorReporter sets the development error sink.
func (b Builder) WithDevErrorReporter(r report.DevErrorReporter) Builder {
	b.devErr = r
	return b
}

// WithProductionErrorReporter sets the production error sink.
func (b Builder) WithProductionErrorReporter(
	r report.ProductionErrorReporter,
) Builder {
	b.prodErr = r
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(log logr.Logger) Builder {
	b.log = log
	return b
}

// WithWaker sets what is called to arm the scheduler when a job is
// accepted.
func (b Builder) WithWaker(w Waker) Builder {
	b.waker = w
	return b
}

// WithProgress sets the function called on every poll while the driver waits
// for the controller.
func (b Builder) WithProgress(f func()) Builder {
	b.progress = f
	return b
}

// Build creates an uninitialized driver. Init must be called before use.
func (b Builder) Build(name string) *Driver {
	if b.regs == nil {
		panic("eep: register file is required")
	}

	reloc := b.reloc
	if reloc == nil {
		reloc = routine.NewRelocator(DefaultRoutineBase, DefaultRoutineWindow, true)
	}

	d := &Driver{
		HookableBase: sim.NewHookableBase(),
		name:         name,
		regs:         b.regs,
		reloc:        reloc,
		features:     b.features,
		devErr:       b.devErr,
		prodErr:      b.prodErr,
		log:          b.log.WithName(name),
		waker:        b.waker,
		progress:     b.progress,
		state:        StateUninit,
		result:       JobOK,
	}

	return d
}
