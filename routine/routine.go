// Package routine provides the access routines that drive the flash
// controller and the relocator that places them in RAM.
//
// A routine must not execute from the flash block that the controller is
// modifying. The relocator copies the routine image into a reserved RAM
// window before a job starts and scrubs the window when the job ends. Calls
// only go through the relocator, so a routine that is not loaded cannot run.
package routine

import (
	"github.com/sarchlab/flexee/regs"
)

// Kind identifies an access routine.
type Kind uint8

// Supported routine kinds.
const (
	KindWrite Kind = iota
	KindErase
)

func (k Kind) String() string {
	switch k {
	case KindWrite:
		return "write"
	case KindErase:
		return "erase"
	default:
		return "unknown"
	}
}

// Access describes one controller access performed by a routine.
type Access struct {
	Regs *regs.File

	// Dst is the FlexRAM address that receives Data. It is ignored when Data
	// is empty.
	Dst regs.Addr

	// Data holds the bytes of one page, one or four bytes long. When empty,
	// the routine launches the command staged in the FCCOB registers.
	Data []byte

	// Wait makes the routine spin until CCIF is set.
	Wait bool

	// Timeout bounds the number of polls while waiting. Zero waits forever.
	Timeout uint32

	// Progress is called on every poll iteration.
	Progress func()
}

// Result is what a routine observed when it returned.
type Result struct {
	Status     uint8
	TimedOut   bool
	Iterations uint32
}

// Failed tells if the final status carries any error flag.
func (r Result) Failed() bool {
	return r.TimedOut || r.Status&(regs.ErrorFlags|regs.MGSTAT0) != 0
}

// A Routine is a relocatable piece of code that performs controller
// accesses.
type Routine interface {
	// Kind returns what the routine is used for.
	Kind() Kind

	// Image returns the position-independent machine code of the routine.
	Image() []byte

	// Run performs the access. Only the relocator calls Run.
	Run(a Access) Result
}
