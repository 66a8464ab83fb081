package ftfc

// A Fault is a hardware misbehavior that can be injected into the device.
type Fault int

// Supported faults.
const (
	// FaultAccessError makes the next write or command launch set ACCERR.
	FaultAccessError Fault = iota

	// FaultProtectionViolation makes the next FlexRAM write set FPVIOL.
	FaultProtectionViolation

	// FaultReadCollision makes the next FlexRAM read set RDCOLERR.
	FaultReadCollision

	// FaultMGSTAT makes the next completed operation set MGSTAT0.
	FaultMGSTAT

	// FaultStuck makes every started operation hang until cleared.
	FaultStuck

	// FaultStuckMaintenance makes the complete-quick-writes command leave
	// the pending records in place until cleared.
	FaultStuckMaintenance
)

func (f Fault) persistent() bool {
	return f == FaultStuck || f == FaultStuckMaintenance
}

// Brown-out codes reported by the EEE status query.
const (
	BrownOutNone               uint8 = 0x00
	BrownOutDuringMaintenance  uint8 = 0x02
	BrownOutDuringQuickWrites  uint8 = 0x04
	BrownOutDuringNormalWrites uint8 = 0x08
)
