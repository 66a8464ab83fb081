package ftfc

import (
	"github.com/sarchlab/flexee/regs"
)

func (d *Device) launch() {
	if d.fstat&regs.CCIF == 0 {
		return
	}

	if d.fstat&(regs.ACCERR|regs.FPVIOL) != 0 {
		return
	}

	if d.takeFault(FaultAccessError) {
		d.fail(regs.ACCERR)
		return
	}

	d.startOp(pendingOp{kind: opCommand}, d.spec.CommandLatency)
}

func (d *Device) executeCommand() {
	if d.fccob[0] != regs.CmdSetRAM {
		d.fail(regs.ACCERR)
		return
	}

	switch d.fccob[1] {
	case regs.SetRAMEEERAM:
		d.setEEERAM()
	case regs.SetRAMTraditional:
		d.mode = modeTraditional
		d.fcnfg = (d.fcnfg &^ regs.EEERDY) | regs.RAMRDY
	case regs.SetRAMQuickWrites:
		d.setQuickWrites()
	case regs.SetRAMCompleteQuick:
		d.completeQuickWrites()
	case regs.SetRAMEEEStatusQuery:
		d.statusQuery()
	default:
		d.fail(regs.ACCERR)
	}
}

func (d *Device) setEEERAM() {
	if d.mode == modeQuick {
		d.processRecords = 0
		d.cleanupRecords = 0
		d.quickWindow = 0
		d.quickUsed = 0
	}

	d.enterEEE()
}

func (d *Device) setQuickWrites() {
	size := uint32(d.fccob[4])<<8 | uint32(d.fccob[5])

	if d.mode != modeEEE || size < 16 || size > 512 || size%4 != 0 {
		d.fail(regs.ACCERR)
		return
	}

	d.mode = modeQuick
	d.quickWindow = size
	d.quickUsed = 0
}

func (d *Device) completeQuickWrites() {
	if d.faults[FaultStuckMaintenance] {
		return
	}

	d.cleanupRecords = 0
	d.processRecords = 0
	d.brownOut = BrownOutNone
}

func (d *Device) statusQuery() {
	d.fccob[5] = d.brownOut
	d.fccob[6] = uint8(d.cleanupRecords >> 8)
	d.fccob[7] = uint8(d.cleanupRecords)
	d.fccob[8] = uint8(d.processRecords >> 8)
	d.fccob[9] = uint8(d.processRecords)
}
