package ftfc

import (
	"encoding/binary"

	"github.com/sarchlab/flexee/regs"
)

var _ regs.Bus = (*Device)(nil)

func inFlexRAM(addr regs.Addr, size uint32) (uint32, bool) {
	if addr < regs.FlexRAMBase {
		return 0, false
	}

	offset := uint32(addr - regs.FlexRAMBase)
	if offset+size > regs.FlexRAMSize {
		return 0, false
	}

	return offset, true
}

func fccobIndex(addr regs.Addr) (int, bool) {
	for i := 0; i < regs.NumFCCOB; i++ {
		if regs.FCCOB(i) == addr {
			return i, true
		}
	}

	return 0, false
}

// Read8 implements regs.Bus.
func (d *Device) Read8(addr regs.Addr) uint8 {
	d.lock.Lock()
	defer d.lock.Unlock()

	if offset, ok := inFlexRAM(addr, 1); ok {
		return d.readFlexRAM(offset, 1)[0]
	}

	return d.readRegister(addr)
}

// Read16 implements regs.Bus.
func (d *Device) Read16(addr regs.Addr) uint16 {
	d.lock.Lock()
	defer d.lock.Unlock()

	if offset, ok := inFlexRAM(addr, 2); ok {
		return leUint16(d.readFlexRAM(offset, 2))
	}

	return uint16(d.readRegister(addr)) | uint16(d.readRegister(addr+1))<<8
}

// Read32 implements regs.Bus.
func (d *Device) Read32(addr regs.Addr) uint32 {
	d.lock.Lock()
	defer d.lock.Unlock()

	if offset, ok := inFlexRAM(addr, 4); ok {
		return leUint32(d.readFlexRAM(offset, 4))
	}

	var v uint32
	for i := 0; i < 4; i++ {
		v |= uint32(d.readRegister(addr+regs.Addr(i))) << (8 * i)
	}

	return v
}

// Write8 implements regs.Bus.
func (d *Device) Write8(addr regs.Addr, v uint8) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if offset, ok := inFlexRAM(addr, 1); ok {
		d.writeFlexRAM(offset, []byte{v})
		return
	}

	d.writeRegister(addr, v)
}

// Write16 implements regs.Bus.
func (d *Device) Write16(addr regs.Addr, v uint16) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if offset, ok := inFlexRAM(addr, 2); ok {
		d.writeFlexRAM(offset, []byte{uint8(v), uint8(v >> 8)})
		return
	}

	d.writeRegister(addr, uint8(v))
	d.writeRegister(addr+1, uint8(v>>8))
}

// Write32 implements regs.Bus.
func (d *Device) Write32(addr regs.Addr, v uint32) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if offset, ok := inFlexRAM(addr, 4); ok {
		buf := make([]byte, 4)
		putLEUint32(buf, v)
		d.writeFlexRAM(offset, buf)

		return
	}

	for i := 0; i < 4; i++ {
		d.writeRegister(addr+regs.Addr(i), uint8(v>>(8*i)))
	}
}

func (d *Device) readRegister(addr regs.Addr) uint8 {
	switch addr {
	case regs.FSTAT:
		d.step()
		return d.fstat
	case regs.FCNFG:
		return d.fcnfg
	case regs.FSEC:
		return d.fsec
	case regs.FOPT:
		return d.fopt
	}

	if i, ok := fccobIndex(addr); ok {
		return d.fccob[i]
	}

	return 0
}

func (d *Device) writeRegister(addr regs.Addr, v uint8) {
	switch addr {
	case regs.FSTAT:
		d.fstat &^= v & regs.ErrorFlags
		if v&regs.CCIF != 0 {
			d.launch()
		}

		return
	case regs.FCNFG:
		writable := regs.CCIE | regs.RDCOLLIE
		d.fcnfg = (d.fcnfg &^ writable) | (v & writable)

		return
	}

	if i, ok := fccobIndex(addr); ok {
		if d.fstat&regs.CCIF == 0 {
			return
		}

		d.fccob[i] = v
	}
}

func (d *Device) readFlexRAM(offset, size uint32) []byte {
	out := make([]byte, size)

	if d.mode != modeTraditional {
		if d.fstat&regs.CCIF == 0 || d.takeFault(FaultReadCollision) {
			d.fail(regs.RDCOLERR)
			for i := range out {
				out[i] = d.spec.ErasedValue
			}

			return out
		}
	}

	copy(out, d.flexRAM[offset:offset+size])

	return out
}

func (d *Device) writeFlexRAM(offset uint32, data []byte) {
	size := uint32(len(data))

	if d.mode == modeTraditional {
		copy(d.flexRAM[offset:], data)
		return
	}

	if d.fstat&regs.CCIF == 0 ||
		offset+size > d.spec.EEESize ||
		offset%size != 0 ||
		d.takeFault(FaultAccessError) {
		d.fail(regs.ACCERR)
		return
	}

	if d.takeFault(FaultProtectionViolation) {
		d.fail(regs.FPVIOL)
		return
	}

	op := pendingOp{offset: offset, data: append([]byte(nil), data...)}

	if d.mode == modeQuick {
		if size != 4 || d.quickUsed+size > d.quickWindow {
			d.fail(regs.ACCERR)
			return
		}

		d.quickUsed += size
		op.kind = opQuickWrite
		d.startOp(op, d.spec.QuickLatency)

		return
	}

	op.kind = opWrite
	d.startOp(op, d.spec.WriteLatency)
}

func leUint16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

func leUint32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

func putLEUint32(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
}
