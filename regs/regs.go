// Package regs provides typed access to the flash controller register file.
//
// The register file is a thin layer over a Bus. It keeps no state of its own,
// so a File can be created wherever a component needs register access.
package regs

// Addr is a byte address on the peripheral bus.
type Addr uint32

// FTFC register map.
const (
	FTFCBase Addr = 0x40020000

	FSTAT Addr = FTFCBase + 0x0
	FCNFG Addr = FTFCBase + 0x1
	FSEC  Addr = FTFCBase + 0x2
	FOPT  Addr = FTFCBase + 0x3

	fccobBase Addr = FTFCBase + 0x4

	// NumFCCOB is the number of command object registers.
	NumFCCOB = 12
)

// FlexRAM window.
const (
	FlexRAMBase Addr   = 0x14000000
	FlexRAMSize uint32 = 0x1000
)

// FSTAT bits.
const (
	CCIF     uint8 = 0x80
	RDCOLERR uint8 = 0x40
	ACCERR   uint8 = 0x20
	FPVIOL   uint8 = 0x10
	MGSTAT0  uint8 = 0x01

	// ErrorFlags are the write-one-to-clear error bits of FSTAT.
	ErrorFlags = RDCOLERR | ACCERR | FPVIOL
)

// FCNFG bits.
const (
	CCIE     uint8 = 0x80
	RDCOLLIE uint8 = 0x40
	RAMRDY   uint8 = 0x02
	EEERDY   uint8 = 0x01
)

// Command codes and SETRAM control codes.
const (
	CmdSetRAM uint8 = 0x81

	SetRAMEEERAM         uint8 = 0xFF
	SetRAMTraditional    uint8 = 0x00
	SetRAMQuickWrites    uint8 = 0xAA
	SetRAMCompleteQuick  uint8 = 0x77
	SetRAMEEEStatusQuery uint8 = 0x55
)

// FCCOB returns the address of the n-th command object register. Within each
// group of four the registers are laid out in descending order.
func FCCOB(n int) Addr {
	if n < 0 || n >= NumFCCOB {
		panic("regs: FCCOB index out of range")
	}

	group := n / 4
	inGroup := n % 4

	return fccobBase + Addr(group*4+3-inGroup)
}

// A Bus performs single accesses on the peripheral bus.
type Bus interface {
	Read8(addr Addr) uint8
	Read16(addr Addr) uint16
	Read32(addr Addr) uint32
	Write8(addr Addr, v uint8)
	Write16(addr Addr, v uint16)
	Write32(addr Addr, v uint32)
}
