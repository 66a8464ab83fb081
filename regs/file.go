package regs

// File is the register file of one flash controller.
type File struct {
	bus Bus
}

// New creates a register file on top of the given bus.
func New(bus Bus) *File {
	return &File{bus: bus}
}

// Read8 reads a byte register.
func (f *File) Read8(addr Addr) uint8 {
	return f.bus.Read8(addr)
}

// Write8 writes a byte register.
func (f *File) Write8(addr Addr, v uint8) {
	f.bus.Write8(addr, v)
}

// Read32 reads a 32-bit location.
func (f *File) Read32(addr Addr) uint32 {
	return f.bus.Read32(addr)
}

// Write32 writes a 32-bit location.
func (f *File) Write32(addr Addr, v uint32) {
	f.bus.Write32(addr, v)
}

// SetBits8 sets the masked bits of a byte register.
func (f *File) SetBits8(addr Addr, mask uint8) {
	f.bus.Write8(addr, f.bus.Read8(addr)|mask)
}

// ClearBits8 clears the masked bits of a byte register.
func (f *File) ClearBits8(addr Addr, mask uint8) {
	f.bus.Write8(addr, f.bus.Read8(addr)&^mask)
}

// ModifyBits8 clears and then sets bits in one read-modify-write cycle.
func (f *File) ModifyBits8(addr Addr, clear, set uint8) {
	f.bus.Write8(addr, (f.bus.Read8(addr)&^clear)|set)
}

// BitsSet reports whether all the masked bits are set.
func (f *File) BitsSet(addr Addr, mask uint8) bool {
	return f.bus.Read8(addr)&mask == mask
}

// Status reads FSTAT.
func (f *File) Status() uint8 {
	return f.bus.Read8(FSTAT)
}

// Config reads FCNFG.
func (f *File) Config() uint8 {
	return f.bus.Read8(FCNFG)
}

// ClearErrors acknowledges the write-one-to-clear error flags of FSTAT.
// CCIF is written as zero so no command is launched.
func (f *File) ClearErrors() {
	f.bus.Write8(FSTAT, ErrorFlags)
}

// Launch starts the command staged in the command object registers.
func (f *File) Launch() {
	f.bus.Write8(FSTAT, CCIF)
}

// WriteCommand stages a command code and control code in FCCOB0 and FCCOB1.
func (f *File) WriteCommand(cmd, ctrl uint8) {
	f.bus.Write8(FCCOB(0), cmd)
	f.bus.Write8(FCCOB(1), ctrl)
}

// WriteCommandParam16 stores a big-endian 16-bit parameter at FCCOBn:n+1.
func (f *File) WriteCommandParam16(n int, v uint16) {
	f.bus.Write8(FCCOB(n), uint8(v>>8))
	f.bus.Write8(FCCOB(n+1), uint8(v))
}

// ReadCommandResult8 reads one result byte.
func (f *File) ReadCommandResult8(n int) uint8 {
	return f.bus.Read8(FCCOB(n))
}

// ReadCommandResult16 reads a big-endian 16-bit result at FCCOBn:n+1.
func (f *File) ReadCommandResult16(n int) uint16 {
	return uint16(f.bus.Read8(FCCOB(n)))<<8 | uint16(f.bus.Read8(FCCOB(n+1)))
}

// FlexRAM returns the bus address of a FlexRAM offset.
func FlexRAM(offset uint32) Addr {
	return FlexRAMBase + Addr(offset)
}
