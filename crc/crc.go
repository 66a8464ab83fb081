// Package crc implements the CRC-16-CCITT accumulator that protects the
// driver configuration.
package crc

// Polynomial is the CRC-16-CCITT generator polynomial with its implicit
// leading one.
const Polynomial uint32 = 0x11021

// An Accumulator folds input into a running CRC-16 remainder.
//
// The zero value is ready to use. The remainder starts at zero, which makes
// the finalized value equal to CRC-16/XMODEM over the same bytes.
type Accumulator struct {
	remainder uint16
}

// New creates an empty accumulator.
func New() *Accumulator {
	return &Accumulator{}
}

// Add8 folds one byte.
func (a *Accumulator) Add8(b uint8) {
	a.fold(uint32(b), 8)
}

// Add16 folds a 16-bit value, most significant byte first.
func (a *Accumulator) Add16(v uint16) {
	a.fold(uint32(v), 16)
}

// Add32 folds a 32-bit value as two 16-bit halves, high half first.
func (a *Accumulator) Add32(v uint32) {
	a.Add16(uint16(v >> 16))
	a.Add16(uint16(v))
}

// Write folds every byte of p. It never fails.
func (a *Accumulator) Write(p []byte) (int, error) {
	for _, b := range p {
		a.Add8(b)
	}

	return len(p), nil
}

// Remainder returns the running remainder without finalizing it.
func (a *Accumulator) Remainder() uint16 {
	return a.remainder
}

// Sum flushes 16 zero bits through a copy of the accumulator and returns the
// checksum. The accumulator itself is left untouched.
func (a *Accumulator) Sum() uint16 {
	final := *a
	final.fold(0, 16)

	return final.remainder
}

// Reset clears the accumulator.
func (a *Accumulator) Reset() {
	a.remainder = 0
}

// fold appends n bits of data to the remainder in a 32-bit shift register and
// divides by the polynomial, one input bit at a time.
func (a *Accumulator) fold(data uint32, n uint) {
	reg := uint32(a.remainder)<<n | data

	for i := n; i > 0; i-- {
		if reg&(1<<(15+i)) != 0 {
			reg ^= Polynomial << (i - 1)
		}
	}

	a.remainder = uint16(reg)
}

// Checksum returns the CRC of p.
func Checksum(p []byte) uint16 {
	a := New()
	_, _ = a.Write(p)

	return a.Sum()
}
