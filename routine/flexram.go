package routine

import (
	"encoding/binary"

	"github.com/sarchlab/flexee/regs"
)

// writeImage is the Thumb-2 body of the store-and-poll loop. It stores r3 to
// [r1] with the width given in r2, or launches the command when r2 is zero,
// then spins on CCIF at [r0].
var writeImage = []byte{
	0x32, 0xb1, 0x04, 0x2a, 0x02, 0xd1, 0x0b, 0x60,
	0x03, 0xe0, 0x0b, 0x70, 0x01, 0xe0, 0x80, 0x22,
	0x02, 0x70, 0x02, 0x78, 0x12, 0x06, 0xfc, 0xd5,
	0x70, 0x47, 0x00, 0xbf,
}

// eraseImage is writeImage followed by a literal slot that holds the erased
// pattern, which replaces r3 before the store.
var eraseImage = append(append([]byte(nil), writeImage...),
	0xff, 0x00, 0x00, 0x00)

type flexRAMRoutine struct {
	kind   Kind
	image  []byte
	erase  bool
	erased byte
}

// NewWriteRoutine creates the routine that stores caller data into FlexRAM.
func NewWriteRoutine() Routine {
	return &flexRAMRoutine{kind: KindWrite, image: writeImage}
}

// NewEraseRoutine creates the routine that stores the erased pattern into
// FlexRAM.
func NewEraseRoutine(erased byte) Routine {
	image := append([]byte(nil), eraseImage...)
	image[len(writeImage)] = erased

	return &flexRAMRoutine{
		kind:   KindErase,
		image:  image,
		erase:  true,
		erased: erased,
	}
}

func (r *flexRAMRoutine) Kind() Kind {
	return r.kind
}

func (r *flexRAMRoutine) Image() []byte {
	return r.image
}

func (r *flexRAMRoutine) Run(a Access) Result {
	switch len(a.Data) {
	case 0:
		a.Regs.Launch()
	case 4:
		a.Regs.Write32(a.Dst, binary.LittleEndian.Uint32(r.payload(a.Data)))
	default:
		a.Regs.Write8(a.Dst, r.payload(a.Data)[0])
	}

	if !a.Wait {
		return Result{Status: a.Regs.Status()}
	}

	return poll(a)
}

// ErasedValue returns the value the routine stores. It is only meaningful for
// the erase routine.
func (r *flexRAMRoutine) ErasedValue() byte {
	return r.erased
}

func (r *flexRAMRoutine) payload(data []byte) []byte {
	if !r.erase {
		return data
	}

	out := make([]byte, len(data))
	for i := range out {
		out[i] = r.erased
	}

	return out
}

func poll(a Access) Result {
	res := Result{}

	for {
		res.Iterations++
		res.Status = a.Regs.Status()

		if res.Status&regs.CCIF != 0 {
			return res
		}

		if a.Progress != nil {
			a.Progress()
		}

		if a.Timeout != 0 && res.Iterations >= a.Timeout {
			res.TimedOut = true
			return res
		}
	}
}
