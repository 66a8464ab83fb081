package routine

import (
	"bytes"
	"sync"

	"github.com/pkg/errors"
)

// UnloadPattern fills the RAM window when no routine is loaded. Each
// halfword is a permanently undefined Thumb instruction, so a stray branch
// into the window faults instead of running stale code.
const UnloadPattern uint16 = 0xDEFE

// The little-endian bytes of UnloadPattern.
const (
	unloadLow  = byte(UnloadPattern & 0xFF)
	unloadHigh = byte(UnloadPattern >> 8)
)

// Errors returned by the relocator.
var (
	ErrNotLoaded     = errors.New("access routine not loaded")
	ErrBusy          = errors.New("another access routine is loaded")
	ErrImageTooLarge = errors.New("access routine does not fit the RAM window")
	ErrCorrupted     = errors.New("access routine image in RAM is corrupted")
)

// Relocator owns the RAM window that access routines execute from.
type Relocator struct {
	lock sync.Mutex

	base   uint32
	thumb  bool
	window []byte
	loaded Routine
}

// NewRelocator reserves a RAM window at base with the given size. When thumb
// is set, entry addresses are tagged for Thumb execution.
func NewRelocator(base uint32, size int, thumb bool) *Relocator {
	r := &Relocator{
		base:   base,
		thumb:  thumb,
		window: make([]byte, size),
	}
	r.scrub(0)

	return r
}

// Load copies the routine image into the window. Loading the routine that is
// already loaded is a no-op.
func (r *Relocator) Load(rt Routine) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.loaded != nil {
		if r.loaded == rt {
			return nil
		}

		return errors.Wrapf(ErrBusy, "%s routine loaded", r.loaded.Kind())
	}

	image := rt.Image()
	if len(image) > len(r.window) {
		return errors.Wrapf(ErrImageTooLarge,
			"%s routine is %d bytes, window is %d bytes",
			rt.Kind(), len(image), len(r.window))
	}

	copy(r.window, image)
	r.scrub(len(image))
	r.loaded = rt

	return nil
}

// Unload overwrites the whole window with the unload pattern.
func (r *Relocator) Unload() {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.scrub(0)
	r.loaded = nil
}

// Loaded returns the kind of the loaded routine, if any.
func (r *Relocator) Loaded() (Kind, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.loaded == nil {
		return 0, false
	}

	return r.loaded.Kind(), true
}

// Entry returns the address to branch to for the loaded routine.
func (r *Relocator) Entry() (uint32, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.loaded == nil {
		return 0, ErrNotLoaded
	}

	entry := r.base
	if r.thumb {
		entry |= 1
	}

	return entry, nil
}

// Call runs the loaded routine after checking that the window still holds
// its image.
func (r *Relocator) Call(a Access) (Result, error) {
	r.lock.Lock()
	rt := r.loaded

	if rt == nil {
		r.lock.Unlock()
		return Result{}, ErrNotLoaded
	}

	image := rt.Image()
	if !bytes.Equal(r.window[:len(image)], image) {
		r.lock.Unlock()
		return Result{}, errors.Wrapf(ErrCorrupted, "%s routine", rt.Kind())
	}
	r.lock.Unlock()

	return rt.Run(a), nil
}

// Window returns a copy of the RAM window.
func (r *Relocator) Window() []byte {
	r.lock.Lock()
	defer r.lock.Unlock()

	return append([]byte(nil), r.window...)
}

// Poke overwrites one byte of the window. It exists to model stray writes
// into the routine RAM.
func (r *Relocator) Poke(offset int, v byte) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.window[offset] = v
}

func (r *Relocator) scrub(from int) {
	for i := from; i < len(r.window); i++ {
		if i%2 == 0 {
			r.window[i] = unloadLow
		} else {
			r.window[i] = unloadHigh
		}
	}
}
