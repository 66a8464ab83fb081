// Package memory provides the non-volatile backing store of the emulated
// EEPROM.
package memory

import (
	"github.com/pkg/errors"
)

// ErrOutOfRange is returned when an access falls outside the storage.
var ErrOutOfRange = errors.New("accessing address beyond the storage capacity")

// A Storage keeps the content of the FlexNVM partition that backs the
// emulated EEPROM.
//
// The storage manages the data in units. Units that were never touched are
// not allocated and read back as the erased value.
type Storage struct {
	unitSize    uint64
	capacity    uint64
	erasedValue byte
	data        map[uint64][]byte
}

// NewStorage creates a storage with the given capacity and a unit size of
// 256 bytes. Untouched bytes read as 0xFF.
func NewStorage(capacity uint64) *Storage {
	return NewStorageWithUnitSize(capacity, 256)
}

// NewStorageWithUnitSize creates a storage with a custom unit size.
func NewStorageWithUnitSize(capacity, unitSize uint64) *Storage {
	if unitSize == 0 {
		panic("memory: unit size must be larger than 0")
	}

	return &Storage{
		unitSize:    unitSize,
		capacity:    capacity,
		erasedValue: 0xFF,
		data:        make(map[uint64][]byte),
	}
}

// WithErasedValue changes the value that untouched bytes read as.
func (s *Storage) WithErasedValue(v byte) *Storage {
	s.erasedValue = v
	return s
}

// Capacity returns the number of bytes the storage can hold.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

// ErasedValue returns the value of an erased byte.
func (s *Storage) ErasedValue() byte {
	return s.erasedValue
}

func (s *Storage) checkRange(address, length uint64) error {
	if address+length > s.capacity || address+length < address {
		return errors.Wrapf(ErrOutOfRange,
			"access 0x%x+%d, capacity %d", address, length, s.capacity)
	}

	return nil
}

func (s *Storage) createOrGetUnit(baseAddr uint64) []byte {
	unit, ok := s.data[baseAddr]
	if !ok {
		unit = make([]byte, s.unitSize)
		for i := range unit {
			unit[i] = s.erasedValue
		}

		s.data[baseAddr] = unit
	}

	return unit
}

func (s *Storage) parseAddress(addr uint64) (baseAddr, inUnitAddr uint64) {
	inUnitAddr = addr % s.unitSize
	baseAddr = addr - inUnitAddr

	return
}

// Read returns a copy of length bytes starting at address.
func (s *Storage) Read(address uint64, length uint64) ([]byte, error) {
	if err := s.checkRange(address, length); err != nil {
		return nil, err
	}

	res := make([]byte, length)
	currAddr := address
	dataOffset := uint64(0)

	for dataOffset < length {
		baseAddr, inUnitAddr := s.parseAddress(currAddr)
		lenToRead := min(length-dataOffset, s.unitSize-inUnitAddr)

		unit, ok := s.data[baseAddr]
		if ok {
			copy(res[dataOffset:dataOffset+lenToRead],
				unit[inUnitAddr:inUnitAddr+lenToRead])
		} else {
			for i := dataOffset; i < dataOffset+lenToRead; i++ {
				res[i] = s.erasedValue
			}
		}

		dataOffset += lenToRead
		currAddr += lenToRead
	}

	return res, nil
}

// Write stores data starting at address.
func (s *Storage) Write(address uint64, data []byte) error {
	length := uint64(len(data))
	if err := s.checkRange(address, length); err != nil {
		return err
	}

	currAddr := address
	dataOffset := uint64(0)

	for dataOffset < length {
		baseAddr, inUnitAddr := s.parseAddress(currAddr)
		lenToWrite := min(length-dataOffset, s.unitSize-inUnitAddr)

		unit := s.createOrGetUnit(baseAddr)
		copy(unit[inUnitAddr:inUnitAddr+lenToWrite],
			data[dataOffset:dataOffset+lenToWrite])

		dataOffset += lenToWrite
		currAddr += lenToWrite
	}

	return nil
}

// Erase sets length bytes starting at address to the erased value.
func (s *Storage) Erase(address, length uint64) error {
	if err := s.checkRange(address, length); err != nil {
		return err
	}

	erased := make([]byte, length)
	for i := range erased {
		erased[i] = s.erasedValue
	}

	return s.Write(address, erased)
}
