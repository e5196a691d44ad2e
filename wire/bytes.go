package wire

import (
	"encoding/binary"

	"github.com/wippyai/flatlayout/errors"
)

// Bytes is a flatlayout.Memory over a Go byte slice. Writes land in the
// slice's backing array.
type Bytes []byte

func (b Bytes) check(phase errors.Phase, offset, length uint32) error {
	if uint64(offset)+uint64(length) > uint64(len(b)) {
		return errors.OutOfBounds(phase, nil, int(offset)+int(length), len(b))
	}
	return nil
}

// Size returns the slice length.
func (b Bytes) Size() uint32 {
	return uint32(len(b))
}

// Read returns a view of length bytes at offset, not a copy.
func (b Bytes) Read(offset uint32, length uint32) ([]byte, error) {
	if err := b.check(errors.PhaseRead, offset, length); err != nil {
		return nil, err
	}
	return b[offset : offset+length], nil
}

func (b Bytes) Write(offset uint32, data []byte) error {
	if err := b.check(errors.PhaseMutate, offset, uint32(len(data))); err != nil {
		return err
	}
	copy(b[offset:], data)
	return nil
}

func (b Bytes) ReadU8(offset uint32) (uint8, error) {
	if err := b.check(errors.PhaseRead, offset, 1); err != nil {
		return 0, err
	}
	return b[offset], nil
}

func (b Bytes) ReadU16(offset uint32) (uint16, error) {
	if err := b.check(errors.PhaseRead, offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[offset:]), nil
}

func (b Bytes) ReadU32(offset uint32) (uint32, error) {
	if err := b.check(errors.PhaseRead, offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[offset:]), nil
}

func (b Bytes) ReadU64(offset uint32) (uint64, error) {
	if err := b.check(errors.PhaseRead, offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[offset:]), nil
}

func (b Bytes) WriteU8(offset uint32, value uint8) error {
	if err := b.check(errors.PhaseMutate, offset, 1); err != nil {
		return err
	}
	b[offset] = value
	return nil
}

func (b Bytes) WriteU16(offset uint32, value uint16) error {
	if err := b.check(errors.PhaseMutate, offset, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b[offset:], value)
	return nil
}

func (b Bytes) WriteU32(offset uint32, value uint32) error {
	if err := b.check(errors.PhaseMutate, offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b[offset:], value)
	return nil
}

func (b Bytes) WriteU64(offset uint32, value uint64) error {
	if err := b.check(errors.PhaseMutate, offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b[offset:], value)
	return nil
}
