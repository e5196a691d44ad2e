// Package wasmmem exposes a wazero guest's linear memory as a
// flatlayout.Memory, so buffers built inside a wasm module can be read and
// mutated in place through the wire readers.
package wasmmem

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/flatlayout"
	"github.com/wippyai/flatlayout/errors"
)

// Wrap adapts mem. It returns nil for a nil memory.
func Wrap(mem api.Memory) *Memory {
	if mem == nil {
		return nil
	}
	return &Memory{Mem: mem}
}

// Memory adapts wazero api.Memory to flatlayout.Memory.
type Memory struct {
	Mem api.Memory
}

var (
	_ flatlayout.Memory      = (*Memory)(nil)
	_ flatlayout.MemorySizer = (*Memory)(nil)
)

func (m *Memory) readErr(offset, length uint32) error {
	return errors.OutOfBounds(errors.PhaseRead, nil, int(offset)+int(length), int(m.Mem.Size()))
}

func (m *Memory) writeErr(offset, length uint32) error {
	return errors.OutOfBounds(errors.PhaseMutate, nil, int(offset)+int(length), int(m.Mem.Size()))
}

// Size returns the current size of linear memory in bytes.
func (m *Memory) Size() uint32 {
	return m.Mem.Size()
}

// Read returns a view of guest memory, valid until the guest grows it.
func (m *Memory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, m.readErr(offset, length)
	}
	return data, nil
}

func (m *Memory) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return m.writeErr(offset, uint32(len(data)))
	}
	return nil
}

func (m *Memory) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.Mem.ReadByte(offset)
	if !ok {
		return 0, m.readErr(offset, 1)
	}
	return v, nil
}

func (m *Memory) ReadU16(offset uint32) (uint16, error) {
	v, ok := m.Mem.ReadUint16Le(offset)
	if !ok {
		return 0, m.readErr(offset, 2)
	}
	return v, nil
}

func (m *Memory) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.Mem.ReadUint32Le(offset)
	if !ok {
		return 0, m.readErr(offset, 4)
	}
	return v, nil
}

func (m *Memory) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.Mem.ReadUint64Le(offset)
	if !ok {
		return 0, m.readErr(offset, 8)
	}
	return v, nil
}

func (m *Memory) WriteU8(offset uint32, value uint8) error {
	if !m.Mem.WriteByte(offset, value) {
		return m.writeErr(offset, 1)
	}
	return nil
}

func (m *Memory) WriteU16(offset uint32, value uint16) error {
	if !m.Mem.WriteUint16Le(offset, value) {
		return m.writeErr(offset, 2)
	}
	return nil
}

func (m *Memory) WriteU32(offset uint32, value uint32) error {
	if !m.Mem.WriteUint32Le(offset, value) {
		return m.writeErr(offset, 4)
	}
	return nil
}

func (m *Memory) WriteU64(offset uint32, value uint64) error {
	if !m.Mem.WriteUint64Le(offset, value) {
		return m.writeErr(offset, 8)
	}
	return nil
}
