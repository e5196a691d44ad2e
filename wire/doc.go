// Package wire holds the binary contract every flat buffer honors and
// positioned readers over it.
//
// # Contract
//
//   - All multi-byte scalars are little-endian.
//   - Every value sits at an offset aligned to its natural alignment,
//     relative to the buffer start.
//   - A reference is a 32-bit unsigned offset relative to the position of
//     the offset field itself; the target lies at a higher address.
//   - A table starts with a signed 32-bit offset to its vtable:
//     vtable = table - soffset. Tables with identical slot mappings may
//     share one vtable.
//   - A vtable is [vtable size u16][table inline size u16][slot offsets u16...].
//     The entry of slot i sits at byte 4 + 2*i. An entry of zero, or a slot
//     past the end of the vtable, means the field is absent.
//   - The root offset sits at the buffer start. An optional 4-byte size
//     prefix precedes it and records the buffer length excluding itself.
//   - An optional 4-byte file identifier follows the root offset.
//
// # Preconditions
//
// Readers assume well-formed input. They do not verify vtables, ranges or
// UTF-8; the only errors they return are bounds failures reported by the
// underlying memory.
//
// # Memory
//
// A Buffer reads through flatlayout.Memory, so the same readers serve a Go
// byte slice (Bytes) and a wasm guest's linear memory (package wasmmem).
package wire
