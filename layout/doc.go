// Package layout computes where fields live on the wire.
//
// For a fixed struct it produces byte offsets, padding, size and alignment.
// For a table it produces vtable slots and the independent write order used
// when emitting builder calls.
//
// # Struct Rules
//
//   - Fields are laid out in declaration order, never reordered.
//   - Each field is preceded by the padding its alignment needs relative to
//     the struct start.
//   - Alignment is the largest field alignment (nested structs propagate
//     their own), raised by force_align when declared.
//   - Size is the end of the last field rounded up to the alignment. The
//     remainder is trailing padding.
//
// # Table Rules
//
//   - Slot i is the i-th declared field, deprecated fields included. Its
//     vtable entry sits at byte 4 + 2*i.
//   - Write order is derived separately: grouped by inline size class
//     (8, 4, 2, 1) when size sorting is on, reverse declaration order within
//     a class, deprecated fields skipped. It never feeds back into slots.
//   - A struct field is classed by its alignment capped at 8, not by its
//     byte size: a 12-byte Vec3 aligned to 4 is written with the 4-byte
//     fields. References (strings, tables, vectors, unions) are class 4.
//
// # Usage
//
//	r := layout.NewResolver(model)
//	sl, err := r.Struct("Vec3")   // sl.Size, sl.Align, sl.Fields[i].Offset
//	tl, err := r.Table("Monster") // tl.Slots, tl.WriteGroups
//
// A Resolver caches results and is meant for one goroutine; the layouts it
// returns are never modified afterwards and may be shared.
package layout
