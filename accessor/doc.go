// Package accessor decides how every field is read and written.
//
// A Mapper classifies each field of a struct or table into exactly one
// Strategy and attaches the parameters a reader needs: static offset or
// vtable slot, default, numeric carrier and mask, indirection and element
// geometry. The result is a Plan per field.
//
// # Strategies
//
//	DirectScalar     scalar or enum in a struct, static offset
//	DefaultedScalar  scalar or enum in a table, default when absent
//	FixedStruct      inline struct, static offset or vtable slot
//	IndirectStruct   table reference
//	StringIndirect   string reference
//	VectorOfScalar   [scalar] or [enum]
//	VectorOfStruct   [struct] inline, or [table] through offsets
//	VectorOfString   [string]
//	VectorOfUnion    [union] with a companion [ubyte] tag vector
//	UnionField       union with a companion ubyte tag field
//	NestedBuffer     [ubyte] holding a nested flat buffer
//
// Struct fields have no vtable step; table fields resolve their slot first,
// and a zero entry means absent. Absence is a result: scalars yield their
// default and references yield ok=false.
//
// # Numeric Carriers
//
// Unsigned values are widened into a signed carrier and masked after the
// raw little-endian read and sign extension: ubyte and ushort into int with
// 0xFF and 0xFFFF, uint into long with 0xFFFFFFFF. ulong keeps a 64-bit
// carrier without a mask.
//
// # Runtime
//
// ReadScalar, ReadString, ReadStruct, ReadTable, ReadVector, ReadUnion,
// ReadNested, Mutate and MutateElem execute plans against a wire.Buffer.
// Mutation only exists for scalar strategies when the model enables mutable
// buffers; an absent table field reports false and leaves the buffer
// untouched.
package accessor
