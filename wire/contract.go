package wire

// Sizes of the wire primitives.
const (
	SizeUOffset = 4
	SizeSOffset = 4
	SizeVOffset = 2

	// SizePrefixLength is the size of the optional length header.
	SizePrefixLength = 4
	// FileIdentifierLength is the size of the optional identifier.
	FileIdentifierLength = 4

	// VTableMetadataFields counts the voffsets preceding slot entries:
	// the vtable size and the table inline size.
	VTableMetadataFields = 2

	// MaxSlot is the highest slot whose vtable entry offset fits a voffset.
	MaxSlot = (1<<16)/SizeVOffset - VTableMetadataFields - 1
)

// VTableOffset returns the byte offset of slot's entry within a vtable.
func VTableOffset(slot uint16) uint16 {
	return uint16((VTableMetadataFields + uint32(slot)) * SizeVOffset)
}

// SlotOf inverts VTableOffset.
func SlotOf(vtableOffset uint16) uint16 {
	return vtableOffset/SizeVOffset - VTableMetadataFields
}

// VTableSize is the byte size of a vtable covering n slots.
func VTableSize(n int) uint16 {
	return uint16((VTableMetadataFields + n) * SizeVOffset)
}

// AlignTo rounds offset up to a multiple of align. align must be a power of
// two; zero leaves offset unchanged.
func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// Padding is the number of bytes AlignTo would insert.
func Padding(offset, align uint32) uint32 {
	return AlignTo(offset, align) - offset
}

// IsPowerOfTwo reports whether v is a non-zero power of two.
func IsPowerOfTwo(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}
