package msg

// Core format constants that never change.
// These are pinned against reference archives; do not re-derive them.

const (
	// Header layout
	HeaderSize     = 4 // u16 message count + u16 archive key
	TableEntrySize = 8 // u32 offset + u32 length per message

	// Reserved code words
	CodeTerminator = 0xFFFF // ends a message; later words in the entry are padding
	CodeEscape     = 0xFFFE // escape marker: opcode, parameter count, parameters
	CodeNameStart  = 0xF100 // start of a 9-bit packed name sequence

	// 9-bit packed name sequences
	NameCodeBits       = 9
	NameCodeMask       = 0x1FF
	NameCodeTerminator = 0x1FF

	// Cipher key schedule (see cipher.go)
	tableKeyFactor  = 765
	streamKeyFactor = 596947
	streamKeyStep   = 18749
)

// Escape opcodes whose low byte is an inline operand OR'd into a XX00 base
// opcode keep that operand in the "special byte" position of the rendered
// placeholder.
const specialByteMask = 0x00FF
