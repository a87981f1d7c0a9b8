package msg

import (
	"encoding/binary"
	"fmt"
)

// Archive is the in-memory form of one binary text archive: the cipher key
// from the header plus every message's decrypted code words in entry order.
type Archive struct {
	Key     uint16
	Entries []Entry
}

// Entry is one message slot. Words holds the full decrypted stream for the
// slot, terminator and any padding words included, so an unmodified archive
// rebuilds byte-for-byte.
type Entry struct {
	Index int // 0-based table position; the cipher keys off Index+1
	Words []uint16
}

// ParseArchive reads a binary text archive from an in-memory buffer.
// Archives are small (tens of KB) so there is no streaming path.
//
// Layout: u16 message count, u16 key, count (u32 offset, u32 length) table
// entries masked per tableMask, then the encrypted u16 payloads. Offsets are
// absolute byte positions; lengths count u16 code words.
func ParseArchive(data []byte) (*Archive, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is too short for a header", ErrFormat, len(data))
	}

	count := int(binary.LittleEndian.Uint16(data[0:2]))
	key := binary.LittleEndian.Uint16(data[2:4])

	tableEnd := HeaderSize + count*TableEntrySize
	if tableEnd > len(data) {
		return nil, fmt.Errorf("%w: table for %d messages needs %d bytes, have %d",
			ErrFormat, count, tableEnd, len(data))
	}

	archive := &Archive{
		Key:     key,
		Entries: make([]Entry, 0, count),
	}

	for i := 0; i < count; i++ {
		pos := HeaderSize + i*TableEntrySize
		mask := tableMask(i, key)
		offset := binary.LittleEndian.Uint32(data[pos:pos+4]) ^ mask
		length := binary.LittleEndian.Uint32(data[pos+4:pos+8]) ^ mask

		end := uint64(offset) + uint64(length)*2
		if uint64(offset) < uint64(tableEnd) || end > uint64(len(data)) {
			return nil, fmt.Errorf("%w: message %d payload [%d, %d) out of range",
				ErrFormat, i, offset, end)
		}

		encrypted := make([]uint16, length)
		for w := range encrypted {
			encrypted[w] = binary.LittleEndian.Uint16(data[int(offset)+w*2:])
		}

		archive.Entries = append(archive.Entries, Entry{
			Index: i,
			Words: Crypt(encrypted, i+1),
		})
	}

	return archive, nil
}

// Build serializes the archive back to bytes: header, masked table, then the
// re-encrypted payloads laid out sequentially in entry order. Rebuilding an
// unmodified ParseArchive result reproduces the original buffer exactly.
func (a *Archive) Build() ([]byte, error) {
	if len(a.Entries) > 0xFFFF {
		return nil, fmt.Errorf("%w: %d messages exceed the u16 count field", ErrFormat, len(a.Entries))
	}

	tableEnd := HeaderSize + len(a.Entries)*TableEntrySize
	size := tableEnd
	for _, e := range a.Entries {
		size += len(e.Words) * 2
	}

	out := make([]byte, size)
	binary.LittleEndian.PutUint16(out[0:2], uint16(len(a.Entries)))
	binary.LittleEndian.PutUint16(out[2:4], a.Key)

	offset := tableEnd
	for i, e := range a.Entries {
		pos := HeaderSize + i*TableEntrySize
		mask := tableMask(i, a.Key)
		binary.LittleEndian.PutUint32(out[pos:pos+4], uint32(offset)^mask)
		binary.LittleEndian.PutUint32(out[pos+4:pos+8], uint32(len(e.Words))^mask)

		for _, w := range Crypt(e.Words, i+1) {
			binary.LittleEndian.PutUint16(out[offset:], w)
			offset += 2
		}
	}

	return out, nil
}
