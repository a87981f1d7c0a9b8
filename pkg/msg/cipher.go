package msg

// Stream cipher applied to each message's code words. The keystream depends
// only on the message's 1-based index, so identical plaintext at a fixed
// index always produces identical ciphertext — required for byte-identical
// round trips. XOR makes Crypt its own inverse.

// streamKey returns the initial keystream word for a message index.
func streamKey(index int) uint16 {
	return uint16(uint32(index) * streamKeyFactor)
}

// Keystream returns the first n keystream words for a 1-based message index.
func Keystream(index, n int) []uint16 {
	out := make([]uint16, n)
	key := streamKey(index)
	for i := range out {
		out[i] = key
		key += streamKeyStep
	}
	return out
}

// Crypt XORs words with the keystream for the given 1-based message index
// and returns a new slice. Calling it twice with the same index yields the
// original words.
func Crypt(words []uint16, index int) []uint16 {
	out := make([]uint16, len(words))
	key := streamKey(index)
	for i, w := range words {
		out[i] = w ^ key
		key += streamKeyStep
	}
	return out
}

// tableMask returns the 32-bit XOR mask applied to the offset and length
// fields of table entry i (0-based) under the given archive key.
func tableMask(i int, key uint16) uint32 {
	m := uint32(tableKeyFactor) * uint32(i+1) * uint32(key) & 0xFFFF
	return m | m<<16
}
