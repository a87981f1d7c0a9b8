package msg

import (
	"encoding/json"
	"os"
	"testing"
)

// TestKeystreamVectors pins the key schedule against reference values.
// These constants define runtime compatibility; they must never drift.
func TestKeystreamVectors(t *testing.T) {
	data, err := os.ReadFile("testdata/keystream.json")
	if err != nil {
		t.Fatalf("failed to load test vectors: %v", err)
	}

	var vectors []struct {
		Index       int      `json:"index"`
		Words       []uint16 `json:"words"`
		Description string   `json:"description"`
	}
	if err := json.Unmarshal(data, &vectors); err != nil {
		t.Fatalf("failed to parse test vectors: %v", err)
	}

	for _, v := range vectors {
		t.Run(v.Description, func(t *testing.T) {
			got := Keystream(v.Index, len(v.Words))
			for i := range v.Words {
				if got[i] != v.Words[i] {
					t.Errorf("Keystream(%d)[%d] = %d, want %d", v.Index, i, got[i], v.Words[i])
				}
			}
		})
	}
}

// TestCryptInvolution checks that applying the cipher twice is the identity
// for a range of indexes and lengths.
func TestCryptInvolution(t *testing.T) {
	words := []uint16{0x0000, 0x0001, 0xFFFE, 0xFFFF, 0x1234, 0xABCD, 0x7FFF, 0x8000}

	for _, index := range []int{1, 2, 3, 17, 255, 4096, 65535} {
		once := Crypt(words, index)
		twice := Crypt(once, index)
		for i := range words {
			if twice[i] != words[i] {
				t.Fatalf("index %d: Crypt(Crypt(w))[%d] = 0x%04X, want 0x%04X",
					index, i, twice[i], words[i])
			}
		}
	}
}

// TestCryptDeterministic: identical plaintext at a fixed index must always
// produce identical ciphertext, or round trips could not be byte-identical.
func TestCryptDeterministic(t *testing.T) {
	words := []uint16{0x0001, 0x0002, 0xFFFF}
	a := Crypt(words, 5)
	b := Crypt(words, 5)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("ciphertext differs at word %d", i)
		}
	}

	c := Crypt(words, 6)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
		}
	}
	if same {
		t.Fatal("different indexes produced identical ciphertext")
	}
}

func TestTableMask(t *testing.T) {
	// Key 0 masks nothing; the low and high halves always match.
	if m := tableMask(3, 0); m != 0 {
		t.Fatalf("tableMask with key 0 = 0x%08X, want 0", m)
	}
	m := tableMask(0, 0xABCD)
	if m>>16 != m&0xFFFF {
		t.Fatalf("mask halves differ: 0x%08X", m)
	}
	// 765 * 1 * 1 = 765 for the first entry under key 1.
	if m := tableMask(0, 1); m != 765|765<<16 {
		t.Fatalf("tableMask(0, 1) = 0x%08X, want 0x%08X", m, uint32(765|765<<16))
	}
}
