package msg

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/YakoSWG/chatot/pkg/charmap"
)

// Text document form: one rendered message per line. Decoded files carry the
// archive key as a leading comment so an edited file re-encodes under the
// same cipher seed; msgenc-format files have no key line (the legacy tool
// never wrote one).

const keyComment = "// Key: "

// WriteTextDoc renders a decoded archive as an editable text document.
func WriteTextDoc(w io.Writer, key uint16, messages []Message, msgenc bool) error {
	bw := bufio.NewWriter(w)
	if !msgenc {
		fmt.Fprintf(bw, "%s0x%04X\n", keyComment, key)
	}
	for _, m := range messages {
		bw.WriteString(m.Text)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ReadTextDoc parses a text document back into a key and message lines.
// Comment lines are dropped; a missing key line means key 0.
func ReadTextDoc(r io.Reader) (uint16, []string, error) {
	var key uint16
	var lines []string

	sc := bufio.NewScanner(charmap.NewSourceReader(r))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()

		if rest, ok := strings.CutPrefix(line, keyComment); ok {
			v, err := parseKey(strings.TrimSpace(rest))
			if err != nil {
				return 0, nil, fmt.Errorf("bad key line %q: %w", line, err)
			}
			key = v
			continue
		}
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "//") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return 0, nil, err
	}
	return key, lines, nil
}

// EncodeTextDoc encodes every message line of a text document into a
// ready-to-build archive.
func EncodeTextDoc(r io.Reader, cm *charmap.Charmap, opts Options) (*Archive, error) {
	key, lines, err := ReadTextDoc(r)
	if err != nil {
		return nil, err
	}
	return EncodeArchive(key, lines, cm, opts)
}

// EncodeArchive encodes message lines under the given key. Message i is
// enciphered with index i+1, matching the parse direction.
func EncodeArchive(key uint16, lines []string, cm *charmap.Charmap, opts Options) (*Archive, error) {
	archive := &Archive{Key: key, Entries: make([]Entry, 0, len(lines))}
	for i, line := range lines {
		words, err := EncodeMessage(line, cm, opts)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		archive.Entries = append(archive.Entries, Entry{Index: i, Words: words})
	}
	return archive, nil
}

// DecodeArchive renders every entry of a parsed archive.
func DecodeArchive(a *Archive, cm *charmap.Charmap, opts Options) ([]Message, error) {
	messages := make([]Message, 0, len(a.Entries))
	for _, e := range a.Entries {
		m, err := DecodeMessage(e.Words, cm, opts)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", e.Index, err)
		}
		messages = append(messages, m)
	}
	return messages, nil
}

func parseKey(s string) (uint16, error) {
	var v uint64
	var err error
	if strings.HasPrefix(s, "0x") {
		v, err = strconv.ParseUint(s[2:], 16, 16)
	} else {
		v, err = strconv.ParseUint(s, 10, 16)
	}
	return uint16(v), err
}
