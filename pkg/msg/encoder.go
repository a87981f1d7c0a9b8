package msg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/YakoSWG/chatot/pkg/charmap"
)

// EncodeMessage converts one rendered message back to terminated code words.
// The scan is the exact inverse of DecodeMessage: graphemes through the map,
// `[alias]` bracket lookups, `\xXXXX` raw words, two-character `\n`-style
// escapes, `{...}` placeholders back to escape sequences, and name tags back
// to 9-bit packing. In strict mode anything unmappable fails the message;
// best-effort mode substitutes a null word the way the original tools did.
func EncodeMessage(text string, cm *charmap.Charmap, opts Options) ([]uint16, error) {
	runes := []rune(text)
	words := make([]uint16, 0, len(runes)+1)
	log := opts.logger()

	for i := 0; i < len(runes); {
		ch := runes[i]

		if code, ok := cm.Code(string(ch)); ok {
			words = append(words, code)
			i++
			continue
		}

		switch ch {
		case '[':
			end := indexRune(runes, i, ']')
			if end < 0 {
				if !opts.BestEffort {
					return nil, fmt.Errorf("%w: unmatched '[' at rune %d", ErrUnknownGrapheme, i)
				}
				log.Warn("unmatched '[' in text, inserting null code")
				words = append(words, 0)
				i = len(runes)
				continue
			}
			alias := string(runes[i : end+1])
			if code, ok := cm.Code(alias); ok {
				words = append(words, code)
			} else if opts.BestEffort {
				log.Warn("unknown alias, inserting null code", "alias", alias)
				words = append(words, 0)
			} else {
				return nil, fmt.Errorf("%w: alias %s", ErrUnknownGrapheme, alias)
			}
			i = end + 1

		case '\\':
			consumed, code, err := encodeBackslash(runes[i:], cm, opts)
			if err != nil {
				return nil, err
			}
			words = append(words, code)
			i += consumed

		case '{':
			end := indexRune(runes, i, '}')
			if end < 0 {
				if !opts.BestEffort {
					return nil, fmt.Errorf("%w: unmatched '{' at rune %d", ErrEscapeArity, i)
				}
				log.Warn("unmatched '{' in text, inserting null code")
				words = append(words, 0)
				i = len(runes)
				continue
			}
			body := string(runes[i+1 : end])
			i = end + 1

			switch {
			case body == "":
				if !opts.BestEffort {
					return nil, fmt.Errorf("%w: empty placeholder", ErrEscapeArity)
				}
				log.Warn("empty placeholder, inserting null code")
				words = append(words, 0)

			case strings.HasPrefix(body, "TRAINER_NAME:"):
				packed, err := encodeName(strings.TrimPrefix(body, "TRAINER_NAME:"), cm, opts)
				if err != nil {
					return nil, err
				}
				words = append(words, packed...)

			case opts.Msgenc && strings.HasPrefix(body, "TRNAME"):
				// msgenc's bare tag: the rest of the message is the name.
				packed, err := encodeName(string(runes[i:]), cm, opts)
				if err != nil {
					return nil, err
				}
				words = append(words, packed...)
				i = len(runes)

			default:
				var seq []uint16
				var err error
				if opts.Msgenc {
					seq, err = encodeEscapeMsgenc(body, cm, opts)
				} else {
					seq, err = encodeEscape(body, cm, opts)
				}
				if err != nil {
					return nil, err
				}
				words = append(words, seq...)
			}

		default:
			if !opts.BestEffort {
				return nil, fmt.Errorf("%w: %q", ErrUnknownGrapheme, string(ch))
			}
			log.Warn("unknown character, inserting null code", "char", string(ch))
			words = append(words, 0)
			i++
		}
	}

	return append(words, CodeTerminator), nil
}

// indexRune returns the index of the first occurrence of r at or after from,
// or -1.
func indexRune(runes []rune, from int, r rune) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == r {
			return i
		}
	}
	return -1
}

// encodeBackslash handles `\xXXXX` raw words and two-character escapes like
// `\n` that live in the map. Returns runes consumed and the code word.
func encodeBackslash(slice []rune, cm *charmap.Charmap, opts Options) (int, uint16, error) {
	log := opts.logger()

	if len(slice) < 2 {
		if !opts.BestEffort {
			return 0, 0, fmt.Errorf("%w: dangling backslash", ErrUnknownGrapheme)
		}
		log.Warn("incomplete escape at end of text, inserting null code")
		return 1, 0, nil
	}

	if slice[1] == 'x' {
		if len(slice) < 6 {
			if !opts.BestEffort {
				return 0, 0, fmt.Errorf("%w: incomplete \\x escape", ErrUnknownGrapheme)
			}
			log.Warn("incomplete hex escape, inserting null code")
			return len(slice), 0, nil
		}
		hex := string(slice[2:6])
		code, err := strconv.ParseUint(hex, 16, 16)
		if err != nil {
			if !opts.BestEffort {
				return 0, 0, fmt.Errorf("%w: bad hex escape \\x%s", ErrUnknownGrapheme, hex)
			}
			log.Warn("invalid hex escape, inserting null code", "escape", `\x`+hex)
			return 6, 0, nil
		}
		return 6, uint16(code), nil
	}

	seq := `\` + string(slice[1])
	if code, ok := cm.Code(seq); ok {
		return 2, code, nil
	}
	if !opts.BestEffort {
		return 0, 0, fmt.Errorf("%w: escape %s", ErrUnknownGrapheme, seq)
	}
	log.Warn("unknown escape sequence, inserting null code", "escape", seq)
	return 2, 0, nil
}

// encodeEscape converts a named placeholder body `NAME, special, p1, …` back
// to an escape sequence. The special byte is mandatory in this form.
func encodeEscape(body string, cm *charmap.Charmap, opts Options) ([]uint16, error) {
	parts := splitTrim(body, ",")
	if len(parts) < 2 {
		if !opts.BestEffort {
			return nil, fmt.Errorf("%w: placeholder {%s} needs a special byte", ErrEscapeArity, body)
		}
		opts.logger().Warn("invalid placeholder, inserting null code", "body", body)
		return []uint16{0}, nil
	}

	opcode, err := resolveOpcode(parts[0], cm, opts)
	if err != nil {
		return nil, err
	}
	special, err := parseValue(parts[1], opts)
	if err != nil {
		return nil, err
	}

	seq := []uint16{CodeEscape, opcode | special, uint16(len(parts) - 2)}
	for _, p := range parts[2:] {
		v, err := parseValue(p, opts)
		if err != nil {
			return nil, err
		}
		seq = append(seq, v)
	}
	return seq, nil
}

// encodeEscapeMsgenc converts msgenc's `NAME p1, p2, …` form. Only the
// STRVAR_ opcode family folds its first value into the opcode's low byte.
func encodeEscapeMsgenc(body string, cm *charmap.Charmap, opts Options) ([]uint16, error) {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		if !opts.BestEffort {
			return nil, fmt.Errorf("%w: empty placeholder", ErrEscapeArity)
		}
		return []uint16{0}, nil
	}
	name := fields[0]

	var parts []string
	for _, f := range fields[1:] {
		for _, p := range splitTrim(f, ",") {
			if p != "" {
				parts = append(parts, p)
			}
		}
	}

	opcode, err := resolveOpcode(name, cm, opts)
	if err != nil {
		return nil, err
	}

	if len(parts) > 0 && strings.HasPrefix(name, "STRVAR_") {
		special, err := parseValue(parts[0], opts)
		if err != nil {
			return nil, err
		}
		opcode |= special
		parts = parts[1:]
	}

	seq := []uint16{CodeEscape, opcode, uint16(len(parts))}
	for _, p := range parts {
		v, err := parseValue(p, opts)
		if err != nil {
			return nil, err
		}
		seq = append(seq, v)
	}
	return seq, nil
}

// encodeName packs a name string into 9-bit codes after the CodeNameStart
// marker, closing with the 9-bit terminator.
func encodeName(name string, cm *charmap.Charmap, opts Options) ([]uint16, error) {
	words := []uint16{CodeNameStart}

	bit := 0
	var current uint16

	for _, ch := range name {
		code, ok := cm.Code(string(ch))
		if !ok {
			if !opts.BestEffort {
				return nil, fmt.Errorf("%w: %q in name", ErrUnknownGrapheme, string(ch))
			}
			opts.logger().Warn("unknown character in name, using null code", "char", string(ch))
			code = 0
		}

		current |= (code & NameCodeMask) << bit
		bit += NameCodeBits

		if bit >= 15 {
			words = append(words, current&0x7FFF)
			bit -= 15
			current = (code >> (NameCodeBits - bit)) & NameCodeMask
		}
	}

	if bit > 0 {
		current |= 0xFFFF << bit
		words = append(words, current&0x7FFF)
	}

	return words, nil
}

// resolveOpcode maps a placeholder name to its opcode, accepting raw numeric
// names for opcodes the map does not label.
func resolveOpcode(name string, cm *charmap.Charmap, opts Options) (uint16, error) {
	if code, ok := cm.CommandCode(name); ok {
		return code, nil
	}
	if v, err := strconv.ParseUint(strings.TrimPrefix(name, "0x"), 16, 16); err == nil && strings.HasPrefix(name, "0x") {
		return uint16(v), nil
	}
	if !opts.BestEffort {
		return 0, fmt.Errorf("%w: escape name %q", ErrUnknownGrapheme, name)
	}
	opts.logger().Warn("unknown escape name, using code 0x0000", "name", name)
	return 0, nil
}

// parseValue parses a decimal or 0x-prefixed hex placeholder value.
func parseValue(s string, opts Options) (uint16, error) {
	var v uint64
	var err error
	if strings.HasPrefix(s, "0x") {
		v, err = strconv.ParseUint(s[2:], 16, 32)
	} else {
		v, err = strconv.ParseUint(s, 10, 32)
	}
	if err != nil {
		if !opts.BestEffort {
			return 0, fmt.Errorf("%w: bad value %q", ErrEscapeArity, s)
		}
		opts.logger().Warn("bad placeholder value, using 0", "value", s)
		return 0, nil
	}
	return uint16(v), nil
}

// splitTrim splits on sep and trims whitespace from every piece.
func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
