package msg

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/YakoSWG/chatot/pkg/charmap"
)

// Options controls how messages are rendered and how unmappable input is
// treated. The zero value is the strict, named-placeholder mode.
type Options struct {
	// Msgenc renders escape sequences the way the legacy msgenc tool does:
	// `{NAME p1, p2}` with the special byte omitted when zero, and `{TRNAME}`
	// swallowing the rest of the message.
	Msgenc bool

	// BestEffort replaces unmappable codes with raw \xXXXX placeholders and
	// recovers from truncated escapes instead of failing the message.
	BestEffort bool

	// Logger receives warnings in best-effort mode. Nil discards them.
	Logger hclog.Logger
}

func (o Options) logger() hclog.Logger {
	if o.Logger == nil {
		return hclog.NewNullLogger()
	}
	return o.Logger
}

// Message is one decoded string. Trailing holds any padding words that sat
// after the terminator inside the entry's declared length; they carry no
// text but must survive for byte-identical rebuilds.
type Message struct {
	Text     string
	Trailing []uint16
}

// DecodeMessage renders one decrypted code-word stream as text.
func DecodeMessage(words []uint16, cm *charmap.Charmap, opts Options) (Message, error) {
	var b strings.Builder
	i := 0

	for i < len(words) {
		code := words[i]

		switch {
		case code == CodeTerminator:
			trailing := words[i+1:]
			if len(trailing) > 0 {
				opts.logger().Warn("padding after terminator preserved", "words", len(trailing))
			}
			var msg Message
			msg.Text = b.String()
			if len(trailing) > 0 {
				msg.Trailing = append([]uint16(nil), trailing...)
			}
			return msg, nil

		case code == CodeEscape:
			rendered, consumed, err := decodeEscape(words[i:], i, cm, opts)
			if err != nil {
				return Message{}, err
			}
			b.WriteString(rendered)
			i += consumed

		case code == CodeNameStart:
			rendered, consumed := decodeName(words[i:], cm, opts)
			b.WriteString(rendered)
			i += consumed

		default:
			if g, ok := cm.Grapheme(code); ok {
				b.WriteString(g)
			} else if opts.BestEffort {
				opts.logger().Warn("unknown character code", "code", fmt.Sprintf("0x%04X", code), "position", i)
				fmt.Fprintf(&b, `\x%04X`, code)
			} else {
				return Message{}, fmt.Errorf("%w: 0x%04X at word %d", ErrUnknownCode, code, i)
			}
			i++
		}
	}

	// No terminator: the stream simply ends. Vanilla archives always
	// terminate, but a rebuilt Message without a terminator word would not
	// round-trip, so keep what we rendered and report nothing.
	return Message{Text: b.String()}, nil
}

// decodeEscape renders one CodeEscape sequence starting at slice[0] and
// reports how many words it consumed. pos is slice[0]'s position within the
// message, for error context.
func decodeEscape(slice []uint16, pos int, cm *charmap.Charmap, opts Options) (string, int, error) {
	if len(slice) < 2 {
		if !opts.BestEffort {
			return "", 0, fmt.Errorf("%w: escape marker at word %d with no opcode", ErrTruncatedEscape, pos)
		}
		opts.logger().Warn("stray escape marker with no opcode")
		return `\xFFFE`, 1, nil
	}
	opcode := slice[1]

	if len(slice) < 3 {
		if !opts.BestEffort {
			return "", 0, fmt.Errorf("%w: opcode 0x%04X at word %d with no parameter count", ErrTruncatedEscape, opcode, pos)
		}
		opts.logger().Warn("escape opcode with no parameter count", "opcode", fmt.Sprintf("0x%04X", opcode))
		return fmt.Sprintf(`\xFFFE\x%04X`, opcode), 2, nil
	}
	paramCount := int(slice[2])
	consumed := 3 + paramCount

	if len(slice) < consumed {
		if !opts.BestEffort {
			return "", 0, fmt.Errorf("%w: opcode 0x%04X at word %d declares %d parameters, %d words remain",
				ErrTruncatedEscape, opcode, pos, paramCount, len(slice)-3)
		}
		opts.logger().Warn("escape sequence runs past the message",
			"opcode", fmt.Sprintf("0x%04X", opcode), "declared", paramCount, "available", len(slice)-3)
		return fmt.Sprintf(`\xFFFE\x%04X\x%04X`, opcode, slice[2]), len(slice), nil
	}

	// Parameters equal to the terminator value are data here, never a
	// terminator: they were consumed by count, not scanned.
	params := slice[3:consumed]

	// Opcodes of the form XX00 may carry an inline operand in the low byte.
	var special uint16
	if _, ok := cm.CommandName(opcode); !ok {
		if _, ok := cm.CommandName(opcode &^ specialByteMask); ok {
			special = opcode & specialByteMask
			opcode &^= specialByteMask
		}
	}

	name, ok := cm.CommandName(opcode)
	if !ok {
		opts.logger().Warn("unknown escape opcode", "opcode", fmt.Sprintf("0x%04X", opcode))
		name = fmt.Sprintf("0x%04X", opcode)
	}

	var b strings.Builder
	b.WriteByte('{')
	b.WriteString(name)
	if !opts.Msgenc {
		// Named form always carries the special byte as the first value.
		fmt.Fprintf(&b, ", %d", special)
		for _, p := range params {
			fmt.Fprintf(&b, ", %d", p)
		}
	} else {
		// msgenc separates the name from the first value with a space and
		// omits a zero special byte.
		b.WriteByte(' ')
		values := params
		if special != 0 {
			values = append([]uint16{special}, params...)
		}
		for n, p := range values {
			if n > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%d", p)
		}
	}
	b.WriteByte('}')

	return b.String(), consumed, nil
}

// decodeName renders a 9-bit packed name sequence starting at slice[0]
// (the CodeNameStart word) and reports how many words it consumed.
func decodeName(slice []uint16, cm *charmap.Charmap, opts Options) (string, int) {
	var b strings.Builder
	if opts.Msgenc {
		// msgenc treats everything after the marker as name data up to the
		// 9-bit terminator and renders only the bare tag in front of it.
		b.WriteString("{TRNAME}")
	} else {
		b.WriteString("{TRAINER_NAME:")
	}

	bit := 0
	index := 1
	consumed := 1

	for index < len(slice) {
		code := slice[index] >> bit & NameCodeMask
		bit += NameCodeBits

		if bit >= 15 {
			bit -= 15
			index++
			consumed++
			if bit != 0 && index < len(slice) {
				code |= slice[index] << (NameCodeBits - bit) & NameCodeMask
			}
		}

		if code == NameCodeTerminator {
			break
		}

		if g, ok := cm.Grapheme(code); ok {
			b.WriteString(g)
		} else {
			fmt.Fprintf(&b, "0x%04X", code)
		}
	}

	if !opts.Msgenc {
		b.WriteByte('}')
	}

	return b.String(), consumed + 1
}
