// Package charmap holds the character map: the bidirectional table between
// 16-bit code words and graphemes, user aliases, and the names of escape
// opcodes. A Charmap is built once per invocation and is immutable, so it is
// safe to share across concurrent pipelines without locking.
package charmap

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/go-hclog"
)

// EntryKind discriminates the rows of a charmap configuration file.
const (
	KindChar    = "char"    // printable grapheme, both directions
	KindAlias   = "alias"   // extra spelling for an existing code, encode only
	KindCommand = "command" // escape opcode name
)

// Entry is one row of the charmap configuration.
type Entry struct {
	Code string `json:"code"` // hex, e.g. "0001" or "FF00"
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Charmap is the compiled, read-only lookup table.
type Charmap struct {
	decode  map[uint16]string // code -> canonical grapheme
	encode  map[string]uint16 // grapheme or alias -> code
	cmdName map[uint16]string // escape opcode -> name
	cmdCode map[string]uint16 // name -> escape opcode
}

// Compile builds a Charmap from configuration entries. The first declaration
// for a grapheme or command name is canonical; later duplicates are logged
// and ignored so encoding stays deterministic.
func Compile(entries []Entry, logger hclog.Logger) (*Charmap, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	cm := &Charmap{
		decode:  make(map[uint16]string),
		encode:  make(map[string]uint16),
		cmdName: make(map[uint16]string),
		cmdCode: make(map[string]uint16),
	}

	for i, e := range entries {
		parsed, err := strconv.ParseUint(e.Code, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("charmap entry %d: bad code %q: %w", i, e.Code, err)
		}
		code := uint16(parsed)

		switch e.Kind {
		case KindChar:
			if prev, ok := cm.decode[code]; ok {
				logger.Warn("duplicate charmap code, keeping first", "code", fmt.Sprintf("0x%04X", code), "kept", prev, "dropped", e.Text)
				continue
			}
			cm.decode[code] = e.Text
			if _, claimed := cm.encode[e.Text]; !claimed {
				cm.encode[e.Text] = code
			} else {
				logger.Warn("duplicate grapheme, keeping first code", "text", e.Text, "dropped", fmt.Sprintf("0x%04X", code))
			}
		case KindAlias:
			if _, claimed := cm.encode[e.Text]; claimed {
				logger.Warn("duplicate alias, keeping first code", "alias", e.Text)
				continue
			}
			cm.encode[e.Text] = code
		case KindCommand:
			if _, ok := cm.cmdName[code]; ok {
				logger.Warn("duplicate command code, keeping first", "code", fmt.Sprintf("0x%04X", code))
				continue
			}
			cm.cmdName[code] = e.Text
			if _, claimed := cm.cmdCode[e.Text]; !claimed {
				cm.cmdCode[e.Text] = code
			}
		default:
			return nil, fmt.Errorf("charmap entry %d: unknown kind %q", i, e.Kind)
		}
	}

	return cm, nil
}

// Grapheme returns the text for a code word.
func (cm *Charmap) Grapheme(code uint16) (string, bool) {
	s, ok := cm.decode[code]
	return s, ok
}

// Code returns the code word for a grapheme or alias.
func (cm *Charmap) Code(text string) (uint16, bool) {
	c, ok := cm.encode[text]
	return c, ok
}

// CommandName returns the name registered for an escape opcode.
func (cm *Charmap) CommandName(code uint16) (string, bool) {
	s, ok := cm.cmdName[code]
	return s, ok
}

// CommandCode returns the escape opcode registered under a name.
func (cm *Charmap) CommandCode(name string) (uint16, bool) {
	c, ok := cm.cmdCode[name]
	return c, ok
}

// Len reports how many printable codes the map holds.
func (cm *Charmap) Len() int {
	return len(cm.decode)
}
