package msg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// JSON document form: per-language message lists keyed by stable ids, so one
// file can hold several translations of the same archive. Re-decoding into an
// existing document merges the new language and keeps ids the archive no
// longer carries (translations must not be lost to an upstream cut).

// DefaultLang is the locale tag used when the caller does not pick one.
const DefaultLang = "en_US"

// utf8BOM is stripped from document bytes; Windows editors love to add it.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Content is one language's rendering of a message: a single string in the
// file when it is one display line, an array of segments when the message
// contains explicit line-break escapes.
type Content []string

// Join flattens the content back to the message text.
func (c Content) Join() string { return strings.Join(c, "") }

// MarshalJSON writes a lone segment as a bare string.
func (c Content) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	return json.Marshal([]string(c))
}

// UnmarshalJSON accepts either a bare string or an array of segments.
func (c *Content) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*c = Content{single}
		return nil
	}
	var multi []string
	if err := json.Unmarshal(data, &multi); err != nil {
		return err
	}
	*c = Content(multi)
	return nil
}

// JSONMessage is one id with its per-language content, flattened so the
// language tags sit beside the id in the object.
type JSONMessage struct {
	ID    string
	Langs map[string]Content
}

// MarshalJSON emits {"id": ..., "<lang>": ...} with languages sorted for
// stable diffs.
func (m JSONMessage) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(`{"id":`)
	id, err := json.Marshal(m.ID)
	if err != nil {
		return nil, err
	}
	b.Write(id)

	langs := make([]string, 0, len(m.Langs))
	for lang := range m.Langs {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	for _, lang := range langs {
		key, err := json.Marshal(lang)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.Langs[lang])
		if err != nil {
			return nil, err
		}
		b.WriteByte(',')
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// UnmarshalJSON splits the id out of the flattened object.
func (m *JSONMessage) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if id, ok := raw["id"]; ok {
		if err := json.Unmarshal(id, &m.ID); err != nil {
			return err
		}
		delete(raw, "id")
	}
	m.Langs = make(map[string]Content, len(raw))
	for lang, val := range raw {
		var c Content
		if err := json.Unmarshal(val, &c); err != nil {
			return fmt.Errorf("message %q, language %q: %w", m.ID, lang, err)
		}
		m.Langs[lang] = c
	}
	return nil
}

// JSONDoc is the whole document.
type JSONDoc struct {
	Key      uint16        `json:"key"`
	Messages []JSONMessage `json:"messages"`
}

// MessageID returns the stable id for message idx of the named archive.
func MessageID(archiveName string, idx int) string {
	return fmt.Sprintf("msg_%s_%05d", archiveName, idx)
}

// splitContent cuts a rendered message after every literal \n, \r or \f
// escape so multi-line dialogue diffs line by line.
func splitContent(text string) Content {
	var lines []string
	var current strings.Builder

	for _, ch := range text {
		current.WriteRune(ch)
		s := current.String()
		if strings.HasSuffix(s, `\n`) || strings.HasSuffix(s, `\r`) || strings.HasSuffix(s, `\f`) {
			lines = append(lines, s)
			current.Reset()
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}

	if len(lines) <= 1 {
		return Content{text}
	}
	return Content(lines)
}

// BuildJSONDoc renders decoded messages as a pretty-printed JSON document
// under the given language tag. existing, when non-empty, is the previous
// document: its other languages are merged per id and ids missing from the
// current archive are kept at the tail.
func BuildJSONDoc(archiveName string, key uint16, messages []Message, lang string, existing []byte) ([]byte, error) {
	if lang == "" {
		lang = DefaultLang
	}

	carried := make(map[string]JSONMessage)
	var carriedOrder []string
	if len(existing) > 0 {
		var prev JSONDoc
		// A corrupt previous document only forfeits the merge.
		if err := json.Unmarshal(bytes.TrimPrefix(existing, utf8BOM), &prev); err == nil {
			for _, m := range prev.Messages {
				carried[m.ID] = m
				carriedOrder = append(carriedOrder, m.ID)
			}
		}
	}

	doc := JSONDoc{Key: key, Messages: make([]JSONMessage, 0, len(messages))}
	seen := make(map[string]bool, len(messages))

	for idx, m := range messages {
		id := MessageID(archiveName, idx)
		seen[id] = true

		merged := JSONMessage{ID: id, Langs: map[string]Content{}}
		if prev, ok := carried[id]; ok {
			for l, c := range prev.Langs {
				merged.Langs[l] = c
			}
		}
		merged.Langs[lang] = splitContent(m.Text)
		doc.Messages = append(doc.Messages, merged)
	}

	for _, id := range carriedOrder {
		if !seen[id] {
			doc.Messages = append(doc.Messages, carried[id])
		}
	}

	return json.MarshalIndent(doc, "", "  ")
}

// ReadJSONDoc extracts the key and one language's message lines from a JSON
// document, falling back to DefaultLang when the requested tag is absent.
func ReadJSONDoc(data []byte, lang string) (uint16, []string, error) {
	if lang == "" {
		lang = DefaultLang
	}

	var doc JSONDoc
	if err := json.Unmarshal(bytes.TrimPrefix(data, utf8BOM), &doc); err != nil {
		return 0, nil, fmt.Errorf("parse json document: %w", err)
	}

	lines := make([]string, 0, len(doc.Messages))
	for _, m := range doc.Messages {
		content, ok := m.Langs[lang]
		if !ok {
			content, ok = m.Langs[DefaultLang]
		}
		if !ok {
			return 0, nil, fmt.Errorf("language %q not found in message %s", lang, m.ID)
		}
		lines = append(lines, content.Join())
	}
	return doc.Key, lines, nil
}
