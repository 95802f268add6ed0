// Package hl7 models the flat, delimiter-separated side of the bridge:
// segments of fields of components. Only the structural model lives here;
// segment semantics belong to the mapper.
//
// Field and component access is 1-based to match how the wire format is
// documented. Missing trailing fields or components read as empty, never as
// an error.
package hl7

import (
	"fmt"
	"strings"
)

// Wire separators. The segment terminator is the only line terminator
// rendered output may use; the MLLP frame bytes belong to the transport and
// must never appear inside a message body.
const (
	SegmentTerminator     = "\r"
	FieldSeparator        = "|"
	ComponentSeparator    = "^"
	RepetitionSeparator   = "~"
	SubComponentSeparator = "&"
	EscapeCharacter       = "\\"

	frameStart = "\x0b"
	frameEnd   = "\x1c"
)

// Segment is one line of the message: a short type code plus its fields.
// Fields[0] is field 1 for every segment type except MSH, where field 1 is
// the separator character itself and Fields[0] is the encoding characters
// (MSH-2).
type Segment struct {
	Type   string
	Fields []string
}

// Field returns the n-th field (1-based), or "" when absent. MSH numbering
// is shifted per the standard: MSH-1 is the field separator, MSH-2 the
// encoding characters.
func (s *Segment) Field(n int) string {
	if n < 1 {
		return ""
	}
	idx := n - 1
	if s.Type == "MSH" {
		if n == 1 {
			return FieldSeparator
		}
		idx = n - 2
	}
	if idx >= len(s.Fields) {
		return ""
	}
	return s.Fields[idx]
}

// Component returns the m-th component (1-based) of the n-th field, or ""
// when absent. A field with no component separator is its own first
// component.
func (s *Segment) Component(n, m int) string {
	return ComponentOf(s.Field(n), m)
}

// ComponentOf splits a raw field value and returns its m-th component
// (1-based), or "" when absent.
func ComponentOf(field string, m int) string {
	if m < 1 {
		return ""
	}
	parts := strings.Split(field, ComponentSeparator)
	if m > len(parts) {
		return ""
	}
	return parts[m-1]
}

// Message is an ordered list of segments.
type Message struct {
	Segments []*Segment
}

// Segment returns the first segment of the given type, or nil.
func (m *Message) Segment(typ string) *Segment {
	for _, s := range m.Segments {
		if s.Type == typ {
			return s
		}
	}
	return nil
}

// AllSegments returns every segment of the given type in message order.
func (m *Message) AllSegments(typ string) []*Segment {
	var out []*Segment
	for _, s := range m.Segments {
		if s.Type == typ {
			out = append(out, s)
		}
	}
	return out
}

// ControlID returns the message control identifier (MSH-10), or "".
func (m *Message) ControlID() string {
	msh := m.Segment("MSH")
	if msh == nil {
		return ""
	}
	return msh.Field(10)
}

// Parse splits raw message text into segments. Any MLLP frame bytes left by
// the transport are stripped first; both \r and \n are accepted as segment
// boundaries on input even though only \r is ever emitted.
func Parse(text string) (*Message, error) {
	text = strings.TrimPrefix(text, frameStart)
	text = strings.TrimSuffix(text, frameEnd+SegmentTerminator)
	text = strings.TrimSuffix(text, frameEnd)

	msg := &Message{}
	lines := strings.FieldsFunc(text, func(r rune) bool { return r == '\r' || r == '\n' })
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, FieldSeparator)
		if len(parts[0]) == 0 {
			return nil, fmt.Errorf("segment with empty type code in %q", line)
		}
		msg.Segments = append(msg.Segments, &Segment{Type: parts[0], Fields: parts[1:]})
	}
	if len(msg.Segments) == 0 {
		return nil, fmt.Errorf("empty message")
	}
	return msg, nil
}

// Encode renders the message back to canonical wire text: fields joined by
// the field separator, each segment terminated by the segment terminator and
// nothing else. This canonical form is also the input to content hashing, so
// it must stay deterministic.
func (m *Message) Encode() string {
	var b strings.Builder
	for _, s := range m.Segments {
		b.WriteString(s.Type)
		for _, f := range s.Fields {
			b.WriteString(FieldSeparator)
			b.WriteString(f)
		}
		b.WriteString(SegmentTerminator)
	}
	return b.String()
}

// Sanitize rewrites any field separator inside a substituted value to the
// component separator and removes characters that would corrupt framing
// (segment terminators and MLLP frame bytes). Applied to every value the
// renderer substitutes into a message.
func Sanitize(value string) string {
	value = strings.ReplaceAll(value, FieldSeparator, ComponentSeparator)
	replacer := strings.NewReplacer("\r", " ", "\n", " ", frameStart, "", frameEnd, "")
	return replacer.Replace(value)
}
