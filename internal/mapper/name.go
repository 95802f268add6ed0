package mapper

import (
	"strings"

	"github.com/radbridge/radbridge/internal/hl7"
)

// composeName reassembles a multi-component name field into the target
// component order: family, given, middle, prefix, suffix.
//
// A plain name field arrives as family^given^middle^suffix^prefix, so the
// last two components swap. An extended id+name field carries an identifier
// first (id^family^given^middle^suffix^prefix); the id is dropped and the
// same swap applies. Trailing empty components are trimmed so sparse names
// stay compact.
func composeName(value string, leadingID bool) string {
	if value == "" {
		return ""
	}
	parts := strings.Split(value, hl7.ComponentSeparator)
	if leadingID {
		if len(parts) < 2 {
			return ""
		}
		parts = parts[1:]
	}

	get := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}
	// Source order: family, given, middle, suffix, prefix.
	out := []string{get(0), get(1), get(2), get(4), get(3)}

	end := len(out)
	for end > 0 && out[end-1] == "" {
		end--
	}
	return strings.Join(out[:end], hl7.ComponentSeparator)
}
