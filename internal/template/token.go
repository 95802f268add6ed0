package template

import "strings"

type tokenKind int

const (
	tokLiteral tokenKind = iota
	tokPlaceholder
)

// token is one unit of a normalized template: a run of literal text or the
// inner content of a #{...} placeholder.
type token struct {
	kind tokenKind
	text string
}

// raw reconstructs the verbatim template fragment for a token, used when an
// unmatched block marker has to be left untouched in the output.
func (t token) raw() string {
	if t.kind == tokPlaceholder {
		return "#{" + t.text + "}"
	}
	return t.text
}

// normalize unifies line endings to \n and strips // comments and blank
// lines, so the parser only ever sees meaningful lines. The second return
// reports whether the last meaningful line was newline-terminated, which
// decides whether the rendered output carries a trailing segment terminator.
func normalize(tpl string) (string, bool) {
	tpl = strings.ReplaceAll(tpl, "\r\n", "\n")
	tpl = strings.ReplaceAll(tpl, "\r", "\n")

	lines := strings.Split(tpl, "\n")
	var kept []string
	lastKept := -1
	for i, line := range lines {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
		lastKept = i
	}
	return strings.Join(kept, "\n"), lastKept >= 0 && lastKept < len(lines)-1
}

// tokenize splits a normalized template into literal and placeholder tokens.
// An unterminated #{ is treated as literal text; the renderer must never
// lose input.
func tokenize(tpl string) []token {
	var toks []token
	for len(tpl) > 0 {
		start := strings.Index(tpl, "#{")
		if start < 0 {
			toks = append(toks, token{kind: tokLiteral, text: tpl})
			break
		}
		end := strings.Index(tpl[start:], "}")
		if end < 0 {
			toks = append(toks, token{kind: tokLiteral, text: tpl})
			break
		}
		if start > 0 {
			toks = append(toks, token{kind: tokLiteral, text: tpl[:start]})
		}
		toks = append(toks, token{kind: tokPlaceholder, text: tpl[start+2 : start+end]})
		tpl = tpl[start+end+1:]
	}
	return toks
}
