package template

import (
	"context"
	"regexp"
	"strings"

	"github.com/radbridge/radbridge/internal/ctxlog"
	"github.com/radbridge/radbridge/internal/dataset"
)

var (
	tagRefRe  = regexp.MustCompile(`^[0-9a-fA-F]{4},[0-9a-fA-F]{4}$`)
	forEachRe = regexp.MustCompile(`^ForEach\((.+)\s+as\s+([A-Za-z_]\w*)\)$`)
	ifRe      = regexp.MustCompile(`^If\((.+)\)$`)
	srRefRe   = regexp.MustCompile(`^SR\((.+)\)$`)
	identRe   = regexp.MustCompile(`^[A-Za-z_]\w*$`)
)

// clockSpecials are the specials computed from the clock or fixed tags.
// Everything else that looks like an identifier resolves through the
// configuration and then the per-render counters.
var clockSpecials = map[string]bool{
	"CurrentDateTime":   true,
	"ScheduledDateTime": true,
	"PlacerOrderNumber": true,
	"ProcedureStepID":   true,
}

type parser struct {
	ctx  context.Context
	toks []token
	pos  int
}

// parse builds the AST for a token stream. Malformed structure is recovered
// locally: stray close markers are dropped with a warning and unmatched
// opens are left verbatim, so bad input cannot silently corrupt the rest of
// the render.
func parse(ctx context.Context, toks []token) []node {
	p := &parser{ctx: ctx, toks: toks}
	nodes, stop := p.parseNodes(nil)
	// parseNodes only stops early inside a block; at the top level any close
	// marker it returns on is stray.
	for stop != "" {
		ctxlog.FromContext(ctx).Warn("dropping unmatched close marker", "marker", stop)
		var more []node
		more, stop = p.parseNodes(nil)
		nodes = append(nodes, more...)
	}
	return nodes
}

// parseNodes consumes tokens until one of the stop markers appears at this
// nesting level or input ends. It returns the parsed nodes and the marker
// that stopped it ("" at end of input). When stops is nil, every close
// marker stops it so the caller can report it as stray.
func (p *parser) parseNodes(stops []string) ([]node, string) {
	var nodes []node
	for p.pos < len(p.toks) {
		tok := p.toks[p.pos]
		p.pos++

		if tok.kind == tokLiteral {
			nodes = append(nodes, literal{text: tok.text})
			continue
		}

		ph := strings.TrimSpace(tok.text)
		if isCloseMarker(ph) {
			for _, s := range stops {
				if ph == s {
					return nodes, ph
				}
			}
			if stops == nil {
				return nodes, ph
			}
			// A close marker for some other block while this one is still
			// open: treat it as stray here rather than swallow it.
			ctxlog.FromContext(p.ctx).Warn("dropping mismatched close marker", "marker", ph)
			continue
		}

		if m := forEachRe.FindStringSubmatch(ph); m != nil {
			body, stop := p.parseNodes([]string{"EndForEach"})
			if stop != "EndForEach" {
				ctxlog.FromContext(p.ctx).Warn("unmatched ForEach left verbatim", "path", strings.TrimSpace(m[1]))
				nodes = append(nodes, literal{text: tok.raw()})
				nodes = append(nodes, body...)
				continue
			}
			nodes = append(nodes, forEachBlock{path: strings.TrimSpace(m[1]), name: m[2], body: body})
			continue
		}

		if m := ifRe.FindStringSubmatch(ph); m != nil {
			nodes = append(nodes, p.parseIf(tok, strings.TrimSpace(m[1]))...)
			continue
		}

		nodes = append(nodes, classifyRef(p.ctx, ph, tok))
		continue
	}
	return nodes, ""
}

// parseIf parses the branches of an If block. Else is only recognized at
// nesting depth one relative to this If, which parseNodes guarantees by
// construction: nested blocks consume their own markers.
func (p *parser) parseIf(open token, cond string) []node {
	thenBody, stop := p.parseNodes([]string{"Else", "EndIf"})
	if stop == "EndIf" {
		return []node{ifBlock{cond: cond, thenBody: thenBody}}
	}
	if stop == "Else" {
		elseBody, stop := p.parseNodes([]string{"EndIf"})
		if stop == "EndIf" {
			return []node{ifBlock{cond: cond, thenBody: thenBody, elseBody: elseBody}}
		}
		ctxlog.FromContext(p.ctx).Warn("unmatched If left verbatim", "condition", cond)
		nodes := []node{literal{text: open.raw()}}
		nodes = append(nodes, thenBody...)
		nodes = append(nodes, literal{text: "#{Else}"})
		return append(nodes, elseBody...)
	}
	ctxlog.FromContext(p.ctx).Warn("unmatched If left verbatim", "condition", cond)
	nodes := []node{literal{text: open.raw()}}
	return append(nodes, thenBody...)
}

func isCloseMarker(ph string) bool {
	return ph == "EndForEach" || ph == "EndIf" || ph == "Else"
}

// classifyRef maps a non-block placeholder onto its AST node.
func classifyRef(ctx context.Context, ph string, tok token) node {
	if tagRefRe.MatchString(ph) {
		tag, err := dataset.ParseTag(ph)
		if err == nil {
			return tagRef{tag: tag}
		}
	}
	if m := srRefRe.FindStringSubmatch(ph); m != nil {
		return pathRef{expr: strings.TrimSpace(m[1])}
	}
	if identRe.MatchString(ph) {
		if clockSpecials[ph] {
			return specialRef{name: ph}
		}
		return seqNumRef{name: ph}
	}
	if strings.Contains(ph, "/") || strings.Contains(ph, ".") {
		return loopRef{expr: ph}
	}
	ctxlog.FromContext(ctx).Warn("unrecognized placeholder left verbatim", "placeholder", ph)
	return literal{text: tok.raw()}
}
