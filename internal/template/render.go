package template

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/radbridge/radbridge/internal/ctxlog"
	"github.com/radbridge/radbridge/internal/dataset"
	"github.com/radbridge/radbridge/internal/hl7"
	"github.com/radbridge/radbridge/internal/srpath"
)

// timestampLayout is the flat format's timestamp form (YYYYMMDDHHMMSS).
const timestampLayout = "20060102150405"

// Unresolved is the explicit marker substituted when a tag reference names a
// sequence and no scalar occurrence of that tag exists anywhere in the tree.
// Emitting a marker instead of garbage keeps the failure visible downstream.
const Unresolved = "<unresolved>"

// Config supplies caller-owned identity values and extra named specials to a
// render. The engine never introspects configuration shapes; this small
// interface is all it sees.
type Config interface {
	// Special returns the value for a configured special name, and whether
	// the name is configured at all.
	Special(name string) (string, bool)
}

// Renderer renders templates against datasets. The zero value is usable; a
// Renderer carries no per-render state and is safe for concurrent use.
type Renderer struct {
	// Config resolves configured specials. May be nil.
	Config Config
	// Clock overrides the time source, for deterministic tests. Nil means
	// time.Now.
	Clock func() time.Time
}

// env is the per-render environment: loop bindings, sequence counters and
// the clock value basis. A fresh env is built for every Render call and
// never escapes it.
type env struct {
	root     *dataset.Dataset
	bindings srpath.Bindings
	counters map[string]int
	cfg      Config
	now      func() time.Time
}

// Render evaluates a template against a dataset and returns flat message
// text terminated with the segment separator only. The dataset is read-only
// input; rendering never mutates it.
func (r *Renderer) Render(ctx context.Context, tpl string, root *dataset.Dataset) string {
	normalized, terminated := normalize(tpl)
	nodes := parse(ctx, tokenize(normalized))

	e := &env{
		root:     root,
		bindings: srpath.Bindings{},
		counters: map[string]int{},
		cfg:      r.Config,
		now:      r.Clock,
	}
	if e.now == nil {
		e.now = time.Now
	}

	var b strings.Builder
	e.evalNodes(ctx, nodes, &b)
	return assemble(b.String(), terminated)
}

// assemble converts the evaluated text to wire framing: blank lines are
// dropped (block markers leave them behind) and the segment terminator is
// the only line terminator. The final segment is terminated only when the
// template's last line was.
func assemble(text string, terminated bool) string {
	var segments []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		segments = append(segments, line)
	}
	if len(segments) == 0 {
		return ""
	}
	out := strings.Join(segments, hl7.SegmentTerminator)
	if terminated {
		out += hl7.SegmentTerminator
	}
	return out
}

func (e *env) evalNodes(ctx context.Context, nodes []node, b *strings.Builder) {
	for _, n := range nodes {
		b.WriteString(e.evalNode(ctx, n))
	}
}

func (e *env) evalNode(ctx context.Context, n node) string {
	switch v := n.(type) {
	case literal:
		return v.text
	case tagRef:
		return e.contain(ctx, "tag "+v.tag.String(), func() string { return e.evalTag(ctx, v.tag) })
	case specialRef:
		return e.contain(ctx, "special "+v.name, func() string { return e.evalSpecial(ctx, v.name) })
	case seqNumRef:
		return e.contain(ctx, "name "+v.name, func() string { return e.evalSeqNum(v.name) })
	case pathRef:
		return e.contain(ctx, "path "+v.expr, func() string { return e.evalPathAttr(ctx, v.expr) })
	case loopRef:
		return e.contain(ctx, "loop ref "+v.expr, func() string { return e.evalPathAttr(ctx, v.expr) })
	case forEachBlock:
		return e.evalForEach(ctx, v)
	case ifBlock:
		var b strings.Builder
		if e.evalCond(ctx, v.cond) {
			e.evalNodes(ctx, v.thenBody, &b)
		} else {
			e.evalNodes(ctx, v.elseBody, &b)
		}
		return b.String()
	}
	return ""
}

// contain runs one placeholder evaluation and absorbs any panic into an
// empty substitution. One malformed expression must not abort an otherwise
// valid render; message delivery cannot stall on a missing optional field.
func (e *env) contain(ctx context.Context, what string, fn func() string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			ctxlog.FromContext(ctx).Warn("placeholder evaluation failed, substituting empty",
				"fragment", what, "cause", r)
			out = ""
		}
	}()
	return fn()
}

// evalTag substitutes a direct tag reference. A scalar value substitutes
// directly. A sequence-VR tag never yields its raw bytes: the tree is
// searched depth-first for a scalar occurrence of the same tag, and the
// explicit unresolved marker substitutes when none exists. An absent tag is
// also searched for in nested sequences, but resolves to empty when missing
// everywhere.
func (e *env) evalTag(ctx context.Context, t dataset.Tag) string {
	if e.root == nil {
		return ""
	}
	if v, ok := e.root.String(t); ok {
		return hl7.Sanitize(v)
	}
	if v, ok := e.root.FindScalarDeep(t); ok {
		return hl7.Sanitize(v)
	}
	if elem := e.root.Find(t); elem != nil && elem.IsSequence() {
		ctxlog.FromContext(ctx).Warn("sequence tag has no scalar occurrence", "tag", t.String())
		return Unresolved
	}
	ctxlog.FromContext(ctx).Debug("tag absent, substituting empty", "tag", t.String())
	return ""
}

// evalSpecial resolves the fixed clock- and tag-derived specials.
func (e *env) evalSpecial(ctx context.Context, name string) string {
	scalar := func(t dataset.Tag) string {
		if e.root == nil {
			return ""
		}
		v, _ := e.root.String(t)
		return v
	}
	switch name {
	case "CurrentDateTime":
		return e.now().Format(timestampLayout)
	case "ScheduledDateTime":
		date := scalar(dataset.TagScheduledStepStartDate)
		t := scalar(dataset.TagScheduledStepStartTime)
		if date == "" && t == "" {
			// No scheduling information on the object: schedule a day out.
			return e.now().Add(24 * time.Hour).Format(timestampLayout)
		}
		return hl7.Sanitize(date + t)
	case "PlacerOrderNumber":
		if v := scalar(dataset.TagPlacerOrderNumber); v != "" {
			return hl7.Sanitize(v)
		}
		return hl7.Sanitize(scalar(dataset.TagAccessionNumber))
	case "ProcedureStepID":
		if v := scalar(dataset.TagScheduledStepID); v != "" {
			return hl7.Sanitize(v)
		}
		return hl7.Sanitize(scalar(dataset.TagRequestedProcedureID))
	}
	ctxlog.FromContext(ctx).Warn("unknown special, substituting empty", "name", name)
	return ""
}

// evalSeqNum resolves an identifier placeholder: a configured special when
// one is defined under that name, otherwise a per-render counter starting
// at 1 and keyed independently by name.
func (e *env) evalSeqNum(name string) string {
	if e.cfg != nil {
		if v, ok := e.cfg.Special(name); ok {
			return hl7.Sanitize(v)
		}
	}
	e.counters[name]++
	return strconv.Itoa(e.counters[name])
}

// evalPathAttr resolves path.attr through the resolver and attribute
// extractor. Every failure mode resolves to empty; the path grammar has no
// hard errors in this direction.
func (e *env) evalPathAttr(ctx context.Context, expr string) string {
	path, attr := splitPathAttr(expr)
	items := srpath.Resolve(ctx, path, e.root, e.bindings)
	if len(items) == 0 {
		ctxlog.FromContext(ctx).Debug("path resolved to nothing", "path", path)
		return ""
	}
	if attr == "" {
		attr = "TextValue"
	}
	return hl7.Sanitize(srpath.Attribute(ctx, items[0], attr))
}

// evalForEach renders the body once per matched item in match order, with
// the loop variable bound for the body's extent. An inner block reusing the
// name shadows the outer binding and the outer value is restored afterwards.
func (e *env) evalForEach(ctx context.Context, blk forEachBlock) string {
	items := srpath.Resolve(ctx, blk.path, e.root, e.bindings)
	prev, hadPrev := e.bindings[blk.name]

	var b strings.Builder
	for _, item := range items {
		e.bindings[blk.name] = item
		e.evalNodes(ctx, blk.body, &b)
	}

	if hadPrev {
		e.bindings[blk.name] = prev
	} else {
		delete(e.bindings, blk.name)
	}
	return b.String()
}

// splitPathAttr splits "path.attr" at the first dot outside parentheses, so
// attribute forms like Code(scheme:value).CodeMeaning survive intact on the
// attribute side.
func splitPathAttr(expr string) (string, string) {
	depth := 0
	for i, r := range expr {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case '.':
			if depth == 0 {
				return expr[:i], expr[i+1:]
			}
		}
	}
	return expr, ""
}
