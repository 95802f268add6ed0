package template

import "github.com/radbridge/radbridge/internal/dataset"

// node is one element of the parsed template tree.
type node interface{ isNode() }

// literal is verbatim template text.
type literal struct {
	text string
}

// tagRef substitutes the scalar value of a dataset tag.
type tagRef struct {
	tag dataset.Tag
}

// specialRef substitutes one of the fixed named specials that derive from
// the clock or fixed tags.
type specialRef struct {
	name string
}

// seqNumRef substitutes either a configured special or, failing that, a
// per-render counter keyed by name.
type seqNumRef struct {
	name string
}

// pathRef substitutes a path+attribute lookup rooted at the dataset
// (the #{SR(path.attr)} form).
type pathRef struct {
	expr string
}

// loopRef substitutes a path+attribute lookup whose first segment is
// expected to be a loop binding (the #{var/path.attr} form). Resolution is
// identical to pathRef; the distinction is kept for diagnostics.
type loopRef struct {
	expr string
}

// forEachBlock renders its body once per item matched by path, with the
// item bound to the loop variable for the body's lexical extent.
type forEachBlock struct {
	path string
	name string
	body []node
}

// ifBlock renders exactly one of its branches.
type ifBlock struct {
	cond     string
	thenBody []node
	elseBody []node
}

func (literal) isNode()      {}
func (tagRef) isNode()       {}
func (specialRef) isNode()   {}
func (seqNumRef) isNode()    {}
func (pathRef) isNode()      {}
func (loopRef) isNode()      {}
func (forEachBlock) isNode() {}
func (ifBlock) isNode()      {}
