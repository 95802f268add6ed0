// Package template implements the forward direction of the bridge: rendering
// flat delimiter-separated text from a hierarchical dataset.
//
// The template language interleaves literal text with #{...} placeholders:
//
//	#{0010,0010}                      tag reference
//	#{CurrentDateTime}                named special
//	#{SetID}                          per-render sequence counter
//	#{SR(path.attr)}                  path plus attribute reference
//	#{item/path.attr}                 loop-bound reference
//	#{ForEach(path as item)} ... #{EndForEach}
//	#{If(cond)} ... #{Else} ... #{EndIf}
//	// line comment
//
// Keywords are case-sensitive; attribute names are not. Templates are
// normalized, tokenized and parsed into a small AST, then evaluated with an
// environment constructed per render call, so concurrent renders share
// nothing. Placeholder failures are contained: a broken expression logs a
// warning and resolves to the empty string rather than aborting the render.
package template
