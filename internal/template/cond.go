package template

import (
	"context"
	"strconv"
	"strings"

	"github.com/radbridge/radbridge/internal/srpath"
)

// condOps in match precedence: two-character operators are tried before
// their one-character prefixes at each position.
var condOps = []string{">=", "<=", "==", "!=", ">", "<"}

// evalCond evaluates an If condition. With an operator present, both sides
// evaluate as path lookups (quoted literals bypass lookup); numeric
// comparison applies when both sides parse as numbers, otherwise only
// equality operators are meaningful for strings. Without an operator the
// condition is true iff the path resolves to at least one item, or, for a
// bare bound variable, iff the binding is non-null.
func (e *env) evalCond(ctx context.Context, cond string) bool {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return false
	}

	if lhs, op, rhs, ok := splitCond(cond); ok {
		return compare(e.evalOperand(ctx, lhs), op, e.evalOperand(ctx, rhs))
	}

	if bound, ok := e.bindings[cond]; ok {
		return bound != nil
	}
	return len(srpath.Resolve(ctx, cond, e.root, e.bindings)) > 0
}

// splitCond splits a condition on the first operator occurrence.
func splitCond(cond string) (lhs, op, rhs string, ok bool) {
	for i := 0; i < len(cond); i++ {
		for _, candidate := range condOps {
			if strings.HasPrefix(cond[i:], candidate) {
				return cond[:i], candidate, cond[i+len(candidate):], true
			}
		}
	}
	return "", "", "", false
}

// evalOperand evaluates one side of a comparison: a quoted literal is taken
// verbatim, anything else is a path lookup with an optional trailing
// attribute (TextValue when omitted).
func (e *env) evalOperand(ctx context.Context, operand string) string {
	operand = strings.TrimSpace(operand)
	if len(operand) >= 2 {
		if (operand[0] == '\'' && operand[len(operand)-1] == '\'') ||
			(operand[0] == '"' && operand[len(operand)-1] == '"') {
			return operand[1 : len(operand)-1]
		}
	}

	path, attr := splitPathAttr(operand)
	items := srpath.Resolve(ctx, path, e.root, e.bindings)
	if len(items) == 0 {
		return ""
	}
	if attr == "" {
		attr = "TextValue"
	}
	return srpath.Attribute(ctx, items[0], attr)
}

// compare applies an operator to two operand values, numerically when both
// parse as numbers. String operands only support equality; ordering
// operators on strings are false.
func compare(lhs, op, rhs string) bool {
	ln, lerr := strconv.ParseFloat(strings.TrimSpace(lhs), 64)
	rn, rerr := strconv.ParseFloat(strings.TrimSpace(rhs), 64)
	if lerr == nil && rerr == nil {
		switch op {
		case "==":
			return ln == rn
		case "!=":
			return ln != rn
		case ">":
			return ln > rn
		case "<":
			return ln < rn
		case ">=":
			return ln >= rn
		case "<=":
			return ln <= rn
		}
		return false
	}

	switch op {
	case "==":
		return lhs == rhs
	case "!=":
		return lhs != rhs
	}
	return false
}
