// Package srpath navigates structured-report content trees with a small
// slash-separated path grammar. It is the leaf dependency of both transform
// directions: the renderer resolves template paths through it and condition
// operands evaluate through it.
package srpath

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/radbridge/radbridge/internal/ctxlog"
	"github.com/radbridge/radbridge/internal/dataset"
)

// Bindings associates ForEach loop variables with the dataset item they are
// currently bound to. A fresh map is created per render; lexical scoping is
// the evaluator's job.
type Bindings map[string]*dataset.Dataset

var (
	codeSegmentRe = regexp.MustCompile(`^Code\(([^:()]+):([^()]+)\)$`)
	tokenRe       = regexp.MustCompile(`^[\w\-]+$`)
)

// snomedSchemes are the three interchangeable spellings of the SNOMED coding
// scheme family. Any other scheme designator must match exactly.
var snomedSchemes = map[string]bool{
	"SRT":  true,
	"SCT":  true,
	"SNM3": true,
}

func schemeMatches(want, got string) bool {
	if strings.EqualFold(want, got) {
		return true
	}
	return snomedSchemes[strings.ToUpper(want)] && snomedSchemes[strings.ToUpper(got)]
}

// Resolve evaluates a slash-separated path against a content tree and
// returns every matching item. When the first path segment names a bound
// loop variable, resolution re-roots at that binding and the segment is
// consumed. Each remaining segment maps the current candidates to their
// matching content-sequence children; a stage with zero matches ends
// resolution immediately with an empty result.
func Resolve(ctx context.Context, path string, root *dataset.Dataset, bindings Bindings) []*dataset.Dataset {
	path = strings.TrimSpace(path)
	if path == "" || root == nil && len(bindings) == 0 {
		return nil
	}

	segments := strings.Split(path, "/")
	candidates := []*dataset.Dataset{root}
	if bound, ok := bindings[segments[0]]; ok {
		if bound == nil {
			return nil
		}
		candidates = []*dataset.Dataset{bound}
		segments = segments[1:]
	} else if root == nil {
		return nil
	}

	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		var next []*dataset.Dataset
		for _, c := range candidates {
			next = append(next, matchChildren(c, seg)...)
		}
		if len(next) == 0 {
			ctxlog.FromContext(ctx).Debug("path segment matched nothing", "path", path, "segment", seg)
			return nil
		}
		candidates = next
	}
	return candidates
}

// matchChildren applies one path segment to a single candidate's
// content-sequence children. A candidate without a content sequence
// contributes no matches.
func matchChildren(c *dataset.Dataset, seg string) []*dataset.Dataset {
	children := c.Sequence(dataset.TagContentSeq)
	if len(children) == 0 {
		return nil
	}

	if seg == "items" {
		return children
	}

	if strings.HasPrefix(seg, "[") && strings.HasSuffix(seg, "]") {
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(seg, "["), "]"))
		if err != nil || n < 1 || n > len(children) {
			return nil
		}
		return children[n-1 : n]
	}

	if m := codeSegmentRe.FindStringSubmatch(seg); m != nil {
		var out []*dataset.Dataset
		for _, child := range children {
			scheme, value, _ := conceptCode(child)
			if strings.EqualFold(value, m[2]) && schemeMatches(m[1], scheme) {
				out = append(out, child)
			}
		}
		return out
	}

	if tokenRe.MatchString(seg) {
		var out []*dataset.Dataset
		for _, child := range children {
			_, value, _ := conceptCode(child)
			if strings.EqualFold(value, seg) {
				out = append(out, child)
			}
		}
		return out
	}

	// Free-text segment: match the concept meaning exactly first, then fall
	// back to a case-insensitive substring match.
	var exact, partial []*dataset.Dataset
	for _, child := range children {
		_, _, meaning := conceptCode(child)
		if meaning == seg {
			exact = append(exact, child)
		} else if meaning != "" && strings.Contains(strings.ToLower(meaning), strings.ToLower(seg)) {
			partial = append(partial, child)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return partial
}

// conceptCode returns the (scheme, value, meaning) triple of an item's
// concept-name code, with empty strings where absent.
func conceptCode(item *dataset.Dataset) (scheme, value, meaning string) {
	codes := item.Sequence(dataset.TagConceptNameCodeSeq)
	if len(codes) == 0 {
		return "", "", ""
	}
	scheme, _ = codes[0].String(dataset.TagCodingSchemeDesignator)
	value, _ = codes[0].String(dataset.TagCodeValue)
	meaning, _ = codes[0].String(dataset.TagCodeMeaning)
	return scheme, value, meaning
}
