package srpath

import (
	"context"
	"regexp"
	"strings"

	"github.com/radbridge/radbridge/internal/ctxlog"
	"github.com/radbridge/radbridge/internal/dataset"
)

var (
	codeAttrRe = regexp.MustCompile(`^Code\(([^:()]+):([^()]+)\)\.(.+)$`)
	numberRe   = regexp.MustCompile(`[-+]?\d+(\.\d+)?`)
)

// Attribute extracts a named attribute from a content item as a string. The
// vocabulary is closed and case-insensitive; an unknown name resolves to ""
// with a logged warning so a bad template never aborts a render. A name of
// the form Code(scheme:value).attr first filters the item's children by
// concept code and recurses on the first match.
func Attribute(ctx context.Context, ds *dataset.Dataset, name string) string {
	if ds == nil {
		return ""
	}
	name = strings.TrimSpace(name)

	if m := codeAttrRe.FindStringSubmatch(name); m != nil {
		children := matchChildren(ds, "Code("+m[1]+":"+m[2]+")")
		if len(children) == 0 {
			return ""
		}
		return Attribute(ctx, children[0], m[3])
	}

	switch strings.ToLower(name) {
	case "textvalue":
		v, _ := ds.String(dataset.TagTextValue)
		return v
	case "numericvalue":
		return numericValue(ds)
	case "unitscode":
		code, _ := unitsCode(ds)
		return code
	case "unitsmeaning":
		_, meaning := unitsCode(ds)
		return meaning
	case "datetime":
		return observationDateTime(ds)
	case "codevalue":
		_, v, _ := conceptCode(ds)
		return v
	case "codemeaning":
		_, _, m := conceptCode(ds)
		return m
	case "codingscheme":
		s, _, _ := conceptCode(ds)
		return s
	}

	ctxlog.FromContext(ctx).Warn("unknown content attribute", "attribute", name)
	return ""
}

// numericValue walks the four-level fallback chain for a numeric content
// item. The final literal "0" conflates "zero" with "absent"; downstream
// consumers depend on it, so it stays.
func numericValue(ds *dataset.Dataset) string {
	if measured := ds.Sequence(dataset.TagMeasuredValueSeq); len(measured) > 0 {
		if v, ok := measured[0].String(dataset.TagNumericValue); ok && v != "" {
			return v
		}
	}
	if v, ok := ds.String(dataset.TagNumericValue); ok && v != "" {
		return v
	}
	for _, child := range ds.Sequence(dataset.TagContentSeq) {
		if vt, _ := child.String(dataset.TagValueType); strings.EqualFold(vt, "NUM") {
			if v := numericValueShallow(child); v != "" {
				return v
			}
		}
	}
	if text, ok := ds.String(dataset.TagTextValue); ok {
		if v := numberRe.FindString(text); v != "" {
			return v
		}
	}
	return "0"
}

// numericValueShallow reads a numeric child without re-entering the fallback
// chain, so a childless NUM item cannot loop back to the parent's text.
func numericValueShallow(ds *dataset.Dataset) string {
	if measured := ds.Sequence(dataset.TagMeasuredValueSeq); len(measured) > 0 {
		if v, ok := measured[0].String(dataset.TagNumericValue); ok {
			return v
		}
	}
	v, _ := ds.String(dataset.TagNumericValue)
	return v
}

// unitsCode returns the (code, meaning) of a measured value's units.
func unitsCode(ds *dataset.Dataset) (string, string) {
	measured := ds.Sequence(dataset.TagMeasuredValueSeq)
	if len(measured) == 0 {
		return "", ""
	}
	units := measured[0].Sequence(dataset.TagMeasurementUnitsCodeSeq)
	if len(units) == 0 {
		return "", ""
	}
	code, _ := units[0].String(dataset.TagCodeValue)
	meaning, _ := units[0].String(dataset.TagCodeMeaning)
	return code, meaning
}

// observationDateTime prefers the item's observation timestamp and falls
// back to content date plus time.
func observationDateTime(ds *dataset.Dataset) string {
	if v, ok := ds.String(dataset.TagObservationDateTime); ok && v != "" {
		return v
	}
	date, _ := ds.String(dataset.TagContentDate)
	t, _ := ds.String(dataset.TagContentTime)
	return date + t
}
