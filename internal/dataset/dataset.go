// Package dataset models the hierarchical, tag-addressed side of the bridge:
// an ordered mapping from tag to either a scalar value with a value
// representation or a sequence of nested child datasets. The representation
// mirrors what the binary-protocol stack hands us; the engine treats it as
// read-only input and builds fresh instances for outbound objects.
package dataset

import (
	"context"
	"fmt"
	"strings"
)

// Element is a single attribute: a scalar value or a sequence of items,
// never both. The cardinality is fixed by the VR ("SQ" means Items).
type Element struct {
	Tag   Tag
	VR    string
	Value string
	Items []*Dataset
}

// IsSequence reports whether the element holds nested items.
func (e *Element) IsSequence() bool {
	return e.VR == "SQ"
}

// Dataset is an ordered collection of elements. Order is preserved from the
// source object so rendered output is deterministic.
type Dataset struct {
	Elements []*Element
}

// New returns an empty dataset.
func New() *Dataset {
	return &Dataset{}
}

// Find returns the element for a tag, or nil when absent.
func (d *Dataset) Find(t Tag) *Element {
	for _, e := range d.Elements {
		if e.Tag == t {
			return e
		}
	}
	return nil
}

// String returns the scalar value for a tag. The second return is false when
// the tag is absent or holds a sequence; a sequence is never coerced to a
// scalar here.
func (d *Dataset) String(t Tag) (string, bool) {
	e := d.Find(t)
	if e == nil || e.IsSequence() {
		return "", false
	}
	return e.Value, true
}

// Sequence returns the items of a sequence tag, or nil when the tag is
// absent or scalar.
func (d *Dataset) Sequence(t Tag) []*Dataset {
	e := d.Find(t)
	if e == nil || !e.IsSequence() {
		return nil
	}
	return e.Items
}

// PutString stores a scalar value under a tag, replacing any existing
// element. The value passes through the VR truncation rule first. An empty
// vr falls back to the suite's dictionary for the tag.
func (d *Dataset) PutString(ctx context.Context, t Tag, vr, value string) {
	if vr == "" {
		vr = VRForTag(t)
	}
	value = Truncate(ctx, vr, value)
	if e := d.Find(t); e != nil {
		e.VR = vr
		e.Value = value
		e.Items = nil
		return
	}
	d.Elements = append(d.Elements, &Element{Tag: t, VR: vr, Value: value})
}

// AppendItem appends a fresh item dataset to the sequence under a tag,
// creating the sequence element if needed, and returns the new item.
func (d *Dataset) AppendItem(t Tag) *Dataset {
	e := d.Find(t)
	if e == nil {
		e = &Element{Tag: t, VR: "SQ"}
		d.Elements = append(d.Elements, e)
	}
	e.VR = "SQ"
	e.Value = ""
	item := New()
	e.Items = append(e.Items, item)
	return item
}

// FindScalarDeep searches depth-first through every descendant sequence for
// the first scalar occurrence of the exact tag. The receiver's own top level
// is not consulted; callers check that first.
func (d *Dataset) FindScalarDeep(t Tag) (string, bool) {
	for _, e := range d.Elements {
		if !e.IsSequence() {
			continue
		}
		for _, item := range e.Items {
			if v, ok := item.String(t); ok {
				return v, true
			}
			if v, ok := item.FindScalarDeep(t); ok {
				return v, true
			}
		}
	}
	return "", false
}

// Dump renders the dataset as an indented human-readable listing, one
// element per line. Intended for CLI inspection and test diagnostics, not
// for any wire format.
func (d *Dataset) Dump() string {
	var b strings.Builder
	d.dump(&b, 0)
	return b.String()
}

func (d *Dataset) dump(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, e := range d.Elements {
		if e.IsSequence() {
			fmt.Fprintf(b, "%s%s %s (%d items)\n", indent, e.Tag, e.VR, len(e.Items))
			for i, item := range e.Items {
				fmt.Fprintf(b, "%s  item %d:\n", indent, i+1)
				item.dump(b, depth+2)
			}
			continue
		}
		fmt.Fprintf(b, "%s%s %s [%s]\n", indent, e.Tag, e.VR, e.Value)
	}
}
