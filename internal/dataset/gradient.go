package dataset

import (
	"fmt"
	"strings"

	"github.com/gradienthealth/dicom"
)

// FromDICOM converts a parsed gradienthealth dataset into the engine's
// representation. Element order is preserved. Sequence items arrive as
// nested elements inside the parent's value list; anything that is not a
// nested element is treated as one scalar value, with multi-valued
// attributes joined by the standard backslash separator.
func FromDICOM(ds *dicom.DataSet) *Dataset {
	out := New()
	if ds == nil {
		return out
	}
	for _, e := range ds.Elements {
		out.Elements = append(out.Elements, fromElement(e))
	}
	return out
}

func fromElement(e *dicom.Element) *Element {
	tag := Tag{Group: e.Tag.Group, Element: e.Tag.Element}
	if e.VR == "SQ" {
		item := &Element{Tag: tag, VR: "SQ"}
		for _, v := range e.Value {
			child, ok := v.(*dicom.Element)
			if !ok {
				continue
			}
			item.Items = append(item.Items, fromItem(child))
		}
		return item
	}

	values := make([]string, 0, len(e.Value))
	for _, v := range e.Value {
		switch t := v.(type) {
		case string:
			values = append(values, t)
		case *dicom.Element:
			// Non-SQ elements do not nest; skip rather than stringify a struct.
		default:
			values = append(values, fmt.Sprint(t))
		}
	}
	return &Element{Tag: tag, VR: e.VR, Value: strings.Join(values, "\\")}
}

// fromItem unpacks one sequence item, whose value list holds the item's own
// elements.
func fromItem(item *dicom.Element) *Dataset {
	ds := New()
	for _, v := range item.Value {
		child, ok := v.(*dicom.Element)
		if !ok {
			continue
		}
		ds.Elements = append(ds.Elements, fromElement(child))
	}
	return ds
}
