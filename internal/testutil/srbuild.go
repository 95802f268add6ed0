// Package testutil provides helpers for building structured-report content
// trees in tests without the ceremony of the full dataset API.
package testutil

import (
	"context"

	"github.com/radbridge/radbridge/internal/dataset"
)

var ctx = context.Background()

// ContentItem builds a content item carrying a concept-name code.
func ContentItem(scheme, value, meaning string) *dataset.Dataset {
	item := dataset.New()
	code := item.AppendItem(dataset.TagConceptNameCodeSeq)
	code.PutString(ctx, dataset.TagCodingSchemeDesignator, "", scheme)
	code.PutString(ctx, dataset.TagCodeValue, "", value)
	code.PutString(ctx, dataset.TagCodeMeaning, "", meaning)
	return item
}

// WithText sets a content item's text value and marks it as a TEXT item.
func WithText(item *dataset.Dataset, text string) *dataset.Dataset {
	item.PutString(ctx, dataset.TagValueType, "", "TEXT")
	item.PutString(ctx, dataset.TagTextValue, "", text)
	return item
}

// WithNumeric attaches a measured value with units and marks the item NUM.
func WithNumeric(item *dataset.Dataset, value, unitsCode, unitsMeaning string) *dataset.Dataset {
	item.PutString(ctx, dataset.TagValueType, "", "NUM")
	measured := item.AppendItem(dataset.TagMeasuredValueSeq)
	measured.PutString(ctx, dataset.TagNumericValue, "", value)
	units := measured.AppendItem(dataset.TagMeasurementUnitsCodeSeq)
	units.PutString(ctx, dataset.TagCodeValue, "", unitsCode)
	units.PutString(ctx, dataset.TagCodeMeaning, "", unitsMeaning)
	return item
}

// Attach appends children to a parent's content sequence and returns the
// parent for chaining.
func Attach(parent *dataset.Dataset, children ...*dataset.Dataset) *dataset.Dataset {
	e := parent.Find(dataset.TagContentSeq)
	if e == nil {
		e = &dataset.Element{Tag: dataset.TagContentSeq, VR: "SQ"}
		parent.Elements = append(parent.Elements, e)
	}
	e.Items = append(e.Items, children...)
	return parent
}
