package srpath

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/radbridge/radbridge/internal/dataset"
	"github.com/radbridge/radbridge/internal/testutil"
)

func TestAttributeText(t *testing.T) {
	ctx := context.Background()
	item := testutil.WithText(testutil.ContentItem("SRT", "T-A0100", "Finding Site"), "Brain")

	assert.Equal(t, "Brain", Attribute(ctx, item, "TextValue"))
	assert.Equal(t, "Brain", Attribute(ctx, item, "textvalue"), "attribute names are case-insensitive")
}

func TestAttributeConceptCode(t *testing.T) {
	ctx := context.Background()
	item := testutil.ContentItem("SRT", "T-A0100", "Finding Site")

	assert.Equal(t, "T-A0100", Attribute(ctx, item, "CodeValue"))
	assert.Equal(t, "Finding Site", Attribute(ctx, item, "CodeMeaning"))
	assert.Equal(t, "SRT", Attribute(ctx, item, "CodingScheme"))
}

func TestAttributeUnits(t *testing.T) {
	ctx := context.Background()
	item := testutil.WithNumeric(testutil.ContentItem("SRT", "F-00078", "Finding"), "42", "mm", "millimeter")

	assert.Equal(t, "mm", Attribute(ctx, item, "UnitsCode"))
	assert.Equal(t, "millimeter", Attribute(ctx, item, "UnitsMeaning"))
}

func TestAttributeNumericFallbackChain(t *testing.T) {
	ctx := context.Background()

	t.Run("level 1: measured value sequence", func(t *testing.T) {
		item := testutil.WithNumeric(testutil.ContentItem("SRT", "F-1", "m"), "42.5", "mm", "millimeter")
		assert.Equal(t, "42.5", Attribute(ctx, item, "NumericValue"))
	})

	t.Run("level 2: direct numeric tag", func(t *testing.T) {
		item := testutil.ContentItem("SRT", "F-1", "m")
		item.PutString(ctx, dataset.TagNumericValue, "", "17")
		assert.Equal(t, "17", Attribute(ctx, item, "NumericValue"))
	})

	t.Run("level 3: first numeric-typed child", func(t *testing.T) {
		parent := testutil.ContentItem("SRT", "F-1", "m")
		child := testutil.WithNumeric(testutil.ContentItem("SRT", "F-2", "n"), "99", "mm", "millimeter")
		testutil.Attach(parent, child)
		assert.Equal(t, "99", Attribute(ctx, parent, "NumericValue"))
	})

	t.Run("level 4: digits extracted from free text", func(t *testing.T) {
		item := testutil.WithText(testutil.ContentItem("SRT", "F-1", "m"), "approx 17.5 mm wide")
		assert.Equal(t, "17.5", Attribute(ctx, item, "NumericValue"))
	})

	t.Run("level 5: literal zero", func(t *testing.T) {
		item := testutil.ContentItem("SRT", "F-1", "m")
		assert.Equal(t, "0", Attribute(ctx, item, "NumericValue"))
	})
}

func TestAttributeDateTime(t *testing.T) {
	ctx := context.Background()

	t.Run("observation datetime preferred", func(t *testing.T) {
		item := testutil.ContentItem("SRT", "F-1", "m")
		item.PutString(ctx, dataset.TagObservationDateTime, "", "20240102030405")
		item.PutString(ctx, dataset.TagContentDate, "", "19990101")
		assert.Equal(t, "20240102030405", Attribute(ctx, item, "DateTime"))
	})

	t.Run("content date and time fallback", func(t *testing.T) {
		item := testutil.ContentItem("SRT", "F-1", "m")
		item.PutString(ctx, dataset.TagContentDate, "", "20240102")
		item.PutString(ctx, dataset.TagContentTime, "", "030405")
		assert.Equal(t, "20240102030405", Attribute(ctx, item, "DateTime"))
	})
}

func TestAttributeCodeFilter(t *testing.T) {
	ctx := context.Background()
	parent := testutil.ContentItem("SRT", "P-1", "parent")
	child := testutil.WithText(testutil.ContentItem("99LOCAL", "X-1", "obs"), "filtered text")
	testutil.Attach(parent, child)

	assert.Equal(t, "filtered text", Attribute(ctx, parent, "Code(99LOCAL:X-1).TextValue"))
	assert.Equal(t, "", Attribute(ctx, parent, "Code(99LOCAL:MISSING).TextValue"))
}

func TestAttributeUnknown(t *testing.T) {
	ctx := context.Background()
	item := testutil.ContentItem("SRT", "F-1", "m")

	assert.Equal(t, "", Attribute(ctx, item, "NoSuchAttribute"))
	assert.Equal(t, "", Attribute(ctx, nil, "TextValue"))
}
