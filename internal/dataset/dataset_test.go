package dataset

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTag(t *testing.T) {
	t.Run("bare form", func(t *testing.T) {
		tag, err := ParseTag("0010,0020")
		require.NoError(t, err)
		assert.Equal(t, Tag{0x0010, 0x0020}, tag)
	})

	t.Run("parenthesized form", func(t *testing.T) {
		tag, err := ParseTag("(0040,a730)")
		require.NoError(t, err)
		assert.Equal(t, Tag{0x0040, 0xa730}, tag)
	})

	t.Run("round trips through String", func(t *testing.T) {
		tag := Tag{0x0008, 0x0050}
		parsed, err := ParseTag(tag.String())
		require.NoError(t, err)
		assert.Equal(t, tag, parsed)
	})

	t.Run("malformed input", func(t *testing.T) {
		_, err := ParseTag("00100020")
		assert.Error(t, err)
		_, err = ParseTag("zzzz,0020")
		assert.Error(t, err)
	})
}

func TestStringNeverCoercesSequences(t *testing.T) {
	ds := New()
	ds.AppendItem(TagContentSeq)

	_, ok := ds.String(TagContentSeq)
	assert.False(t, ok, "a sequence tag must not resolve as a scalar")
}

func TestPutStringReplaces(t *testing.T) {
	ctx := context.Background()
	ds := New()
	ds.PutString(ctx, TagPatientID, "LO", "FIRST")
	ds.PutString(ctx, TagPatientID, "LO", "SECOND")

	require.Len(t, ds.Elements, 1)
	v, ok := ds.String(TagPatientID)
	require.True(t, ok)
	assert.Equal(t, "SECOND", v)
}

func TestFindScalarDeep(t *testing.T) {
	ctx := context.Background()
	ds := New()
	item := ds.AppendItem(TagContentSeq)
	inner := item.AppendItem(TagContentSeq)
	inner.PutString(ctx, TagTextValue, "UT", "nested finding")

	v, ok := ds.FindScalarDeep(TagTextValue)
	require.True(t, ok)
	assert.Equal(t, "nested finding", v)

	_, ok = ds.FindScalarDeep(TagPatientID)
	assert.False(t, ok)
}

func TestTruncate(t *testing.T) {
	ctx := context.Background()

	t.Run("values at the cap pass through unchanged", func(t *testing.T) {
		v := strings.Repeat("a", 16)
		assert.Equal(t, v, Truncate(ctx, "SH", v))
	})

	t.Run("values over the cap are cut to exactly the cap", func(t *testing.T) {
		for vr, limit := range map[string]int{"AE": 16, "SH": 16, "CS": 16, "DA": 8, "TM": 16, "DT": 26, "IS": 12, "DS": 16, "LO": 64, "PN": 64, "UI": 64, "ST": 1024, "LT": 10240} {
			long := strings.Repeat("x", limit+100)
			got := Truncate(ctx, vr, long)
			assert.Len(t, got, limit, "vr %s", vr)
		}
	})

	t.Run("unbounded VRs are never cut", func(t *testing.T) {
		long := strings.Repeat("x", 20000)
		assert.Equal(t, long, Truncate(ctx, "UT", long))
	})

	t.Run("unknown VR falls back to no truncation", func(t *testing.T) {
		long := strings.Repeat("x", 20000)
		assert.Equal(t, long, Truncate(ctx, "XX", long))
	})
}

func TestPutStringTruncates(t *testing.T) {
	ctx := context.Background()
	ds := New()
	ds.PutString(ctx, TagAccessionNumber, "", strings.Repeat("9", 40))

	v, ok := ds.String(TagAccessionNumber)
	require.True(t, ok)
	assert.Len(t, v, 16, "accession number is SH-capped")
}
