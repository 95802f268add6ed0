package mapper

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radbridge/radbridge/internal/dataset"
	"github.com/radbridge/radbridge/internal/hl7"
)

func parseMsg(t *testing.T, segments ...string) *hl7.Message {
	t.Helper()
	msg, err := hl7.Parse(strings.Join(segments, "\r"))
	require.NoError(t, err)
	return msg
}

const (
	mshSeg = "MSH|^~\\&|RIS|MAIN|PACS|RAD|20240102030405||ORM^O01|MSGID123|P|2.3.1"
	pidSeg = "PID|1||PID12345^^^ISSUER||Doe^John^Q^Jr^Dr||19800515123000|M"
	orcSeg = "ORC|NW|PLACER123|FILLER456"
	obrSeg = "OBR|1|||CODE1^CT Chest^99PMC|||20240102083000|||||||||^Smith^Robert^J^Sr^Dr||ACC789||CT_SCANNER_01||||CT"
	zdsSeg = "ZDS|1.2.3.4.5^app^Application^DICOM"
)

func fullOrder(t *testing.T) *hl7.Message {
	return parseMsg(t, mshSeg, pidSeg, orcSeg, obrSeg, zdsSeg)
}

func mustString(t *testing.T, ds *dataset.Dataset, tag dataset.Tag) string {
	t.Helper()
	v, ok := ds.String(tag)
	require.True(t, ok, "expected %s to be present", tag)
	return v
}

func TestToDatasetMandatorySegments(t *testing.T) {
	ctx := context.Background()

	t.Run("nil message", func(t *testing.T) {
		ds, err := ToDataset(ctx, nil)
		assert.Error(t, err)
		assert.Nil(t, ds)
	})

	t.Run("missing PID", func(t *testing.T) {
		ds, err := ToDataset(ctx, parseMsg(t, mshSeg, obrSeg))
		assert.ErrorContains(t, err, "PID")
		assert.Nil(t, ds)
	})
}

func TestToDatasetDemographics(t *testing.T) {
	ctx := context.Background()
	ds, err := ToDataset(ctx, fullOrder(t))
	require.NoError(t, err)

	assert.Equal(t, "PID12345", mustString(t, ds, dataset.TagPatientID))
	assert.Equal(t, "19800515", mustString(t, ds, dataset.TagPatientBirthDate), "date part only")
	assert.Equal(t, "M", mustString(t, ds, dataset.TagPatientSex))
}

func TestToDatasetNameComposition(t *testing.T) {
	ctx := context.Background()
	ds, err := ToDataset(ctx, fullOrder(t))
	require.NoError(t, err)

	t.Run("patient name swaps suffix and prefix", func(t *testing.T) {
		assert.Equal(t, "Doe^John^Q^Dr^Jr", mustString(t, ds, dataset.TagPatientName))
	})

	t.Run("ordering provider drops the leading id", func(t *testing.T) {
		assert.Equal(t, "Smith^Robert^J^Dr^Sr", mustString(t, ds, dataset.TagReferringPhysicianName))
	})
}

func TestToDatasetOrder(t *testing.T) {
	ctx := context.Background()
	ds, err := ToDataset(ctx, fullOrder(t))
	require.NoError(t, err)

	assert.Equal(t, "PLACER123", mustString(t, ds, dataset.TagPlacerOrderNumber))
	assert.Equal(t, "FILLER456", mustString(t, ds, dataset.TagFillerOrderNumber))
	assert.Equal(t, "ACC789", mustString(t, ds, dataset.TagAccessionNumber))
	assert.Equal(t, "CT", mustString(t, ds, dataset.TagModality))
	assert.Equal(t, "CT_SCANNER_01", mustString(t, ds, dataset.TagScheduledStationAETitle))
	assert.Equal(t, "CT Chest", mustString(t, ds, dataset.TagRequestedProcedureDesc))
}

func TestToDatasetTimestampSplit(t *testing.T) {
	ctx := context.Background()
	ds, err := ToDataset(ctx, fullOrder(t))
	require.NoError(t, err)

	assert.Equal(t, "20240102", mustString(t, ds, dataset.TagScheduledStepStartDate))
	assert.Equal(t, "083000", mustString(t, ds, dataset.TagScheduledStepStartTime))
}

func TestToDatasetScheduleFallback(t *testing.T) {
	ctx := context.Background()
	orc := "ORC|NW|PLACER123|FILLER456||||^^^20240215113000"
	ds, err := ToDataset(ctx, parseMsg(t, mshSeg, pidSeg, orc))
	require.NoError(t, err)

	assert.Equal(t, "20240215", mustString(t, ds, dataset.TagScheduledStepStartDate),
		"quantity/timing start stands in when no observation timestamp exists")
	assert.Equal(t, "113000", mustString(t, ds, dataset.TagScheduledStepStartTime))
}

func TestToDatasetProcedureCodeSequence(t *testing.T) {
	ctx := context.Background()
	ds, err := ToDataset(ctx, fullOrder(t))
	require.NoError(t, err)

	seq := ds.Sequence(dataset.TagRequestedProcedureCodeSeq)
	require.Len(t, seq, 1)
	item := seq[0]
	assert.Equal(t, "CODE1", mustString(t, item, dataset.TagCodeValue))
	assert.Equal(t, "CT Chest", mustString(t, item, dataset.TagCodeMeaning))
	assert.Equal(t, "99PMC", mustString(t, item, dataset.TagCodingSchemeDesignator))
}

func TestToDatasetOrderNumberFallbacks(t *testing.T) {
	ctx := context.Background()
	obr := "OBR|1|OBRPLACER|OBRFILLER|CODE1^CT Chest"
	ds, err := ToDataset(ctx, parseMsg(t, mshSeg, pidSeg, obr))
	require.NoError(t, err)

	assert.Equal(t, "OBRPLACER", mustString(t, ds, dataset.TagPlacerOrderNumber))
	assert.Equal(t, "OBRFILLER", mustString(t, ds, dataset.TagFillerOrderNumber))
	assert.Equal(t, "OBRFILLER", mustString(t, ds, dataset.TagAccessionNumber),
		"accession falls back to the filler order number")
}

func TestToDatasetTruncation(t *testing.T) {
	ctx := context.Background()
	long := strings.Repeat("A", 20)
	fields := make([]string, 25)
	fields[0] = "OBR"
	fields[1] = "1"
	fields[20] = long
	fields[24] = "CT"
	obr := strings.Join(fields, "|")
	ds, err := ToDataset(ctx, parseMsg(t, mshSeg, pidSeg, obr))
	require.NoError(t, err)

	got := mustString(t, ds, dataset.TagScheduledStationAETitle)
	assert.Equal(t, strings.Repeat("A", 16), got, "station name is cut to the AE cap")
}

func TestToDatasetStudyUIDPassthrough(t *testing.T) {
	ctx := context.Background()
	ds, err := ToDataset(ctx, fullOrder(t))
	require.NoError(t, err)

	assert.Equal(t, "1.2.3.4.5", mustString(t, ds, dataset.TagStudyInstanceUID))
}

func TestToDatasetIdentifierSynthesis(t *testing.T) {
	ctx := context.Background()

	t.Run("synthesized when absent, stable across runs", func(t *testing.T) {
		first, err := ToDataset(ctx, parseMsg(t, mshSeg, pidSeg, obrSeg))
		require.NoError(t, err)
		second, err := ToDataset(ctx, parseMsg(t, mshSeg, pidSeg, obrSeg))
		require.NoError(t, err)

		study := mustString(t, first, dataset.TagStudyInstanceUID)
		sop := mustString(t, first, dataset.TagSOPInstanceUID)
		assert.True(t, strings.HasPrefix(study, "2.25."))
		assert.NotEqual(t, study, sop, "study and instance derive from distinct contexts")
		assert.Equal(t, study, mustString(t, second, dataset.TagStudyInstanceUID))
		assert.Equal(t, sop, mustString(t, second, dataset.TagSOPInstanceUID))
	})

	t.Run("different control ids give different identifiers", func(t *testing.T) {
		other := strings.Replace(mshSeg, "MSGID123", "MSGID124", 1)
		a, err := ToDataset(ctx, parseMsg(t, mshSeg, pidSeg))
		require.NoError(t, err)
		b, err := ToDataset(ctx, parseMsg(t, other, pidSeg))
		require.NoError(t, err)

		assert.NotEqual(t,
			mustString(t, a, dataset.TagStudyInstanceUID),
			mustString(t, b, dataset.TagStudyInstanceUID))
	})
}

func TestDedupID(t *testing.T) {
	t.Run("control id preferred", func(t *testing.T) {
		assert.Equal(t, "MSGID123", DedupID(fullOrder(t)))
	})

	t.Run("content hash when the control id is empty", func(t *testing.T) {
		noID := "MSH|^~\\&|RIS|MAIN|PACS|RAD|20240102030405||ORM^O01||P|2.3.1"
		msg := parseMsg(t, noID, pidSeg)
		id := DedupID(msg)
		assert.Len(t, id, 64, "sha-256 hex digest")
		assert.Equal(t, id, DedupID(msg))
	})
}
