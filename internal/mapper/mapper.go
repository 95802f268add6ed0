// Package mapper implements the reverse direction of the bridge: building a
// well-formed, length-constrained dataset from parsed flat-text segments.
//
// The mapping is a fixed table from (segment type, field, component) to a
// target tag plus an optional composition rule. The table, like the VR
// truncation caps it writes through, is a versioned contract with the
// services that consume the produced objects.
package mapper

import (
	"context"
	"fmt"

	"github.com/radbridge/radbridge/internal/ctxlog"
	"github.com/radbridge/radbridge/internal/dataset"
	"github.com/radbridge/radbridge/internal/hl7"
	"github.com/radbridge/radbridge/internal/uid"
)

// rule adjusts a raw field value before it is written.
type rule int

const (
	ruleNone rule = iota
	// rulePersonName recomposes a plain name field (family, given, middle,
	// suffix, prefix on the wire) into the target component order with
	// prefix before suffix.
	rulePersonName
	// ruleIDPersonName recomposes an extended id+name field: the leading id
	// component is dropped and prefix/suffix land in target order.
	ruleIDPersonName
	// ruleTimestampDate keeps the date part (first 8 characters) of a
	// timestamp.
	ruleTimestampDate
	// ruleTimestampTime keeps the time part (after the first 8 characters).
	ruleTimestampTime
)

// fieldMapping binds one source coordinate to one target tag. Component 0
// means the whole field. An empty VR defers to the tag dictionary.
type fieldMapping struct {
	segment   string
	field     int
	component int
	tag       dataset.Tag
	rule      rule
}

// mappingTable is the fixed translation table for order messages. Order
// matters only for readability; each entry writes a distinct tag.
var mappingTable = []fieldMapping{
	{segment: "PID", field: 3, component: 1, tag: dataset.TagPatientID},
	{segment: "PID", field: 5, tag: dataset.TagPatientName, rule: rulePersonName},
	{segment: "PID", field: 7, component: 1, tag: dataset.TagPatientBirthDate, rule: ruleTimestampDate},
	{segment: "PID", field: 8, component: 1, tag: dataset.TagPatientSex},
	{segment: "ORC", field: 2, component: 1, tag: dataset.TagPlacerOrderNumber},
	{segment: "ORC", field: 3, component: 1, tag: dataset.TagFillerOrderNumber},
	{segment: "OBR", field: 4, component: 2, tag: dataset.TagRequestedProcedureDesc},
	{segment: "OBR", field: 7, component: 1, tag: dataset.TagScheduledStepStartDate, rule: ruleTimestampDate},
	{segment: "OBR", field: 7, component: 1, tag: dataset.TagScheduledStepStartTime, rule: ruleTimestampTime},
	{segment: "OBR", field: 16, tag: dataset.TagReferringPhysicianName, rule: ruleIDPersonName},
	{segment: "OBR", field: 18, component: 1, tag: dataset.TagAccessionNumber},
	{segment: "OBR", field: 20, component: 1, tag: dataset.TagScheduledStationAETitle},
	{segment: "OBR", field: 24, component: 1, tag: dataset.TagModality},
	{segment: "ZDS", field: 1, component: 1, tag: dataset.TagStudyInstanceUID},
}

// ToDataset maps a parsed message onto a fresh dataset. A message without
// the header and demographics segments cannot be mapped at all; that is the
// engine's only hard failure and surfaces as a nil dataset with an error.
// Everything else degrades field by field.
func ToDataset(ctx context.Context, msg *hl7.Message) (*dataset.Dataset, error) {
	log := ctxlog.FromContext(ctx)
	if msg == nil {
		return nil, fmt.Errorf("nil message")
	}
	if msg.Segment("MSH") == nil {
		log.Warn("message rejected: MSH segment missing")
		return nil, fmt.Errorf("mandatory MSH segment missing")
	}
	if msg.Segment("PID") == nil {
		log.Warn("message rejected: PID segment missing")
		return nil, fmt.Errorf("mandatory PID segment missing")
	}

	ds := dataset.New()
	for _, m := range mappingTable {
		seg := msg.Segment(m.segment)
		if seg == nil {
			continue
		}
		value := seg.Field(m.field)
		if m.component > 0 && m.rule == ruleNone {
			value = hl7.ComponentOf(value, m.component)
		}
		value = applyRule(m.rule, value)
		if value == "" {
			continue
		}
		ds.PutString(ctx, m.tag, "", value)
	}

	applyProcedureCode(ctx, ds, msg)
	applyFallbacks(ctx, ds, msg)
	synthesizeIdentifiers(ctx, ds, msg)
	return ds, nil
}

// applyRule rewrites a raw field value per its composition rule.
func applyRule(r rule, value string) string {
	switch r {
	case rulePersonName:
		return composeName(value, false)
	case ruleIDPersonName:
		return composeName(value, true)
	case ruleTimestampDate:
		if len(value) > 8 {
			return value[:8]
		}
		return value
	case ruleTimestampTime:
		if len(value) > 8 {
			return value[8:]
		}
		return ""
	}
	return value
}

// applyProcedureCode builds the requested procedure code sequence from the
// universal service identifier triplet when one is present.
func applyProcedureCode(ctx context.Context, ds *dataset.Dataset, msg *hl7.Message) {
	obr := msg.Segment("OBR")
	if obr == nil {
		return
	}
	code := obr.Component(4, 1)
	if code == "" {
		return
	}
	item := ds.AppendItem(dataset.TagRequestedProcedureCodeSeq)
	item.PutString(ctx, dataset.TagCodeValue, "", code)
	if meaning := obr.Component(4, 2); meaning != "" {
		item.PutString(ctx, dataset.TagCodeMeaning, "", meaning)
	}
	if scheme := obr.Component(4, 3); scheme != "" {
		item.PutString(ctx, dataset.TagCodingSchemeDesignator, "", scheme)
	}
}

// applyFallbacks fills order identifiers and scheduling from alternate
// source fields when the primary source was empty.
func applyFallbacks(ctx context.Context, ds *dataset.Dataset, msg *hl7.Message) {
	if _, ok := ds.String(dataset.TagScheduledStepStartDate); !ok {
		if orc := msg.Segment("ORC"); orc != nil {
			// Quantity/timing start (ORC-7.4) when OBR carried no timestamp.
			if ts := orc.Component(7, 4); ts != "" {
				ds.PutString(ctx, dataset.TagScheduledStepStartDate, "", applyRule(ruleTimestampDate, ts))
				if t := applyRule(ruleTimestampTime, ts); t != "" {
					ds.PutString(ctx, dataset.TagScheduledStepStartTime, "", t)
				}
			}
		}
	}

	obr := msg.Segment("OBR")
	if obr == nil {
		return
	}
	if _, ok := ds.String(dataset.TagPlacerOrderNumber); !ok {
		if v := obr.Component(2, 1); v != "" {
			ds.PutString(ctx, dataset.TagPlacerOrderNumber, "", v)
		}
	}
	if _, ok := ds.String(dataset.TagFillerOrderNumber); !ok {
		if v := obr.Component(3, 1); v != "" {
			ds.PutString(ctx, dataset.TagFillerOrderNumber, "", v)
		}
	}
	if _, ok := ds.String(dataset.TagAccessionNumber); !ok {
		if v, _ := ds.String(dataset.TagFillerOrderNumber); v != "" {
			ctxlog.FromContext(ctx).Debug("accession absent, using filler order number")
			ds.PutString(ctx, dataset.TagAccessionNumber, "", v)
		}
	}
}

// synthesizeIdentifiers derives any identifier the dataset needs that the
// message did not carry. Derivation is a pure function of message content,
// so reprocessing identical input reconstructs identical objects.
func synthesizeIdentifiers(ctx context.Context, ds *dataset.Dataset, msg *hl7.Message) {
	stable := DedupID(msg)
	if _, ok := ds.String(dataset.TagStudyInstanceUID); !ok {
		ctxlog.FromContext(ctx).Debug("synthesizing study instance uid")
		ds.PutString(ctx, dataset.TagStudyInstanceUID, "", uid.Derive(stable, "study"))
	}
	if _, ok := ds.String(dataset.TagSOPInstanceUID); !ok {
		ds.PutString(ctx, dataset.TagSOPInstanceUID, "", uid.Derive(stable, "instance"))
	}
}

// DedupID is the unit's deduplication identifier: the human-readable message
// control id when present, else the content hash of canonical message text.
// The delivery tier keys its cache and retry state on this value.
func DedupID(msg *hl7.Message) string {
	if id := msg.ControlID(); id != "" {
		return id
	}
	return uid.ContentHash(msg.Encode())
}
