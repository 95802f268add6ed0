package dataset

import (
	"fmt"
	"strings"
)

// Tag addresses a single attribute as a (group, element) pair.
type Tag struct {
	Group   uint16
	Element uint16
}

// String renders the tag in the conventional "(gggg,eeee)" hex form.
func (t Tag) String() string {
	return fmt.Sprintf("(%04x,%04x)", t.Group, t.Element)
}

// ParseTag parses "gggg,eeee" with or without surrounding parentheses.
func ParseTag(s string) (Tag, error) {
	s = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(s), "("), ")")
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Tag{}, fmt.Errorf("malformed tag %q: want gggg,eeee", s)
	}
	var group, element uint16
	if _, err := fmt.Sscanf(strings.TrimSpace(parts[0]), "%04x", &group); err != nil {
		return Tag{}, fmt.Errorf("malformed tag group %q: %w", parts[0], err)
	}
	if _, err := fmt.Sscanf(strings.TrimSpace(parts[1]), "%04x", &element); err != nil {
		return Tag{}, fmt.Errorf("malformed tag element %q: %w", parts[1], err)
	}
	return Tag{Group: group, Element: element}, nil
}

// Tags used by the integration workflows. This is deliberately the subset the
// suite touches, not a full dictionary.
var (
	TagSpecificCharacterSet       = Tag{0x0008, 0x0005}
	TagSOPInstanceUID             = Tag{0x0008, 0x0018}
	TagContentDate                = Tag{0x0008, 0x0023}
	TagContentTime                = Tag{0x0008, 0x0033}
	TagAccessionNumber            = Tag{0x0008, 0x0050}
	TagModality                   = Tag{0x0008, 0x0060}
	TagReferringPhysicianName     = Tag{0x0008, 0x0090}
	TagCodeValue                  = Tag{0x0008, 0x0100}
	TagCodingSchemeDesignator     = Tag{0x0008, 0x0102}
	TagCodeMeaning                = Tag{0x0008, 0x0104}
	TagPatientName                = Tag{0x0010, 0x0010}
	TagPatientID                  = Tag{0x0010, 0x0020}
	TagPatientBirthDate           = Tag{0x0010, 0x0030}
	TagPatientSex                 = Tag{0x0010, 0x0040}
	TagStudyInstanceUID           = Tag{0x0020, 0x000d}
	TagRequestedProcedureDesc     = Tag{0x0032, 0x1060}
	TagRequestedProcedureCodeSeq  = Tag{0x0032, 0x1064}
	TagScheduledStationAETitle    = Tag{0x0040, 0x0001}
	TagScheduledStepStartDate     = Tag{0x0040, 0x0002}
	TagScheduledStepStartTime     = Tag{0x0040, 0x0003}
	TagScheduledStepID            = Tag{0x0040, 0x0009}
	TagRequestedProcedureID       = Tag{0x0040, 0x1001}
	TagPlacerOrderNumber          = Tag{0x0040, 0x2016}
	TagFillerOrderNumber          = Tag{0x0040, 0x2017}
	TagValueType                  = Tag{0x0040, 0xa040}
	TagConceptNameCodeSeq         = Tag{0x0040, 0xa043}
	TagObservationDateTime        = Tag{0x0040, 0xa032}
	TagTextValue                  = Tag{0x0040, 0xa160}
	TagMeasuredValueSeq           = Tag{0x0040, 0xa300}
	TagMeasurementUnitsCodeSeq    = Tag{0x0040, 0x08ea}
	TagNumericValue               = Tag{0x0040, 0xa30a}
	TagContentSeq                 = Tag{0x0040, 0xa730}
	TagPerformedProcedureStepDesc = Tag{0x0040, 0x0254}
)

// vrByTag records the value representation the suite writes each tag with.
var vrByTag = map[Tag]string{
	TagSpecificCharacterSet:       "CS",
	TagSOPInstanceUID:             "UI",
	TagContentDate:                "DA",
	TagContentTime:                "TM",
	TagAccessionNumber:            "SH",
	TagModality:                   "CS",
	TagReferringPhysicianName:     "PN",
	TagCodeValue:                  "SH",
	TagCodingSchemeDesignator:     "SH",
	TagCodeMeaning:                "LO",
	TagPatientName:                "PN",
	TagPatientID:                  "LO",
	TagPatientBirthDate:           "DA",
	TagPatientSex:                 "CS",
	TagStudyInstanceUID:           "UI",
	TagRequestedProcedureDesc:     "LO",
	TagRequestedProcedureCodeSeq:  "SQ",
	TagScheduledStationAETitle:    "AE",
	TagScheduledStepStartDate:     "DA",
	TagScheduledStepStartTime:     "TM",
	TagScheduledStepID:            "SH",
	TagRequestedProcedureID:       "SH",
	TagPlacerOrderNumber:          "LO",
	TagFillerOrderNumber:          "LO",
	TagValueType:                  "CS",
	TagConceptNameCodeSeq:         "SQ",
	TagObservationDateTime:        "DT",
	TagTextValue:                  "UT",
	TagMeasuredValueSeq:           "SQ",
	TagMeasurementUnitsCodeSeq:    "SQ",
	TagNumericValue:               "DS",
	TagContentSeq:                 "SQ",
	TagPerformedProcedureStepDesc: "LO",
}

// VRForTag reports the value representation the suite uses for a tag, or ""
// when the tag is outside the supported subset.
func VRForTag(t Tag) string {
	return vrByTag[t]
}
