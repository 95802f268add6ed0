package dataset

import (
	"context"

	"github.com/radbridge/radbridge/internal/ctxlog"
)

// Unbounded marks a value representation with no encoded length cap.
const Unbounded = -1

// maxLengthByVR fixes the per-VR character caps. These limits are a versioned
// contract with downstream consumers; changing them is a compatibility break.
var maxLengthByVR = map[string]int{
	"AE": 16,
	"AS": 4,
	"CS": 16,
	"DA": 8,
	"DS": 16,
	"DT": 26,
	"IS": 12,
	"LO": 64,
	"LT": 10240,
	"PN": 64,
	"SH": 16,
	"TM": 16,
	"UI": 64,
	"ST": 1024,
	"UT": Unbounded,
	"OB": Unbounded,
}

// MaxLength reports the cap for a VR. Unknown VRs report Unbounded; callers
// treat that as "do not truncate".
func MaxLength(vr string) int {
	if max, ok := maxLengthByVR[vr]; ok {
		return max
	}
	return Unbounded
}

// Truncate cuts value to the VR's cap. Overflow is a policy decision, not a
// failure: the value is cut and a warning logged so incomplete output can be
// diagnosed later.
func Truncate(ctx context.Context, vr, value string) string {
	max := MaxLength(vr)
	if max == Unbounded || len(value) <= max {
		return value
	}
	ctxlog.FromContext(ctx).Warn("value exceeds VR length limit, truncating",
		"vr", vr, "limit", max, "length", len(value))
	return value[:max]
}
