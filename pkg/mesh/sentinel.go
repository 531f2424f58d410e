package mesh

import (
	"strings"

	"github.com/google/uuid"
)

// Sentinel kinds. A sentinel tracking id records why a submission produced
// no real provider id; clients see it verbatim in the models list.
const (
	SentinelPreview   = "preview"   // preview task failed or expired
	SentinelRefine    = "refine"    // refine submission failed
	SentinelNoID      = "no-id"     // 2xx response without a resource id
	SentinelLocal     = "local"     // provider rejected the request (non-2xx)
	SentinelException = "exception" // transport failure or missing key
)

const sentinelPrefix = "error-"

// Sentinel builds a sentinel tracking id of the form error-<kind>-<uuid>.
func Sentinel(kind string) string {
	return sentinelPrefix + kind + "-" + uuid.NewString()
}

// IsSentinel reports whether trackingID encodes a failure rather than a
// provider resource id.
func IsSentinel(trackingID string) bool {
	return strings.HasPrefix(trackingID, sentinelPrefix)
}
