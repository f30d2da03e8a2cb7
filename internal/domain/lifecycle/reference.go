package lifecycle

import (
	"fmt"
	"time"
)

// Reference prefixes
const (
	AuctionReferencePrefix = "AUC"
	BidReferencePrefix     = "BID"
)

// ReferencePeriod returns the YYYYMM bucket a reference counter is keyed by
func ReferencePeriod(t time.Time) string {
	return t.UTC().Format("200601")
}

// FormatReference renders PREFIX-YYYYMM-NNNN. Sequences past 9999 simply grow wider.
func FormatReference(prefix, period string, sequence int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, period, sequence)
}
