package constants

// DocStatus is the terminal outcome for one document within a batch.
type DocStatus string

// Stable values (these exact strings appear in logs and batch summaries).
const (
	DocStatusExtracted DocStatus = "EXTRACTED" // record accepted into results
	DocStatusNoData    DocStatus = "NO_DATA"   // every field resolved to a sentinel
	DocStatusOversized DocStatus = "OVERSIZED" // exceeded the size ceiling, skipped
	DocStatusRejected  DocStatus = "REJECTED"  // not admitted (quota exhausted)
	DocStatusFailed    DocStatus = "FAILED"    // acquisition error
)
