package common

import "io/fs"

const AppName = "taskcores"

// Logger field names, ordered from coarsest to finest scope.
const (
	LogFieldTaskName     = "Task"
	LogFieldSupplierName = "Supplier"
	LogFieldStepName     = "Step"
	LogFieldJobID        = "Job"
	LogFieldCorrelation  = "Correlation"
)

// Metadata keys shared between the dispatching step and the batch
// accumulator. The "combinable" subset is summed across partial results;
// everything else is latest-writer-wins.
const (
	MetaItemsRequested   = "itemsRequested"
	MetaItemsInBatch     = "itemsInBatch"
	MetaBatchesRequested = "batchesRequested"
	MetaBatchesResponded = "batchesResponded"
	MetaNullResultCount  = "nullResultCount"

	MetaCheckedCount          = "checkedCount"
	MetaCheckFailedCount      = "checkFailedCount"
	MetaRetryExceededCount    = "retryExceededCount"
	MetaInsufficientInfoCount = "insufficientInfoCount"
)

// Per-item status vocabulary pushed through the item-status collaborator.
const (
	ItemStatusNotChecked       = "NOT_CHECKED"
	ItemStatusInProgress       = "IN_PROGRESS"
	ItemStatusChecked          = "CHECKED"
	ItemStatusInsufficientInfo = "INSUFFICIENT_INFORMATION"
)

const (
	// FileMode0755 represents rwxr-xr-x
	FileMode0755 fs.FileMode = 0755
	// FileMode0644 represents rw-r--r--
	FileMode0644 fs.FileMode = 0644
)
