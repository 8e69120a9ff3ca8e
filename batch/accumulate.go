package batch

import (
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/taskcores/common"
	"github.com/mensylisir/taskcores/outcome"
	"github.com/mensylisir/taskcores/status"
)

// Messages written to the terminal snapshot once every dispatched batch
// has reported.
const (
	MsgAllProcessed = "All batches have successfully processed"
	MsgSomeFailed   = "All batches have processed but some checks did not process"
)

// combinableKeys are summed across partial results; every other metadata
// key is taken from the latest reporter outright.
var combinableKeys = []string{
	common.MetaItemsRequested,
	common.MetaItemsInBatch,
	common.MetaNullResultCount,
	common.MetaCheckedCount,
	common.MetaCheckFailedCount,
	common.MetaRetryExceededCount,
	common.MetaInsufficientInfoCount,
}

// errorCategoryKeys are the per-item outcome categories that demote the
// terminal status from success to partial success when positive.
var errorCategoryKeys = []string{
	common.MetaCheckFailedCount,
	common.MetaRetryExceededCount,
}

// Accumulator folds independently-arriving partial batch results into one
// durable running total per invocation. The load/combine/persist cycle is
// serialized per invocation id, so callbacks racing within this process
// never compute from a stale base; callers spanning processes must
// serialize upstream.
type Accumulator struct {
	store status.Store
	locks sync.Map // invocation id -> *sync.Mutex
}

// NewAccumulator creates an accumulator over the given status store.
func NewAccumulator(store status.Store) *Accumulator {
	return &Accumulator{store: store}
}

// OnBatchResult merges a batch's partial result into the invocation's
// stored running total, marks the total terminal once every dispatched
// batch has reported, and persists the combined snapshot. A nil partial is
// a no-op. A callback for an invocation the store has never seen is a
// bookkeeping bug and surfaces as an error; the invocation must have been
// recorded at dispatch time.
func (a *Accumulator) OnBatchResult(partial *outcome.Outcome, invocationID string, log *logrus.Entry) error {
	if partial == nil {
		return nil
	}

	mu := a.lock(invocationID)
	mu.Lock()
	defer mu.Unlock()

	prior, found, err := a.store.GetLatest(invocationID)
	if err != nil {
		return errors.Wrapf(err, "failed to load snapshot for invocation %s", invocationID)
	}
	if !found {
		return errors.Errorf("batch callback references unknown invocation %s: no snapshot was recorded at dispatch time", invocationID)
	}

	old := prior.Metadata()
	if terminal(old) {
		log.Warnf("Ignoring late batch callback for invocation %s: all %s batches already responded.",
			invocationID, old[common.MetaBatchesRequested])
		return nil
	}

	incoming := partial.Metadata()

	// Base: everything from the stored snapshot survives unless overwritten.
	combined := make(map[string]string, len(old)+len(incoming))
	for k, v := range old {
		combined[k] = v
	}
	for k, v := range incoming {
		combined[k] = v
	}
	for _, k := range combinableKeys {
		oldVal, oldOK := old[k]
		newVal, newOK := incoming[k]
		combined[k] = combineCount(oldVal, oldOK, newVal, newOK)
	}

	responded := parseCount(old[common.MetaBatchesResponded]) + 1
	combined[common.MetaBatchesResponded] = strconv.Itoa(responded)

	st := partial.Status()
	msg := partial.Message()
	requested := parseCount(combined[common.MetaBatchesRequested])
	if requested > 0 && responded >= requested {
		st = outcome.StatusSuccess
		msg = MsgAllProcessed
		for _, k := range errorCategoryKeys {
			if parseCount(combined[k]) > 0 {
				st = outcome.StatusPartialSuccess
				msg = MsgSomeFailed
				break
			}
		}
		log.Infof("Invocation %s is complete: %d/%d batches responded, final status %s.",
			invocationID, responded, requested, st)
	} else {
		log.Infof("Invocation %s progressed: %d/%d batches responded.", invocationID, responded, requested)
	}

	snapshot := outcome.NewWithCause(st, msg, partial.Cause())
	for k, v := range combined {
		snapshot.AddMetadata(k, v)
	}

	if err := a.store.Save(invocationID, snapshot); err != nil {
		return errors.Wrapf(err, "failed to persist snapshot for invocation %s", invocationID)
	}
	return nil
}

// Report persists one invocation's final task Outcome under the same
// per-invocation lock OnBatchResult holds, so a report racing a batch
// callback can never clobber the folded running total. A stored snapshot
// whose responded count has already progressed past the reported one wins
// and the report is dropped.
func (a *Accumulator) Report(invocationID string, out *outcome.Outcome, log *logrus.Entry) error {
	if out == nil {
		return nil
	}

	mu := a.lock(invocationID)
	mu.Lock()
	defer mu.Unlock()

	prior, found, err := a.store.GetLatest(invocationID)
	if err != nil {
		return errors.Wrapf(err, "failed to load snapshot for invocation %s", invocationID)
	}
	if found {
		stored := parseCount(prior.Metadata()[common.MetaBatchesResponded])
		reported := parseCount(out.Metadata()[common.MetaBatchesResponded])
		if stored > reported {
			log.Infof("Keeping accumulated snapshot for invocation %s: %d batches already responded.",
				invocationID, stored)
			return nil
		}
	}

	if err := a.store.Save(invocationID, out); err != nil {
		return errors.Wrapf(err, "failed to persist snapshot for invocation %s", invocationID)
	}
	return nil
}

func (a *Accumulator) lock(invocationID string) *sync.Mutex {
	v, _ := a.locks.LoadOrStore(invocationID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// terminal reports whether the stored snapshot already covers every
// dispatched batch. A terminal total must not be mutated by a stray late
// callback.
func terminal(meta map[string]string) bool {
	requested := parseCount(meta[common.MetaBatchesRequested])
	responded := parseCount(meta[common.MetaBatchesResponded])
	return requested > 0 && responded >= requested
}

// combineCount merges one running count with a newly reported value.
// Two numeric values sum; a single numeric value wins over an absent or
// non-numeric counterpart; two absent values read as "0"; two present but
// non-numeric values keep the newest.
func combineCount(oldVal string, oldOK bool, newVal string, newOK bool) string {
	oldN, oldErr := strconv.Atoi(oldVal)
	newN, newErr := strconv.Atoi(newVal)
	oldNumeric := oldOK && oldErr == nil
	newNumeric := newOK && newErr == nil

	switch {
	case oldNumeric && newNumeric:
		return strconv.Itoa(oldN + newN)
	case newNumeric:
		return newVal
	case oldNumeric:
		return oldVal
	case !oldOK && !newOK:
		return "0"
	case newOK:
		return newVal
	default:
		return oldVal
	}
}

func parseCount(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
