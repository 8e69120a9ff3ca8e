package batch

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/taskcores/checker"
	"github.com/mensylisir/taskcores/runtime"
)

// Dispatcher partitions a work list into bounded batches and hands each
// one to the external checker. Dispatch is fire-and-acknowledge: the
// checker's real results arrive later through Accumulator.OnBatchResult.
type Dispatcher struct {
	checker checker.Checker
}

// NewDispatcher creates a dispatcher over the given checker.
func NewDispatcher(chk checker.Checker) *Dispatcher {
	return &Dispatcher{checker: chk}
}

// TriggerCheck splits items into consecutive chunks of at most batchSize
// and submits each chunk to the checker, correlated to the invocation by
// task name, job id and batch index. It returns the number of batches
// produced; on a submission failure it returns the count accepted so far
// together with the error.
func (d *Dispatcher) TriggerCheck(ctx context.Context, items []Item, batchSize int, taskName string, rt runtime.Runtime, log *logrus.Entry) (int, error) {
	if batchSize < 1 {
		return 0, errors.Errorf("batch size must be positive, got %d", batchSize)
	}

	batches := 0
	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}
		chunk := items[start:end]

		req := checker.BatchRequest{
			CorrelationID: fmt.Sprintf("%s-%s-%d", taskName, rt.JobID(), batches),
			InvocationID:  rt.JobID(),
			BatchID:       uuid.NewString(),
			Items:         make([]checker.CheckItem, 0, len(chunk)),
		}
		for _, it := range chunk {
			req.Items = append(req.Items, checker.CheckItem{
				ID:         it.ID,
				Attributes: it.Attributes,
			})
		}

		if err := d.checker.CheckBulk(ctx, req); err != nil {
			return batches, errors.Wrapf(err, "failed to dispatch batch %d of invocation %s", batches, rt.JobID())
		}
		batches++
		log.Debugf("Dispatched batch %s (%d items) for invocation %s.", req.BatchID, len(chunk), rt.JobID())
	}

	log.Infof("Dispatched %d items in %d batches for invocation %s.", len(items), batches, rt.JobID())
	return batches, nil
}
