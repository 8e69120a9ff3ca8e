package bulkcheck

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/taskcores/batch"
	"github.com/mensylisir/taskcores/checker"
	"github.com/mensylisir/taskcores/common"
	"github.com/mensylisir/taskcores/database"
	"github.com/mensylisir/taskcores/outcome"
	"github.com/mensylisir/taskcores/rule"
	"github.com/mensylisir/taskcores/runtime"
	"github.com/mensylisir/taskcores/status"
	"github.com/mensylisir/taskcores/step"
	"github.com/mensylisir/taskcores/task"
)

// TaskName is the registry name of the bulk check task.
const TaskName = "bulk-check"

// Required item fields; an item missing any of them is reported as
// insufficient information and never dispatched.
var requiredFields = []string{"name", "address", "reference"}

const selectCandidates = "SELECT id, name, address, reference, status FROM check_item WHERE status <> '" +
	common.ItemStatusChecked + "'"

// Config describes one bulk check task instance.
type Config struct {
	Database  database.Config
	BatchSize int
}

// New assembles the bulk check task: load candidate items, filter out the
// ineligible ones, record the invocation snapshot, and fan the rest out to
// the external checker in bounded batches. The task returns an in-progress
// Outcome immediately; completion is decided later by the batch
// accumulator as partial results arrive.
func New(cfg Config, chk checker.Checker, items status.ItemStatus, store status.Store) *task.LinearTask {
	dispatch := &dispatchStep{
		cfg:        cfg,
		dispatcher: batch.NewDispatcher(chk),
		filter:     batch.NewFilter(items, requiredFields...),
		store:      store,
	}

	t := task.NewLinearTask(TaskName,
		"Dispatches eligible items to the external checker in bounded batches",
		step.NewSupplier("dispatch", dispatch))
	t.AddRule(rule.RequireJobID())
	t.AddRule(rule.RequireCorrelationID())
	return t
}

type dispatchStep struct {
	cfg        Config
	dispatcher *batch.Dispatcher
	filter     *batch.Filter
	store      status.Store
}

func (s *dispatchStep) Name() string {
	return "dispatch-checks"
}

func (s *dispatchStep) Description() string {
	return "loads candidate items, filters eligibility, and dispatches check batches"
}

func (s *dispatchStep) Execute(rt runtime.Runtime, log *logrus.Entry) (*outcome.Outcome, error) {
	if s.cfg.BatchSize < 1 {
		return nil, outcome.MarkInternal(
			errors.Errorf("batch size must be positive, got %d", s.cfg.BatchSize))
	}
	ctx := context.Background()

	var candidates []batch.Item
	err := database.Execute(ctx, s.cfg.Database, func(db *database.DB) error {
		rows, err := database.Query(ctx, db, decodeItem, selectCandidates)
		candidates = rows
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Infof("Loaded %d candidate items.", len(candidates))

	eligible := s.filter.Apply(candidates, log)
	if len(eligible) == 0 {
		return outcome.NewSuccess("No eligible items to check"), nil
	}

	batches := (len(eligible) + s.cfg.BatchSize - 1) / s.cfg.BatchSize
	out := outcome.NewInProgress(
		fmt.Sprintf("Dispatched %d items to the checker in %d batches", len(eligible), batches))
	out.AddMetadata(common.MetaItemsRequested, strconv.Itoa(len(eligible)))
	out.AddMetadata(common.MetaBatchesRequested, strconv.Itoa(batches))
	out.AddMetadata(common.MetaBatchesResponded, "0")

	// The snapshot must exist before the first callback can arrive, so it
	// is persisted ahead of the dispatch itself.
	if err := s.store.Save(rt.JobID(), out); err != nil {
		return nil, outcome.MarkInternal(
			errors.Wrapf(err, "failed to record dispatch snapshot for invocation %s", rt.JobID()))
	}

	if _, err := s.dispatcher.TriggerCheck(ctx, eligible, s.cfg.BatchSize, TaskName, rt, log); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeItem(rows *sql.Rows) (batch.Item, error) {
	var id, name, address, reference, itemStatus string
	if err := rows.Scan(&id, &name, &address, &reference, &itemStatus); err != nil {
		return batch.Item{}, err
	}
	return batch.Item{
		ID:     id,
		Status: itemStatus,
		Attributes: map[string]string{
			"name":      name,
			"address":   address,
			"reference": reference,
		},
	}, nil
}
