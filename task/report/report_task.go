package report

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/taskcores/common"
	"github.com/mensylisir/taskcores/database"
	"github.com/mensylisir/taskcores/mail"
	"github.com/mensylisir/taskcores/outcome"
	"github.com/mensylisir/taskcores/rule"
	"github.com/mensylisir/taskcores/runtime"
	"github.com/mensylisir/taskcores/step"
	"github.com/mensylisir/taskcores/task"
	"github.com/mensylisir/taskcores/transfer"
)

// TaskName is the registry name of the check report task.
const TaskName = "check-report"

// DestClass is the remote destination class report files are uploaded to.
const DestClass = "reports"

// MetaReportFile carries the uploaded report's local path in the task
// Outcome.
const MetaReportFile = "reportFile"

// Config describes one report task instance.
type Config struct {
	Database         database.Config
	Mail             mail.Config
	Recipients       []string
	UploadAttempts   int
	UploadRetryDelay time.Duration
}

// New assembles the check report task. The first supplier gathers item and
// invocation summaries concurrently; the second exports the item list as
// CSV and uploads it, then mails the merged result to the configured
// recipients from its post-run hook.
func New(cfg Config, uploader *transfer.Uploader, log *logrus.Entry) *task.ParallelTask {
	collect := step.NewSupplier("collect",
		&summarizeStep{
			cfg:       cfg,
			name:      "summarize-items",
			desc:      "counts checked items per status",
			query:     "SELECT status, COUNT(*) FROM check_item GROUP BY status",
			keyPrefix: "items.",
		},
		&summarizeStep{
			cfg:       cfg,
			name:      "summarize-invocations",
			desc:      "counts recorded invocations per status",
			query:     "SELECT status, COUNT(*) FROM task_status GROUP BY status",
			keyPrefix: "invocations.",
		},
	)

	publish := step.NewSupplier("publish", &exportStep{cfg: cfg, uploader: uploader})
	publish.SetPostHook(func(merged *outcome.Outcome) {
		if merged.Status() != outcome.StatusSuccess {
			log.Warnf("Report publishing ended with status %s, skipping notification mail.", merged.Status())
			return
		}
		body := fmt.Sprintf("The check report was published.\n\n%s\n", merged.Message())
		if err := mail.Send(cfg.Mail, "Check report published", body, cfg.Recipients...); err != nil {
			log.Errorf("Failed to send report notification: %v", err)
		}
	})

	t := task.NewParallelTask(TaskName,
		"Exports the current check results as CSV and notifies recipients",
		collect, publish)
	t.AddRule(rule.RequireJobID())
	return t
}

// summarizeStep runs one grouped count query and records each group as
// metadata under keyPrefix.
type summarizeStep struct {
	cfg       Config
	name      string
	desc      string
	query     string
	keyPrefix string
}

func (s *summarizeStep) Name() string        { return s.name }
func (s *summarizeStep) Description() string { return s.desc }

func (s *summarizeStep) Execute(rt runtime.Runtime, log *logrus.Entry) (*outcome.Outcome, error) {
	ctx := context.Background()

	type group struct {
		status string
		count  int
	}
	var groups []group
	err := database.Execute(ctx, s.cfg.Database, func(db *database.DB) error {
		rows, err := database.Query(ctx, db, func(r *sql.Rows) (group, error) {
			var g group
			err := r.Scan(&g.status, &g.count)
			return g, err
		}, s.query)
		groups = rows
		return err
	})
	if err != nil {
		return nil, err
	}

	out := outcome.NewSuccess("")
	total := 0
	for _, g := range groups {
		out.AddMetadata(s.keyPrefix+g.status, fmt.Sprintf("%d", g.count))
		total += g.count
	}
	log.Infof("Summarized %d rows across %d statuses.", total, len(groups))
	return out, nil
}

// exportStep writes the current item list to a CSV file in the invocation
// work dir and uploads it with the configured retry policy.
type exportStep struct {
	cfg      Config
	uploader *transfer.Uploader
}

func (s *exportStep) Name() string { return "export-report" }

func (s *exportStep) Description() string {
	return "exports check items as CSV and uploads the file"
}

type itemRow struct {
	id, name, reference, status string
}

func (s *exportStep) Execute(rt runtime.Runtime, log *logrus.Entry) (*outcome.Outcome, error) {
	ctx := context.Background()

	var items []itemRow
	err := database.Execute(ctx, s.cfg.Database, func(db *database.DB) error {
		rows, err := database.Query(ctx, db, func(r *sql.Rows) (itemRow, error) {
			var it itemRow
			err := r.Scan(&it.id, &it.name, &it.reference, &it.status)
			return it, err
		}, "SELECT id, name, reference, status FROM check_item ORDER BY id")
		items = rows
		return err
	})
	if err != nil {
		return nil, err
	}

	path, err := s.writeCSV(rt, items)
	if err != nil {
		return nil, err
	}
	log.Infof("Wrote %d items to %s.", len(items), path)

	if !s.uploader.UploadWithRetry(DestClass, path, s.cfg.UploadAttempts, s.cfg.UploadRetryDelay) {
		return outcome.NewFailure(
			fmt.Sprintf("report upload failed after %d attempts", s.cfg.UploadAttempts), nil), nil
	}

	out := outcome.NewSuccess(fmt.Sprintf("Report with %d items uploaded", len(items)))
	out.AddMetadata(MetaReportFile, path)
	return out, nil
}

func (s *exportStep) writeCSV(rt runtime.Runtime, items []itemRow) (string, error) {
	dir := rt.WorkDir()
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, common.FileMode0755); err != nil {
		return "", errors.Wrapf(err, "failed to create work dir %s", dir)
	}
	path := filepath.Join(dir, fmt.Sprintf("check-report-%s.csv", rt.JobID()))

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create report file %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "name", "reference", "status"}); err != nil {
		return "", errors.Wrap(err, "failed to write report header")
	}
	for _, it := range items {
		if err := w.Write([]string{it.id, it.name, it.reference, it.status}); err != nil {
			return "", errors.Wrap(err, "failed to write report row")
		}
	}
	w.Flush()
	return path, w.Error()
}
