package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mensylisir/taskcores/checker"
	"github.com/mensylisir/taskcores/config"
	"github.com/mensylisir/taskcores/database"
	"github.com/mensylisir/taskcores/logger"
	"github.com/mensylisir/taskcores/runtime"
	"github.com/mensylisir/taskcores/status"
	"github.com/mensylisir/taskcores/task"
	"github.com/mensylisir/taskcores/task/bulkcheck"
	"github.com/mensylisir/taskcores/task/report"
	"github.com/mensylisir/taskcores/transfer"
	"github.com/mensylisir/taskcores/trigger"
)

var (
	configPath string
	logLevel   string
	logDir     string
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:           "taskcores",
		Short:         "Executes named tasks with validation, step composition and batch accumulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
			return logger.Init(logDir, verbose, level)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the yaml configuration file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logDir, "log-dir", "", "Directory for rotated log files (console output when empty)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging")

	root.AddCommand(newTasksCmd(), newRunCmd(), newMigrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.NewLoader(configPath).Load()
}

// buildRegistry constructs every task and its collaborators from the
// configuration. The registry is built once here and passed on by
// reference; nothing resolves tasks through package state.
func buildRegistry(cfg *config.Config) (*task.Registry, status.Store, error) {
	log := logger.Entry()

	db, err := database.Open(context.Background(), cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	store := status.NewSQLStore(db)
	items := status.NewSQLItemStatus(db, log)
	chk := checker.NewHTTPChecker(cfg.Checker.Endpoint, cfg.Checker.Timeout)
	uploader := transfer.NewUploader(cfg.Transfer, log)

	registry := task.NewRegistry()
	if err := registry.Register(bulkcheck.New(bulkcheck.Config{
		Database:  cfg.Database,
		BatchSize: cfg.BatchSize,
	}, chk, items, store)); err != nil {
		return nil, nil, err
	}
	if err := registry.Register(report.New(report.Config{
		Database:         cfg.Database,
		Mail:             cfg.Mail.Config,
		Recipients:       cfg.Mail.Recipients,
		UploadAttempts:   cfg.UploadAttempts,
		UploadRetryDelay: cfg.UploadRetryDelay,
	}, uploader, log)); err != nil {
		return nil, nil, err
	}
	return registry, store, nil
}

func newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List the registered task names",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			registry, _, err := buildRegistry(cfg)
			if err != nil {
				return err
			}
			for _, name := range registry.Names() {
				t, _ := registry.Get(name)
				fmt.Printf("%-16s %s\n", name, t.Description())
			}
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	var jobID, correlationID string
	var params []string

	cmd := &cobra.Command{
		Use:   "run <task>",
		Short: "Trigger a task by name and wait for its outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			registry, store, err := buildRegistry(cfg)
			if err != nil {
				return err
			}

			rt := runtime.NewExecutionRuntime(jobID, correlationID)
			rt.SetWorkDir(cfg.WorkDir)
			rt.SetVerbose(verbose)
			for _, p := range params {
				key, value, found := strings.Cut(p, "=")
				if !found {
					return fmt.Errorf("invalid parameter %q, expected key=value", p)
				}
				rt.SetParameter(key, value)
			}

			trg := trigger.New(registry, store, logger.Entry())
			if err := trg.Fire(args[0], rt); err != nil {
				return err
			}
			trg.Wait()

			out, found, err := store.GetLatest(rt.JobID())
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no outcome recorded for invocation %s", rt.JobID())
			}
			fmt.Printf("Invocation %s finished: %s\n", rt.JobID(), out.Status())
			if out.Message() != "" {
				fmt.Println(out.Message())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&jobID, "job-id", "", "Invocation identifier (generated when empty)")
	cmd.Flags().StringVar(&correlationID, "correlation-id", "", "Correlation identifier (generated when empty)")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Invocation parameter as key=value (repeatable)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var migrationsPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending status-store schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return database.Migrate(cfg.Database, migrationsPath)
		},
	}
	cmd.Flags().StringVar(&migrationsPath, "path", "file://./migrations", "Migration source path")
	return cmd
}
