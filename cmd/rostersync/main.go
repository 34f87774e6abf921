// Command rostersync synchronizes student roster data between the course
// management system and the exam platform. "fetch" pulls enrolled students
// into the local record store; "sync" pushes operator-approved records
// onward. Both passes are idempotent and safe to re-run.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/D-EdTech/lti-iib-credentials/internal/adapter/driven/csvview"
	"github.com/D-EdTech/lti-iib-credentials/internal/adapter/driven/examapi"
	"github.com/D-EdTech/lti-iib-credentials/internal/adapter/driven/jsonstore"
	"github.com/D-EdTech/lti-iib-credentials/internal/adapter/driven/roster"
	"github.com/D-EdTech/lti-iib-credentials/internal/application"
	"github.com/D-EdTech/lti-iib-credentials/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var storePath, viewPath string

	root := &cobra.Command{
		Use:           "rostersync",
		Short:         "Synchronize student rosters into the exam platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// One run id per invocation so a pass's log lines can be
			// correlated.
			slog.SetDefault(slog.Default().With("run_id", uuid.NewString()))
		},
	}

	root.PersistentFlags().StringVar(&storePath, "store", "", "record store path override")
	root.PersistentFlags().StringVar(&viewPath, "view", "", "tabular view path override")

	root.AddCommand(newFetchCmd(&storePath, &viewPath))
	root.AddCommand(newSyncCmd(&storePath, &viewPath))
	return root
}

// loadConfig applies CLI path overrides on top of the environment
// configuration. Flags never change core pass behavior, only file
// locations.
func loadConfig(storePath, viewPath string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if storePath != "" {
		cfg.StorePath = storePath
	}
	if viewPath != "" {
		cfg.ViewPath = viewPath
	}
	return cfg, nil
}

func newFetchCmd(storePath, viewPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <course-external-id>",
		Short: "Pull enrolled students from the roster source into the record store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*storePath, *viewPath)
			if err != nil {
				return err
			}

			rosterClient := roster.NewClient(
				cfg.RosterBaseURL, cfg.RosterClientID, cfg.RosterClientSecret,
				cfg.APIDelay, cfg.HTTPTimeout)
			store := jsonstore.New(cfg.StorePath)
			view := csvview.New(cfg.ViewPath)

			svc := application.NewFetchService(rosterClient, store, view)
			report, err := svc.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"fetch complete: %d students found, %d records merged, %d detail failures\n",
				report.UsersFound, report.RecordsMerged, report.DetailFailures)
			return nil
		},
	}
}

func newSyncCmd(storePath, viewPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push approved records from the tabular view to the exam platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*storePath, *viewPath)
			if err != nil {
				return err
			}

			examClient := examapi.NewClient(
				cfg.ExamBaseURL, cfg.ExamClientID, cfg.ExamAPIKey,
				cfg.ExamLTIDeploymentID, cfg.APIDelay, cfg.HTTPTimeout)
			store := jsonstore.New(cfg.StorePath)
			view := csvview.New(cfg.ViewPath)

			svc := application.NewSyncService(examClient, store, view)
			report, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"sync complete: %d attempted, %d succeeded, %d failed, %d skipped\n",
				report.Attempted, report.Succeeded, report.Failed, report.Skipped)
			return nil
		},
	}
}
