package main

import (
	"encoding/json"
	"fmt"
	"time"

	"datasense-be/internal/config"
	"datasense-be/internal/pkg/logger"
	"datasense-be/internal/repository/unitofwork"
	"datasense-be/internal/service"
	"datasense-be/pkg/database"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// withTranscripts opens the vector store for one command and closes it after.
func withTranscripts(fn func(svc service.ITranscriptService) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer database.Close(db)

	return fn(service.NewTranscriptService(unitofwork.NewRepositoryFactory(db), sysLogger))
}

func newStatsCmd() *cobra.Command {
	var (
		partner string
		since   string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count ingested transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var sinceTime time.Time
			if since != "" {
				t, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("--since must be YYYY-MM-DD: %w", err)
				}
				sinceTime = t
			}

			return withTranscripts(func(svc service.ITranscriptService) error {
				stats, err := svc.Stats(cmd.Context(), partner, sinceTime)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				color.New(color.FgCyan).Fprintf(out, "Transcripts: %d\n", stats.Total)
				color.New(color.FgGreen).Fprintf(out, "Embedded:    %d\n", stats.Embedded)
				if missing := stats.Total - stats.Embedded; missing > 0 {
					color.New(color.FgYellow).Fprintf(out, "Missing:     %d (re-run ingest csv)\n", missing)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&partner, "partner", "", "only count this partner")
	cmd.Flags().StringVar(&since, "since", "", "only count transcripts created on or after YYYY-MM-DD")
	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one transcript as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTranscripts(func(svc service.ITranscriptService) error {
				t, err := svc.Show(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if t == nil {
					return fmt.Errorf("transcript %s not found", args[0])
				}

				t.EmbeddingValue = nil
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(t)
			})
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete transcripts by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTranscripts(func(svc service.ITranscriptService) error {
				deleted, err := svc.Delete(cmd.Context(), args)
				if err != nil {
					return err
				}
				color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Deleted %d of %d\n", deleted, len(args))
				return nil
			})
		},
	}
}
