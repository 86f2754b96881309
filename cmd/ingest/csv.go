package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"datasense-be/internal/config"
	"datasense-be/internal/pkg/logger"
	"datasense-be/internal/repository/unitofwork"
	"datasense-be/internal/service"
	"datasense-be/pkg/database"
	"datasense-be/pkg/embedding"
	"datasense-be/pkg/llm/factory"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newCSVCmd() *cobra.Command {
	var (
		file   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Ingest a transcript CSV export",
		Long:  "Ingests a CSV with columns id, partner, created_at, video_file_path, transcript and optional file_name, thumbnail_uri. Use --dry-run to validate rows without embedding.",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open %s: %w", file, err)
			}
			defer f.Close()

			if dryRun {
				return runDryRun(cmd.OutOrStdout(), f)
			}
			return runIngest(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "out.csv", "path to the transcript CSV")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate rows without embedding or writing")
	return cmd
}

func runDryRun(out io.Writer, r io.Reader) error {
	rows, rejected, err := service.ParseTranscriptCSV(r)
	if err != nil {
		return err
	}
	printReport(out, &service.IngestReport{
		Rows:     len(rows) + len(rejected),
		Rejected: rejected,
	}, nil)
	return nil
}

func runIngest(ctx context.Context, out io.Writer, r io.Reader) error {
	if ctx == nil {
		ctx = context.Background()
	}

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

	genaiClient, err := factory.NewGenAIClient(ctx, factory.ClientConfig{
		Backend:  cfg.Gemini.Backend,
		APIKey:   cfg.Gemini.APIKey,
		Project:  cfg.Gemini.Project,
		Location: cfg.Gemini.Location,
	})
	if err != nil {
		return err
	}
	embedder := embedding.NewGeminiProvider(genaiClient, cfg.Gemini.EmbeddingModel, cfg.Database.EmbeddingDimension)

	// Publishing blocks until the consumer acks, so the bus never buffers
	// more than one transcript.
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermill.NopLogger{},
	)

	consumer := service.NewConsumerService(pubSub, cfg.Infra.IngestTopicName, unitofwork.NewRepositoryFactory(db), embedder, sysLogger)
	if err := consumer.Consume(ctx); err != nil {
		return err
	}

	ingest := service.NewIngestService(service.NewPublisherService(cfg.Infra.IngestTopicName, pubSub), sysLogger)
	report, ingestErr := ingest.IngestCSV(ctx, r)

	if err := pubSub.Close(); err != nil {
		sysLogger.Warn("IngestPublisher", "Failed to close bus", map[string]interface{}{"error": err.Error()})
	}
	consumer.Wait()

	if report != nil {
		stats := consumer.Stats()
		printReport(out, report, &stats)
	}
	return ingestErr
}

// printReport prints ingestion counts. stats is nil for a dry run.
func printReport(out io.Writer, report *service.IngestReport, stats *service.ConsumerStats) {
	color.New(color.FgCyan).Fprintf(out, "Rows read: %d\n", report.Rows)

	if stats == nil {
		color.New(color.FgGreen).Fprintf(out, "Valid:     %d\n", report.Rows-len(report.Rejected))
	} else {
		color.New(color.FgGreen).Fprintf(out, "Ingested:  %d\n", stats.Processed)
		if stats.Failed > 0 {
			color.New(color.FgRed).Fprintf(out, "Failed:    %d (see log)\n", stats.Failed)
		}
	}
	if len(report.Rejected) > 0 {
		color.New(color.FgYellow).Fprintf(out, "Rejected:  %d\n", len(report.Rejected))
		for _, rowErr := range report.Rejected {
			color.New(color.FgYellow).Fprintf(out, "  %s\n", rowErr.Error())
		}
	}
}
