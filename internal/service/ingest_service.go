package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"datasense-be/internal/dto"
	"datasense-be/internal/pkg/logger"
	"datasense-be/internal/pkg/serverutils"
)

var requiredColumns = []string{"id", "partner", "created_at", "video_file_path", "transcript"}

var createdAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// RowError is a CSV row that was not published. Line is 1-based and counts the header.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

type IngestReport struct {
	Rows      int
	Published int
	Rejected  []RowError
}

type IIngestService interface {
	IngestCSV(ctx context.Context, r io.Reader) (*IngestReport, error)
}

type ingestService struct {
	publisher IPublisherService
	logger    logger.ILogger
}

func NewIngestService(publisher IPublisherService, log logger.ILogger) IIngestService {
	return &ingestService{publisher: publisher, logger: log}
}

// IngestCSV publishes one message per valid row. Invalid rows are reported,
// not fatal; a publish failure stops the run.
func (s *ingestService) IngestCSV(ctx context.Context, r io.Reader) (*IngestReport, error) {
	rows, rejected, err := ParseTranscriptCSV(r)
	if err != nil {
		return nil, err
	}

	report := &IngestReport{Rows: len(rows) + len(rejected), Rejected: rejected}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		payload, err := json.Marshal(row)
		if err != nil {
			return report, fmt.Errorf("encode row %s: %w", row.Id, err)
		}
		if err := s.publisher.Publish(ctx, payload); err != nil {
			return report, fmt.Errorf("publish row %s: %w", row.Id, err)
		}
		report.Published++
	}

	s.logger.Info("IngestPublisher", "CSV rows published", map[string]interface{}{
		"rows":      report.Rows,
		"published": report.Published,
		"rejected":  len(report.Rejected),
	})
	return report, nil
}

// ParseTranscriptCSV reads the ingestion CSV. Columns beyond the known ones
// are kept in Extra.
func ParseTranscriptCSV(r io.Reader) ([]dto.PublishVideoTranscriptMessage, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("csv header missing columns: %s", strings.Join(missing, ", "))
	}

	var (
		rows     []dto.PublishVideoTranscriptMessage
		rejected []RowError
	)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				rejected = append(rejected, RowError{Line: line, Err: err})
				continue
			}
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}

		row, err := toMessage(record, index)
		if err != nil {
			rejected = append(rejected, RowError{Line: line, Err: err})
			continue
		}
		rows = append(rows, row)
	}
	return rows, rejected, nil
}

func toMessage(record []string, index map[string]int) (dto.PublishVideoTranscriptMessage, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	msg := dto.PublishVideoTranscriptMessage{
		Id:            field("id"),
		Partner:       field("partner"),
		VideoFilePath: field("video_file_path"),
		FileName:      field("file_name"),
		ThumbnailUri:  field("thumbnail_uri"),
		Transcript:    field("transcript"),
	}

	if raw := field("created_at"); raw != "" {
		createdAt, err := parseCreatedAt(raw)
		if err != nil {
			return msg, err
		}
		msg.CreatedAt = createdAt
	}

	known := map[string]bool{"file_name": true, "thumbnail_uri": true}
	for _, col := range requiredColumns {
		known[col] = true
	}
	for name, i := range index {
		if known[name] || i >= len(record) || record[i] == "" {
			continue
		}
		if msg.Extra == nil {
			msg.Extra = make(map[string]interface{})
		}
		msg.Extra[name] = record[i]
	}

	if err := serverutils.ValidateRequest(msg); err != nil {
		return msg, err
	}
	return msg, nil
}

func parseCreatedAt(raw string) (time.Time, error) {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized created_at %q", raw)
}
