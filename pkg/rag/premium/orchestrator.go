package premium

import (
	"context"
	"encoding/json"
	"fmt"

	"datasense-be/internal/pkg/logger"
	"datasense-be/internal/websocket"
	"datasense-be/pkg/events"
	"datasense-be/pkg/rag/retrieval"
	"datasense-be/pkg/rag/synthesizer"
	"datasense-be/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ChannelLookup interface {
	Lookup(clientID string) (websocket.Channel, bool)
}

type Retriever interface {
	Retrieve(ctx context.Context, query string) (retrieval.Result, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, question string, videos []store.VideoRecord, documents []store.Document) (synthesizer.Result, error)
}

// EventPublisher receives lifecycle events of each run. Optional.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Request struct {
	ID       string
	ClientID string
	Question string
}

type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	// OutcomeAborted means no channel was registered, so nothing was sent.
	OutcomeAborted Outcome = "aborted"
)

// Orchestrator runs one premium request: started, searching, synthesizing,
// then completed or error. Every event goes to the client's channel in that
// order; a failed phase is never retried.
type Orchestrator struct {
	channels    ChannelLookup
	retriever   Retriever
	synthesizer Synthesizer
	publisher   EventPublisher
	logger      logger.ILogger
	tracer      trace.Tracer
}

func NewOrchestrator(
	channels ChannelLookup,
	retriever Retriever,
	synth Synthesizer,
	publisher EventPublisher,
	log logger.ILogger,
) *Orchestrator {
	return &Orchestrator{
		channels:    channels,
		retriever:   retriever,
		synthesizer: synth,
		publisher:   publisher,
		logger:      log,
		tracer:      otel.Tracer("datasense-be/premium"),
	}
}

func (o *Orchestrator) Run(ctx context.Context, req Request) Outcome {
	ctx, span := o.tracer.Start(ctx, "premium.run", trace.WithAttributes(
		attribute.String("premium.request_id", req.ID),
		attribute.String("premium.client_id", req.ClientID),
	))
	defer span.End()

	ch, ok := o.channels.Lookup(req.ClientID)
	if !ok {
		o.logger.Warn("PremiumOrchestrator", "No channel registered, premium response dropped", map[string]interface{}{
			"request_id": req.ID,
			"client_id":  req.ClientID,
		})
		span.SetAttributes(attribute.String("premium.outcome", string(OutcomeAborted)))
		o.publish(ctx, events.PremiumAborted, req, nil)
		return OutcomeAborted
	}

	o.publish(ctx, events.PremiumStarted, req, nil)

	if err := o.send(ch, StartedEvent()); err != nil {
		return o.fail(ctx, span, ch, req, "started", err)
	}
	if err := o.send(ch, SearchingEvent()); err != nil {
		return o.fail(ctx, span, ch, req, "searching", err)
	}

	retrieved, err := o.retriever.Retrieve(ctx, req.Question)
	if err != nil {
		return o.fail(ctx, span, ch, req, "searching", err)
	}

	if err := o.send(ch, SynthesizingEvent()); err != nil {
		return o.fail(ctx, span, ch, req, "synthesizing", err)
	}

	result, err := o.synthesizer.Synthesize(ctx, req.Question, retrieved.Videos, retrieved.Documents)
	if err != nil {
		return o.fail(ctx, span, ch, req, "synthesizing", err)
	}

	if err := o.send(ch, CompletedEvent(result, retrieved.Documents)); err != nil {
		return o.fail(ctx, span, ch, req, "completed", err)
	}

	o.logger.Info("PremiumOrchestrator", "Premium response delivered", map[string]interface{}{
		"request_id": req.ID,
		"client_id":  req.ClientID,
		"videos":     len(retrieved.Videos),
		"documents":  len(retrieved.Documents),
		"fallback":   result.Fallback,
	})
	span.SetAttributes(
		attribute.String("premium.outcome", string(OutcomeCompleted)),
		attribute.Bool("premium.fallback", result.Fallback),
	)
	o.publish(ctx, events.PremiumCompleted, req, map[string]interface{}{
		"videos":         len(retrieved.Videos),
		"documents":      len(retrieved.Documents),
		"fallback":       result.Fallback,
		"enough_context": result.Answer.EnoughContext,
	})
	return OutcomeCompleted
}

// fail reports err on the channel once. If that send fails too, the run ends
// with only a log entry.
func (o *Orchestrator) fail(ctx context.Context, span trace.Span, ch websocket.Channel, req Request, stage string, err error) Outcome {
	o.logger.Error("PremiumOrchestrator", "Premium response failed", map[string]interface{}{
		"request_id": req.ID,
		"client_id":  req.ClientID,
		"stage":      stage,
		"error":      err.Error(),
	})
	span.RecordError(err)
	span.SetStatus(codes.Error, stage)
	span.SetAttributes(attribute.String("premium.outcome", string(OutcomeFailed)))

	if sendErr := o.send(ch, ErrorEvent(err)); sendErr != nil {
		o.logger.Warn("PremiumOrchestrator", "Error event not delivered", map[string]interface{}{
			"request_id": req.ID,
			"client_id":  req.ClientID,
			"error":      sendErr.Error(),
		})
	}

	o.publish(ctx, events.PremiumFailed, req, map[string]interface{}{
		"stage": stage,
		"error": err.Error(),
	})
	return OutcomeFailed
}

func (o *Orchestrator) send(ch websocket.Channel, event ProgressEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Status, err)
	}
	if err := ch.Send(payload); err != nil {
		return fmt.Errorf("send %s event: %w", event.Status, err)
	}
	return nil
}

func (o *Orchestrator) publish(ctx context.Context, eventType string, req Request, details map[string]interface{}) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.Publish(ctx, events.NewPremiumEvent(eventType, req.ID, req.ClientID, details)); err != nil {
		o.logger.Warn("PremiumOrchestrator", "Lifecycle event not published", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
