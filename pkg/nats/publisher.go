package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"datasense-be/internal/pkg/logger"
	"datasense-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	StreamName    = "DATASENSE"
	subjectPrefix = "datasense"
)

// Publisher sends domain events to a JetStream stream.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger logger.ILogger
}

func NewPublisher(url string, log logger.ILogger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{subjectPrefix + ".>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
	})
	if err != nil {
		// The stream may already exist with a different config, or NATS is still starting.
		log.Warn("NATS", "Failed to ensure stream", map[string]interface{}{
			"stream": StreamName,
			"error":  err.Error(),
		})
	}

	return &Publisher{nc: nc, js: js, logger: log}, nil
}

// Subject is the JetStream subject an event is published on.
func Subject(event events.Event) string {
	return fmt.Sprintf("%s.%s", subjectPrefix, event.EventType())
}

// Encode is the wire form of an event: its payload plus type and timestamp.
func Encode(event events.Event) ([]byte, error) {
	body := make(map[string]interface{}, len(event.Payload())+2)
	for k, v := range event.Payload() {
		body[k] = v
	}
	body["type"] = event.EventType()
	body["occurred_at"] = event.Timestamp().Format(time.RFC3339Nano)

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return data, nil
}

func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	data, err := Encode(event)
	if err != nil {
		return err
	}

	subject := Subject(event)
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
