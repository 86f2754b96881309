package events

import "time"

const (
	PremiumStarted   = "premium.started"
	PremiumCompleted = "premium.completed"
	PremiumFailed    = "premium.failed"
	PremiumAborted   = "premium.aborted"
)

// NewPremiumEvent describes a premium run transition. details is merged into
// the payload and may be nil.
func NewPremiumEvent(eventType, requestID, clientID string, details map[string]interface{}) BaseEvent {
	data := map[string]interface{}{
		"request_id": requestID,
		"client_id":  clientID,
	}
	for k, v := range details {
		data[k] = v
	}
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
}
