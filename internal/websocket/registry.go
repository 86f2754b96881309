package websocket

import (
	"errors"
	"sync"

	"datasense-be/internal/pkg/logger"
)

var (
	ErrChannelClosed  = errors.New("channel closed")
	ErrSendBufferFull = errors.New("channel send buffer full")
)

// Channel is the push side of a client connection. Send must not block.
type Channel interface {
	Send(payload []byte) error
}

// Registry maps client ids to their live channel. One channel per client id;
// registering again replaces the previous mapping without closing it.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]Channel
	logger   logger.ILogger
}

func NewRegistry(log logger.ILogger) *Registry {
	return &Registry{
		channels: make(map[string]Channel),
		logger:   log,
	}
}

func (r *Registry) Register(clientID string, ch Channel) {
	r.mu.Lock()
	_, replaced := r.channels[clientID]
	r.channels[clientID] = ch
	r.mu.Unlock()

	r.logger.Info("Registry", "Channel registered", map[string]interface{}{
		"client_id": clientID,
		"replaced":  replaced,
	})
}

func (r *Registry) Lookup(clientID string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[clientID]
	return ch, ok
}

func (r *Registry) Unregister(clientID string) {
	r.mu.Lock()
	_, ok := r.channels[clientID]
	delete(r.channels, clientID)
	r.mu.Unlock()

	if ok {
		r.logger.Info("Registry", "Channel unregistered", map[string]interface{}{"client_id": clientID})
	}
}

// UnregisterChannel removes the mapping only if it still points at ch, so a
// superseded connection closing late cannot evict its replacement.
func (r *Registry) UnregisterChannel(clientID string, ch Channel) bool {
	r.mu.Lock()
	current, ok := r.channels[clientID]
	if ok && current == ch {
		delete(r.channels, clientID)
	}
	r.mu.Unlock()

	removed := ok && current == ch
	if removed {
		r.logger.Info("Registry", "Channel unregistered", map[string]interface{}{"client_id": clientID})
	} else if ok {
		r.logger.Debug("Registry", "Skipped unregister of superseded channel", map[string]interface{}{"client_id": clientID})
	}
	return removed
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}
