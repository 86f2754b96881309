package executor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"datasense-be/internal/pkg/logger"
)

var ErrShuttingDown = errors.New("supervisor is shutting down")

// Task is detached work. Its context ends at the task timeout or on shutdown.
type Task func(ctx context.Context) error

// Supervisor runs fire-and-forget tasks. Callers keep no handle; failures and
// panics are logged here instead of being lost.
type Supervisor struct {
	base    context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	logger  logger.ILogger

	mu      sync.Mutex
	closed  bool
	wg      sync.WaitGroup
	running int
}

func NewSupervisor(timeout time.Duration, log logger.ILogger) *Supervisor {
	base, cancel := context.WithCancel(context.Background())
	return &Supervisor{base: base, cancel: cancel, timeout: timeout, logger: log}
}

// Go schedules task under name. It never blocks on the task itself.
func (s *Supervisor) Go(name string, task Task) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn("Supervisor", "Task rejected during shutdown", map[string]interface{}{"task": name})
		return ErrShuttingDown
	}
	s.wg.Add(1)
	s.running++
	s.mu.Unlock()

	go s.run(name, task)
	return nil
}

func (s *Supervisor) run(name string, task Task) {
	start := time.Now()
	defer func() {
		s.mu.Lock()
		s.running--
		s.mu.Unlock()
		s.wg.Done()
	}()

	ctx := s.base
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	err := s.safeCall(ctx, task)
	if err != nil {
		s.logger.Error("Supervisor", "Task failed", map[string]interface{}{
			"task":        name,
			"error":       err.Error(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return
	}
	s.logger.Debug("Supervisor", "Task finished", map[string]interface{}{
		"task":        name,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

func (s *Supervisor) safeCall(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return task(ctx)
}

// Running is the number of tasks not yet finished.
func (s *Supervisor) Running() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Shutdown stops accepting tasks and waits for running ones until ctx ends,
// at which point their contexts are cancelled.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		return ctx.Err()
	}
}
