// Package server coordinates the daemon's long-running services: each is
// started in registration order and all are stopped in reverse order once a
// shutdown signal arrives, the context is cancelled, or any service fails.
package server

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

// Service is a long-running component of the daemon. Start blocks until the
// service exits; Stop asks a blocked Start to return.
type Service interface {
	Start() error
	Stop()
}

// FuncService adapts a start/stop closure pair into a Service.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

func (f *FuncService) Start() error { return f.StartFn() }

func (f *FuncService) Stop() { f.StopFn() }

// Lifecycle owns the daemon's registered services.
type Lifecycle struct {
	logger  *zap.Logger
	mu      sync.Mutex
	entries []entry
}

type entry struct {
	name string
	svc  Service
}

// NewLifecycle creates an empty Lifecycle.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a named service. Registration order is start order;
// shutdown runs in reverse.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry{name: name, svc: svc})
}

// Run starts every registered service and blocks until SIGINT or SIGTERM,
// context cancellation, or the first service failure. It then stops the
// services in reverse registration order and waits for them to exit.
//
// Postcondition: Returns the first service failure, or nil on a clean
// signal- or context-driven shutdown.
func (l *Lifecycle) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	failed := make(chan error, len(l.entries))
	var running sync.WaitGroup
	for _, en := range l.entries {
		en := en
		running.Add(1)
		go func() {
			defer running.Done()
			l.logger.Info("service starting", zap.String("service", en.name))
			if err := en.svc.Start(); err != nil {
				failed <- fmt.Errorf("service %s: %w", en.name, err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		l.logger.Info("shutdown requested")
	case runErr = <-failed:
		l.logger.Error("service failed, shutting down", zap.Error(runErr))
	}

	for i := len(l.entries) - 1; i >= 0; i-- {
		en := l.entries[i]
		en.svc.Stop()
		l.logger.Info("service stopped", zap.String("service", en.name))
	}
	running.Wait()

	l.logger.Info("shutdown complete")
	return runErr
}
