// Package dispatch routes generation requests to backends registered by id.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
	"github.com/kirillkom/brandvoice-promptgen/internal/core/ports"
)

// Observer receives one sample per dispatched call.
type Observer interface {
	ObserveGeneration(backend string, status string, duration time.Duration)
}

type Dispatcher struct {
	mu       sync.RWMutex
	backends map[domain.BackendID]ports.TextGenerator
	observer Observer
}

// New builds an empty dispatcher. observer may be nil.
func New(observer Observer) *Dispatcher {
	return &Dispatcher{
		backends: make(map[domain.BackendID]ports.TextGenerator),
		observer: observer,
	}
}

func (d *Dispatcher) Register(id domain.BackendID, generator ports.TextGenerator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.backends[id] = generator
}

func (d *Dispatcher) Generate(ctx context.Context, backend domain.BackendID, req domain.GenerationRequest) (string, error) {
	d.mu.RLock()
	generator, ok := d.backends[backend]
	d.mu.RUnlock()
	if !ok {
		return "", &domain.GenerationError{
			Backend: backend,
			Model:   req.Model,
			Cause:   fmt.Errorf("no backend registered under %q", backend),
		}
	}

	started := time.Now()
	text, err := generator.Generate(ctx, req)
	elapsed := time.Since(started)

	if err != nil {
		status := "generation_error"
		if domain.IsKind(err, domain.ErrConnectivity) {
			status = "connectivity_error"
		}
		d.observe(backend, status, elapsed)
		slog.Error("generation_failed",
			"backend", backend,
			"model", req.Model,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return "", &domain.GenerationError{Backend: backend, Model: req.Model, Cause: err}
	}

	d.observe(backend, "ok", elapsed)
	slog.Info("generation_completed",
		"backend", backend,
		"model", req.Model,
		"prompt_chars", len(req.Prompt),
		"duration_ms", elapsed.Milliseconds(),
	)
	return text, nil
}

func (d *Dispatcher) observe(backend domain.BackendID, status string, elapsed time.Duration) {
	if d.observer != nil {
		d.observer.ObserveGeneration(string(backend), status, elapsed)
	}
}
