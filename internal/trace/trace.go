// Package trace records language-model calls for an external observability sink.
package trace

import (
	"context"
	"sync"

	"github.com/kiranshivaraju/racetime/pkg/models"
)

// Observer receives one span per traced call. Implementations must never block
// on the network inside Record; recording cannot fail the traced operation.
type Observer interface {
	Record(ctx context.Context, span models.Span)
}

// Flusher is implemented by observers that buffer spans.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Nop discards every span.
type Nop struct{}

func (Nop) Record(context.Context, models.Span) {}

func (Nop) Flush(context.Context) error { return nil }

// Memory keeps spans in process. Used by tests and local development.
type Memory struct {
	mu      sync.Mutex
	spans   []models.Span
	flushes int
}

func (m *Memory) Record(_ context.Context, span models.Span) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spans = append(m.spans, span)
}

func (m *Memory) Flush(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
	return nil
}

// Spans returns a copy of the recorded spans.
func (m *Memory) Spans() []models.Span {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Span, len(m.spans))
	copy(out, m.spans)
	return out
}

// Flushes returns how many times Flush was called.
func (m *Memory) Flushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}

var (
	_ Observer = Nop{}
	_ Flusher  = Nop{}
	_ Observer = (*Memory)(nil)
	_ Flusher  = (*Memory)(nil)
)
