package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/racetime/pkg/models"
)

// Sentinel errors for trace sink failures.
var (
	ErrSinkUnreachable = errors.New("trace sink unreachable")
	ErrSinkRejected    = errors.New("trace sink rejected batch")
)

const ingestionPath = "/api/public/ingestion"

// MaxPending bounds the queue between flushes. Once full, the oldest event is
// dropped for each new one.
const MaxPending = 1000

// Langfuse buffers spans and ships them to a Langfuse ingestion endpoint on Flush.
type Langfuse struct {
	host      string
	publicKey string
	secretKey string
	client    *http.Client

	mu      sync.Mutex
	pending []ingestionEvent
	limit   int
	dropped int
}

// NewLangfuse creates a Langfuse sink. host has no trailing path, e.g. https://cloud.langfuse.com.
func NewLangfuse(host, publicKey, secretKey string, timeout time.Duration) *Langfuse {
	return &Langfuse{
		host:      strings.TrimRight(host, "/"),
		publicKey: publicKey,
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
		limit:     MaxPending,
	}
}

// Record queues the span as a trace-create event.
func (l *Langfuse) Record(_ context.Context, span models.Span) {
	id := span.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	body := traceBody{
		ID:        id.String(),
		Name:      span.Name,
		Timestamp: span.StartedAt.UTC().Format(time.RFC3339Nano),
		Input:     span.Input,
		Output:    span.Output,
		Metadata: map[string]any{
			"provider":    span.Provider,
			"model":       span.Model,
			"duration_ms": span.EndedAt.Sub(span.StartedAt).Milliseconds(),
		},
	}
	if span.Error != "" {
		body.Metadata["error"] = span.Error
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pending) >= l.limit {
		n := len(l.pending) - l.limit + 1
		l.pending = append(l.pending[:0], l.pending[n:]...)
		l.dropped += n
		if l.dropped == n || l.dropped%l.limit == 0 {
			slog.Warn("trace queue full, dropping oldest spans", "dropped_total", l.dropped, "limit", l.limit)
		}
	}
	l.pending = append(l.pending, ingestionEvent{
		ID:        uuid.New().String(),
		Type:      "trace-create",
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Body:      body,
	})
}

// Pending returns the number of queued events.
func (l *Langfuse) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Dropped returns how many events were discarded because the queue was full.
func (l *Langfuse) Dropped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// Flush sends every queued event in one batch. The queue is cleared whether or
// not delivery succeeds.
func (l *Langfuse) Flush(ctx context.Context) error {
	l.mu.Lock()
	batch := l.pending
	l.pending = nil
	l.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	payload, err := json.Marshal(ingestionRequest{Batch: batch})
	if err != nil {
		return fmt.Errorf("encoding batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.host+ingestionPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(l.publicKey, l.secretKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrSinkRejected, resp.StatusCode)
	}
	return nil
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: timeout: %v", ErrSinkUnreachable, err)
	}
	return fmt.Errorf("%w: %v", ErrSinkUnreachable, err)
}

// --- Langfuse ingestion types ---

type ingestionRequest struct {
	Batch []ingestionEvent `json:"batch"`
}

type ingestionEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp string    `json:"timestamp"`
	Body      traceBody `json:"body"`
}

type traceBody struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Timestamp string         `json:"timestamp"`
	Input     string         `json:"input"`
	Output    string         `json:"output"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

var (
	_ Observer = (*Langfuse)(nil)
	_ Flusher  = (*Langfuse)(nil)
)
