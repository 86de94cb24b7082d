package regression

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Loader produces a ready model, typically from a stored artifact.
type Loader interface {
	Load(ctx context.Context) (Model, error)
}

// Info describes the currently held model.
type Info struct {
	Loaded   bool      `json:"loaded"`
	Features []string  `json:"features,omitempty"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
	Name     string    `json:"name,omitempty"`
	Version  string    `json:"version,omitempty"`
}

// Holder owns the process-wide model. It is built once at startup and passed
// to whoever predicts; the model it holds is never mutated, only replaced.
type Holder struct {
	loader Loader

	mu       sync.RWMutex
	model    Model
	loadedAt time.Time
}

func NewHolder(loader Loader) *Holder {
	return &Holder{loader: loader}
}

// Load fetches a model through the loader and swaps it in. On failure the
// previously held model, if any, stays in place.
func (h *Holder) Load(ctx context.Context) error {
	if h.loader == nil {
		return fmt.Errorf("%w: no loader configured", ErrModelUnavailable)
	}
	m, err := h.loader.Load(ctx)
	if err != nil {
		return err
	}
	h.Set(m)
	return nil
}

// Set installs m directly.
func (h *Holder) Set(m Model) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.model = m
	h.loadedAt = time.Now().UTC()
}

// Model returns the held model or ErrModelUnavailable.
func (h *Holder) Model() (Model, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.model == nil {
		return nil, ErrModelUnavailable
	}
	return h.model, nil
}

func (h *Holder) Info() Info {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.model == nil {
		return Info{}
	}
	info := Info{Loaded: true, Features: h.model.Features(), LoadedAt: h.loadedAt}
	if lin, ok := h.model.(*Linear); ok {
		info.Name = lin.Name
		info.Version = lin.Version
	}
	return info
}
