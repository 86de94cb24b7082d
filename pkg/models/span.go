package models

import (
	"time"

	"github.com/google/uuid"
)

// Span describes one traced language-model call.
type Span struct {
	ID        uuid.UUID
	Name      string
	Input     string
	Output    string
	Error     string
	Provider  string
	Model     string
	StartedAt time.Time
	EndedAt   time.Time
}
