package models

import (
	"time"

	"github.com/google/uuid"
)

// Run status constants.
const (
	RunStatusCompleted        = "completed"
	RunStatusExtractionFailed = "extraction_failed"
	RunStatusMissingFields    = "missing_fields"
	RunStatusPredictionFailed = "prediction_failed"
)

// Run is the audit record of one estimate request.
type Run struct {
	ID               uuid.UUID `db:"id"                json:"id"`
	Status           string    `db:"status"            json:"status"`
	Provider         string    `db:"provider"          json:"provider"`
	Age              *int      `db:"age"               json:"wiek"`
	Gender           *string   `db:"gender"            json:"płeć"`
	Pace5k           *float64  `db:"pace_5k"           json:"tempo_5km"`
	MissingFields    []string  `db:"missing_fields"    json:"missing_fields,omitempty"`
	PredictedSeconds *float64  `db:"predicted_seconds" json:"predicted_seconds,omitempty"`
	PredictedTime    *string   `db:"predicted_time"    json:"predicted_time,omitempty"`
	ErrorMessage     *string   `db:"error_message"     json:"error_message,omitempty"`
	CreatedAt        time.Time `db:"created_at"        json:"created_at"`
}
