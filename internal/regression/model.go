// Package regression holds the trained finish-time model and the machinery to
// load it.
package regression

import (
	"errors"
	"fmt"
)

var (
	// ErrModelUnavailable is returned while no model has been loaded.
	ErrModelUnavailable = errors.New("model is not loaded")
	// ErrIncompatibleSchema is returned when a frame does not match the columns
	// the model was trained on.
	ErrIncompatibleSchema = errors.New("incompatible input schema")
	// ErrInvalidArtifact is returned when an artifact cannot be decoded.
	ErrInvalidArtifact = errors.New("invalid model artifact")
)

// Model predicts one value per frame row.
type Model interface {
	// Features returns the column names the model expects, in order.
	Features() []string
	Predict(frame Frame) ([]float64, error)
}

// Frame is a table of named columns. Cells are float64, int or string.
type Frame struct {
	Columns []string
	Rows    [][]any
}

// CheckSchema verifies that columns match features exactly, in order.
func CheckSchema(features, columns []string) error {
	if len(features) != len(columns) {
		return fmt.Errorf("%w: model expects %d columns %v, got %d %v",
			ErrIncompatibleSchema, len(features), features, len(columns), columns)
	}
	for i := range features {
		if features[i] != columns[i] {
			return fmt.Errorf("%w: column %d is %q, model expects %q",
				ErrIncompatibleSchema, i, columns[i], features[i])
		}
	}
	return nil
}
