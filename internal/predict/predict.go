// Package predict turns a validated runner profile into a half-marathon
// finish-time estimate.
package predict

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kiranshivaraju/racetime/internal/regression"
)

// ErrInvalidPrediction is returned when the model output cannot be turned into
// a duration.
var ErrInvalidPrediction = errors.New("invalid prediction")

// Feature columns the regression model is trained on, in order.
const (
	ColumnAge    = "Age"
	ColumnGender = "Gender"
	ColumnPace   = "Pace_5k"
)

// Gender categories fed to the model.
const (
	GenderFemale = "K"
	GenderMale   = "M"
)

var columns = []string{ColumnAge, ColumnGender, ColumnPace}

// Estimate is one predicted finish time.
type Estimate struct {
	Seconds        float64 `json:"predicted_seconds"`
	Formatted      string  `json:"predicted_time"`
	GenderCategory string  `json:"gender_category"`
}

// ModelSource yields the model to predict with. regression.Holder satisfies it.
type ModelSource interface {
	Model() (regression.Model, error)
}

type Predictor struct {
	source ModelSource
}

func NewPredictor(source ModelSource) *Predictor {
	return &Predictor{source: source}
}

// Predict runs the model on a single-row frame built from the profile.
func (p *Predictor) Predict(age int, gender string, pace5k float64) (Estimate, error) {
	if p.source == nil {
		return Estimate{}, regression.ErrModelUnavailable
	}
	m, err := p.source.Model()
	if err != nil {
		return Estimate{}, err
	}
	if err := regression.CheckSchema(m.Features(), columns); err != nil {
		return Estimate{}, err
	}

	category := CanonicalGender(gender)
	out, err := m.Predict(regression.Frame{
		Columns: columns,
		Rows:    [][]any{{age, category, pace5k}},
	})
	if err != nil {
		return Estimate{}, err
	}
	if len(out) == 0 {
		return Estimate{}, fmt.Errorf("%w: model returned no output", ErrInvalidPrediction)
	}

	formatted, err := FormatDuration(out[0])
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{Seconds: out[0], Formatted: formatted, GenderCategory: category}, nil
}

// CanonicalGender maps free-text gender to K when it starts with "k" in any
// case, and to M otherwise.
func CanonicalGender(g string) string {
	if strings.HasPrefix(strings.ToLower(g), "k") {
		return GenderFemale
	}
	return GenderMale
}

// maxSeconds is the largest duration FormatDuration accepts: 100000 hours.
const maxSeconds = 100000 * 3600

// FormatDuration renders seconds as HH:MM:SS, truncating fractions. Negative
// values render as 00:00:00. Hours are not capped at two digits, but values
// above maxSeconds are rejected.
func FormatDuration(seconds float64) (string, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds > maxSeconds {
		return "", fmt.Errorf("%w: %v seconds", ErrInvalidPrediction, seconds)
	}
	if seconds < 0 {
		seconds = 0
	}
	total := int64(math.Floor(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s), nil
}
