// Package validate checks that an extracted runner profile is complete.
package validate

import (
	"errors"
	"strings"

	"github.com/kiranshivaraju/racetime/pkg/models"
)

// Field labels, in reporting order.
const (
	LabelAge    = "wiek"
	LabelGender = "płeć"
	LabelPace   = "tempo na 5 km"
)

// ErrMissingFields matches any *MissingFieldsError via errors.Is.
var ErrMissingFields = errors.New("missing fields")

// MissingFieldsError lists the labels of fields that were null or absent.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Is(target error) bool {
	return target == ErrMissingFields
}

// Profile returns the profile's values when all three fields are present.
// Values are passed through unchanged.
func Profile(p models.RunnerProfile) (models.ValidatedProfile, error) {
	var missing []string
	if p.Age == nil {
		missing = append(missing, LabelAge)
	}
	if p.Gender == nil {
		missing = append(missing, LabelGender)
	}
	if p.Pace5k == nil {
		missing = append(missing, LabelPace)
	}
	if len(missing) > 0 {
		return models.ValidatedProfile{}, &MissingFieldsError{Fields: missing}
	}

	return models.ValidatedProfile{
		Age:    *p.Age,
		Gender: *p.Gender,
		Pace5k: *p.Pace5k,
	}, nil
}
