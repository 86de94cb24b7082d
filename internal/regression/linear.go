package regression

import (
	"encoding/json"
	"fmt"
	"io"
)

// Linear is a linear model with one-hot encoded categorical features.
//
// Each feature has either a numeric coefficient or a table of per-level
// contributions. A prediction is the intercept plus the sum of those terms.
type Linear struct {
	Name         string                        `json:"name"`
	Version      string                        `json:"version"`
	Columns      []string                      `json:"features"`
	Intercept    float64                       `json:"intercept"`
	Coefficients map[string]float64            `json:"coefficients"`
	Categories   map[string]map[string]float64 `json:"categories"`
}

// Decode reads a JSON artifact into a Linear model and checks that it is
// self-consistent.
func Decode(r io.Reader) (*Linear, error) {
	var m Linear
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if err := m.check(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Linear) check() error {
	if len(m.Columns) == 0 {
		return fmt.Errorf("%w: no features", ErrInvalidArtifact)
	}
	seen := make(map[string]bool, len(m.Columns))
	for _, f := range m.Columns {
		if seen[f] {
			return fmt.Errorf("%w: duplicate feature %q", ErrInvalidArtifact, f)
		}
		seen[f] = true

		_, numeric := m.Coefficients[f]
		_, categorical := m.Categories[f]
		if numeric == categorical {
			return fmt.Errorf("%w: feature %q needs exactly one of a coefficient or a category table", ErrInvalidArtifact, f)
		}
	}
	for f := range m.Coefficients {
		if !seen[f] {
			return fmt.Errorf("%w: coefficient for unknown feature %q", ErrInvalidArtifact, f)
		}
	}
	for f := range m.Categories {
		if !seen[f] {
			return fmt.Errorf("%w: categories for unknown feature %q", ErrInvalidArtifact, f)
		}
	}
	return nil
}

func (m *Linear) Features() []string {
	out := make([]string, len(m.Columns))
	copy(out, m.Columns)
	return out
}

func (m *Linear) Predict(frame Frame) ([]float64, error) {
	if err := CheckSchema(m.Columns, frame.Columns); err != nil {
		return nil, err
	}

	out := make([]float64, 0, len(frame.Rows))
	for i, row := range frame.Rows {
		if len(row) != len(m.Columns) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrIncompatibleSchema, i, len(row), len(m.Columns))
		}
		y := m.Intercept
		for j, f := range m.Columns {
			term, err := m.term(f, row[j])
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			y += term
		}
		out = append(out, y)
	}
	return out, nil
}

func (m *Linear) term(feature string, cell any) (float64, error) {
	if levels, ok := m.Categories[feature]; ok {
		s, ok := cell.(string)
		if !ok {
			return 0, fmt.Errorf("%w: %s must be a string, got %T", ErrIncompatibleSchema, feature, cell)
		}
		v, ok := levels[s]
		if !ok {
			return 0, fmt.Errorf("%w: unknown %s level %q", ErrIncompatibleSchema, feature, s)
		}
		return v, nil
	}

	var x float64
	switch v := cell.(type) {
	case float64:
		x = v
	case int:
		x = float64(v)
	default:
		return 0, fmt.Errorf("%w: %s must be numeric, got %T", ErrIncompatibleSchema, feature, cell)
	}
	return m.Coefficients[feature] * x, nil
}

var _ Model = (*Linear)(nil)
