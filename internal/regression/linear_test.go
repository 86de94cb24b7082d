package regression_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/kiranshivaraju/racetime/internal/regression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const artifact = `{
	"name": "halfmarathon-linear",
	"version": "2024.1",
	"features": ["Age", "Gender", "Pace_5k"],
	"intercept": 1000,
	"coefficients": {"Age": 10, "Pace_5k": 1000},
	"categories": {"Gender": {"K": 120, "M": 0}}
}`

func decode(t *testing.T, doc string) *regression.Linear {
	t.Helper()
	m, err := regression.Decode(strings.NewReader(doc))
	require.NoError(t, err)
	return m
}

func frame(rows ...[]any) regression.Frame {
	return regression.Frame{Columns: []string{"Age", "Gender", "Pace_5k"}, Rows: rows}
}

func TestDecode(t *testing.T) {
	m := decode(t, artifact)
	assert.Equal(t, "halfmarathon-linear", m.Name)
	assert.Equal(t, "2024.1", m.Version)
	assert.Equal(t, []string{"Age", "Gender", "Pace_5k"}, m.Features())
}

func TestDecode_Invalid(t *testing.T) {
	cases := map[string]string{
		"not json":          `pickle`,
		"no features":       `{"features": [], "intercept": 1}`,
		"unknown field":     `{"features": ["Age"], "coefficients": {"Age": 1}, "bias": 3}`,
		"missing term":      `{"features": ["Age", "Pace_5k"], "coefficients": {"Age": 1}}`,
		"both terms":        `{"features": ["Age"], "coefficients": {"Age": 1}, "categories": {"Age": {"x": 1}}}`,
		"stray coefficient": `{"features": ["Age"], "coefficients": {"Age": 1, "Weight": 2}}`,
		"stray category":    `{"features": ["Age"], "coefficients": {"Age": 1}, "categories": {"Gender": {"K": 1}}}`,
		"duplicate feature": `{"features": ["Age", "Age"], "coefficients": {"Age": 1}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := regression.Decode(strings.NewReader(doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, regression.ErrInvalidArtifact))
		})
	}
}

func TestPredict(t *testing.T) {
	m := decode(t, artifact)

	out, err := m.Predict(frame(
		[]any{28, "K", 6.0},
		[]any{40.0, "M", 5.0},
	))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.InDelta(t, 1000+280+120+6000, out[0], 1e-9)
	assert.InDelta(t, 1000+400+0+5000, out[1], 1e-9)
}

func TestPredict_Deterministic(t *testing.T) {
	m := decode(t, artifact)
	a, err := m.Predict(frame([]any{33, "M", 5.5}))
	require.NoError(t, err)
	b, err := m.Predict(frame([]any{33, "M", 5.5}))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPredict_SchemaMismatch(t *testing.T) {
	m := decode(t, artifact)

	cases := map[string]regression.Frame{
		"renamed":   {Columns: []string{"age", "Gender", "Pace_5k"}, Rows: [][]any{{28, "K", 6.0}}},
		"reordered": {Columns: []string{"Gender", "Age", "Pace_5k"}, Rows: [][]any{{"K", 28, 6.0}}},
		"missing":   {Columns: []string{"Age", "Gender"}, Rows: [][]any{{28, "K"}}},
		"short row": frame([]any{28, "K"}),
		"bad level": frame([]any{28, "X", 6.0}),
		"str num":   frame([]any{"28", "K", 6.0}),
		"num cat":   frame([]any{28, 1, 6.0}),
	}
	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := m.Predict(f)
			require.Error(t, err)
			assert.True(t, errors.Is(err, regression.ErrIncompatibleSchema))
		})
	}
}

func TestCheckSchema(t *testing.T) {
	assert.NoError(t, regression.CheckSchema([]string{"a", "b"}, []string{"a", "b"}))
	assert.ErrorIs(t, regression.CheckSchema([]string{"a", "b"}, []string{"b", "a"}), regression.ErrIncompatibleSchema)
	assert.ErrorIs(t, regression.CheckSchema([]string{"a"}, nil), regression.ErrIncompatibleSchema)
}
