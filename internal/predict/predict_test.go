package predict

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiranshivaraju/racetime/internal/regression"
)

type fakeModel struct {
	features []string
	out      []float64
	err      error
	frames   []regression.Frame
}

func (m *fakeModel) Features() []string { return m.features }

func (m *fakeModel) Predict(f regression.Frame) ([]float64, error) {
	m.frames = append(m.frames, f)
	return m.out, m.err
}

func holderWith(m regression.Model) *regression.Holder {
	h := regression.NewHolder(nil)
	h.Set(m)
	return h
}

func TestCanonicalGender(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Kobieta", "K"},
		{"kobieta", "K"},
		{"K", "K"},
		{"kiedykolwiek", "K"},
		{"Mężczyzna", "M"},
		{"X", "M"},
		{"", "M"},
		{"unknown", "M"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalGender(tt.in))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00"},
		{59.999, "00:00:59"},
		{3661, "01:01:01"},
		{7500, "02:05:00"},
		{86399, "23:59:59"},
		{360000, "100:00:00"},
		{-12.5, "00:00:00"},
	}
	for _, tt := range tests {
		got, err := FormatDuration(tt.seconds)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "seconds=%v", tt.seconds)
	}
}

func TestFormatDuration_NonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := FormatDuration(v)
		assert.True(t, errors.Is(err, ErrInvalidPrediction), "value=%v", v)
	}
}

func TestFormatDuration_OutOfRange(t *testing.T) {
	for _, v := range []float64{360000001, 1e19, 1e300, math.MaxFloat64} {
		out, err := FormatDuration(v)
		assert.True(t, errors.Is(err, ErrInvalidPrediction), "value=%v", v)
		assert.Empty(t, out)
	}

	out, err := FormatDuration(360000000)
	require.NoError(t, err)
	assert.Equal(t, "100000:00:00", out)
}

func TestPredict_HugeOutputIsInvalid(t *testing.T) {
	m := &fakeModel{features: []string{"Age", "Gender", "Pace_5k"}, out: []float64{1e19}}

	_, err := NewPredictor(holderWith(m)).Predict(28, "Kobieta", 6.0)
	assert.True(t, errors.Is(err, ErrInvalidPrediction))
}

func TestPredict_BuildsSingleRowFrame(t *testing.T) {
	m := &fakeModel{features: []string{"Age", "Gender", "Pace_5k"}, out: []float64{7500}}
	p := NewPredictor(holderWith(m))

	est, err := p.Predict(28, "Kobieta", 6.0)
	require.NoError(t, err)
	assert.Equal(t, 7500.0, est.Seconds)
	assert.Equal(t, "02:05:00", est.Formatted)
	assert.Equal(t, "K", est.GenderCategory)

	require.Len(t, m.frames, 1)
	assert.Equal(t, []string{"Age", "Gender", "Pace_5k"}, m.frames[0].Columns)
	assert.Equal(t, [][]any{{28, "K", 6.0}}, m.frames[0].Rows)
}

func TestPredict_Idempotent(t *testing.T) {
	m := &fakeModel{features: []string{"Age", "Gender", "Pace_5k"}, out: []float64{6543.2}}
	p := NewPredictor(holderWith(m))

	a, err := p.Predict(41, "Mężczyzna", 5.25)
	require.NoError(t, err)
	b, err := p.Predict(41, "Mężczyzna", 5.25)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPredict_UsesFirstOutputOnly(t *testing.T) {
	m := &fakeModel{features: []string{"Age", "Gender", "Pace_5k"}, out: []float64{3600, 1}}
	est, err := NewPredictor(holderWith(m)).Predict(30, "M", 5)
	require.NoError(t, err)
	assert.Equal(t, "01:00:00", est.Formatted)
}

func TestPredict_ModelUnavailable(t *testing.T) {
	_, err := NewPredictor(regression.NewHolder(nil)).Predict(30, "M", 5)
	assert.True(t, errors.Is(err, regression.ErrModelUnavailable))

	_, err = NewPredictor(nil).Predict(30, "M", 5)
	assert.True(t, errors.Is(err, regression.ErrModelUnavailable))
}

func TestPredict_SchemaMismatch(t *testing.T) {
	m := &fakeModel{features: []string{"Gender", "Age", "Pace_5k"}, out: []float64{1}}
	_, err := NewPredictor(holderWith(m)).Predict(30, "M", 5)
	assert.True(t, errors.Is(err, regression.ErrIncompatibleSchema))
	assert.Empty(t, m.frames)
}

func TestPredict_NoOutput(t *testing.T) {
	m := &fakeModel{features: []string{"Age", "Gender", "Pace_5k"}}
	_, err := NewPredictor(holderWith(m)).Predict(30, "M", 5)
	assert.True(t, errors.Is(err, ErrInvalidPrediction))
}

func TestPredict_NaNOutput(t *testing.T) {
	m := &fakeModel{features: []string{"Age", "Gender", "Pace_5k"}, out: []float64{math.NaN()}}
	_, err := NewPredictor(holderWith(m)).Predict(30, "M", 5)
	assert.True(t, errors.Is(err, ErrInvalidPrediction))
}

func TestPredict_WithLinearModel(t *testing.T) {
	lin := &regression.Linear{
		Columns:      []string{"Age", "Gender", "Pace_5k"},
		Intercept:    1000,
		Coefficients: map[string]float64{"Age": 10, "Pace_5k": 1000},
		Categories:   map[string]map[string]float64{"Gender": {"K": 200, "M": 0}},
	}
	est, err := NewPredictor(holderWith(lin)).Predict(30, "kobieta", 6)
	require.NoError(t, err)
	// 1000 + 300 + 200 + 6000
	assert.Equal(t, 7500.0, est.Seconds)
	assert.Equal(t, "02:05:00", est.Formatted)
}
