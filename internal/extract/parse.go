package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/kiranshivaraju/racetime/pkg/models"
)

// ParseReply decodes a language-model reply into a RunnerProfile.
//
// The reply must be a single JSON object using only the keys wiek, płeć and
// tempo_5km. A key that is absent or null yields a nil field. An object with no
// keys at all is treated as an empty result and rejected.
func ParseReply(content string) (models.RunnerProfile, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return models.RunnerProfile{}, fmt.Errorf("%w: reply is not a JSON object: %v", ErrExtractionFailed, err)
	}
	if raw == nil {
		return models.RunnerProfile{}, fmt.Errorf("%w: reply is null", ErrExtractionFailed)
	}
	if len(raw) == 0 {
		return models.RunnerProfile{}, fmt.Errorf("%w: %w", ErrExtractionFailed, ErrEmptyReply)
	}

	var p models.RunnerProfile
	for key, val := range raw {
		var err error
		switch key {
		case KeyAge:
			p.Age, err = parseAge(val)
		case KeyGender:
			p.Gender, err = parseGender(val)
		case KeyPace:
			p.Pace5k, err = parsePace(val)
		default:
			err = fmt.Errorf("unexpected key %q", key)
		}
		if err != nil {
			return models.RunnerProfile{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}
	}
	return p, nil
}

func isNull(val json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(val), []byte("null"))
}

// parseAge accepts integral JSON numbers, including forms like 28.0.
func parseAge(val json.RawMessage) (*int, error) {
	if isNull(val) {
		return nil, nil
	}
	var f float64
	if err := json.Unmarshal(val, &f); err != nil {
		return nil, fmt.Errorf("%s must be a number: %v", KeyAge, err)
	}
	if f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
		return nil, fmt.Errorf("%s must be a non-negative integer, got %v", KeyAge, f)
	}
	age := int(f)
	return &age, nil
}

func parseGender(val json.RawMessage) (*string, error) {
	if isNull(val) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, fmt.Errorf("%s must be a string: %v", KeyGender, err)
	}
	return &s, nil
}

func parsePace(val json.RawMessage) (*float64, error) {
	if isNull(val) {
		return nil, nil
	}
	var f float64
	if err := json.Unmarshal(val, &f); err != nil {
		return nil, fmt.Errorf("%s must be a number: %v", KeyPace, err)
	}
	if f <= 0 {
		return nil, fmt.Errorf("%s must be positive, got %v", KeyPace, f)
	}
	return &f, nil
}
