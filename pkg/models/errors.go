package models

import "errors"

// Provider failure classes. Provider implementations wrap these so callers can
// match them with errors.Is without importing a specific provider.
var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrInferenceTimeout    = errors.New("ai inference timeout")
	ErrInvalidResponse     = errors.New("ai provider returned invalid response")
)
