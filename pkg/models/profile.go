package models

// RunnerProfile holds the fields extracted from a runner's self-description.
// A nil field could not be determined from the text.
type RunnerProfile struct {
	Age    *int     `json:"wiek"`
	Gender *string  `json:"płeć"`
	Pace5k *float64 `json:"tempo_5km"`
}

// ValidatedProfile is a RunnerProfile with every field present.
type ValidatedProfile struct {
	Age    int     `json:"wiek"`
	Gender string  `json:"płeć"`
	Pace5k float64 `json:"tempo_5km"` // minutes per kilometre, 6.5 = 6:30 min/km
}
