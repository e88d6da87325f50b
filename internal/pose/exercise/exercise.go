// Package exercise defines the exercise configuration shared by every
// analysis layer: which lift is being performed and which training goal
// the scoring should favour.
package exercise

import (
	"fmt"
	"strings"
)

// Type identifies the lift being analysed.
type Type string

const (
	Squat         Type = "squat"
	Deadlift      Type = "deadlift"
	BenchPress    Type = "benchPress"
	ShoulderPress Type = "shoulderPress"
	PullUp        Type = "pullUp"
	Row           Type = "row"
	Lunge         Type = "lunge"
	Other         Type = "other"
)

var allTypes = []Type{Squat, Deadlift, BenchPress, ShoulderPress, PullUp, Row, Lunge, Other}

// Types returns every exercise type in a stable order.
func Types() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// ParseType parses an exercise type name. Matching is case-insensitive.
func ParseType(s string) (Type, error) {
	for _, t := range allTypes {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown exercise type %q", s)
}

// TrainingMode is the training goal that weights activation and scoring.
type TrainingMode string

const (
	Strength    TrainingMode = "strength"
	Hypertrophy TrainingMode = "hypertrophy"
)

// ParseTrainingMode parses a training mode name. Matching is case-insensitive.
func ParseTrainingMode(s string) (TrainingMode, error) {
	switch {
	case strings.EqualFold(s, string(Strength)):
		return Strength, nil
	case strings.EqualFold(s, string(Hypertrophy)):
		return Hypertrophy, nil
	}
	return "", fmt.Errorf("unknown training mode %q", s)
}

// Config is the active exercise selection.
type Config struct {
	Type Type         `json:"exercise_type"`
	Mode TrainingMode `json:"training_mode"`
}

// DefaultConfig is used before any explicit configuration.
func DefaultConfig() Config {
	return Config{Type: Other, Mode: Strength}
}

// ParseConfig parses an exercise type and training mode pair.
func ParseConfig(exerciseType, mode string) (Config, error) {
	t, err := ParseType(exerciseType)
	if err != nil {
		return Config{}, err
	}
	m, err := ParseTrainingMode(mode)
	if err != nil {
		return Config{}, err
	}
	return Config{Type: t, Mode: m}, nil
}

func (c Config) String() string {
	return fmt.Sprintf("%s/%s", c.Type, c.Mode)
}
