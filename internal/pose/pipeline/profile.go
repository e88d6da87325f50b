package pipeline

import (
	"fmt"

	"github.com/banshee-data/form.report/internal/pose/exercise"
	"github.com/banshee-data/form.report/internal/pose/l2geometry"
	"github.com/banshee-data/form.report/internal/pose/l4phase"
	"github.com/banshee-data/form.report/internal/pose/l5activation"
	"github.com/banshee-data/form.report/internal/pose/l6assessment"
)

// Profile is the per-exercise strategy the analyzer dispatches on: the
// pivot joint driving phase classification, whether an activation model
// exists, and the ordered technique rules.
type Profile struct {
	Exercise exercise.Type
	Pivot    l2geometry.AngleID // empty when HasPivot is false
	HasPivot bool
	Modeled  bool
	Rules    []l6assessment.Rule
}

// ProfileFor assembles the strategy for an exercise. Unsupported exercises
// get an empty profile rather than an error.
func ProfileFor(t exercise.Type) Profile {
	pivot, hasPivot := l4phase.PivotFor(t)
	return Profile{
		Exercise: t,
		Pivot:    pivot,
		HasPivot: hasPivot,
		Modeled:  l5activation.HasModel(t),
		Rules:    l6assessment.RulesFor(t),
	}
}

// Supported reports whether any layer has exercise-specific behaviour.
func (p Profile) Supported() bool {
	return p.HasPivot || p.Modeled || len(p.Rules) > 0
}

func (p Profile) String() string {
	if !p.Supported() {
		return fmt.Sprintf("%s: unsupported", p.Exercise)
	}
	return fmt.Sprintf("%s: pivot=%s model=%t rules=%d", p.Exercise, p.Pivot, p.Modeled, len(p.Rules))
}
