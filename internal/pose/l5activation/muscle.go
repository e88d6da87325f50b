// Package l5activation owns Layer 5 (Activation) of the pose data model:
// parametric, per-exercise models that estimate how strongly each muscle
// group is engaged from the current joint angles, movement phase, and
// training goal.
//
// Activation values are unitless heuristics in [0,1], not physiological
// measurements.
//
// Dependency rule: L5 may depend on L1-L4.
package l5activation

import "sort"

// MuscleGroup enumerates the muscle groups the estimator can report.
type MuscleGroup string

const (
	Quadriceps       MuscleGroup = "quadriceps"
	Hamstrings       MuscleGroup = "hamstrings"
	Gluteus          MuscleGroup = "gluteus"
	Calves           MuscleGroup = "calves"
	Chest            MuscleGroup = "chest"
	UpperBack        MuscleGroup = "upperBack"
	LowerBack        MuscleGroup = "lowerBack"
	Shoulders        MuscleGroup = "shoulders"
	AnteriorDeltoid  MuscleGroup = "anteriorDeltoid"
	LateralDeltoid   MuscleGroup = "lateralDeltoid"
	PosteriorDeltoid MuscleGroup = "posteriorDeltoid"
	Biceps           MuscleGroup = "biceps"
	Triceps          MuscleGroup = "triceps"
	Forearms         MuscleGroup = "forearms"
	Core             MuscleGroup = "core"
	Trapezius        MuscleGroup = "trapezius"
)

// MuscleGroups returns every muscle group in a stable order.
func MuscleGroups() []MuscleGroup {
	return []MuscleGroup{
		Quadriceps, Hamstrings, Gluteus, Calves,
		Chest, UpperBack, LowerBack,
		Shoulders, AnteriorDeltoid, LateralDeltoid, PosteriorDeltoid,
		Biceps, Triceps, Forearms, Core, Trapezius,
	}
}

// Activation maps muscle groups to estimated activation in [0,1].
// Muscles the active model does not cover are absent.
type Activation map[MuscleGroup]float64

// Muscles returns the muscles present, sorted by name.
func (a Activation) Muscles() []MuscleGroup {
	out := make([]MuscleGroup, 0, len(a))
	for m := range a {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Peak returns the most activated muscle and its value. Ties resolve to the
// alphabetically first muscle. ok is false for an empty activation.
func (a Activation) Peak() (muscle MuscleGroup, value float64, ok bool) {
	for _, m := range a.Muscles() {
		if v := a[m]; !ok || v > value {
			muscle, value, ok = m, v, true
		}
	}
	return muscle, value, ok
}

// Clone returns a copy of the activation map.
func (a Activation) Clone() Activation {
	out := make(Activation, len(a))
	for m, v := range a {
		out[m] = v
	}
	return out
}
