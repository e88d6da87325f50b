package l6assessment

// ExerciseError is a discrete technique fault code.
type ExerciseError string

const (
	KneeValgus         ExerciseError = "kneeValgus"
	InsufficientDepth  ExerciseError = "insufficientDepth"
	ExcessiveTorsoLean ExerciseError = "excessiveTorsoLean"
	LumbarFlexion      ExerciseError = "lumbarFlexion"
	SuboptimalBarPath  ExerciseError = "suboptimalBarPath"
	AsymmetricMovement ExerciseError = "asymmetricMovement"
	ExcessiveArch      ExerciseError = "excessiveArch"
)

var descriptions = map[ExerciseError]string{
	KneeValgus:         "Knees are caving inward. Push the knees out over the toes.",
	InsufficientDepth:  "Squat is too shallow. Lower until the hips reach knee height.",
	ExcessiveTorsoLean: "Torso is leaning too far forward. Keep the chest up and the back upright.",
	LumbarFlexion:      "Lower back is rounding. Brace the core and keep a neutral spine.",
	SuboptimalBarPath:  "Bar is drifting away from the body. Keep it close to the legs.",
	AsymmetricMovement: "Arms are moving unevenly. Press both sides at the same rate.",
	ExcessiveArch:      "Lower back is over-arched. Keep the glutes on the bench.",
}

// ExerciseErrors returns every error code in a stable order.
func ExerciseErrors() []ExerciseError {
	return []ExerciseError{
		KneeValgus, InsufficientDepth, ExcessiveTorsoLean,
		LumbarFlexion, SuboptimalBarPath,
		AsymmetricMovement, ExcessiveArch,
	}
}

// String returns the error code.
func (e ExerciseError) String() string {
	return string(e)
}

// Description returns the fixed remediation text for the error code, or an
// empty string for an unrecognised code.
func (e ExerciseError) Description() string {
	return descriptions[e]
}
