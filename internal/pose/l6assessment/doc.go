// Package l6assessment owns Layer 6 (Assessment) of the pose data model:
// scoring each pose against the active training goal and flagging technique
// faults for the active exercise.
//
// Responsibilities:
//   - ExerciseQuality: eight sub-metrics, all computed every frame, of which
//     four feed the overall score for a given training mode.
//   - Technique error rules: independent per-exercise threshold checks that
//     each map to a fixed ExerciseError code and remediation text.
//
// Metrics that need multi-frame context return exactly 0.5 until the pose
// history is deep enough. Nothing in this package returns an error; missing
// angles degrade to neutral values.
//
// Dependency rule: L6 may depend on L1-L5.
package l6assessment
