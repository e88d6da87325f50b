// Package l1keypoints owns Layer 1 (Keypoints) of the pose data model.
//
// Responsibilities: the fixed joint enumeration, normalized 2D keypoint
// positions with per-joint detection confidence, and decoding of detector
// frames.
//
// Dependency rule: L1 depends on nothing else in internal/pose.
// Keypoint sets are immutable once received; absent joints are simply
// missing from the maps, never zero-filled.
package l1keypoints
